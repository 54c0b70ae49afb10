package statistics

// ServiceTypeCount: instancias por etiqueta de tipo de servicio.
type ServiceTypeCount struct {
	ServiceTypeName string
	Total           int64
}

// PetTypeVisits: visitas por tipo de mascota.
type PetTypeVisits struct {
	PetType     string
	TotalVisits int64
}
