package serviceinstances

import "vet-clinic-records/internal/platform/dates"

// Instance es el agregado: la visita clínica más sus hijos.
// Colecciones vacías se representan como nil (ausentes), nunca como lista vacía.
type Instance struct {
	ID          string
	ServiceDate dates.Date

	// Etiquetas, una fila por valor. No se deduplican.
	ServiceTypes []string

	Reason           string
	Diagnosis        string
	RequiresFollowup bool
	FollowupDate     *dates.Date

	PetID string

	Groomings      []Grooming
	PreventiveCare []PreventiveCare
	Surgery        *Surgery
}

type Grooming struct {
	ID         int64 // asignado por el store
	Type       string
	InstanceID string
}

type PreventiveCare struct {
	ID         int64
	Treatment  string
	VetID      string
	InstanceID string

	// Solo en lecturas de detalle.
	Vet *VetView
}

type Surgery struct {
	ID   int64
	Name string

	AnesthesiaUsed        *string
	Complications         *string
	Outcome               *string
	VeterinarianDiagnosis *string

	VetID      string
	InstanceID string

	Vet *VetView
}

// VetView es lo que se embebe del veterinario (sin su id).
type VetView struct {
	Name          string
	Email         string
	PhoneNumber   string
	LicenseNumber string
}

// HistoryEntry es una fila del historial de una mascota.
type HistoryEntry struct {
	ID               string
	ServiceDate      dates.Date
	ServiceTypes     []string
	Reason           string
	Diagnosis        string
	RequiresFollowup bool
	FollowupDate     *dates.Date
	PetID            string
}

type HistoryQuery struct {
	PetID  string
	Limit  int
	Offset int

	// Rango opcional, inclusivo, sobre service_date.
	From *dates.Date
	To   *dates.Date
}

// NewPreventiveCare: cada tratamiento se vuelve una fila con el mismo vet.
type NewPreventiveCare struct {
	Treatments []string
	VetID      string
}

type NewSurgery struct {
	Name                  string
	AnesthesiaUsed        *string
	Complications         *string
	Outcome               *string
	VeterinarianDiagnosis *string
	VetID                 string
}

type CreateInput struct {
	ID               string // opcional; vacío = uuid nuevo
	ServiceDate      *dates.Date
	ServiceTypes     []string
	Reason           string
	Diagnosis        string
	RequiresFollowup bool
	FollowupDate     *dates.Date
	PetID            string

	GroomingTypes  []string
	PreventiveCare *NewPreventiveCare
	Surgery        *NewSurgery
}

// PatchDate distingue "followup_date": null (limpiar) de no enviado.
type PatchDate struct {
	Present bool
	Value   *dates.Date
}

// Patch: nil = no tocar. ServiceTypes != nil reemplaza el set completo.
type Patch struct {
	ServiceDate      *dates.Date
	Reason           *string
	Diagnosis        *string
	RequiresFollowup *bool
	FollowupDate     PatchDate

	ServiceTypes *[]string
}

// HasScalars indica si hay algún campo escalar para el UPDATE.
func (p Patch) HasScalars() bool {
	return p.ServiceDate != nil || p.Reason != nil || p.Diagnosis != nil ||
		p.RequiresFollowup != nil || p.FollowupDate.Present
}

type SurgeryPatch struct {
	Name                  *string
	AnesthesiaUsed        *string
	Complications         *string
	Outcome               *string
	VeterinarianDiagnosis *string
	VetID                 *string
}
