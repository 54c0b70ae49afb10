package pets

import "vet-clinic-records/internal/platform/dates"

// Pet es la ficha de una mascota; siempre pertenece a un dueño.
type Pet struct {
	ID   string
	Name string

	BirthDate *dates.Date
	Type      string // Dog, Cat, ... texto libre
	Breed     string
	Weight    float64 // kg, >= 0
	Color     string

	OwnerID string
}

type ListQuery struct {
	Limit  int
	Offset int

	// Substring sobre nombre de mascota, nombre o email del dueño.
	Search string
}

// Para permitir "pet_birth_date": null y diferenciarlo de "no enviado".
type PatchBirthDate struct {
	Present bool
	Value   *dates.Date
}

// Patch: punteros nil = no tocar.
type Patch struct {
	Name      *string
	BirthDate PatchBirthDate
	Type      *string
	Breed     *string
	Weight    *float64
	Color     *string
	OwnerID   *string
}
