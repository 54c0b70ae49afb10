package owners

import "vet-clinic-records/internal/domain/pets"

type Owner struct {
	ID          string
	Name        string
	Email       string // único
	PhoneNumber string
	Address     string
}

// WithPets es el detalle del dueño; pets ordenadas por nombre.
type WithPets struct {
	Owner
	Pets []pets.Pet
}

type ListQuery struct {
	Limit  int
	Offset int
	Search string // substring del nombre, case-insensitive
}

type Patch struct {
	Name        *string
	Email       *string
	PhoneNumber *string
	Address     *string
}
