package vets

type Vet struct {
	ID            string
	Name          string
	Email         string // único
	PhoneNumber   string
	LicenseNumber string // único
}

// Option alimenta los selects del frontend.
type Option struct {
	ID   string
	Name string
}

type ListQuery struct {
	Limit  int
	Offset int
	Search string
}

type Patch struct {
	Name          *string
	Email         *string
	PhoneNumber   *string
	LicenseNumber *string
}
