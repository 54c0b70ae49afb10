package serviceinstances

import "context"

// Repository persiste el agregado.
// Las mutaciones por id devuelven filas afectadas; 0 = no existe, sin error.
type Repository interface {
	// Create inserta padre, etiquetas e hijos en una sola transacción.
	Create(ctx context.Context, in Instance) (Instance, error)
	GetByID(ctx context.Context, id string) (Instance, error)
	HistoryByPet(ctx context.Context, q HistoryQuery) ([]HistoryEntry, error)

	Update(ctx context.Context, id string, p Patch) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)

	AddGroomings(ctx context.Context, instanceID string, types []string) ([]Grooming, error)
	AddPreventiveCare(ctx context.Context, instanceID string, in NewPreventiveCare) ([]PreventiveCare, error)
	AddSurgery(ctx context.Context, instanceID string, in NewSurgery) (Surgery, error)
	UpdateSurgery(ctx context.Context, id int64, p SurgeryPatch) (int64, error)

	DeleteGrooming(ctx context.Context, id int64) (int64, error)
	DeletePreventiveCare(ctx context.Context, id int64) (int64, error)
	DeleteSurgery(ctx context.Context, id int64) (int64, error)
}
