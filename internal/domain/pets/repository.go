package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	List(ctx context.Context, q ListQuery) ([]Pet, int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Pet, error)

	// Update y Delete devuelven filas afectadas; 0 = no existe.
	Update(ctx context.Context, id string, p Patch) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}
