package owners

import "context"

type Repository interface {
	Create(ctx context.Context, o Owner) error
	GetByID(ctx context.Context, id string) (Owner, error)
	GetWithPets(ctx context.Context, id string) (WithPets, error)
	List(ctx context.Context, q ListQuery) ([]Owner, int64, error)
	Update(ctx context.Context, id string, p Patch) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}
