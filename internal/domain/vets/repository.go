package vets

import "context"

type Repository interface {
	Create(ctx context.Context, v Vet) error
	GetByID(ctx context.Context, id string) (Vet, error)
	List(ctx context.Context, q ListQuery) ([]Vet, int64, error)
	Options(ctx context.Context) ([]Option, error)
	Update(ctx context.Context, id string, p Patch) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}
