package pets

import (
	"context"
	"strings"

	"vet-clinic-records/internal/platform/dates"

	"github.com/google/uuid"
	"github.com/juju/errors"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Name      string
	BirthDate *dates.Date
	Type      string
	Breed     string
	Weight    float64
	Color     string
	OwnerID   string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	if strings.TrimSpace(in.OwnerID) == "" {
		return Pet{}, errors.NotValidf("empty owner_id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, errors.NotValidf("empty pet_name")
	}
	if strings.TrimSpace(in.Type) == "" {
		return Pet{}, errors.NotValidf("empty pet_type")
	}
	if in.Weight < 0 {
		return Pet{}, errors.NotValidf("negative pet_weight")
	}

	p := Pet{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		BirthDate: in.BirthDate,
		Type:      strings.TrimSpace(in.Type),
		Breed:     strings.TrimSpace(in.Breed),
		Weight:    in.Weight,
		Color:     strings.TrimSpace(in.Color),
		OwnerID:   strings.TrimSpace(in.OwnerID),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	if strings.TrimSpace(id) == "" {
		return Pet{}, errors.NotFoundf("pet %q", id)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Pet, int64, error) {
	if q.Limit < 1 || q.Offset < 0 {
		return nil, 0, errors.NotValidf("pagination limit=%d offset=%d", q.Limit, q.Offset)
	}
	q.Search = strings.TrimSpace(q.Search)
	return s.repo.List(ctx, q)
}

// Update aplica el PATCH; 0 filas = la mascota no existe.
func (s *Service) Update(ctx context.Context, id string, p Patch) (int64, error) {
	for field, v := range map[string]*string{
		"pet_name": p.Name,
		"pet_type": p.Type,
		"owner_id": p.OwnerID,
	} {
		if v == nil {
			continue
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" {
			return 0, errors.NotValidf("empty %s", field)
		}
		*v = trimmed
	}
	if p.Weight != nil && *p.Weight < 0 {
		return 0, errors.NotValidf("negative pet_weight")
	}
	return s.repo.Update(ctx, id, p)
}

func (s *Service) Delete(ctx context.Context, id string) (int64, error) {
	return s.repo.Delete(ctx, id)
}
