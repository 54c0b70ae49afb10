package owners

import (
	"context"
	"strings"

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
	Name        string
	Email       string
	PhoneNumber string
	Address     string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Owner, error) {
	o := Owner{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Address:     strings.TrimSpace(in.Address),
	}
	if o.Name == "" {
		return Owner{}, errors.NotValidf("empty owner_name")
	}
	if o.Email == "" || !strings.Contains(o.Email, "@") {
		return Owner{}, errors.NotValidf("owner_email %q", in.Email)
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

func (s *Service) GetWithPets(ctx context.Context, id string) (WithPets, error) {
	if strings.TrimSpace(id) == "" {
		return WithPets{}, errors.NotFoundf("owner %q", id)
	}
	return s.repo.GetWithPets(ctx, id)
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Owner, int64, error) {
	if q.Limit < 1 || q.Offset < 0 {
		return nil, 0, errors.NotValidf("pagination limit=%d offset=%d", q.Limit, q.Offset)
	}
	q.Search = strings.TrimSpace(q.Search)
	return s.repo.List(ctx, q)
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (int64, error) {
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return 0, errors.NotValidf("empty owner_name")
		}
		*p.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*p.Email))
		if e == "" || !strings.Contains(e, "@") {
			return 0, errors.NotValidf("owner_email %q", *p.Email)
		}
		p.Email = &e
	}
	return s.repo.Update(ctx, id, p)
}

func (s *Service) Delete(ctx context.Context, id string) (int64, error) {
	return s.repo.Delete(ctx, id)
}
