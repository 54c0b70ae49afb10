package vets

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
	Name          string
	Email         string
	PhoneNumber   string
	LicenseNumber string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Vet, error) {
	v := Vet{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(in.Name),
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
		LicenseNumber: strings.TrimSpace(in.LicenseNumber),
	}
	switch {
	case v.Name == "":
		return Vet{}, errors.NotValidf("empty vet_name")
	case v.Email == "" || !strings.Contains(v.Email, "@"):
		return Vet{}, errors.NotValidf("vet_email %q", in.Email)
	case v.LicenseNumber == "":
		return Vet{}, errors.NotValidf("empty vet_license_number")
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return Vet{}, err
	}
	return v, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Vet, error) {
	if strings.TrimSpace(id) == "" {
		return Vet{}, errors.NotFoundf("veterinarian %q", id)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Vet, int64, error) {
	if q.Limit < 1 || q.Offset < 0 {
		return nil, 0, errors.NotValidf("pagination limit=%d offset=%d", q.Limit, q.Offset)
	}
	q.Search = strings.TrimSpace(q.Search)
	return s.repo.List(ctx, q)
}

func (s *Service) Options(ctx context.Context) ([]Option, error) {
	return s.repo.Options(ctx)
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (int64, error) {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return 0, errors.NotValidf("empty vet_name")
	}
	if p.LicenseNumber != nil && strings.TrimSpace(*p.LicenseNumber) == "" {
		return 0, errors.NotValidf("empty vet_license_number")
	}
	if p.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*p.Email))
		if e == "" || !strings.Contains(e, "@") {
			return 0, errors.NotValidf("vet_email %q", *p.Email)
		}
		p.Email = &e
	}
	return s.repo.Update(ctx, id, p)
}

// Delete falla (storage) si el veterinario figura en cuidados preventivos o cirugías.
func (s *Service) Delete(ctx context.Context, id string) (int64, error) {
	return s.repo.Delete(ctx, id)
}
