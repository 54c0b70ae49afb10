package statistics

import (
	"context"

	"github.com/juju/errors"
)

// DefaultMinVisits es el umbral del resumen por tipo de mascota.
const DefaultMinVisits = 2

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ServicesByType(ctx context.Context) ([]ServiceTypeCount, error) {
	return s.repo.CountServicesByType(ctx)
}

// PetTypeVisits: minVisits 0 usa DefaultMinVisits.
func (s *Service) PetTypeVisits(ctx context.Context, minVisits int) ([]PetTypeVisits, error) {
	if minVisits < 0 {
		return nil, errors.NotValidf("min_visits %d", minVisits)
	}
	if minVisits == 0 {
		minVisits = DefaultMinVisits
	}
	return s.repo.PetTypeVisitSummary(ctx, minVisits)
}
