package statistics

import "context"

type Repository interface {
	CountServicesByType(ctx context.Context) ([]ServiceTypeCount, error)

	// Solo tipos con al menos minVisits visitas, de mayor a menor.
	PetTypeVisitSummary(ctx context.Context, minVisits int) ([]PetTypeVisits, error)
}
