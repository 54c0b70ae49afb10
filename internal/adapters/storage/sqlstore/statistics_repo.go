package sqlstore

import (
	"context"

	"vet-clinic-records/internal/domain/statistics"
)

const (
	sqlCountServicesByType = `SELECT st.service_type_name, COUNT(*) AS total
		FROM service_instance si
		JOIN service_type st ON st.service_instance_id = si.service_instance_id
		GROUP BY st.service_type_name
		ORDER BY total DESC, st.service_type_name`

	sqlPetTypeVisitSummary = `SELECT p.pet_type, COUNT(si.service_instance_id) AS total_visits
		FROM pet p
		JOIN service_instance si ON si.pet_id = p.pet_id
		GROUP BY p.pet_type
		HAVING COUNT(si.service_instance_id) >= ?
		ORDER BY total_visits DESC, p.pet_type`
)

type StatisticsRepo struct {
	db             *DB
	servicesByType string
	petTypeVisits  string
}

func NewStatisticsRepo(db *DB) *StatisticsRepo {
	return &StatisticsRepo{
		db:             db,
		servicesByType: db.dialect.rebind(sqlCountServicesByType),
		petTypeVisits:  db.dialect.rebind(sqlPetTypeVisitSummary),
	}
}

var _ statistics.Repository = (*StatisticsRepo)(nil)

func (r *StatisticsRepo) CountServicesByType(ctx context.Context) ([]statistics.ServiceTypeCount, error) {
	out := make([]statistics.ServiceTypeCount, 0)
	err := r.db.run(ctx, "statistics.services_by_type", func(ctx context.Context) error {
		rows, err := r.db.sql.QueryContext(ctx, r.servicesByType)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var c statistics.ServiceTypeCount
			if err := rows.Scan(&c.ServiceTypeName, &c.Total); err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *StatisticsRepo) PetTypeVisitSummary(ctx context.Context, minVisits int) ([]statistics.PetTypeVisits, error) {
	out := make([]statistics.PetTypeVisits, 0)
	err := r.db.run(ctx, "statistics.pet_type_visits", func(ctx context.Context) error {
		rows, err := r.db.sql.QueryContext(ctx, r.petTypeVisits, minVisits)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var v statistics.PetTypeVisits
			if err := rows.Scan(&v.PetType, &v.TotalVisits); err != nil {
				return err
			}
			out = append(out, v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
