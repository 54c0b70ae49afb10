package sqlstore

import (
	"context"

	"vet-clinic-records/internal/domain/vets"
)

const (
	vetColumns = `vet_id, vet_name, vet_email, vet_phone_number, vet_license_number`

	sqlInsertVet = `INSERT INTO veterinarian (` + vetColumns + `) VALUES (?, ?, ?, ?, ?)`
	sqlSelectVet = `SELECT ` + vetColumns + ` FROM veterinarian WHERE vet_id = ?`
	sqlListVets  = `SELECT ` + vetColumns + ` FROM veterinarian
		WHERE LOWER(vet_name) LIKE ? ESCAPE '\'
		ORDER BY vet_name, vet_id
		LIMIT ? OFFSET ?`
	sqlCountVets  = `SELECT COUNT(*) FROM veterinarian WHERE LOWER(vet_name) LIKE ? ESCAPE '\'`
	sqlVetOptions = `SELECT vet_id, vet_name FROM veterinarian ORDER BY vet_name, vet_id`
	sqlDeleteVet  = `DELETE FROM veterinarian WHERE vet_id = ?`
)

type vetStatements struct {
	insert, selectByID, list, count, options, delete string
}

type VetsRepo struct {
	db *DB
	st vetStatements
}

func NewVetsRepo(db *DB) *VetsRepo {
	d := db.dialect
	return &VetsRepo{
		db: db,
		st: vetStatements{
			insert:     d.rebind(sqlInsertVet),
			selectByID: d.rebind(sqlSelectVet),
			list:       d.rebind(sqlListVets),
			count:      d.rebind(sqlCountVets),
			options:    d.rebind(sqlVetOptions),
			delete:     d.rebind(sqlDeleteVet),
		},
	}
}

var _ vets.Repository = (*VetsRepo)(nil)

func (r *VetsRepo) Create(ctx context.Context, v vets.Vet) error {
	return r.db.run(ctx, "vets.create", func(ctx context.Context) error {
		_, err := r.db.sql.ExecContext(ctx, r.st.insert,
			v.ID,
			v.Name,
			v.Email,
			v.PhoneNumber,
			v.LicenseNumber,
		)
		return err
	})
}

func (r *VetsRepo) GetByID(ctx context.Context, id string) (vets.Vet, error) {
	var v vets.Vet
	err := r.db.run(ctx, "vets.get", func(ctx context.Context) error {
		err := r.db.sql.QueryRowContext(ctx, r.st.selectByID, id).Scan(
			&v.ID,
			&v.Name,
			&v.Email,
			&v.PhoneNumber,
			&v.LicenseNumber,
		)
		return notFoundIfNoRows(err, "veterinarian %q", id)
	})
	if err != nil {
		return vets.Vet{}, err
	}
	return v, nil
}

func (r *VetsRepo) List(ctx context.Context, q vets.ListQuery) ([]vets.Vet, int64, error) {
	limit, offset := offsetPage(q.Limit, q.Offset)
	pattern := likePattern(q.Search)

	var (
		out   = make([]vets.Vet, 0)
		total int64
	)
	err := r.db.run(ctx, "vets.list", func(ctx context.Context) error {
		if err := r.db.sql.QueryRowContext(ctx, r.st.count, pattern).Scan(&total); err != nil {
			return err
		}

		rows, err := r.db.sql.QueryContext(ctx, r.st.list, pattern, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var v vets.Vet
			if err := rows.Scan(&v.ID, &v.Name, &v.Email, &v.PhoneNumber, &v.LicenseNumber); err != nil {
				return err
			}
			out = append(out, v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *VetsRepo) Options(ctx context.Context) ([]vets.Option, error) {
	out := make([]vets.Option, 0)
	err := r.db.run(ctx, "vets.options", func(ctx context.Context) error {
		rows, err := r.db.sql.QueryContext(ctx, r.st.options)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var o vets.Option
			if err := rows.Scan(&o.ID, &o.Name); err != nil {
				return err
			}
			out = append(out, o)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *VetsRepo) Update(ctx context.Context, id string, p vets.Patch) (int64, error) {
	var a assignments
	if p.Name != nil {
		a.set("vet_name", *p.Name)
	}
	if p.Email != nil {
		a.set("vet_email", *p.Email)
	}
	if p.PhoneNumber != nil {
		a.set("vet_phone_number", *p.PhoneNumber)
	}
	if p.LicenseNumber != nil {
		a.set("vet_license_number", *p.LicenseNumber)
	}

	query, args, err := a.update(r.db.dialect, "veterinarian", "vet_id", id)
	if err != nil {
		return 0, err
	}
	return execAffected(ctx, r.db, "vets.update", query, args...)
}

func (r *VetsRepo) Delete(ctx context.Context, id string) (int64, error) {
	return execAffected(ctx, r.db, "vets.delete", r.st.delete, id)
}
