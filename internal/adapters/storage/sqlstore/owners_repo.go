package sqlstore

import (
	"context"

	"vet-clinic-records/internal/domain/owners"
)

const (
	ownerColumns = `owner_id, owner_name, owner_email, owner_phone_number, owner_address`

	sqlInsertOwner = `INSERT INTO owner (` + ownerColumns + `) VALUES (?, ?, ?, ?, ?)`
	sqlSelectOwner = `SELECT ` + ownerColumns + ` FROM owner WHERE owner_id = ?`
	sqlListOwners  = `SELECT ` + ownerColumns + ` FROM owner
		WHERE LOWER(owner_name) LIKE ? ESCAPE '\'
		ORDER BY owner_name, owner_id
		LIMIT ? OFFSET ?`
	sqlCountOwners = `SELECT COUNT(*) FROM owner WHERE LOWER(owner_name) LIKE ? ESCAPE '\'`
	sqlDeleteOwner = `DELETE FROM owner WHERE owner_id = ?`
)

type ownerStatements struct {
	insert, selectByID, list, count, delete string
}

type OwnersRepo struct {
	db   *DB
	st   ownerStatements
	pets *PetsRepo
}

func NewOwnersRepo(db *DB) *OwnersRepo {
	d := db.dialect
	return &OwnersRepo{
		db: db,
		st: ownerStatements{
			insert:     d.rebind(sqlInsertOwner),
			selectByID: d.rebind(sqlSelectOwner),
			list:       d.rebind(sqlListOwners),
			count:      d.rebind(sqlCountOwners),
			delete:     d.rebind(sqlDeleteOwner),
		},
		pets: NewPetsRepo(db),
	}
}

var _ owners.Repository = (*OwnersRepo)(nil)

func (r *OwnersRepo) Create(ctx context.Context, o owners.Owner) error {
	return r.db.run(ctx, "owners.create", func(ctx context.Context) error {
		_, err := r.db.sql.ExecContext(ctx, r.st.insert,
			o.ID,
			o.Name,
			o.Email,
			o.PhoneNumber,
			o.Address,
		)
		return err
	})
}

func (r *OwnersRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	var o owners.Owner
	err := r.db.run(ctx, "owners.get", func(ctx context.Context) error {
		err := r.db.sql.QueryRowContext(ctx, r.st.selectByID, id).Scan(
			&o.ID,
			&o.Name,
			&o.Email,
			&o.PhoneNumber,
			&o.Address,
		)
		return notFoundIfNoRows(err, "owner %q", id)
	})
	if err != nil {
		return owners.Owner{}, err
	}
	return o, nil
}

func (r *OwnersRepo) GetWithPets(ctx context.Context, id string) (owners.WithPets, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return owners.WithPets{}, err
	}
	ps, err := r.pets.ListByOwner(ctx, id)
	if err != nil {
		return owners.WithPets{}, err
	}
	return owners.WithPets{Owner: o, Pets: ps}, nil
}

func (r *OwnersRepo) List(ctx context.Context, q owners.ListQuery) ([]owners.Owner, int64, error) {
	limit, offset := offsetPage(q.Limit, q.Offset)
	pattern := likePattern(q.Search)

	var (
		out   = make([]owners.Owner, 0)
		total int64
	)
	err := r.db.run(ctx, "owners.list", func(ctx context.Context) error {
		if err := r.db.sql.QueryRowContext(ctx, r.st.count, pattern).Scan(&total); err != nil {
			return err
		}

		rows, err := r.db.sql.QueryContext(ctx, r.st.list, pattern, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var o owners.Owner
			if err := rows.Scan(&o.ID, &o.Name, &o.Email, &o.PhoneNumber, &o.Address); err != nil {
				return err
			}
			out = append(out, o)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *OwnersRepo) Update(ctx context.Context, id string, p owners.Patch) (int64, error) {
	var a assignments
	if p.Name != nil {
		a.set("owner_name", *p.Name)
	}
	if p.Email != nil {
		a.set("owner_email", *p.Email)
	}
	if p.PhoneNumber != nil {
		a.set("owner_phone_number", *p.PhoneNumber)
	}
	if p.Address != nil {
		a.set("owner_address", *p.Address)
	}

	query, args, err := a.update(r.db.dialect, "owner", "owner_id", id)
	if err != nil {
		return 0, err
	}
	return execAffected(ctx, r.db, "owners.update", query, args...)
}

// Delete falla con StorageError si el dueño todavía tiene mascotas (FK).
func (r *OwnersRepo) Delete(ctx context.Context, id string) (int64, error) {
	return execAffected(ctx, r.db, "owners.delete", r.st.delete, id)
}
