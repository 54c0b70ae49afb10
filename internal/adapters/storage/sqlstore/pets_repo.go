package sqlstore

import (
	"context"

	"vet-clinic-records/internal/domain/pets"
	"vet-clinic-records/internal/platform/dates"
)

const (
	petColumns = `pet_id, pet_name, pet_birth_date, pet_type, pet_breed, pet_weight, pet_color, owner_id`

	sqlInsertPet = `INSERT INTO pet (` + petColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	sqlSelectPet = `SELECT ` + petColumns + ` FROM pet WHERE pet_id = ?`

	// búsqueda por mascota o dueño; mismo patrón tres veces
	petSearchFilter = `(LOWER(p.pet_name) LIKE ? ESCAPE '\'
		OR LOWER(o.owner_name) LIKE ? ESCAPE '\'
		OR LOWER(o.owner_email) LIKE ? ESCAPE '\')`
	sqlListPets = `SELECT p.pet_id, p.pet_name, p.pet_birth_date, p.pet_type, p.pet_breed, p.pet_weight,
			p.pet_color, p.owner_id
		FROM pet p
		JOIN owner o ON o.owner_id = p.owner_id
		WHERE ` + petSearchFilter + `
		ORDER BY p.pet_type, p.pet_name, p.pet_id
		LIMIT ? OFFSET ?`
	sqlCountPets = `SELECT COUNT(*) FROM pet p JOIN owner o ON o.owner_id = p.owner_id WHERE ` + petSearchFilter
	sqlPetsByOwner = `SELECT ` + petColumns + ` FROM pet WHERE owner_id = ? ORDER BY pet_name, pet_id`
	sqlDeletePet   = `DELETE FROM pet WHERE pet_id = ?`
)

type petStatements struct {
	insert, selectByID, list, count, byOwner, delete string
}

type PetsRepo struct {
	db *DB
	st petStatements
}

func NewPetsRepo(db *DB) *PetsRepo {
	d := db.dialect
	return &PetsRepo{
		db: db,
		st: petStatements{
			insert:     d.rebind(sqlInsertPet),
			selectByID: d.rebind(sqlSelectPet),
			list:       d.rebind(sqlListPets),
			count:      d.rebind(sqlCountPets),
			byOwner:    d.rebind(sqlPetsByOwner),
			delete:     d.rebind(sqlDeletePet),
		},
	}
}

var _ pets.Repository = (*PetsRepo)(nil)

// Create: un owner_id inexistente viola la FK y sale como StorageError.
func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	return r.db.run(ctx, "pets.create", func(ctx context.Context) error {
		_, err := r.db.sql.ExecContext(ctx, r.st.insert,
			p.ID,
			p.Name,
			dates.FromPtr(p.BirthDate),
			p.Type,
			p.Breed,
			p.Weight,
			p.Color,
			p.OwnerID,
		)
		return err
	})
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	var p pets.Pet
	err := r.db.run(ctx, "pets.get", func(ctx context.Context) error {
		var err error
		p, err = scanPet(r.db.sql.QueryRowContext(ctx, r.st.selectByID, id))
		return notFoundIfNoRows(err, "pet %q", id)
	})
	if err != nil {
		return pets.Pet{}, err
	}
	return p, nil
}

func (r *PetsRepo) List(ctx context.Context, q pets.ListQuery) ([]pets.Pet, int64, error) {
	limit, offset := offsetPage(q.Limit, q.Offset)
	pattern := likePattern(q.Search)

	var (
		out   = make([]pets.Pet, 0)
		total int64
	)
	err := r.db.run(ctx, "pets.list", func(ctx context.Context) error {
		if err := r.db.sql.QueryRowContext(ctx, r.st.count, pattern, pattern, pattern).Scan(&total); err != nil {
			return err
		}

		var err error
		out, err = r.query(ctx, r.st.list, pattern, pattern, pattern, limit, offset)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	var out []pets.Pet
	err := r.db.run(ctx, "pets.list_by_owner", func(ctx context.Context) error {
		var err error
		out, err = r.query(ctx, r.st.byOwner, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PetsRepo) query(ctx context.Context, query string, args ...any) ([]pets.Pet, error) {
	rows, err := r.db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPet(row interface{ Scan(...any) error }) (pets.Pet, error) {
	var (
		p  pets.Pet
		bd dates.NullDate
	)
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&bd,
		&p.Type,
		&p.Breed,
		&p.Weight,
		&p.Color,
		&p.OwnerID,
	); err != nil {
		return pets.Pet{}, err
	}
	p.BirthDate = bd.Ptr()
	return p, nil
}

func (r *PetsRepo) Update(ctx context.Context, id string, p pets.Patch) (int64, error) {
	var a assignments
	if p.Name != nil {
		a.set("pet_name", *p.Name)
	}
	if p.BirthDate.Present {
		a.set("pet_birth_date", dates.FromPtr(p.BirthDate.Value))
	}
	if p.Type != nil {
		a.set("pet_type", *p.Type)
	}
	if p.Breed != nil {
		a.set("pet_breed", *p.Breed)
	}
	if p.Weight != nil {
		a.set("pet_weight", *p.Weight)
	}
	if p.Color != nil {
		a.set("pet_color", *p.Color)
	}
	if p.OwnerID != nil {
		a.set("owner_id", *p.OwnerID)
	}

	query, args, err := a.update(r.db.dialect, "pet", "pet_id", id)
	if err != nil {
		return 0, err
	}
	return execAffected(ctx, r.db, "pets.update", query, args...)
}

func (r *PetsRepo) Delete(ctx context.Context, id string) (int64, error) {
	return execAffected(ctx, r.db, "pets.delete", r.st.delete, id)
}
