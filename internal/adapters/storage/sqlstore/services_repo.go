package sqlstore

import (
	"context"
	"database/sql"

	si "vet-clinic-records/internal/domain/serviceinstances"
	"vet-clinic-records/internal/platform/dates"

	sq "github.com/Masterminds/squirrel"
	"github.com/juju/errors"
	"golang.org/x/sync/errgroup"
)

const (
	instanceColumns = `service_instance_id, service_date, service_reason, general_diagnosis,
		requires_followup, followup_date, pet_id`

	sqlInsertInstance = `INSERT INTO service_instance (` + instanceColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	sqlInsertTag      = `INSERT INTO service_type (service_type_name, service_instance_id) VALUES (?, ?)`
	sqlInsertGrooming = `INSERT INTO grooming (grooming_type, service_instance_id) VALUES (?, ?)
		RETURNING grooming_id`
	sqlInsertPreventiveCare = `INSERT INTO preventive_care (treatment, vet_id, service_instance_id) VALUES (?, ?, ?)
		RETURNING preventive_care_id`
	sqlInsertSurgery = `INSERT INTO surgery (surgery_name, anesthesia_used, complications, outcome,
		veterinarian_diagnosis, service_instance_id, vet_id) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING surgery_id`

	sqlSelectInstance = `SELECT ` + instanceColumns + ` FROM service_instance WHERE service_instance_id = ?`
	sqlInstanceExists = `SELECT 1 FROM service_instance WHERE service_instance_id = ?`
	sqlSelectTags     = `SELECT service_type_name FROM service_type WHERE service_instance_id = ?
		ORDER BY service_type_id`
	sqlSelectGroomings = `SELECT grooming_id, grooming_type FROM grooming WHERE service_instance_id = ?
		ORDER BY grooming_id`
	sqlSelectPreventiveCare = `SELECT pc.preventive_care_id, pc.treatment, pc.vet_id,
			v.vet_name, v.vet_email, v.vet_phone_number, v.vet_license_number
		FROM preventive_care pc
		JOIN veterinarian v ON v.vet_id = pc.vet_id
		WHERE pc.service_instance_id = ?
		ORDER BY pc.preventive_care_id`
	sqlSelectSurgery = `SELECT s.surgery_id, s.surgery_name, s.anesthesia_used, s.complications, s.outcome,
			s.veterinarian_diagnosis, s.vet_id,
			v.vet_name, v.vet_email, v.vet_phone_number, v.vet_license_number
		FROM surgery s
		JOIN veterinarian v ON v.vet_id = s.vet_id
		WHERE s.service_instance_id = ?
		ORDER BY s.surgery_id
		LIMIT 1`

	sqlDeleteTagsOf           = `DELETE FROM service_type WHERE service_instance_id = ?`
	sqlDeleteGroomingsOf      = `DELETE FROM grooming WHERE service_instance_id = ?`
	sqlDeletePreventiveCareOf = `DELETE FROM preventive_care WHERE service_instance_id = ?`
	sqlDeleteSurgeryOf        = `DELETE FROM surgery WHERE service_instance_id = ?`
	sqlDeleteInstance         = `DELETE FROM service_instance WHERE service_instance_id = ?`

	sqlDeleteGrooming       = `DELETE FROM grooming WHERE grooming_id = ?`
	sqlDeletePreventiveCare = `DELETE FROM preventive_care WHERE preventive_care_id = ?`
	sqlDeleteSurgery        = `DELETE FROM surgery WHERE surgery_id = ?`
)

// serviceStatements es el registro de sentencias ya traducidas al dialecto.
type serviceStatements struct {
	insertInstance, insertTag, insertGrooming, insertPreventiveCare, insertSurgery string

	selectInstance, instanceExists, selectTags, selectGroomings string
	selectPreventiveCare, selectSurgery                         string

	deleteTagsOf, deleteGroomingsOf, deletePreventiveCareOf, deleteSurgeryOf, deleteInstance string

	deleteGrooming, deletePreventiveCare, deleteSurgery string
}

func newServiceStatements(d Dialect) serviceStatements {
	return serviceStatements{
		insertInstance:       d.rebind(sqlInsertInstance),
		insertTag:            d.rebind(sqlInsertTag),
		insertGrooming:       d.rebind(sqlInsertGrooming),
		insertPreventiveCare: d.rebind(sqlInsertPreventiveCare),
		insertSurgery:        d.rebind(sqlInsertSurgery),

		selectInstance:       d.rebind(sqlSelectInstance),
		instanceExists:       d.rebind(sqlInstanceExists),
		selectTags:           d.rebind(sqlSelectTags),
		selectGroomings:      d.rebind(sqlSelectGroomings),
		selectPreventiveCare: d.rebind(sqlSelectPreventiveCare),
		selectSurgery:        d.rebind(sqlSelectSurgery),

		deleteTagsOf:           d.rebind(sqlDeleteTagsOf),
		deleteGroomingsOf:      d.rebind(sqlDeleteGroomingsOf),
		deletePreventiveCareOf: d.rebind(sqlDeletePreventiveCareOf),
		deleteSurgeryOf:        d.rebind(sqlDeleteSurgeryOf),
		deleteInstance:         d.rebind(sqlDeleteInstance),

		deleteGrooming:       d.rebind(sqlDeleteGrooming),
		deletePreventiveCare: d.rebind(sqlDeletePreventiveCare),
		deleteSurgery:        d.rebind(sqlDeleteSurgery),
	}
}

type ServicesRepo struct {
	db *DB
	st serviceStatements
}

func NewServicesRepo(db *DB) *ServicesRepo {
	return &ServicesRepo{db: db, st: newServiceStatements(db.dialect)}
}

var _ si.Repository = (*ServicesRepo)(nil)

// Create escribe el agregado completo en una transacción: todo o nada.
func (r *ServicesRepo) Create(ctx context.Context, in si.Instance) (si.Instance, error) {
	out := in
	if out.ServiceTypes == nil {
		out.ServiceTypes = []string{}
	}

	err := r.db.run(ctx, "serviceinstances.create", func(ctx context.Context) error {
		return r.db.inTx(ctx, "serviceinstances.create", func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, r.st.insertInstance,
				in.ID,
				in.ServiceDate,
				in.Reason,
				in.Diagnosis,
				in.RequiresFollowup,
				dates.FromPtr(in.FollowupDate),
				in.PetID,
			); err != nil {
				return err
			}

			if err := r.insertTags(ctx, tx, in.ID, in.ServiceTypes); err != nil {
				return err
			}

			types := make([]string, 0, len(in.Groomings))
			for _, g := range in.Groomings {
				types = append(types, g.Type)
			}
			groomings, err := r.insertGroomings(ctx, tx, in.ID, types)
			if err != nil {
				return err
			}
			out.Groomings = groomings

			out.PreventiveCare = nil
			for _, pc := range in.PreventiveCare {
				created, err := r.insertPreventiveCare(ctx, tx, in.ID, pc.Treatment, pc.VetID)
				if err != nil {
					return err
				}
				out.PreventiveCare = append(out.PreventiveCare, created)
			}

			if in.Surgery != nil {
				s, err := r.insertSurgery(ctx, tx, in.ID, si.NewSurgery{
					Name:                  in.Surgery.Name,
					AnesthesiaUsed:        in.Surgery.AnesthesiaUsed,
					Complications:         in.Surgery.Complications,
					Outcome:               in.Surgery.Outcome,
					VeterinarianDiagnosis: in.Surgery.VeterinarianDiagnosis,
					VetID:                 in.Surgery.VetID,
				})
				if err != nil {
					return err
				}
				out.Surgery = &s
			}
			return nil
		})
	})
	if err != nil {
		return si.Instance{}, err
	}
	return out, nil
}

func (r *ServicesRepo) insertTags(ctx context.Context, q queryer, instanceID string, tags []string) error {
	for _, t := range tags {
		if _, err := q.ExecContext(ctx, r.st.insertTag, t, instanceID); err != nil {
			return err
		}
	}
	return nil
}

// insertGroomings devuelve nil si no hay tipos (ausente, no lista vacía).
func (r *ServicesRepo) insertGroomings(ctx context.Context, q queryer, instanceID string, types []string) ([]si.Grooming, error) {
	var out []si.Grooming
	for _, t := range types {
		g := si.Grooming{Type: t, InstanceID: instanceID}
		if err := q.QueryRowContext(ctx, r.st.insertGrooming, t, instanceID).Scan(&g.ID); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (r *ServicesRepo) insertPreventiveCare(ctx context.Context, q queryer, instanceID, treatment, vetID string) (si.PreventiveCare, error) {
	pc := si.PreventiveCare{Treatment: treatment, VetID: vetID, InstanceID: instanceID}
	err := q.QueryRowContext(ctx, r.st.insertPreventiveCare, treatment, vetID, instanceID).Scan(&pc.ID)
	return pc, err
}

func (r *ServicesRepo) insertSurgery(ctx context.Context, q queryer, instanceID string, in si.NewSurgery) (si.Surgery, error) {
	s := si.Surgery{
		Name:                  in.Name,
		AnesthesiaUsed:        in.AnesthesiaUsed,
		Complications:         in.Complications,
		Outcome:               in.Outcome,
		VeterinarianDiagnosis: in.VeterinarianDiagnosis,
		VetID:                 in.VetID,
		InstanceID:            instanceID,
	}
	err := q.QueryRowContext(ctx, r.st.insertSurgery,
		in.Name,
		toNullString(in.AnesthesiaUsed),
		toNullString(in.Complications),
		toNullString(in.Outcome),
		toNullString(in.VeterinarianDiagnosis),
		instanceID,
		in.VetID,
	).Scan(&s.ID)
	return s, err
}

// requireInstance: NotFound si el padre no existe.
func (r *ServicesRepo) requireInstance(ctx context.Context, q queryer, id string) error {
	var one int
	err := q.QueryRowContext(ctx, r.st.instanceExists, id).Scan(&one)
	return notFoundIfNoRows(err, "service instance %q", id)
}

// GetByID lee el padre y luego los cuatro hijos en paralelo, sin transacción:
// el resultado puede mezclar dos momentos si hay escrituras concurrentes.
func (r *ServicesRepo) GetByID(ctx context.Context, id string) (si.Instance, error) {
	var out si.Instance

	err := r.db.run(ctx, "serviceinstances.get", func(ctx context.Context) error {
		var err error
		out, err = scanInstance(r.db.sql.QueryRowContext(ctx, r.st.selectInstance, id))
		if err != nil {
			return notFoundIfNoRows(err, "service instance %q", id)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			tags, err := r.selectTags(gctx, id)
			out.ServiceTypes = tags
			return err
		})
		g.Go(func() error {
			groomings, err := r.selectGroomings(gctx, id)
			out.Groomings = groomings
			return err
		})
		g.Go(func() error {
			pcs, err := r.selectPreventiveCare(gctx, id)
			out.PreventiveCare = pcs
			return err
		})
		g.Go(func() error {
			s, err := r.selectSurgery(gctx, id)
			out.Surgery = s
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return si.Instance{}, err
	}
	return out, nil
}

func scanInstance(row interface{ Scan(...any) error }) (si.Instance, error) {
	var (
		in       si.Instance
		followup dates.NullDate
	)
	if err := row.Scan(
		&in.ID,
		&in.ServiceDate,
		&in.Reason,
		&in.Diagnosis,
		&in.RequiresFollowup,
		&followup,
		&in.PetID,
	); err != nil {
		return si.Instance{}, err
	}
	in.FollowupDate = followup.Ptr()
	return in, nil
}

func (r *ServicesRepo) selectTags(ctx context.Context, id string) ([]string, error) {
	rows, err := r.db.sql.QueryContext(ctx, r.st.selectTags, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *ServicesRepo) selectGroomings(ctx context.Context, id string) ([]si.Grooming, error) {
	rows, err := r.db.sql.QueryContext(ctx, r.st.selectGroomings, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []si.Grooming
	for rows.Next() {
		g := si.Grooming{InstanceID: id}
		if err := rows.Scan(&g.ID, &g.Type); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *ServicesRepo) selectPreventiveCare(ctx context.Context, id string) ([]si.PreventiveCare, error) {
	rows, err := r.db.sql.QueryContext(ctx, r.st.selectPreventiveCare, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []si.PreventiveCare
	for rows.Next() {
		pc := si.PreventiveCare{InstanceID: id, Vet: &si.VetView{}}
		if err := rows.Scan(
			&pc.ID,
			&pc.Treatment,
			&pc.VetID,
			&pc.Vet.Name,
			&pc.Vet.Email,
			&pc.Vet.PhoneNumber,
			&pc.Vet.LicenseNumber,
		); err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

// selectSurgery expone solo la primera cirugía (el schema permite una).
func (r *ServicesRepo) selectSurgery(ctx context.Context, id string) (*si.Surgery, error) {
	s := si.Surgery{InstanceID: id, Vet: &si.VetView{}}
	var anesthesia, compl, outcome, dx sql.NullString
	err := r.db.sql.QueryRowContext(ctx, r.st.selectSurgery, id).Scan(
		&s.ID,
		&s.Name,
		&anesthesia,
		&compl,
		&outcome,
		&dx,
		&s.VetID,
		&s.Vet.Name,
		&s.Vet.Email,
		&s.Vet.PhoneNumber,
		&s.Vet.LicenseNumber,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.AnesthesiaUsed = fromNullString(anesthesia)
	s.Complications = fromNullString(compl)
	s.Outcome = fromNullString(outcome)
	s.VeterinarianDiagnosis = fromNullString(dx)
	return &s, nil
}

// HistoryByPet pagina instancias (no filas unidas) y agrupa las etiquetas por id.
// Una instancia sin etiquetas aparece una vez con lista vacía.
func (r *ServicesRepo) HistoryByPet(ctx context.Context, q si.HistoryQuery) ([]si.HistoryEntry, error) {
	query, args, err := historyQuery(r.db.dialect, q)
	if err != nil {
		return nil, err
	}

	var out []si.HistoryEntry
	err = r.db.run(ctx, "serviceinstances.history", func(ctx context.Context) error {
		rows, err := r.db.sql.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		index := map[string]int{}
		out = make([]si.HistoryEntry, 0)
		for rows.Next() {
			var (
				e        si.HistoryEntry
				followup dates.NullDate
				tag      sql.NullString
			)
			if err := rows.Scan(
				&e.ID,
				&e.ServiceDate,
				&e.Reason,
				&e.Diagnosis,
				&e.RequiresFollowup,
				&followup,
				&e.PetID,
				&tag,
			); err != nil {
				return err
			}

			i, seen := index[e.ID]
			if !seen {
				e.FollowupDate = followup.Ptr()
				e.ServiceTypes = []string{}
				out = append(out, e)
				i = len(out) - 1
				index[e.ID] = i
			}
			// la fila nula del LEFT JOIN no es una etiqueta
			if tag.Valid {
				out[i].ServiceTypes = append(out[i].ServiceTypes, tag.String)
			}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// historyQuery pagina en la subconsulta y une las etiquetas afuera.
func historyQuery(d Dialect, q si.HistoryQuery) (string, []any, error) {
	page := sq.Select(instanceColumns).
		From("service_instance").
		Where(sq.Eq{"pet_id": q.PetID})
	if q.From != nil {
		page = page.Where(sq.GtOrEq{"service_date": *q.From})
	}
	if q.To != nil {
		page = page.Where(sq.LtOrEq{"service_date": *q.To})
	}
	page = page.OrderBy("service_instance_id").
		Limit(uint64(q.Limit)).
		Offset(uint64(q.Offset))

	return d.builder().
		Select("si.service_instance_id", "si.service_date", "si.service_reason", "si.general_diagnosis",
			"si.requires_followup", "si.followup_date", "si.pet_id", "st.service_type_name").
		FromSelect(page, "si").
		LeftJoin("service_type st ON st.service_instance_id = si.service_instance_id").
		OrderBy("si.service_instance_id", "st.service_type_id").
		ToSql()
}

// Update reemplaza etiquetas (si vienen) en su propia transacción y después
// aplica el UPDATE parcial; devuelve las filas del UPDATE.
func (r *ServicesRepo) Update(ctx context.Context, id string, p si.Patch) (int64, error) {
	var n int64
	err := r.db.run(ctx, "serviceinstances.update", func(ctx context.Context) error {
		if p.ServiceTypes != nil {
			err := r.db.inTx(ctx, "serviceinstances.update", func(tx *sql.Tx) error {
				if err := r.requireInstance(ctx, tx, id); err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, r.st.deleteTagsOf, id); err != nil {
					return err
				}
				return r.insertTags(ctx, tx, id, *p.ServiceTypes)
			})
			if errors.Is(err, errors.NotFound) {
				n = 0
				return nil
			}
			if err != nil {
				return err
			}
		}

		var a assignments
		if p.ServiceDate != nil {
			a.set("service_date", *p.ServiceDate)
		}
		if p.Reason != nil {
			a.set("service_reason", *p.Reason)
		}
		if p.Diagnosis != nil {
			a.set("general_diagnosis", *p.Diagnosis)
		}
		if p.RequiresFollowup != nil {
			a.set("requires_followup", *p.RequiresFollowup)
		}
		if p.FollowupDate.Present {
			a.set("followup_date", dates.FromPtr(p.FollowupDate.Value))
		}

		query, args, err := a.update(r.db.dialect, "service_instance", "service_instance_id", id)
		if err != nil {
			return err
		}
		res, err := r.db.sql.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err = rowsAffected(res)
		return err
	})
	return n, err
}

// Delete borra el agregado completo (hijos primero) en una transacción.
func (r *ServicesRepo) Delete(ctx context.Context, id string) (int64, error) {
	var n int64
	err := r.db.run(ctx, "serviceinstances.delete", func(ctx context.Context) error {
		return r.db.inTx(ctx, "serviceinstances.delete", func(tx *sql.Tx) error {
			for _, q := range []string{
				r.st.deleteTagsOf,
				r.st.deleteGroomingsOf,
				r.st.deletePreventiveCareOf,
				r.st.deleteSurgeryOf,
			} {
				if _, err := tx.ExecContext(ctx, q, id); err != nil {
					return err
				}
			}

			res, err := tx.ExecContext(ctx, r.st.deleteInstance, id)
			if err != nil {
				return err
			}
			n, err = rowsAffected(res)
			return err
		})
	})
	return n, err
}

func (r *ServicesRepo) AddGroomings(ctx context.Context, instanceID string, types []string) ([]si.Grooming, error) {
	var out []si.Grooming
	err := r.db.run(ctx, "serviceinstances.add_groomings", func(ctx context.Context) error {
		return r.db.inTx(ctx, "serviceinstances.add_groomings", func(tx *sql.Tx) error {
			if err := r.requireInstance(ctx, tx, instanceID); err != nil {
				return err
			}
			var err error
			out, err = r.insertGroomings(ctx, tx, instanceID, types)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ServicesRepo) AddPreventiveCare(ctx context.Context, instanceID string, in si.NewPreventiveCare) ([]si.PreventiveCare, error) {
	var out []si.PreventiveCare
	err := r.db.run(ctx, "serviceinstances.add_preventive_care", func(ctx context.Context) error {
		return r.db.inTx(ctx, "serviceinstances.add_preventive_care", func(tx *sql.Tx) error {
			if err := r.requireInstance(ctx, tx, instanceID); err != nil {
				return err
			}
			out = nil
			for _, t := range in.Treatments {
				pc, err := r.insertPreventiveCare(ctx, tx, instanceID, t, in.VetID)
				if err != nil {
					return err
				}
				out = append(out, pc)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddSurgery: una segunda cirugía para la misma instancia es AlreadyExists.
func (r *ServicesRepo) AddSurgery(ctx context.Context, instanceID string, in si.NewSurgery) (si.Surgery, error) {
	var out si.Surgery
	err := r.db.run(ctx, "serviceinstances.add_surgery", func(ctx context.Context) error {
		return r.db.inTx(ctx, "serviceinstances.add_surgery", func(tx *sql.Tx) error {
			if err := r.requireInstance(ctx, tx, instanceID); err != nil {
				return err
			}
			var err error
			out, err = r.insertSurgery(ctx, tx, instanceID, in)
			return err
		})
	})
	if err != nil {
		return si.Surgery{}, err
	}
	return out, nil
}

func (r *ServicesRepo) UpdateSurgery(ctx context.Context, id int64, p si.SurgeryPatch) (int64, error) {
	var a assignments
	if p.Name != nil {
		a.set("surgery_name", *p.Name)
	}
	if p.AnesthesiaUsed != nil {
		a.set("anesthesia_used", *p.AnesthesiaUsed)
	}
	if p.Complications != nil {
		a.set("complications", *p.Complications)
	}
	if p.Outcome != nil {
		a.set("outcome", *p.Outcome)
	}
	if p.VeterinarianDiagnosis != nil {
		a.set("veterinarian_diagnosis", *p.VeterinarianDiagnosis)
	}
	if p.VetID != nil {
		a.set("vet_id", *p.VetID)
	}

	query, args, err := a.update(r.db.dialect, "surgery", "surgery_id", id)
	if err != nil {
		return 0, err
	}
	return r.exec(ctx, "serviceinstances.update_surgery", query, args...)
}

func (r *ServicesRepo) DeleteGrooming(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, "serviceinstances.delete_grooming", r.st.deleteGrooming, id)
}

func (r *ServicesRepo) DeletePreventiveCare(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, "serviceinstances.delete_preventive_care", r.st.deletePreventiveCare, id)
}

func (r *ServicesRepo) DeleteSurgery(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, "serviceinstances.delete_surgery", r.st.deleteSurgery, id)
}

func (r *ServicesRepo) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	return execAffected(ctx, r.db, op, query, args...)
}
