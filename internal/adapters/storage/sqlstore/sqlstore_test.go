package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"vet-clinic-records/internal/domain/owners"
	"vet-clinic-records/internal/domain/pets"
	"vet-clinic-records/internal/domain/vets"
	"vet-clinic-records/internal/platform/dates"
	"vet-clinic-records/internal/platform/metrics"

	"github.com/stretchr/testify/require"
)

// -------------------------
// Helpers (sqlite en archivo temporal)
// -------------------------

func newTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "clinic.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := Open(context.Background(), Config{
		Driver:       "sqlite",
		DSN:          dsn,
		MaxOpenConns: 4,
		Metrics:      metrics.NewCollector(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.InitSchema(context.Background()))
	return db
}

type fixture struct {
	db       *DB
	owners   *OwnersRepo
	pets     *PetsRepo
	vets     *VetsRepo
	services *ServicesRepo
	stats    *StatisticsRepo

	ownerID string
	petID   string
	vetID   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	f := &fixture{
		db:       db,
		owners:   NewOwnersRepo(db),
		pets:     NewPetsRepo(db),
		vets:     NewVetsRepo(db),
		services: NewServicesRepo(db),
		stats:    NewStatisticsRepo(db),
		ownerID:  "owner-1",
		petID:    "pet-1",
		vetID:    "vet-1",
	}

	ctx := context.Background()
	require.NoError(t, f.owners.Create(ctx, owners.Owner{
		ID: f.ownerID, Name: "Ana Torres", Email: "ana@example.com", PhoneNumber: "555-0101", Address: "Calle 1",
	}))
	bd := mustDate(t, "2020-03-01")
	require.NoError(t, f.pets.Create(ctx, pets.Pet{
		ID: f.petID, Name: "Milo", BirthDate: &bd, Type: "Dog", Breed: "mixed", Weight: 12.5, Color: "brown", OwnerID: f.ownerID,
	}))
	require.NoError(t, f.vets.Create(ctx, vets.Vet{
		ID: f.vetID, Name: "Dr. Ruiz", Email: "ruiz@clinic.test", PhoneNumber: "555-0199", LicenseNumber: "LIC-1",
	}))
	return f
}

func mustDate(t *testing.T, s string) dates.Date {
	t.Helper()
	d, err := dates.Parse(s)
	require.NoError(t, err)
	return d
}

func strPtr(s string) *string { return &s }

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.sql.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
