package sqlstore

import (
	"context"
	"fmt"
	"testing"

	si "vet-clinic-records/internal/domain/serviceinstances"
	"vet-clinic-records/internal/platform/dates"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) instance(t *testing.T, id string, tags ...string) si.Instance {
	t.Helper()
	return si.Instance{
		ID:           id,
		ServiceDate:  mustDate(t, "2024-05-10"),
		ServiceTypes: tags,
		Reason:       "checkup",
		Diagnosis:    "healthy",
		PetID:        f.petID,
	}
}

func TestServices_CreateIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.instance(t, "si-atomic", "grooming", "preventive")
	in.Groomings = []si.Grooming{{Type: "bath"}}
	in.PreventiveCare = []si.PreventiveCare{
		{Treatment: "rabies", VetID: f.vetID},
		{Treatment: "parvo", VetID: "no-such-vet"},
	}

	_, err := f.services.Create(ctx, in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorage), "fk violation is a storage error: %v", err)

	_, err = f.services.GetByID(ctx, "si-atomic")
	assert.True(t, errors.Is(err, errors.NotFound))

	for _, table := range []string{"service_instance", "service_type", "grooming", "preventive_care", "surgery"} {
		assert.Zero(t, countRows(t, f.db, table), table)
	}
}

func TestServices_CreateWithMissingPetFails(t *testing.T) {
	f := newFixture(t)

	in := f.instance(t, "si-orphan", "grooming")
	in.PetID = "no-such-pet"

	_, err := f.services.Create(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorage))
	assert.Zero(t, countRows(t, f.db, "service_type"))
}

func TestServices_CreateDuplicateIDIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Create(ctx, f.instance(t, "si-dup", "a"))
	require.NoError(t, err)

	_, err = f.services.Create(ctx, f.instance(t, "si-dup", "b"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.AlreadyExists))

	got, err := f.services.GetByID(ctx, "si-dup")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.ServiceTypes)
}

func TestServices_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	followup := mustDate(t, "2024-06-01")
	in := f.instance(t, "si-full", "surgery", "grooming", "preventive")
	in.RequiresFollowup = true
	in.FollowupDate = &followup
	in.Groomings = []si.Grooming{{Type: "bath"}, {Type: "nail trim"}}
	in.PreventiveCare = []si.PreventiveCare{
		{Treatment: "rabies", VetID: f.vetID},
		{Treatment: "deworming", VetID: f.vetID},
	}
	in.Surgery = &si.Surgery{
		Name:           "neutering",
		AnesthesiaUsed: strPtr("isoflurane"),
		Outcome:        strPtr("ok"),
		VetID:          f.vetID,
	}

	created, err := f.services.Create(ctx, in)
	require.NoError(t, err)

	require.Len(t, created.Groomings, 2)
	require.Len(t, created.PreventiveCare, 2)
	require.NotNil(t, created.Surgery)
	assert.NotZero(t, created.Groomings[0].ID)
	assert.NotEqual(t, created.Groomings[0].ID, created.Groomings[1].ID)
	assert.NotEqual(t, created.PreventiveCare[0].ID, created.PreventiveCare[1].ID)
	assert.NotZero(t, created.Surgery.ID)

	got, err := f.services.GetByID(ctx, "si-full")
	require.NoError(t, err)

	assert.Equal(t, in.ServiceDate, got.ServiceDate)
	assert.Equal(t, "checkup", got.Reason)
	assert.Equal(t, "healthy", got.Diagnosis)
	assert.True(t, got.RequiresFollowup)
	require.NotNil(t, got.FollowupDate)
	assert.Equal(t, followup, *got.FollowupDate)
	assert.Equal(t, f.petID, got.PetID)
	assert.ElementsMatch(t, []string{"surgery", "grooming", "preventive"}, got.ServiceTypes)

	require.Len(t, got.Groomings, 2)
	for i, g := range got.Groomings {
		assert.Equal(t, created.Groomings[i].ID, g.ID)
		assert.Equal(t, created.Groomings[i].Type, g.Type)
	}

	require.Len(t, got.PreventiveCare, 2)
	for i, pc := range got.PreventiveCare {
		assert.Equal(t, created.PreventiveCare[i].ID, pc.ID)
		assert.Equal(t, created.PreventiveCare[i].Treatment, pc.Treatment)
		require.NotNil(t, pc.Vet)
		assert.Equal(t, si.VetView{
			Name: "Dr. Ruiz", Email: "ruiz@clinic.test", PhoneNumber: "555-0199", LicenseNumber: "LIC-1",
		}, *pc.Vet)
	}

	require.NotNil(t, got.Surgery)
	assert.Equal(t, created.Surgery.ID, got.Surgery.ID)
	assert.Equal(t, "neutering", got.Surgery.Name)
	assert.Equal(t, strPtr("isoflurane"), got.Surgery.AnesthesiaUsed)
	assert.Nil(t, got.Surgery.Complications)
	assert.Equal(t, strPtr("ok"), got.Surgery.Outcome)
	require.NotNil(t, got.Surgery.Vet)
	assert.Equal(t, "LIC-1", got.Surgery.Vet.LicenseNumber)
}

func TestServices_EmptyChildrenAreAbsent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.services.Create(ctx, f.instance(t, "si-bare"))
	require.NoError(t, err)
	assert.Nil(t, created.Groomings)
	assert.Nil(t, created.PreventiveCare)
	assert.Nil(t, created.Surgery)
	assert.NotNil(t, created.ServiceTypes)

	got, err := f.services.GetByID(ctx, "si-bare")
	require.NoError(t, err)
	assert.Nil(t, got.Groomings)
	assert.Nil(t, got.PreventiveCare)
	assert.Nil(t, got.Surgery)
	assert.Empty(t, got.ServiceTypes)
	assert.Nil(t, got.FollowupDate)
}

func TestServices_DuplicateTagsAreKept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Create(ctx, f.instance(t, "si-tags", "grooming", "grooming"))
	require.NoError(t, err)

	got, err := f.services.GetByID(ctx, "si-tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"grooming", "grooming"}, got.ServiceTypes)
}

func TestServices_UpdateReplacesTagSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Create(ctx, f.instance(t, "si-1", "a", "b"))
	require.NoError(t, err)

	tags := []string{"b", "c"}
	n, err := f.services.Update(ctx, "si-1", si.Patch{ServiceTypes: &tags})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := f.services.GetByID(ctx, "si-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, got.ServiceTypes)

	empty := []string{}
	_, err = f.services.Update(ctx, "si-1", si.Patch{ServiceTypes: &empty})
	require.NoError(t, err)

	got, err = f.services.GetByID(ctx, "si-1")
	require.NoError(t, err)
	assert.Empty(t, got.ServiceTypes)
}

func TestServices_PartialUpdateLeavesOtherFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	followup := mustDate(t, "2024-07-01")
	in := f.instance(t, "si-1", "a")
	in.RequiresFollowup = true
	in.FollowupDate = &followup
	_, err := f.services.Create(ctx, in)
	require.NoError(t, err)

	n, err := f.services.Update(ctx, "si-1", si.Patch{Reason: strPtr("limping")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := f.services.GetByID(ctx, "si-1")
	require.NoError(t, err)
	assert.Equal(t, "limping", got.Reason)
	assert.Equal(t, in.ServiceDate, got.ServiceDate)
	assert.Equal(t, "healthy", got.Diagnosis)
	assert.True(t, got.RequiresFollowup)
	require.NotNil(t, got.FollowupDate)
	assert.Equal(t, followup, *got.FollowupDate)
	assert.Equal(t, []string{"a"}, got.ServiceTypes)

	// followup_date: null limpia la fecha
	n, err = f.services.Update(ctx, "si-1", si.Patch{FollowupDate: si.PatchDate{Present: true}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err = f.services.GetByID(ctx, "si-1")
	require.NoError(t, err)
	assert.Nil(t, got.FollowupDate)
	assert.Equal(t, "limping", got.Reason)
}

func TestServices_UpdateWithoutFieldsStillTouchesRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Create(ctx, f.instance(t, "si-1"))
	require.NoError(t, err)

	n, err := f.services.Update(ctx, "si-1", si.Patch{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = f.services.Update(ctx, "missing", si.Patch{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestServices_UpdateMissingWithTagsInsertsNothing(t *testing.T) {
	f := newFixture(t)

	tags := []string{"x"}
	n, err := f.services.Update(context.Background(), "missing", si.Patch{ServiceTypes: &tags, Reason: strPtr("r")})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, countRows(t, f.db, "service_type"))
}

func TestServices_HistoryGroupsTagsPerInstance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, in := range []si.Instance{
		f.instance(t, "si-1", "grooming", "surgery"),
		f.instance(t, "si-2", "preventive", "grooming"),
		f.instance(t, "si-3"),
	} {
		_, err := f.services.Create(ctx, in)
		require.NoError(t, err)
	}

	got, err := f.services.HistoryByPet(ctx, si.HistoryQuery{PetID: f.petID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "si-1", got[0].ID)
	assert.Equal(t, "si-2", got[1].ID)
	assert.Equal(t, "si-3", got[2].ID)
	assert.ElementsMatch(t, []string{"grooming", "surgery"}, got[0].ServiceTypes)
	assert.ElementsMatch(t, []string{"preventive", "grooming"}, got[1].ServiceTypes)
}

// La fila nula del LEFT JOIN se omite a propósito: la instancia sin etiquetas
// sale con lista vacía, no con un valor nulo o "" dentro de la lista.
func TestServices_HistoryUntaggedInstanceHasEmptyTagList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Create(ctx, f.instance(t, "si-untagged"))
	require.NoError(t, err)

	got, err := f.services.HistoryByPet(ctx, si.HistoryQuery{PetID: f.petID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].ServiceTypes)
	assert.Len(t, got[0].ServiceTypes, 0)
	assert.NotContains(t, got[0].ServiceTypes, "")
}

func TestServices_HistoryPaginatesInstancesNotRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := f.services.Create(ctx, f.instance(t, fmt.Sprintf("si-%d", i), "a", "b", "c"))
		require.NoError(t, err)
	}

	page, err := f.services.HistoryByPet(ctx, si.HistoryQuery{PetID: f.petID, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "si-3", page[0].ID)
	assert.Equal(t, "si-4", page[1].ID)
	assert.Len(t, page[0].ServiceTypes, 3)
	assert.Len(t, page[1].ServiceTypes, 3)
}

func TestServices_HistoryDateRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, d := range []string{"2024-01-10", "2024-02-10", "2024-03-10"} {
		in := f.instance(t, fmt.Sprintf("si-%d", i+1), "a")
		in.ServiceDate = mustDate(t, d)
		_, err := f.services.Create(ctx, in)
		require.NoError(t, err)
	}

	from, to := mustDate(t, "2024-02-01"), mustDate(t, "2024-03-10")
	got, err := f.services.HistoryByPet(ctx, si.HistoryQuery{PetID: f.petID, Limit: 10, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "si-2", got[0].ID)
	assert.Equal(t, "si-3", got[1].ID)

	none, err := f.services.HistoryByPet(ctx, si.HistoryQuery{PetID: "other-pet", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestServices_AddChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Create(ctx, f.instance(t, "si-1", "grooming"))
	require.NoError(t, err)

	gs, err := f.services.AddGroomings(ctx, "si-1", []string{"bath", "haircut"})
	require.NoError(t, err)
	require.Len(t, gs, 2)
	assert.Equal(t, "si-1", gs[0].InstanceID)

	pcs, err := f.services.AddPreventiveCare(ctx, "si-1", si.NewPreventiveCare{
		Treatments: []string{"rabies", "flea"},
		VetID:      f.vetID,
	})
	require.NoError(t, err)
	require.Len(t, pcs, 2)
	assert.Equal(t, f.vetID, pcs[1].VetID)

	s, err := f.services.AddSurgery(ctx, "si-1", si.NewSurgery{Name: "dental", VetID: f.vetID})
	require.NoError(t, err)
	assert.NotZero(t, s.ID)

	got, err := f.services.GetByID(ctx, "si-1")
	require.NoError(t, err)
	assert.Len(t, got.Groomings, 2)
	assert.Len(t, got.PreventiveCare, 2)
	require.NotNil(t, got.Surgery)
	assert.Equal(t, "dental", got.Surgery.Name)
}

func TestServices_AddChildrenToMissingInstance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.AddGroomings(ctx, "missing", []string{"bath"})
	assert.True(t, errors.Is(err, errors.NotFound))

	_, err = f.services.AddPreventiveCare(ctx, "missing", si.NewPreventiveCare{Treatments: []string{"x"}, VetID: f.vetID})
	assert.True(t, errors.Is(err, errors.NotFound))

	_, err = f.services.AddSurgery(ctx, "missing", si.NewSurgery{Name: "x", VetID: f.vetID})
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestServices_SecondSurgeryIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.instance(t, "si-1", "surgery")
	in.Surgery = &si.Surgery{Name: "spay", VetID: f.vetID}
	_, err := f.services.Create(ctx, in)
	require.NoError(t, err)

	_, err = f.services.AddSurgery(ctx, "si-1", si.NewSurgery{Name: "again", VetID: f.vetID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.AlreadyExists))
	assert.Equal(t, 1, countRows(t, f.db, "surgery"))
}

func TestServices_UpdateSurgeryPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.instance(t, "si-1", "surgery")
	in.Surgery = &si.Surgery{Name: "spay", Outcome: strPtr("pending"), VetID: f.vetID}
	created, err := f.services.Create(ctx, in)
	require.NoError(t, err)

	n, err := f.services.UpdateSurgery(ctx, created.Surgery.ID, si.SurgeryPatch{Complications: strPtr("none")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := f.services.GetByID(ctx, "si-1")
	require.NoError(t, err)
	assert.Equal(t, "spay", got.Surgery.Name)
	assert.Equal(t, strPtr("pending"), got.Surgery.Outcome)
	assert.Equal(t, strPtr("none"), got.Surgery.Complications)

	n, err = f.services.UpdateSurgery(ctx, 9999, si.SurgeryPatch{Name: strPtr("x")})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestServices_DeleteChildByMissingIDIsZeroRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.services.DeleteGrooming(ctx, 424242)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.services.DeletePreventiveCare(ctx, 424242)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.services.DeleteSurgery(ctx, 424242)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestServices_DeleteChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.instance(t, "si-1", "grooming")
	in.Groomings = []si.Grooming{{Type: "bath"}, {Type: "nails"}}
	in.PreventiveCare = []si.PreventiveCare{{Treatment: "rabies", VetID: f.vetID}}
	in.Surgery = &si.Surgery{Name: "spay", VetID: f.vetID}
	created, err := f.services.Create(ctx, in)
	require.NoError(t, err)

	n, err := f.services.DeleteGrooming(ctx, created.Groomings[0].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = f.services.DeletePreventiveCare(ctx, created.PreventiveCare[0].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = f.services.DeleteSurgery(ctx, created.Surgery.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := f.services.GetByID(ctx, "si-1")
	require.NoError(t, err)
	require.Len(t, got.Groomings, 1)
	assert.Equal(t, "nails", got.Groomings[0].Type)
	assert.Nil(t, got.PreventiveCare)
	assert.Nil(t, got.Surgery)
}

func TestServices_DeleteRemovesWholeAggregate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.instance(t, "si-1", "a", "b")
	in.Groomings = []si.Grooming{{Type: "bath"}}
	in.PreventiveCare = []si.PreventiveCare{{Treatment: "rabies", VetID: f.vetID}}
	in.Surgery = &si.Surgery{Name: "spay", VetID: f.vetID}
	_, err := f.services.Create(ctx, in)
	require.NoError(t, err)

	n, err := f.services.Delete(ctx, "si-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	for _, table := range []string{"service_instance", "service_type", "grooming", "preventive_care", "surgery"} {
		assert.Zero(t, countRows(t, f.db, table), table)
	}

	n, err = f.services.Delete(ctx, "si-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestServices_DateScanRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.instance(t, "si-1")
	in.ServiceDate = dates.Date{Year: 2023, Month: 12, Day: 31}
	_, err := f.services.Create(ctx, in)
	require.NoError(t, err)

	got, err := f.services.GetByID(ctx, "si-1")
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", got.ServiceDate.String())
}
