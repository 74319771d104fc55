package equipment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitchenequip/equipment-backend/pkg/db"
	"github.com/kitchenequip/equipment-backend/pkg/db/dbtest"
	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
	pkgerrors "github.com/kitchenequip/equipment-backend/pkg/errors"
)

type fixture struct {
	client *db.Client
	svc    Service
	super  *models.User
	alice  *models.User
	bob    *models.User
}

func newFixture(t *testing.T, scope enums.SerialScope) fixture {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(ServiceParams{DB: client, SerialScope: scope})
	require.NoError(t, err)
	return fixture{
		client: client,
		svc:    svc,
		super:  dbtest.CreateUser(t, client, "root", enums.UserTypeSuperAdmin),
		alice:  dbtest.CreateUser(t, client, "alice", enums.UserTypeAdmin),
		bob:    dbtest.CreateUser(t, client, "bob", enums.UserTypeAdmin),
	}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, pkgerrors.CodeOf(err), "error: %v", err)
}

func ptr[T any](v T) *T { return &v }

func TestNewServiceValidatesParams(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)

	_, err = NewService(ServiceParams{DB: dbtest.Open(t), SerialScope: "planet"})
	require.Error(t, err)
}

func TestCreateRejectsDuplicateSerialPerOwner(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.alice.ID, CreateEquipmentRequest{SerialNumber: " SN-1 "})
	require.NoError(t, err)
	assert.Equal(t, "SN-1", first.SerialNumber)
	assert.Equal(t, f.alice.ID, first.UserID)
	assert.Equal(t, enums.EquipmentConditionWorking, first.Condition)

	_, err = f.svc.Create(ctx, f.alice.ID, CreateEquipmentRequest{SerialNumber: "SN-1"})
	requireCode(t, err, pkgerrors.CodeConflict)
	assert.Equal(t, "Serial number already exists.", pkgerrors.As(err).Message())

	// another owner may reuse the serial
	_, err = f.svc.Create(ctx, f.bob.ID, CreateEquipmentRequest{SerialNumber: "SN-1"})
	require.NoError(t, err)
}

func TestCreateGlobalSerialScope(t *testing.T) {
	f := newFixture(t, enums.SerialScopeGlobal)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.alice.ID, CreateEquipmentRequest{SerialNumber: "SN-1"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.bob.ID, CreateEquipmentRequest{SerialNumber: "SN-1"})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateSerialFreedBySoftDelete(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	e, err := f.svc.Create(ctx, f.alice.ID, CreateEquipmentRequest{SerialNumber: "SN-1"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, f.alice.ID, e.ID))

	_, err = f.svc.Create(ctx, f.alice.ID, CreateEquipmentRequest{SerialNumber: "SN-1"})
	require.NoError(t, err)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.alice.ID, CreateEquipmentRequest{SerialNumber: "   "})
	requireCode(t, err, pkgerrors.CodeValidation)
	assert.Equal(t, []string{"Serial number is required."}, pkgerrors.Messages(err))

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'x'
	}
	_, err = f.svc.Create(ctx, f.alice.ID, CreateEquipmentRequest{SerialNumber: "SN", Description: ptr(string(long))})
	requireCode(t, err, pkgerrors.CodeValidation)
	assert.Equal(t, []string{"Description must be at most 200 characters."}, pkgerrors.Messages(err))

	_, err = f.svc.Create(ctx, f.alice.ID, CreateEquipmentRequest{SerialNumber: "SN", Condition: "Broken"})
	requireCode(t, err, pkgerrors.CodeValidation)

	e, err := f.svc.Create(ctx, f.alice.ID, CreateEquipmentRequest{SerialNumber: "SN", Condition: "notworking"})
	require.NoError(t, err)
	assert.Equal(t, enums.EquipmentConditionNotWorking, e.Condition)
}

func TestCreateWithSiteWritesRegister(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	site := dbtest.CreateSite(t, f.client, f.alice, "A-1", "Alice Kitchen")
	bobSite := dbtest.CreateSite(t, f.client, f.bob, "B-1", "Bob Kitchen")

	e, err := f.svc.Create(ctx, f.alice.ID, CreateEquipmentRequest{SerialNumber: "SN-1", SiteID: &site.ID})
	require.NoError(t, err)

	rows := dbtest.History(t, f.client)
	require.Len(t, rows, 1)
	assert.Equal(t, e.ID, rows[0].EquipmentID)
	assert.Equal(t, site.ID, rows[0].SiteID)
	assert.Equal(t, enums.HistoryActionRegister, rows[0].Action)
	assert.Equal(t, f.alice.ID, rows[0].ActorID)

	_, err = f.svc.Create(ctx, f.alice.ID, CreateEquipmentRequest{SerialNumber: "SN-2", SiteID: &bobSite.ID})
	requireCode(t, err, pkgerrors.CodeValidation)
	assert.Equal(t, "Site belongs to a different user.", pkgerrors.As(err).Message())

	_, err = f.svc.Create(ctx, f.alice.ID, CreateEquipmentRequest{SerialNumber: "SN-3", SiteID: ptr(int64(999))})
	requireCode(t, err, pkgerrors.CodeNotFound)

	dbtest.SoftDelete(t, f.client, site)
	_, err = f.svc.Create(ctx, f.alice.ID, CreateEquipmentRequest{SerialNumber: "SN-4", SiteID: &site.ID})
	requireCode(t, err, pkgerrors.CodeNotFound)

	// failed creates leave no history behind
	assert.Len(t, dbtest.History(t, f.client), 1)
}

func TestCreateForAnotherOwnerRequiresSuperAdmin(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.alice.ID, CreateEquipmentRequest{UserID: f.bob.ID, SerialNumber: "SN-1"})
	requireCode(t, err, pkgerrors.CodeForbidden)

	e, err := f.svc.Create(ctx, f.super.ID, CreateEquipmentRequest{UserID: f.bob.ID, SerialNumber: "SN-1"})
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, e.UserID)

	_, err = f.svc.Create(ctx, f.super.ID, CreateEquipmentRequest{UserID: 999, SerialNumber: "SN-1"})
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = f.svc.Create(ctx, 999, CreateEquipmentRequest{SerialNumber: "SN-9"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestUpdateMovesBetweenSitesWithHistory(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	siteA := dbtest.CreateSite(t, f.client, f.alice, "A-1", "Front")
	siteB := dbtest.CreateSite(t, f.client, f.alice, "A-2", "Back")
	e := dbtest.CreateEquipment(t, f.client, f.alice, "SN-1", siteA)

	updated, err := f.svc.Update(ctx, f.alice.ID, e.ID, UpdateEquipmentRequest{
		SiteID:       &siteB.ID,
		SerialNumber: "SN-1",
		Name:         ptr("Combi oven"),
		Condition:    "Not Working",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.SiteID)
	assert.Equal(t, siteB.ID, *updated.SiteID)
	assert.Equal(t, "Combi oven", *updated.Name)
	assert.Equal(t, enums.EquipmentConditionNotWorking, updated.Condition)

	rows := dbtest.History(t, f.client)
	require.Len(t, rows, 2)
	assert.Equal(t, enums.HistoryActionUnregister, rows[0].Action)
	assert.Equal(t, siteA.ID, rows[0].SiteID)
	assert.Equal(t, enums.HistoryActionRegister, rows[1].Action)
	assert.Equal(t, siteB.ID, rows[1].SiteID)

	// same site again writes nothing
	_, err = f.svc.Update(ctx, f.alice.ID, e.ID, UpdateEquipmentRequest{SiteID: &siteB.ID, SerialNumber: "SN-1"})
	require.NoError(t, err)
	assert.Len(t, dbtest.History(t, f.client), 2)

	// unassigning writes one Unregister
	_, err = f.svc.Update(ctx, f.alice.ID, e.ID, UpdateEquipmentRequest{SerialNumber: "SN-1"})
	require.NoError(t, err)
	rows = dbtest.History(t, f.client)
	require.Len(t, rows, 3)
	assert.Equal(t, enums.HistoryActionUnregister, rows[2].Action)
	assert.Equal(t, siteB.ID, rows[2].SiteID)
}

func TestUpdateCrossOwnerTransfer(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	aliceSite := dbtest.CreateSite(t, f.client, f.alice, "A-1", "Alice Kitchen")
	bobSite := dbtest.CreateSite(t, f.client, f.bob, "B-1", "Bob Kitchen")
	e := dbtest.CreateEquipment(t, f.client, f.alice, "SN-1", aliceSite)

	_, err := f.svc.Update(ctx, f.alice.ID, e.ID, UpdateEquipmentRequest{SiteID: &bobSite.ID, SerialNumber: "SN-1"})
	requireCode(t, err, pkgerrors.CodeForbidden)
	assert.Empty(t, dbtest.History(t, f.client))

	moved, err := f.svc.Update(ctx, f.super.ID, e.ID, UpdateEquipmentRequest{SiteID: &bobSite.ID, SerialNumber: "SN-1"})
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, moved.UserID)
	assert.Equal(t, bobSite.ID, *moved.SiteID)

	rows := dbtest.History(t, f.client)
	require.Len(t, rows, 2)
	assert.Equal(t, enums.HistoryActionUnregister, rows[0].Action)
	assert.Equal(t, enums.HistoryActionRegister, rows[1].Action)
	assert.Equal(t, f.super.ID, rows[1].ActorID)

	// alice no longer manages it
	_, err = f.svc.Get(ctx, f.alice.ID, e.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)
	got, err := f.svc.Get(ctx, f.bob.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "SN-1", got.SerialNumber)
}

func TestUpdateCrossOwnerSerialConflict(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	bobSite := dbtest.CreateSite(t, f.client, f.bob, "B-1", "Bob Kitchen")
	e := dbtest.CreateEquipment(t, f.client, f.alice, "SN-1", nil)
	dbtest.CreateEquipment(t, f.client, f.bob, "SN-1", nil)

	_, err := f.svc.Update(ctx, f.super.ID, e.ID, UpdateEquipmentRequest{SiteID: &bobSite.ID, SerialNumber: "SN-1"})
	requireCode(t, err, pkgerrors.CodeConflict)
	assert.Equal(t, "Serial number already exists for the target user.", pkgerrors.As(err).Message())

	reloaded, err := NewRepository(f.client.DB()).FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, reloaded.UserID)
	assert.Nil(t, reloaded.SiteID)
}

func TestUpdateNotFoundAndForbidden(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	e := dbtest.CreateEquipment(t, f.client, f.alice, "SN-1", nil)
	other := dbtest.CreateEquipment(t, f.client, f.alice, "SN-2", nil)

	_, err := f.svc.Update(ctx, f.alice.ID, 999, UpdateEquipmentRequest{SerialNumber: "X"})
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = f.svc.Update(ctx, f.bob.ID, e.ID, UpdateEquipmentRequest{SerialNumber: "X"})
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = f.svc.Update(ctx, f.alice.ID, e.ID, UpdateEquipmentRequest{SerialNumber: "SN-2"})
	requireCode(t, err, pkgerrors.CodeConflict)

	dbtest.SoftDelete(t, f.client, other)
	_, err = f.svc.Update(ctx, f.alice.ID, other.ID, UpdateEquipmentRequest{SerialNumber: "SN-2"})
	requireCode(t, err, pkgerrors.CodeNotFound)

	// the deleted serial no longer conflicts
	_, err = f.svc.Update(ctx, f.alice.ID, e.ID, UpdateEquipmentRequest{SerialNumber: "SN-2"})
	require.NoError(t, err)
}

func TestDeleteIsIdempotent(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	e := dbtest.CreateEquipment(t, f.client, f.alice, "SN-1", nil)

	requireCode(t, f.svc.Delete(ctx, f.bob.ID, e.ID), pkgerrors.CodeForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.alice.ID, e.ID))
	require.NoError(t, f.svc.Delete(ctx, f.alice.ID, e.ID))
	require.NoError(t, f.svc.Delete(ctx, f.alice.ID, 12345))

	deleted, err := NewRepository(f.client.DB()).FindByIDUnscoped(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted())
	require.NotNil(t, deleted.DeletedBy)
	assert.Equal(t, f.alice.ID, *deleted.DeletedBy)

	_, err = f.svc.Get(ctx, f.alice.ID, e.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestListForOwner(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	dbtest.CreateEquipment(t, f.client, f.alice, "OVEN-1", nil)
	dbtest.CreateEquipment(t, f.client, f.alice, "FRY-1", nil)
	dbtest.CreateEquipment(t, f.client, f.bob, "OVEN-2", nil)

	page, err := f.svc.List(ctx, f.alice.ID, f.alice.ID, OwnerQuery{Search: "oven"})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	assert.Equal(t, "OVEN-1", page.Items[0].SerialNumber)

	page, err = f.svc.List(ctx, f.bob.ID, f.alice.ID, OwnerQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = f.svc.List(ctx, f.super.ID, f.alice.ID, OwnerQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
}

func TestGetPaged(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	for _, serial := range []string{"C-3", "A-1", "B-2"} {
		dbtest.CreateEquipment(t, f.client, f.alice, serial, nil)
	}
	dbtest.CreateEquipment(t, f.client, f.bob, "Z-9", nil)
	gone := dbtest.CreateEquipment(t, f.client, f.alice, "D-4", nil)
	dbtest.SoftDelete(t, f.client, gone)

	page, err := f.svc.GetPaged(ctx, f.super.ID, PagedQuery{OrderBy: "SerialNumber"})
	require.NoError(t, err)
	require.EqualValues(t, 4, page.Total)
	assert.Equal(t, []string{"A-1", "B-2", "C-3", "Z-9"}, serials(page.Items))

	// unknown sort fields fall back to id ascending
	page, err = f.svc.GetPaged(ctx, f.super.ID, PagedQuery{OrderBy: "bogus", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"C-3", "A-1", "B-2", "Z-9"}, serials(page.Items))

	page, err = f.svc.GetPaged(ctx, f.super.ID, PagedQuery{OwnerID: f.bob.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Z-9"}, serials(page.Items))

	page, err = f.svc.GetPaged(ctx, f.alice.ID, PagedQuery{OrderBy: "serialnumber", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"C-3", "B-2", "A-1"}, serials(page.Items))

	page, err = f.svc.GetPaged(ctx, f.alice.ID, PagedQuery{OwnerID: f.bob.ID})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = f.svc.GetPaged(ctx, f.alice.ID, PagedQuery{Search: "b-"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B-2"}, serials(page.Items))
}

func TestGetPagedClampsPage(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	for _, serial := range []string{"S-1", "S-2", "S-3"} {
		dbtest.CreateEquipment(t, f.client, f.alice, serial, nil)
	}

	page, err := f.svc.GetPaged(ctx, f.alice.ID, PagedQuery{Page: 9, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, []string{"S-3"}, serials(page.Items))

	empty, err := f.svc.GetPaged(ctx, f.bob.ID, PagedQuery{Page: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Equal(t, 1, empty.Page)
	assert.Empty(t, empty.Items)
}

func TestGetPagedInvalidActor(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	dbtest.CreateEquipment(t, f.client, f.alice, "S-1", nil)
	dbtest.SoftDelete(t, f.client, f.alice)

	page, err := f.svc.GetPaged(ctx, f.alice.ID, PagedQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = f.svc.GetPaged(ctx, 0, PagedQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func serials(items []EquipmentDTO) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.SerialNumber)
	}
	return out
}
