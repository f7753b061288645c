package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/salon-booking/internal/database"
	"github.com/iliyamo/salon-booking/internal/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, database.SQLite))
	return db
}

func seedCatalog(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx := context.Background()
	cat := NewCatalogRepo(db)
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	specialists := []model.Specialist{
		{ID: model.AnySpecialistID, Name: model.AnySpecialistName, Specialties: "all", Available: true},
		{ID: 2, Name: "Lea", Specialties: "nails", Available: true},
		{ID: 5, Name: "Reen", Specialties: "hair", Available: true},
	}
	for i := range specialists {
		require.NoError(t, cat.CreateSpecialistTx(ctx, tx, &specialists[i]))
	}
	services := []model.Service{
		{ID: 4, Name: "Blow-dry", Price: 100, Minutes: 35, Category: "hair"},
		{ID: 5, Name: "Updo", Price: 200, Minutes: 52, Category: "hair"},
	}
	for i := range services {
		require.NoError(t, cat.CreateServiceTx(ctx, tx, &services[i]))
	}
	require.NoError(t, tx.Commit())
}

func ptr[T any](v T) *T { return &v }

func insertBooking(t *testing.T, repo *BookingRepo, b *model.Booking) {
	t.Helper()
	ctx := context.Background()
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	if b.Status == "" {
		b.Status = model.StatusConfirmed
	}
	require.NoError(t, repo.CreateTx(ctx, tx, b))
	require.NoError(t, repo.CreateItemsBulkTx(ctx, tx, b.ID, b.Items))
	require.NoError(t, repo.Commit(tx))
}

func noraBooking() *model.Booking {
	return &model.Booking{
		CustomerName:   "Nora",
		ContactMethod:  model.ContactPhone,
		ContactValue:   "0501234567",
		DateISO:        "2025-10-15",
		Time:           "12:15",
		SpecialistID:   ptr(uint64(2)),
		SpecialistName: "Lea",
		Total:          300,
		Items: []model.BookingItem{
			{ServiceID: ptr(uint64(4)), ServiceName: "Blow-dry", Price: 100, Minutes: 35, SpecialistID: ptr(uint64(5)), SpecialistName: ptr("Reen")},
			{ServiceID: ptr(uint64(5)), ServiceName: "Updo", Price: 200, Minutes: 52, SpecialistID: ptr(uint64(5)), SpecialistName: ptr("Reen")},
		},
	}
}

func TestCatalogListing(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	cat := NewCatalogRepo(db)
	ctx := context.Background()

	services, err := cat.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "Blow-dry", services[0].Name)

	specialists, err := cat.ListSpecialists(ctx)
	require.NoError(t, err)
	require.Len(t, specialists, 3)
	assert.Equal(t, model.AnySpecialistName, specialists[0].Name)
	assert.Equal(t, model.AnySpecialistID, specialists[0].ID)
	assert.Nil(t, specialists[0].Rating)
}

func TestCatalogLookupUnknownReturnsNil(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	cat := NewCatalogRepo(db)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	s, err := cat.GetServiceTx(ctx, tx, 999)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = cat.GetServiceTx(ctx, tx, 4)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 100, s.Price)

	sp, err := cat.GetSpecialistTx(ctx, tx, 5)
	require.NoError(t, err)
	require.NotNil(t, sp)
	assert.Equal(t, "Reen", sp.Name)
}

func TestCreateAndGetBooking(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewBookingRepo(db, database.SQLite)
	b := noraBooking()
	insertBooking(t, repo, b)
	require.NotZero(t, b.ID)

	got, err := repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nora", got.CustomerName)
	assert.Equal(t, 300, got.Total)
	assert.Equal(t, model.StatusConfirmed, got.Status)
	require.NotNil(t, got.SpecialistID)
	assert.Equal(t, uint64(2), *got.SpecialistID)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Blow-dry", got.Items[0].ServiceName)
	assert.Equal(t, "Reen", *got.Items[1].SpecialistName)
	assert.Nil(t, got.Items[0].Details)
	assert.WithinDuration(t, b.CreatedAt, got.CreatedAt, time.Second)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewBookingRepo(newTestDB(t), database.SQLite)
	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestIdentityAndSlotLookups(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewBookingRepo(db, database.SQLite)
	insertBooking(t, repo, noraBooking())
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	name, ok, err := repo.FindCustomerNameTx(ctx, tx, "0501234567")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Nora", name)

	_, ok, err = repo.FindCustomerNameTx(ctx, tx, "0000000000")
	require.NoError(t, err)
	assert.False(t, ok)

	taken, err := repo.ContactHasSlotTx(ctx, tx, "0501234567", "2025-10-15", "12:15")
	require.NoError(t, err)
	assert.True(t, taken)
	require.NoError(t, tx.Rollback())

	taken, err = repo.ContactHasSlot(ctx, "0501234567", "2025-10-15", "12:30")
	require.NoError(t, err)
	assert.False(t, taken)

	busy, err := repo.SpecialistHasSlot(ctx, 2, "2025-10-15", "12:15")
	require.NoError(t, err)
	assert.True(t, busy)

	busy, err = repo.SpecialistHasSlot(ctx, 5, "2025-10-15", "12:15")
	require.NoError(t, err)
	assert.False(t, busy)
}

func TestUsedSlotsIgnoresCancelled(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewBookingRepo(db, database.SQLite)
	ctx := context.Background()

	insertBooking(t, repo, noraBooking())
	other := noraBooking()
	other.ContactValue = "0509999999"
	other.Time = "14:00"
	other.SpecialistID = ptr(uint64(5))
	insertBooking(t, repo, other)
	gone := noraBooking()
	gone.ContactValue = "0508888888"
	gone.Time = "16:00"
	gone.Status = model.StatusCancelled
	insertBooking(t, repo, gone)

	used, err := repo.UsedSlots(ctx, "2025-10-15", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"12:15", "14:00"}, used)

	used, err = repo.UsedSlots(ctx, "2025-10-15", ptr(uint64(5)))
	require.NoError(t, err)
	assert.Equal(t, []string{"14:00"}, used)

	used, err = repo.UsedSlots(ctx, "2025-10-16", nil)
	require.NoError(t, err)
	assert.Empty(t, used)
}

func TestItemRemovalAndStatus(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewBookingRepo(db, database.SQLite)
	b := noraBooking()
	insertBooking(t, repo, b)
	ctx := context.Background()

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	itemID := got.Items[0].ID

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	locked, err := repo.LockTx(ctx, tx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, locked.Total)

	_, err = repo.LockTx(ctx, tx, b.ID+100)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	n, err := repo.CountItemsTx(ctx, tx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	it, err := repo.GetItemTx(ctx, tx, b.ID, itemID)
	require.NoError(t, err)
	assert.Equal(t, 100, it.Price)

	_, err = repo.GetItemTx(ctx, tx, b.ID+1, itemID)
	assert.ErrorIs(t, err, ErrItemNotFound)

	require.NoError(t, repo.DeleteItemTx(ctx, tx, b.ID, itemID))
	require.NoError(t, repo.UpdateTotalTx(ctx, tx, b.ID, 200))
	require.NoError(t, repo.SetStatusTx(ctx, tx, b.ID, model.StatusCancelled))
	require.NoError(t, repo.Commit(tx))

	got, err = repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 200, got.Total)
	assert.Equal(t, model.StatusCancelled, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Updo", got.Items[0].ServiceName)
}

func TestListConfirmedNewestFirst(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewBookingRepo(db, database.SQLite)
	ctx := context.Background()

	base := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	first := noraBooking()
	first.CreatedAt = base
	insertBooking(t, repo, first)
	second := noraBooking()
	second.ContactValue = "0509999999"
	second.CreatedAt = base.Add(time.Hour)
	second.Items = nil
	insertBooking(t, repo, second)
	cancelled := noraBooking()
	cancelled.ContactValue = "0508888888"
	cancelled.Status = model.StatusCancelled
	cancelled.CreatedAt = base.Add(2 * time.Hour)
	insertBooking(t, repo, cancelled)

	list, err := repo.ListConfirmed(ctx, 50)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.NotNil(t, list[0].Items)
	assert.Empty(t, list[0].Items)
	assert.Len(t, list[1].Items, 2)

	list, err = repo.ListConfirmed(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestListConfirmedEmpty(t *testing.T) {
	repo := NewBookingRepo(newTestDB(t), database.SQLite)
	list, err := repo.ListConfirmed(context.Background(), 50)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestMySQLDeadlockMapsToConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepo(db, database.MySQL)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET status").
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"})
	mock.ExpectRollback()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	err = repo.SetStatusTx(ctx, tx, 1, model.StatusCancelled)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLLockUsesForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepo(db, database.MySQL)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	_, err = repo.LockTx(ctx, tx, 7)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapErrorLeavesOtherErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, mapError(plain))
	assert.Nil(t, mapError(nil))

	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	assert.NotErrorIs(t, mapError(dup), ErrConflict)
}

func TestReadPathsMapLockTimeoutToConflict(t *testing.T) {
	lockWait := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	ctx := context.Background()
	specialist := uint64(3)

	reads := map[string]func(r *BookingRepo) error{
		"used slots": func(r *BookingRepo) error {
			_, err := r.UsedSlots(ctx, "2025-10-15", &specialist)
			return err
		},
		"specialist slot": func(r *BookingRepo) error {
			_, err := r.SpecialistHasSlot(ctx, specialist, "2025-10-15", "12:15")
			return err
		},
		"get": func(r *BookingRepo) error {
			_, err := r.GetByID(ctx, 1)
			return err
		},
		"list": func(r *BookingRepo) error {
			_, err := r.ListConfirmed(ctx, 10)
			return err
		},
	}
	for name, read := range reads {
		t.Run(name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery("FROM bookings").WillReturnError(lockWait)
			err = read(NewBookingRepo(db, database.MySQL))
			assert.ErrorIs(t, err, ErrConflict)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
