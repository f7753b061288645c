package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/salon-booking/internal/database"
	"github.com/iliyamo/salon-booking/internal/model"
)

// BookingRepo provides persistence for bookings and their items.  Items
// are stored in booking_items and are removed with their booking through
// ON DELETE CASCADE.  Methods with a Tx suffix run inside the caller's
// transaction and never commit it.
type BookingRepo struct {
	db     *sql.DB
	driver string
}

// NewBookingRepo returns a BookingRepo bound to db.  driver is one of
// database.MySQL or database.SQLite and selects the locking strategy.
func NewBookingRepo(db *sql.DB, driver string) *BookingRepo {
	return &BookingRepo{db: db, driver: driver}
}

// BeginTx starts a write transaction.  On MySQL it runs at SERIALIZABLE
// so that the conflict checks' reads take shared locks and a racing
// insert for the same contact aborts instead of slipping through.
// SQLite serializes writers through its single connection.
func (r *BookingRepo) BeginTx(ctx context.Context) (*sql.Tx, error) {
	var opts *sql.TxOptions
	if r.driver == database.MySQL {
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	tx, err := r.db.BeginTx(ctx, opts)
	return tx, mapError(err)
}

// Commit commits tx, translating lost races into ErrConflict.
func (r *BookingRepo) Commit(tx *sql.Tx) error {
	return mapError(tx.Commit())
}

// forUpdate returns the row-locking suffix for the current driver.
func (r *BookingRepo) forUpdate() string {
	if r.driver == database.MySQL {
		return " FOR UPDATE"
	}
	return ""
}

// FindCustomerNameTx returns the customer name recorded on any confirmed
// booking with the given normalized contact value.  ok is false when the
// contact has no confirmed booking.
func (r *BookingRepo) FindCustomerNameTx(ctx context.Context, tx *sql.Tx, contact string) (name string, ok bool, err error) {
	const q = `SELECT customer_name FROM bookings
	           WHERE contact_value = ? AND status = 'confirmed'
	           ORDER BY id ASC LIMIT 1`
	err = tx.QueryRowContext(ctx, q, contact).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, mapError(err)
	}
	return name, true, nil
}

// contactHasSlot runs the contact and slot lookup against q, which may be
// the pool or a transaction.
func (r *BookingRepo) contactHasSlot(ctx context.Context, q dbtx, contact, date, slot string) (bool, error) {
	const sel = `SELECT id FROM bookings
	             WHERE contact_value = ? AND date_iso = ? AND time_str = ? AND status = 'confirmed'
	             LIMIT 1`
	var id uint64
	err := q.QueryRowContext(ctx, sel, contact, date, slot).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapError(err)
	}
	return true, nil
}

// ContactHasSlotTx is ContactHasSlot inside tx.
func (r *BookingRepo) ContactHasSlotTx(ctx context.Context, tx *sql.Tx, contact, date, slot string) (bool, error) {
	return r.contactHasSlot(ctx, tx, contact, date, slot)
}

// ContactHasSlot reports whether a confirmed booking exists for contact
// at date and time.
func (r *BookingRepo) ContactHasSlot(ctx context.Context, contact, date, slot string) (bool, error) {
	return r.contactHasSlot(ctx, r.db, contact, date, slot)
}

// SpecialistHasSlot reports whether the specialist already has a confirmed
// booking at date and time.
func (r *BookingRepo) SpecialistHasSlot(ctx context.Context, specialistID uint64, date, slot string) (bool, error) {
	const q = `SELECT id FROM bookings
	           WHERE professional_id = ? AND date_iso = ? AND time_str = ? AND status = 'confirmed'
	           LIMIT 1`
	var id uint64
	err := r.db.QueryRowContext(ctx, q, specialistID, date, slot).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapError(err)
	}
	return true, nil
}

// UsedSlots returns the distinct slot tokens taken by confirmed bookings
// on date.  When specialistID is non-nil only that specialist's bookings
// count.
func (r *BookingRepo) UsedSlots(ctx context.Context, date string, specialistID *uint64) ([]string, error) {
	q := `SELECT DISTINCT time_str FROM bookings WHERE date_iso = ? AND status = 'confirmed'`
	args := []any{date}
	if specialistID != nil {
		q += ` AND professional_id = ?`
		args = append(args, *specialistID)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	used := make([]string, 0)
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, mapError(err)
		}
		used = append(used, slot)
	}
	return used, mapError(rows.Err())
}

// CreateTx inserts the booking header inside tx and stores the generated
// id on b.  Items are inserted separately with CreateItemsBulkTx.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
	             (customer_name, contact_method, contact_value,
	              date_iso, date_display, time_str,
	              professional_id, professional_name, total, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.CustomerName, b.ContactMethod, b.ContactValue,
		b.DateISO, b.DateDisplay, b.Time,
		nullUint64(b.SpecialistID), b.SpecialistName, b.Total, b.Status, b.CreatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// CreateItemsBulkTx inserts all items of one booking in a single
// statement.  Passing an empty slice has no effect.
func (r *BookingRepo) CreateItemsBulkTx(ctx context.Context, tx *sql.Tx, bookingID uint64, items []model.BookingItem) error {
	if len(items) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO booking_items
	  (booking_id, service_id, service_name, price, minutes, professional_id, professional_name, details) VALUES `)
	args := make([]any, 0, len(items)*8)
	for i, it := range items {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, bookingID, nullUint64(it.ServiceID), it.ServiceName, it.Price, it.Minutes,
			nullUint64(it.SpecialistID), nullString(it.SpecialistName), nullString(it.Details))
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return mapError(err)
}

// LockTx loads a booking header inside tx, locking the row on MySQL.  It
// returns ErrBookingNotFound when the id is unknown.  Items are not
// loaded.
func (r *BookingRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	q := `SELECT id, customer_name, contact_method, contact_value, date_iso, date_display, time_str,
	             professional_id, professional_name, total, status, created_at
	      FROM bookings WHERE id = ?` + r.forUpdate()
	b, err := scanBooking(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

// CountItemsTx returns the number of items currently under the booking.
func (r *BookingRepo) CountItemsTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM booking_items WHERE booking_id = ?`, bookingID).Scan(&n)
	return n, mapError(err)
}

// GetItemTx loads one item, scoped to its booking.  It returns
// ErrItemNotFound when the item does not belong to bookingID.
func (r *BookingRepo) GetItemTx(ctx context.Context, tx *sql.Tx, bookingID, itemID uint64) (*model.BookingItem, error) {
	const q = `SELECT id, booking_id, service_id, service_name, price, minutes,
	                  professional_id, professional_name, details
	           FROM booking_items WHERE id = ? AND booking_id = ?`
	it, err := scanItem(tx.QueryRowContext(ctx, q, itemID, bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	return it, nil
}

// DeleteItemTx removes one item of a booking.
func (r *BookingRepo) DeleteItemTx(ctx context.Context, tx *sql.Tx, bookingID, itemID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM booking_items WHERE id = ? AND booking_id = ?`, itemID, bookingID)
	return mapError(err)
}

// UpdateTotalTx stores a new total on the booking.
func (r *BookingRepo) UpdateTotalTx(ctx context.Context, tx *sql.Tx, bookingID uint64, total int) error {
	_, err := tx.ExecContext(ctx, `UPDATE bookings SET total = ? WHERE id = ?`, total, bookingID)
	return mapError(err)
}

// SetStatusTx stores a new status on the booking.
func (r *BookingRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, bookingID uint64, status string) error {
	_, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, bookingID)
	return mapError(err)
}

// GetByID returns a booking of any status with its items, or
// ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT id, customer_name, contact_method, contact_value, date_iso, date_display, time_str,
	                  professional_id, professional_name, total, status, created_at
	           FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	list := []model.Booking{*b}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// ListConfirmed returns up to limit confirmed bookings, newest first,
// each with its items.  When none exist an empty slice is returned.
func (r *BookingRepo) ListConfirmed(ctx context.Context, limit int) ([]model.Booking, error) {
	const q = `SELECT id, customer_name, contact_method, contact_value, date_iso, date_display, time_str,
	                  professional_id, professional_name, total, status, created_at
	           FROM bookings
	           WHERE status = 'confirmed'
	           ORDER BY created_at DESC, id DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, mapError(err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	if err := r.attachItems(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// attachItems populates Items for all bookings with a single query.  The
// header rows must be fully read before calling it: SQLite runs on one
// connection.
func (r *BookingRepo) attachItems(ctx context.Context, bookings []model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	index := make(map[uint64]int, len(bookings))
	ids := make([]any, 0, len(bookings))
	placeholders := make([]string, 0, len(bookings))
	for i := range bookings {
		bookings[i].Items = []model.BookingItem{}
		index[bookings[i].ID] = i
		ids = append(ids, bookings[i].ID)
		placeholders = append(placeholders, "?")
	}
	q := `SELECT id, booking_id, service_id, service_name, price, minutes,
	             professional_id, professional_name, details
	      FROM booking_items
	      WHERE booking_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY booking_id, id`
	rows, err := r.db.QueryContext(ctx, q, ids...)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return mapError(err)
		}
		idx, ok := index[it.BookingID]
		if !ok {
			continue
		}
		bookings[idx].Items = append(bookings[idx].Items, *it)
	}
	return mapError(rows.Err())
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	var display, specName sql.NullString
	var specID sql.NullInt64
	if err := row.Scan(
		&b.ID, &b.CustomerName, &b.ContactMethod, &b.ContactValue, &b.DateISO, &display, &b.Time,
		&specID, &specName, &b.Total, &b.Status, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	b.DateDisplay = display.String
	b.SpecialistID = uint64Ptr(specID)
	b.SpecialistName = specName.String
	b.CreatedAt = b.CreatedAt.UTC()
	return &b, nil
}

func scanItem(row rowScanner) (*model.BookingItem, error) {
	var it model.BookingItem
	var serviceID, specID sql.NullInt64
	var specName, details sql.NullString
	if err := row.Scan(
		&it.ID, &it.BookingID, &serviceID, &it.ServiceName, &it.Price, &it.Minutes,
		&specID, &specName, &details,
	); err != nil {
		return nil, err
	}
	it.ServiceID = uint64Ptr(serviceID)
	it.SpecialistID = uint64Ptr(specID)
	it.SpecialistName = stringPtr(specName)
	it.Details = stringPtr(details)
	return &it, nil
}
