// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers to
// distinguish between different failure scenarios without inspecting
// driver errors themselves.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrConflict is returned when a write transaction lost a race against a
// concurrent writer (deadlock, lock wait timeout or a busy database).
// Nothing was written; the caller may resubmit.
var ErrConflict = errors.New("conflict")

// ErrBookingNotFound indicates that no booking row has the requested id.
var ErrBookingNotFound = errors.New("booking not found")

// ErrItemNotFound indicates that the item does not exist under the
// requested booking.
var ErrItemNotFound = errors.New("booking item not found")

// MySQL server error numbers that mean "transaction aborted by a
// concurrent writer".
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// mapError translates driver-level concurrency failures into ErrConflict
// and leaves every other error untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout {
			return errors.Join(ErrConflict, err)
		}
		return err
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return errors.Join(ErrConflict, err)
		}
	}
	return err
}
