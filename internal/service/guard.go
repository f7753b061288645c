package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/salon-booking/internal/repository"
)

// Candidate is the part of a new booking the guard inspects.  Contact
// must already be normalized.
type Candidate struct {
	CustomerName string
	Contact      string
	Date         string
	Time         string
}

// Guard enforces the write-side booking rules.  Specialist double
// booking is not one of them: it is only reported by AvailabilityService.
type Guard struct {
	bookings *repository.BookingRepo
}

func NewGuard(bookings *repository.BookingRepo) *Guard {
	return &Guard{bookings: bookings}
}

// Authorize runs inside the create transaction so that its reads and the
// following insert see the same ledger.  A contact stays bound to the
// first name it was booked under while it has confirmed bookings, and a
// contact cannot hold two confirmed bookings for one slot.
func (g *Guard) Authorize(ctx context.Context, tx *sql.Tx, c Candidate) error {
	existing, ok, err := g.bookings.FindCustomerNameTx(ctx, tx, c.Contact)
	if err != nil {
		return fmt.Errorf("looking up contact: %w", err)
	}
	if ok && !sameName(existing, c.CustomerName) {
		return &IdentityConflictError{ExistingName: existing}
	}

	taken, err := g.bookings.ContactHasSlotTx(ctx, tx, c.Contact, c.Date, c.Time)
	if err != nil {
		return fmt.Errorf("checking duplicate: %w", err)
	}
	if taken {
		return ErrDuplicateBooking
	}
	return nil
}
