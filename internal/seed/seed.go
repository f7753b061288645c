// Package seed loads the salon catalog and a demo booking into an empty
// or existing database.
package seed

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/service"
)

func rating(v float64) *float64 { return &v }

// Services is the catalog of bookable services.  Ids are fixed so that
// clients and the demo booking can refer to them.
func Services() []model.Service {
	return []model.Service{
		{ID: 1, Name: "Pedicure", Price: 90, Minutes: 40, Category: "nails", Description: "Foot cleaning and care"},
		{ID: 2, Name: "Manicure", Price: 90, Minutes: 30, Category: "nails", Description: "Hand cleaning and care"},
		{ID: 3, Name: "Nail color", Price: 60, Minutes: 18, Category: "nails", Description: "Apply or refresh color"},
		{ID: 4, Name: "Blow-dry", Price: 100, Minutes: 35, Category: "hair", Description: "Quick dry and style"},
		{ID: 5, Name: "Updo", Price: 200, Minutes: 52, Category: "hair", Description: "Styled updo for an occasion"},
		{ID: 6, Name: "Soft makeup", Price: 300, Minutes: 45, Category: "makeup", Description: "Light natural everyday look"},
		{ID: 7, Name: "Full makeup", Price: 400, Minutes: 60, Category: "makeup", Description: "Complete long-lasting occasion look"},
	}
}

// Specialists is the staff list.  Id 1 is the "any specialist" sentinel.
func Specialists() []model.Specialist {
	return []model.Specialist{
		{ID: model.AnySpecialistID, Name: model.AnySpecialistName, NameEn: model.AnySpecialistName, Specialties: "nails, hair, makeup", Available: true},
		{ID: 2, Name: "Jana", NameEn: "Jana", Specialties: "nails", Rating: rating(4.9), Available: true},
		{ID: 3, Name: "Lea", NameEn: "Lea", Specialties: "nails", Rating: rating(4.4), Available: true},
		{ID: 4, Name: "Sally", NameEn: "Sally", Specialties: "nails", Rating: rating(4.8), Available: true},
		{ID: 5, Name: "Reen", NameEn: "Reen", Specialties: "hair", Rating: rating(4.9), Available: true},
		{ID: 6, Name: "JaJa", NameEn: "JaJa", Specialties: "hair", Rating: rating(5.0), Available: true},
		{ID: 7, Name: "Carol", NameEn: "Carol", Specialties: "makeup", Rating: rating(4.8), Available: true},
		{ID: 8, Name: "Josie", NameEn: "Josie", Specialties: "makeup", Available: true},
		{ID: 9, Name: "Haira", NameEn: "Haira", Specialties: "makeup", Rating: rating(5.0), Available: true},
	}
}

// DemoBooking is Nora's blow-dry and updo on 2025-10-15 at 12:15.
func DemoBooking() service.CreateBookingInput {
	lea, reen := uint64(3), uint64(5)
	blowDry, updo := uint64(4), uint64(5)
	return service.CreateBookingInput{
		CustomerName: "Nora",
		Contact:      service.ContactInput{Method: model.ContactPhone, Value: "0501234567"},
		DateISO:      "2025-10-15",
		DateDisplay:  "Wednesday 15 October 2025",
		Time:         "12:15",
		Professional: service.SpecialistRef{ID: &lea, Name: "Lea"},
		Items: []service.ItemInput{
			{ServiceID: &blowDry, SpecialistID: &reen, SpecialistName: "Reen"},
			{ServiceID: &updo, SpecialistID: &reen, SpecialistName: "Reen"},
		},
	}
}

// Result summarizes what Run loaded.
type Result struct {
	Services    int
	Specialists int
	BookingID   uint64
}

// Run wipes catalog and bookings, loads the catalog in one transaction
// and then books the demo booking through the ledger.
func Run(ctx context.Context, db *sql.DB, catalog *repository.CatalogRepo, bookings *service.BookingService, log *zap.Logger) (Result, error) {
	var res Result
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := catalog.ResetTx(ctx, tx); err != nil {
		return res, fmt.Errorf("clear data: %w", err)
	}
	for _, s := range Services() {
		if err := catalog.CreateServiceTx(ctx, tx, &s); err != nil {
			return res, fmt.Errorf("insert service %s: %w", s.Name, err)
		}
		res.Services++
	}
	for _, sp := range Specialists() {
		if err := catalog.CreateSpecialistTx(ctx, tx, &sp); err != nil {
			return res, fmt.Errorf("insert specialist %s: %w", sp.Name, err)
		}
		res.Specialists++
	}
	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit catalog: %w", err)
	}
	committed = true
	log.Info("catalog loaded", zap.Int("services", res.Services), zap.Int("specialists", res.Specialists))

	id, err := bookings.Create(ctx, DemoBooking())
	if err != nil {
		return res, fmt.Errorf("demo booking: %w", err)
	}
	res.BookingID = id
	log.Info("demo booking created", zap.Uint64("booking_id", id))
	return res, nil
}
