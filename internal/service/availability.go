package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/iliyamo/salon-booking/internal/metrics"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

var tracer = otel.Tracer("salon.internal.service")

// SlotsResult is the free-slot view of one day.
type SlotsResult struct {
	Date           string   `json:"date"`
	TotalSlots     int      `json:"totalSlots"`
	AvailableCount int      `json:"availableCount"`
	BookedCount    int      `json:"bookedCount"`
	Slots          []string `json:"slots"`
}

// CheckInput is an advisory availability query.  SpecialistID and
// Contact are optional.
type CheckInput struct {
	Date         string
	Time         string
	SpecialistID *uint64
	Contact      string
}

// CheckResult answers whether a slot can be booked by a customer with a
// specialist.
type CheckResult struct {
	Available             bool   `json:"available"`
	ProfessionalAvailable bool   `json:"professionalAvailable"`
	CustomerAvailable     bool   `json:"customerAvailable"`
	Message               string `json:"message"`
}

// AvailabilityService computes free slots from confirmed bookings.  It
// only reads and is safe for concurrent use.
type AvailabilityService struct {
	bookings *repository.BookingRepo
	slots    *SlotTemplate
	metrics  *metrics.BookingMetrics
}

func NewAvailabilityService(bookings *repository.BookingRepo, slots *SlotTemplate, m *metrics.BookingMetrics) *AvailabilityService {
	return &AvailabilityService{bookings: bookings, slots: slots, metrics: m}
}

// FreeSlots returns the template minus the slots taken by confirmed
// bookings on date.  A nil or sentinel specialistID counts every
// booking of the day; otherwise only that specialist's bookings count.
func (s *AvailabilityService) FreeSlots(ctx context.Context, date string, specialistID *uint64) (*SlotsResult, error) {
	ctx, span := tracer.Start(ctx, "availability.free_slots")
	defer span.End()
	span.SetAttributes(attribute.String("salon.date", date))

	if _, err := parseDate("date", date); err != nil {
		return nil, err
	}
	var filter *uint64
	if !model.IsAny(specialistID) {
		filter = specialistID
		span.SetAttributes(attribute.Int64("salon.specialist_id", int64(*specialistID)))
	}
	used, err := s.bookings.UsedSlots(ctx, date, filter)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("loading used slots: %w", err)
	}
	s.metrics.ObserveSlotQuery()

	taken := make(map[string]struct{}, len(used))
	for _, u := range used {
		taken[u] = struct{}{}
	}
	free := make([]string, 0, s.slots.Len())
	for _, tok := range s.slots.tokens {
		if _, ok := taken[tok]; !ok {
			free = append(free, tok)
		}
	}
	return &SlotsResult{
		Date:           date,
		TotalSlots:     s.slots.Len(),
		AvailableCount: len(free),
		BookedCount:    len(taken),
		Slots:          free,
	}, nil
}

// Check reports whether the specialist and the customer are both free at
// the given slot.  The answer is advisory; Create enforces its own rules.
func (s *AvailabilityService) Check(ctx context.Context, in CheckInput) (*CheckResult, error) {
	ctx, span := tracer.Start(ctx, "availability.check")
	defer span.End()

	if _, err := parseDate("date", in.Date); err != nil {
		return nil, err
	}
	if in.Time == "" {
		return nil, invalid("time", "time is required")
	}
	if !s.slots.Contains(in.Time) {
		return nil, invalid("time", "time is not a bookable slot")
	}

	res := &CheckResult{ProfessionalAvailable: true, CustomerAvailable: true}
	if !model.IsAny(in.SpecialistID) {
		busy, err := s.bookings.SpecialistHasSlot(ctx, *in.SpecialistID, in.Date, in.Time)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("checking specialist: %w", err)
		}
		res.ProfessionalAvailable = !busy
	}
	if contact := NormalizeContact(in.Contact); contact != "" {
		busy, err := s.bookings.ContactHasSlot(ctx, contact, in.Date, in.Time)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("checking contact: %w", err)
		}
		res.CustomerAvailable = !busy
	}

	res.Available = res.ProfessionalAvailable && res.CustomerAvailable
	switch {
	case !res.ProfessionalAvailable:
		res.Message = "specialist is already booked at this time"
	case !res.CustomerAvailable:
		res.Message = "you already have a booking at this time"
	default:
		res.Message = "slot available"
	}
	return res, nil
}
