package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/metrics"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/queue"
	"github.com/iliyamo/salon-booking/internal/repository"
)

const (
	defaultItemMinutes = 45
	maxListLimit       = 200
	publishTimeout     = 5 * time.Second
)

// ContactInput is how the customer can be reached.  Method defaults to
// phone.
type ContactInput struct {
	Method string `json:"method"`
	Value  string `json:"value"`
}

// SpecialistRef selects a specialist by id.  Name, when given, is stored
// as is instead of the catalog name.
type SpecialistRef struct {
	ID   *uint64 `json:"id"`
	Name string  `json:"name"`
}

// ItemInput is one requested service line.  The service name is taken
// from ServiceName, Title or Name, in that order, and falls back to the
// catalog.  Nil Price or Minutes fall back to the catalog as well.
type ItemInput struct {
	ServiceID      *uint64 `json:"service_id"`
	ServiceName    string  `json:"service_name"`
	Title          string  `json:"title"`
	Name           string  `json:"name"`
	Price          *int    `json:"price"`
	Minutes        *int    `json:"minutes"`
	SpecialistID   *uint64 `json:"professional_id"`
	SpecialistName string  `json:"professional_name"`
	Details        string  `json:"details"`
}

// CreateBookingInput is a booking request as submitted by a customer.
type CreateBookingInput struct {
	CustomerName string        `json:"customer_name"`
	Contact      ContactInput  `json:"contact"`
	DateISO      string        `json:"date_iso"`
	DateDisplay  string        `json:"date_display"`
	Time         string        `json:"time"`
	Professional SpecialistRef `json:"professional"`
	Items        []ItemInput   `json:"items"`
}

// BookingService owns the booking ledger: creation, listing, item removal
// and cancellation.  Every write runs in a single transaction.
type BookingService struct {
	bookings     *repository.BookingRepo
	catalog      *repository.CatalogRepo
	guard        *Guard
	slots        *SlotTemplate
	events       queue.Publisher
	metrics      *metrics.BookingMetrics
	log          *zap.Logger
	defaultLimit int
	now          func() time.Time
}

// NewBookingService wires the ledger.  events and m may be nil.
func NewBookingService(
	bookings *repository.BookingRepo,
	catalog *repository.CatalogRepo,
	slots *SlotTemplate,
	events queue.Publisher,
	m *metrics.BookingMetrics,
	log *zap.Logger,
	defaultLimit int,
) *BookingService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &BookingService{
		bookings:     bookings,
		catalog:      catalog,
		guard:        NewGuard(bookings),
		slots:        slots,
		events:       events,
		metrics:      m,
		log:          log,
		defaultLimit: defaultLimit,
		now:          time.Now,
	}
}

// Create validates in, checks it against the guard and stores the booking
// with its items.  It returns the new booking id.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (uint64, error) {
	ctx, span := tracer.Start(ctx, "bookings.create")
	defer span.End()

	b, err := s.validate(in)
	if err != nil {
		s.reject(span, "validation", err)
		return 0, err
	}
	span.SetAttributes(attribute.String("salon.date", b.DateISO), attribute.String("salon.time", b.Time))

	tx, err := s.bookings.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := s.resolveSpecialist(ctx, tx, b, in.Professional); err != nil {
		s.reject(span, "validation", err)
		return 0, err
	}
	items, err := s.resolveItems(ctx, tx, b, in.Items)
	if err != nil {
		s.reject(span, "validation", err)
		return 0, err
	}
	b.Items = items
	b.Total = b.ItemsTotal()

	err = s.guard.Authorize(ctx, tx, Candidate{
		CustomerName: b.CustomerName,
		Contact:      b.ContactValue,
		Date:         b.DateISO,
		Time:         b.Time,
	})
	switch {
	case errors.Is(err, ErrIdentityConflict):
		s.reject(span, "identity", err)
		return 0, err
	case errors.Is(err, ErrDuplicateBooking):
		s.reject(span, "duplicate", err)
		return 0, err
	case err != nil:
		s.fail(span, "guard", err)
		return 0, err
	}

	if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
		s.fail(span, "insert booking", err)
		return 0, fmt.Errorf("insert booking: %w", err)
	}
	if err := s.bookings.CreateItemsBulkTx(ctx, tx, b.ID, b.Items); err != nil {
		s.fail(span, "insert items", err)
		return 0, fmt.Errorf("insert items: %w", err)
	}
	if err := s.bookings.Commit(tx); err != nil {
		s.fail(span, "commit", err)
		return 0, fmt.Errorf("commit booking: %w", err)
	}
	committed = true

	s.metrics.ObserveCreated()
	span.SetAttributes(attribute.Int64("salon.booking_id", int64(b.ID)))
	s.log.Info("booking created",
		zap.Uint64("booking_id", b.ID),
		zap.String("customer", b.CustomerName),
		zap.String("date", b.DateISO),
		zap.String("time", b.Time),
		zap.Int("items", len(b.Items)),
		zap.Int("total", b.Total))

	services := make([]string, 0, len(b.Items))
	for _, it := range b.Items {
		services = append(services, it.ServiceName)
	}
	s.publish(ctx, queue.BookingEvent{
		Type:           queue.EventBookingCreated,
		BookingID:      b.ID,
		CustomerName:   b.CustomerName,
		ContactMethod:  b.ContactMethod,
		DateISO:        b.DateISO,
		Time:           b.Time,
		SpecialistID:   b.SpecialistID,
		SpecialistName: b.SpecialistName,
		Services:       services,
		Total:          b.Total,
		OccurredAt:     b.CreatedAt,
	})
	return b.ID, nil
}

// validate checks the fields that need no database access and builds the
// booking header.
func (s *BookingService) validate(in CreateBookingInput) (*model.Booking, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return nil, invalid("customer_name", "name is required")
	}
	if _, err := parseDate("date_iso", in.DateISO); err != nil {
		return nil, err
	}
	if in.Time == "" {
		return nil, invalid("time", "time is required")
	}
	if !s.slots.Contains(in.Time) {
		return nil, invalid("time", "time is not a bookable slot")
	}
	contact := NormalizeContact(in.Contact.Value)
	if contact == "" {
		return nil, invalid("contact.value", "phone number or email is required")
	}
	method := strings.ToLower(strings.TrimSpace(in.Contact.Method))
	switch method {
	case "":
		method = model.ContactPhone
	case model.ContactPhone, model.ContactEmail:
	default:
		return nil, invalid("contact.method", "must be phone or email")
	}
	if len(in.Items) == 0 {
		return nil, invalid("items", "at least one service is required")
	}

	display := strings.TrimSpace(in.DateDisplay)
	if display == "" {
		display = in.DateISO
	}
	return &model.Booking{
		CustomerName:  name,
		ContactMethod: method,
		ContactValue:  contact,
		DateISO:       in.DateISO,
		DateDisplay:   display,
		Time:          in.Time,
		Status:        model.StatusConfirmed,
		CreatedAt:     s.now().UTC().Truncate(time.Microsecond),
	}, nil
}

func (s *BookingService) resolveSpecialist(ctx context.Context, tx *sql.Tx, b *model.Booking, ref SpecialistRef) error {
	name := strings.TrimSpace(ref.Name)
	if ref.ID == nil || *ref.ID == 0 {
		if name == "" {
			name = model.AnySpecialistName
		}
		b.SpecialistName = name
		return nil
	}
	sp, err := s.catalog.GetSpecialistTx(ctx, tx, *ref.ID)
	if err != nil {
		return fmt.Errorf("loading specialist: %w", err)
	}
	if sp == nil {
		return invalid("professional.id", "unknown specialist")
	}
	if name == "" {
		name = sp.Name
	}
	id := sp.ID
	b.SpecialistID = &id
	b.SpecialistName = name
	return nil
}

func (s *BookingService) resolveItems(ctx context.Context, tx *sql.Tx, b *model.Booking, inputs []ItemInput) ([]model.BookingItem, error) {
	items := make([]model.BookingItem, 0, len(inputs))
	for i, in := range inputs {
		field := fmt.Sprintf("items[%d]", i)

		var svc *model.Service
		if in.ServiceID != nil && *in.ServiceID != 0 {
			var err error
			svc, err = s.catalog.GetServiceTx(ctx, tx, *in.ServiceID)
			if err != nil {
				return nil, fmt.Errorf("loading service: %w", err)
			}
			if svc == nil {
				return nil, invalid(field+".service_id", "unknown service")
			}
		}

		it := model.BookingItem{Minutes: defaultItemMinutes}
		it.ServiceName = firstNonEmpty(in.ServiceName, in.Title, in.Name)
		if svc != nil {
			id := svc.ID
			it.ServiceID = &id
			it.Price = svc.Price
			it.Minutes = svc.Minutes
			if it.ServiceName == "" {
				it.ServiceName = svc.Name
			}
		}
		if it.ServiceName == "" {
			return nil, invalid(field+".service_name", "service name is required")
		}
		if in.Price != nil {
			if *in.Price < 0 {
				return nil, invalid(field+".price", "price cannot be negative")
			}
			it.Price = *in.Price
		}
		if in.Minutes != nil && *in.Minutes > 0 {
			it.Minutes = *in.Minutes
		}

		spName := strings.TrimSpace(in.SpecialistName)
		switch {
		case in.SpecialistID != nil && *in.SpecialistID != 0:
			sp, err := s.catalog.GetSpecialistTx(ctx, tx, *in.SpecialistID)
			if err != nil {
				return nil, fmt.Errorf("loading specialist: %w", err)
			}
			if sp == nil {
				return nil, invalid(field+".professional_id", "unknown specialist")
			}
			id := sp.ID
			it.SpecialistID = &id
			if spName == "" {
				spName = sp.Name
			}
		case b.SpecialistID != nil:
			id := *b.SpecialistID
			it.SpecialistID = &id
			if spName == "" {
				spName = b.SpecialistName
			}
		}
		if spName != "" {
			it.SpecialistName = &spName
		}
		if d := strings.TrimSpace(in.Details); d != "" {
			it.Details = &d
		}
		items = append(items, it)
	}
	return items, nil
}

// List returns confirmed bookings newest first.  A non-positive limit
// selects the configured default; limits above 200 are clamped.
func (s *BookingService) List(ctx context.Context, limit int) ([]model.Booking, error) {
	ctx, span := tracer.Start(ctx, "bookings.list")
	defer span.End()

	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	list, err := s.bookings.ListConfirmed(ctx, limit)
	if err != nil {
		s.fail(span, "list bookings", err)
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return list, nil
}

// Get returns one booking of any status with its items.
func (s *BookingService) Get(ctx context.Context, id uint64) (*model.Booking, error) {
	ctx, span := tracer.Start(ctx, "bookings.get")
	defer span.End()

	b, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.fail(span, "get booking", err)
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// RemoveItem deletes one item from a confirmed booking and lowers the
// total by its price.  The only remaining item cannot be removed; the
// booking has to be cancelled instead.  It returns the new total.
func (s *BookingService) RemoveItem(ctx context.Context, bookingID, itemID uint64) (int, error) {
	ctx, span := tracer.Start(ctx, "bookings.remove_item",
		trace.WithAttributes(
			attribute.Int64("salon.booking_id", int64(bookingID)),
			attribute.Int64("salon.item_id", int64(itemID))))
	defer span.End()

	tx, err := s.bookings.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.bookings.LockTx(ctx, tx, bookingID)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		s.fail(span, "lock booking", err)
		return 0, fmt.Errorf("load booking: %w", err)
	}
	if b.Status == model.StatusCancelled {
		return 0, ErrInvalidState
	}

	item, err := s.bookings.GetItemTx(ctx, tx, bookingID, itemID)
	if errors.Is(err, repository.ErrItemNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		s.fail(span, "load item", err)
		return 0, fmt.Errorf("load item: %w", err)
	}
	n, err := s.bookings.CountItemsTx(ctx, tx, bookingID)
	if err != nil {
		s.fail(span, "count items", err)
		return 0, fmt.Errorf("count items: %w", err)
	}
	if n <= 1 {
		return 0, ErrLastItemProtected
	}

	newTotal := b.Total - item.Price
	if err := s.bookings.DeleteItemTx(ctx, tx, bookingID, itemID); err != nil {
		s.fail(span, "delete item", err)
		return 0, fmt.Errorf("delete item: %w", err)
	}
	if err := s.bookings.UpdateTotalTx(ctx, tx, bookingID, newTotal); err != nil {
		s.fail(span, "update total", err)
		return 0, fmt.Errorf("update total: %w", err)
	}
	if err := s.bookings.Commit(tx); err != nil {
		s.fail(span, "commit", err)
		return 0, fmt.Errorf("commit item removal: %w", err)
	}
	committed = true

	s.metrics.ObserveItemRemoved()
	s.log.Info("booking item removed",
		zap.Uint64("booking_id", bookingID),
		zap.Uint64("item_id", itemID),
		zap.String("service", item.ServiceName),
		zap.Int("new_total", newTotal))
	s.publish(ctx, queue.BookingEvent{
		Type:           queue.EventBookingItemRemoved,
		BookingID:      bookingID,
		CustomerName:   b.CustomerName,
		ContactMethod:  b.ContactMethod,
		DateISO:        b.DateISO,
		Time:           b.Time,
		SpecialistID:   b.SpecialistID,
		SpecialistName: b.SpecialistName,
		Services:       []string{item.ServiceName},
		ItemID:         itemID,
		Total:          newTotal,
		OccurredAt:     s.now().UTC(),
	})
	return newTotal, nil
}

// Cancel marks a booking cancelled.  Cancelling a cancelled booking
// succeeds without changes.
func (s *BookingService) Cancel(ctx context.Context, id uint64) error {
	ctx, span := tracer.Start(ctx, "bookings.cancel",
		trace.WithAttributes(attribute.Int64("salon.booking_id", int64(id))))
	defer span.End()

	tx, err := s.bookings.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.bookings.LockTx(ctx, tx, id)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return ErrNotFound
	}
	if err != nil {
		s.fail(span, "lock booking", err)
		return fmt.Errorf("load booking: %w", err)
	}
	if b.Status == model.StatusCancelled {
		return nil
	}
	if err := s.bookings.SetStatusTx(ctx, tx, id, model.StatusCancelled); err != nil {
		s.fail(span, "set status", err)
		return fmt.Errorf("cancel booking: %w", err)
	}
	if err := s.bookings.Commit(tx); err != nil {
		s.fail(span, "commit", err)
		return fmt.Errorf("commit cancellation: %w", err)
	}
	committed = true

	s.metrics.ObserveCancelled()
	s.log.Info("booking cancelled", zap.Uint64("booking_id", id), zap.String("customer", b.CustomerName))
	s.publish(ctx, queue.BookingEvent{
		Type:           queue.EventBookingCancelled,
		BookingID:      id,
		CustomerName:   b.CustomerName,
		ContactMethod:  b.ContactMethod,
		DateISO:        b.DateISO,
		Time:           b.Time,
		SpecialistID:   b.SpecialistID,
		SpecialistName: b.SpecialistName,
		Total:          b.Total,
		OccurredAt:     s.now().UTC(),
	})
	return nil
}

// publish delivers ev after the write has committed.  Delivery failures
// are logged and never change the outcome of the operation.
func (s *BookingService) publish(ctx context.Context, ev queue.BookingEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("event publish failed",
			zap.String("type", ev.Type),
			zap.Uint64("booking_id", ev.BookingID),
			zap.Error(err))
	}
}

func (s *BookingService) reject(span trace.Span, reason string, err error) {
	s.metrics.ObserveRejected(reason)
	span.SetAttributes(attribute.String("salon.rejected", reason))
	s.log.Debug("booking rejected", zap.String("reason", reason), zap.Error(err))
}

func (s *BookingService) fail(span trace.Span, op string, err error) {
	span.RecordError(err)
	if errors.Is(err, repository.ErrConflict) {
		s.metrics.ObserveRejected("conflict")
		s.log.Warn("booking write lost a race", zap.String("op", op), zap.Error(err))
		return
	}
	s.log.Error("booking storage failure", zap.String("op", op), zap.Error(err))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
