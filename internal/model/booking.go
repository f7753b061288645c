package model

import "time"

// Booking status values.  A booking starts confirmed and can only move
// to cancelled.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Contact methods accepted on a booking.
const (
	ContactPhone = "phone"
	ContactEmail = "email"
)

// Booking is the aggregate root of a customer's appointment.  It groups
// one or more BookingItems booked for the same date and time slot.
//
// Fields:
//  ID             – primary key identifier.
//  CustomerName   – name given by the customer (trimmed).
//  ContactMethod  – phone or email.
//  ContactValue   – normalized contact value used as the identity key.
//  DateISO        – calendar date in YYYY-MM-DD form.
//  DateDisplay    – human readable date as sent by the client.
//  Time           – slot token from the daily template.
//  SpecialistID   – chosen specialist (nil when none).
//  SpecialistName – denormalized specialist name.
//  Total          – sum of item prices.
//  Status         – confirmed or cancelled.
//  CreatedAt      – creation timestamp (UTC).
//  Items          – line items owned by the booking.
type Booking struct {
	ID             uint64        // bookings.id
	CustomerName   string        // bookings.customer_name
	ContactMethod  string        // bookings.contact_method
	ContactValue   string        // bookings.contact_value
	DateISO        string        // bookings.date_iso
	DateDisplay    string        // bookings.date_display
	Time           string        // bookings.time_str
	SpecialistID   *uint64       // bookings.professional_id (nullable)
	SpecialistName string        // bookings.professional_name
	Total          int           // bookings.total
	Status         string        // bookings.status
	CreatedAt      time.Time     // bookings.created_at
	Items          []BookingItem // booking_items rows
}

// BookingItem is one service line of a Booking.  Name, price and
// duration are snapshots taken when the booking was created.
//
// Fields:
//  ID             – primary key identifier.
//  BookingID      – owning booking.
//  ServiceID      – catalog service, nil for free-form lines.
//  ServiceName    – service name snapshot.
//  Price          – price snapshot.
//  Minutes        – duration snapshot.
//  SpecialistID   – specialist override for this line.
//  SpecialistName – specialist name override for this line.
//  Details        – optional free text.
type BookingItem struct {
	ID             uint64  `json:"id"`                // booking_items.id
	BookingID      uint64  `json:"-"`                 // booking_items.booking_id
	ServiceID      *uint64 `json:"service_id"`        // booking_items.service_id (nullable)
	ServiceName    string  `json:"service_name"`      // booking_items.service_name
	Price          int     `json:"price"`             // booking_items.price
	Minutes        int     `json:"minutes"`           // booking_items.minutes
	SpecialistID   *uint64 `json:"professional_id"`   // booking_items.professional_id (nullable)
	SpecialistName *string `json:"professional_name"` // booking_items.professional_name (nullable)
	Details        *string `json:"details"`           // booking_items.details (nullable)
}

// ItemsTotal returns the sum of the item prices.
func (b *Booking) ItemsTotal() int {
	total := 0
	for _, it := range b.Items {
		total += it.Price
	}
	return total
}
