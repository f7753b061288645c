// Package queue defines booking lifecycle events and their transport over
// RabbitMQ.
package queue

import "time"

// Event types double as routing keys on the bookings exchange.
const (
	EventBookingCreated     = "booking.created"
	EventBookingItemRemoved = "booking.item_removed"
	EventBookingCancelled   = "booking.cancelled"
)

// BookingEvent is published after a booking write commits.  It carries
// enough of the booking for consumers to log or notify without querying
// the database.
type BookingEvent struct {
	Type           string    `json:"type"`
	BookingID      uint64    `json:"booking_id"`
	CustomerName   string    `json:"customer_name"`
	ContactMethod  string    `json:"contact_method"`
	DateISO        string    `json:"date_iso"`
	Time           string    `json:"time"`
	SpecialistID   *uint64   `json:"professional_id,omitempty"`
	SpecialistName string    `json:"professional_name"`
	Services       []string  `json:"services,omitempty"`
	ItemID         uint64    `json:"item_id,omitempty"`
	Total          int       `json:"total"`
	OccurredAt     time.Time `json:"occurred_at"`
}
