package model

// Service is an offerable salon service as stored in the `services`
// table.  Services are seeded once and treated as read-only while the
// server runs; bookings copy the name, price and duration at booking
// time so later catalog edits never rewrite history.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the service.
//  Price       – price in whole currency units.
//  Minutes     – duration in minutes.
//  Category    – grouping used for listing (e.g. nails, hair, makeup).
//  Description – optional free text.
type Service struct {
	ID          uint64 `json:"id"`          // services.id
	Name        string `json:"name"`        // services.name
	Price       int    `json:"price"`       // services.price
	Minutes     int    `json:"minutes"`     // services.minutes
	Category    string `json:"category"`    // services.category
	Description string `json:"description"` // services.description (nullable, empty when unset)
}
