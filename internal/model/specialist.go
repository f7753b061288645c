package model

// AnySpecialistID is the reserved specialist row meaning "any
// specialist".  It never filters availability and is never checked for
// specialist-level conflicts.
const AnySpecialistID uint64 = 1

// AnySpecialistName is stored on bookings that did not name a specialist.
const AnySpecialistName = "Any Specialist"

// Specialist is a staff member that can be chosen for a booking.  It
// maps to the `professionals` table.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name.
//  NameEn      – localized (latin) name.
//  Specialties – free-text list of specialties.
//  Rating      – optional rating, nil when unrated.
//  Available   – whether the specialist currently takes bookings.
type Specialist struct {
	ID          uint64   `json:"id"`          // professionals.id
	Name        string   `json:"name"`        // professionals.name
	NameEn      string   `json:"name_en"`     // professionals.name_en
	Specialties string   `json:"specialties"` // professionals.specialties
	Rating      *float64 `json:"rating"`      // professionals.rating (nullable)
	Available   bool     `json:"available"`   // professionals.available
}

// IsAny reports whether id refers to no specialist or to the sentinel.
func IsAny(id *uint64) bool {
	return id == nil || *id == 0 || *id == AnySpecialistID
}
