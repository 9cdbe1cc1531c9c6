package model

import "time"

// User represents a registered attendee as stored in the `users` table.
// The access code is the long-lived bearer credential: six characters,
// four uppercase letters followed by two digits, unique across all users.
// BirthdateSuffix disambiguates attendees who share both a full name and
// a birthdate (1 for the first, 2 for the second, and so on).
type User struct {
	ID              uint64    // users.id
	Fullname        string    // users.fullname
	Phone           string    // users.phone (normalized, E.164-like)
	CountryCode     string    // users.country_code
	Email           string    // users.email (optional, empty when absent)
	Birthdate       string    // users.birthdate ("2 Jan 2006" layout)
	BirthdateSuffix int       // users.birthdate_suffix
	AccessCode      string    // users.access_code
	CreatedAt       time.Time // users.created_at
}
