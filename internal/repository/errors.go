// Package repository implements the storage layer over database/sql.
// Sentinel errors defined here let handlers map storage outcomes onto the
// HTTP taxonomy without inspecting driver errors: ErrAlreadyVoted becomes
// 409, ErrCategoryNotFound 400/404 and so on. Raw driver errors never
// leave this package for the conflict cases that matter.
package repository

import (
	"errors"
	"strings"
)

// ErrAlreadyVoted is returned by VoteRepo.Cast when the caller has already
// voted in the category. Exactly one of N concurrent casts for the same
// (user, category) succeeds; the rest observe this error.
var ErrAlreadyVoted = errors.New("already voted in this category")

// ErrPhoneExists is returned when a signup collides with an existing
// user's phone number.
var ErrPhoneExists = errors.New("phone number already registered")

// ErrSessionExpired is returned when a presented session token exists but
// has passed its inactivity window or absolute expiry. The row is deleted
// as a side effect; a dead session cannot be resurrected.
var ErrSessionExpired = errors.New("session expired")

// ErrCategoryNotFound is returned when no category carries the requested
// number.
var ErrCategoryNotFound = errors.New("category not found")

// ErrNomineeExists is returned when adding a nominee name that is already
// on the category's list.
var ErrNomineeExists = errors.New("nominee already exists")

// ErrNomineeNotFound is returned when removing a name that is not on the
// category's list.
var ErrNomineeNotFound = errors.New("nominee not found")

// isDuplicate reports whether err is a unique-constraint violation.
// MySQL reports error 1062 ("Duplicate entry ... for key ..."); SQLite
// reports "UNIQUE constraint failed: table.column". Matching both keeps a
// single code path across engines.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "unique constraint failed")
}

// duplicateOn reports whether a unique-constraint violation names the
// given column, distinguishing e.g. a phone collision from an access-code
// collision on the users table.
func duplicateOn(err error, column string) bool {
	return isDuplicate(err) && strings.Contains(strings.ToLower(err.Error()), column)
}
