package model

import "time"

// Session binds an opaque random token to a user. A session dies either
// when it passes ExpiresAt (absolute lifetime) or when more than the
// configured inactivity window has elapsed since LastActive; both checks
// happen at resolve time, so stale rows are harmless until cleaned up.
// A user may hold several concurrent sessions (multi-device).
type Session struct {
	ID         string    // sessions.id (opaque random token)
	UserID     uint64    // sessions.user_id
	Data       string    // sessions.data (small JSON blob of cached display fields)
	CreatedAt  time.Time // sessions.created_at
	LastActive time.Time // sessions.last_active
	ExpiresAt  time.Time // sessions.expires_at
}
