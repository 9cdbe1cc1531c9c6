package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mselim/awards-voting/internal/model"
	"github.com/mselim/awards-voting/internal/utils"
)

// SessionRepo persists server-side sessions. Validity is decided at read
// time against two clocks: the inactivity window (idle) and the absolute
// lifetime (maxAge). Rows that fail either check are deleted on the spot
// and reported as ErrSessionExpired, so an old cookie cannot resurrect a
// dead session.
type SessionRepo struct {
	DB     *sql.DB
	idle   time.Duration
	maxAge time.Duration
}

func NewSessionRepo(db *sql.DB, idle, maxAge time.Duration) *SessionRepo {
	return &SessionRepo{DB: db, idle: idle, maxAge: maxAge}
}

// Create opens a new session for the user with a fresh opaque token.
// data carries the small JSON blob of cached display fields.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, data string) (model.Session, error) {
	token, err := utils.NewSessionToken()
	if err != nil {
		return model.Session{}, err
	}
	now := time.Now().UTC()
	s := model.Session{
		ID:         token,
		UserID:     userID,
		Data:       data,
		CreatedAt:  now,
		LastActive: now,
		ExpiresAt:  now.Add(r.maxAge),
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, data, created_at, last_active, expires_at)
		 VALUES (?,?,?,?,?,?)`,
		s.ID, s.UserID, s.Data, s.CreatedAt.Unix(), s.LastActive.Unix(), s.ExpiresAt.Unix())
	if err != nil {
		return model.Session{}, err
	}
	return s, nil
}

// Get returns a live session and refreshes its last_active stamp. Expired
// sessions (idle or absolute) are deleted and reported as
// ErrSessionExpired; unknown tokens return sql.ErrNoRows.
func (r *SessionRepo) Get(ctx context.Context, id string) (model.Session, error) {
	var (
		s                            model.Session
		created, lastActive, expires int64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, data, created_at, last_active, expires_at FROM sessions WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.UserID, &s.Data, &created, &lastActive, &expires)
	if err != nil {
		return model.Session{}, err
	}
	s.CreatedAt = time.Unix(created, 0).UTC()
	s.LastActive = time.Unix(lastActive, 0).UTC()
	s.ExpiresAt = time.Unix(expires, 0).UTC()

	now := time.Now().UTC()
	if now.After(s.ExpiresAt) || now.Sub(s.LastActive) > r.idle {
		_ = r.Delete(ctx, id)
		return model.Session{}, ErrSessionExpired
	}

	s.LastActive = now
	_, err = r.DB.ExecContext(ctx, "UPDATE sessions SET last_active=? WHERE id=?", now.Unix(), id)
	if err != nil {
		return model.Session{}, err
	}
	return s, nil
}

// Delete removes a single session (logout).
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE id=?", id)
	return err
}

// DeleteByUser removes every session owned by a user.
func (r *SessionRepo) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE user_id=?", userID)
	return err
}

// DeleteExpired removes rows past their absolute expiry or idle window.
// Run from a timer in main; resolve-time checks stay authoritative, this
// only keeps the table small.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	idleCutoff := now.Add(-r.idle)
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ? OR last_active < ?",
		now.Unix(), idleCutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
