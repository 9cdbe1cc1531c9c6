package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/mselim/awards-voting/internal/model"
	"github.com/mselim/awards-voting/internal/utils"
)

// UserRepo persists attendee records. Access-code uniqueness is enforced
// by the unique column; Create regenerates and retries on a code
// collision rather than pre-checking, so two concurrent signups can never
// race their way into the same code.
type UserRepo struct {
	DB *sql.DB

	// newCode generates candidate access codes. Overridable in tests to
	// force collisions; defaults to utils.NewAccessCode.
	newCode func() (string, error)
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, newCode: utils.NewAccessCode}
}

// maxCodeAttempts bounds regeneration when an access code collides. The
// code space holds ~45.7M values, so more than a couple of retries means
// something is badly wrong.
const maxCodeAttempts = 5

// maxSuffixAttempts bounds whole-transaction retries when two concurrent
// signups sharing a name and birthdate race for the same suffix.
const maxSuffixAttempts = 3

// Create inserts a new user with a freshly generated unique access code
// and a birthdate suffix that disambiguates same-name same-birthdate
// attendees. The suffix is backed by a unique constraint; when two
// concurrent signups compute the same one, the loser retries with a fresh
// transaction that observes the winner's committed row. The returned user
// carries the generated id and code.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	var lastErr error
	for attempt := 0; attempt < maxSuffixAttempts; attempt++ {
		created, err := r.create(ctx, u)
		if err == nil {
			return created, nil
		}
		if duplicateOn(err, "birthdate_suffix") {
			lastErr = err
			continue
		}
		return model.User{}, err
	}
	return model.User{}, lastErr
}

func (r *UserRepo) create(ctx context.Context, u model.User) (model.User, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// MAX+1 rather than COUNT+1: after an admin deletes a user the count
	// shrinks but the surviving suffixes keep their values, and a reused
	// suffix would collide with the unique index.
	var maxSuffix int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(birthdate_suffix),0) FROM users WHERE LOWER(fullname)=? AND birthdate=?",
		strings.ToLower(u.Fullname), u.Birthdate).Scan(&maxSuffix)
	if err != nil {
		return model.User{}, err
	}
	u.BirthdateSuffix = maxSuffix + 1
	u.CreatedAt = time.Now().UTC()

	for attempt := 0; ; attempt++ {
		code, err := r.newCode()
		if err != nil {
			return model.User{}, err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO users (fullname, phone, country_code, email, birthdate, birthdate_suffix, access_code, created_at)
			 VALUES (?,?,?,?,?,?,?,?)`,
			u.Fullname, u.Phone, u.CountryCode, nullableString(u.Email), u.Birthdate,
			u.BirthdateSuffix, code, u.CreatedAt.Unix())
		if err != nil {
			if duplicateOn(err, "phone") {
				return model.User{}, ErrPhoneExists
			}
			if duplicateOn(err, "access_code") && attempt+1 < maxCodeAttempts {
				continue
			}
			return model.User{}, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return model.User{}, err
		}
		u.ID = uint64(id)
		u.AccessCode = code
		break
	}

	if err := tx.Commit(); err != nil {
		return model.User{}, err
	}
	committed = true
	return u, nil
}

const userColumns = "id, fullname, phone, country_code, email, birthdate, birthdate_suffix, access_code, created_at"

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// GetByAccessCode fetches a user by normalized access code.
func (r *UserRepo) GetByAccessCode(ctx context.Context, code string) (model.User, error) {
	code = utils.NormalizeAccessCode(code)
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE access_code=? LIMIT 1", code)
	return scanUser(row)
}

// List returns all users ordered by creation time. Access codes are
// included; the admin export endpoint is the only caller.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Delete removes a user and, in the same transaction, every vote and
// session they own. Either everything goes or nothing does.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, "DELETE FROM votes WHERE user_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE user_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u       model.User
		email   sql.NullString
		created int64
	)
	err := row.Scan(&u.ID, &u.Fullname, &u.Phone, &u.CountryCode, &email,
		&u.Birthdate, &u.BirthdateSuffix, &u.AccessCode, &created)
	if err != nil {
		return model.User{}, err
	}
	if email.Valid {
		u.Email = email.String
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return u, nil
}

func nullableString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
