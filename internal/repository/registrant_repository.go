package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mselim/awards-voting/internal/model"
)

// RegistrantRepo stores the event-registration allow-list and the
// birthdate allow-list that signups are checked against. Both are
// admin-maintained reference data; the voting core only reads them.
type RegistrantRepo struct{ DB *sql.DB }

func NewRegistrantRepo(db *sql.DB) *RegistrantRepo { return &RegistrantRepo{DB: db} }

// Find matches a signup against the allow-list by case-insensitive full
// name and exact birthdate. sql.ErrNoRows means "not registered".
func (r *RegistrantRepo) Find(ctx context.Context, fullname, birthdate string) (model.Registrant, error) {
	var (
		reg   model.Registrant
		phone sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, fullname, birthdate, phone FROM registrants
		 WHERE LOWER(fullname)=? AND birthdate=? LIMIT 1`,
		strings.ToLower(strings.TrimSpace(fullname)), birthdate).
		Scan(&reg.ID, &reg.Fullname, &reg.Birthdate, &phone)
	if err != nil {
		return model.Registrant{}, err
	}
	if phone.Valid {
		reg.Phone = phone.String
	}
	return reg, nil
}

// Create adds one registrant row.
func (r *RegistrantRepo) Create(ctx context.Context, reg model.Registrant) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO registrants (fullname, birthdate, phone) VALUES (?,?,?)",
		strings.TrimSpace(reg.Fullname), reg.Birthdate, nullableString(reg.Phone))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns the full allow-list ordered by name.
func (r *RegistrantRepo) List(ctx context.Context) ([]model.Registrant, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, fullname, birthdate, phone FROM registrants ORDER BY fullname, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Registrant{}
	for rows.Next() {
		var (
			reg   model.Registrant
			phone sql.NullString
		)
		if err := rows.Scan(&reg.ID, &reg.Fullname, &reg.Birthdate, &phone); err != nil {
			return nil, err
		}
		if phone.Valid {
			reg.Phone = phone.String
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

// BirthdateAllowed reports whether the birthdate appears on the allow-list.
func (r *RegistrantRepo) BirthdateAllowed(ctx context.Context, birthdate string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM allowed_birthdates WHERE birthdate=? LIMIT 1", birthdate).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AllowBirthdate adds a birthdate to the allow-list. Re-adding an
// existing date is a no-op.
func (r *RegistrantRepo) AllowBirthdate(ctx context.Context, birthdate string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO allowed_birthdates (birthdate) VALUES (?)", birthdate)
	if isDuplicate(err) {
		return nil
	}
	return err
}
