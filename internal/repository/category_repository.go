package repository

import (
	"context"
	"database/sql"

	"github.com/mselim/awards-voting/internal/model"
)

// CategoryRepo stores award categories and their ordered nominee lists as
// structured rows. Positions are 1-based and contiguous; RemoveNominee
// re-packs the remaining positions in the same transaction, which is
// exactly the drift the nominee resolver compensates for on the cast
// path.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// Create inserts an empty category. A duplicate number is reported as a
// generic duplicate error to the caller.
func (r *CategoryRepo) Create(ctx context.Context, number int, title string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (number, title) VALUES (?,?)", number, title)
	return err
}

// GetByNumber returns one category with its current nominee list.
func (r *CategoryRepo) GetByNumber(ctx context.Context, number int) (model.Category, error) {
	var c model.Category
	err := r.DB.QueryRowContext(ctx,
		"SELECT number, title FROM categories WHERE number=? LIMIT 1", number).
		Scan(&c.Number, &c.Title)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Category{}, ErrCategoryNotFound
		}
		return model.Category{}, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT name FROM nominees WHERE category_number=? ORDER BY position", number)
	if err != nil {
		return model.Category{}, err
	}
	defer rows.Close()
	c.Nominees = []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return model.Category{}, err
		}
		c.Nominees = append(c.Nominees, name)
	}
	return c, rows.Err()
}

// List returns every category ordered by number, nominees in list order.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT number, title FROM categories ORDER BY number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cats := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.Number, &c.Title); err != nil {
			return nil, err
		}
		c.Nominees = []string{}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	nrows, err := r.DB.QueryContext(ctx,
		"SELECT category_number, name FROM nominees ORDER BY category_number, position")
	if err != nil {
		return nil, err
	}
	defer nrows.Close()
	byNumber := make(map[int]int, len(cats))
	for i, c := range cats {
		byNumber[c.Number] = i
	}
	for nrows.Next() {
		var (
			num  int
			name string
		)
		if err := nrows.Scan(&num, &name); err != nil {
			return nil, err
		}
		if i, ok := byNumber[num]; ok {
			cats[i].Nominees = append(cats[i].Nominees, name)
		}
	}
	return cats, nrows.Err()
}

// maxPositionAttempts bounds retries when two concurrent appends read the
// same MAX(position) and race for the slot.
const maxPositionAttempts = 3

// AddNominee appends a name to the end of a category's list. Two
// duplicate outcomes are distinguished by the violated constraint: a name
// collision is the caller's error (ErrNomineeExists), a position
// collision means another append won the slot and this one retries with a
// fresh transaction.
func (r *CategoryRepo) AddNominee(ctx context.Context, number int, name string) error {
	if _, err := r.GetByNumber(ctx, number); err != nil {
		return err
	}
	var lastErr error
	for attempt := 0; attempt < maxPositionAttempts; attempt++ {
		err := r.appendNominee(ctx, number, name)
		switch {
		case err == nil:
			return nil
		case duplicateOn(err, "name"):
			return ErrNomineeExists
		case isDuplicate(err):
			lastErr = err
			continue
		default:
			return err
		}
	}
	return lastErr
}

func (r *CategoryRepo) appendNominee(ctx context.Context, number int, name string) error {
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
	var next int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position),0)+1 FROM nominees WHERE category_number=?", number).
		Scan(&next)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO nominees (category_number, position, name) VALUES (?,?,?)",
		number, next, name)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// RemoveNominee deletes a name and re-packs the positions after it so the
// list stays contiguous. Votes already recorded keep their old nominee
// ids; reconciling those is the resolver's cast-time job, not a ledger
// rewrite.
func (r *CategoryRepo) RemoveNominee(ctx context.Context, number int, name string) error {
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
	var pos int
	err = tx.QueryRowContext(ctx,
		"SELECT position FROM nominees WHERE category_number=? AND name=? LIMIT 1",
		number, name).Scan(&pos)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNomineeNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM nominees WHERE category_number=? AND position=?", number, pos); err != nil {
		return err
	}
	// Shift the tail down one row at a time in ascending order; a bulk
	// position-1 update can collide with the (category_number, position)
	// key mid-statement depending on engine row order.
	tail, err := tx.QueryContext(ctx,
		"SELECT position FROM nominees WHERE category_number=? AND position>? ORDER BY position",
		number, pos)
	if err != nil {
		return err
	}
	var shift []int
	for tail.Next() {
		var p int
		if err := tail.Scan(&p); err != nil {
			tail.Close()
			return err
		}
		shift = append(shift, p)
	}
	if err := tail.Err(); err != nil {
		tail.Close()
		return err
	}
	tail.Close()
	for _, p := range shift {
		if _, err := tx.ExecContext(ctx,
			"UPDATE nominees SET position=? WHERE category_number=? AND position=?",
			p-1, number, p); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
