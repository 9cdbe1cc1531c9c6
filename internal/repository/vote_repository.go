package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mselim/awards-voting/internal/model"
)

// VoteRepo is the vote ledger: an append-only table with a unique
// constraint on (user_id, category_id). Cast never pre-checks for an
// existing vote; it inserts and translates the constraint violation, so
// there is no read-then-write window for two concurrent casts to slip
// through.
type VoteRepo struct{ DB *sql.DB }

func NewVoteRepo(db *sql.DB) *VoteRepo { return &VoteRepo{DB: db} }

// Cast records a vote inside a transaction. A duplicate (user, category)
// insert reports ErrAlreadyVoted and writes nothing.
func (r *VoteRepo) Cast(ctx context.Context, userID uint64, categoryID, nomineeID int) (model.Vote, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Vote{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	v := model.Vote{
		UserID:     userID,
		CategoryID: categoryID,
		NomineeID:  nomineeID,
		CreatedAt:  time.Now().UTC(),
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO votes (user_id, category_id, nominee_id, created_at) VALUES (?,?,?,?)",
		v.UserID, v.CategoryID, v.NomineeID, v.CreatedAt.Unix())
	if err != nil {
		if isDuplicate(err) {
			return model.Vote{}, ErrAlreadyVoted
		}
		return model.Vote{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Vote{}, err
	}
	v.ID = uint64(id)

	if err := tx.Commit(); err != nil {
		return model.Vote{}, err
	}
	committed = true
	return v, nil
}

// Tally returns per-nominee counts for a category, ordered by nominee id.
// Nominees with zero votes are simply absent.
func (r *VoteRepo) Tally(ctx context.Context, categoryID int) ([]model.TallyRow, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT nominee_id, COUNT(*) FROM votes WHERE category_id=?
		 GROUP BY nominee_id ORDER BY nominee_id`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TallyRow{}
	for rows.Next() {
		var t model.TallyRow
		if err := rows.Scan(&t.NomineeID, &t.Votes); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// VotesForUser lists a user's votes ordered by category.
func (r *VoteRepo) VotesForUser(ctx context.Context, userID uint64) ([]model.Vote, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, category_id, nominee_id, created_at FROM votes
		 WHERE user_id=? ORDER BY category_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Vote{}
	for rows.Next() {
		var (
			v       model.Vote
			created int64
		)
		if err := rows.Scan(&v.ID, &v.UserID, &v.CategoryID, &v.NomineeID, &created); err != nil {
			return nil, err
		}
		v.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, v)
	}
	return out, rows.Err()
}

// DeleteAll wipes the ledger and returns the number of votes removed.
// The single DELETE executes atomically; there is no partially applied
// reset.
func (r *VoteRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM votes")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByCategory removes all votes in one category.
func (r *VoteRepo) DeleteByCategory(ctx context.Context, categoryID int) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM votes WHERE category_id=?", categoryID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByUser removes all votes cast by one user, optionally narrowed to
// a single category (categoryID > 0).
func (r *VoteRepo) DeleteByUser(ctx context.Context, userID uint64, categoryID int) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if categoryID > 0 {
		res, err = r.DB.ExecContext(ctx,
			"DELETE FROM votes WHERE user_id=? AND category_id=?", userID, categoryID)
	} else {
		res, err = r.DB.ExecContext(ctx, "DELETE FROM votes WHERE user_id=?", userID)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
