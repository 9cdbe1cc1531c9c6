package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mselim/awards-voting/internal/model"
)

func TestCastAndTally(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	votes := NewVoteRepo(db)
	ctx := context.Background()

	u := seedUser(t, users, "Jane Doe", "+971501111111")

	v, err := votes.Cast(ctx, u.ID, 3, 2)
	require.NoError(t, err)
	assert.NotZero(t, v.ID)

	tally, err := votes.Tally(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []model.TallyRow{{NomineeID: 2, Votes: 1}}, tally)

	// Second cast in the same category, different nominee: conflict, and
	// the tally is unchanged.
	_, err = votes.Cast(ctx, u.ID, 3, 1)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	tally, err = votes.Tally(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []model.TallyRow{{NomineeID: 2, Votes: 1}}, tally)

	// A different category is independent.
	_, err = votes.Cast(ctx, u.ID, 4, 1)
	require.NoError(t, err)
}

func TestConcurrentDuplicateCasts(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	votes := NewVoteRepo(db)
	ctx := context.Background()

	u := seedUser(t, users, "Omar Khalil", "+971502222222")

	const attempts = 8
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(nomineeID int) {
			defer wg.Done()
			_, err := votes.Cast(ctx, u.ID, 7, nomineeID)
			switch {
			case err == nil:
				successes.Add(1)
			case err == ErrAlreadyVoted:
				conflicts.Add(1)
			default:
				t.Errorf("unexpected cast error: %v", err)
			}
		}(i + 1)
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load(), "exactly one concurrent cast must win")
	assert.Equal(t, int32(attempts-1), conflicts.Load())

	var count int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM votes WHERE user_id=? AND category_id=?", u.ID, 7).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestVotesForUser(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	votes := NewVoteRepo(db)
	ctx := context.Background()

	u := seedUser(t, users, "Ali Hassan", "+971503333333")
	other := seedUser(t, users, "Sara Noor", "+971504444444")

	_, err := votes.Cast(ctx, u.ID, 2, 1)
	require.NoError(t, err)
	_, err = votes.Cast(ctx, u.ID, 1, 3)
	require.NoError(t, err)
	_, err = votes.Cast(ctx, other.ID, 1, 2)
	require.NoError(t, err)

	got, err := votes.VotesForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].CategoryID) // ordered by category
	assert.Equal(t, 2, got[1].CategoryID)
}

func TestResetVotes(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db)
	votes := NewVoteRepo(db)
	ctx := context.Background()

	a := seedUser(t, users, "Jane Doe", "+971505555555")
	b := seedUser(t, users, "Omar Khalil", "+971506666666")
	for _, cast := range []struct {
		user uint64
		cat  int
	}{{a.ID, 3}, {a.ID, 4}, {b.ID, 3}, {b.ID, 5}} {
		_, err := votes.Cast(ctx, cast.user, cast.cat, 1)
		require.NoError(t, err)
	}

	n, err := votes.DeleteByCategory(ctx, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	tally, err := votes.Tally(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, tally)
	tally, err = votes.Tally(ctx, 4)
	require.NoError(t, err)
	assert.Len(t, tally, 1, "other categories untouched")

	n, err = votes.DeleteByUser(ctx, a.ID, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = votes.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
