package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mselim/awards-voting/internal/model"
)

// VotingConfigRepo owns the single voting_active flag. The database row
// is the source of truth; Redis holds a short-lived copy that is deleted
// on every write, so a cast observes an admin's close within gateCacheTTL
// on a cache hit and immediately on a miss. With no Redis client every
// read goes straight to the database.
type VotingConfigRepo struct {
	DB  *sql.DB
	RDB *redis.Client // optional
}

func NewVotingConfigRepo(db *sql.DB, rdb *redis.Client) *VotingConfigRepo {
	return &VotingConfigRepo{DB: db, RDB: rdb}
}

const (
	gateCacheKey = "voting:active"
	gateCacheTTL = 5 * time.Second
)

// IsOpen reports whether voting is currently accepting casts.
func (r *VotingConfigRepo) IsOpen(ctx context.Context) (bool, error) {
	if r.RDB != nil {
		if v, err := r.RDB.Get(ctx, gateCacheKey).Result(); err == nil {
			return v == "1", nil
		}
	}
	var active bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT voting_active FROM voting_config WHERE id=1").Scan(&active)
	if err != nil {
		return false, err
	}
	if r.RDB != nil {
		v := "0"
		if active {
			v = "1"
		}
		_ = r.RDB.Set(ctx, gateCacheKey, v, gateCacheTTL).Err()
	}
	return active, nil
}

// SetOpen updates the gate with audit fields and invalidates the cache.
// A reader that loaded the old row just before the update can still
// repopulate the cache with the pre-write value after the delete; the
// database row stays the source of truth and that stale copy dies within
// gateCacheTTL. IsOpen's read-through keeps the cast path honest.
func (r *VotingConfigRepo) SetOpen(ctx context.Context, open bool, actor string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE voting_config SET voting_active=?, updated_by=?, updated_at=? WHERE id=1",
		open, actor, time.Now().UTC().Unix())
	if err != nil {
		return err
	}
	if r.RDB != nil {
		_ = r.RDB.Del(ctx, gateCacheKey).Err()
	}
	return nil
}

// Status returns the gate value with its audit fields, always from the
// database.
func (r *VotingConfigRepo) Status(ctx context.Context) (model.VotingConfig, error) {
	var (
		cfg     model.VotingConfig
		updated int64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT voting_active, updated_by, updated_at FROM voting_config WHERE id=1").
		Scan(&cfg.Active, &cfg.UpdatedBy, &updated)
	if err != nil {
		return model.VotingConfig{}, err
	}
	cfg.UpdatedAt = time.Unix(updated, 0).UTC()
	return cfg, nil
}
