package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mselim/awards-voting/internal/config"
	"github.com/mselim/awards-voting/internal/database"
	"github.com/mselim/awards-voting/internal/model"
)

// openTestDB creates a throwaway SQLite store with the production schema.
// The same bootstrap runs in production, so constraint behavior under
// test matches what the MySQL deployment enforces.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.EnsureSchema(context.Background(), db, cfg.DBDriver))
	return db
}

func seedUser(t *testing.T, users *UserRepo, name, phone string) model.User {
	t.Helper()
	u, err := users.Create(context.Background(), model.User{
		Fullname:    name,
		Phone:       phone,
		CountryCode: "+971",
		Birthdate:   "5 Mar 1998",
	})
	require.NoError(t, err)
	return u
}

func seedCategory(t *testing.T, cats *CategoryRepo, number int, title string, nominees ...string) {
	t.Helper()
	require.NoError(t, cats.Create(context.Background(), number, title))
	for _, n := range nominees {
		require.NoError(t, cats.AddNominee(context.Background(), number, n))
	}
}
