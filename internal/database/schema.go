package database

import (
	"context"
	"database/sql"
)

// Schema bootstrap. Every "exactly once" invariant in the application is
// backed here by a storage-level constraint: votes are unique per
// (user_id, category_id), access codes and phones are unique per user and
// nominee names are unique within a category. Timestamps are stored as
// Unix epoch seconds so both engines scan identically.

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		fullname VARCHAR(255) NOT NULL,
		phone VARCHAR(50) NOT NULL,
		country_code VARCHAR(10) NOT NULL,
		email VARCHAR(255) NULL,
		birthdate VARCHAR(50) NOT NULL,
		birthdate_suffix INT NOT NULL DEFAULT 1,
		access_code CHAR(6) NOT NULL,
		created_at BIGINT NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_phone (phone),
		UNIQUE KEY uq_users_access_code (access_code),
		UNIQUE KEY uq_users_birthdate_suffix (fullname, birthdate, birthdate_suffix)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id VARCHAR(64) NOT NULL,
		user_id BIGINT UNSIGNED NOT NULL,
		data TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		last_active BIGINT NOT NULL,
		expires_at BIGINT NOT NULL,
		PRIMARY KEY (id),
		KEY idx_sessions_user (user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS votes (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		category_id INT NOT NULL,
		nominee_id INT NOT NULL,
		created_at BIGINT NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_votes_user_category (user_id, category_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS voting_config (
		id TINYINT NOT NULL,
		voting_active TINYINT(1) NOT NULL DEFAULT 1,
		updated_by VARCHAR(64) NOT NULL DEFAULT '',
		updated_at BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS categories (
		number INT NOT NULL,
		title VARCHAR(255) NOT NULL,
		PRIMARY KEY (number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS nominees (
		category_number INT NOT NULL,
		position INT NOT NULL,
		name VARCHAR(255) NOT NULL,
		PRIMARY KEY (category_number, position),
		UNIQUE KEY uq_nominees_name (category_number, name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS registrants (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		fullname VARCHAR(255) NOT NULL,
		birthdate VARCHAR(50) NOT NULL,
		phone VARCHAR(50) NULL,
		PRIMARY KEY (id),
		KEY idx_registrants_name (fullname)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS allowed_birthdates (
		birthdate VARCHAR(50) NOT NULL,
		PRIMARY KEY (birthdate)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`INSERT IGNORE INTO voting_config (id, voting_active) VALUES (1, 1)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fullname TEXT NOT NULL,
		phone TEXT NOT NULL UNIQUE,
		country_code TEXT NOT NULL,
		email TEXT,
		birthdate TEXT NOT NULL,
		birthdate_suffix INTEGER NOT NULL DEFAULT 1,
		access_code TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL
	)`,
	// Name matching is case-insensitive everywhere, so the suffix
	// constraint collates the same way (utf8mb4 is already CI on MySQL).
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_birthdate_suffix
		ON users (fullname COLLATE NOCASE, birthdate, birthdate_suffix)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		data TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		last_active INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions (user_id)`,
	`CREATE TABLE IF NOT EXISTS votes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		category_id INTEGER NOT NULL,
		nominee_id INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE (user_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS voting_config (
		id INTEGER PRIMARY KEY,
		voting_active INTEGER NOT NULL DEFAULT 1,
		updated_by TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		number INTEGER PRIMARY KEY,
		title TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS nominees (
		category_number INTEGER NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (category_number, position),
		UNIQUE (category_number, name)
	)`,
	`CREATE TABLE IF NOT EXISTS registrants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fullname TEXT NOT NULL,
		birthdate TEXT NOT NULL,
		phone TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS allowed_birthdates (
		birthdate TEXT PRIMARY KEY
	)`,
	`INSERT OR IGNORE INTO voting_config (id, voting_active) VALUES (1, 1)`,
}

// EnsureSchema creates all tables and seeds the singleton voting_config
// row. Statements are idempotent so the function is safe to run on every
// startup.
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	stmts := sqliteSchema
	if driver == "mysql" {
		stmts = mysqlSchema
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
