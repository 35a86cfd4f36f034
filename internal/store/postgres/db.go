package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the direct-message schema on PostgreSQL.
func Migrate(db *sql.DB) error {
	stmts := []string{
		// Users
		`CREATE TABLE IF NOT EXISTS users (
			id               VARCHAR(36)  PRIMARY KEY,
			username         VARCHAR(50)  UNIQUE NOT NULL,
			email            VARCHAR(100) UNIQUE,
			hashed_password  VARCHAR(255) NOT NULL,
			is_active        BOOLEAN      DEFAULT TRUE,
			is_online        BOOLEAN      DEFAULT FALSE,
			created_at       TIMESTAMPTZ  DEFAULT now(),
			last_seen        TIMESTAMPTZ  DEFAULT now()
		);`,
		// Direct messages. read flips false -> true once and never back.
		// The BIGSERIAL id breaks created_at ties by insertion order.
		`CREATE TABLE IF NOT EXISTS private_messages (
			id           BIGSERIAL    PRIMARY KEY,
			sender_id    VARCHAR(36)  NOT NULL REFERENCES users(id),
			receiver_id  VARCHAR(36)  NOT NULL REFERENCES users(id),
			body         TEXT         NOT NULL,
			read         BOOLEAN      NOT NULL DEFAULT FALSE,
			created_at   TIMESTAMPTZ  DEFAULT now(),
			CHECK (sender_id <> receiver_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);`,
		`CREATE INDEX IF NOT EXISTS idx_pm_sender ON private_messages(sender_id);`,
		`CREATE INDEX IF NOT EXISTS idx_pm_receiver ON private_messages(receiver_id);`,
		`CREATE INDEX IF NOT EXISTS idx_pm_created_at ON private_messages(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_pm_unread ON private_messages(receiver_id, sender_id, read);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
