package database

import (
	"context"
	"fmt"

	"shareit/internal/config"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		requestor_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		available BOOLEAN NOT NULL DEFAULT 1,
		owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		request_id INTEGER REFERENCES requests(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		booker_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		start_time DATETIME NOT NULL,
		end_time DATETIME NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('WAITING', 'APPROVED', 'REJECTED'))
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		author_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created DATETIME NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(512) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS requests (
		id BIGSERIAL PRIMARY KEY,
		description VARCHAR(512) NOT NULL,
		requestor_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description VARCHAR(512) NOT NULL,
		available BOOLEAN NOT NULL DEFAULT TRUE,
		owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		request_id BIGINT REFERENCES requests(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGSERIAL PRIMARY KEY,
		item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		booker_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		status VARCHAR(16) NOT NULL CHECK (status IN ('WAITING', 'APPROVED', 'REJECTED'))
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGSERIAL PRIMARY KEY,
		text VARCHAR(2000) NOT NULL,
		item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created TIMESTAMPTZ NOT NULL
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_items_request ON items(request_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_booker_start ON bookings(booker_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_item_status ON bookings(item_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_requestor_created ON requests(requestor_id, created)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_item ON comments(item_id)`,
}

// Migrate creates the tables and indexes that do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	statements := sqliteSchema
	if db.driver == config.DriverPostgres {
		statements = postgresSchema
	}
	statements = append(append([]string(nil), statements...), indexes...)

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error executing query %s: %w", stmt, err)
		}
	}
	return nil
}
