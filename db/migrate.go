package db

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
)

var schema = []struct {
	name string
	sql  string
}{
	{"submissions", `
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		number INTEGER NOT NULL,
		reporter_id TEXT NOT NULL,
		reporter_name TEXT NOT NULL DEFAULT '',
		location_id INTEGER NOT NULL,
		location_name TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		actions TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'pending_review',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`},
	{"submissions_status_idx", `CREATE INDEX IF NOT EXISTS submissions_status_idx ON submissions(status);`},
	{"photos", `
	CREATE TABLE IF NOT EXISTS photos (
		hash TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		aspect_ratio REAL NOT NULL,
		created_at INTEGER NOT NULL
	);`},
	{"submission_photos", `
	CREATE TABLE IF NOT EXISTS submission_photos (
		submission_id TEXT NOT NULL REFERENCES submissions(id),
		photo_hash TEXT NOT NULL REFERENCES photos(hash),
		position INTEGER NOT NULL,
		PRIMARY KEY (submission_id, photo_hash)
	);`},
	{"locations", `
	CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		responsible_id TEXT NOT NULL DEFAULT '',
		responsible_text TEXT NOT NULL DEFAULT ''
	);`},
	{"users", `
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user'
	);`},
	{"id_counter", `
	CREATE TABLE IF NOT EXISTS id_counter (
		counter_name TEXT PRIMARY KEY,
		current_value INTEGER NOT NULL DEFAULT 0
	);`},
	{"conversations", `
	CREATE TABLE IF NOT EXISTS conversations (
		key TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		state TEXT NOT NULL,
		draft TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);`},
}

// createTables 如果数据库中不存在必要的表，则创建它们
func createTables(conn *sql.DB) error {
	for _, s := range schema {
		if _, err := conn.Exec(s.sql); err != nil {
			return errors.Wrapf(err, "create %s", s.name)
		}
	}
	log.Debug().Int("statements", len(schema)).Msg("database tables initialized")
	return nil
}
