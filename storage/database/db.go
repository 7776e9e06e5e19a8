package database

import (
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	appfs "github.com/studysitare/portal/fs"
)

// Open opens (creating it if needed) the single-file SQLite store at path.
// Foreign keys are off by default in SQLite and must be requested.
func Open(path string) (*sqlx.DB, error) {
	q := make(url.Values)
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", "5000")

	db, err := sqlx.Open("sqlite3", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// a single writer keeps SQLITE_BUSY at bay
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 10
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate brings the schema up to date using the embedded migrations.
// It never drops existing tables; re-running it is a no-op.
func Migrate(db *sqlx.DB) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
