// Package store persists the per-device state: the seen-story history and
// the click log. Both live in one sqlite database under the user's data
// dir. Reads are corruption-tolerant: a broken database degrades to empty
// state rather than failing the refresh cycle.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/history"
)

type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

// Open opens (or creates) the device state database. If the file exists but
// is not a usable database, it is moved aside and recreated empty; losing
// local history is preferable to a client that cannot start.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}

	s, err := open(dbPath)
	if err == nil {
		return s, nil
	}

	// Corrupt or unreadable file: keep it for diagnosis, start fresh.
	if renameErr := os.Rename(dbPath, dbPath+".broken"); renameErr != nil {
		return nil, err
	}
	return open(dbPath)
}

func open(dbPath string) (*Store, error) {
	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &Store{readDB: readDB, writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			url     TEXT NOT NULL UNIQUE,
			title   TEXT NOT NULL,
			source  TEXT NOT NULL DEFAULT '',
			snark   TEXT NOT NULL DEFAULT '',
			feature INTEGER NOT NULL DEFAULT 0,
			badge   TEXT NOT NULL DEFAULT '',
			section TEXT NOT NULL DEFAULT '',
			seen_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS clicks (
			url        TEXT PRIMARY KEY,
			clicked_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// LoadHistory returns the persisted history in insertion order. It never
// fails the caller: any read error yields an empty history.
func (s *Store) LoadHistory() []history.Entry {
	rows, err := s.readDB.Query(`
		SELECT url, title, source, snark, feature, badge, section, seen_at
		FROM history ORDER BY id
	`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		var (
			e       history.Entry
			feature int
			seenMS  int64
		)
		if err := rows.Scan(&e.URL, &e.Title, &e.Source, &e.Snark, &feature, &e.Badge, &e.Section, &seenMS); err != nil {
			return nil
		}
		e.Feature = feature != 0
		e.SeenAt = time.UnixMilli(seenMS)
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil
	}
	return entries
}

// SaveHistory replaces the persisted history wholesale, in one transaction.
func (s *Store) SaveHistory(entries []history.Entry) error {
	tx, err := s.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM history"); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO history (url, title, source, snark, feature, badge, section, seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		feature := 0
		if e.Feature {
			feature = 1
		}
		if _, err := stmt.Exec(e.URL, e.Title, e.Source, e.Snark, feature, e.Badge, e.Section, e.SeenAt.UnixMilli()); err != nil {
			return fmt.Errorf("saving history entry %s: %w", e.URL, err)
		}
	}

	return tx.Commit()
}

// RecordClick sets or overwrites the click timestamp for a URL. Persisted
// immediately; a lost click is a UX nit, not a correctness problem.
func (s *Store) RecordClick(url string, now time.Time) error {
	if url == "" {
		return nil
	}
	_, err := s.writeDB.Exec(`
		INSERT INTO clicks (url, clicked_at) VALUES (?, ?)
		ON CONFLICT(url) DO UPDATE SET clicked_at = excluded.clicked_at
	`, url, now.UnixMilli())
	if err != nil {
		return fmt.Errorf("recording click: %w", err)
	}
	return nil
}

// Clicks returns the last-click time per URL. Read errors yield an empty
// map.
func (s *Store) Clicks() map[string]time.Time {
	clicks := make(map[string]time.Time)
	rows, err := s.readDB.Query("SELECT url, clicked_at FROM clicks")
	if err != nil {
		return clicks
	}
	defer rows.Close()

	for rows.Next() {
		var (
			url string
			ms  int64
		)
		if err := rows.Scan(&url, &ms); err != nil {
			return clicks
		}
		clicks[url] = time.UnixMilli(ms)
	}
	return clicks
}

// Stats reports entry counts and the database file size.
func (s *Store) Stats(dbPath string) (histCount, clickCount int, size int64, err error) {
	if err = s.readDB.QueryRow("SELECT COUNT(*) FROM history").Scan(&histCount); err != nil {
		return 0, 0, 0, fmt.Errorf("counting history: %w", err)
	}
	if err = s.readDB.QueryRow("SELECT COUNT(*) FROM clicks").Scan(&clickCount); err != nil {
		return 0, 0, 0, fmt.Errorf("counting clicks: %w", err)
	}
	fi, err := os.Stat(dbPath)
	if err != nil {
		return histCount, clickCount, 0, fmt.Errorf("reading db size: %w", err)
	}
	return histCount, clickCount, fi.Size(), nil
}

// ClearHistory deletes all history entries and reports how many were removed.
func (s *Store) ClearHistory() (int64, error) {
	res, err := s.writeDB.Exec("DELETE FROM history")
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	return res.RowsAffected()
}

// ResetClicks deletes all click records and reports how many were removed.
func (s *Store) ResetClicks() (int64, error) {
	res, err := s.writeDB.Exec("DELETE FROM clicks")
	if err != nil {
		return 0, fmt.Errorf("resetting clicks: %w", err)
	}
	return res.RowsAffected()
}
