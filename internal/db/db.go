package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import for side-effects only
	"github.com/rotisserie/eris"

	"mspro-labs/campus-locator/internal/models"
)

// Connect opens the SQLite snapshot store and ensures the schema exists.
func Connect(dbPath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "db: open")
	}

	if err = db.Ping(); err != nil {
		return nil, eris.Wrap(err, "db: ping")
	}

	if err = createSchema(db); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "db: ensure schema")
	}

	return db, nil
}

// createSchema is private as it's only called by Connect.
func createSchema(db *sql.DB) error {
	buildingsTable := `
	CREATE TABLE IF NOT EXISTS buildings (
	  key TEXT PRIMARY KEY,
	  url TEXT NOT NULL,
	  name TEXT NOT NULL,
	  ord INTEGER NOT NULL DEFAULT 0,
	  first_scraped_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	  last_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	  is_active INTEGER DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_buildings_active ON buildings(is_active);
	`
	if _, err := db.Exec(buildingsTable); err != nil {
		return err
	}
	if err := addOrdColumn(db); err != nil {
		return err
	}

	lookupsTable := `
	CREATE TABLE IF NOT EXISTS lookups (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  ocr_text TEXT NOT NULL,
	  key TEXT NOT NULL,
	  name TEXT,
	  address TEXT,
	  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(lookupsTable); err != nil {
		return err
	}

	return nil
}

// addOrdColumn upgrades snapshots written before scrape order was stored.
func addOrdColumn(db *sql.DB) error {
	rows, err := db.Query(`PRAGMA table_info(buildings)`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return err
		}
		if name == "ord" {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()
	_, err = db.Exec(`ALTER TABLE buildings ADD COLUMN ord INTEGER NOT NULL DEFAULT 0`)
	return err
}

// SaveDirectory replaces the active snapshot with dir in one transaction:
// every row is marked inactive, then the scraped keys are upserted as active.
func SaveDirectory(db *sql.DB, dir models.Directory) (int64, error) {
	upsertSQL := `
	INSERT INTO buildings (key, url, name, ord, last_seen_at, is_active)
	VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, 1)
	ON CONFLICT(key) DO UPDATE SET
	  url = excluded.url,
	  name = excluded.name,
	  ord = excluded.ord,
	  last_seen_at = CURRENT_TIMESTAMP,
	  is_active = 1;
	`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "db: begin")
	}

	if _, err := tx.ExecContext(ctx, `UPDATE buildings SET is_active = 0 WHERE is_active = 1;`); err != nil {
		tx.Rollback()
		return 0, eris.Wrap(err, "db: mark buildings inactive")
	}

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		tx.Rollback()
		return 0, eris.Wrap(err, "db: prepare upsert")
	}
	defer stmt.Close()

	var totalAffected int64
	for key, entry := range dir {
		res, err := stmt.ExecContext(ctx, key, entry.URL, entry.Name, entry.Order)
		if err != nil {
			tx.Rollback()
			return 0, eris.Wrapf(err, "db: upsert %s", key)
		}
		rows, _ := res.RowsAffected()
		totalAffected += rows
	}

	if err = tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "db: commit")
	}

	return totalAffected, nil
}

// LoadDirectory returns the active snapshot.
func LoadDirectory(db *sql.DB) (models.Directory, error) {
	rows, err := db.Query(`SELECT key, url, name, ord FROM buildings WHERE is_active = 1`)
	if err != nil {
		return nil, eris.Wrap(err, "db: query buildings")
	}
	defer rows.Close()

	dir := models.Directory{}
	for rows.Next() {
		var e models.DirectoryEntry
		if err := rows.Scan(&e.Key, &e.URL, &e.Name, &e.Order); err != nil {
			return nil, eris.Wrap(err, "db: scan building")
		}
		dir[e.Key] = e
	}
	return dir, rows.Err()
}

// --- Lookup history ---

type LookupEntry struct {
	OCRText   string
	Key       string
	Name      string
	Address   string
	CreatedAt time.Time
}

// RecordLookup appends a successful lookup to the history.
func RecordLookup(db *sql.DB, ocrText string, b models.Building) error {
	_, err := db.Exec(
		"INSERT INTO lookups (ocr_text, key, name, address) VALUES (?, ?, ?, ?)",
		ocrText, b.Key, b.Name, b.Address,
	)
	if err != nil {
		return eris.Wrap(err, "db: record lookup")
	}
	return nil
}

// ListLookups returns all recorded lookups, newest first.
func ListLookups(db *sql.DB) ([]LookupEntry, error) {
	rows, err := db.Query("SELECT ocr_text, key, name, address, created_at FROM lookups ORDER BY id DESC")
	if err != nil {
		return nil, eris.Wrap(err, "db: query lookups")
	}
	defer rows.Close()

	var entries []LookupEntry
	for rows.Next() {
		var e LookupEntry
		if err := rows.Scan(&e.OCRText, &e.Key, &e.Name, &e.Address, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "db: scan lookup")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "db: iterate lookups")
	}
	return entries, nil
}

// ClearLookups wipes the history.
func ClearLookups(db *sql.DB) (int64, error) {
	res, err := db.Exec("DELETE FROM lookups")
	if err != nil {
		return 0, eris.Wrap(err, "db: clear lookups")
	}
	return res.RowsAffected()
}
