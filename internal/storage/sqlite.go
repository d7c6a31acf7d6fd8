// Package storage maintains an ephemeral SQLite index over the unified
// bibliography. The .bib file is canonical; the database is a disposable
// cache rebuilt from it whenever queries are needed.
package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/manuel-freire/snolabib/internal/linker"
	"github.com/manuel-freire/snolabib/internal/reconcile"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

const selectEntryFields = `identity, year, venue, url, title, authors, contributors`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			identity     TEXT PRIMARY KEY,
			year         INTEGER NOT NULL,
			venue        TEXT NOT NULL,
			url          TEXT,
			title        TEXT,
			authors      TEXT,
			contributors TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entries_year ON entries(year);
		CREATE INDEX IF NOT EXISTS idx_entries_venue ON entries(venue);
	`
	_, err := db.Exec(schema)
	return err
}

// Entry is one indexed bibliography entry.
type Entry struct {
	Identity     string   `json:"identity"`
	Year         int      `json:"year"`
	Venue        string   `json:"venue"`
	URL          string   `json:"url,omitempty"`
	Title        string   `json:"title,omitempty"`
	Authors      string   `json:"authors,omitempty"`
	Contributors []string `json:"contributors"`
}

// Rebuild clears the index and repopulates it from unified records.
func (d *DB) Rebuild(records []*reconcile.Record) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		return 0, fmt.Errorf("clearing entries table: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO entries (identity, year, venue, url, title, authors, contributors)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing entries insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		title, _ := rec.Entry.Get("title")
		authors, _ := rec.Entry.Get("author")
		_, err := stmt.Exec(
			rec.Identity, rec.Year, linker.Venue(rec.Identity),
			rec.Link(), collapseSpace(title), collapseSpace(authors),
			strings.Join(rec.Contributors, ","),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting entry %s: %w", rec.Identity, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(records), nil
}

// Query selects indexed entries. Zero-valued filter fields are ignored.
type Query struct {
	FirstYear   int
	LastYear    int
	Venue       string
	Contributor string // DBLP ID of a roster author
	Text        string // substring of title or authors, case-insensitive
}

// Select returns matching entries, most recent first, identity
// breaking ties.
func (d *DB) Select(q Query) ([]Entry, error) {
	var conds []string
	var args []any
	if q.FirstYear != 0 {
		conds = append(conds, "year >= ?")
		args = append(args, q.FirstYear)
	}
	if q.LastYear != 0 {
		conds = append(conds, "year <= ?")
		args = append(args, q.LastYear)
	}
	if q.Venue != "" {
		conds = append(conds, "venue = ?")
		args = append(args, q.Venue)
	}
	if q.Contributor != "" {
		conds = append(conds, "(',' || contributors || ',') LIKE ?")
		args = append(args, "%,"+q.Contributor+",%")
	}
	if q.Text != "" {
		conds = append(conds, "(title LIKE ? OR authors LIKE ?)")
		pat := "%" + q.Text + "%"
		args = append(args, pat, pat)
	}

	query := "SELECT " + selectEntryFields + " FROM entries"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY year DESC, identity"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var url, title, authors sql.NullString
		var contributors string
		if err := rows.Scan(&e.Identity, &e.Year, &e.Venue, &url, &title, &authors, &contributors); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.URL = url.String
		e.Title = title.String
		e.Authors = authors.String
		e.Contributors = strings.Split(contributors, ",")
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of indexed entries.
func (d *DB) Count() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n)
	return n, err
}

// collapseSpace flattens the continuation-line whitespace bibtex values
// carry into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
