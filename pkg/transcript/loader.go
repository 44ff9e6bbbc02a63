package transcript

import (
	"bufio"
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 4 * 1024 * 1024

// LoadFile reads a transcript, choosing the format from the extension:
// .jsonl, .json, .yaml/.yml or .db/.sqlite.
func LoadFile(path string) ([]Entry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open transcript: %w", err)
		}
		defer f.Close()
		return ParseJSONL(f)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read transcript: %w", err)
		}
		return ParseJSON(data)
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read transcript: %w", err)
		}
		return ParseYAML(data)
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(path)
	}
	return nil, fmt.Errorf("unsupported transcript format %q", filepath.Ext(path))
}

// ParseJSONL decodes one entry per line. Blank lines are skipped; a line
// that fails to decode or validate is an error naming its line number.
func ParseJSONL(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var entries []Entry
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}
	return entries, nil
}

// ParseJSON decodes a JSON array of entries.
func ParseJSON(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	return entries, validateAll(entries)
}

// ParseYAML decodes a YAML list of entries.
func ParseYAML(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	return entries, validateAll(entries)
}

func validateAll(entries []Entry) error {
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

const createEntriesTable = `CREATE TABLE IF NOT EXISTS entries (
	position      INTEGER PRIMARY KEY,
	id            TEXT NOT NULL,
	kind          TEXT NOT NULL DEFAULT 'message',
	author        TEXT NOT NULL DEFAULT '',
	text          TEXT NOT NULL DEFAULT '',
	markdown      INTEGER NOT NULL DEFAULT 0,
	height        REAL,
	bottom_margin REAL,
	sticky        INTEGER
)`

// LoadSQLite reads the entries table of a SQLite transcript in position
// order.
func LoadSQLite(path string) ([]Entry, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT id, kind, author, text, markdown, height, bottom_margin, sticky
		FROM entries ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			kind     string
			markdown bool
			height   sql.NullFloat64
			margin   sql.NullFloat64
			sticky   sql.NullBool
		)
		if err := rows.Scan(&e.ID, &kind, &e.Author, &e.Text, &markdown, &height, &margin, &sticky); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Kind = Kind(kind)
		e.Markdown = markdown
		if height.Valid {
			e.Height = &height.Float64
		}
		if margin.Valid {
			e.BottomMargin = &margin.Float64
		}
		if sticky.Valid {
			e.Sticky = &sticky.Bool
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	return entries, validateAll(entries)
}

// SaveSQLite writes entries to a SQLite transcript, replacing any existing
// rows.
func SaveSQLite(path string, entries []Entry) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			log.Printf("transcript: rollback failed: %v", err)
		}
	}()

	if _, err := tx.Exec(createEntriesTable); err != nil {
		return fmt.Errorf("create entries table: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO entries
		(position, id, kind, author, text, markdown, height, bottom_margin, sticky)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		kind := e.Kind
		if kind == "" {
			kind = KindMessage
		}
		var height, margin, sticky any
		if e.Height != nil {
			height = *e.Height
		}
		if e.BottomMargin != nil {
			margin = *e.BottomMargin
		}
		if e.Sticky != nil {
			sticky = *e.Sticky
		}
		if _, err := stmt.Exec(i, e.ID, string(kind), e.Author, e.Text, e.Markdown, height, margin, sticky); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}
