// Package store persists canonical documents and their entities in SQLite.
// Every write is INSERT OR IGNORE, so re-running a scan is idempotent.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/agenthands/docket/internal/core/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id        TEXT PRIMARY KEY,
	title     TEXT,
	sha256    TEXT,
	file_path TEXT,
	text      TEXT
);
CREATE TABLE IF NOT EXISTS document_people (
	document_id  TEXT NOT NULL,
	person_id    TEXT NOT NULL,
	matched_name TEXT,
	confidence   REAL,
	PRIMARY KEY (document_id, person_id)
);
CREATE TABLE IF NOT EXISTS unresolved_people (
	document_id TEXT NOT NULL,
	cluster     TEXT NOT NULL,
	PRIMARY KEY (document_id, cluster)
);
CREATE TABLE IF NOT EXISTS document_orgs (
	document_id TEXT NOT NULL,
	org_name    TEXT NOT NULL,
	PRIMARY KEY (document_id, org_name)
);
CREATE TABLE IF NOT EXISTS edges (
	document_id  TEXT NOT NULL,
	source       TEXT NOT NULL,
	target       TEXT NOT NULL,
	relationship TEXT NOT NULL,
	PRIMARY KEY (document_id, source, target, relationship)
);
CREATE TABLE IF NOT EXISTS people (
	id    TEXT PRIMARY KEY,
	names TEXT NOT NULL
);
`

type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open creates the database file and its directory if needed and applies
// the schema.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite registers the "sqlite" driver name
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info().Str("path", path).Msg("SQLite store initialized")
	return s, nil
}

func (s *Store) migrate() error {
	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA synchronous = NORMAL"} {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDocument writes one canonical document and everything extracted from
// it inside a single transaction.
func (s *Store) SaveDocument(ctx context.Context, doc model.DocFragment, text string, ents model.Entities) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO documents (id, title, sha256, file_path, text) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, doc.SHA256, doc.FilePath, text); err != nil {
		return fmt.Errorf("failed to insert document %s: %w", doc.ID, err)
	}

	for _, p := range ents.Resolved {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO document_people (document_id, person_id, matched_name, confidence) VALUES (?, ?, ?, ?)`,
			doc.ID, p.IdentityID, p.MatchedText, p.Confidence); err != nil {
			return fmt.Errorf("failed to insert person %s: %w", p.IdentityID, err)
		}
	}

	for _, c := range ents.Unresolved {
		encoded, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to encode unresolved cluster: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO unresolved_people (document_id, cluster) VALUES (?, ?)`,
			doc.ID, string(encoded)); err != nil {
			return fmt.Errorf("failed to insert unresolved cluster: %w", err)
		}
	}

	for _, o := range ents.Organizations {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO document_orgs (document_id, org_name) VALUES (?, ?)`,
			doc.ID, o); err != nil {
			return fmt.Errorf("failed to insert organization %s: %w", o, err)
		}
	}

	for _, e := range ents.Edges {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO edges (document_id, source, target, relationship) VALUES (?, ?, ?, ?)`,
			doc.ID, e.Source, e.Target, e.Relationship); err != nil {
			return fmt.Errorf("failed to insert edge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document %s: %w", doc.ID, err)
	}
	return nil
}

// SaveIdentities inserts or replaces known identities.
func (s *Store) SaveIdentities(ctx context.Context, ids []model.Identity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		names, err := json.Marshal(id.Names)
		if err != nil {
			return fmt.Errorf("failed to encode names of %s: %w", id.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO people (id, names) VALUES (?, ?)`, id.ID, string(names)); err != nil {
			return fmt.Errorf("failed to save identity %s: %w", id.ID, err)
		}
	}
	return tx.Commit()
}

// LoadIdentities reads the people table. names holds a JSON array; a plain
// string is taken as a single alias.
func (s *Store) LoadIdentities(ctx context.Context) ([]model.Identity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, names FROM people ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer rows.Close()

	var ids []model.Identity
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		var names []string
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			s.logger.Debug().Str("id", id).Msg("names column is not a JSON array, using raw value")
			names = []string{raw}
		}
		ids = append(ids, model.Identity{ID: id, Names: names})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read people: %w", err)
	}
	return ids, nil
}

// Count returns the number of rows in table. Only tables created by the
// schema are accepted.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	switch table {
	case "documents", "document_people", "unresolved_people", "document_orgs", "edges", "people":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
