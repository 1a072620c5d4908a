// Package history persists which failure fingerprints already have
// tracker tickets, so repeated runs do not file duplicates. The scan path
// itself stays stateless; only the ticket-filing flow consults history.
package history

import (
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// FiledTicket is one recorded fingerprint→ticket association.
type FiledTicket struct {
	ID          int64
	Fingerprint string
	TicketKey   string
	Scenario    string
	Category    string
	FiledAt     time.Time
}

// Store manages the SQLite database of filed tickets.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the database at dbPath and applies
// the schema. ":memory:" is supported for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so subsequent statements wait on locks.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Fingerprint derives a stable identifier for a failure from its scenario
// name and category. Description text is deliberately excluded: it often
// carries run-specific noise (timings, ids) that would defeat dedup.
func Fingerprint(scenario, category string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(scenario) + "\x00" + strings.ToLower(category)))
	return hex.EncodeToString(sum[:])
}

// RecordTicket stores a fingerprint→ticket association. Recording the
// same fingerprint again updates the ticket key.
func (s *Store) RecordTicket(fingerprint, ticketKey, scenario, category string) error {
	_, err := s.db.Exec(`
		INSERT INTO filed_tickets (fingerprint, ticket_key, scenario, category)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET ticket_key = excluded.ticket_key`,
		fingerprint, ticketKey, scenario, category)
	if err != nil {
		return fmt.Errorf("record ticket: %w", err)
	}
	return nil
}

// FindTicket returns the ticket key recorded for a fingerprint, or
// ok=false when none exists.
func (s *Store) FindTicket(fingerprint string) (string, bool, error) {
	var key string
	err := s.db.QueryRow(
		`SELECT ticket_key FROM filed_tickets WHERE fingerprint = ?`,
		fingerprint).Scan(&key)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find ticket: %w", err)
	}
	return key, true, nil
}

// Recent returns up to limit most recently filed tickets, newest first.
func (s *Store) Recent(limit int) ([]FiledTicket, error) {
	rows, err := s.db.Query(`
		SELECT id, fingerprint, ticket_key, scenario, category, filed_at
		FROM filed_tickets ORDER BY filed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list filed tickets: %w", err)
	}
	defer rows.Close()

	var out []FiledTicket
	for rows.Next() {
		var ticket FiledTicket
		if err := rows.Scan(&ticket.ID, &ticket.Fingerprint, &ticket.TicketKey,
			&ticket.Scenario, &ticket.Category, &ticket.FiledAt); err != nil {
			return nil, fmt.Errorf("scan filed ticket: %w", err)
		}
		out = append(out, ticket)
	}
	return out, rows.Err()
}
