// Package snapshot stores canonical graph renderings in SQLite and reports
// whether a rendering is new, unchanged, or changed since it was last
// recorded.
package snapshot

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"tlog.app/go/errors"
)

//go:embed schema.sql
var schemaSQL string

// DomainSnapshot prefixes every digest. The version suffix allows the
// rendering or hash to change without colliding with old rows.
const DomainSnapshot = "rcfg/snapshot/v1"

// ErrNotFound is returned by Get for a name with no snapshot.
var ErrNotFound = errors.New("snapshot not found")

// Status is the outcome of Record.
type Status int

const (
	StatusNew Status = iota
	StatusUnchanged
	StatusChanged
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusUnchanged:
		return "unchanged"
	case StatusChanged:
		return "changed"
	}
	return "unknown"
}

// Snapshot is one stored rendering.
type Snapshot struct {
	ID     string // time-ordered UUIDv7 assigned on first record
	Name   string // function name
	Digest string // Digest(Body)
	Body   string
	Seq    int64 // store-wide write counter at the last change
}

// Store is a SQLite-backed snapshot table.
type Store struct {
	db *sql.DB
}

// Open creates or opens the snapshot database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "connect to database")
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "execute %q", pragma)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "apply schema")
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Digest returns the domain-separated SHA-256 of body in hex:
// SHA256(DomainSnapshot + 0x00 + body).
func Digest(body string) string {
	h := sha256.New()
	h.Write([]byte(DomainSnapshot))
	h.Write([]byte{0x00})
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil))
}

// Record stores body as the snapshot for name and reports how it compares
// with the previous one. An unchanged body leaves the row untouched.
func (s *Store) Record(ctx context.Context, name, body string) (Status, error) {
	digest := Digest(body)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	var prev string
	err = tx.QueryRowContext(ctx, `SELECT digest FROM snapshots WHERE name = ?`, name).Scan(&prev)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return 0, errors.Wrap(err, "read %s", name)
	case prev == digest:
		return StatusUnchanged, nil
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM snapshots`).Scan(&seq); err != nil {
		return 0, errors.Wrap(err, "next seq")
	}

	status := StatusChanged
	if prev == "" {
		status = StatusNew
		id := uuid.Must(uuid.NewV7()).String()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snapshots (id, name, digest, body, seq) VALUES (?, ?, ?, ?, ?)`,
			id, name, digest, body, seq)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE snapshots SET digest = ?, body = ?, seq = ? WHERE name = ?`,
			digest, body, seq, name)
	}
	if err != nil {
		return 0, errors.Wrap(err, "write %s", name)
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit")
	}
	return status, nil
}

// Get returns the snapshot stored for name, or ErrNotFound.
func (s *Store) Get(ctx context.Context, name string) (*Snapshot, error) {
	var snap Snapshot
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, digest, body, seq FROM snapshots WHERE name = ?`, name).
		Scan(&snap.ID, &snap.Name, &snap.Digest, &snap.Body, &snap.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(ErrNotFound, "%s", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read %s", name)
	}
	return &snap, nil
}

// List returns every snapshot ordered by name.
func (s *Store) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, digest, body, seq FROM snapshots ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "list")
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.Digest, &snap.Body, &snap.Seq); err != nil {
			return nil, errors.Wrap(err, "scan")
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list")
	}
	return snaps, nil
}
