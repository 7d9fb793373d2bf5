// Package store persists mutation results to a local sqlite database so
// an assessment's audit trail survives the run that produced it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hotpatch-sec/creel/internal/exposure"
)

const schema = `
CREATE TABLE IF NOT EXISTS mutations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recorded_at TEXT NOT NULL,
	service TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	resource_name TEXT NOT NULL,
	victim_arn TEXT NOT NULL,
	evil_principal TEXT NOT NULL,
	operation TEXT NOT NULL,
	success INTEGER NOT NULL,
	message TEXT NOT NULL,
	original_policy TEXT NOT NULL,
	updated_policy TEXT NOT NULL
);
`

// Store wraps the sqlite audit database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the audit database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating audit db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening audit db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing audit db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one mutation result. Called from the runner's worker
// pool; database/sql serializes access.
func (s *Store) Record(ctx context.Context, res exposure.MutationResult) error {
	original, err := res.OriginalPolicy.Marshal()
	if err != nil {
		return err
	}
	updated, err := res.UpdatedPolicy.Marshal()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO mutations (
			recorded_at, service, resource_type, resource_name, victim_arn,
			evil_principal, operation, success, message,
			original_policy, updated_policy
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		res.Service, res.ResourceType, res.ResourceName, res.VictimARN,
		res.EvilPrincipal, res.Operation, boolToInt(res.Success), res.Message,
		original, updated,
	)
	if err != nil {
		return fmt.Errorf("recording mutation: %w", err)
	}
	return nil
}

// Entry is one stored mutation record.
type Entry struct {
	RecordedAt     string
	Service        string
	ResourceType   string
	ResourceName   string
	VictimARN      string
	EvilPrincipal  string
	Operation      string
	Success        bool
	Message        string
	OriginalPolicy string
	UpdatedPolicy  string
}

// List returns all stored mutations, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT recorded_at, service, resource_type, resource_name, victim_arn,
		       evil_principal, operation, success, message,
		       original_policy, updated_policy
		FROM mutations ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing mutations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var success int
		if err := rows.Scan(
			&e.RecordedAt, &e.Service, &e.ResourceType, &e.ResourceName,
			&e.VictimARN, &e.EvilPrincipal, &e.Operation, &success,
			&e.Message, &e.OriginalPolicy, &e.UpdatedPolicy,
		); err != nil {
			return nil, fmt.Errorf("scanning mutation row: %w", err)
		}
		e.Success = success != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
