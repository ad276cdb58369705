/*
Package sqlite persists named scenarios.

PURPOSE:
  A scenario is a saved session snapshot (table, revenue, future state)
  under a user-chosen name. Sessions themselves are in-memory and
  ephemeral; the scenario store is the only durable state the server
  keeps. Payloads are stored as JSON so the schema never chases the
  engine's types.

SCHEMA:
  scenarios:  id (uuid), name (unique), payload (JSON), created_at

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so reads do not block
  the single writer and crash recovery is cheap.

CONCURRENCY:
  sync.RWMutex on top of database/sql. Save takes the write lock;
  Get/List only read.

USAGE:
  store, err := sqlite.New("./scenarios.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - session/state.go: The payload type being persisted
  - api/handlers.go: The scenario endpoints
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/staffing-engine/session"
)

// ErrScenarioNotFound is returned when no scenario has the requested id.
var ErrScenarioNotFound = errors.New("scenario not found")

// Scenario is one saved snapshot.
type Scenario struct {
	ID        string
	Name      string
	State     session.State
	CreatedAt time.Time
}

// Store persists scenarios in a SQLite database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (creating if needed) the scenario database at path.
// Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scenarios_created_at
		ON scenarios(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Save stores a snapshot under name, replacing any scenario already using
// that name, and returns the stored record.
func (s *Store) Save(ctx context.Context, name string, state session.State) (Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(state)
	if err != nil {
		return Scenario{}, fmt.Errorf("encode scenario: %w", err)
	}

	sc := Scenario{
		ID:        uuid.NewString(),
		Name:      name,
		State:     state,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scenarios (id, name, payload, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at`,
		sc.ID, sc.Name, string(payload), sc.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return Scenario{}, fmt.Errorf("save scenario: %w", err)
	}

	// The conflict path keeps the original row id.
	row := s.db.QueryRowContext(ctx, `SELECT id FROM scenarios WHERE name = ?`, name)
	if err := row.Scan(&sc.ID); err != nil {
		return Scenario{}, fmt.Errorf("save scenario: %w", err)
	}
	return sc, nil
}

// Get returns the scenario with the given id.
func (s *Store) Get(ctx context.Context, id string) (Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, payload, created_at FROM scenarios WHERE id = ?`, id)
	sc, err := scanScenario(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Scenario{}, ErrScenarioNotFound
	}
	return sc, err
}

// List returns all scenarios, newest first. Payloads are included so the
// caller can report sizes without a second round trip.
func (s *Store) List(ctx context.Context) ([]Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, payload, created_at FROM scenarios
		ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var out []Scenario
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Delete removes the scenario with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrScenarioNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScenario(row scanner) (Scenario, error) {
	var (
		sc        Scenario
		payload   string
		createdAt string
	)
	if err := row.Scan(&sc.ID, &sc.Name, &payload, &createdAt); err != nil {
		return Scenario{}, err
	}
	if err := json.Unmarshal([]byte(payload), &sc.State); err != nil {
		return Scenario{}, fmt.Errorf("decode scenario %s: %w", sc.ID, err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		sc.CreatedAt = t
	}
	return sc, nil
}
