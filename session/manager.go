/*
manager.go - Session-per-key lifecycle

PURPOSE:
  One isolated Session per session key. A session is created lazily on
  first access and seeded by the bootstrap: the persisted default table if
  one exists, otherwise the built-in demo data. Reset throws the session's
  state away and re-runs the bootstrap. The default source is read-only —
  nothing a session does ever writes back to it.
*/
package session

import (
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/ingest"
	"github.com/warp/staffing-engine/table"
)

// Bootstrap produces the initial ingestion result for a new session.
type Bootstrap func() (*ingest.Result, error)

// =============================================================================
// MANAGER
// =============================================================================

type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	settings  Settings
	bootstrap Bootstrap
}

func NewManager(settings Settings, bootstrap Bootstrap) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		settings:  settings,
		bootstrap: bootstrap,
	}
}

// Get returns the session for a key, creating and seeding it on first use.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s = New(id, m.settings)
	m.seed(s)
	m.sessions[id] = s
	return s
}

// Reset discards a session's state and re-runs the bootstrap.
func (m *Manager) Reset(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := New(id, m.settings)
	m.seed(s)
	m.sessions[id] = s
	return s
}

func (m *Manager) seed(s *Session) {
	if m.bootstrap == nil {
		return
	}
	res, err := m.bootstrap()
	if err != nil || res == nil {
		// A broken default source yields an empty session, not a failure.
		return
	}
	s.Load(res)
}

// =============================================================================
// DEFAULT BOOTSTRAP
// =============================================================================

// FileBootstrap ingests the persisted default table at path when present
// and falls back to the built-in demo table otherwise. The file is only
// ever read.
func FileBootstrap(path string) Bootstrap {
	return func() (*ingest.Result, error) {
		if path != "" {
			if f, err := os.Open(path); err == nil {
				defer f.Close()
				raw, err := ingest.ReadCSV(f)
				if err == nil {
					return ingest.Ingest(raw, time.Now())
				}
			}
		}
		return demoResult(), nil
	}
}

// demoResult seeds four employees across two programs.
func demoResult() *ingest.Result {
	t := table.New()
	cap152 := decimal.NewFromInt(152)

	seed := []struct {
		name  table.EmployeeID
		role  string
		hours [2]int64
	}{
		{"Mitch Ursick", "CSM", [2]int64{10, 60}},
		{"Noah Bisel", "CE", [2]int64{80, 20}},
		{"Kevin Steger", "CP", [2]int64{20, 60}},
		{"Nicki Williams", "CE", [2]int64{0, 15}},
	}
	programs := []table.Program{"Accenture", "Google"}

	for _, p := range programs {
		t.AddProgram(p)
	}
	for _, e := range seed {
		t.AddEmployee(e.name, e.role, cap152)
		t.SetCapacity(e.name, cap152)
		for i, p := range programs {
			t.SetAllocation(e.name, p, decimal.NewFromInt(e.hours[i]))
		}
	}

	return &ingest.Result{
		Table:   t,
		Revenue: make(map[table.Program]decimal.Decimal),
		Future:  make(ingest.FutureMap),
	}
}
