/*
history.go - Bounded undo stack of table snapshots

PURPOSE:
  Single-step undo over the canonical table and the revenue registry that
  rides alongside it. Every mutating operation pushes a full pre-mutation
  copy of both before applying its change; the stack keeps the 10 most
  recent snapshots, evicting the oldest at capacity. Undo pops
  most-recent-first.

  Snapshot copying follows the memory-store snapshot/restore pattern: a
  restored table must share no state with the live one, so pushes always
  deep-copy.
*/
package session

import (
	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/table"
)

// MaxHistory bounds the undo stack.
const MaxHistory = 10

// snapshot is one pre-mutation state: the table plus the revenue registry,
// so undoing a program removal brings its revenue back too.
type snapshot struct {
	tbl     *table.Table
	revenue map[table.Program]decimal.Decimal
}

type history struct {
	snapshots []snapshot
}

// push records a pre-mutation snapshot, evicting the oldest at capacity.
func (h *history) push(t *table.Table, revenue map[table.Program]decimal.Decimal) {
	if len(h.snapshots) >= MaxHistory {
		h.snapshots = h.snapshots[1:]
	}
	rev := make(map[table.Program]decimal.Decimal, len(revenue))
	for p, v := range revenue {
		rev[p] = v
	}
	h.snapshots = append(h.snapshots, snapshot{tbl: t.Clone(), revenue: rev})
}

// pop removes and returns the most recent snapshot; ok is false when empty.
func (h *history) pop() (snapshot, bool) {
	if len(h.snapshots) == 0 {
		return snapshot{}, false
	}
	last := h.snapshots[len(h.snapshots)-1]
	h.snapshots = h.snapshots[:len(h.snapshots)-1]
	return last, true
}

func (h *history) len() int { return len(h.snapshots) }

func (h *history) clear() { h.snapshots = nil }
