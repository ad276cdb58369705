/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. The engine works in
  exact decimals; the API boundary converts to float64 (rounded to two
  places for percentages) because clients consume the numbers for display,
  not arithmetic.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - session/session.go: The domain state being projected
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/metrics"
	"github.com/warp/staffing-engine/table"
)

// =============================================================================
// TABLE
// =============================================================================

// TableDTO is the wide allocation table as the client renders it: rows in
// ingestion order, one column per program, plus the derived columns.
type TableDTO struct {
	Programs  []string `json:"programs"`
	Employees []RowDTO `json:"employees"`
}

// RowDTO is one employee row.
type RowDTO struct {
	Name        string             `json:"name"`
	Role        string             `json:"role,omitempty"`
	Capacity    float64            `json:"capacity"`
	Allocations map[string]float64 `json:"allocations"`
	TotalHours  float64            `json:"total_hours"`
	Utilization int                `json:"utilization_pct"`
}

func toTableDTO(t *table.Table) TableDTO {
	dto := TableDTO{Programs: []string{}, Employees: []RowDTO{}}
	for _, p := range t.Programs() {
		dto.Programs = append(dto.Programs, string(p))
	}
	for _, id := range t.Employees() {
		r, _ := t.Row(id)
		row := RowDTO{
			Name:        string(id),
			Role:        r.Role,
			Capacity:    r.Capacity.InexactFloat64(),
			Allocations: make(map[string]float64, len(r.Allocations)),
			TotalHours:  t.AllocatedHours(id).InexactFloat64(),
			Utilization: r.Utilization,
		}
		for _, p := range t.Programs() {
			row.Allocations[string(p)] = t.Allocation(id, p).InexactFloat64()
		}
		dto.Employees = append(dto.Employees, row)
	}
	return dto
}

// =============================================================================
// MUTATION REQUESTS
// =============================================================================

// SetCellRequest writes one allocation cell.
type SetCellRequest struct {
	Employee string  `json:"employee"`
	Program  string  `json:"program"`
	Hours    float64 `json:"hours"`
}

// AddEmployeeRequest appends a row.
type AddEmployeeRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// AddProgramRequest appends a column with its monthly revenue.
type AddProgramRequest struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
}

// =============================================================================
// METRICS
// =============================================================================

// MarginDTO is the profitability record for one program.
type MarginDTO struct {
	Program         string  `json:"program"`
	Revenue         float64 `json:"revenue"`
	Cost            float64 `json:"cost"`
	MarginPct       float64 `json:"margin_pct"`
	FutureCost      float64 `json:"future_cost"`
	FutureMarginPct float64 `json:"future_margin_pct"`
	DeltaPct        float64 `json:"delta_pct"`
}

func toMarginDTO(p table.Program, m metrics.ProgramMargin) MarginDTO {
	return MarginDTO{
		Program:         string(p),
		Revenue:         m.Revenue.InexactFloat64(),
		Cost:            m.Cost.Round(2).InexactFloat64(),
		MarginPct:       m.Margin.Round(2).InexactFloat64(),
		FutureCost:      m.CostFut.Round(2).InexactFloat64(),
		FutureMarginPct: m.MarginFut.Round(2).InexactFloat64(),
		DeltaPct:        m.Delta.Round(2).InexactFloat64(),
	}
}

// GroupDTO is the utilization aggregate for one role group.
type GroupDTO struct {
	Name           string   `json:"name"`
	Roles          []string `json:"roles"`
	UtilizationPct float64  `json:"utilization_pct"`
	AllocatedHours float64  `json:"allocated_hours"`
	TotalCapacity  float64  `json:"total_capacity"`
	Headcount      int      `json:"headcount"`
}

// SummaryDTO is the team-level rollup.
type SummaryDTO struct {
	AverageUtilizationPct float64            `json:"average_utilization_pct"`
	TotalAllocatedHours   float64            `json:"total_allocated_hours"`
	TotalCapacityHours    float64            `json:"total_capacity_hours"`
	ProgramHours          map[string]float64 `json:"program_hours"`
	Headcount             int                `json:"headcount"`
	HistoryDepth          int                `json:"history_depth"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes one saved scenario.
type ScenarioDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Programs  int    `json:"programs"`
	Employees int    `json:"employees"`
	CreatedAt string `json:"created_at"`
}

// SaveScenarioRequest names a snapshot of the current session.
type SaveScenarioRequest struct {
	Name string `json:"name"`
}

// =============================================================================
// MISC
// =============================================================================

// UploadResponse summarizes a successful ingestion.
type UploadResponse struct {
	Employees int  `json:"employees"`
	Programs  int  `json:"programs"`
	Pivoted   bool `json:"pivoted"`
	Revenue   int  `json:"revenue_entries"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func round2(d decimal.Decimal) float64 { return d.Round(2).InexactFloat64() }
