/*
handlers.go - HTTP API handlers for the staffing allocation engine

PURPOSE:
  Exposes the allocation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Data:
    POST   /api/upload               Ingest a CSV or XLSX file
    GET    /api/table                The wide allocation table
    POST   /api/table/cell           Write one allocation cell
    POST   /api/undo                 Revert the most recent edit
    POST   /api/reset                Discard the session, reload defaults

  Structure:
    POST   /api/employees            Add a row
    DELETE /api/employees/{name}     Remove a row
    POST   /api/programs             Add a column with revenue
    DELETE /api/programs/{name}      Remove a column

  Metrics:
    GET    /api/metrics/margins      Per-program cost and margin
    GET    /api/metrics/groups       Role-group utilization
    GET    /api/metrics/summary      Team rollup

  Scenarios:
    GET    /api/scenarios            List saved scenarios
    POST   /api/scenarios            Save the current session
    POST   /api/scenarios/{id}/load  Restore a scenario
    DELETE /api/scenarios/{id}       Delete a scenario

REQUEST FLOW:
  1. Resolve the session (middleware)
  2. Parse and validate input
  3. Call domain logic (session, ingest, metrics)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, malformed input
  - 404: Employee/program/scenario not found
  - 409: Conflict (duplicate name, nothing to undo)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/config"
	"github.com/warp/staffing-engine/ingest"
	"github.com/warp/staffing-engine/session"
	"github.com/warp/staffing-engine/store/sqlite"
	"github.com/warp/staffing-engine/table"
)

// maxUploadBytes bounds ingested file size.
const maxUploadBytes = 16 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Sessions  *session.Manager
	Scenarios *sqlite.Store
	Groups    []config.Group
}

// NewHandler creates a new handler.
func NewHandler(sessions *session.Manager, scenarios *sqlite.Store, groups []config.Group) *Handler {
	return &Handler{
		Sessions:  sessions,
		Scenarios: scenarios,
		Groups:    groups,
	}
}

func (h *Handler) session(r *http.Request) *session.Session {
	return h.Sessions.Get(sessionID(r))
}

// =============================================================================
// DATA HANDLERS
// =============================================================================

// Upload ingests an uploaded file and replaces the session's table.
// Accepts multipart form data (field "file") or a raw body; XLSX is
// detected by filename extension, everything else parses as CSV.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	body, name, err := uploadPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload", err)
		return
	}

	var raw *ingest.RawTable
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		raw, err = ingest.ReadWorkbook(bytes.NewReader(body))
	} else {
		raw, err = ingest.ReadCSV(bytes.NewReader(body))
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not parse file", err)
		return
	}

	res, err := ingest.Ingest(raw, time.Now())
	if err != nil && !errors.Is(err, ingest.ErrMalformedInput) {
		writeError(w, http.StatusBadRequest, "Could not ingest file", err)
		return
	}

	// An empty result never replaces a populated session: the caller gets
	// an error and keeps whatever table they had.
	if errors.Is(err, ingest.ErrMalformedInput) || res.Table.IsEmpty() {
		writeError(w, http.StatusBadRequest, "File produced no usable rows; existing data kept", err)
		return
	}

	s := h.session(r)
	s.Load(res)

	writeJSON(w, http.StatusOK, UploadResponse{
		Employees: res.Table.Len(),
		Programs:  len(res.Table.Programs()),
		Pivoted:   res.Pivoted,
		Revenue:   len(res.Revenue),
	})
}

// uploadPayload extracts the file bytes and name from either a multipart
// form or a raw request body.
func uploadPayload(r *http.Request) ([]byte, string, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, "", err
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		body, err := io.ReadAll(f)
		return body, header.Filename, err
	}
	body, err := io.ReadAll(r.Body)
	return body, "", err
}

// GetTable returns the session's wide table.
func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toTableDTO(h.session(r).Table()))
}

// SetCell writes one allocation cell.
func (h *Handler) SetCell(w http.ResponseWriter, r *http.Request) {
	var req SetCellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s := h.session(r)
	err := s.SetCell(table.EmployeeID(req.Employee), table.Program(req.Program), decimal.NewFromFloat(req.Hours))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTableDTO(s.Table()))
}

// Undo reverts the most recent edit.
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := s.Undo(); err != nil {
		writeError(w, http.StatusConflict, "Nothing to undo", err)
		return
	}
	writeJSON(w, http.StatusOK, toTableDTO(s.Table()))
}

// Reset discards the session's state and reloads the default table.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Reset(sessionID(r))
	writeJSON(w, http.StatusOK, toTableDTO(s.Table()))
}

// =============================================================================
// STRUCTURE HANDLERS
// =============================================================================

// AddEmployee appends a zero-allocation row.
func (h *Handler) AddEmployee(w http.ResponseWriter, r *http.Request) {
	var req AddEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	s := h.session(r)
	if err := s.AddEmployee(table.EmployeeID(strings.TrimSpace(req.Name)), strings.TrimSpace(req.Role)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTableDTO(s.Table()))
}

// RemoveEmployee drops a row.
func (h *Handler) RemoveEmployee(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s := h.session(r)
	if err := s.RemoveEmployee(table.EmployeeID(name)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTableDTO(s.Table()))
}

// AddProgram appends a zero-hours column and records its revenue.
func (h *Handler) AddProgram(w http.ResponseWriter, r *http.Request) {
	var req AddProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	if req.Revenue < 0 {
		writeError(w, http.StatusBadRequest, "Revenue must be non-negative", nil)
		return
	}

	s := h.session(r)
	err := s.AddProgram(table.Program(strings.TrimSpace(req.Name)), decimal.NewFromFloat(req.Revenue))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTableDTO(s.Table()))
}

// RemoveProgram drops a column and its revenue entry.
func (h *Handler) RemoveProgram(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s := h.session(r)
	if err := s.RemoveProgram(table.Program(name)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTableDTO(s.Table()))
}

// =============================================================================
// METRICS HANDLERS
// =============================================================================

// GetMargins returns per-program cost, margin and projected margin,
// ordered by program name.
func (h *Handler) GetMargins(w http.ResponseWriter, r *http.Request) {
	margins := h.session(r).Margins()

	programs := make([]table.Program, 0, len(margins))
	for p := range margins {
		programs = append(programs, p)
	}
	sort.Slice(programs, func(i, j int) bool { return programs[i] < programs[j] })

	dtos := make([]MarginDTO, 0, len(programs))
	for _, p := range programs {
		dtos = append(dtos, toMarginDTO(p, margins[p]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetGroups returns utilization for each configured role group. A
// ?roles=CE,SCE query aggregates an ad-hoc group instead.
func (h *Handler) GetGroups(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)

	groups := h.Groups
	if q := r.URL.Query().Get("roles"); q != "" {
		roles := strings.Split(q, ",")
		groups = []config.Group{{Name: strings.Join(roles, "+"), Roles: roles}}
	}

	dtos := make([]GroupDTO, 0, len(groups))
	for _, g := range groups {
		res := s.GroupUtilization(g.Roles)
		dtos = append(dtos, GroupDTO{
			Name:           g.Name,
			Roles:          g.Roles,
			UtilizationPct: round2(res.Pct),
			AllocatedHours: res.AllocatedHours.InexactFloat64(),
			TotalCapacity:  res.TotalCapacity.InexactFloat64(),
			Headcount:      res.Headcount,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSummary returns the team-level rollup.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	sum := s.Summary()
	t := s.Table()

	dto := SummaryDTO{
		AverageUtilizationPct: round2(sum.AverageUtilization),
		TotalAllocatedHours:   sum.TotalAllocated.InexactFloat64(),
		TotalCapacityHours:    sum.TotalCapacity.InexactFloat64(),
		ProgramHours:          make(map[string]float64, len(sum.ProgramTotals)),
		Headcount:             t.Len(),
		HistoryDepth:          s.HistoryLen(),
	}
	for p, v := range sum.ProgramTotals {
		dto.ProgramHours[string(p)] = v.InexactFloat64()
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns all saved scenarios, newest first.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := h.Scenarios.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list scenarios", err)
		return
	}

	dtos := make([]ScenarioDTO, 0, len(scenarios))
	for _, sc := range scenarios {
		dtos = append(dtos, toScenarioDTO(sc))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveScenario snapshots the current session under a name.
func (h *Handler) SaveScenario(w http.ResponseWriter, r *http.Request) {
	var req SaveScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	state := h.session(r).Export()
	sc, err := h.Scenarios.Save(r.Context(), strings.TrimSpace(req.Name), state)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save scenario", err)
		return
	}
	writeJSON(w, http.StatusCreated, toScenarioDTO(sc))
}

// LoadScenario restores a saved scenario into the current session.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sc, err := h.Scenarios.Get(r.Context(), id)
	if errors.Is(err, sqlite.ErrScenarioNotFound) {
		writeError(w, http.StatusNotFound, "Scenario not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	s := h.session(r)
	s.Import(sc.State)
	writeJSON(w, http.StatusOK, toTableDTO(s.Table()))
}

// DeleteScenario removes a saved scenario.
func (h *Handler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.Scenarios.Delete(r.Context(), id)
	if errors.Is(err, sqlite.ErrScenarioNotFound) {
		writeError(w, http.StatusNotFound, "Scenario not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func toScenarioDTO(sc sqlite.Scenario) ScenarioDTO {
	return ScenarioDTO{
		ID:        sc.ID,
		Name:      sc.Name,
		Programs:  len(sc.State.Programs),
		Employees: len(sc.State.Employees),
		CreatedAt: sc.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case table.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case table.IsConflict(err):
		writeError(w, http.StatusConflict, "Already exists", err)
	case errors.Is(err, table.ErrNegativeHours):
		writeError(w, http.StatusBadRequest, "Hours must be non-negative", err)
	default:
		writeError(w, http.StatusInternalServerError, "Operation failed", err)
	}
}
