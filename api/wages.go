package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/warp/carepath/facility"
	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/wage"
)

// =============================================================================
// WAGE TABLE HANDLERS
// =============================================================================

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetWageGrid returns every position's ladder on one step axis. Positions
// without a saved table show the generator's suggestion.
// GET /api/facilities/{id}/wage-tables
func (h *Handler) GetWageGrid(w http.ResponseWriter, r *http.Request) {
	f, ok := h.facilityFromURL(w, r)
	if !ok {
		return
	}
	grid, gen, err := h.buildGrid(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build wage grid", err)
		return
	}

	bench := gen.Benchmark()
	dto := WageGridDTO{
		FacilityID: f.ID,
		Region:     bench.Region,
		Benchmark:  toYen(bench.CareStaffAvg),
		Steps:      grid.Steps,
		Lines:      make([]WageGridLineDTO, len(grid.Lines)),
	}
	for i, line := range grid.Lines {
		salaries := make([]int64, len(line.Salaries))
		for j, s := range line.Salaries {
			salaries[j] = s.Int64()
		}
		dto.Lines[i] = WageGridLineDTO{
			PositionID:   line.PositionID,
			PositionName: line.PositionName,
			JobCategory:  line.JobCategory,
			Level:        line.Level,
			Saved:        line.Saved,
			Salaries:     salaries,
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// ListWageSuggestions returns a suggested table for every position.
// GET /api/facilities/{id}/wage-tables/suggestions
func (h *Handler) ListWageSuggestions(w http.ResponseWriter, r *http.Request) {
	f, ok := h.facilityFromURL(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	gen, err := h.generatorFor(ctx, f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load provider", err)
		return
	}
	positions, err := h.Store.ListPositions(ctx, f.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list positions", err)
		return
	}

	dtos := make([]WageTableDTO, len(positions))
	for i, p := range positions {
		dtos[i] = toWageTableDTO(p.ID, gen.Suggest(p.Level), false)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveWageSuggestions stores the suggestion for every position that has no
// table yet. Saved tables are left alone.
// POST /api/facilities/{id}/wage-tables/suggestions
func (h *Handler) SaveWageSuggestions(w http.ResponseWriter, r *http.Request) {
	f, ok := h.facilityFromURL(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	grid, _, err := h.buildGrid(ctx, f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build wage grid", err)
		return
	}

	saved := 0
	for _, line := range grid.Lines {
		if line.Saved {
			continue
		}
		if err := h.Store.SaveWageTable(ctx, line.PositionID, line.Definition); err != nil {
			writeDomainError(w, "Failed to save wage table", err)
			return
		}
		saved++
	}

	h.log.WithField("facility_id", f.ID).WithField("saved", saved).Info("wage table suggestions saved")
	writeJSON(w, http.StatusOK, SaveSuggestionsResponse{Saved: saved})
}

// ExportWageGrid downloads the grid as an Excel workbook.
// GET /api/facilities/{id}/wage-tables/export
func (h *Handler) ExportWageGrid(w http.ResponseWriter, r *http.Request) {
	f, ok := h.facilityFromURL(w, r)
	if !ok {
		return
	}
	grid, _, err := h.buildGrid(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build wage grid", err)
		return
	}

	// buffered so a failed export can still answer with a JSON error
	var buf bytes.Buffer
	if err := wage.ExportWorkbook(&buf, f.Name+" 賃金テーブル", grid); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export wage grid", err)
		return
	}

	filename := fmt.Sprintf("wage-tables-%s.xlsx", f.FacilityNumber)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", filename, url.PathEscape(filename)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetWageTable returns a position's saved table.
// GET /api/positions/{id}/wage-table
func (h *Handler) GetWageTable(w http.ResponseWriter, r *http.Request) {
	p, ok := h.positionFromURL(w, r)
	if !ok {
		return
	}
	def, err := h.Store.GetWageTable(r.Context(), p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get wage table", err)
		return
	}
	if def == nil {
		writeError(w, http.StatusNotFound, "Wage table not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toWageTableDTO(p.ID, *def, true))
}

// PutWageTable creates or replaces a position's table.
// PUT /api/positions/{id}/wage-table
func (h *Handler) PutWageTable(w http.ResponseWriter, r *http.Request) {
	p, ok := h.positionFromURL(w, r)
	if !ok {
		return
	}
	var params wage.Params
	if !decodeJSON(w, r, &params) {
		return
	}
	if params.MaxSteps == 0 {
		params.MaxSteps = wage.DefaultMaxSteps
	}

	def, err := wage.NewDefinition(params)
	if err != nil {
		writeDomainError(w, "Invalid wage table", err)
		return
	}
	if err := h.Store.SaveWageTable(r.Context(), p.ID, def); err != nil {
		writeDomainError(w, "Failed to save wage table", err)
		return
	}
	writeJSON(w, http.StatusOK, toWageTableDTO(p.ID, def, true))
}

// =============================================================================
// GRID ASSEMBLY
// =============================================================================

func (h *Handler) generatorFor(ctx context.Context, f *facility.Facility) (*wage.Generator, error) {
	provider, err := h.Store.GetProvider(ctx, f.ProviderID)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, generic.NotFound("provider", string(f.ProviderID))
	}
	return wage.NewGenerator(provider.Address), nil
}

func (h *Handler) buildGrid(ctx context.Context, f *facility.Facility) (wage.Grid, *wage.Generator, error) {
	gen, err := h.generatorFor(ctx, f)
	if err != nil {
		return wage.Grid{}, nil, err
	}
	positions, err := h.Store.ListPositions(ctx, f.ID)
	if err != nil {
		return wage.Grid{}, nil, err
	}
	tables, err := h.Store.WageTablesByFacility(ctx, f.ID)
	if err != nil {
		return wage.Grid{}, nil, err
	}

	rows := make([]wage.GridRow, len(positions))
	for i, p := range positions {
		def, saved := tables[p.ID]
		if !saved {
			def = gen.Suggest(p.Level)
		}
		rows[i] = wage.GridRow{
			PositionID:   p.ID,
			PositionName: p.Name,
			JobCategory:  p.JobCategory.Name(),
			Level:        p.Level,
			Saved:        saved,
			Definition:   def,
		}
	}
	return wage.BuildGrid(rows), gen, nil
}
