/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario is a factory fixture: one
	provider with its facilities, career ladders, wage tables, staff and
	training plans, plus an improvement plan created through PlanService.

AVAILABLE SCENARIOS:

	nursing-home:  特別養護老人ホーム with a complete career path, tier I plan
	day-service:   Small day service early on its career path, tier IV plan
	empty:         Catalog only, no provider data

HOW SCENARIOS WORK:
 1. Reset database (the initiative catalog survives)
 2. Make sure the standard initiative catalog is loaded
 3. Parse the fixture JSON via factory
 4. Save provider, facilities, positions, wage tables, staff, training
    plans and promotion criteria
 5. Create the fixture's plan through PlanService

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "nursing-home"}

USAGE VIA CLI:

	carepath seed sample

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - factory/samples.go: Fixture JSON definitions
  - cmd/carepath: seed command
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/warp/carepath/factory"
	"github.com/warp/carepath/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "nursing-home",
		Name:        "特別養護老人ホーム さくらの里",
		Description: "9 positions with wage tables, 15 staff, training plans; plan meets tier I",
		Category:    "complete",
	},
	{
		ID:          "day-service",
		Name:        "デイサービス ひまわり",
		Description: "2 positions without wage tables, 3 staff; plan targets III but reaches IV",
		Category:    "partial",
	},
	{
		ID:          "empty",
		Name:        "Empty",
		Description: "Initiative catalog only",
		Category:    "empty",
	},
}

var scenarioFixtures = map[string]func() string{
	"nursing-home": factory.SampleNursingHomeJSON,
	"day-service":  factory.SampleDayServiceJSON,
}

// ErrUnknownScenario is returned by ApplyScenario for an unlisted ID.
var ErrUnknownScenario = errors.New("unknown scenario")

// Scenarios lists the loadable scenarios.
func Scenarios() []ScenarioDTO {
	return scenarios
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.ApplyScenario(r.Context(), req.ScenarioID)
	if errors.Is(err, ErrUnknownScenario) {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ResetDatabase clears all data except the initiative catalog.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	h.log.Info("database reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// ApplyScenario resets the database and loads the named scenario.
func (h *Handler) ApplyScenario(ctx context.Context, id string) (*ScenarioLoadedResponse, error) {
	load, known := scenarioFixtures[id]
	if !known && id != "empty" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, id)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset database: %w", err)
	}
	h.currentScenario = ""

	added, err := h.Store.LoadStandardInitiatives(ctx)
	if err != nil {
		return nil, fmt.Errorf("load initiatives: %w", err)
	}
	resp := &ScenarioLoadedResponse{ScenarioID: id, Initiatives: added}

	if known {
		fx, err := h.Fixtures.ParseFixture(load())
		if err != nil {
			return nil, err
		}
		if err := h.SeedFixture(ctx, fx); err != nil {
			return nil, err
		}
		resp.ProviderID = fx.Provider.ID
		resp.Facilities = len(fx.Facilities)
		resp.Positions = len(fx.Positions)
		resp.Staff = len(fx.Staff)

		if fx.Plan != nil {
			planID, err := h.createFixturePlan(ctx, fx)
			if err != nil {
				return nil, err
			}
			resp.PlanID = planID
		}
	}

	h.currentScenario = id
	h.log.WithField("scenario", id).WithField("provider_id", resp.ProviderID).Info("scenario loaded")
	return resp, nil
}

// =============================================================================
// FIXTURE PERSISTENCE
// =============================================================================

// SeedFixture saves every record of fx in dependency order.
func (h *Handler) SeedFixture(ctx context.Context, fx *factory.Fixture) error {
	if err := h.Store.SaveProvider(ctx, fx.Provider); err != nil {
		return fmt.Errorf("save provider: %w", err)
	}
	for _, f := range fx.Facilities {
		if err := h.Store.SaveFacility(ctx, f); err != nil {
			return fmt.Errorf("save facility %s: %w", f.Name, err)
		}
	}
	for _, p := range fx.Positions {
		if err := h.Store.SavePosition(ctx, p); err != nil {
			return fmt.Errorf("save position %s: %w", p.Name, err)
		}
		if def, ok := fx.WageTables[p.ID]; ok {
			if err := h.Store.SaveWageTable(ctx, p.ID, def); err != nil {
				return fmt.Errorf("save wage table for %s: %w", p.Name, err)
			}
		}
	}
	for _, s := range fx.Staff {
		if err := h.Store.SaveStaff(ctx, s); err != nil {
			return fmt.Errorf("save staff %s: %w", s.StaffNumber, err)
		}
	}
	for _, t := range fx.TrainingPlans {
		if err := h.Store.SaveTrainingPlan(ctx, t); err != nil {
			return fmt.Errorf("save training plan %s: %w", t.Name, err)
		}
	}
	for _, c := range fx.PromotionCriteria {
		if err := h.Store.SavePromotionCriteria(ctx, c); err != nil {
			return fmt.Errorf("save promotion criteria: %w", err)
		}
	}
	return nil
}

func (h *Handler) createFixturePlan(ctx context.Context, fx *factory.Fixture) (generic.PlanID, error) {
	catalog, err := h.Store.ListInitiatives(ctx, "")
	if err != nil {
		return "", err
	}
	byItem := make(map[string]generic.InitiativeID, len(catalog))
	for _, it := range catalog {
		byItem[it.ItemNumber] = it.ID
	}

	draft, err := fx.Draft(byItem)
	if err != nil {
		return "", err
	}
	plan, err := h.Plans.CreatePlan(ctx, draft)
	if err != nil {
		return "", fmt.Errorf("create plan: %w", err)
	}
	return plan.ID, nil
}
