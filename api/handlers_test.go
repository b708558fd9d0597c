/*
handlers_test.go - HTTP tests for API handlers

Tests run the full router against an in-memory SQLite store:
- Provider and facility CRUD with error mapping
- Scenario loading and the resulting plan estimate
- Wage grid, suggestions and Excel export
- Promotion checks, stateless evaluation, plan workflow
- Career-path requirements I and III, evaluation/promotion/training history
- Prometheus exposition
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/carepath/career"
	"github.com/warp/carepath/facility"
	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/store/sqlite"
	"github.com/warp/carepath/subsidy"
	"github.com/warp/carepath/wage"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger, _ := logtest.NewNullLogger()
	h := NewHandler(store, logger, NewMetrics())
	return h, NewRouter(h, RouterOptions{MetricsPath: "/metrics"})
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func loadScenario(t *testing.T, router http.Handler, id string) ScenarioLoadedResponse {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[ScenarioLoadedResponse](t, rec)
}

func facilityOf(t *testing.T, router http.Handler, providerID string) facility.Facility {
	t.Helper()
	rec := do(t, router, http.MethodGet, "/api/providers/"+providerID+"/facilities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	facilities := decode[[]facility.Facility](t, rec)
	require.Len(t, facilities, 1)
	return facilities[0]
}

// =============================================================================
// PROVIDERS & FACILITIES
// =============================================================================

func TestProviderAndFacilityCRUD(t *testing.T) {
	_, router := newTestServer(t)

	// GIVEN: a provider created over the API
	rec := do(t, router, http.MethodPost, "/api/providers", facility.Provider{
		Name: "社会福祉法人 テスト会", Address: "大阪府大阪市北区1-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	provider := decode[facility.Provider](t, rec)
	require.NotEmpty(t, provider.ID)

	// WHEN: a facility is created for it
	rec = do(t, router, http.MethodPost, "/api/facilities", facility.Facility{
		ProviderID:     provider.ID,
		Name:           "グループホーム テスト",
		ServiceType:    facility.ServiceGroupHome,
		FacilityNumber: "2770000001",
		Capacity:       18,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[facility.Facility](t, rec)

	// THEN: both are retrievable
	rec = do(t, router, http.MethodGet, "/api/providers/"+string(provider.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/facilities/"+string(created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "グループホーム テスト", decode[facility.Facility](t, rec).Name)

	rec = do(t, router, http.MethodGet, "/api/facilities?provider_id="+string(provider.ID), nil)
	assert.Len(t, decode[[]facility.Facility](t, rec), 1)
}

func TestFacilityErrors(t *testing.T) {
	_, router := newTestServer(t)
	rec := do(t, router, http.MethodPost, "/api/providers", facility.Provider{Name: "p"})
	provider := decode[facility.Provider](t, rec)

	valid := facility.Facility{
		ProviderID: provider.ID, Name: "f", ServiceType: facility.ServiceHomeCare, FacilityNumber: "100",
	}
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/facilities", valid).Code)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"malformed body", `{"name":`, http.StatusBadRequest, ""},
		{"missing name", facility.Facility{ProviderID: provider.ID, ServiceType: facility.ServiceHomeCare, FacilityNumber: "101"},
			http.StatusBadRequest, "invalid_input"},
		{"unknown service type", facility.Facility{ProviderID: provider.ID, Name: "f", ServiceType: "spa", FacilityNumber: "102"},
			http.StatusBadRequest, "invalid_input"},
		{"unknown provider", facility.Facility{ProviderID: "ghost", Name: "f", ServiceType: facility.ServiceHomeCare, FacilityNumber: "103"},
			http.StatusNotFound, "not_found"},
		{"duplicate facility number", valid, http.StatusConflict, "conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/facilities", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Code)
		})
	}

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/facilities/ghost", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/providers/ghost/facilities", nil).Code)
}

func TestCreateStaff_PositionMustBelongToFacility(t *testing.T) {
	_, router := newTestServer(t)
	loaded := loadScenario(t, router, "nursing-home")
	f := facilityOf(t, router, string(loaded.ProviderID))

	ghost := "ghost-position"
	body := map[string]any{
		"staff_number": "X001", "name": "新人 太郎", "hire_date": "2025-04-01",
		"current_position_id": ghost,
	}
	rec := do(t, router, http.MethodPost, "/api/facilities/"+string(f.ID)+"/staff", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	delete(body, "current_position_id")
	rec = do(t, router, http.MethodPost, "/api/facilities/"+string(f.ID)+"/staff", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	staff := decode[StaffDTO](t, rec)
	assert.Equal(t, career.EmploymentFullTime, staff.EmploymentStatus)
	assert.True(t, staff.Active)
}

// =============================================================================
// SCENARIOS & PLANS
// =============================================================================

func TestLoadScenario_NursingHome(t *testing.T) {
	h, router := newTestServer(t)

	// WHEN: the nursing home sample is loaded
	loaded := loadScenario(t, router, "nursing-home")

	// THEN: every fixture record is stored
	assert.Equal(t, 1, loaded.Facilities)
	assert.Equal(t, 9, loaded.Positions)
	assert.Equal(t, 15, loaded.Staff)
	assert.Equal(t, 14, loaded.Initiatives)
	require.NotEmpty(t, loaded.PlanID)

	rec := do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "nursing-home", decode[ScenarioDTO](t, rec).ID)

	// AND: the plan reaches tier I on 7,600,000 units
	rec = do(t, router, http.MethodGet, "/api/plans/"+string(loaded.PlanID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	plan := decode[PlanDTO](t, rec)
	assert.Equal(t, subsidy.TierI, plan.DeterminedTier)
	assert.True(t, plan.MeetsTarget)
	assert.Equal(t, "16.5", plan.AdditionRate)
	assert.Equal(t, int64(12540000), plan.EstimatedAmount.Amount)
	assert.Equal(t, "¥12,540,000", plan.EstimatedAmount.Display)
	assert.Equal(t, int64(12540000), int64(plan.Allocation.TotalSalaryIncrease))
	assert.Equal(t, subsidy.StatusDraft, plan.Status)

	// AND: reloading replaces rather than duplicates
	loadScenario(t, router, "nursing-home")
	providers, err := h.Store.ListProviders(t.Context())
	require.NoError(t, err)
	assert.Len(t, providers, 1)
}

func TestLoadScenario_DayServiceFallsShortOfTarget(t *testing.T) {
	_, router := newTestServer(t)
	loaded := loadScenario(t, router, "day-service")

	rec := do(t, router, http.MethodGet, "/api/plans?provider_id="+string(loaded.ProviderID), nil)
	plans := decode[[]PlanDTO](t, rec)
	require.Len(t, plans, 1)

	// only requirement I is met: tier IV at 3.3%
	assert.Equal(t, subsidy.TierIV, plans[0].DeterminedTier)
	assert.False(t, plans[0].MeetsTarget)
	assert.Equal(t, int64(396000), plans[0].EstimatedAmount.Amount)
}

func TestLoadScenario_UnknownAndReset(t *testing.T) {
	_, router := newTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	loadScenario(t, router, "nursing-home")
	rec = do(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/providers", nil)
	assert.Empty(t, decode[[]facility.Provider](t, rec))

	rec = do(t, router, http.MethodGet, "/api/initiatives", nil)
	assert.Len(t, decode[[]subsidy.WorkplaceInitiative](t, rec), 14, "reset keeps the catalog")

	rec = do(t, router, http.MethodGet, "/api/initiatives?category=balance", nil)
	assert.Len(t, decode[[]subsidy.WorkplaceInitiative](t, rec), 4)

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestPlanWorkflow(t *testing.T) {
	_, router := newTestServer(t)
	loaded := loadScenario(t, router, "nursing-home")
	planPath := "/api/plans/" + string(loaded.PlanID)

	// GIVEN: a draft plan, WHEN: it is submitted
	rec := do(t, router, http.MethodPost, planPath+"/transition", TransitionRequest{Status: subsidy.StatusSubmitted})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	plan := decode[PlanDTO](t, rec)
	assert.Equal(t, subsidy.StatusSubmitted, plan.Status)
	assert.NotNil(t, plan.SubmittedAt)

	// THEN: it can no longer be edited or resubmitted
	rec = do(t, router, http.MethodPut, planPath, subsidy.PlanDraft{ProviderID: loaded.ProviderID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, planPath+"/transition", TransitionRequest{Status: subsidy.StatusSubmitted})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_transition", decode[ErrorResponse](t, rec).Code)

	// AND: rejection reopens it for editing
	do(t, router, http.MethodPost, planPath+"/transition", TransitionRequest{Status: subsidy.StatusRejected})
	rec = do(t, router, http.MethodPost, planPath+"/transition", TransitionRequest{Status: subsidy.StatusDraft})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPut, planPath, subsidy.PlanDraft{
		ProviderID:        loaded.ProviderID,
		Flags:             subsidy.CareerPathFlags{I: true, II: true},
		TotalServiceUnits: 1000000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	plan = decode[PlanDTO](t, rec)
	assert.Equal(t, subsidy.TierIII, plan.DeterminedTier)
	assert.Equal(t, int64(590000), plan.EstimatedAmount.Amount)

	rec = do(t, router, http.MethodPost, planPath+"/reevaluate", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreatePlan_Errors(t *testing.T) {
	_, router := newTestServer(t)
	loadScenario(t, router, "empty")

	rec := do(t, router, http.MethodPost, "/api/plans", subsidy.PlanDraft{ProviderID: "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/plans", subsidy.PlanDraft{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/plans/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/plans/ghost/reevaluate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvaluate(t *testing.T) {
	_, router := newTestServer(t)

	tests := []struct {
		name   string
		req    EvaluateRequest
		tier   subsidy.Tier
		rate   string
		amount int64
	}{
		{"tier I", EvaluateRequest{
			Flags:             subsidy.CareerPathFlags{I: true, II: true, III: true},
			Counts:            subsidy.InitiativeCounts{Qualification: 1, WorkStyle: 1, Balance: 1},
			TotalServiceUnits: 1000000,
		}, subsidy.TierI, "16.5", 1650000},
		{"tier II", EvaluateRequest{
			Flags:             subsidy.CareerPathFlags{I: true, II: true},
			Counts:            subsidy.InitiativeCounts{Qualification: 1, WorkStyle: 1, Balance: 1},
			TotalServiceUnits: 1000000,
		}, subsidy.TierII, "13.7", 1370000},
		{"tier IV", EvaluateRequest{
			Flags: subsidy.CareerPathFlags{I: true}, TotalServiceUnits: 1000000,
		}, subsidy.TierIV, "3.3", 330000},
		{"none", EvaluateRequest{TotalServiceUnits: 1000000}, subsidy.TierNone, "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/evaluate", tt.req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			resp := decode[EvaluateResponse](t, rec)
			assert.Equal(t, tt.tier, resp.Tier)
			assert.Equal(t, tt.rate, resp.Rate)
			assert.Equal(t, tt.amount, resp.Amount.Amount)
			assert.Len(t, resp.Requirements, 5)
			assert.Len(t, resp.Categories, 3)
		})
	}

	t.Run("negative count", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/evaluate", EvaluateRequest{
			Counts: subsidy.InitiativeCounts{Qualification: -1},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("counts and initiative ids together", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/evaluate", map[string]any{
			"counts":                   map[string]int{"qualification_count": 1},
			"workplace_initiative_ids": []string{"ghost"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "counts")
	})

	t.Run("unknown initiative", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/evaluate", map[string]any{
			"workplace_initiative_ids": []string{"ghost"},
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// =============================================================================
// CAREER
// =============================================================================

func TestCheckPromotion(t *testing.T) {
	_, router := newTestServer(t)
	loaded := loadScenario(t, router, "nursing-home")
	f := facilityOf(t, router, string(loaded.ProviderID))
	base := "/api/facilities/" + string(f.ID)

	rec := do(t, router, http.MethodGet, base+"/positions", nil)
	positions := decode[[]career.Position](t, rec)
	posByName := make(map[string]career.Position)
	for _, p := range positions {
		posByName[p.Name] = p
	}

	rec = do(t, router, http.MethodGet, base+"/staff?active=true", nil)
	staff := decode[[]StaffDTO](t, rec)
	require.Len(t, staff, 15)
	staffByNumber := make(map[string]StaffDTO)
	for _, s := range staff {
		staffByNumber[s.StaffNumber] = s
	}

	check := func(staffNumber, target string) PromotionCheckDTO {
		path := "/api/staff/" + string(staffByNumber[staffNumber].ID) +
			"/promotion-check?as_of=2025-04-01&target_position_id=" + string(posByName[target].ID)
		rec := do(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode[PromotionCheckDTO](t, rec)
	}

	// a first-year care worker misses every condition for 主任
	newcomer := check("S010", "主任介護職員")
	assert.False(t, newcomer.Eligible)
	assert.True(t, newcomer.HasCriteria)
	assert.Len(t, newcomer.Issues, 3)

	// 7 years, certified, score 3.9 >= 3.8
	senior := check("S005", "フロアリーダー")
	assert.True(t, senior.Eligible)
	assert.Empty(t, senior.Issues)

	rec = do(t, router, http.MethodGet, "/api/staff/"+string(staffByNumber["S005"].ID)+"/promotion-check", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequirementsAndTraining(t *testing.T) {
	_, router := newTestServer(t)
	loaded := loadScenario(t, router, "nursing-home")
	f := facilityOf(t, router, string(loaded.ProviderID))
	base := "/api/facilities/" + string(f.ID)

	rec := do(t, router, http.MethodGet, base+"/requirements", nil)
	req := decode[RequirementsDTO](t, rec)
	assert.True(t, req.PositionsDefined)
	assert.True(t, req.WageTablesComplete)
	assert.True(t, req.TrainingPlanned)
	assert.Equal(t, 4, req.TrainingPlans)
	assert.Equal(t, 0, req.RequirementOneCount)
	assert.False(t, req.HasSalarySystem)
	assert.False(t, req.SalarySystemDefined)

	rec = do(t, router, http.MethodPost, base+"/training-plans", map[string]any{
		"name": "感染症対策研修", "training_type": "ONLINE", "scheduled_date": "2026-05-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 2026, decode[career.TrainingPlan](t, rec).FiscalYear)

	rec = do(t, router, http.MethodGet, base+"/training-plans?fiscal_year=2025", nil)
	assert.Len(t, decode[[]career.TrainingPlan](t, rec), 4)

	rec = do(t, router, http.MethodGet, base+"/training-plans?fiscal_year=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequirementOne(t *testing.T) {
	_, router := newTestServer(t)
	loaded := loadScenario(t, router, "nursing-home")
	f := facilityOf(t, router, string(loaded.ProviderID))
	base := "/api/facilities/" + string(f.ID)

	// GIVEN: no requirement I records yet
	rec := do(t, router, http.MethodGet, base+"/requirement-one", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decode[[]RequirementOneDTO](t, rec)
	require.Len(t, list, 9)
	var chief RequirementOneDTO
	for _, r := range list {
		assert.False(t, r.Saved)
		if r.PositionName == "主任介護職員" {
			chief = r
		}
	}

	// THEN: the default pay band follows the wage table (20 steps of 4,000)
	assert.Equal(t, int64(220000), chief.SalaryMin.Amount)
	assert.Equal(t, int64(296000), chief.SalaryMax.Amount)
	assert.Equal(t, "介護福祉士", chief.RequiredQualifications)
	assert.Equal(t, career.DefaultRaiseRules, chief.RaiseRules)

	// WHEN: the record is saved
	path := "/api/positions/" + string(chief.PositionID) + "/requirement-one"
	rec = do(t, router, http.MethodPut, path, map[string]any{
		"required_qualifications": "介護福祉士", "required_experience_years": 3,
		"responsibilities": "ユニットの介護計画の管理", "base_salary_min": 220000, "base_salary_max": 296000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[RequirementOneDTO](t, rec).Saved)

	rec = do(t, router, http.MethodGet, path, nil)
	got := decode[RequirementOneDTO](t, rec)
	assert.True(t, got.Saved)
	assert.Equal(t, 3, got.RequiredExperienceYears)
	assert.Equal(t, "ユニットの介護計画の管理", got.Responsibilities)

	rec = do(t, router, http.MethodGet, base+"/requirements", nil)
	overview := decode[RequirementsDTO](t, rec)
	assert.Equal(t, 1, overview.RequirementOneCount)
	assert.False(t, overview.RequirementOneComplete)

	// an inverted pay band is rejected
	rec = do(t, router, http.MethodPut, path, map[string]any{"base_salary_min": 300000, "base_salary_max": 200000})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/positions/ghost/requirement-one", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequirementOne_DefaultWithoutWageTable(t *testing.T) {
	_, router := newTestServer(t)
	loaded := loadScenario(t, router, "day-service")
	f := facilityOf(t, router, string(loaded.ProviderID))

	rec := do(t, router, http.MethodGet, "/api/facilities/"+string(f.ID)+"/requirement-one", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decode[[]RequirementOneDTO](t, rec)
	require.NotEmpty(t, list)
	for _, r := range list {
		assert.Equal(t, int64(200000), r.SalaryMin.Amount)
		assert.Equal(t, int64(300000), r.SalaryMax.Amount)
	}
}

func TestSalaryIncreaseSystem(t *testing.T) {
	_, router := newTestServer(t)
	loaded := loadScenario(t, router, "nursing-home")
	f := facilityOf(t, router, string(loaded.ProviderID))
	path := "/api/facilities/" + string(f.ID) + "/salary-increase-system"

	// GIVEN: no policy yet, the defaults are served unsaved
	rec := do(t, router, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	def := decode[SalaryIncreaseSystemDTO](t, rec)
	assert.False(t, def.Saved)
	assert.Equal(t, career.TimingApril, def.IncreaseTiming)
	assert.Equal(t, "4月", def.TimingName)
	assert.Equal(t, int64(4000), def.MaxAnnualRaise.Amount)

	// WHEN: a twice-yearly policy is saved
	rec = do(t, router, http.MethodPut, path, map[string]any{
		"has_regular_increase": true, "increase_timing": "BOTH", "increase_amount_per_step": 2000,
		"max_steps_per_year": 3, "evaluation_affects_raise": true, "evaluation_criteria": "人事考課の総合評価",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: it is served back and the overview marks requirement III
	rec = do(t, router, http.MethodGet, path, nil)
	got := decode[SalaryIncreaseSystemDTO](t, rec)
	assert.True(t, got.Saved)
	assert.Equal(t, "4月・10月（年2回）", got.TimingName)
	assert.Equal(t, "¥6,000", got.MaxAnnualRaise.Display)
	assert.Equal(t, "人事考課の総合評価", got.EvaluationCriteria)

	rec = do(t, router, http.MethodGet, "/api/facilities/"+string(f.ID)+"/requirements", nil)
	overview := decode[RequirementsDTO](t, rec)
	assert.True(t, overview.HasSalarySystem)
	assert.True(t, overview.SalarySystemDefined)
	assert.Contains(t, rec.Body.String(), `"has_salary_system":true`)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"unknown timing", map[string]any{"increase_timing": "MAY", "max_steps_per_year": 4}},
		{"too many steps", map[string]any{"max_steps_per_year": 11}},
		{"zero steps", map[string]any{"max_steps_per_year": 0}},
		{"negative amount", map[string]any{"increase_amount_per_step": -1, "max_steps_per_year": 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPut, path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec = do(t, router, http.MethodGet, "/api/facilities/ghost/salary-increase-system", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvaluationAndPromotionHistory(t *testing.T) {
	_, router := newTestServer(t)
	loaded := loadScenario(t, router, "nursing-home")
	f := facilityOf(t, router, string(loaded.ProviderID))
	base := "/api/facilities/" + string(f.ID)

	positions := decode[[]career.Position](t, do(t, router, http.MethodGet, base+"/positions", nil))
	posByName := make(map[string]career.Position)
	for _, p := range positions {
		posByName[p.Name] = p
	}
	var s005 StaffDTO
	for _, s := range decode[[]StaffDTO](t, do(t, router, http.MethodGet, base+"/staff", nil)) {
		if s.StaffNumber == "S005" {
			s005 = s
		}
	}
	require.NotEmpty(t, s005.ID)
	staffPath := "/api/staff/" + string(s005.ID)

	// GIVEN: a new evaluation dated after the stored one
	rec := do(t, router, http.MethodPost, staffPath+"/evaluations", map[string]any{
		"evaluation_period": "2025年上期", "evaluation_date": "2025-09-30",
		"overall_score": "4.2", "evaluator_name": "鈴木 一郎",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// THEN: it becomes the latest score
	member := decode[StaffDTO](t, do(t, router, http.MethodGet, staffPath, nil))
	assert.Equal(t, "4.2", member.LatestEvaluationScore.String())
	assert.Equal(t, "2025-09-30", member.LatestEvaluationDate.String())

	// an older evaluation is kept in history only
	rec = do(t, router, http.MethodPost, staffPath+"/evaluations", map[string]any{
		"evaluation_period": "2024年下期", "evaluation_date": "2025-03-01",
		"overall_score": "3.0", "evaluator_name": "鈴木 一郎",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	member = decode[StaffDTO](t, do(t, router, http.MethodGet, staffPath, nil))
	assert.Equal(t, "4.2", member.LatestEvaluationScore.String())

	evals := decode[[]career.StaffEvaluation](t, do(t, router, http.MethodGet, staffPath+"/evaluations", nil))
	require.Len(t, evals, 2)
	assert.Equal(t, "2025年上期", evals[0].EvaluationPeriod)

	rec = do(t, router, http.MethodPost, staffPath+"/evaluations", map[string]any{
		"evaluation_period": "2025年下期", "evaluation_date": "2026-03-31", "overall_score": "5.5", "evaluator_name": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// WHEN: S005 is promoted to floor leader
	rec = do(t, router, http.MethodPost, staffPath+"/promotions", map[string]any{
		"to_position_id": posByName["フロアリーダー"].ID, "promotion_date": "2025-10-01",
		"salary_after": 270000, "approved_by": "山田 次郎", "reason": "昇格審査会で承認",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	promo := decode[PromotionRecordDTO](t, rec)

	// THEN: position and salary move; history keeps the previous values
	assert.Equal(t, "定期昇格", promo.TypeName)
	require.NotNil(t, promo.FromPositionID)
	assert.Equal(t, posByName["主任介護職員"].ID, *promo.FromPositionID)
	assert.Equal(t, int64(228000), int64(promo.SalaryBefore))
	assert.Equal(t, int64(270000), promo.Staff.BaseSalary.Amount)
	assert.Equal(t, int64(290000), promo.Staff.TotalSalary.Amount)

	member = decode[StaffDTO](t, do(t, router, http.MethodGet, staffPath, nil))
	require.NotNil(t, member.CurrentPositionID)
	assert.Equal(t, posByName["フロアリーダー"].ID, *member.CurrentPositionID)

	history := decode[[]career.PromotionRecord](t, do(t, router, http.MethodGet, staffPath+"/promotions", nil))
	require.Len(t, history, 1)
	assert.Equal(t, "2025-10-01", history[0].PromotionDate.String())

	// the target must belong to the same facility
	rec = do(t, router, http.MethodPost, staffPath+"/promotions", map[string]any{
		"to_position_id": "ghost", "promotion_date": "2025-10-01", "approved_by": "山田 次郎",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrainingRecords(t *testing.T) {
	_, router := newTestServer(t)
	loaded := loadScenario(t, router, "nursing-home")
	f := facilityOf(t, router, string(loaded.ProviderID))
	base := "/api/facilities/" + string(f.ID)

	plans := decode[[]career.TrainingPlan](t, do(t, router, http.MethodGet, base+"/training-plans?fiscal_year=2025", nil))
	require.NotEmpty(t, plans)
	staff := decode[[]StaffDTO](t, do(t, router, http.MethodGet, base+"/staff", nil))
	require.GreaterOrEqual(t, len(staff), 2)
	path := "/api/training-plans/" + string(plans[0].ID) + "/records"

	// GIVEN: a delivered session with a duplicated participant
	rec := do(t, router, http.MethodPost, path, map[string]any{
		"actual_date": "2025-04-07", "content": "施設のルールと基本介護技術",
		"participant_ids": []string{string(staff[0].ID), string(staff[1].ID), string(staff[0].ID)},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// THEN: it is listed once per participant
	records := decode[[]career.TrainingRecord](t, do(t, router, http.MethodGet, path, nil))
	require.Len(t, records, 1)
	assert.Equal(t, []generic.StaffID{staff[0].ID, staff[1].ID}, records[0].ParticipantIDs)
	assert.Equal(t, "2025-04-07", records[0].ActualDate.String())

	rec = do(t, router, http.MethodPost, path, map[string]any{
		"actual_date": "2025-04-07", "content": "x", "participant_ids": []string{"ghost"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, path, map[string]any{"content": "日付なし"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/training-plans/ghost/records", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// WAGE TABLES
// =============================================================================

func TestWageGridAndExport(t *testing.T) {
	_, router := newTestServer(t)
	loaded := loadScenario(t, router, "nursing-home")
	f := facilityOf(t, router, string(loaded.ProviderID))
	base := "/api/facilities/" + string(f.ID) + "/wage-tables"

	// GIVEN: every position has a saved table of at most 20 steps
	rec := do(t, router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	grid := decode[WageGridDTO](t, rec)

	// THEN: the grid still spans the minimum 30 steps
	assert.Equal(t, wage.MinGridSteps, grid.Steps)
	assert.Equal(t, "東京都", grid.Region)
	require.Len(t, grid.Lines, 9)
	for _, line := range grid.Lines {
		assert.True(t, line.Saved, line.PositionName)
	}

	// WHEN: exported
	rec = do(t, router, http.MethodGet, base+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "wage-tables-1371200001.xlsx")

	// THEN: the workbook opens and carries the facility title
	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()

	title, err := book.GetCellValue(wage.SheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "特別養護老人ホーム さくらの里 賃金テーブル", title)
}

func TestWageSuggestions_DayService(t *testing.T) {
	_, router := newTestServer(t)
	loaded := loadScenario(t, router, "day-service")
	f := facilityOf(t, router, string(loaded.ProviderID))
	base := "/api/facilities/" + string(f.ID)

	// GIVEN: no saved tables
	rec := do(t, router, http.MethodGet, base+"/wage-tables", nil)
	grid := decode[WageGridDTO](t, rec)
	require.Len(t, grid.Lines, 2)
	assert.False(t, grid.Lines[0].Saved)
	assert.Equal(t, "default", grid.Region, "神奈川県 has no benchmark")

	rec = do(t, router, http.MethodGet, base+"/wage-tables/suggestions", nil)
	suggestions := decode[[]WageTableDTO](t, rec)
	require.Len(t, suggestions, 2)
	// level 1 at the default benchmark: 270000 * 0.8
	assert.Equal(t, int64(216000), int64(suggestions[0].StartSalary))

	// WHEN: suggestions are saved twice
	rec = do(t, router, http.MethodPost, base+"/wage-tables/suggestions", nil)
	assert.Equal(t, 2, decode[SaveSuggestionsResponse](t, rec).Saved)
	rec = do(t, router, http.MethodPost, base+"/wage-tables/suggestions", nil)
	assert.Equal(t, 0, decode[SaveSuggestionsResponse](t, rec).Saved)

	// THEN: the requirement overview sees complete tables
	rec = do(t, router, http.MethodGet, base+"/requirements", nil)
	assert.True(t, decode[RequirementsDTO](t, rec).WageTablesComplete)
}

func TestPutWageTable(t *testing.T) {
	_, router := newTestServer(t)
	loaded := loadScenario(t, router, "day-service")
	f := facilityOf(t, router, string(loaded.ProviderID))

	rec := do(t, router, http.MethodGet, "/api/facilities/"+string(f.ID)+"/positions", nil)
	positions := decode[[]career.Position](t, rec)
	path := "/api/positions/" + string(positions[0].ID) + "/wage-table"

	rec = do(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPut, path, wage.Params{StartSalary: -1, MaxSteps: 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// max_steps omitted: the default cap applies
	rec = do(t, router, http.MethodPut, path, map[string]any{
		"base_salary_start": 180000, "step_raise_amount": 3000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	table := decode[WageTableDTO](t, rec)
	assert.Len(t, table.Schedule, wage.DefaultMaxSteps)
	assert.Equal(t, int64(207000), table.Schedule[9])
	assert.Equal(t, "¥237,000", table.MaxSalary.Display)

	rec = do(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[WageTableDTO](t, rec).Saved)
}

// =============================================================================
// METRICS
// =============================================================================

func TestMetricsEndpoint(t *testing.T) {
	_, router := newTestServer(t)
	loadScenario(t, router, "nursing-home")

	rec := do(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `carepath_subsidy_evaluations_total{tier="I"} 1`)
	assert.Contains(t, body, `carepath_subsidy_estimated_yen_total{tier="I"} 1.254e+07`)
	assert.Contains(t, body, `route="/api/scenarios/load"`)
}
