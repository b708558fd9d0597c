package subsidy_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/store/memory"
	"github.com/warp/carepath/subsidy"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fixture struct {
	store   *memory.Memory
	service *subsidy.PlanService
	hook    *logtest.Hook
	byNum   map[string]generic.InitiativeID
	rec     *countingRecorder
}

type countingRecorder struct {
	tiers []subsidy.Tier
}

func (r *countingRecorder) RecordEvaluation(t subsidy.Tier, _ generic.Yen) {
	r.tiers = append(r.tiers, t)
}

var fixedNow = time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewMemory()
	store.AddProvider("prov-1", "fac-1", "fac-2")
	store.AddProvider("prov-2", "fac-9")

	byNum := make(map[string]generic.InitiativeID)
	for _, it := range store.AddInitiatives(subsidy.StandardInitiatives()...) {
		byNum[it.ItemNumber] = it.ID
	}

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	rec := &countingRecorder{}

	svc := subsidy.NewPlanService(store, logger).
		WithRecorder(rec).
		WithClock(func() time.Time { return fixedNow })

	return &fixture{store: store, service: svc, hook: hook, byNum: byNum, rec: rec}
}

func (f *fixture) ids(nums ...string) []generic.InitiativeID {
	out := make([]generic.InitiativeID, len(nums))
	for i, n := range nums {
		out[i] = f.byNum[n]
	}
	return out
}

// =============================================================================
// CREATE PLAN
// =============================================================================

func TestCreatePlan_TierI(t *testing.T) {
	// GIVEN: Requirements I-III and one initiative per category
	// WHEN: Creating the plan in one call
	// THEN: Tier I is determined, priced at 16.5%, and the plan is stored as draft
	f := newFixture(t)
	ctx := context.Background()

	plan, err := f.service.CreatePlan(ctx, subsidy.PlanDraft{
		ProviderID:        "prov-1",
		FiscalYear:        2025,
		FacilityIDs:       []generic.FacilityID{"fac-1"},
		TargetTier:        subsidy.TierI,
		Flags:             subsidy.CareerPathFlags{I: true, II: true, III: true},
		InitiativeIDs:     f.ids("1-1", "2-3", "3-4"),
		TotalServiceUnits: 1_000_000,
	})
	require.NoError(t, err)

	assert.Equal(t, subsidy.TierI, plan.DeterminedTier)
	assert.Equal(t, "16.5", plan.AdditionRate.String())
	assert.Equal(t, generic.Yen(1_650_000), plan.EstimatedAmount)
	assert.Equal(t, counts(1, 1, 1), plan.Counts)
	assert.Equal(t, subsidy.StatusDraft, plan.Status)
	assert.Equal(t, fixedNow, plan.CreatedAt)
	assert.True(t, plan.MeetsTarget())

	stored, err := f.store.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, plan.EstimatedAmount, stored.EstimatedAmount)

	assert.Equal(t, []subsidy.Tier{subsidy.TierI}, f.rec.tiers)
	entry := f.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "improvement plan created", entry.Message)
	assert.Equal(t, subsidy.TierI, entry.Data["determined_tier"])
}

func TestCreatePlan_TierIIWithoutRequirementIII(t *testing.T) {
	f := newFixture(t)

	plan, err := f.service.CreatePlan(context.Background(), subsidy.PlanDraft{
		ProviderID:        "prov-1",
		Flags:             subsidy.CareerPathFlags{I: true, II: true},
		InitiativeIDs:     f.ids("1-2", "2-1", "3-1"),
		TotalServiceUnits: 1_000_000,
	})
	require.NoError(t, err)

	assert.Equal(t, subsidy.TierII, plan.DeterminedTier)
	assert.Equal(t, "13.7", plan.AdditionRate.String())
	assert.False(t, plan.MeetsTarget(), "target defaults to tier I")
}

func TestCreatePlan_Defaults(t *testing.T) {
	f := newFixture(t)

	plan, err := f.service.CreatePlan(context.Background(), subsidy.PlanDraft{
		ProviderID: "prov-1",
		Flags:      subsidy.CareerPathFlags{I: true},
		Allocation: subsidy.Allocation{BaseSalaryIncrease: 300000, AllowanceIncrease: 100000, BonusIncrease: 50000},
	})
	require.NoError(t, err)

	assert.Equal(t, subsidy.DefaultFiscalYear, plan.FiscalYear)
	assert.Equal(t, subsidy.TierI, plan.TargetTier)
	assert.Equal(t, subsidy.TierIV, plan.DeterminedTier)
	assert.Equal(t, "3.3", plan.AdditionRate.String())
	assert.Equal(t, generic.Yen(0), plan.EstimatedAmount)
	assert.Equal(t, generic.Yen(450000), plan.Allocation.TotalSalaryIncrease)
}

func TestCreatePlan_NoTierFallsBackToTargetRate(t *testing.T) {
	// GIVEN: No career-path requirement met
	// WHEN: Creating a plan that targets tier III
	// THEN: No tier is determined but the estimate uses the target's rate
	f := newFixture(t)

	plan, err := f.service.CreatePlan(context.Background(), subsidy.PlanDraft{
		ProviderID:        "prov-1",
		TargetTier:        subsidy.TierIII,
		TotalServiceUnits: 100_000,
	})
	require.NoError(t, err)

	assert.Equal(t, subsidy.TierNone, plan.DeterminedTier)
	assert.Equal(t, subsidy.TierIII, plan.RateTier())
	assert.Equal(t, generic.Yen(59_000), plan.EstimatedAmount)
}

func TestCreatePlan_DuplicateInitiativesCountOnce(t *testing.T) {
	f := newFixture(t)

	plan, err := f.service.CreatePlan(context.Background(), subsidy.PlanDraft{
		ProviderID:    "prov-1",
		Flags:         subsidy.CareerPathFlags{I: true, II: true, III: true},
		InitiativeIDs: f.ids("1-1", "1-1", "2-1"),
	})
	require.NoError(t, err)

	assert.Len(t, plan.InitiativeIDs, 2)
	assert.Equal(t, counts(1, 1, 0), plan.Counts)
	assert.Equal(t, subsidy.TierIII, plan.DeterminedTier)
}

func TestCreatePlan_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		draft subsidy.PlanDraft
		is    error
	}{
		{"missing provider id", subsidy.PlanDraft{}, generic.ErrInvalidInput},
		{"unknown provider", subsidy.PlanDraft{ProviderID: "nope"}, generic.ErrNotFound},
		{"facility of another provider", subsidy.PlanDraft{ProviderID: "prov-1", FacilityIDs: []generic.FacilityID{"fac-9"}}, generic.ErrInvalidInput},
		{"unknown initiative", subsidy.PlanDraft{ProviderID: "prov-1", InitiativeIDs: []generic.InitiativeID{"ghost"}}, generic.ErrNotFound},
		{"negative units", subsidy.PlanDraft{ProviderID: "prov-1", TotalServiceUnits: -1}, generic.ErrInvalidInput},
		{"bad target tier", subsidy.PlanDraft{ProviderID: "prov-1", TargetTier: "V"}, generic.ErrInvalidInput},
		{"negative allocation", subsidy.PlanDraft{ProviderID: "prov-1", Allocation: subsidy.Allocation{BonusIncrease: -5}}, generic.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreatePlan(ctx, tt.draft)
			assert.ErrorIs(t, err, tt.is)
		})
	}
	assert.Empty(t, f.rec.tiers, "rejected drafts are not evaluated")
}

// =============================================================================
// UPDATE, RE-EVALUATE, TRANSITIONS
// =============================================================================

func TestUpdatePlan_ReevaluatesEditablePlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	plan, err := f.service.CreatePlan(ctx, subsidy.PlanDraft{
		ProviderID: "prov-1",
		Flags:      subsidy.CareerPathFlags{I: true, II: true},
	})
	require.NoError(t, err)
	require.Equal(t, subsidy.TierIII, plan.DeterminedTier)

	updated, err := f.service.UpdatePlan(ctx, plan.ID, subsidy.PlanDraft{
		ProviderID:        "prov-1",
		Flags:             subsidy.CareerPathFlags{I: true, II: true, III: true},
		InitiativeIDs:     f.ids("1-3", "2-5", "3-2"),
		TotalServiceUnits: 200_000,
	})
	require.NoError(t, err)
	assert.Equal(t, plan.ID, updated.ID)
	assert.Equal(t, subsidy.TierI, updated.DeterminedTier)
	assert.Equal(t, generic.Yen(330_000), updated.EstimatedAmount)
	assert.Equal(t, plan.CreatedAt, updated.CreatedAt)
}

func TestUpdatePlan_SubmittedPlanIsLocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	plan, err := f.service.CreatePlan(ctx, subsidy.PlanDraft{ProviderID: "prov-1"})
	require.NoError(t, err)
	_, err = f.service.Transition(ctx, plan.ID, subsidy.StatusSubmitted)
	require.NoError(t, err)

	_, err = f.service.UpdatePlan(ctx, plan.ID, subsidy.PlanDraft{ProviderID: "prov-1"})
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
}

func TestReevaluate_UnknownPlan(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Reevaluate(context.Background(), "missing")
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestTransition_Workflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	plan, err := f.service.CreatePlan(ctx, subsidy.PlanDraft{ProviderID: "prov-1"})
	require.NoError(t, err)

	// draft -> approved is not allowed
	_, err = f.service.Transition(ctx, plan.ID, subsidy.StatusApproved)
	var terr *generic.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "draft", terr.From)

	submitted, err := f.service.Transition(ctx, plan.ID, subsidy.StatusSubmitted)
	require.NoError(t, err)
	require.NotNil(t, submitted.SubmittedAt)
	assert.Equal(t, fixedNow, *submitted.SubmittedAt)

	rejected, err := f.service.Transition(ctx, plan.ID, subsidy.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, subsidy.StatusRejected, rejected.Status)

	back, err := f.service.Transition(ctx, plan.ID, subsidy.StatusDraft)
	require.NoError(t, err)
	assert.Nil(t, back.SubmittedAt)

	_, err = f.service.Transition(ctx, plan.ID, subsidy.StatusSubmitted)
	require.NoError(t, err)
	approved, err := f.service.Transition(ctx, plan.ID, subsidy.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, subsidy.StatusApproved, approved.Status)

	_, err = f.service.Transition(ctx, plan.ID, subsidy.StatusDraft)
	assert.ErrorIs(t, err, generic.ErrInvalidTransition)
}
