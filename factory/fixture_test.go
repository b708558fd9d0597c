package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/carepath/career"
	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/subsidy"
)

func TestParseFixture_SampleNursingHome(t *testing.T) {
	// GIVEN: the bundled nursing home sample
	f := NewFixtureFactory()

	// WHEN: parsed
	fx, err := f.ParseFixture(SampleNursingHomeJSON())
	require.NoError(t, err)

	// THEN: every record is validated and linked
	assert.Equal(t, "社会福祉法人 さくら会", fx.Provider.Name)
	assert.NotEmpty(t, fx.Provider.ID)
	require.Len(t, fx.Facilities, 1)
	assert.Equal(t, fx.Provider.ID, fx.Facilities[0].ProviderID)
	assert.Len(t, fx.Positions, 9)
	assert.Len(t, fx.WageTables, 9, "every position has a wage table")
	assert.Len(t, fx.Staff, 15)
	assert.Len(t, fx.TrainingPlans, 4)
	assert.Len(t, fx.PromotionCriteria, 4)

	for _, p := range fx.Positions {
		assert.Equal(t, fx.Facilities[0].ID, p.FacilityID)
	}
}

func TestParseFixture_StaffSalaryFromStep(t *testing.T) {
	fx, err := NewFixtureFactory().ParseFixture(SampleNursingHomeJSON())
	require.NoError(t, err)

	byNumber := make(map[string]career.StaffMember)
	for _, s := range fx.Staff {
		byNumber[s.StaffNumber] = s
	}

	// 施設長 step 8: 450000 + 10000*7, plus 50000 position allowance
	director := byNumber["S001"]
	assert.Equal(t, generic.Yen(520000), director.CurrentBaseSalary)
	assert.Equal(t, generic.Yen(570000), director.CurrentTotalSalary)
	assert.True(t, director.Active)
	require.NotNil(t, director.CurrentPositionID)

	// 介護職員 step 1, no qualification
	newcomer := byNumber["S010"]
	assert.Equal(t, generic.Yen(180000), newcomer.CurrentBaseSalary)
	assert.Equal(t, career.EmploymentFullTime, newcomer.EmploymentStatus)

	assert.Equal(t, career.EmploymentPartTime, byNumber["S009"].EmploymentStatus)
}

func TestParseFixture_DefaultMaxSteps(t *testing.T) {
	fx, err := NewFixtureFactory().ParseFixture(SampleNursingHomeJSON())
	require.NoError(t, err)

	var care, director generic.PositionID
	for _, p := range fx.Positions {
		switch p.Name {
		case "介護職員":
			care = p.ID
		case "施設長":
			director = p.ID
		}
	}
	assert.Equal(t, 20, fx.WageTables[care].MaxSteps())
	assert.Equal(t, 15, fx.WageTables[director].MaxSteps())
}

func TestParseFixture_PromotionCriteriaResolved(t *testing.T) {
	fx, err := NewFixtureFactory().ParseFixture(SampleNursingHomeJSON())
	require.NoError(t, err)

	names := make(map[generic.PositionID]string)
	for _, p := range fx.Positions {
		names[p.ID] = p.Name
	}

	first := fx.PromotionCriteria[0]
	assert.Equal(t, "介護職員", names[first.FromPositionID])
	assert.Equal(t, "主任介護職員", names[first.ToPositionID])
	require.NotNil(t, first.RequiredEvaluationScore)
	assert.Equal(t, "3.5", first.RequiredEvaluationScore.String())
}

func TestParseFixture_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"malformed", `{"provider":`},
		{"missing provider name", `{"provider": {}}`},
		{"unknown position key", `{
			"provider": {"name": "p"},
			"facilities": [{"name": "f", "service_type": "home_care", "facility_number": "1",
				"staff": [{"staff_number": "1", "name": "a", "hire_date": "2020-01-01", "position": "ghost"}]}]}`},
		{"duplicate position key", `{
			"provider": {"name": "p"},
			"facilities": [{"name": "f", "service_type": "home_care", "facility_number": "1",
				"positions": [
					{"key": "a", "job_category": "care", "name": "x", "level": 1},
					{"key": "a", "job_category": "care", "name": "y", "level": 2}]}]}`},
		{"position without key", `{
			"provider": {"name": "p"},
			"facilities": [{"name": "f", "service_type": "home_care", "facility_number": "1",
				"positions": [{"job_category": "care", "name": "x", "level": 1}]}]}`},
		{"invalid service type", `{
			"provider": {"name": "p"},
			"facilities": [{"name": "f", "service_type": "spa", "facility_number": "1"}]}`},
		{"negative wage table", `{
			"provider": {"name": "p"},
			"facilities": [{"name": "f", "service_type": "home_care", "facility_number": "1",
				"positions": [{"key": "a", "job_category": "care", "name": "x", "level": 1,
					"wage_table": {"base_salary_start": -1}}]}]}`},
		{"duplicate facility key", `{
			"provider": {"name": "p"},
			"facilities": [
				{"key": "f", "name": "f1", "service_type": "home_care", "facility_number": "1"},
				{"key": "f", "name": "f2", "service_type": "home_care", "facility_number": "2"}]}`},
	}

	f := NewFixtureFactory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseFixture(tt.json)
			assert.Error(t, err)
		})
	}
}

func TestFixtureDraft(t *testing.T) {
	// GIVEN: the sample and a catalog indexed by item number
	fx, err := NewFixtureFactory().ParseFixture(SampleNursingHomeJSON())
	require.NoError(t, err)

	byItem := map[string]generic.InitiativeID{"1-1": "i11", "2-1": "i21", "3-1": "i31"}

	// WHEN: the plan is turned into a draft
	draft, err := fx.Draft(byItem)
	require.NoError(t, err)

	// THEN: IDs are resolved and the facility is targeted
	assert.Equal(t, fx.Provider.ID, draft.ProviderID)
	assert.Equal(t, []generic.InitiativeID{"i11", "i21", "i31"}, draft.InitiativeIDs)
	assert.Equal(t, []generic.FacilityID{fx.Facilities[0].ID}, draft.FacilityIDs)
	assert.Equal(t, subsidy.TierI, draft.TargetTier)
	assert.True(t, draft.Flags.I && draft.Flags.II && draft.Flags.III)
	assert.Equal(t, int64(7600000), draft.TotalServiceUnits)

	// AND: a missing catalog item is reported
	_, err = fx.Draft(map[string]generic.InitiativeID{"1-1": "i11"})
	assert.True(t, generic.IsNotFound(err))
}

func TestFixtureDraft_NoPlan(t *testing.T) {
	fx, err := NewFixtureFactory().ParseFixture(`{"provider": {"name": "p"}}`)
	require.NoError(t, err)

	_, err = fx.Draft(nil)
	assert.True(t, generic.IsNotFound(err))
}

func TestSampleDayService(t *testing.T) {
	fx, err := NewFixtureFactory().ParseFixture(SampleDayServiceJSON())
	require.NoError(t, err)

	assert.Empty(t, fx.WageTables)
	assert.Len(t, fx.Staff, 3)
	assert.Equal(t, generic.Yen(230000), fx.Staff[0].CurrentBaseSalary)
	require.NotNil(t, fx.Plan)
	assert.Equal(t, subsidy.TierIII, fx.Plan.TargetTier)
}
