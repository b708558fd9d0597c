package subsidy_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/subsidy"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func flags(met ...subsidy.Requirement) subsidy.CareerPathFlags {
	f, err := subsidy.NewCareerPathFlags(met...)
	if err != nil {
		panic(err)
	}
	return f
}

func counts(q, w, b int) subsidy.InitiativeCounts {
	return subsidy.InitiativeCounts{Qualification: q, WorkStyle: w, Balance: b}
}

func rate(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// =============================================================================
// TIER DETERMINATION
// =============================================================================

func TestDetermineEligibleTier(t *testing.T) {
	I, II, III, IV, V := subsidy.RequirementI, subsidy.RequirementII, subsidy.RequirementIII, subsidy.RequirementIV, subsidy.RequirementV

	tests := []struct {
		name   string
		flags  subsidy.CareerPathFlags
		counts subsidy.InitiativeCounts
		want   subsidy.Tier
	}{
		{"I+II+III with every category", flags(I, II, III), counts(1, 1, 1), subsidy.TierI},
		{"all five with many initiatives", flags(I, II, III, IV, V), counts(4, 6, 4), subsidy.TierI},
		{"I+II with every category", flags(I, II), counts(1, 1, 1), subsidy.TierII},
		{"I+II+III missing balance", flags(I, II, III), counts(1, 1, 0), subsidy.TierIII},
		{"I+II no initiatives", flags(I, II), counts(0, 0, 0), subsidy.TierIII},
		{"I only", flags(I), counts(0, 0, 0), subsidy.TierIV},
		{"II only with every category", flags(II), counts(1, 1, 1), subsidy.TierIV},
		{"III without I or II", flags(III, IV, V), counts(3, 3, 3), subsidy.TierNone},
		{"nothing", flags(), counts(0, 0, 0), subsidy.TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, subsidy.DetermineEligibleTier(tt.flags, tt.counts))
		})
	}
}

func TestDetermineEligibleTier_Monotonic(t *testing.T) {
	// GIVEN: Every flag combination and counts in 0..2 per category
	// WHEN: Improving any single input (set a flag, add an initiative)
	// THEN: The tier never gets worse
	type pair struct {
		f subsidy.CareerPathFlags
		c subsidy.InitiativeCounts
	}
	improve := func(f subsidy.CareerPathFlags, c subsidy.InitiativeCounts) []pair {
		var out []pair
		for _, set := range []func(*subsidy.CareerPathFlags){
			func(x *subsidy.CareerPathFlags) { x.I = true },
			func(x *subsidy.CareerPathFlags) { x.II = true },
			func(x *subsidy.CareerPathFlags) { x.III = true },
			func(x *subsidy.CareerPathFlags) { x.IV = true },
			func(x *subsidy.CareerPathFlags) { x.V = true },
		} {
			nf := f
			set(&nf)
			out = append(out, pair{nf, c})
		}
		out = append(out,
			pair{f, counts(c.Qualification+1, c.WorkStyle, c.Balance)},
			pair{f, counts(c.Qualification, c.WorkStyle+1, c.Balance)},
			pair{f, counts(c.Qualification, c.WorkStyle, c.Balance+1)},
		)
		return out
	}

	for mask := 0; mask < 32; mask++ {
		f := subsidy.CareerPathFlags{
			I: mask&1 != 0, II: mask&2 != 0, III: mask&4 != 0, IV: mask&8 != 0, V: mask&16 != 0,
		}
		for q := 0; q <= 2; q++ {
			for w := 0; w <= 2; w++ {
				for b := 0; b <= 2; b++ {
					c := counts(q, w, b)
					base := subsidy.DetermineEligibleTier(f, c)
					for _, next := range improve(f, c) {
						got := subsidy.DetermineEligibleTier(next.f, next.c)
						assert.True(t, got.AtLeast(base),
							"flags %+v counts %+v: %q -> %q", next.f, next.c, base, got)
					}
				}
			}
		}
	}
}

func TestAssess_ListsEveryInput(t *testing.T) {
	a := subsidy.Assess(flags(subsidy.RequirementI, subsidy.RequirementII), counts(2, 0, 1))

	assert.Equal(t, subsidy.TierIII, a.Tier)
	require.Len(t, a.Requirements, 5)
	assert.True(t, a.Requirements[0].Met)
	assert.True(t, a.Requirements[1].Met)
	assert.False(t, a.Requirements[2].Met)
	assert.Contains(t, a.Requirements[4].Name, "介護福祉士")

	require.Len(t, a.Categories, 3)
	assert.Equal(t, subsidy.CategoryQualification, a.Categories[0].Category)
	assert.Equal(t, 2, a.Categories[0].Count)
	assert.True(t, a.Categories[0].Met)
	assert.False(t, a.Categories[1].Met)
	assert.Equal(t, 1, a.Categories[1].Required)
}

// =============================================================================
// RATES AND AMOUNTS
// =============================================================================

func TestRateFor(t *testing.T) {
	assert.True(t, rate("16.5").Equal(subsidy.RateFor(subsidy.TierI)))
	assert.True(t, rate("13.7").Equal(subsidy.RateFor(subsidy.TierII)))
	assert.True(t, rate("5.9").Equal(subsidy.RateFor(subsidy.TierIII)))
	assert.True(t, rate("3.3").Equal(subsidy.RateFor(subsidy.TierIV)))
	assert.True(t, subsidy.RateFor(subsidy.TierNone).IsZero())
	assert.True(t, subsidy.RateFor(subsidy.Tier("V")).IsZero())
}

func TestEstimateAnnualAmount(t *testing.T) {
	tests := []struct {
		name  string
		tier  subsidy.Tier
		units int64
		want  generic.Yen
	}{
		{"tier I one million units", subsidy.TierI, 1_000_000, 1_650_000},
		{"tier II", subsidy.TierII, 1_000_000, 1_370_000},
		{"tier III", subsidy.TierIII, 250_000, 147_500},
		{"tier IV floors fractions", subsidy.TierIV, 12_345, 4_073}, // 4073.85
		{"tier IV tiny", subsidy.TierIV, 1, 0},                      // 0.33
		{"zero units", subsidy.TierI, 0, 0},
		{"no tier", subsidy.TierNone, 1_000_000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := subsidy.EstimateAnnualAmount(tt.tier, tt.units)
			assert.Equal(t, tt.want, est.Amount)
			assert.Equal(t, tt.tier, est.Tier)
		})
	}
}

func TestEstimateAnnualAmount_ExactDecimal(t *testing.T) {
	// 10 units at 5.9% is 5.9; 3 units at 16.5% is 4.95.
	assert.Equal(t, generic.Yen(5), subsidy.EstimateAnnualAmount(subsidy.TierIII, 10).Amount)
	assert.Equal(t, generic.Yen(4), subsidy.EstimateAnnualAmount(subsidy.TierI, 3).Amount)
	assert.Equal(t, generic.Yen(33), subsidy.EstimateAnnualAmount(subsidy.TierIV, 100).Amount)
}

// =============================================================================
// PARSING AND CONSTRUCTION
// =============================================================================

func TestParseTier(t *testing.T) {
	for in, want := range map[string]subsidy.Tier{
		"I": subsidy.TierI, "ii": subsidy.TierII, " III ": subsidy.TierIII, "IV": subsidy.TierIV,
		"": subsidy.TierNone, "none": subsidy.TierNone,
	} {
		got, err := subsidy.ParseTier(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := subsidy.ParseTier("V")
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
}

func TestParseFlags(t *testing.T) {
	f, err := subsidy.ParseFlags("I, II,iii")
	require.NoError(t, err)
	assert.Equal(t, subsidy.CareerPathFlags{I: true, II: true, III: true}, f)

	empty, err := subsidy.ParseFlags("")
	require.NoError(t, err)
	assert.Equal(t, subsidy.CareerPathFlags{}, empty)

	_, err = subsidy.ParseFlags("I,VI")
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
}

func TestNewCareerPathFlags_UnknownRequirement(t *testing.T) {
	_, err := subsidy.NewCareerPathFlags(subsidy.Requirement(9))
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
}

func TestNewInitiativeCounts_RejectsNegative(t *testing.T) {
	_, err := subsidy.NewInitiativeCounts(1, -1, 0)
	var verr *generic.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "work_style_count")

	c, err := subsidy.NewInitiativeCounts(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Of(subsidy.CategoryWorkStyle))
}

func TestTier_Ordering(t *testing.T) {
	assert.True(t, subsidy.TierI.AtLeast(subsidy.TierIV))
	assert.False(t, subsidy.TierIV.AtLeast(subsidy.TierIII))
	assert.True(t, subsidy.TierIV.AtLeast(subsidy.TierNone))
	assert.False(t, subsidy.TierNone.AtLeast(subsidy.TierIV))
	assert.Equal(t, "処遇改善加算II", subsidy.TierII.Label())
	assert.Equal(t, "該当なし", subsidy.TierNone.Label())
}

// =============================================================================
// INITIATIVE CATALOG
// =============================================================================

func TestStandardInitiatives_Catalog(t *testing.T) {
	items := subsidy.StandardInitiatives()
	require.Len(t, items, 14)

	c := subsidy.CountInitiatives(items)
	assert.Equal(t, counts(4, 6, 4), c)

	for _, it := range items {
		assert.NoError(t, generic.ValidateStruct(it), it.ItemNumber)
	}
}

func TestCountInitiatives_DuplicateIDsCountOnce(t *testing.T) {
	q := subsidy.WorkplaceInitiative{ID: "q1", Category: subsidy.CategoryQualification}
	w := subsidy.WorkplaceInitiative{ID: "w1", Category: subsidy.CategoryWorkStyle}

	c := subsidy.CountInitiatives([]subsidy.WorkplaceInitiative{q, q, w})
	assert.Equal(t, counts(1, 1, 0), c)
}
