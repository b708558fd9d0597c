package subsidy

// RequiredPerCategory is the minimum number of initiatives per category for tiers I and II.
const RequiredPerCategory = 1

// DetermineEligibleTier returns the best tier the inputs satisfy.
// Rules are checked from tier I down; the first match wins.
func DetermineEligibleTier(flags CareerPathFlags, counts InitiativeCounts) Tier {
	covered := counts.AllCategoriesCovered()

	switch {
	case flags.I && flags.II && flags.III && covered:
		return TierI
	case flags.I && flags.II && covered:
		return TierII
	case flags.I && flags.II:
		return TierIII
	case flags.I || flags.II:
		return TierIV
	default:
		return TierNone
	}
}

// RequirementStatus is one row of the career-path checklist.
type RequirementStatus struct {
	Requirement Requirement `json:"requirement"`
	Name        string      `json:"name"`
	Met         bool        `json:"met"`
}

// CategoryStatus is one row of the workplace-initiative checklist.
type CategoryStatus struct {
	Category Category `json:"category"`
	Name     string   `json:"name"`
	Count    int      `json:"count"`
	Required int      `json:"required"`
	Met      bool     `json:"met"`
}

// Assessment explains a tier decision.
type Assessment struct {
	Requirements []RequirementStatus `json:"career_path_status"`
	Categories   []CategoryStatus    `json:"workplace_status"`
	Tier         Tier                `json:"eligible_tier"`
}

// Assess evaluates the tier and lists every input that went into it.
func Assess(flags CareerPathFlags, counts InitiativeCounts) Assessment {
	a := Assessment{Tier: DetermineEligibleTier(flags, counts)}

	for r := RequirementI; r <= RequirementV; r++ {
		a.Requirements = append(a.Requirements, RequirementStatus{
			Requirement: r,
			Name:        r.Name(),
			Met:         flags.Met(r),
		})
	}
	for _, c := range Categories {
		n := counts.Of(c)
		a.Categories = append(a.Categories, CategoryStatus{
			Category: c,
			Name:     c.Name(),
			Count:    n,
			Required: RequiredPerCategory,
			Met:      n >= RequiredPerCategory,
		})
	}
	return a
}
