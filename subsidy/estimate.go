package subsidy

import (
	"github.com/shopspring/decimal"
	"github.com/warp/carepath/generic"
)

// TierRates maps each tier to its addition rate in percent.
var TierRates = map[Tier]decimal.Decimal{
	TierI:   decimal.RequireFromString("16.5"),
	TierII:  decimal.RequireFromString("13.7"),
	TierIII: decimal.RequireFromString("5.9"),
	TierIV:  decimal.RequireFromString("3.3"),
}

// YenPerUnit approximates the yen value of one service unit.
// It is a placeholder, not the region-specific unit price used in billing.
var YenPerUnit = decimal.NewFromInt(10)

var hundred = decimal.NewFromInt(100)

// RateFor returns the tier's percentage rate, or zero for TierNone and unknown tiers.
func RateFor(t Tier) decimal.Decimal {
	if r, ok := TierRates[t]; ok {
		return r
	}
	return decimal.Zero
}

// Estimate is the outcome of EstimateAnnualAmount.
type Estimate struct {
	Tier   Tier            `json:"tier"`
	Rate   decimal.Decimal `json:"rate"`
	Amount generic.Yen     `json:"amount"`
}

// EstimateAnnualAmount computes floor(units * rate / 100 * YenPerUnit).
// The arithmetic is exact decimal; only the final floor discards precision.
func EstimateAnnualAmount(t Tier, totalServiceUnits int64) Estimate {
	rate := RateFor(t)
	amount := decimal.NewFromInt(totalServiceUnits).
		Mul(rate).
		Div(hundred).
		Mul(YenPerUnit).
		Floor()

	return Estimate{Tier: t, Rate: rate, Amount: generic.Yen(amount.IntPart())}
}
