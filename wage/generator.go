package wage

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/carepath/generic"
)

// =============================================================================
// REGIONAL BENCHMARKS
// =============================================================================

// Benchmark is the regional average monthly pay for care staff.
type Benchmark struct {
	Region       string
	CareStaffAvg generic.Yen
}

// DefaultBenchmark applies when the address matches no listed prefecture.
var DefaultBenchmark = Benchmark{Region: "default", CareStaffAvg: 270000}

// Benchmarks are matched in order against the provider address.
var Benchmarks = []Benchmark{
	{Region: "東京都", CareStaffAvg: 320000},
	{Region: "大阪府", CareStaffAvg: 290000},
}

// levelMultipliers tilt the starting salary by position level.
var levelMultipliers = map[int]decimal.Decimal{
	1: decimal.RequireFromString("0.8"),
	2: decimal.RequireFromString("0.95"),
	3: decimal.RequireFromString("1.1"),
	4: decimal.RequireFromString("1.25"),
	5: decimal.RequireFromString("1.4"),
}

const suggestedMaxSteps = 30

const (
	suggestedStepRaise             generic.Yen = 2000
	qualificationAllowancePerLevel generic.Yen = 5000
)

var positionAllowanceRate = decimal.RequireFromString("0.05")

// =============================================================================
// GENERATOR
// =============================================================================

// Generator proposes wage tables for a facility's positions.
type Generator struct {
	benchmark Benchmark
}

// NewGenerator picks the benchmark for the provider's address.
func NewGenerator(providerAddress string) *Generator {
	return &Generator{benchmark: BenchmarkFor(providerAddress)}
}

// BenchmarkFor finds the first benchmark whose region appears in address.
func BenchmarkFor(address string) Benchmark {
	for _, b := range Benchmarks {
		if strings.Contains(address, b.Region) {
			return b
		}
	}
	return DefaultBenchmark
}

func (g *Generator) Benchmark() Benchmark { return g.benchmark }

// Suggest builds a table for a position at the given level.
// Unlisted levels use a multiplier of 1.0.
func (g *Generator) Suggest(level int) Definition {
	mult, ok := levelMultipliers[level]
	if !ok {
		mult = decimal.NewFromInt(1)
	}

	start := decimal.NewFromInt(g.benchmark.CareStaffAvg.Int64()).Mul(mult).IntPart()

	var positionAllowance int64
	if level > 1 {
		positionAllowance = decimal.NewFromInt(start).
			Mul(positionAllowanceRate).
			Mul(decimal.NewFromInt(int64(level - 1))).
			IntPart()
	}

	qualification := qualificationAllowancePerLevel * generic.Yen(level)
	if qualification < 0 {
		qualification = 0
	}

	return MustDefinition(Params{
		StartSalary:            generic.Yen(start),
		StepRaiseAmount:        suggestedStepRaise,
		MaxSteps:               suggestedMaxSteps,
		QualificationAllowance: qualification,
		PositionAllowance:      generic.Yen(positionAllowance),
	})
}
