/*
Package wage implements step-based (号級) wage tables.

PURPOSE:
  A position's wage table is a linear ladder: step 1 pays the starting
  salary and every further step adds a fixed raise, up to a cap. Allowances
  are paid on top and do not depend on the step.

FORMULA:
  salary(step) = StartSalary + StepRaiseAmount * (min(step, MaxSteps) - 1)

  Steps past the cap are clamped down to MaxSteps, never rejected.
  Steps below 1 are outside the domain; callers validate them.

EXAMPLE:
  def, _ := wage.NewDefinition(wage.Params{
      StartSalary: 180000, StepRaiseAmount: 3000, MaxSteps: 20,
  })
  def.SalaryForStep(1)  // 180000
  def.SalaryForStep(10) // 207000
  def.SalaryForStep(25) // 237000 (clamped to step 20)

SEE ALSO:
  - generator.go: Suggested tables from regional benchmarks
  - grid.go:      Facility-wide step grid
  - export.go:    Spreadsheet export
*/
package wage

import (
	"github.com/warp/carepath/generic"
)

// DefaultMaxSteps applies when a table is created without an explicit cap.
const DefaultMaxSteps = 20

// Params are the user-editable fields of a wage table.
type Params struct {
	StartSalary            generic.Yen `json:"base_salary_start" validate:"gte=0"`
	StepRaiseAmount        generic.Yen `json:"step_raise_amount" validate:"gte=0"`
	MaxSteps               int         `json:"max_steps" validate:"gte=1"`
	QualificationAllowance generic.Yen `json:"qualification_allowance" validate:"gte=0"`
	PositionAllowance      generic.Yen `json:"position_allowance" validate:"gte=0"`
}

// Definition is a validated, immutable wage table.
type Definition struct {
	p Params
}

// NewDefinition validates p and freezes it.
func NewDefinition(p Params) (Definition, error) {
	if err := generic.ValidateStruct(p); err != nil {
		return Definition{}, err
	}
	return Definition{p: p}, nil
}

// MustDefinition panics on invalid params. For fixtures and tests.
func MustDefinition(p Params) Definition {
	d, err := NewDefinition(p)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Definition) Params() Params                      { return d.p }
func (d Definition) StartSalary() generic.Yen            { return d.p.StartSalary }
func (d Definition) StepRaiseAmount() generic.Yen        { return d.p.StepRaiseAmount }
func (d Definition) MaxSteps() int                       { return d.p.MaxSteps }
func (d Definition) QualificationAllowance() generic.Yen { return d.p.QualificationAllowance }
func (d Definition) PositionAllowance() generic.Yen      { return d.p.PositionAllowance }

// SalaryForStep returns the base salary for step, clamping to MaxSteps.
func (d Definition) SalaryForStep(step int) generic.Yen {
	if step > d.p.MaxSteps {
		step = d.p.MaxSteps
	}
	return d.p.StartSalary + d.p.StepRaiseAmount*generic.Yen(step-1)
}

// MaxSalary is the salary at the top step.
func (d Definition) MaxSalary() generic.Yen {
	return d.SalaryForStep(d.p.MaxSteps)
}

// Schedule lists the salary of every step; index 0 is step 1.
func (d Definition) Schedule() []generic.Yen {
	out := make([]generic.Yen, d.p.MaxSteps)
	for i := range out {
		out[i] = d.SalaryForStep(i + 1)
	}
	return out
}

// TotalForStep adds both allowances to the step salary.
func (d Definition) TotalForStep(step int) generic.Yen {
	return d.SalaryForStep(step) + d.p.QualificationAllowance + d.p.PositionAllowance
}
