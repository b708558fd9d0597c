package wage

import "github.com/warp/carepath/generic"

// MinGridSteps is the narrowest grid shown, even when every table is shorter.
const MinGridSteps = 30

// GridRow is one position in a facility's wage grid.
type GridRow struct {
	PositionID   generic.PositionID
	PositionName string
	JobCategory  string
	Level        int
	Saved        bool       // false: Definition is an unsaved suggestion
	Definition   Definition // saved table, or the generator's suggestion
}

// GridLine is a row with its salaries filled in up to the row's own cap.
type GridLine struct {
	GridRow
	Salaries []generic.Yen
}

// Grid lays out every position's ladder on a common step axis.
type Grid struct {
	Steps int
	Lines []GridLine
}

// BuildGrid sizes the step axis to max(MinGridSteps, longest table).
func BuildGrid(rows []GridRow) Grid {
	steps := MinGridSteps
	for _, r := range rows {
		if r.Definition.MaxSteps() > steps {
			steps = r.Definition.MaxSteps()
		}
	}

	lines := make([]GridLine, len(rows))
	for i, r := range rows {
		lines[i] = GridLine{GridRow: r, Salaries: r.Definition.Schedule()}
	}
	return Grid{Steps: steps, Lines: lines}
}
