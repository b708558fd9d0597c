package wage

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the grid is written to.
const SheetName = "賃金テーブル"

const headerRow = 2

// ExportWorkbook writes grid as an .xlsx: a title in A1, a header on row 2,
// then one row per position with a column per step.
func ExportWorkbook(w io.Writer, title string, grid Grid) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	set := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(SheetName, cell, v)
	}

	if err := set(1, 1, title); err != nil {
		return err
	}

	header := []any{"職位", "職種", "レベル", "状態"}
	for i, h := range header {
		if err := set(i+1, headerRow, h); err != nil {
			return err
		}
	}
	fixed := len(header)
	for step := 1; step <= grid.Steps; step++ {
		if err := set(fixed+step, headerRow, fmt.Sprintf("%d号", step)); err != nil {
			return err
		}
	}

	for i, line := range grid.Lines {
		row := headerRow + 1 + i
		state := "提案"
		if line.Saved {
			state = "保存済"
		}
		for col, v := range []any{line.PositionName, line.JobCategory, line.Level, state} {
			if err := set(col+1, row, v); err != nil {
				return err
			}
		}
		for j, salary := range line.Salaries {
			if err := set(fixed+j+1, row, salary.Int64()); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
