// Package export writes the grid to other file formats.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kobzarvs/tabedit/internal/grid"
	"github.com/kobzarvs/tabedit/internal/logger"
)

// Sheet is the name of the worksheet XLSX writes.
const Sheet = "Sheet1"

// XLSX writes the header line and every body row of g to a new workbook at
// path. Cells are written as strings.
func XLSX(g grid.DataModel, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	cols := g.ColumnCount(grid.Body)
	row := make([]any, cols)
	for c := range cols {
		row[c] = g.Data(grid.ColumnHeader, 0, c)
	}
	if err := f.SetSheetRow(Sheet, "A1", &row); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if cols > 0 {
		if err := f.SetPanes(Sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return fmt.Errorf("freeze header: %w", err)
		}
	}

	rows := g.RowCount(grid.Body)
	for r := range rows {
		for c := range cols {
			row[c] = g.Data(grid.Body, r, c)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(Sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	logger.Info("export: xlsx written", "path", path, "rows", rows, "columns", cols)
	return nil
}
