package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var columnWidths = map[string]float64{
	"A": 20,
	"B": 15,
	"C": 20,
	"D": 30,
	"E": 15,
	"F": 18,
}

// WriteXLSX renders the report as a single-sheet workbook.
func WriteXLSX(w io.Writer, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("remove default sheet: %w", err)
	}

	for i, row := range r.Rows() {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	for _, cell := range []string{"A1", "A2", "A8", "A14"} {
		if err := f.SetCellStyle(SheetName, cell, cell, bold); err != nil {
			return err
		}
	}
	header := fmt.Sprintf("A%d", DetailHeaderRow)
	if err := f.SetCellStyle(SheetName, header, fmt.Sprintf("F%d", DetailHeaderRow), bold); err != nil {
		return err
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("set width of %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
