package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/backmassage/resolve2edl/internal/edl"
)

// Sheet is the worksheet every workbook is written to.
const Sheet = "Sheet1"

// WriteXLSX writes clips to a single-sheet workbook at path with a bold
// header row. Null cells are left empty.
func WriteXLSX(path string, clips []edl.Clip, opts Options) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	header := make([]interface{}, 0, len(edl.Columns)+1)
	for _, h := range Header(opts) {
		header = append(header, h)
	}
	if err := f.SetSheetRow(Sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(Sheet, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, c := range clips {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := cells(c, opts)
		if err := f.SetSheetRow(Sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
