package export

import (
	"fmt"

	"github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/storage/types"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook export.
const (
	SegmentSheet = "segments"
	RollupSheet  = "rollups"
)

// WriteWorkbook writes both summary levels to an XLSX workbook at path,
// one sheet each, with the same columns as the CSV exports.
func WriteWorkbook(path string, summaries []types.WindowSummary, rollups []types.RollupSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	segmentRows := make([][]any, len(summaries))
	for i, w := range summaries {
		segmentRows[i] = []any{
			w.Identity, w.AvgRespiratoryRate, w.MinHeartRate, w.MaxHeartRate,
			w.AvgHeartRate, w.StartTimestamp, w.EndTimestamp,
		}
	}

	rollupRows := make([][]any, len(rollups))
	for i, r := range rollups {
		rollupRows[i] = []any{
			r.Identity, r.StartTimestamp, r.AvgHeartRate, r.AvgRespiratoryRate,
			r.MinHeartRate, r.MaxHeartRate, r.EndTimestamp,
		}
	}

	// Sheet1 becomes the segments sheet.
	if err := f.SetSheetName("Sheet1", SegmentSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(RollupSheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", RollupSheet, err)
	}

	if err := writeSheet(f, SegmentSheet, SegmentHeader, segmentRows, headerStyle); err != nil {
		return err
	}
	if err := writeSheet(f, RollupSheet, RollupHeader, rollupRows, headerStyle); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return errors.NewIOFailure("save workbook", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any, headerStyle int) error {
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("set header cell %s: %w", cell, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("set header style: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return fmt.Errorf("convert column number: %w", err)
	}
	return f.SetColWidth(sheet, "A", lastCol, 14)
}
