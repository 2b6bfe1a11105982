package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/octobees/contact-extractor/api/internal/entity"
)

const sheetName = "Results"

var columnWidths = []float64{40, 40, 45, 45, 45, 35}

// SpreadsheetRenderer produces an xlsx workbook with a single results sheet.
// List values are newline separated inside wrapped cells.
type SpreadsheetRenderer struct{}

// Render implements Renderer.
func (SpreadsheetRenderer) Render(job entity.Job) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	stamp := job.CreatedAt.UTC().Format(time.RFC3339)
	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:        "contact-extractor",
		LastModifiedBy: "contact-extractor",
		Title:          "Contact extraction " + job.ID,
		Created:        stamp,
		Modified:       stamp,
	}); err != nil {
		return nil, fmt.Errorf("set doc props: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, fmt.Errorf("create body style: %w", err)
	}

	if err := setRow(f, 1, header); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", "F1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	data := rows(job, "\n")
	for i, row := range data {
		if err := setRow(f, i+2, row); err != nil {
			return nil, err
		}
	}
	if len(data) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(header), len(data)+1)
		if err := f.SetCellStyle(sheetName, "A2", last, bodyStyle); err != nil {
			return nil, fmt.Errorf("style body: %w", err)
		}
	}

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("resolve row %d: %w", row, err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
