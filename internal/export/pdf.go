package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/octobees/contact-extractor/api/internal/entity"
)

const (
	reportTitle = "Contact & Social Media Extraction Report"
	labelWidth  = 30.0
	lineHeight  = 6.0
)

// DocumentRenderer produces a PDF report with one block per site.
type DocumentRenderer struct{}

// Render implements Renderer.
func (DocumentRenderer) Render(job entity.Job) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(job.CreatedAt.UTC())
	pdf.SetModificationDate(job.CreatedAt.UTC())
	pdf.SetCatalogSort(true)
	pdf.SetTitle(reportTitle, true)
	pdf.SetCreator("contact-extractor", true)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 10, reportTitle, "", 1, "C", false, 0, "")
		pdf.Ln(5)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, lineHeight, tr("Job "+job.ID), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	for _, row := range rows(job, "\n") {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 8, tr(row[0]), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)

		for i, label := range header[1:] {
			value := row[i+1]
			if label == "Emails" {
				value = strings.ReplaceAll(value, "\n", ", ")
			}
			if value == "" {
				value = "None"
			}
			pdf.CellFormat(labelWidth, lineHeight, label+":", "", 0, "L", false, 0, "")
			pdf.MultiCell(0, lineHeight, tr(value), "", "L", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
