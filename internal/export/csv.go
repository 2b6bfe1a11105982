package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/octobees/contact-extractor/api/internal/entity"
)

// CSVRenderer writes one header line and one line per site.
type CSVRenderer struct{}

// Render implements Renderer.
func (CSVRenderer) Render(job entity.Job) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(rows(job, ", ")); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}
