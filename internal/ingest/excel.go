package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"churnctl/pkg/contracts/domain"
)

// ReadWorkbook reads raw records from an XLSX workbook. The sheet is
// located by its header row, since billing exports rename sheets freely.
func ReadWorkbook(path string) ([]domain.RawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, sheet, err := findRecordSheet(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	records, err := parseRows(sliceRows(rows))
	if err != nil {
		return nil, fmt.Errorf("parse %s sheet %q: %w", path, sheet, err)
	}

	slog.Info("ingested raw records from workbook",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("records", len(records)))
	return records, nil
}

// findRecordSheet returns the first sheet whose first row carries the
// customer record header.
func findRecordSheet(f *excelize.File) ([][]string, string, error) {
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		head := strings.ToLower(strings.Join(rows[0], " "))
		if strings.Contains(head, "customer_id") && strings.Contains(head, "tenure_months") {
			return rows, name, nil
		}
	}
	return nil, "", fmt.Errorf("no sheet with a customer record header")
}

func sliceRows(rows [][]string) func() ([]string, error) {
	i := 0
	return func() ([]string, error) {
		if i >= len(rows) {
			return nil, io.EOF
		}
		row := rows[i]
		i++
		return row, nil
	}
}
