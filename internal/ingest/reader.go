package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"churnctl/pkg/contracts/domain"
)

// ReadFile dispatches on the file extension.
func ReadFile(path string) ([]domain.RawRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".xlsx":
		return ReadWorkbook(path)
	default:
		return nil, fmt.Errorf("unsupported input format %q", filepath.Ext(path))
	}
}
