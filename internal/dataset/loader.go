package dataset

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Load reads a tabular file into a Table, dispatching on the file
// extension. CSV is the primary format; .xlsx is accepted for sources
// exported from spreadsheets.
func Load(path string, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		tbl *Table
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		tbl, err = loadCSV(path)
	case ".xlsx":
		tbl, err = loadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported table format %q (want .csv or .xlsx)", ext)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("loaded table",
		"path", path,
		"rows", tbl.Len(),
		"columns", len(tbl.Columns),
	)
	return tbl, nil
}

func loadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows surface as empty cells downstream

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV file: %s", path)
	}

	header := make([]string, len(records[0]))
	for i, c := range records[0] {
		header[i] = strings.TrimSpace(c)
	}
	return NewTable(header, records[1:]), nil
}

func loadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel file: %w", err)
	}
	defer f.Close()

	// Use the first sheet that has a header row plus data.
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) < 2 {
			continue
		}
		header := make([]string, len(rows[0]))
		for i, c := range rows[0] {
			header[i] = strings.TrimSpace(c)
		}
		return NewTable(header, rows[1:]), nil
	}
	return nil, fmt.Errorf("no sheet with tabular data in %s", path)
}
