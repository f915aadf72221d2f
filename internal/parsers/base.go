// Package parsers turns spreadsheet CSV exports into validated typed records.
//
// Each parser is configured with column names plus an alias table so the same
// parser handles exports whose headers drift between report versions. Rows
// that fail validation are dropped and reported; a bad row never aborts the
// file.
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "golang-mca-analytics/pkg/errors"
)

// rawRow is one data row with its original line number for error reporting
type rawRow struct {
	line   int
	fields []string
}

// columnMap resolves configured column names to field indexes in a header row
type columnMap map[string]int

// get returns the value of a named column in a row, "" when absent
func (cm columnMap) get(row rawRow, column string) string {
	idx, ok := cm[strings.ToLower(strings.TrimSpace(column))]
	if !ok || idx >= len(row.fields) {
		return ""
	}
	return strings.TrimSpace(row.fields[idx])
}

// readCSV reads all rows from a CSV stream. When hasHeader is true the first
// row builds the column map with aliases applied; otherwise columns are
// resolved positionally against the configured order.
func readCSV(r io.Reader, delimiter rune, hasHeader bool, aliases map[string]string, positional []string) (columnMap, []rawRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	cm := make(columnMap)
	var rows []rawRow
	line := 0

	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		line++

		if line == 1 && hasHeader {
			for i, header := range fields {
				name := strings.ToLower(strings.TrimSpace(header))
				if canonical, ok := aliases[name]; ok {
					name = strings.ToLower(canonical)
				}
				cm[name] = i
			}
			continue
		}

		rows = append(rows, rawRow{line: line, fields: fields})
	}

	if !hasHeader {
		for i, column := range positional {
			cm[strings.ToLower(column)] = i
		}
	}

	return cm, rows, nil
}

// requireColumns verifies every required column resolved to an index
func requireColumns(cm columnMap, file string, required []string) *apperrors.RowError {
	var actual []string
	for name := range cm {
		actual = append(actual, name)
	}

	var missing []string
	for _, column := range required {
		if _, ok := cm[strings.ToLower(strings.TrimSpace(column))]; !ok {
			missing = append(missing, column)
		}
	}

	if len(missing) > 0 {
		return apperrors.MissingColumnError(file, required, actual)
	}
	return nil
}

// openFile opens a path for parsing, wrapping failures in file errors
func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.FileError(apperrors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, apperrors.FileError(apperrors.CodeFilePermission, path, err)
		}
		return nil, apperrors.FileError(apperrors.CodeFileCorrupted, path, err)
	}
	return f, nil
}
