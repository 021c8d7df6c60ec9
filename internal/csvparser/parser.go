// =============================================================================
// EUCS to OSCAL Converter - CSV Parser Module
// =============================================================================
//
// This module reads a CSV export of the controls sheet. It produces the same
// rows as the XLSX parser so the rest of the pipeline does not care which
// format the user supplied.
//
// FEATURES:
//   - Configurable delimiter (comma by default, semicolon for many EU locales)
//   - UTF-8 byte order mark stripped from the first header cell
//   - Ragged rows tolerated (spreadsheet exports drop trailing empty cells)
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/hierarchy"
)

// Settings controls CSV parsing.
type Settings struct {
	// Delimiter separates fields. Default: ','
	Delimiter rune
}

// DefaultSettings returns comma-separated settings.
func DefaultSettings() Settings {
	return Settings{Delimiter: ','}
}

// CSVData represents the parsed CSV file.
type CSVData struct {
	// SourceFile is the path to the source CSV file.
	SourceFile string

	// Headers are the trimmed header cells of the first line.
	Headers []string

	// Rows are the non-empty data rows. Positions are 1-based line records,
	// the header being record 1.
	Rows []hierarchy.Row
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed data.
func Parse(filePath string, settings Settings) (*CSVData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	data, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	data.SourceFile = filePath
	return data, nil
}

// ParseReader reads CSV records from r.
func ParseReader(r io.Reader, settings Settings) (*CSVData, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	if settings.Delimiter != 0 {
		reader.Comma = settings.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		headers[i] = strings.TrimSpace(h)
	}

	return &CSVData{
		Headers: headers,
		Rows:    hierarchy.RowsFromTable(headers, records[1:], 2),
	}, nil
}
