// =============================================================================
// EUCS to OSCAL Converter - XLSX Workbook Parser
// =============================================================================
//
// This module reads the EUCS controls workbook and hands its rows to the
// hierarchy builder. The workbook usually contains several sheets (cover,
// glossary, controls, mapping tables); only the controls sheet is read.
//
// SHEET SELECTION:
//   The first sheet whose name contains the keyword (default "controls",
//   compared case-insensitively) is used. If no sheet matches, the first
//   sheet of the workbook is used and Sheet.Fallback is set.
//
// SHEET LAYOUT (Expected Columns, any order):
//
//   | EUCS Category | EUCS Control | EUCS Requirement | Title | Description | Basic | Substantial | High |
//   |---------------|--------------|------------------|-------|-------------|-------|-------------|------|
//   | OIS           |              |                  | Org.. |             |       |             |      |
//   | OIS           | OIS-01       |                  |       | Objective   |       |             |      |
//   | OIS           | OIS-01       | OIS-01.1B        |       | Requirement | x     | x           | x    |
//
//   Row 1 is the header. Positions reported downstream are sheet row numbers.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/hierarchy"
)

// DefaultSheetKeyword selects the controls sheet of the EUCS workbook.
const DefaultSheetKeyword = "controls"

// Sheet is the parsed content of the controls sheet.
type Sheet struct {
	// SourceFile is the path of the workbook, empty when read from a stream.
	SourceFile string

	// Name is the selected worksheet.
	Name string

	// Fallback is true when no sheet matched the keyword.
	Fallback bool

	// Headers are the trimmed header cells of row 1.
	Headers []string

	// Rows are the non-empty data rows in sheet order.
	Rows []hierarchy.Row
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse opens the workbook at path and reads its controls sheet.
func Parse(path, keyword string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := parseFile(f, keyword)
	if err != nil {
		return nil, err
	}
	sheet.SourceFile = path
	return sheet, nil
}

// ParseReader reads a workbook from r.
func ParseReader(r io.Reader, keyword string) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseFile(f, keyword)
}

func parseFile(f *excelize.File, keyword string) (*Sheet, error) {
	name, fallback := selectSheet(f.GetSheetList(), keyword)
	if name == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	records, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", name)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	return &Sheet{
		Name:     name,
		Fallback: fallback,
		Headers:  headers,
		// Data starts on sheet row 2.
		Rows: hierarchy.RowsFromTable(headers, records[1:], 2),
	}, nil
}

// selectSheet returns the first sheet whose name contains keyword.
// When none does, the first sheet is returned with fallback set.
func selectSheet(names []string, keyword string) (name string, fallback bool) {
	if keyword == "" {
		keyword = DefaultSheetKeyword
	}
	keyword = strings.ToLower(keyword)

	for _, n := range names {
		if strings.Contains(strings.ToLower(n), keyword) {
			return n, false
		}
	}
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}
