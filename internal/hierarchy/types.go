// =============================================================================
// EUCS to OSCAL Converter - Hierarchy Types
// =============================================================================
//
// This package contains the compliance hierarchy assembled from the controls
// spreadsheet, together with the logic that builds and filters it:
//   - classifier.go : decides the structural role of a single row
//   - builder.go    : folds classified rows into Category -> Control -> Requirement
//   - filter.go     : produces severity-scoped copies of the hierarchy
//
// The types defined here are shared by:
//   - converter
//   - validation
//   - oscal
//
// =============================================================================

package hierarchy

import (
	"fmt"
	"strings"
)

// =============================================================================
// COLUMN NAMES
// =============================================================================

// Columns holds the spreadsheet header names the classifier looks at.
// The defaults match the published EUCS controls sheet.
type Columns struct {
	Category    string
	Control     string
	Requirement string
	Title       string
	Description string
	Basic       string
	Substantial string
	High        string
}

// DefaultColumns returns the header names of the EUCS controls sheet.
func DefaultColumns() Columns {
	return Columns{
		Category:    "EUCS Category",
		Control:     "EUCS Control",
		Requirement: "EUCS Requirement",
		Title:       "Title",
		Description: "Description",
		Basic:       "Basic",
		Substantial: "Substantial",
		High:        "High",
	}
}

// SeverityColumn returns the header of the flag column for a severity level.
func (c Columns) SeverityColumn(level Severity) string {
	switch level {
	case Basic:
		return c.Basic
	case Substantial:
		return c.Substantial
	case High:
		return c.High
	}
	return ""
}

// =============================================================================
// ROW
// =============================================================================

// Row is one raw spreadsheet row.
type Row struct {
	// Position is the 1-based row number in the source sheet.
	// Used for diagnostics only.
	Position int

	// Cells maps column header to cell text.
	Cells map[string]string
}

// Value returns the trimmed cell text for a column, or "" when absent.
func (r Row) Value(column string) string {
	return strings.TrimSpace(r.Cells[column])
}

// Has reports whether the column holds non-blank text.
func (r Row) Has(column string) bool {
	return r.Value(column) != ""
}

// =============================================================================
// SEVERITY
// =============================================================================

// Severity is an assurance level of the scheme.
type Severity int

const (
	Basic Severity = iota
	Substantial
	High
)

// Severities lists every level in ascending order.
var Severities = []Severity{Basic, Substantial, High}

func (s Severity) String() string {
	switch s {
	case Basic:
		return "Basic"
	case Substantial:
		return "Substantial"
	case High:
		return "High"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// ParseSeverity accepts a level name in any case.
func ParseSeverity(name string) (Severity, error) {
	for _, s := range Severities {
		if strings.EqualFold(strings.TrimSpace(name), s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown severity level %q", name)
}

// SeveritySet holds the levels a requirement applies to.
// Each level is an independent flag; Basic does not imply Substantial.
type SeveritySet uint8

// NewSeveritySet returns a set holding the given levels.
func NewSeveritySet(levels ...Severity) SeveritySet {
	var set SeveritySet
	for _, level := range levels {
		set = set.With(level)
	}
	return set
}

// With returns a copy of the set that also contains level.
func (s SeveritySet) With(level Severity) SeveritySet {
	return s | 1<<uint(level)
}

// Has reports whether level is in the set.
func (s SeveritySet) Has(level Severity) bool {
	return s&(1<<uint(level)) != 0
}

// Empty reports whether the set holds no level.
func (s SeveritySet) Empty() bool {
	return s == 0
}

// Levels returns the members in ascending order.
func (s SeveritySet) Levels() []Severity {
	var levels []Severity
	for _, level := range Severities {
		if s.Has(level) {
			levels = append(levels, level)
		}
	}
	return levels
}

func (s SeveritySet) String() string {
	levels := s.Levels()
	names := make([]string, len(levels))
	for i, level := range levels {
		names[i] = level.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}

// =============================================================================
// HIERARCHY
// =============================================================================

// Hierarchy is the full Category -> Control -> Requirement tree.
// It is read-only once Build returns.
type Hierarchy struct {
	Categories []*Category
}

// Category is the top-level grouping of controls.
type Category struct {
	// ID is the category identifier, e.g. "OIS".
	ID string

	// Title is the category heading.
	Title string

	// Controls are owned exclusively by this category, in sheet order.
	Controls []*Control
}

// Control groups requirements under a common objective.
type Control struct {
	// ID is unique within the owning category, e.g. "OIS-01".
	ID string

	// Title is optional; the default classifier never fills it.
	Title string

	// Description is the control objective text.
	Description string

	// Requirements are owned exclusively by this control, in sheet order.
	Requirements []*Requirement
}

// Requirement is a concrete compliance rule.
type Requirement struct {
	// ID is unique within the owning control, e.g. "OIS-01.1B".
	ID string

	// Description is the requirement text.
	Description string

	// Severities holds the levels this requirement is part of.
	// An empty set is legal: the requirement appears in no profile.
	Severities SeveritySet
}

// Stats counts the entities of the tree.
type Stats struct {
	Categories   int
	Controls     int
	Requirements int
}

// Stats walks the tree and counts its entities.
func (h *Hierarchy) Stats() Stats {
	var st Stats
	if h == nil {
		return st
	}
	st.Categories = len(h.Categories)
	for _, category := range h.Categories {
		st.Controls += len(category.Controls)
		for _, control := range category.Controls {
			st.Requirements += len(control.Requirements)
		}
	}
	return st
}

// Empty reports whether the tree holds no category.
func (h *Hierarchy) Empty() bool {
	return h == nil || len(h.Categories) == 0
}

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// IssueKind classifies a RowIssue.
type IssueKind int

const (
	// IssueUnclassifiable marks a row that matched no known shape.
	IssueUnclassifiable IssueKind = iota

	// IssueOrphanControl marks a control row seen before any category.
	IssueOrphanControl

	// IssueOrphanRequirement marks a requirement row seen before any control.
	IssueOrphanRequirement

	// IssueParentMismatch marks a row whose category or control column
	// disagrees with the positional parent it was attached to. The row is
	// still attached.
	IssueParentMismatch
)

func (k IssueKind) String() string {
	switch k {
	case IssueUnclassifiable:
		return "unclassifiable row"
	case IssueOrphanControl:
		return "orphan control"
	case IssueOrphanRequirement:
		return "orphan requirement"
	case IssueParentMismatch:
		return "parent mismatch"
	}
	return fmt.Sprintf("IssueKind(%d)", int(k))
}

// Skipped reports whether rows with this issue were left out of the tree.
func (k IssueKind) Skipped() bool {
	return k != IssueParentMismatch
}

// RowIssue describes a row that could not be classified or correctly parented.
type RowIssue struct {
	Position int
	Kind     IssueKind
	Reason   string
}

// Error implements the error interface so issues can be logged or joined.
func (i RowIssue) Error() string {
	if i.Reason == "" {
		return fmt.Sprintf("row %d: %s", i.Position, i.Kind)
	}
	return fmt.Sprintf("row %d: %s: %s", i.Position, i.Kind, i.Reason)
}

// RowsFromTable turns a header line and its data records into rows.
// firstPosition is the sheet row number of records[0]. Records with no
// non-blank cell are dropped; short records simply lack the trailing columns.
func RowsFromTable(header []string, records [][]string, firstPosition int) []Row {
	names := make([]string, len(header))
	for i, name := range header {
		names[i] = strings.TrimSpace(name)
	}

	rows := make([]Row, 0, len(records))
	for i, record := range records {
		row := Row{Position: firstPosition + i, Cells: make(map[string]string, len(names))}
		blank := true
		for j, value := range record {
			if j >= len(names) || names[j] == "" {
				continue
			}
			if strings.TrimSpace(value) != "" {
				blank = false
			}
			row.Cells[names[j]] = value
		}
		if blank {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
