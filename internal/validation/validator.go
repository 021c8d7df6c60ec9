// =============================================================================
// EUCS to OSCAL Converter - Validation Engine
// =============================================================================
//
// Validation reports, it never repairs. The builder already skips rows it
// cannot place; this module looks for data that was accepted but is likely
// to be a mistake in the sheet:
//
//   Sheet level
//     - a recognised column header is missing
//
//   Row level
//     - a severity flag holds an unrecognised mark ("no", "tbd", "?")
//       The flag still counts as set; only a blank cell means "not set".
//
//   Hierarchy level
//     - a requirement applies to no severity level
//     - a requirement's levels are not monotonic (Basic without Substantial,
//       Substantial without High). This is informational only: the scheme
//       does not require monotonic levels.
//     - a control has no requirements
//
// Every finding is a warning or a note. None of them stop the run.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/hierarchy"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

const (
	SeverityWarning = "warning"
	SeverityNote    = "note"
)

// Rule names.
const (
	RuleMissingColumn      = "missing-column"
	RuleSeverityMark       = "severity-mark"
	RuleNoSeverity         = "no-severity"
	RuleNonMonotonic       = "non-monotonic"
	RuleControlWithoutReqs = "empty-control"
)

// ValidationError represents a single finding.
type ValidationError struct {
	// Severity is SeverityWarning or SeverityNote.
	Severity string

	// Rule is the rule that produced the finding.
	Rule string

	// Field is the column, or the entity ID for hierarchy findings.
	Field string

	// Value is the offending cell text, when there is one.
	Value string

	// Message is a human-readable description.
	Message string

	// RowNumber is the sheet row, 0 for sheet and hierarchy findings.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(e.Severity), e.Rule)
	if e.RowNumber > 0 {
		fmt.Fprintf(&b, " row %d", e.RowNumber)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " '%s'", e.Field)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, " (value: '%s')", e.Value)
	}
	return b.String()
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the findings of one run.
type ValidationResult struct {
	Errors []*ValidationError

	WarningCount int
	NoteCount    int
}

func (r *ValidationResult) add(e *ValidationError) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityNote {
		r.NoteCount++
	} else {
		r.WarningCount++
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks the sheet and the built hierarchy.
type Validator struct {
	columns hierarchy.Columns
	options ValidationOptions
}

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// AcceptedMarks are the severity flag values that raise no finding,
	// compared case-insensitively. The level name itself is always accepted.
	AcceptedMarks []string

	// ReportNonMonotonic enables the informational level-order check.
	// Default: true
	ReportNonMonotonic bool
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		AcceptedMarks:      []string{"x", "yes", "y", "true", "1", "✓", "✔"},
		ReportNonMonotonic: true,
	}
}

// NewValidator creates a new Validator for the given columns.
func NewValidator(columns hierarchy.Columns) *Validator {
	return NewValidatorWithOptions(columns, DefaultValidationOptions())
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(columns hierarchy.Columns, options ValidationOptions) *Validator {
	return &Validator{columns: columns, options: options}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate runs every check with default options.
func Validate(headers []string, rows []hierarchy.Row, h *hierarchy.Hierarchy, columns hierarchy.Columns) *ValidationResult {
	return NewValidator(columns).ValidateAll(headers, rows, h)
}

// ValidateAll runs every check and returns the findings in a stable order:
// sheet, rows, hierarchy.
func (v *Validator) ValidateAll(headers []string, rows []hierarchy.Row, h *hierarchy.Hierarchy) *ValidationResult {
	result := &ValidationResult{}

	for _, e := range v.ValidateHeaders(headers) {
		result.add(e)
	}
	for _, row := range rows {
		for _, e := range v.ValidateRow(row) {
			result.add(e)
		}
	}
	for _, e := range v.ValidateHierarchy(h) {
		result.add(e)
	}

	return result
}

// ValidateHeaders reports recognised columns absent from the header row.
func (v *Validator) ValidateHeaders(headers []string) []*ValidationError {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[strings.TrimSpace(h)] = true
	}

	c := v.columns
	var errs []*ValidationError
	for _, name := range []string{c.Category, c.Control, c.Requirement, c.Title, c.Description, c.Basic, c.Substantial, c.High} {
		if !present[name] {
			errs = append(errs, &ValidationError{
				Severity: SeverityWarning,
				Rule:     RuleMissingColumn,
				Field:    name,
				Message:  "column not found in header row",
			})
		}
	}
	return errs
}

// ValidateRow checks the severity flag cells of a row.
func (v *Validator) ValidateRow(row hierarchy.Row) []*ValidationError {
	var errs []*ValidationError
	for _, level := range hierarchy.Severities {
		column := v.columns.SeverityColumn(level)
		mark := row.Value(column)
		if mark == "" || v.acceptedMark(mark, level) {
			continue
		}
		errs = append(errs, &ValidationError{
			Severity:  SeverityWarning,
			Rule:      RuleSeverityMark,
			Field:     column,
			Value:     mark,
			Message:   "unrecognised severity mark, treated as set",
			RowNumber: row.Position,
		})
	}
	return errs
}

func (v *Validator) acceptedMark(mark string, level hierarchy.Severity) bool {
	if strings.EqualFold(mark, level.String()) {
		return true
	}
	for _, accepted := range v.options.AcceptedMarks {
		if strings.EqualFold(mark, accepted) {
			return true
		}
	}
	return false
}

// ValidateHierarchy checks the assembled tree.
func (v *Validator) ValidateHierarchy(h *hierarchy.Hierarchy) []*ValidationError {
	if h == nil {
		return nil
	}

	var errs []*ValidationError
	for _, category := range h.Categories {
		for _, control := range category.Controls {
			if len(control.Requirements) == 0 {
				errs = append(errs, &ValidationError{
					Severity: SeverityWarning,
					Rule:     RuleControlWithoutReqs,
					Field:    control.ID,
					Message:  "control has no requirements and appears in no profile",
				})
			}
			for _, requirement := range control.Requirements {
				errs = append(errs, v.validateRequirement(requirement)...)
			}
		}
	}
	return errs
}

func (v *Validator) validateRequirement(r *hierarchy.Requirement) []*ValidationError {
	set := r.Severities
	if set.Empty() {
		return []*ValidationError{{
			Severity: SeverityWarning,
			Rule:     RuleNoSeverity,
			Field:    r.ID,
			Message:  "requirement applies to no severity level",
		}}
	}

	if !v.options.ReportNonMonotonic {
		return nil
	}
	if (set.Has(hierarchy.Basic) && !set.Has(hierarchy.Substantial)) ||
		(set.Has(hierarchy.Substantial) && !set.Has(hierarchy.High)) {
		return []*ValidationError{{
			Severity: SeverityNote,
			Rule:     RuleNonMonotonic,
			Field:    r.ID,
			Value:    set.String(),
			Message:  "requirement is missing from a higher level",
		}}
	}
	return nil
}
