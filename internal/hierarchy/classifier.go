// =============================================================================
// EUCS to OSCAL Converter - Row Classifier
// =============================================================================
//
// The controls sheet has no "row type" column. The structural role of a row
// is inferred from which identifying columns are filled in:
//
//   | Role        | Category | Control | Requirement | Title | Description |
//   |-------------|----------|---------|-------------|-------|-------------|
//   | Category    | set      | -       | -           | set   | -           |
//   | Control     | set      | set     | -           | -     | set         |
//   | Requirement | set      | set     | set         | -     | set         |
//
// Shapes are tried in that order and the first match wins. Anything else is
// RoleInvalid. Blank or whitespace-only cells count as absent.
//
// =============================================================================

package hierarchy

// Role is the structural role of a row.
type Role int

const (
	RoleInvalid Role = iota
	RoleCategory
	RoleControl
	RoleRequirement
)

func (r Role) String() string {
	switch r {
	case RoleCategory:
		return "category"
	case RoleControl:
		return "control"
	case RoleRequirement:
		return "requirement"
	}
	return "invalid"
}

// Classification is the result of classifying one row.
type Classification struct {
	Role Role

	CategoryID    string
	ControlID     string
	RequirementID string
	Title         string
	Description   string

	// Severities is only meaningful for RoleRequirement.
	Severities SeveritySet
}

// Classifier decides the role of a row.
// The zero value is not usable; use NewClassifier or DefaultClassifier.
type Classifier struct {
	columns Columns

	// AllowControlTitle relaxes the control shape so that a Title cell on a
	// control row becomes the control's title instead of making the row invalid.
	AllowControlTitle bool
}

// NewClassifier returns a classifier reading the given columns.
func NewClassifier(columns Columns) Classifier {
	return Classifier{columns: columns}
}

// DefaultClassifier returns a classifier for the standard EUCS headers.
func DefaultClassifier() Classifier {
	return NewClassifier(DefaultColumns())
}

// Classify classifies a row using the standard EUCS headers.
func Classify(row Row) Classification {
	return DefaultClassifier().Classify(row)
}

// Classify returns the role of row plus the values extracted from it.
// It has no side effects.
func (c Classifier) Classify(row Row) Classification {
	col := c.columns
	out := Classification{
		CategoryID:    row.Value(col.Category),
		ControlID:     row.Value(col.Control),
		RequirementID: row.Value(col.Requirement),
		Title:         row.Value(col.Title),
		Description:   row.Value(col.Description),
	}

	hasCategory := out.CategoryID != ""
	hasControl := out.ControlID != ""
	hasRequirement := out.RequirementID != ""
	hasTitle := out.Title != ""
	hasDescription := out.Description != ""

	switch {
	case hasCategory && hasTitle && !hasControl && !hasRequirement && !hasDescription:
		out.Role = RoleCategory
	case hasCategory && hasControl && hasDescription && !hasRequirement && (!hasTitle || c.AllowControlTitle):
		out.Role = RoleControl
	case hasCategory && hasControl && hasRequirement && hasDescription && !hasTitle:
		out.Role = RoleRequirement
		out.Severities = c.severities(row)
	default:
		out.Role = RoleInvalid
	}

	return out
}

// severities collects the levels whose flag column is filled in.
// Any non-blank mark counts; odd marks are reported by the validation package.
func (c Classifier) severities(row Row) SeveritySet {
	var set SeveritySet
	for _, level := range Severities {
		if row.Has(c.columns.SeverityColumn(level)) {
			set = set.With(level)
		}
	}
	return set
}
