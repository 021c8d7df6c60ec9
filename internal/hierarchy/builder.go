// =============================================================================
// EUCS to OSCAL Converter - Hierarchy Builder
// =============================================================================
//
// The builder folds classified rows into the tree in a single pass. Rows do
// not reference their parent declaratively: a control belongs to the most
// recent category row, a requirement to the most recent control row.
//
// FOLD STATE:
//   currentCategory : set by a category row, nil until the first one
//   currentControl  : set by a control row, reset by every category row
//
// DIAGNOSTICS:
//   Rows that cannot be placed are skipped and reported as RowIssue values.
//   Nothing here fails the run; the caller decides what to do with issues.
//
// =============================================================================

package hierarchy

import "fmt"

// Builder accumulates rows into a Hierarchy.
// A Builder is single-use and not safe for concurrent use.
type Builder struct {
	classifier Classifier

	tree   *Hierarchy
	issues []RowIssue

	currentCategory *Category
	currentControl  *Control

	categories   map[string]*Category
	controls     map[*Category]map[string]*Control
	requirements map[*Control]map[string]*Requirement
}

// NewBuilder returns a builder that classifies rows with c.
func NewBuilder(c Classifier) *Builder {
	return &Builder{
		classifier:   c,
		tree:         &Hierarchy{},
		categories:   make(map[string]*Category),
		controls:     make(map[*Category]map[string]*Control),
		requirements: make(map[*Control]map[string]*Requirement),
	}
}

// Build folds rows with the default classifier.
func Build(rows []Row) (*Hierarchy, []RowIssue) {
	return BuildWith(DefaultClassifier(), rows)
}

// BuildWith folds rows, in order, with the given classifier.
func BuildWith(c Classifier, rows []Row) (*Hierarchy, []RowIssue) {
	b := NewBuilder(c)
	for _, row := range rows {
		b.Add(row)
	}
	return b.Result()
}

// Add classifies one row and folds it into the tree.
func (b *Builder) Add(row Row) {
	cl := b.classifier.Classify(row)

	switch cl.Role {
	case RoleCategory:
		b.addCategory(cl)
	case RoleControl:
		b.addControl(row.Position, cl)
	case RoleRequirement:
		b.addRequirement(row.Position, cl)
	default:
		b.report(row.Position, IssueUnclassifiable, describeShape(cl))
	}
}

// Result returns the tree and the issues collected so far.
func (b *Builder) Result() (*Hierarchy, []RowIssue) {
	return b.tree, b.issues
}

func (b *Builder) addCategory(cl Classification) {
	category, ok := b.categories[cl.CategoryID]
	if !ok {
		category = &Category{ID: cl.CategoryID}
		b.categories[cl.CategoryID] = category
		b.tree.Categories = append(b.tree.Categories, category)
	}
	category.Title = cl.Title

	b.currentCategory = category
	b.currentControl = nil
}

func (b *Builder) addControl(position int, cl Classification) {
	category := b.currentCategory
	if category == nil {
		b.report(position, IssueOrphanControl,
			fmt.Sprintf("control %q appears before any category row", cl.ControlID))
		return
	}
	if cl.CategoryID != category.ID {
		b.report(position, IssueParentMismatch,
			fmt.Sprintf("control %q names category %q but follows category %q", cl.ControlID, cl.CategoryID, category.ID))
	}

	index := b.controls[category]
	if index == nil {
		index = make(map[string]*Control)
		b.controls[category] = index
	}

	control, ok := index[cl.ControlID]
	if !ok {
		control = &Control{ID: cl.ControlID}
		index[cl.ControlID] = control
		category.Controls = append(category.Controls, control)
	}
	control.Description = cl.Description
	if cl.Title != "" {
		control.Title = cl.Title
	}

	b.currentControl = control
}

func (b *Builder) addRequirement(position int, cl Classification) {
	control := b.currentControl
	if control == nil {
		b.report(position, IssueOrphanRequirement,
			fmt.Sprintf("requirement %q appears before any control row", cl.RequirementID))
		return
	}
	if cl.ControlID != control.ID {
		b.report(position, IssueParentMismatch,
			fmt.Sprintf("requirement %q names control %q but follows control %q", cl.RequirementID, cl.ControlID, control.ID))
	}

	index := b.requirements[control]
	if index == nil {
		index = make(map[string]*Requirement)
		b.requirements[control] = index
	}

	requirement, ok := index[cl.RequirementID]
	if !ok {
		requirement = &Requirement{ID: cl.RequirementID}
		index[cl.RequirementID] = requirement
		control.Requirements = append(control.Requirements, requirement)
	}
	requirement.Description = cl.Description
	requirement.Severities = cl.Severities
}

func (b *Builder) report(position int, kind IssueKind, reason string) {
	b.issues = append(b.issues, RowIssue{Position: position, Kind: kind, Reason: reason})
}

// describeShape lists the identifying columns present on an invalid row.
func describeShape(cl Classification) string {
	var present []string
	if cl.CategoryID != "" {
		present = append(present, "category")
	}
	if cl.ControlID != "" {
		present = append(present, "control")
	}
	if cl.RequirementID != "" {
		present = append(present, "requirement")
	}
	if cl.Title != "" {
		present = append(present, "title")
	}
	if cl.Description != "" {
		present = append(present, "description")
	}
	if len(present) == 0 {
		return "no identifying columns set"
	}
	return fmt.Sprintf("columns %v match no row shape", present)
}
