// =============================================================================
// EUCS to OSCAL Converter - Catalog and Profile Assembly
// =============================================================================
//
// This module turns the hierarchy into OSCAL documents.
//
// CATALOG STRUCTURE:
//
//   catalog
//   └── group        eucs-<category>           one per category
//       └── control  eucs-<category>.<control> one per control
//           ├── part statement  <id>_obj       objective (control description)
//           └── part statement  <id>_req       requirements headline
//               └── part item   <id>_req.<n>   one per requirement and level
//
// LEVEL IDENTIFIERS:
//   EUCS numbers a requirement after the lowest level it appears in, e.g.
//   OIS-01.1B. The same requirement listed at a higher level carries that
//   level's letter: OIS-01.1S for Substantial, OIS-01.1H for High. Only a
//   trailing B (or S, for High) is rewritten; other identifiers are kept.
//
// PROFILES:
//   One profile per level, importing the catalog by file name and selecting
//   the controls that survive the severity filter at that level.
//
// =============================================================================

package oscal

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/config"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/hierarchy"
)

// idPrefix prefixes every generated OSCAL identifier.
const idPrefix = "eucs-"

// =============================================================================
// CATALOG
// =============================================================================

// NewCatalog assembles the catalog for the full hierarchy.
func NewCatalog(h *hierarchy.Hierarchy, cfg *config.MainConfig, now time.Time) *CatalogDocument {
	catalog := &Catalog{
		UUID:     cfg.CatalogUUID,
		Metadata: newMetadata(cfg, cfg.Metadata.Title, now),
		BackMatter: &BackMatter{
			Resources: []Resource{{
				UUID:  cfg.BackMatter.ResourceUUID,
				Title: cfg.BackMatter.Title,
				Rlinks: []Rlink{{
					Href:      cfg.BackMatter.Href,
					MediaType: cfg.BackMatter.MediaType,
				}},
			}},
		},
	}

	if h != nil {
		for _, category := range h.Categories {
			catalog.Groups = append(catalog.Groups, newGroup(category))
		}
	}

	return &CatalogDocument{Catalog: catalog}
}

func newGroup(category *hierarchy.Category) Group {
	group := Group{
		ID:    GroupID(category),
		Title: category.Title,
		Props: []Property{{Name: "label", Value: category.ID + "."}},
	}
	for _, control := range category.Controls {
		group.Controls = append(group.Controls, newControl(category, control))
	}
	return group
}

func newControl(category *hierarchy.Category, control *hierarchy.Control) Control {
	id := ControlID(category, control)

	title := control.Title
	if title == "" {
		title = control.ID
	}

	out := Control{
		ID:    id,
		Class: "eucs",
		Title: title,
		Props: []Property{{Name: "label", Value: lastRune(control.ID) + "."}},
	}

	objective := Part{
		ID:   id + "_obj",
		Name: "statement",
		Props: []Property{
			{Name: "label", Value: "1."},
			{Name: "alt-identifier", Value: "Objective"},
		},
		Prose: control.Description,
	}

	requirements := Part{
		ID:   id + "_req",
		Name: "statement",
		Props: []Property{
			{Name: "label", Value: "2."},
			{Name: "alt-identifier", Value: "Requirements"},
		},
	}

	seen := make(map[string]bool)
	for _, requirement := range control.Requirements {
		requirements.Parts = append(requirements.Parts, requirementParts(requirements.ID, control, requirement, seen)...)
	}

	out.Parts = []Part{objective, requirements}
	return out
}

// requirementParts returns one item part per level of the requirement.
// A requirement with no level still gets a single, unclassed item so the
// catalog stays complete.
func requirementParts(parentID string, control *hierarchy.Control, requirement *hierarchy.Requirement, seen map[string]bool) []Part {
	levels := requirement.Severities.Levels()
	if len(levels) == 0 {
		return []Part{{
			ID:    uniqueID(parentID+"."+itemSuffix(control, requirement.ID), "", seen),
			Name:  "item",
			Props: []Property{{Name: "alt-identifier", Value: requirement.ID}},
			Prose: requirement.ID + " - " + requirement.Description,
		}}
	}

	parts := make([]Part, 0, len(levels))
	for _, level := range levels {
		levelID := LevelIdentifier(requirement.ID, level)
		class := strings.ToLower(level.String())
		parts = append(parts, Part{
			ID:    uniqueID(parentID+"."+itemSuffix(control, levelID), class, seen),
			Name:  "item",
			Class: class,
			Props: []Property{{Name: "alt-identifier", Class: class, Value: levelID}},
			Prose: levelID + " - " + requirement.Description,
		})
	}
	return parts
}

// =============================================================================
// PROFILES
// =============================================================================

// NewProfile assembles the profile of one level. filtered must be the
// hierarchy already filtered at that level; catalogHref is the file name of
// the catalog the profile imports.
func NewProfile(filtered *hierarchy.Hierarchy, level hierarchy.Severity, catalogHref string, cfg *config.MainConfig, now time.Time) *ProfileDocument {
	title := cfg.Metadata.Title + " - " + level.String() + " profile"

	var ids []string
	for _, category := range filtered.Categories {
		for _, control := range category.Controls {
			ids = append(ids, ControlID(category, control))
		}
	}

	imp := Import{Href: catalogHref}
	if len(ids) > 0 {
		imp.IncludeControls = []SelectControl{{WithIDs: ids}}
	}

	// The back-matter link only resolves inside the catalog.
	md := newMetadata(cfg, title, now)
	md.Links = nil

	return &ProfileDocument{Profile: &Profile{
		UUID:     ProfileUUID(cfg.CatalogUUID, level),
		Metadata: md,
		Imports:  []Import{imp},
	}}
}

// ProfileUUID derives a stable profile UUID from the catalog UUID and level,
// so regenerating the profiles of a catalog keeps their identity.
func ProfileUUID(catalogUUID string, level hierarchy.Severity) string {
	ns, err := uuid.Parse(catalogUUID)
	if err != nil {
		ns = uuid.NameSpaceURL
	}
	return uuid.NewSHA1(ns, []byte("profile/"+level.String())).String()
}

// =============================================================================
// METADATA
// =============================================================================

func newMetadata(cfg *config.MainConfig, title string, now time.Time) Metadata {
	md := cfg.Metadata
	published := now

	party := md.PartyUUID
	partyUUIDs := []string{party}

	return Metadata{
		Title:        title,
		Published:    &published,
		LastModified: now,
		Version:      md.Version,
		OSCALVersion: md.OSCALVersion,
		Props:        []Property{{Name: "keywords", Value: md.Keywords}},
		Links:        []Link{{Rel: "alternate", Href: "#" + cfg.BackMatter.ResourceUUID}},
		Roles: []Role{
			{ID: "publisher", Title: "Source document converter to OSCAL."},
			{ID: "author", Title: "Source document author."},
			{ID: "contact", Title: "Contact."},
		},
		Parties: []Party{{
			UUID:           party,
			Type:           "organization",
			Name:           md.PartyName,
			EmailAddresses: []string{md.PartyEmail},
			Addresses: []Address{{
				AddrLines: md.AddressLines,
				City:      md.City,
				Country:   md.Country,
			}},
		}},
		ResponsibleParties: []ResponsibleParty{
			{RoleID: "publisher", PartyUUIDs: partyUUIDs},
			{RoleID: "author", PartyUUIDs: partyUUIDs},
			{RoleID: "contact", PartyUUIDs: partyUUIDs},
		},
		Remarks: md.Remarks,
	}
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// GroupID returns the OSCAL id of a category group.
func GroupID(category *hierarchy.Category) string {
	return idPrefix + tokenChars(category.ID)
}

// ControlID returns the OSCAL id of a control. Control IDs are only unique
// within their category, so the category is part of the id.
func ControlID(category *hierarchy.Category, control *hierarchy.Control) string {
	return GroupID(category) + "." + tokenChars(control.ID)
}

// LevelIdentifier returns the requirement identifier used at level.
func LevelIdentifier(requirementID string, level hierarchy.Severity) string {
	if requirementID == "" {
		return requirementID
	}
	stem, last := requirementID[:len(requirementID)-1], requirementID[len(requirementID)-1]

	switch level {
	case hierarchy.Substantial:
		if last == 'B' {
			return stem + "S"
		}
	case hierarchy.High:
		if last == 'B' || last == 'S' {
			return stem + "H"
		}
	}
	return requirementID
}

// tokenChars replaces every character OSCAL tokens do not allow with '_'.
// The result is only a valid token once prefixed, e.g. by idPrefix.
func tokenChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, strings.TrimSpace(s))
}

// itemSuffix shortens a requirement identifier relative to its control,
// OIS-01.1B under OIS-01 becoming 1B.
func itemSuffix(control *hierarchy.Control, requirementID string) string {
	suffix := strings.TrimPrefix(requirementID, control.ID)
	suffix = strings.TrimLeft(suffix, ".-_ ")
	if suffix == "" {
		suffix = requirementID
	}
	return tokenChars(suffix)
}

// uniqueID appends the level class, then a counter, until id is unused.
func uniqueID(id, class string, seen map[string]bool) string {
	candidate := id
	if seen[candidate] && class != "" {
		candidate = id + "_" + class
	}
	for n := 2; seen[candidate]; n++ {
		candidate = id + "_" + strconv.Itoa(n)
	}
	seen[candidate] = true
	return candidate
}

func lastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return ""
	}
	return string(r[len(r)-1])
}
