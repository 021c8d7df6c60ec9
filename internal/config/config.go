// =============================================================================
// EUCS to OSCAL Converter - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file. Every
// setting has a default, so the converter runs without any configuration
// file at all; the file only needs to list what differs.
//
// SECTIONS:
//   - Output settings   : directory, version, file name formats
//   - Input settings    : sheet selection, column header overrides
//   - Processing        : classifier relaxations, issue handling
//   - Metadata          : OSCAL metadata block of the catalog and profiles
//   - Back matter       : reference resource of the catalog
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/hierarchy"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is the directory where the catalog and profiles are written.
	// Default: "."
	OutputDir string `yaml:"output_dir"`

	// EUCSVersion is substituted for {version} in output file names.
	// Default: "1.0"
	EUCSVersion string `yaml:"eucs_version"`

	// CatalogFileFormat is the catalog file name.
	// Placeholders: {version}, {uuid}, {timestamp}, {date}
	// Default: "EUCS_controls_version_{version}_catalog.json"
	CatalogFileFormat string `yaml:"catalog_file_format"`

	// ProfileFileFormat is the profile file name.
	// Placeholders: {version}, {level}, {uuid}, {timestamp}, {date}
	// Default: "EUCS_version_{version}_profile_{level}.json"
	ProfileFileFormat string `yaml:"profile_file_format"`

	// CatalogUUID identifies the catalog document. Profile UUIDs are derived
	// from it. A random UUID is generated when empty.
	CatalogUUID string `yaml:"catalog_uuid"`

	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// SheetKeyword selects the first worksheet whose name contains it
	// (case-insensitive).
	// Default: "controls"
	SheetKeyword string `yaml:"sheet_keyword"`

	// Columns overrides the header names of the controls sheet.
	Columns ColumnsConfig `yaml:"columns"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// ControlTitles accepts a Title cell on control rows and uses it as the
	// control title. Off by default: such rows are reported as unclassifiable.
	ControlTitles bool `yaml:"control_titles"`

	// FailOnIssues aborts before writing any file when a row issue was found.
	// Default: false
	FailOnIssues bool `yaml:"fail_on_issues"`

	// WriteIssueLog writes a text log of row issues and validation findings
	// into OutputDir.
	// Default: true
	WriteIssueLog *bool `yaml:"write_issue_log"`

	// =========================================================================
	// DOCUMENT SETTINGS
	// =========================================================================

	Metadata   MetadataConfig   `yaml:"metadata"`
	BackMatter BackMatterConfig `yaml:"back_matter"`
}

// ColumnsConfig overrides individual spreadsheet header names.
// Empty fields keep the standard EUCS header.
type ColumnsConfig struct {
	Category    string `yaml:"category"`
	Control     string `yaml:"control"`
	Requirement string `yaml:"requirement"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Basic       string `yaml:"basic"`
	Substantial string `yaml:"substantial"`
	High        string `yaml:"high"`
}

// MetadataConfig feeds the OSCAL metadata block.
type MetadataConfig struct {
	Title        string   `yaml:"title"`
	Version      string   `yaml:"version"`
	OSCALVersion string   `yaml:"oscal_version"`
	Keywords     string   `yaml:"keywords"`
	Remarks      string   `yaml:"remarks"`
	PartyUUID    string   `yaml:"party_uuid"`
	PartyName    string   `yaml:"party_name"`
	PartyEmail   string   `yaml:"party_email"`
	AddressLines []string `yaml:"address_lines"`
	City         string   `yaml:"city"`
	Country      string   `yaml:"country"`
}

// BackMatterConfig describes the reference document of the catalog.
type BackMatterConfig struct {
	ResourceUUID string `yaml:"resource_uuid"`
	Title        string `yaml:"title"`
	Href         string `yaml:"href"`
	MediaType    string `yaml:"media_type"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the configuration from a YAML file.
//
// A missing file is not an error: the defaults are returned instead, so the
// --config flag can point at a file that does not exist yet.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset option.
// The metadata defaults are the sample values of the published EUCS catalog.
func applyMainConfigDefaults(config *MainConfig) {
	if config.OutputDir == "" {
		config.OutputDir = "."
	}
	if config.EUCSVersion == "" {
		config.EUCSVersion = "1.0"
	}
	if config.CatalogFileFormat == "" {
		config.CatalogFileFormat = "EUCS_controls_version_{version}_catalog.json"
	}
	if config.ProfileFileFormat == "" {
		config.ProfileFileFormat = "EUCS_version_{version}_profile_{level}.json"
	}
	if config.CatalogUUID == "" {
		config.CatalogUUID = uuid.NewString()
	}
	if config.SheetKeyword == "" {
		config.SheetKeyword = "controls"
	}
	if config.WriteIssueLog == nil {
		on := true
		config.WriteIssueLog = &on
	}

	md := &config.Metadata
	if md.Title == "" {
		md.Title = "Sample EUCS Catalog"
	}
	if md.Version == "" {
		md.Version = "1.0"
	}
	if md.OSCALVersion == "" {
		md.OSCALVersion = "1.1.2"
	}
	if md.Keywords == "" {
		md.Keywords = "cybersecurity, information security, information system, OSCAL, Open Security Controls Assessment Language"
	}
	if md.Remarks == "" {
		md.Remarks = "The following is a short excerpt from EUCS Catalog. This work is provided here under copyright fair use for non-profit, educational purposes only. Copyrights for this work are held by the publisher."
	}
	if md.PartyUUID == "" {
		md.PartyUUID = "f550d94e-0f01-415f-a1e2-c8188c9ff4a5"
	}
	if md.PartyName == "" {
		md.PartyName = "ENISA"
	}
	if md.PartyEmail == "" {
		md.PartyEmail = "name@domain.eu"
	}
	if len(md.AddressLines) == 0 {
		md.AddressLines = []string{"ENISA", "Attn: Somebody", "1 Some Street"}
	}
	if md.City == "" {
		md.City = "City"
	}
	if md.Country == "" {
		md.Country = "EU"
	}

	bm := &config.BackMatter
	if bm.ResourceUUID == "" {
		bm.ResourceUUID = "3ab41d8a-66e3-4732-ae28-07405dad5127"
	}
	if bm.Title == "" {
		bm.Title = "EUCS prCEN/TS (PDF)"
	}
	if bm.Href == "" {
		bm.Href = "https://enisa.europa.eu/publications/eucs.pdf"
	}
	if bm.MediaType == "" {
		bm.MediaType = "application/pdf"
	}
}

// validateMainConfig checks the values OSCAL is strict about.
func validateMainConfig(config *MainConfig) error {
	uuids := map[string]string{
		"catalog_uuid":              config.CatalogUUID,
		"metadata.party_uuid":       config.Metadata.PartyUUID,
		"back_matter.resource_uuid": config.BackMatter.ResourceUUID,
	}
	for key, value := range uuids {
		if _, err := uuid.Parse(value); err != nil {
			return fmt.Errorf("%s %q is not a UUID: %w", key, value, err)
		}
	}

	if !strings.Contains(config.ProfileFileFormat, "{level}") {
		return fmt.Errorf("profile_file_format %q must contain {level}", config.ProfileFileFormat)
	}

	return nil
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// HierarchyColumns returns the header names with overrides applied.
func (c *MainConfig) HierarchyColumns() hierarchy.Columns {
	cols := hierarchy.DefaultColumns()
	override := func(dst *string, value string) {
		if v := strings.TrimSpace(value); v != "" {
			*dst = v
		}
	}
	override(&cols.Category, c.Columns.Category)
	override(&cols.Control, c.Columns.Control)
	override(&cols.Requirement, c.Columns.Requirement)
	override(&cols.Title, c.Columns.Title)
	override(&cols.Description, c.Columns.Description)
	override(&cols.Basic, c.Columns.Basic)
	override(&cols.Substantial, c.Columns.Substantial)
	override(&cols.High, c.Columns.High)
	return cols
}

// Classifier returns the row classifier described by the configuration.
func (c *MainConfig) Classifier() hierarchy.Classifier {
	cl := hierarchy.NewClassifier(c.HierarchyColumns())
	cl.AllowControlTitle = c.ControlTitles
	return cl
}

// IssueLogEnabled reports whether the issue log should be written.
func (c *MainConfig) IssueLogEnabled() bool {
	return c.WriteIssueLog == nil || *c.WriteIssueLog
}
