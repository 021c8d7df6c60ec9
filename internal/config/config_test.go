package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/hierarchy"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMainConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadMainConfig() error = %v", err)
	}

	if cfg.OutputDir != "." {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, ".")
	}
	if cfg.EUCSVersion != "1.0" {
		t.Errorf("EUCSVersion = %q, want %q", cfg.EUCSVersion, "1.0")
	}
	if cfg.SheetKeyword != "controls" {
		t.Errorf("SheetKeyword = %q, want %q", cfg.SheetKeyword, "controls")
	}
	if cfg.Metadata.OSCALVersion != "1.1.2" {
		t.Errorf("Metadata.OSCALVersion = %q, want %q", cfg.Metadata.OSCALVersion, "1.1.2")
	}
	if cfg.CatalogUUID == "" {
		t.Error("CatalogUUID not generated")
	}
	if !cfg.IssueLogEnabled() {
		t.Error("IssueLogEnabled() = false, want true")
	}
	if cfg.FailOnIssues || cfg.ControlTitles {
		t.Error("FailOnIssues/ControlTitles should default to false")
	}
}

func TestLoadMainConfig_OverrideDefaults(t *testing.T) {
	path := writeConfig(t, `
output_dir: out
eucs_version: "2.1"
catalog_uuid: 74c8ba1e-5cd4-4ad1-bbfd-d888e2f6c724
control_titles: true
fail_on_issues: true
write_issue_log: false
columns:
  category: Category
metadata:
  title: My Catalog
`)

	cfg, err := LoadMainConfig(path)
	if err != nil {
		t.Fatalf("LoadMainConfig() error = %v", err)
	}

	if cfg.OutputDir != "out" || cfg.EUCSVersion != "2.1" {
		t.Errorf("OutputDir/EUCSVersion = %q/%q", cfg.OutputDir, cfg.EUCSVersion)
	}
	if cfg.CatalogUUID != "74c8ba1e-5cd4-4ad1-bbfd-d888e2f6c724" {
		t.Errorf("CatalogUUID = %q", cfg.CatalogUUID)
	}
	if !cfg.ControlTitles || !cfg.FailOnIssues || cfg.IssueLogEnabled() {
		t.Error("boolean overrides not applied")
	}
	if cfg.Metadata.Title != "My Catalog" {
		t.Errorf("Metadata.Title = %q", cfg.Metadata.Title)
	}
	if cfg.Metadata.PartyName != "ENISA" {
		t.Errorf("Metadata.PartyName = %q, want default", cfg.Metadata.PartyName)
	}

	cols := cfg.HierarchyColumns()
	if cols.Category != "Category" {
		t.Errorf("Columns.Category = %q", cols.Category)
	}
	if cols.Control != hierarchy.DefaultColumns().Control {
		t.Errorf("Columns.Control = %q, want default", cols.Control)
	}
	if !cfg.Classifier().AllowControlTitle {
		t.Error("Classifier().AllowControlTitle = false")
	}
}

func TestLoadMainConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad_yaml", "output_dir: [unterminated"},
		{"bad_uuid", "catalog_uuid: not-a-uuid"},
		{"profile_without_level", "profile_file_format: profile.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadMainConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("LoadMainConfig() error = nil, want error")
			}
		})
	}
}
