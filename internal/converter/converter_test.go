package converter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/config"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/hierarchy"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/oscal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const sheetCSV = `EUCS Category,EUCS Control,EUCS Requirement,Title,Description,Basic,Substantial,High
OIS,,,Organisation of information security,,,,
OIS,OIS-01,,,Objective one,,,
OIS,OIS-01,OIS-01.1B,,Requirement one,x,x,x
OIS,OIS-01,OIS-01.2S,,Requirement two,,x,x
OIS,OIS-02,,,Objective two,,,
OIS,OIS-02,OIS-02.1H,,Requirement three,,,x
`

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.CatalogUUID = "0b4e2a8c-5d1f-4c8e-9b61-7a2f3c4d5e6f"
	return cfg
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestConverter(path string, cfg *config.MainConfig) *Converter {
	c := New(path, cfg, zap.NewNop().Sugar())
	c.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	return c
}

func readProfileIDs(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc oscal.ProfileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("%s: %v", path, err)
	}
	imports := doc.Profile.Imports
	if len(imports) != 1 {
		t.Fatalf("%s: imports = %d", path, len(imports))
	}
	if len(imports[0].IncludeControls) == 0 {
		return nil
	}
	return imports[0].IncludeControls[0].WithIDs
}

func TestRunCSV(t *testing.T) {
	cfg := testConfig(t)
	result := newTestConverter(writeInput(t, "eucs.csv", sheetCSV), cfg).Run()

	if !result.Success {
		t.Fatalf("Run() failed: %v", result.Error)
	}
	if len(result.Issues) != 0 {
		t.Errorf("issues = %v", result.Issues)
	}
	if want := (hierarchy.Stats{Categories: 1, Controls: 2, Requirements: 3}); result.Stats.Catalog != want {
		t.Errorf("catalog stats = %+v, want %+v", result.Stats.Catalog, want)
	}

	wantCatalog := filepath.Join(cfg.OutputDir, "EUCS_controls_version_1.0_catalog.json")
	if result.CatalogFile != wantCatalog {
		t.Errorf("CatalogFile = %q, want %q", result.CatalogFile, wantCatalog)
	}

	data, err := os.ReadFile(result.CatalogFile)
	if err != nil {
		t.Fatal(err)
	}
	var catalog oscal.CatalogDocument
	if err := json.Unmarshal(data, &catalog); err != nil {
		t.Fatal(err)
	}
	if catalog.Catalog.UUID != cfg.CatalogUUID {
		t.Errorf("catalog uuid = %q", catalog.Catalog.UUID)
	}
	if len(catalog.Catalog.Groups) != 1 || len(catalog.Catalog.Groups[0].Controls) != 2 {
		t.Errorf("catalog shape = %+v", catalog.Catalog.Groups)
	}

	tests := []struct {
		level hierarchy.Severity
		file  string
		ids   []string
	}{
		{hierarchy.Basic, "EUCS_version_1.0_profile_Basic.json", []string{"eucs-OIS.OIS-01"}},
		{hierarchy.Substantial, "EUCS_version_1.0_profile_Substantial.json", []string{"eucs-OIS.OIS-01"}},
		{hierarchy.High, "EUCS_version_1.0_profile_High.json", []string{"eucs-OIS.OIS-01", "eucs-OIS.OIS-02"}},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			path := result.ProfileFiles[tt.level]
			if filepath.Base(path) != tt.file {
				t.Fatalf("profile file = %q, want %q", path, tt.file)
			}
			if got := readProfileIDs(t, path); !reflect.DeepEqual(got, tt.ids) {
				t.Errorf("with-ids = %v, want %v", got, tt.ids)
			}
		})
	}

	if result.IssueLog != "" {
		t.Errorf("IssueLog = %q, want none for a clean sheet", result.IssueLog)
	}
	if got := len(result.OutputFiles()); got != 4 {
		t.Errorf("OutputFiles() = %d, want 4", got)
	}
	if want := (hierarchy.Stats{Categories: 1, Controls: 1, Requirements: 1}); result.Stats.Levels[hierarchy.Basic] != want {
		t.Errorf("Basic stats = %+v, want %+v", result.Stats.Levels[hierarchy.Basic], want)
	}
}

func TestRunXLSX(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "EUCS Controls"); err != nil {
		t.Fatal(err)
	}
	for i, line := range strings.Split(strings.TrimSpace(sheetCSV), "\n") {
		cells := strings.Split(line, ",")
		row := make([]interface{}, len(cells))
		for j, v := range cells {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("EUCS Controls", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "eucs.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	result := newTestConverter(path, testConfig(t)).Run()
	if !result.Success {
		t.Fatalf("Run() failed: %v", result.Error)
	}
	if result.SheetName != "EUCS Controls" {
		t.Errorf("SheetName = %q", result.SheetName)
	}
	if result.Stats.Catalog.Requirements != 3 {
		t.Errorf("requirements = %d, want 3", result.Stats.Catalog.Requirements)
	}
}

func TestRunWithIssues(t *testing.T) {
	input := writeInput(t, "eucs.csv", sheetCSV+",,,,stray text,,,\n")

	t.Run("lenient", func(t *testing.T) {
		cfg := testConfig(t)
		result := newTestConverter(input, cfg).Run()
		if !result.Success {
			t.Fatalf("Run() failed: %v", result.Error)
		}
		if result.Stats.SkippedRows != 1 || len(result.Issues) != 1 {
			t.Fatalf("issues = %v", result.Issues)
		}
		if result.Issues[0].Kind != hierarchy.IssueUnclassifiable || result.Issues[0].Position != 8 {
			t.Errorf("issue = %+v", result.Issues[0])
		}
		if result.IssueLog == "" {
			t.Error("no issue log written")
		}
	})

	t.Run("strict", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.FailOnIssues = true
		result := newTestConverter(input, cfg).Run()
		if result.Success || !errors.Is(result.Error, ErrRowIssues) {
			t.Fatalf("Run() = success %v, error %v", result.Success, result.Error)
		}
		if _, err := os.Stat(cfg.OutputDir); !os.IsNotExist(err) {
			t.Errorf("output dir exists after strict failure: %v", err)
		}
	})

	t.Run("no_log", func(t *testing.T) {
		cfg := testConfig(t)
		off := false
		cfg.WriteIssueLog = &off
		result := newTestConverter(input, cfg).Run()
		if result.IssueLog != "" {
			t.Errorf("IssueLog = %q, want none", result.IssueLog)
		}
	})
}

func TestRunDryRun(t *testing.T) {
	cfg := testConfig(t)
	c := newTestConverter(writeInput(t, "eucs.csv", sheetCSV), cfg)
	c.DryRun = true

	result := c.Run()
	if !result.Success {
		t.Fatalf("Run() failed: %v", result.Error)
	}
	if len(result.OutputFiles()) != 0 {
		t.Errorf("OutputFiles() = %v, want none", result.OutputFiles())
	}
	if _, err := os.Stat(cfg.OutputDir); !os.IsNotExist(err) {
		t.Errorf("output dir exists after dry run: %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"unsupported", "controls.txt"},
		{"missing_csv", "missing.csv"},
		{"missing_xlsx", "missing.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.path)
			result := newTestConverter(path, testConfig(t)).Run()
			if result.Success || result.Error == nil {
				t.Errorf("Run() succeeded for %s", tt.path)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	clean := newTestConverter(writeInput(t, "eucs.csv", sheetCSV), testConfig(t)).Check()
	if !clean.Success {
		t.Errorf("Check() clean = %v, %v", clean.Success, clean.Error)
	}

	cfg := testConfig(t)
	dirty := newTestConverter(writeInput(t, "eucs.csv", sheetCSV+",,,,stray text,,,\n"), cfg).Check()
	if dirty.Success || dirty.Error != nil {
		t.Errorf("Check() dirty = %v, %v", dirty.Success, dirty.Error)
	}
	if _, err := os.Stat(cfg.OutputDir); !os.IsNotExist(err) {
		t.Errorf("Check() wrote output: %v", err)
	}
}
