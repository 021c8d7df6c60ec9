package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	fm := NewFileManager(filepath.Join(t.TempDir(), "out"))
	fm.Now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	if err := fm.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	return fm
}

func TestGenerateOutputFileName(t *testing.T) {
	fm := newTestManager(t)

	tests := []struct {
		name   string
		format string
		params map[string]string
		want   string
	}{
		{"catalog", "EUCS_controls_version_{version}_catalog.json", map[string]string{"version": "1.0"}, "EUCS_controls_version_1.0_catalog.json"},
		{"profile", "EUCS_version_{version}_profile_{level}.json", map[string]string{"version": "2", "level": "High"}, "EUCS_version_2_profile_High.json"},
		{"timestamp", "catalog_{timestamp}", nil, "catalog_20240501_093000.json"},
		{"date", "catalog_{date}.JSON", nil, "catalog_20240501.JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fm.GenerateOutputFileName(tt.format, tt.params); got != tt.want {
				t.Errorf("GenerateOutputFileName() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := fm.GenerateOutputFileName("{uuid}", nil); len(got) != len("00000000-0000-0000-0000-000000000000.json") {
		t.Errorf("uuid name = %q", got)
	}
}

func TestWriteJSON(t *testing.T) {
	fm := newTestManager(t)

	path, err := fm.WriteJSON("doc.json", map[string]string{"catalog": "x"})
	if err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["catalog"] != "x" {
		t.Errorf("got %v", got)
	}
	if FileExists(path + ".tmp") {
		t.Error("temporary file left behind")
	}
}

func TestWriteIssueLog(t *testing.T) {
	fm := newTestManager(t)

	path, err := fm.WriteIssueLog("in.xlsx", nil)
	if err != nil || path != "" {
		t.Fatalf("empty log: path=%q err=%v", path, err)
	}

	path, err = fm.WriteIssueLog("in.xlsx", []IssueLogEntry{
		{Source: "row", Kind: "orphan control", Message: "no category", RowNumber: 3},
		{Source: "validation", Kind: "severity-mark", Message: "odd", FieldName: "High", FieldValue: "tbd"},
	})
	if err != nil {
		t.Fatalf("WriteIssueLog() error = %v", err)
	}
	if filepath.Base(path) != "issue_log_20240501_093000.txt" {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	log := string(data)
	for _, want := range []string{"Total Issues: 2", "Row Number: 3", "Value:      tbd", "End of Issue Log"} {
		if !strings.Contains(log, want) {
			t.Errorf("log lacks %q", want)
		}
	}
}
