package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseReader(t *testing.T) {
	input := "\ufeffEUCS Category,EUCS Control,EUCS Requirement,Title,Description,Basic,Substantial,High\n" +
		"OIS,,,Organisation,,,,\n" +
		",,,,,,,\n" +
		"OIS,OIS-01,,,\"Objective, with comma\"\n" +
		"OIS,OIS-01,OIS-01.1B,,Req,x,x,x\n"

	data, err := ParseReader(strings.NewReader(input), DefaultSettings())
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}

	if data.Headers[0] != "EUCS Category" {
		t.Errorf("Headers[0] = %q, BOM not stripped", data.Headers[0])
	}
	if len(data.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(data.Rows))
	}

	// The blank line 3 is dropped but positions keep counting.
	wantPositions := []int{2, 4, 5}
	for i, row := range data.Rows {
		if row.Position != wantPositions[i] {
			t.Errorf("row %d position = %d, want %d", i, row.Position, wantPositions[i])
		}
	}
	if got := data.Rows[1].Value("Description"); got != "Objective, with comma" {
		t.Errorf("Description = %q", got)
	}
	if data.Rows[1].Has("Basic") {
		t.Error("ragged row should lack trailing columns")
	}
}

func TestParseSemicolon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "controls.csv")
	content := "EUCS Category;Title\nOIS;Organisation\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := Parse(path, Settings{Delimiter: ';'})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if data.SourceFile != path {
		t.Errorf("SourceFile = %q", data.SourceFile)
	}
	if got := data.Rows[0].Value("Title"); got != "Organisation" {
		t.Errorf("Title = %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := ParseReader(strings.NewReader(""), DefaultSettings()); err == nil {
		t.Error("empty input: error = nil")
	}
	if _, err := Parse(filepath.Join(t.TempDir(), "missing.csv"), DefaultSettings()); err == nil {
		t.Error("missing file: error = nil")
	}
}
