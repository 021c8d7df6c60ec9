// =============================================================================
// EUCS to OSCAL Converter - File Manager Utility
// =============================================================================
//
// This module provides the file handling of the converter:
//   - Output directory management
//   - Output file naming from templates
//   - JSON document writing
//   - Issue log generation
//
// OUTPUT LAYOUT:
//   <output_dir>/EUCS_controls_version_<v>_catalog.json
//   <output_dir>/EUCS_version_<v>_profile_Basic.json
//   <output_dir>/EUCS_version_<v>_profile_Substantial.json
//   <output_dir>/EUCS_version_<v>_profile_High.json
//   <output_dir>/issue_log_<timestamp>.txt        (only when issues exist)
//
// =============================================================================

package utils

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the converter.
type FileManager struct {
	// OutputDir is the directory where documents and logs are written.
	OutputDir string

	// Now returns the current time. Tests replace it.
	Now func() time.Time
}

// NewFileManager creates a new FileManager writing into outputDir.
func NewFileManager(outputDir string) *FileManager {
	return &FileManager{
		OutputDir: outputDir,
		Now:       time.Now,
	}
}

// EnsureDirectories creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands a file name template.
//
// Placeholders:
//
//	{uuid}      - A random UUID
//	{timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//	{date}      - Current date (YYYYMMDD)
//	{key}       - Any key of params, e.g. {version} or {level}
//
// The result always ends in ".json".
func (fm *FileManager) GenerateOutputFileName(format string, params map[string]string) string {
	now := fm.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".json") {
		result += ".json"
	}
	return result
}

// =============================================================================
// DOCUMENT WRITING
// =============================================================================

// WriteJSON writes v, indented, to fileName inside the output directory and
// returns the full path. The file is written to a temporary name first and
// renamed, so readers never see a partial document.
func (fm *FileManager) WriteJSON(fileName string, v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", fileName, err)
	}
	data = append(data, '\n')

	path := filepath.Join(fm.OutputDir, fileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to move %s into place: %w", fileName, err)
	}

	return path, nil
}

// =============================================================================
// ISSUE LOG GENERATION
// =============================================================================

// IssueLogEntry represents a single issue log entry.
type IssueLogEntry struct {
	// Source is "row" for builder issues, "validation" for findings.
	Source     string
	Kind       string
	Message    string
	RowNumber  int
	FieldName  string
	FieldValue string
}

// WriteIssueLog writes entries to a timestamped text file in the output
// directory. It writes nothing and returns "" when there are no entries.
func (fm *FileManager) WriteIssueLog(inputFile string, entries []IssueLogEntry) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	now := fm.Now()
	logPath := filepath.Join(fm.OutputDir, fmt.Sprintf("issue_log_%s.txt", now.Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create issue log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "EUCS to OSCAL Converter - Issue Log\n"+
		"Generated:    %s\n"+
		"Input:        %s\n"+
		"Total Issues: %d\n"+
		"================================================================================\n\n",
		now.Format("2006-01-02 15:04:05"),
		inputFile,
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Issue #%d\n", i+1)
		fmt.Fprintf(writer, "  Source:     %s\n", entry.Source)
		fmt.Fprintf(writer, "  Kind:       %s\n", entry.Kind)
		fmt.Fprintf(writer, "  Message:    %s\n", entry.Message)
		if entry.RowNumber > 0 {
			fmt.Fprintf(writer, "  Row Number: %d\n", entry.RowNumber)
		}
		if entry.FieldName != "" {
			fmt.Fprintf(writer, "  Field:      %s\n", entry.FieldName)
		}
		if entry.FieldValue != "" {
			fmt.Fprintf(writer, "  Value:      %s\n", entry.FieldValue)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Issue Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush issue log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
