// =============================================================================
// EUCS to OSCAL Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the entire
// pipeline for one controls spreadsheet, from reading the sheet to writing
// the OSCAL documents.
//
// CONVERSION PIPELINE:
//   1. Read the controls sheet (XLSX workbook or CSV export)
//   2. Classify the rows and build the Category/Control/Requirement tree
//   3. Validate the sheet and the tree
//   4. Filter the tree at every severity level
//   5. Assemble the catalog and the three profiles
//   6. Write the documents and the issue log
//
// CONCURRENCY:
//   The tree is built once and only read afterwards. The per-level profile
//   steps run in their own goroutines.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/config"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/csvparser"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/hierarchy"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/oscal"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/validation"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/xlsxparser"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// ErrRowIssues is returned when FailOnIssues is set and rows were skipped.
var ErrRowIssues = errors.New("spreadsheet has rows that could not be placed")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of converting a single spreadsheet.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// SheetName is the worksheet that was read. Empty for CSV input.
	SheetName string

	// CatalogFile is the path of the written catalog.
	// This is empty on failure and in dry runs.
	CatalogFile string

	// ProfileFiles are the written profile paths, by level.
	ProfileFiles map[hierarchy.Severity]string

	// IssueLog is the path of the issue log, when one was written.
	IssueLog string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Issues are the rows the builder skipped or flagged.
	Issues []hierarchy.RowIssue

	// Findings are the validation warnings and notes.
	Findings []*validation.ValidationError

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsRead is the number of non-empty data rows.
	RowsRead int

	// SkippedRows is the number of rows left out of the tree.
	SkippedRows int

	// Catalog counts the entities of the full tree.
	Catalog hierarchy.Stats

	// Levels counts the entities of each filtered tree.
	Levels map[hierarchy.Severity]hierarchy.Stats

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// OutputFiles lists every written file: catalog, profiles in level order,
// then the issue log.
func (r Result) OutputFiles() []string {
	var files []string
	if r.CatalogFile != "" {
		files = append(files, r.CatalogFile)
	}
	for _, level := range hierarchy.Severities {
		if path, ok := r.ProfileFiles[level]; ok {
			files = append(files, path)
		}
	}
	if r.IssueLog != "" {
		files = append(files, r.IssueLog)
	}
	return files
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the conversion of a single controls spreadsheet.
type Converter struct {
	// inputPath is the path to the input workbook or CSV file.
	inputPath string

	// mainConfig is the main application configuration.
	mainConfig *config.MainConfig

	// DryRun runs the whole pipeline but writes nothing.
	DryRun bool

	// now stamps the documents and the issue log.
	now func() time.Time

	logger Logger
}

// Logger is an interface for logging. *zap.SugaredLogger satisfies it.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - inputPath: The .xlsx, .xlsm or .csv file to convert.
//   - mainConfig: The main application configuration.
//   - logger: Where progress and issues are logged.
func New(inputPath string, mainConfig *config.MainConfig, logger Logger) *Converter {
	return &Converter{
		inputPath:  inputPath,
		mainConfig: mainConfig,
		now:        time.Now,
		logger:     logger,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run executes the conversion pipeline for the file.
//
// Row issues never fail the run unless FailOnIssues is set, in which case
// the run stops before any file is written.
func (c *Converter) Run() (result Result) {
	startTime := c.now()
	result, h := c.analyze()
	defer func() { result.Stats.ProcessingTime = c.now().Sub(startTime) }()
	if result.Error != nil {
		return result
	}

	if c.mainConfig.FailOnIssues && result.Stats.SkippedRows > 0 {
		result.Error = fmt.Errorf("%w: %d row(s) skipped", ErrRowIssues, result.Stats.SkippedRows)
		return result
	}

	// =========================================================================
	// FILTER AND ASSEMBLE
	// =========================================================================

	views := hierarchy.FilterAll(h)
	result.Stats.Levels = make(map[hierarchy.Severity]hierarchy.Stats, len(views))
	for level, view := range views {
		result.Stats.Levels[level] = view.Stats()
	}

	now := c.now().UTC()
	fm := utils.NewFileManager(c.mainConfig.OutputDir)
	fm.Now = c.now

	catalogName := fm.GenerateOutputFileName(c.mainConfig.CatalogFileFormat, c.nameParams(""))
	catalog := oscal.NewCatalog(h, c.mainConfig, now)

	if c.DryRun {
		c.logger.Infof("Dry run: %s and %d profile(s) not written", catalogName, len(views))
		result.Success = true
		return result
	}

	// =========================================================================
	// WRITE OUTPUT FILES
	// =========================================================================

	if err := fm.EnsureDirectories(); err != nil {
		result.Error = err
		return result
	}

	catalogPath, err := fm.WriteJSON(catalogName, catalog)
	if err != nil {
		result.Error = fmt.Errorf("failed to write catalog: %w", err)
		return result
	}
	result.CatalogFile = catalogPath
	c.logger.Infof("Wrote catalog to: %s", catalogPath)

	profiles, err := c.writeProfiles(fm, views, catalogName, now)
	if err != nil {
		result.Error = err
		return result
	}
	result.ProfileFiles = profiles

	if c.mainConfig.IssueLogEnabled() {
		logPath, err := fm.WriteIssueLog(c.inputPath, issueLogEntries(result.Issues, result.Findings))
		if err != nil {
			c.logger.Warnf("Failed to write issue log: %v", err)
		}
		result.IssueLog = logPath
	}

	result.Success = true
	return result
}

// Check reads, builds and validates the spreadsheet without assembling or
// writing anything. Success is false when any row issue was recorded.
func (c *Converter) Check() Result {
	startTime := c.now()
	result, _ := c.analyze()
	result.Stats.ProcessingTime = c.now().Sub(startTime)
	if result.Error == nil {
		result.Success = len(result.Issues) == 0
	}
	return result
}

// analyze runs the read, build and validate steps shared by Run and Check.
func (c *Converter) analyze() (Result, *hierarchy.Hierarchy) {
	result := Result{FilePath: c.inputPath}

	c.logger.Infof("Processing file: %s", c.inputPath)

	headers, rows, sheetName, err := c.readInput()
	if err != nil {
		result.Error = err
		return result, nil
	}
	result.SheetName = sheetName
	result.Stats.RowsRead = len(rows)
	c.logger.Debugf("Read %d rows", len(rows))

	h, issues := hierarchy.BuildWith(c.mainConfig.Classifier(), rows)
	result.Issues = issues
	result.Stats.Catalog = h.Stats()
	for _, issue := range issues {
		if issue.Kind.Skipped() {
			result.Stats.SkippedRows++
		}
		c.logger.Warnf("Row issue: %s", issue.Error())
	}
	c.logger.Debugf("Built %d categories, %d controls, %d requirements",
		result.Stats.Catalog.Categories, result.Stats.Catalog.Controls, result.Stats.Catalog.Requirements)

	validator := validation.NewValidator(c.mainConfig.HierarchyColumns())
	findings := validator.ValidateAll(headers, rows, h)
	result.Findings = findings.Errors
	for _, finding := range findings.Errors {
		if finding.Severity == validation.SeverityNote {
			c.logger.Debugf("Validation note: %s", finding.Error())
		} else {
			c.logger.Warnf("Validation warning: %s", finding.Error())
		}
	}

	return result, h
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readInput dispatches on the file extension.
func (c *Converter) readInput() (headers []string, rows []hierarchy.Row, sheetName string, err error) {
	switch ext := strings.ToLower(filepath.Ext(c.inputPath)); ext {
	case ".xlsx", ".xlsm":
		sheet, err := xlsxparser.Parse(c.inputPath, c.mainConfig.SheetKeyword)
		if err != nil {
			return nil, nil, "", fmt.Errorf("failed to read workbook: %w", err)
		}
		if sheet.Fallback {
			c.logger.Warnf("No sheet name contains %q, using %q", c.mainConfig.SheetKeyword, sheet.Name)
		}
		return sheet.Headers, sheet.Rows, sheet.Name, nil

	case ".csv":
		data, err := csvparser.Parse(c.inputPath, csvparser.DefaultSettings())
		if err != nil {
			return nil, nil, "", fmt.Errorf("failed to read CSV: %w", err)
		}
		return data.Headers, data.Rows, "", nil

	default:
		return nil, nil, "", fmt.Errorf("unsupported input format %q (want .xlsx, .xlsm or .csv)", ext)
	}
}

// writeProfiles assembles and writes one profile per level concurrently.
func (c *Converter) writeProfiles(fm *utils.FileManager, views map[hierarchy.Severity]*hierarchy.Hierarchy, catalogHref string, now time.Time) (map[hierarchy.Severity]string, error) {
	var (
		mu    sync.Mutex
		g     errgroup.Group
		paths = make(map[hierarchy.Severity]string, len(views))
	)

	for _, level := range hierarchy.Severities {
		g.Go(func() error {
			profile := oscal.NewProfile(views[level], level, catalogHref, c.mainConfig, now)
			name := fm.GenerateOutputFileName(c.mainConfig.ProfileFileFormat, c.nameParams(level.String()))

			path, err := fm.WriteJSON(name, profile)
			if err != nil {
				return fmt.Errorf("failed to write %s profile: %w", level, err)
			}
			c.logger.Infof("Wrote %s profile to: %s", level, path)

			mu.Lock()
			paths[level] = path
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func (c *Converter) nameParams(level string) map[string]string {
	params := map[string]string{"version": c.mainConfig.EUCSVersion}
	if level != "" {
		params["level"] = level
	}
	return params
}

// issueLogEntries flattens row issues and findings for the issue log.
func issueLogEntries(issues []hierarchy.RowIssue, findings []*validation.ValidationError) []utils.IssueLogEntry {
	entries := make([]utils.IssueLogEntry, 0, len(issues)+len(findings))
	for _, issue := range issues {
		entries = append(entries, utils.IssueLogEntry{
			Source:    "row",
			Kind:      issue.Kind.String(),
			Message:   issue.Reason,
			RowNumber: issue.Position,
		})
	}
	for _, finding := range findings {
		entries = append(entries, utils.IssueLogEntry{
			Source:     "validation",
			Kind:       finding.Severity + " " + finding.Rule,
			Message:    finding.Message,
			RowNumber:  finding.RowNumber,
			FieldName:  finding.Field,
			FieldValue: finding.Value,
		})
	}
	return entries
}
