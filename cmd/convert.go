// =============================================================================
// EUCS to OSCAL Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, the main command of the tool.
//
// COMMAND USAGE:
//   eucs2oscal convert --input <file> [flags]
//
// FLAGS:
//   --input, -i        : The EUCS spreadsheet (.xlsx, .xlsm or .csv)
//   --output, -o       : Output directory (overrides output_dir)
//   --eucs-version, -e : Version used in file names (overrides eucs_version)
//   --strict           : Fail before writing when rows cannot be placed
//   --dry-run          : Run the pipeline without writing output files
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/config"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/converter"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/hierarchy"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/logging"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	inputPath   string
	outputDir   string
	eucsVersion string
	strict      bool
	dryRun      bool
)

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	errColor   = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
	titleColor = color.New(color.FgCyan, color.Bold)
)

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the EUCS spreadsheet to an OSCAL catalog and profiles",
	Long: `The convert command reads the controls sheet, builds the category, control
and requirement hierarchy, and writes:

  - the catalog (catalog_file_format)
  - one profile per level (profile_file_format)
  - an issue log, when rows were skipped or validation found problems

Rows that cannot be placed are skipped and reported. With --strict the run
fails before anything is written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		mainConfig, err := loadConfig()
		if err != nil {
			return err
		}
		applyConvertFlags(cmd, mainConfig)
		return runConvert(mainConfig)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&inputPath, "input", "i", "", "EUCS spreadsheet (.xlsx, .xlsm or .csv)")
	convertCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default from config)")
	convertCmd.Flags().StringVarP(&eucsVersion, "eucs-version", "e", "", "EUCS version used in output file names (default from config)")
	convertCmd.Flags().BoolVar(&strict, "strict", false, "Fail without writing when rows cannot be placed")
	convertCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the pipeline without writing output files")
	_ = convertCmd.MarkFlagRequired("input")
}

// applyConvertFlags lets explicitly set flags override the configuration.
func applyConvertFlags(cmd *cobra.Command, mainConfig *config.MainConfig) {
	if cmd.Flags().Changed("output") {
		mainConfig.OutputDir = outputDir
	}
	if cmd.Flags().Changed("eucs-version") {
		mainConfig.EUCSVersion = eucsVersion
	}
	if strict {
		mainConfig.FailOnIssues = true
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runConvert(mainConfig *config.MainConfig) error {
	titleColor.Println("=== EUCS to OSCAL Converter ===")

	conv := converter.New(inputPath, mainConfig, logging.Logger)
	conv.DryRun = dryRun
	result := conv.Run()

	printSummary(result)

	if !result.Success {
		return result.Error
	}
	return nil
}

// printSummary writes the colored end-of-run report to stdout.
func printSummary(result converter.Result) {
	name := filepath.Base(result.FilePath)
	if result.Success {
		okColor.Printf("  ✓ %s", name)
	} else {
		errColor.Printf("  ✗ %s: %v", name, result.Error)
	}
	fmt.Println()

	if result.SheetName != "" {
		fmt.Printf("Sheet:           %s\n", result.SheetName)
	}
	st := result.Stats
	fmt.Printf("Rows read:       %d\n", st.RowsRead)
	fmt.Printf("Categories:      %d\n", st.Catalog.Categories)
	fmt.Printf("Controls:        %d\n", st.Catalog.Controls)
	fmt.Printf("Requirements:    %d\n", st.Catalog.Requirements)
	for _, level := range hierarchy.Severities {
		if ls, ok := st.Levels[level]; ok {
			fmt.Printf("%-16s %d controls, %d requirements\n", level.String()+":", ls.Controls, ls.Requirements)
		}
	}

	if n := len(result.Issues); n > 0 {
		warnColor.Printf("Row issues:      %d (%d skipped)\n", n, st.SkippedRows)
	}
	if n := len(result.Findings); n > 0 {
		warnColor.Printf("Findings:        %d\n", n)
	}

	for _, file := range result.OutputFiles() {
		fmt.Printf("  -> %s\n", file)
	}
	fmt.Printf("Time elapsed:    %s\n", st.ProcessingTime)
}
