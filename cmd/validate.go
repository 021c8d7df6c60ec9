// =============================================================================
// EUCS to OSCAL Converter - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   eucs2oscal validate --input <file>
//
// Reads and builds the hierarchy, prints every row issue and validation
// finding, and writes nothing. Exits non-zero when any row issue exists.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/converter"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/logging"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/validation"
	"github.com/spf13/cobra"
)

var validateInput string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the EUCS spreadsheet without writing output",
	RunE: func(cmd *cobra.Command, args []string) error {
		mainConfig, err := loadConfig()
		if err != nil {
			return err
		}

		result := converter.New(validateInput, mainConfig, logging.Logger).Check()
		if result.Error != nil {
			return result.Error
		}

		for _, issue := range result.Issues {
			errColor.Printf("  ✗ %s\n", issue.Error())
		}
		for _, finding := range result.Findings {
			if finding.Severity == validation.SeverityNote {
				fmt.Printf("  · %s\n", finding.Error())
			} else {
				warnColor.Printf("  ! %s\n", finding.Error())
			}
		}

		st := result.Stats.Catalog
		fmt.Printf("%d categories, %d controls, %d requirements from %d rows\n",
			st.Categories, st.Controls, st.Requirements, result.Stats.RowsRead)

		if !result.Success {
			return fmt.Errorf("%d row issue(s) found", len(result.Issues))
		}
		okColor.Println("  ✓ no row issues")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "EUCS spreadsheet (.xlsx, .xlsm or .csv)")
	_ = validateCmd.MarkFlagRequired("input")
}
