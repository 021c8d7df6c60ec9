// =============================================================================
// EUCS to OSCAL Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (eucs2oscal)
//   ├── convertCmd  (eucs2oscal convert)
//   ├── validateCmd (eucs2oscal validate)
//   └── versionCmd  (eucs2oscal version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Setting up logging before any subcommand runs
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/config"
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/internal/logging"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// A missing file is not an error: the built-in defaults are used.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "eucs2oscal",
	Short: "EUCS to OSCAL Converter - Turn the EUCS controls spreadsheet into an OSCAL catalog and profiles",
	Long: `eucs2oscal reads the EUCS (European Cybersecurity Certification Scheme for
Cloud Services) controls spreadsheet and produces:

  - one OSCAL catalog with every category, control and requirement
  - one OSCAL profile per assurance level (Basic, Substantial, High)
    selecting the controls that apply at that level

Example Usage:
  eucs2oscal convert -i EUCS.xlsx                 # Write catalog and profiles to the current directory
  eucs2oscal convert -i EUCS.xlsx -o out --strict # Fail when rows cannot be placed
  eucs2oscal validate -i EUCS.csv                 # Report problems without writing anything`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.InitLogger(verbose); err != nil {
			return fmt.Errorf("failed to initialise logging: %w", err)
		}
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the file named by --config.
func loadConfig() (*config.MainConfig, error) {
	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}
	logging.Logger.Debugf("Configuration loaded from %s", cfgFile)
	return mainConfig, nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
