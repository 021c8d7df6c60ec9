// =============================================================================
// EUCS to OSCAL Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   eucs2oscal convert -i <file>  - Write the OSCAL catalog and level profiles
//   eucs2oscal validate -i <file> - Report sheet problems without writing
//   eucs2oscal version            - Display the application version
//
// ARCHITECTURE:
//   - cmd/                : CLI command definitions (Cobra)
//   - internal/hierarchy  : Row classification, tree building, level filtering
//   - internal/oscal      : OSCAL catalog and profile assembly
//   - internal/xlsxparser : Workbook reader
//   - internal/csvparser  : CSV export reader
//   - internal/validation : Sheet and tree checks
//   - internal/converter  : The conversion pipeline
//   - pkg/utils           : Output files and issue log
//
// =============================================================================

package main

import (
	"github.com/majdi-m01/eucs-spreadsheet-to-oscal/cmd"
)

func main() {
	cmd.Execute()
}
