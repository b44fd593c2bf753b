// =============================================================================
// Settlement Report Parser - Main Entry Point
// =============================================================================
//
// USAGE:
//   settlement parse <file>     - Parse one report and export it
//   settlement validate <file>  - Check reports without exporting
//   settlement process          - Process every report in the input directory
//   settlement version          - Display the application version
//
// ARCHITECTURE:
//   - cmd/                : CLI command definitions (Cobra)
//   - internal/report     : Section recognition and typed records
//   - internal/source     : Reading and decoding report files
//   - internal/validation : Report checks
//   - internal/export     : JSON, YAML, XML, XLSX and PDF writers
//   - internal/converter  : Single-file pipeline
//   - internal/config     : YAML configuration
//   - pkg/                : Logging and file management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/settlement-report-parser/cmd"
)

func main() {
	cmd.Execute()
}
