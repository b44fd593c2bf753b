// =============================================================================
// Settlement Report Parser - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   settlement version
//
// OUTPUT:
//   Settlement Report Parser
//   Version:    1.0.0
//   Build Date: 2026-01-01
//   Go Version: go1.24.11
//   Formats:    json, pdf, xml, xlsx, yaml
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/settlement-report-parser/internal/export"
	"github.com/ginjaninja78/settlement-report-parser/internal/source"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// Set at build time:
//   go build -ldflags "-X 'github.com/ginjaninja78/settlement-report-parser/cmd.Version=1.0.0'"

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, Go runtime version and the supported formats.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Settlement Report Parser")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
		fmt.Fprintf(out, "Formats:    %s\n", strings.Join(export.Formats(), ", "))
		fmt.Fprintf(out, "Encodings:  %s\n", strings.Join(source.Encodings(), ", "))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
