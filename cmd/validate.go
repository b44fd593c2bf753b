// =============================================================================
// Settlement Report Parser - Validate Command
// =============================================================================
//
// The 'validate' command parses reports and runs the report checks without
// exporting anything. It exits non-zero when any report fails to parse or
// is invalid.
//
// COMMAND USAGE:
//   settlement validate <file>... [flags]
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/settlement-report-parser/internal/converter"
	"github.com/ginjaninja78/settlement-report-parser/internal/validation"
	"github.com/ginjaninja78/settlement-report-parser/pkg/utils"
)

var validateErrorLog string

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Parse reports and check them without exporting",
	Long: `Parse each report and run the validation rules: required identifiers,
Gross + Fee + Refund = Net, declared transaction counts, currency
consistency and date formats. Findings are printed per file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	flags := validateCmd.Flags()
	flags.String("strategy", "", "Field scanning strategy: split or cursor")
	flags.String("encoding", "", "Input encoding, e.g. utf-8, windows-1252")
	flags.StringVar(&validateErrorLog, "error-log", "", "Also write the findings of each invalid file below this directory")
}

func runValidate(cmd *cobra.Command, files []string) error {
	out := cmd.OutOrStdout()
	failed := 0

	for _, path := range files {
		rep, err := converter.ParseFile(path, appConfig, appLog.Zerolog())
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s: FAILED (%s)\n  %v\n\n", path, converter.ErrorType(err), err)
			continue
		}

		result := converter.ValidateReport(rep, appConfig)
		status := "OK"
		if !result.IsValid {
			status = "INVALID"
			failed++
		}
		fmt.Fprintf(out, "%s: %s (%d records, %d error(s), %d warning(s))\n",
			path, status, result.RecordsValidated, result.ErrorCount, result.WarningCount)
		if len(result.Errors) > 0 {
			fmt.Fprintf(out, "%s\n", validation.FormatErrors(result.Errors))
		}

		if !result.IsValid && validateErrorLog != "" {
			logPath := filepath.Join(validateErrorLog, utils.BaseName(path)+"_validation.txt")
			if err := validation.WriteErrorLog(result.Errors, path, logPath); err != nil {
				appLog.Warn().Err(err).Str("file", path).Msg("failed to write validation log")
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d report(s) failed validation", failed, len(files))
	}
	return nil
}
