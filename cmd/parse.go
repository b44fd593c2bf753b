// =============================================================================
// Settlement Report Parser - Parse Command
// =============================================================================
//
// The 'parse' command parses one settlement report and writes it in the
// chosen export format, to stdout or to --output.
//
// COMMAND USAGE:
//   settlement parse <file|-> [flags]
//
// FLAGS:
//   --output, -o  : Write to this file instead of stdout
//   --strict      : Fail on non-numeric amounts instead of storing zero
//   --strategy    : Field scanning strategy (split or cursor)
//   --encoding    : Input character encoding
//   --shape       : Settlement shape in the output (auto, list, single)
//   --indent      : Indentation width for text formats
//
// When --output is given without --format, the format is taken from the
// output file extension.
//
// =============================================================================

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/settlement-report-parser/internal/converter"
	"github.com/ginjaninja78/settlement-report-parser/internal/export"
	"github.com/ginjaninja78/settlement-report-parser/internal/report"
	"github.com/ginjaninja78/settlement-report-parser/internal/source"
)

var (
	parseOutput string
	parseStrict bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file|->",
	Short: "Parse one settlement report and export it",
	Long: `Parse one settlement report and write it as JSON (default), YAML, XML,
XLSX or PDF. Use "-" to read the report from stdin.

Non-numeric amounts are stored as zero and reported as warnings unless
--strict is given, in which case the first one aborts the parse.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	flags := parseCmd.Flags()
	flags.StringVarP(&parseOutput, "output", "o", "", "Write the document to this file instead of stdout")
	flags.BoolVar(&parseStrict, "strict", false, "Fail on non-numeric amounts")
	flags.String("strategy", "", "Field scanning strategy: split or cursor")
	flags.String("encoding", "", "Input encoding, e.g. utf-8, windows-1252")
	flags.String("shape", "", "Settlement shape: auto, list or single")
	flags.Int("indent", 0, "Indentation width for text formats")
}

func runParse(cmd *cobra.Command, path string) error {
	cfg := appConfig
	if parseStrict {
		cfg.Parsing.NumericPolicy = report.NumericStrict.String()
	}

	if parseOutput != "" && !cmd.Flags().Changed("format") {
		if format, ok := formatForPath(parseOutput); ok {
			cfg.OutputFormat = format
		}
	}
	exporter, err := export.Lookup(cfg.OutputFormat)
	if err != nil {
		return err
	}

	var rep *report.Report
	if path == "-" {
		text, err := source.Read(cmd.InOrStdin(), cfg.Parsing.Encoding)
		if err != nil {
			return err
		}
		opts := cfg.ScannerOptions()
		opts.Logger = appLog.Zerolog()
		if rep, err = report.NewScanner(opts).Parse(text); err != nil {
			return err
		}
	} else if rep, err = converter.ParseFile(path, cfg, appLog.Zerolog()); err != nil {
		return err
	}

	if n := len(rep.Warnings); n > 0 {
		appLog.Warn().Int("count", n).Msg("non-numeric values were stored as zero")
	}

	var out io.Writer = cmd.OutOrStdout()
	if parseOutput != "" {
		if err := os.MkdirAll(filepath.Dir(parseOutput), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := os.Create(parseOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	if err := exporter.Export(w, rep, cfg.ExportOptions()); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	appLog.Info().
		Str("format", exporter.Format()).
		Int("settlements", len(rep.Settlements)).
		Int("fees", len(rep.Fees)).
		Int("transactions", len(rep.Transactions)).
		Msg("report parsed")
	return nil
}

// formatForPath returns the export format whose extension matches path.
func formatForPath(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yml" {
		ext = ".yaml"
	}
	for _, name := range export.Formats() {
		e, err := export.Lookup(name)
		if err == nil && e.Extension() == ext {
			return name, true
		}
	}
	return "", false
}
