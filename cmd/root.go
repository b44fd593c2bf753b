// =============================================================================
// Settlement Report Parser - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand
// shares the configuration and logger built here.
//
// COBRA CLI STRUCTURE:
//   rootCmd (settlement)
//   ├── parseCmd    (settlement parse <file>)
//   ├── validateCmd (settlement validate <file>...)
//   ├── processCmd  (settlement process)
//   └── versionCmd  (settlement version)
//
// CONFIGURATION:
//   Before any subcommand runs, initConfig:
//   1. Loads the YAML file named by --config (defaults if config.yaml is absent)
//   2. Binds command line flags to configuration keys through viper
//   3. Applies SETTLEMENT_* environment variables and changed flags
//   4. Builds the zerolog logger
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/settlement-report-parser/internal/config"
	"github.com/ginjaninja78/settlement-report-parser/pkg/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// appConfig and appLog are set by initConfig before any subcommand runs.
var (
	appConfig *config.MainConfig
	appLog    *logger.Logger
)

// flagKeys maps command line flags to configuration keys. Only flags that
// exist on the running command and were changed take effect.
var flagKeys = map[string]string{
	"log-level":   "log_level",
	"log-format":  "log_format",
	"log-file":    "log_file",
	"format":      "output_format",
	"strategy":    "parsing.strategy",
	"encoding":    "parsing.encoding",
	"shape":       "export.settlement_shape",
	"indent":      "export.indent",
	"input-dir":   "input_dir",
	"output-dir":  "output_dir",
	"pattern":     "input_pattern",
	"recursive":   "recursive",
	"concurrency": "max_concurrency",
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "settlement",
	Short: "Settlement Report Parser - Turn payment settlement reports into structured documents",
	Long: `Settlement Report Parser reads the sectioned CSV settlement reports produced
by payment providers and turns them into typed records: organization,
company, settlements, fees and transactions.

Key Features:
  - Single-pass section recognition with line-accurate errors
  - Lenient or strict handling of non-numeric amounts
  - Validation of balances, transaction counts and currencies
  - Export to JSON, YAML, XML, XLSX and PDF
  - Concurrent batch processing with archiving

Example Usage:
  settlement parse report.csv                  # Print the report as JSON
  settlement parse report.csv --format xlsx -o report.xlsx
  settlement validate input/*.csv              # Check reports without exporting
  settlement process --config ./my.yaml        # Process the input directory`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one command line. The log file is released whether or not
// the command succeeds; cobra skips post-run hooks after a failed RunE.
func run(args []string) error {
	defer closeLog()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func closeLog() {
	if appLog == nil {
		return
	}
	if err := appLog.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "config.yaml", "Path to the main configuration file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.String("log-format", "", "Log format: console or json")
	flags.String("log-file", "", "Also append JSON log entries to this file")
	flags.StringP("format", "f", "", "Output format: json, yaml, xml, xlsx, pdf")
}

// initConfig resolves the configuration for cmd and builds the logger.
func initConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}

	v := config.NewViper()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	if err := config.ApplyOverrides(cfg, v); err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	lg, err := logger.New(logger.Config{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
	})
	if err != nil {
		return err
	}

	appConfig, appLog = cfg, lg
	lg.Debug().Str("config", cfgFile).Str("format", cfg.OutputFormat).Msg("configuration loaded")
	return nil
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}
