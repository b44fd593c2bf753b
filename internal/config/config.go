// =============================================================================
// Settlement Report Parser - Configuration Module
// =============================================================================
//
// This module loads the YAML configuration that drives the batch pipeline
// and the single-file commands. Values are resolved in three layers:
//
//   1. Built-in defaults (Default)
//   2. The YAML file (config.yaml unless --config points elsewhere)
//   3. Environment variables (SETTLEMENT_*) and explicitly set command line
//      flags, applied through viper by ApplyOverrides
//
// Environment keys are the YAML keys upper-cased with dots replaced by
// underscores, e.g. parsing.numeric_policy -> SETTLEMENT_PARSING_NUMERIC_POLICY.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/settlement-report-parser/internal/export"
	"github.com/ginjaninja78/settlement-report-parser/internal/report"
	"github.com/ginjaninja78/settlement-report-parser/internal/source"
	"github.com/ginjaninja78/settlement-report-parser/internal/validation"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "SETTLEMENT"

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// MainConfig is the application configuration.
type MainConfig struct {
	// InputDir is scanned for settlement reports by the process command.
	InputDir string `yaml:"input_dir"`

	// OutputDir receives exported documents.
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives processed input files (moved).
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives copies of exported documents.
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// InputPattern selects report files inside InputDir (filepath.Match syntax).
	InputPattern string `yaml:"input_pattern"`

	// Recursive makes discovery walk subdirectories of InputDir.
	Recursive bool `yaml:"recursive"`

	// LogFile, when non-empty, receives a JSON copy of every log entry.
	LogFile string `yaml:"log_file"`

	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is console or json.
	LogFormat string `yaml:"log_format"`

	// OutputFormat is the export format (json, yaml, xml, xlsx, pdf).
	OutputFormat string `yaml:"output_format"`

	// OutputNameFormat is the output file name without extension. The
	// placeholders {name} (input base name), {uuid} and {date} are expanded.
	OutputNameFormat string `yaml:"output_name_format"`

	// MaxConcurrency bounds the number of reports processed in parallel.
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps the batch going when one report fails.
	ContinueOnError bool `yaml:"continue_on_error"`

	// ArchiveByDate stores archived files in YYYY/MM/DD subdirectories.
	ArchiveByDate bool `yaml:"archive_by_date"`

	// RetentionDays deletes archived files older than this many days after
	// each batch run. Zero keeps everything.
	RetentionDays int `yaml:"retention_days"`

	Parsing    ParsingConfig    `yaml:"parsing"`
	Export     ExportConfig     `yaml:"export"`
	Validation ValidationConfig `yaml:"validation"`
}

// ParsingConfig controls how report text is obtained and scanned.
type ParsingConfig struct {
	// NumericPolicy is lenient (non-numeric amounts become zero with a
	// warning) or strict (the parse fails).
	NumericPolicy string `yaml:"numeric_policy"`

	// Strategy is split or cursor.
	Strategy string `yaml:"strategy"`

	// Encoding of the input files, see source.Encodings.
	Encoding string `yaml:"encoding"`
}

// ExportConfig controls rendering.
type ExportConfig struct {
	// SettlementShape is auto, list or single.
	SettlementShape string `yaml:"settlement_shape"`

	// Indent is the number of spaces per level for text formats.
	Indent int `yaml:"indent"`
}

// ValidationConfig controls the post-parse report checks.
type ValidationConfig struct {
	Enabled bool `yaml:"enabled"`

	// TreatWarningsAsErrors fails a report that only has warnings.
	TreatWarningsAsErrors bool `yaml:"treat_warnings_as_errors"`

	// StrictBalance makes Gross + Fee + Refund != Net an error instead of
	// a warning.
	StrictBalance bool `yaml:"strict_balance"`

	// SkipRules disables validation rules by name, e.g. balance.
	SkipRules []string `yaml:"skip_rules"`

	// DateLayout is the Go time layout report dates are checked against.
	DateLayout string `yaml:"date_layout"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns the built-in configuration.
func Default() *MainConfig {
	cfg := &MainConfig{
		ArchiveByDate:   true,
		ContinueOnError: true,
		Validation:      ValidationConfig{Enabled: true},
	}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration file at path on top of Default.
//
// PARAMETERS:
//   - path: The YAML file.
//   - required: When false a missing file yields the defaults. Set it when
//     the user named the file explicitly.
//
// RETURNS:
//   - The validated configuration.
//   - An error if the file cannot be read, parsed or fails validation.
func Load(path string, required bool) (*MainConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !required:
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyDefaults fills values left empty by the file.
func applyDefaults(cfg *MainConfig) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.InputArchiveDir == "" {
		cfg.InputArchiveDir = "./input_archive"
	}
	if cfg.OutputArchiveDir == "" {
		cfg.OutputArchiveDir = "./output_archive"
	}
	if cfg.InputPattern == "" {
		cfg.InputPattern = "*.csv"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "json"
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "{name}_{uuid}"
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.Parsing.NumericPolicy == "" {
		cfg.Parsing.NumericPolicy = report.NumericLenient.String()
	}
	if cfg.Parsing.Strategy == "" {
		cfg.Parsing.Strategy = report.StrategySplit.String()
	}
	if cfg.Parsing.Encoding == "" {
		cfg.Parsing.Encoding = source.DefaultEncoding
	}
	if cfg.Export.SettlementShape == "" {
		cfg.Export.SettlementShape = export.ShapeAuto.String()
	}
	if cfg.Export.Indent == 0 {
		cfg.Export.Indent = 2
	}
	if cfg.Validation.DateLayout == "" {
		cfg.Validation.DateLayout = validation.DefaultDateLayout
	}
}

// Validate checks every enumerated setting and numeric bound.
func Validate(cfg *MainConfig) error {
	var errs []error

	if _, err := report.ParseNumericPolicy(cfg.Parsing.NumericPolicy); err != nil {
		errs = append(errs, fmt.Errorf("parsing.numeric_policy: %w", err))
	}
	if _, err := report.ParseStrategy(cfg.Parsing.Strategy); err != nil {
		errs = append(errs, fmt.Errorf("parsing.strategy: %w", err))
	}
	if !source.Supported(cfg.Parsing.Encoding) {
		errs = append(errs, fmt.Errorf("parsing.encoding: %q is not one of %s",
			cfg.Parsing.Encoding, strings.Join(source.Encodings(), ", ")))
	}
	if _, err := export.ParseShape(cfg.Export.SettlementShape); err != nil {
		errs = append(errs, fmt.Errorf("export.settlement_shape: %w", err))
	}
	if cfg.Export.Indent < 0 {
		errs = append(errs, errors.New("export.indent must not be negative"))
	}
	if _, err := export.Lookup(cfg.OutputFormat); err != nil {
		errs = append(errs, fmt.Errorf("output_format: %w", err))
	}
	if cfg.MaxConcurrency < 1 {
		errs = append(errs, errors.New("max_concurrency must be at least 1"))
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, errors.New("retention_days must not be negative"))
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format: %q (want console or json)", cfg.LogFormat))
	}

	return errors.Join(errs...)
}

// =============================================================================
// OVERRIDES
// =============================================================================

// NewViper returns a viper instance reading SETTLEMENT_* environment
// variables. Commands bind their flags to it under the YAML key names.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyOverrides copies every key set in v (environment or changed flag)
// onto cfg, then re-validates.
func ApplyOverrides(cfg *MainConfig, v *viper.Viper) error {
	strs := map[string]*string{
		"input_dir":               &cfg.InputDir,
		"output_dir":              &cfg.OutputDir,
		"input_archive_dir":       &cfg.InputArchiveDir,
		"output_archive_dir":      &cfg.OutputArchiveDir,
		"input_pattern":           &cfg.InputPattern,
		"log_file":                &cfg.LogFile,
		"log_level":               &cfg.LogLevel,
		"log_format":              &cfg.LogFormat,
		"output_format":           &cfg.OutputFormat,
		"output_name_format":      &cfg.OutputNameFormat,
		"parsing.numeric_policy":  &cfg.Parsing.NumericPolicy,
		"parsing.strategy":        &cfg.Parsing.Strategy,
		"parsing.encoding":        &cfg.Parsing.Encoding,
		"export.settlement_shape": &cfg.Export.SettlementShape,
		"validation.date_layout":  &cfg.Validation.DateLayout,
	}
	ints := map[string]*int{
		"max_concurrency": &cfg.MaxConcurrency,
		"retention_days":  &cfg.RetentionDays,
		"export.indent":   &cfg.Export.Indent,
	}
	bools := map[string]*bool{
		"recursive":                           &cfg.Recursive,
		"continue_on_error":                   &cfg.ContinueOnError,
		"archive_by_date":                     &cfg.ArchiveByDate,
		"validation.enabled":                  &cfg.Validation.Enabled,
		"validation.treat_warnings_as_errors": &cfg.Validation.TreatWarningsAsErrors,
		"validation.strict_balance":           &cfg.Validation.StrictBalance,
	}

	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	for key, dst := range ints {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	for key, dst := range bools {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}
	if v.IsSet("validation.skip_rules") {
		cfg.Validation.SkipRules = v.GetStringSlice("validation.skip_rules")
	}

	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// =============================================================================
// RESOLVED OPTIONS
// =============================================================================

// ScannerOptions converts the parsing section into report.Options.
// The configuration must have passed Validate.
func (c *MainConfig) ScannerOptions() report.Options {
	policy, _ := report.ParseNumericPolicy(c.Parsing.NumericPolicy)
	strategy, _ := report.ParseStrategy(c.Parsing.Strategy)
	return report.Options{NumericPolicy: policy, Strategy: strategy}
}

// ExportOptions converts the export section into export.Options.
func (c *MainConfig) ExportOptions() export.Options {
	shape, _ := export.ParseShape(c.Export.SettlementShape)
	return export.Options{SettlementShape: shape, Indent: c.Export.Indent}
}
