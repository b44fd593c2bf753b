// =============================================================================
// Settlement Report Parser - Converter Module
// =============================================================================
//
// This module orchestrates the pipeline for a single settlement report, from
// reading the raw bytes to writing the exported document.
//
// CONVERSION PIPELINE:
//   1. Read and decode the input file
//   2. Scan the text into a typed report
//   3. Validate the report
//   4. Render the report in the configured output format
//   5. Write the output file
//   6. Archive the processed files
//
// CONCURRENCY:
//   A Converter handles one file. The process command runs several
//   converters in parallel; they share only read-only configuration.
//
// =============================================================================

package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/settlement-report-parser/internal/config"
	"github.com/ginjaninja78/settlement-report-parser/internal/export"
	"github.com/ginjaninja78/settlement-report-parser/internal/report"
	"github.com/ginjaninja78/settlement-report-parser/internal/source"
	"github.com/ginjaninja78/settlement-report-parser/internal/validation"
	"github.com/ginjaninja78/settlement-report-parser/pkg/utils"
)

// ErrValidationFailed is returned by Run when validation findings make the
// report invalid and the configuration does not allow continuing.
var ErrValidationFailed = errors.New("report failed validation")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the input file that was processed.
	FilePath string

	// OutputFile is the generated document. Empty on failure and in dry runs.
	OutputFile string

	// ArchivePath is where the input file was moved, if archiving happened.
	ArchivePath string

	Success bool

	// Error is nil when Success is true.
	Error error

	// Report is the parsed report, nil when scanning failed.
	Report *report.Report

	// Validation holds the findings, nil when validation is disabled or
	// scanning failed.
	Validation *validation.ValidationResult

	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	Settlements        int
	Fees               int
	Transactions       int
	DataQualityIssues  int
	ValidationErrors   int
	ValidationWarnings int
	ProcessingTime     time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter processes one settlement report file.
type Converter struct {
	inputPath string
	cfg       *config.MainConfig
	files     *utils.FileManager
	log       zerolog.Logger

	// DryRun parses and validates without writing or archiving anything.
	DryRun bool
}

// New creates a Converter.
//
// PARAMETERS:
//   - inputPath: The settlement report to process.
//   - cfg: The validated application configuration.
//   - files: Directory layout used for output and archiving.
//   - log: Parent logger. Nil disables logging.
func New(inputPath string, cfg *config.MainConfig, files *utils.FileManager, log *zerolog.Logger) *Converter {
	l := zerolog.Nop()
	if log != nil {
		l = log.With().Str("file", filepath.Base(inputPath)).Logger()
	}
	return &Converter{
		inputPath: inputPath,
		cfg:       cfg,
		files:     files,
		log:       l,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline and reports the outcome. It never panics on bad
// input; every failure is returned in Result.Error.
func (c *Converter) Run() (result Result) {
	startTime := time.Now()
	result = Result{FilePath: c.inputPath}
	defer func() { result.Stats.ProcessingTime = time.Since(startTime) }()

	c.log.Info().Msg("processing file")

	// =========================================================================
	// STEP 1-2: READ AND SCAN
	// =========================================================================

	rep, err := ParseFile(c.inputPath, c.cfg, &c.log)
	if err != nil {
		result.Error = err
		return result
	}
	result.Report = rep
	result.Stats.Settlements = len(rep.Settlements)
	result.Stats.Fees = len(rep.Fees)
	result.Stats.Transactions = len(rep.Transactions)
	result.Stats.DataQualityIssues = len(rep.Warnings)

	// =========================================================================
	// STEP 3: VALIDATE
	// =========================================================================

	if c.cfg.Validation.Enabled {
		vr := ValidateReport(rep, c.cfg)
		result.Validation = vr
		result.Stats.ValidationErrors = vr.ErrorCount
		result.Stats.ValidationWarnings = vr.WarningCount

		for _, ve := range vr.Errors {
			c.log.Warn().Str("rule", ve.Rule).Str("severity", ve.Severity).Msg(ve.Error())
		}

		if !vr.IsValid {
			if !c.DryRun && c.cfg.OutputDir != "" {
				logPath := filepath.Join(c.cfg.OutputDir, "validation",
					utils.BaseName(c.inputPath)+"_validation.txt")
				if err := validation.WriteErrorLog(vr.Errors, c.inputPath, logPath); err != nil {
					c.log.Warn().Err(err).Msg("failed to write validation log")
				}
			}
			if !c.cfg.ContinueOnError {
				result.Error = fmt.Errorf("%w: %d error(s), %d warning(s)",
					ErrValidationFailed, vr.ErrorCount, vr.WarningCount)
				return result
			}
		}
		c.log.Debug().Int("errors", vr.ErrorCount).Int("warnings", vr.WarningCount).Msg("validation complete")
	}

	if c.DryRun {
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 4-5: RENDER AND WRITE
	// =========================================================================

	outputPath, err := c.writeOutput(rep)
	if err != nil {
		result.Error = err
		return result
	}
	result.OutputFile = outputPath
	c.log.Info().Str("output", outputPath).Msg("wrote output")

	// =========================================================================
	// STEP 6: ARCHIVE
	// =========================================================================

	if c.files != nil {
		if archived, err := c.files.ArchiveInputFile(c.inputPath); err != nil {
			c.log.Warn().Err(err).Msg("failed to archive input file")
		} else {
			result.ArchivePath = archived
		}
		if _, err := c.files.ArchiveOutputFile(outputPath); err != nil {
			c.log.Warn().Err(err).Msg("failed to archive output file")
		}
	}

	result.Success = true
	return result
}

func (c *Converter) writeOutput(rep *report.Report) (string, error) {
	exporter, err := export.Lookup(c.cfg.OutputFormat)
	if err != nil {
		return "", err
	}

	// Render fully before touching the file system.
	var buf bytes.Buffer
	if err := exporter.Export(&buf, rep, c.cfg.ExportOptions()); err != nil {
		return "", fmt.Errorf("failed to export %s: %w", exporter.Format(), err)
	}

	outputDir := c.cfg.OutputDir
	if c.files != nil && c.files.OutputDir != "" {
		outputDir = c.files.OutputDir
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := utils.GenerateOutputFileName(c.cfg.OutputNameFormat, exporter.Extension(),
		map[string]string{"name": utils.BaseName(c.inputPath)})
	outputPath := filepath.Join(outputDir, name)

	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write output: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// SHARED STEPS
// =============================================================================

// ParseFile reads path with the configured encoding and scans it.
func ParseFile(path string, cfg *config.MainConfig, log *zerolog.Logger) (*report.Report, error) {
	text, err := source.Load(path, cfg.Parsing.Encoding)
	if err != nil {
		return nil, err
	}

	opts := cfg.ScannerOptions()
	opts.Logger = log
	rep, err := report.NewScanner(opts).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return rep, nil
}

// ValidateReport runs the validator with the configured options.
func ValidateReport(rep *report.Report, cfg *config.MainConfig) *validation.ValidationResult {
	v := validation.NewValidatorWithOptions(validation.ValidationOptions{
		TreatWarningsAsErrors: cfg.Validation.TreatWarningsAsErrors,
		StrictBalance:         cfg.Validation.StrictBalance,
		SkipRules:             cfg.Validation.SkipRules,
		DateLayout:            cfg.Validation.DateLayout,
	})
	return v.ValidateReport(rep)
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// ErrorType names the failure class of err for logs and summaries.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, report.ErrMissingRequiredData):
		return "MissingRequiredData"
	case errors.Is(err, report.ErrMalformedSection):
		return "MalformedSection"
	case errors.Is(err, report.ErrDataQuality):
		return "DataQuality"
	case errors.Is(err, source.ErrUnsupportedEncoding):
		return "Encoding"
	case errors.Is(err, ErrValidationFailed):
		return "Validation"
	case errors.Is(err, export.ErrSettlementShape), errors.Is(err, export.ErrUnknownFormat):
		return "Export"
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return "FileAccess"
	}
	return "Processing"
}

// ErrorEntry converts a failed result into an error log entry, carrying the
// line and section of scanner errors.
func ErrorEntry(r Result) utils.ErrorLogEntry {
	entry := utils.ErrorLogEntry{
		Timestamp: time.Now(),
		FileName:  r.FilePath,
		ErrorType: ErrorType(r.Error),
	}
	if r.Error != nil {
		entry.ErrorMessage = r.Error.Error()
	}

	var malformed *report.MalformedSectionError
	var quality *report.DataQualityError
	switch {
	case errors.As(r.Error, &malformed):
		entry.Line = malformed.Line
		entry.Section = malformed.Sentinel
		entry.FieldValue = malformed.Got
	case errors.As(r.Error, &quality):
		entry.Line = quality.Warning.Line
		entry.Section = quality.Warning.Section
		entry.FieldName = quality.Warning.Field
		entry.FieldValue = quality.Warning.Value
	}
	return entry
}
