// =============================================================================
// Settlement Report Parser - Process Command
// =============================================================================
//
// This file defines the 'process' command, the batch pipeline over the
// configured input directory.
//
// COMMAND USAGE:
//   settlement process [flags]
//
// FLAGS:
//   --dry-run     : Parse and validate without writing or archiving
//   --file        : Process only this file instead of the input directory
//   --input-dir   : Override input_dir
//   --output-dir  : Override output_dir
//   --pattern     : Override input_pattern
//   --recursive   : Walk subdirectories of the input directory
//   --concurrency : Override max_concurrency
//
// PROCESSING PIPELINE:
//   1. Prepare the working directories
//   2. Discover settlement reports in the input directory
//   3. For each file (at most max_concurrency at a time):
//      a. Decode and parse the report
//      b. Validate it
//      c. Export it in the configured format
//      d. Archive the input and output
//   4. Print the summary and write the summary and error logs
//   5. Prune archives older than retention_days
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/settlement-report-parser/internal/config"
	"github.com/ginjaninja78/settlement-report-parser/internal/converter"
	"github.com/ginjaninja78/settlement-report-parser/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun parses and validates without writing output files.
var dryRun bool

// filePath restricts processing to a single file.
var filePath string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process every settlement report in the input directory",
	Long: `The process command scans the input directory for settlement reports,
parses and validates each one, and exports it in the configured format.

Files are processed concurrently. Unless continue_on_error is false, a
failure in one file does not stop the others.

On successful processing:
  - The exported document is placed in the output directory
  - The original report is moved to the input archive
  - A copy of the document is placed in the output archive

On error:
  - An error log is created in the output directory
  - The original report remains in the input directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context(), appConfig)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	flags := processCmd.Flags()
	flags.BoolVar(&dryRun, "dry-run", false, "Parse and validate without writing or archiving")
	flags.StringVar(&filePath, "file", "", "Process only this file")
	flags.String("input-dir", "", "Directory scanned for reports")
	flags.String("output-dir", "", "Directory receiving exported documents")
	flags.String("pattern", "", "File name pattern of reports, e.g. *.csv")
	flags.Bool("recursive", false, "Walk subdirectories of the input directory")
	flags.Int("concurrency", 0, "Maximum number of reports processed at once")
	flags.String("strategy", "", "Field scanning strategy: split or cursor")
	flags.String("encoding", "", "Input encoding, e.g. utf-8, windows-1252")
	flags.String("shape", "", "Settlement shape: auto, list or single")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(ctx context.Context, cfg *config.MainConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := appLog
	summary := utils.ProcessingSummary{StartTime: time.Now()}

	// =========================================================================
	// STEP 1: PREPARE DIRECTORIES
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	fm.UseTimestampSubdirs = cfg.ArchiveByDate
	fm.ArchiveOnSuccess = !dryRun
	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	switch {
	case filePath != "":
		if !utils.FileExists(filePath) {
			return fmt.Errorf("file not found: %s", filePath)
		}
		inputFiles = []string{filePath}
	case cfg.Recursive:
		files, err := fm.DiscoverInputFilesRecursive(cfg.InputPattern)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		inputFiles = files
	default:
		files, err := fm.DiscoverInputFiles(cfg.InputPattern)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		inputFiles = files
	}

	if len(inputFiles) == 0 {
		log.Info().Str("dir", cfg.InputDir).Str("pattern", cfg.InputPattern).Msg("no reports found")
		return nil
	}
	log.Info().Int("files", len(inputFiles)).Int("concurrency", cfg.MaxConcurrency).Bool("dry_run", dryRun).
		Msg("processing reports")

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================
	// Each goroutine owns one slot of results. Without continue_on_error the
	// first failure cancels files that have not started yet.

	results := make([]converter.Result, len(inputFiles))
	started := make([]bool, len(inputFiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrency)
	for i, file := range inputFiles {
		i, file := i, file
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			started[i] = true

			conv := converter.New(file, cfg, fm, log.Zerolog())
			conv.DryRun = dryRun
			results[i] = conv.Run()

			if !results[i].Success && !cfg.ContinueOnError {
				return fmt.Errorf("%s: %w", filepath.Base(file), results[i].Error)
			}
			return nil
		})
	}
	firstErr := g.Wait()

	// =========================================================================
	// STEP 4: COLLECT RESULTS AND WRITE LOGS
	// =========================================================================

	var errorEntries []utils.ErrorLogEntry
	for i, result := range results {
		if !started[i] {
			continue
		}
		summary.TotalFiles++
		summary.TotalSettlements += result.Stats.Settlements
		summary.TotalFees += result.Stats.Fees
		summary.TotalTransactions += result.Stats.Transactions
		summary.DataQualityIssues += result.Stats.DataQualityIssues
		summary.ValidationErrors += result.Stats.ValidationErrors
		summary.ValidationWarnings += result.Stats.ValidationWarnings

		if result.Success {
			summary.SuccessfulFiles++
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:    result.FilePath,
				OutputFile:   result.OutputFile,
				ArchivePath:  result.ArchivePath,
				Settlements:  result.Stats.Settlements,
				Fees:         result.Stats.Fees,
				Transactions: result.Stats.Transactions,
				ProcessTime:  result.Stats.ProcessingTime,
			})
			fmt.Printf("  ✓ %s -> %s\n", filepath.Base(result.FilePath), displayOutput(result))
			continue
		}

		entry := converter.ErrorEntry(result)
		errorEntries = append(errorEntries, entry)
		summary.FailedFiles++
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    result.FilePath,
			ErrorMessage: entry.ErrorMessage,
			ErrorType:    entry.ErrorType,
		})
		fmt.Printf("  ✗ %s: %v\n", filepath.Base(result.FilePath), result.Error)
	}
	summary.EndTime = time.Now()

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:          %d\n", summary.FailedFiles)
	fmt.Printf("Transactions:    %d\n", summary.TotalTransactions)
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))
	if skipped := len(inputFiles) - summary.TotalFiles; skipped > 0 {
		fmt.Printf("Skipped:         %d\n", skipped)
	}

	if !dryRun {
		logDir := filepath.Join(cfg.OutputDir, "logs")
		if path, err := utils.WriteSummaryLog(summary, logDir); err != nil {
			log.Warn().Err(err).Msg("failed to write summary log")
		} else {
			log.Debug().Str("path", path).Msg("summary log written")
		}
		if path, err := utils.WriteErrorLog(errorEntries, logDir); err != nil {
			log.Warn().Err(err).Msg("failed to write error log")
		} else if path != "" {
			fmt.Printf("\nErrors have been logged to %s\n", path)
		}

		// =====================================================================
		// STEP 5: RETENTION
		// =====================================================================

		for _, dir := range []string{cfg.InputArchiveDir, cfg.OutputArchiveDir} {
			removed, err := fm.CleanOldArchives(dir, cfg.RetentionDays)
			if err != nil {
				log.Warn().Err(err).Str("dir", dir).Msg("failed to clean archive")
				continue
			}
			if removed > 0 {
				log.Info().Int("removed", removed).Str("dir", dir).Msg("old archives removed")
			}
		}
	}

	return firstErr
}

func displayOutput(r converter.Result) string {
	if r.OutputFile == "" {
		return "(dry run)"
	}
	return r.OutputFile
}
