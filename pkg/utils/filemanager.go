// =============================================================================
// Settlement Report Parser - File Management Utilities
// =============================================================================
//
// This module handles the file system side of the batch pipeline:
//   - Creating the working directories
//   - Discovering input reports
//   - Archiving processed inputs (moved) and outputs (copied)
//   - Generating unique output file names
//   - Writing error and summary logs
//   - Pruning old archives
//
// ARCHIVE LAYOUT:
//   With UseTimestampSubdirs set, archives are grouped by processing date:
//     input_archive/2021/04/12/settlement-report.csv
//   Otherwise files are placed directly in the archive directory.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager owns the pipeline directories.
type FileManager struct {
	InputDir         string
	OutputDir        string
	InputArchiveDir  string
	OutputArchiveDir string

	// UseTimestampSubdirs places archived files in YYYY/MM/DD subdirectories.
	UseTimestampSubdirs bool

	// ArchiveOnSuccess enables archiving. When false the archive calls
	// return the original path and leave the file alone.
	ArchiveOnSuccess bool

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// NewFileManager creates a FileManager with archiving enabled.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		ArchiveOnSuccess: true,
	}
}

func (fm *FileManager) now() time.Time {
	if fm.Now != nil {
		return fm.Now()
	}
	return time.Now()
}

// EnsureDirectories creates every configured directory.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir, fm.OutputArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// DISCOVERY
// =============================================================================

// DiscoverInputFiles returns the regular files in InputDir matching pattern
// (filepath.Match syntax, default "*.csv"), sorted by name.
func (fm *FileManager) DiscoverInputFiles(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.csv"
	}

	files, err := filepath.Glob(filepath.Join(fm.InputDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			continue
		}
		result = append(result, file)
	}
	sort.Strings(result)
	return result, nil
}

// DiscoverInputFilesRecursive walks InputDir and returns every file whose
// base name matches pattern, case-insensitively.
func (fm *FileManager) DiscoverInputFilesRecursive(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.csv"
	}
	pattern = strings.ToLower(pattern)
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid input pattern %q: %w", pattern, err)
	}

	var files []string
	err := filepath.WalkDir(fm.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, strings.ToLower(d.Name())); ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk input directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// ARCHIVING
// =============================================================================

// ArchiveInputFile moves a processed input file into InputArchiveDir.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	// Rename fails across devices; fall back to copy and remove.
	if err := os.Rename(filePath, archivePath); err != nil {
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}
	return archivePath, nil
}

// ArchiveOutputFile copies an exported document into OutputArchiveDir.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.OutputArchiveDir, filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}
	return archivePath, nil
}

func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)
	if fm.UseTimestampSubdirs {
		now := fm.now()
		return filepath.Join(archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName)
	}
	return filepath.Join(archiveDir, fileName)
}

// CleanOldArchives removes files under archiveDir last modified more than
// retentionDays ago, then removes directories left empty. It returns the
// number of files removed. A retention of zero or less keeps everything.
func (fm *FileManager) CleanOldArchives(archiveDir string, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	if _, err := os.Stat(archiveDir); os.IsNotExist(err) {
		return 0, nil
	}

	cutoff := fm.now().AddDate(0, 0, -retentionDays)
	removed := 0
	var dirs []string

	err := filepath.WalkDir(archiveDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != archiveDir {
				dirs = append(dirs, path)
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove %s: %w", path, err)
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("failed to clean archive %s: %w", archiveDir, err)
	}

	// Deepest first so parents become empty before they are visited.
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))
	for _, dir := range dirs {
		if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
			_ = os.Remove(dir)
		}
	}
	return removed, nil
}

// =============================================================================
// OUTPUT NAMING
// =============================================================================

// GenerateOutputFileName expands the placeholders of format and appends
// extension when the result does not already end with it.
//
// PLACEHOLDERS:
//   - {uuid}: a random UUID
//   - {timestamp}: YYYYMMDD_HHMMSS
//   - {date}: YYYYMMDD
//   - {time}: HHMMSS
//   - {key}: any key of params, e.g. {name}
func GenerateOutputFileName(format, extension string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if extension != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(extension)) {
		result += extension
	}
	return result
}

// BaseName returns the file name of path without directory and extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// =============================================================================
// ERROR LOG
// =============================================================================

// ErrorLogEntry is one failure recorded during a batch run.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string
	Line         int
	Section      string
	FieldName    string
	FieldValue   string
}

// WriteErrorLog writes entries to a timestamped file in outputDir and
// returns its path. Nothing is written for an empty slice.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s.txt", time.Now().Format("20060102_150405")))
	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "Settlement Report Parser - Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"), len(entries))

	for i, entry := range entries {
		fmt.Fprintf(w, "Error #%d\n", i+1)
		fmt.Fprintf(w, "  Timestamp:  %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "  File:       %s\n", entry.FileName)
		fmt.Fprintf(w, "  Error Type: %s\n", entry.ErrorType)
		fmt.Fprintf(w, "  Message:    %s\n", entry.ErrorMessage)
		if entry.Line > 0 {
			fmt.Fprintf(w, "  Line:       %d\n", entry.Line)
		}
		if entry.Section != "" {
			fmt.Fprintf(w, "  Section:    %s\n", entry.Section)
		}
		if entry.FieldName != "" {
			fmt.Fprintf(w, "  Field:      %s\n", entry.FieldName)
		}
		if entry.FieldValue != "" {
			fmt.Fprintf(w, "  Value:      %s\n", entry.FieldValue)
		}
		w.WriteString("\n")
	}

	w.WriteString("================================================================================\n" +
		"End of Error Log\n")
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}
	return logPath, nil
}

// =============================================================================
// SUMMARY LOG
// =============================================================================

// ProcessingSummary aggregates one batch run.
type ProcessingSummary struct {
	StartTime          time.Time
	EndTime            time.Time
	TotalFiles         int
	SuccessfulFiles    int
	FailedFiles        int
	TotalSettlements   int
	TotalFees          int
	TotalTransactions  int
	DataQualityIssues  int
	ValidationErrors   int
	ValidationWarnings int
	ProcessedFiles     []ProcessedFileInfo
	FailedFilesList    []FailedFileInfo
}

// ProcessedFileInfo describes one successfully processed report.
type ProcessedFileInfo struct {
	InputFile    string
	OutputFile   string
	ArchivePath  string
	Settlements  int
	Fees         int
	Transactions int
	ProcessTime  time.Duration
}

// FailedFileInfo describes one report that could not be processed.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
	ErrorType    string
}

// WriteSummaryLog writes summary to a timestamped file in outputDir and
// returns its path.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s.txt", time.Now().Format("20060102_150405")))
	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "Settlement Report Parser - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:          %s\n"+
		"  End Time:            %s\n"+
		"  Duration:            %s\n\n"+
		"Statistics:\n"+
		"  Total Files:         %d\n"+
		"  Successful:          %d\n"+
		"  Failed:              %d\n"+
		"  Settlements:         %d\n"+
		"  Fees:                %d\n"+
		"  Transactions:        %d\n"+
		"  Data Quality Issues: %d\n"+
		"  Validation Errors:   %d\n"+
		"  Validation Warnings: %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalSettlements,
		summary.TotalFees,
		summary.TotalTransactions,
		summary.DataQualityIssues,
		summary.ValidationErrors,
		summary.ValidationWarnings)

	if len(summary.ProcessedFiles) > 0 {
		w.WriteString("Successful Files:\n")
		w.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(w, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(w, "  Output:       %s\n", pf.OutputFile)
			if pf.ArchivePath != "" {
				fmt.Fprintf(w, "  Archived:     %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(w, "  Settlements:  %d\n", pf.Settlements)
			fmt.Fprintf(w, "  Fees:         %d\n", pf.Fees)
			fmt.Fprintf(w, "  Transactions: %d\n", pf.Transactions)
			fmt.Fprintf(w, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		w.WriteString("Failed Files:\n")
		w.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(w, "  File:  %s\n", ff.InputFile)
			if ff.ErrorType != "" {
				fmt.Fprintf(w, "  Type:  %s\n", ff.ErrorType)
			}
			fmt.Fprintf(w, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	w.WriteString("================================================================================\n" +
		"End of Summary\n")
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
