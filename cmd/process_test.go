package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/settlement-report-parser/internal/config"
	"github.com/ginjaninja78/settlement-report-parser/pkg/logger"
)

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.InputArchiveDir = filepath.Join(root, "input_archive")
	cfg.OutputArchiveDir = filepath.Join(root, "output_archive")
	cfg.ArchiveByDate = false
	require.NoError(t, os.MkdirAll(cfg.InputDir, 0o755))

	appLog = logger.Nop()
	dryRun, filePath = false, ""
	return cfg
}

func stageFixture(t *testing.T, dir, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "internal", "report", "testdata", name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestRunProcessBatch(t *testing.T) {
	cfg := testConfig(t)
	stageFixture(t, cfg.InputDir, "multi-settlement-crlf.csv")
	stageFixture(t, cfg.InputDir, "settlement-report.csv")

	require.NoError(t, runProcess(context.Background(), cfg))

	outputs, err := filepath.Glob(filepath.Join(cfg.OutputDir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, outputs, 2)

	archived, err := filepath.Glob(filepath.Join(cfg.InputArchiveDir, "*.csv"))
	require.NoError(t, err)
	assert.Len(t, archived, 2)

	summaries, err := filepath.Glob(filepath.Join(cfg.OutputDir, "logs", "processing_summary_*.txt"))
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestRunProcessStopsOnError(t *testing.T) {
	cfg := testConfig(t)
	cfg.ContinueOnError = false
	cfg.Validation.StrictBalance = true
	cfg.MaxConcurrency = 1
	stageFixture(t, cfg.InputDir, "settlement-report.csv")

	err := runProcess(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settlement-report.csv")

	errorLogs, err := filepath.Glob(filepath.Join(cfg.OutputDir, "logs", "error_log_*.txt"))
	require.NoError(t, err)
	assert.Len(t, errorLogs, 1)
	assert.FileExists(t, filepath.Join(cfg.InputDir, "settlement-report.csv"))
}

func TestRunProcessDryRun(t *testing.T) {
	cfg := testConfig(t)
	stageFixture(t, cfg.InputDir, "multi-settlement-crlf.csv")
	dryRun = true
	t.Cleanup(func() { dryRun = false })

	require.NoError(t, runProcess(context.Background(), cfg))
	assert.NoDirExists(t, cfg.OutputDir)
	assert.FileExists(t, filepath.Join(cfg.InputDir, "multi-settlement-crlf.csv"))
}

func TestRunProcessEmptyInput(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, runProcess(context.Background(), cfg))
}

func TestFormatForPath(t *testing.T) {
	for path, want := range map[string]string{
		"out/report.json": "json",
		"report.YML":      "yaml",
		"report.yaml":     "yaml",
		"report.xml":      "xml",
		"report.xlsx":     "xlsx",
		"report.pdf":      "pdf",
	} {
		got, ok := formatForPath(path)
		assert.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}

	_, ok := formatForPath("report.txt")
	assert.False(t, ok)
}
