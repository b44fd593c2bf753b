package converter_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/settlement-report-parser/internal/config"
	"github.com/ginjaninja78/settlement-report-parser/internal/converter"
	"github.com/ginjaninja78/settlement-report-parser/internal/validation"
	"github.com/ginjaninja78/settlement-report-parser/pkg/utils"
)

type env struct {
	cfg   *config.MainConfig
	files *utils.FileManager
}

func newEnv(t *testing.T) env {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.InputArchiveDir = filepath.Join(root, "input_archive")
	cfg.OutputArchiveDir = filepath.Join(root, "output_archive")
	cfg.ContinueOnError = false

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	require.NoError(t, fm.EnsureDirectories())
	return env{cfg: cfg, files: fm}
}

// stage copies a report fixture into the input directory.
func (e env) stage(t *testing.T, fixture string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "report", "testdata", fixture))
	require.NoError(t, err)
	path := filepath.Join(e.cfg.InputDir, fixture)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func (e env) stageText(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(e.cfg.InputDir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestRunWritesJSONAndArchives(t *testing.T) {
	e := newEnv(t)
	input := e.stage(t, "multi-settlement-crlf.csv")

	result := converter.New(input, e.cfg, e.files, nil).Run()
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Stats.Settlements)
	assert.Equal(t, 2, result.Stats.Fees)
	assert.Equal(t, 3, result.Stats.Transactions)
	assert.Zero(t, result.Stats.ValidationErrors)
	assert.Positive(t, result.Stats.ProcessingTime)

	assert.Equal(t, e.cfg.OutputDir, filepath.Dir(result.OutputFile))
	assert.Equal(t, ".json", filepath.Ext(result.OutputFile))

	data, err := os.ReadFile(result.OutputFile)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc["settlements"], 2)

	assert.False(t, utils.FileExists(input))
	assert.True(t, utils.FileExists(result.ArchivePath))
	assert.True(t, utils.FileExists(filepath.Join(e.cfg.OutputArchiveDir, filepath.Base(result.OutputFile))))
}

func TestRunOtherFormats(t *testing.T) {
	for _, format := range []string{"yaml", "xml", "xlsx", "pdf"} {
		t.Run(format, func(t *testing.T) {
			e := newEnv(t)
			e.cfg.OutputFormat = format
			input := e.stage(t, "multi-settlement-crlf.csv")

			result := converter.New(input, e.cfg, e.files, nil).Run()
			require.NoError(t, result.Error)

			info, err := os.Stat(result.OutputFile)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}

func TestRunSampleReportIsValid(t *testing.T) {
	e := newEnv(t)
	input := e.stage(t, "settlement-report.csv")

	result := converter.New(input, e.cfg, e.files, nil).Run()
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.True(t, result.Validation.IsValid)
	assert.Zero(t, result.Stats.ValidationErrors)
	assert.Equal(t, 2, result.Stats.ValidationWarnings)
	assert.False(t, utils.FileExists(input))
}

func TestRunValidationFailure(t *testing.T) {
	e := newEnv(t)
	e.cfg.Validation.StrictBalance = true
	input := e.stage(t, "settlement-report.csv")

	result := converter.New(input, e.cfg, e.files, nil).Run()
	require.ErrorIs(t, result.Error, converter.ErrValidationFailed)
	assert.False(t, result.Success)
	assert.Equal(t, "Validation", converter.ErrorType(result.Error))
	assert.Empty(t, result.OutputFile)
	require.NotNil(t, result.Validation)
	assert.Positive(t, result.Stats.ValidationErrors)

	// Failed inputs stay where they are.
	assert.True(t, utils.FileExists(input))
	assert.True(t, utils.FileExists(filepath.Join(e.cfg.OutputDir, "validation", "settlement-report_validation.txt")))
}

func TestRunContinueOnError(t *testing.T) {
	e := newEnv(t)
	e.cfg.ContinueOnError = true
	e.cfg.Validation.StrictBalance = true
	input := e.stage(t, "settlement-report.csv")

	result := converter.New(input, e.cfg, e.files, nil).Run()
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, 7, result.Stats.Transactions)
	assert.Positive(t, result.Stats.ValidationErrors)
}

func TestRunSkipRules(t *testing.T) {
	e := newEnv(t)
	e.cfg.Validation.SkipRules = []string{validation.RuleBalance, validation.RuleTransactionCount, validation.RuleOrganization}
	input := e.stage(t, "settlement-report.csv")

	result := converter.New(input, e.cfg, e.files, nil).Run()
	require.NoError(t, result.Error)
	assert.Zero(t, result.Stats.ValidationErrors)
	assert.Zero(t, result.Stats.ValidationWarnings)
}

func TestRunDryRun(t *testing.T) {
	e := newEnv(t)
	input := e.stage(t, "multi-settlement-crlf.csv")

	c := converter.New(input, e.cfg, e.files, nil)
	c.DryRun = true
	result := c.Run()
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Empty(t, result.OutputFile)
	assert.True(t, utils.FileExists(input))

	entries, err := os.ReadDir(e.cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunScannerErrors(t *testing.T) {
	e := newEnv(t)

	missing := e.stageText(t, "missing.csv", "Name,VisitingAddress\nShop,Street 1\n")
	result := converter.New(missing, e.cfg, e.files, nil).Run()
	require.Error(t, result.Error)
	assert.Nil(t, result.Report)
	entry := converter.ErrorEntry(result)
	assert.Equal(t, "MissingRequiredData", entry.ErrorType)
	assert.Equal(t, missing, entry.FileName)

	malformed := e.stageText(t, "malformed.csv",
		"OrganizationNumber,MerchantName\n1,Shop\nName,X\nShop,X\nTransactionInfo,01.01.2021,Shop\n")
	result = converter.New(malformed, e.cfg, e.files, nil).Run()
	entry = converter.ErrorEntry(result)
	assert.Equal(t, "MalformedSection", entry.ErrorType)
	assert.Equal(t, 5, entry.Line)
	assert.Equal(t, "TransactionInfo", entry.Section)

	result = converter.New(filepath.Join(e.cfg.InputDir, "absent.csv"), e.cfg, e.files, nil).Run()
	assert.Equal(t, "FileAccess", converter.ErrorType(result.Error))
}

func TestRunStrictNumerics(t *testing.T) {
	e := newEnv(t)
	e.cfg.Parsing.NumericPolicy = "strict"
	input := e.stageText(t, "bad.csv",
		"OrganizationNumber,MerchantName\n1,Shop\nName,X\nShop,X\n"+
			"SettlementInfo,SalesUnitName,SaleUnitNumber,SettlementDate,SettlementID\n"+
			"SettlementInfo,Shop,001,01.01.2021,S1,ACC,abc,NOK,0,0,0,0\n")

	result := converter.New(input, e.cfg, e.files, nil).Run()
	entry := converter.ErrorEntry(result)
	assert.Equal(t, "DataQuality", entry.ErrorType)
	assert.Equal(t, 6, entry.Line)
	assert.Equal(t, "Settlement", entry.Section)
	assert.Equal(t, "abc", entry.FieldValue)
}
