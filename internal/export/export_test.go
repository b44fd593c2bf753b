package export_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/settlement-report-parser/internal/export"
	"github.com/ginjaninja78/settlement-report-parser/internal/report"
)

func parseFixture(t *testing.T, name string) *report.Report {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "report", "testdata", name))
	require.NoError(t, err)
	rep, err := report.Parse(string(data))
	require.NoError(t, err)
	return rep
}

func render(t *testing.T, format string, rep *report.Report, opts export.Options) []byte {
	t.Helper()
	e, err := export.Lookup(format)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, e.Export(&buf, rep, opts))
	return buf.Bytes()
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"json", "pdf", "xlsx", "xml", "yaml"}, export.Formats())

	e, err := export.Lookup(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", e.Extension())

	_, err = export.Lookup("csv")
	assert.ErrorIs(t, err, export.ErrUnknownFormat)
}

func TestParseShape(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]export.Shape{"": export.ShapeAuto, "LIST": export.ShapeList, "single": export.ShapeSingle} {
		got, err := export.ParseShape(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := export.ParseShape("many")
	assert.Error(t, err)
}

func TestJSONSettlementShape(t *testing.T) {
	t.Parallel()

	single := parseFixture(t, "settlement-report.csv")
	multi := parseFixture(t, "multi-settlement-crlf.csv")

	tests := []struct {
		name    string
		rep     *report.Report
		shape   export.Shape
		wantKey string
		absent  string
	}{
		{"auto single", single, export.ShapeAuto, "settlement", "settlements"},
		{"auto many", multi, export.ShapeAuto, "settlements", "settlement"},
		{"list single", single, export.ShapeList, "settlements", "settlement"},
		{"single single", single, export.ShapeSingle, "settlement", "settlements"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var doc map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(render(t, "json", tc.rep, export.Options{SettlementShape: tc.shape}), &doc))
			assert.Contains(t, doc, tc.wantKey)
			assert.NotContains(t, doc, tc.absent)
			assert.Contains(t, doc, "organization")
			assert.Contains(t, doc, "transactions")
			assert.NotContains(t, doc, "warnings")
		})
	}
}

func TestSingleShapeRejectsManySettlements(t *testing.T) {
	t.Parallel()

	multi := parseFixture(t, "multi-settlement-crlf.csv")
	for _, format := range export.Formats() {
		e, err := export.Lookup(format)
		require.NoError(t, err)
		err = e.Export(&bytes.Buffer{}, multi, export.Options{SettlementShape: export.ShapeSingle})
		assert.ErrorIs(t, err, export.ErrSettlementShape, format)
	}
}

func TestJSONContent(t *testing.T) {
	t.Parallel()

	out := render(t, "json", parseFixture(t, "settlement-report.csv"), export.Options{Indent: 4})

	var doc struct {
		Organization report.Organization `json:"organization"`
		Settlement   report.Settlement   `json:"settlement"`
		Fees         []report.Fee        `json:"fees"`
		Transactions []report.Transaction
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "999888777", doc.Organization.OrganizationNumber)
	assert.Equal(t, "16511.71", doc.Settlement.Gross.String())
	assert.Equal(t, 62, doc.Settlement.NumberOfTransactions)
	assert.Len(t, doc.Transactions, 7)
	assert.Len(t, doc.Fees, 1)
	assert.Contains(t, string(out), "\n    \"organization\"")
}

func TestYAMLContent(t *testing.T) {
	t.Parallel()

	out := render(t, "yaml", parseFixture(t, "multi-settlement-crlf.csv"), export.Options{})

	var doc struct {
		Company      report.Company      `yaml:"company"`
		Settlements  []report.Settlement `yaml:"settlements"`
		Transactions []map[string]string `yaml:"transactions"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, "Bergen", doc.Company.Place)
	require.Len(t, doc.Settlements, 2)
	assert.Equal(t, "3000002", doc.Settlements[1].SettlementID)
	require.Len(t, doc.Transactions, 3)
	assert.Equal(t, "-250.00", doc.Transactions[2]["Refund"])
}

func TestTextFormatsWriteTwoDecimalAmounts(t *testing.T) {
	t.Parallel()

	rep := parseFixture(t, "settlement-report.csv")

	jsonOut := string(render(t, "json", rep, export.Options{}))
	assert.Contains(t, jsonOut, `"Refund": "-1490.00"`)
	assert.Contains(t, jsonOut, `"NumberOfTransactions": 62`)
	assert.NotContains(t, jsonOut, `"-1490"`)
	assert.Less(t, strings.Index(jsonOut, `"SalesUnitName"`), strings.Index(jsonOut, `"Gross"`))

	yamlOut := string(render(t, "yaml", rep, export.Options{}))
	assert.Contains(t, yamlOut, "Refund: -1490.00\n")
	assert.Contains(t, yamlOut, "NumberOfTransactions: 62\n")
	assert.Contains(t, yamlOut, "OrganizationNumber: \"999888777\"\n")

	var doc struct {
		Settlement report.Settlement `yaml:"settlement"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(yamlOut), &doc))
	assert.Equal(t, "-1490", doc.Settlement.Refund.String())
}

func TestXMLStructure(t *testing.T) {
	t.Parallel()

	out := render(t, "xml", parseFixture(t, "multi-settlement-crlf.csv"), export.Options{})
	assert.True(t, strings.HasPrefix(string(out), `<?xml version="1.0" encoding="UTF-8"?>`))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "settlementReport", root.Tag)

	assert.Equal(t, "912345678", root.FindElement("organization/OrganizationNumber").Text())

	settlements := root.FindElement("settlements")
	require.NotNil(t, settlements)
	assert.Equal(t, "2", settlements.SelectAttrValue("count", ""))
	items := settlements.SelectElements("settlement")
	require.Len(t, items, 2)
	assert.Equal(t, "2", items[1].SelectAttrValue("n", ""))
	assert.Equal(t, "1742.60", items[1].SelectElement("Net").Text())

	txs := root.FindElements("transactions/transaction")
	require.Len(t, txs, 3)
	assert.Equal(t, "-250.00", txs[2].SelectElement("Refund").Text())
	assert.Nil(t, root.SelectElement("warnings"))
}

func TestXMLSingleShape(t *testing.T) {
	t.Parallel()

	out := render(t, "xml", parseFixture(t, "settlement-report.csv"), export.Options{})
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))

	assert.Nil(t, doc.Root().SelectElement("settlements"))
	st := doc.Root().SelectElement("settlement")
	require.NotNil(t, st)
	assert.Equal(t, "62", st.SelectElement("NumberOfTransactions").Text())
	assert.Equal(t, "-1490.00", st.SelectElement("Refund").Text())
}

func TestXMLWarnings(t *testing.T) {
	t.Parallel()

	rep := parseFixture(t, "settlement-report.csv")
	rep.Warnings = []report.DataQualityWarning{{Line: 9, Section: "Transaction", Field: "Gross", Value: "abc"}}

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(render(t, "xml", rep, export.Options{})))
	w := doc.Root().FindElement("warnings/warning")
	require.NotNil(t, w)
	assert.Equal(t, "9", w.SelectAttrValue("line", ""))
	assert.Equal(t, "Gross", w.SelectAttrValue("field", ""))
	assert.Equal(t, "abc", w.Text())
}

func TestXLSXWorkbook(t *testing.T) {
	t.Parallel()

	out := render(t, "xlsx", parseFixture(t, "settlement-report.csv"), export.Options{})
	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Organization", "Company", "Settlements", "Fees", "Transactions"}, f.GetSheetList())

	rows, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, rows, 8)
	assert.Equal(t, report.SectionColumns(report.StateTransaction), rows[0])
	assert.Equal(t, "TX000000001", rows[1][3])

	raw, err := f.GetCellValue("Settlements", "F2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "16511.71", raw)

	count, err := f.GetCellValue("Settlements", "K2")
	require.NoError(t, err)
	assert.Equal(t, "62", count)

	zip, err := f.GetCellValue("Company", "D2")
	require.NoError(t, err)
	assert.Equal(t, "0191", zip)
}

func TestPDFSummary(t *testing.T) {
	t.Parallel()

	out := render(t, "pdf", parseFixture(t, "settlement-report.csv"), export.Options{})
	require.NotEmpty(t, out)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
