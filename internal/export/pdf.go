// =============================================================================
// Settlement Report Parser - PDF Summary
// =============================================================================
//
// Page layout (A4 landscape):
//
//   MERCHANT NAME + ORG NUMBER        |     SETTLEMENT REPORT + date range
//   -------------------------------------------------------------------
//   Company address block
//   -------------------------------------------------------------------
//   Settlements table
//   Fees table
//   Transactions table
//   -------------------------------------------------------------------
//   Transaction totals: Gross / Fee / Refund / Net
//
// Tables use the report's own column labels. Every table is laid out on
// the 12-column grid, so a section with n columns gets 12/n grid units per
// column.
//
// =============================================================================

package export

import (
	"fmt"
	"io"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/settlement-report-parser/internal/report"
)

func init() { Register(pdfExporter{}) }

var (
	pdfPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	pdfGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const pdfGridSize = 12

type pdfExporter struct{}

func (pdfExporter) Format() string    { return "pdf" }
func (pdfExporter) Extension() string { return ".pdf" }

func (pdfExporter) Export(w io.Writer, rep *report.Report, opts Options) error {
	if _, err := singleSettlement(rep, opts.SettlementShape); err != nil {
		return err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 7}).
		WithTitle("Settlement report "+rep.Organization.OrganizationNumber, true).
		WithAuthor(rep.Organization.MerchantName, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(pdfHeaderRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: pdfPrimary, Thickness: 0.5}))
	m.AddRows(pdfCompanyRow(rep.Company))
	m.AddRows(line.NewRow(1, props.Line{Color: pdfPrimary, Thickness: 0.3}))

	m.AddRows(pdfTable("Settlements", report.SectionColumns(report.StateSettlement),
		fieldRows(rep.Settlements, report.Settlement.Fields))...)
	m.AddRows(pdfTable("Fees", report.SectionColumns(report.StateFee),
		fieldRows(rep.Fees, report.Fee.Fields))...)
	m.AddRows(pdfTable("Transactions", report.SectionColumns(report.StateTransaction),
		fieldRows(rep.Transactions, report.Transaction.Fields))...)

	m.AddRows(line.NewRow(1, props.Line{Color: pdfPrimary, Thickness: 0.3}))
	m.AddRows(pdfTotalsRow(rep.Transactions))
	if len(rep.Warnings) > 0 {
		m.AddRows(text.NewRow(6, fmt.Sprintf("%d non-numeric value(s) were stored as zero.", len(rep.Warnings)),
			props.Text{Size: 7, Top: 1, Color: pdfGray}))
	}

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}
	if _, err := w.Write(doc.GetBytes()); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func pdfHeaderRow(rep *report.Report) core.Row {
	period := ""
	if n := len(rep.Settlements); n > 0 {
		first, last := rep.Settlements[0].SettlementDate, rep.Settlements[n-1].SettlementDate
		period = first
		if last != first {
			period = first + " - " + last
		}
	}
	return row.New(16).Add(
		col.New(7).Add(
			text.New(rep.Organization.MerchantName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: pdfPrimary, Top: 1,
			}),
			text.New("Org. no: "+rep.Organization.OrganizationNumber, props.Text{
				Size: 8, Top: 9, Color: pdfGray,
			}),
		),
		col.New(5).Add(
			text.New("SETTLEMENT REPORT", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: pdfPrimary, Top: 1,
			}),
			text.New(period, props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: pdfGray,
			}),
		),
	)
}

func pdfCompanyRow(c report.Company) core.Row {
	var parts []string
	for _, s := range []string{c.VisitingAddress, c.Postbox, strings.TrimSpace(c.Zipno + " " + c.Place), c.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return row.New(10).Add(
		col.New(12).Add(
			text.New(c.Name+"  ("+c.CompanyNumber+")", props.Text{Style: fontstyle.Bold, Size: 8, Top: 1}),
			text.New(strings.Join(parts, "  |  "), props.Text{Size: 7, Top: 5, Color: pdfGray}),
		),
	)
}

// pdfTable renders a section title, a header row and one row per record.
func pdfTable(title string, columns []string, records [][]report.Field) []core.Row {
	size := pdfGridSize / len(columns)
	if size < 1 {
		size = 1
	}

	rows := []core.Row{
		text.NewRow(7, fmt.Sprintf("%s (%d)", title, len(records)), props.Text{
			Style: fontstyle.Bold, Size: 9, Color: pdfPrimary, Top: 2,
		}),
	}

	header := make([]core.Col, len(columns))
	for i, name := range columns {
		header[i] = col.New(size).Add(text.New(name, props.Text{
			Style: fontstyle.Bold, Size: 6, Align: align.Left, Top: 1, Right: 1,
		}))
	}
	rows = append(rows, row.New(5).Add(header...))

	for _, fields := range records {
		cols := make([]core.Col, len(fields))
		for i, f := range fields {
			a := align.Left
			if f.Kind != report.KindText {
				a = align.Right
			}
			cols[i] = col.New(size).Add(text.New(f.Value, props.Text{Size: 6, Align: a, Top: 1, Right: 1}))
		}
		rows = append(rows, row.New(4).Add(cols...))
	}
	return rows
}

func pdfTotalsRow(txs []report.Transaction) core.Row {
	var gross, fee, refund, net decimal.Decimal
	for _, tx := range txs {
		gross = gross.Add(tx.Gross)
		fee = fee.Add(tx.Fee)
		refund = refund.Add(tx.Refund)
		net = net.Add(tx.Net)
	}
	total := func(label string, d decimal.Decimal) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Align: align.Right, Top: 1, Color: pdfGray}),
			text.New(d.StringFixed(2), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 5}),
		)
	}
	return row.New(12).Add(
		total("Gross", gross),
		total("Fee", fee),
		total("Refund", refund),
		total("Net", net),
	)
}
