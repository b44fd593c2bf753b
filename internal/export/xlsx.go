package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/settlement-report-parser/internal/report"
)

func init() { Register(xlsxExporter{}) }

// Worksheet names, in the order they appear in the workbook.
const (
	sheetOrganization = "Organization"
	sheetCompany      = "Company"
	sheetSettlements  = "Settlements"
	sheetFees         = "Fees"
	sheetTransactions = "Transactions"
	sheetWarnings     = "Warnings"
)

// amountNumFmt is the built-in "#,##0.00" number format.
const amountNumFmt = 4

type xlsxExporter struct{}

func (xlsxExporter) Format() string    { return "xlsx" }
func (xlsxExporter) Extension() string { return ".xlsx" }

// Export writes one worksheet per section: a bold header row with the
// column labels followed by one row per record. Amount and count columns
// are stored as numbers. The settlement shape only matters for
// ShapeSingle, which still rejects reports without exactly one settlement.
func (xlsxExporter) Export(w io.Writer, rep *report.Report, opts Options) error {
	if _, err := singleSettlement(rep, opts.SettlementShape); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	wb, err := newWorkbook(f)
	if err != nil {
		return err
	}

	sections := []struct {
		sheet string
		state report.State
		rows  [][]report.Field
	}{
		{sheetOrganization, report.StateOrganization, [][]report.Field{rep.Organization.Fields()}},
		{sheetCompany, report.StateCompany, [][]report.Field{rep.Company.Fields()}},
		{sheetSettlements, report.StateSettlement, fieldRows(rep.Settlements, report.Settlement.Fields)},
		{sheetFees, report.StateFee, fieldRows(rep.Fees, report.Fee.Fields)},
		{sheetTransactions, report.StateTransaction, fieldRows(rep.Transactions, report.Transaction.Fields)},
	}
	for i, sec := range sections {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sec.sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sec.sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sec.sheet, err)
		}
		if err := wb.writeSection(sec.sheet, report.SectionColumns(sec.state), sec.rows); err != nil {
			return err
		}
	}

	if len(rep.Warnings) > 0 {
		if _, err := f.NewSheet(sheetWarnings); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheetWarnings, err)
		}
		rows := make([][]report.Field, len(rep.Warnings))
		for i, w := range rep.Warnings {
			rows[i] = []report.Field{
				{Name: "Line", Value: strconv.Itoa(w.Line), Kind: report.KindCount},
				{Name: "Section", Value: w.Section},
				{Name: "Field", Value: w.Field},
				{Name: "Value", Value: w.Value},
			}
		}
		if err := wb.writeSection(sheetWarnings, []string{"Line", "Section", "Field", "Value"}, rows); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func fieldRows[T any](records []T, fields func(T) []report.Field) [][]report.Field {
	rows := make([][]report.Field, len(records))
	for i, rec := range records {
		rows[i] = fields(rec)
	}
	return rows
}

type workbook struct {
	f           *excelize.File
	headerStyle int
	amountStyle int
}

func newWorkbook(f *excelize.File) (*workbook, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt})
	if err != nil {
		return nil, fmt.Errorf("failed to create amount style: %w", err)
	}
	return &workbook{f: f, headerStyle: header, amountStyle: amount}, nil
}

func (wb *workbook) writeSection(sheet string, columns []string, rows [][]report.Field) error {
	for c, name := range columns {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := wb.f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("%s!%s: %w", sheet, cell, err)
		}
	}
	if len(columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(columns), 1)
		if err != nil {
			return err
		}
		if err := wb.f.SetCellStyle(sheet, "A1", last, wb.headerStyle); err != nil {
			return fmt.Errorf("failed to style %s header: %w", sheet, err)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(columns))
		if err := wb.f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
			return fmt.Errorf("failed to size %s columns: %w", sheet, err)
		}
	}

	for r, fields := range rows {
		for c, field := range fields {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := wb.setField(sheet, cell, field); err != nil {
				return fmt.Errorf("%s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func (wb *workbook) setField(sheet, cell string, field report.Field) error {
	switch field.Kind {
	case report.KindAmount:
		v, err := strconv.ParseFloat(field.Value, 64)
		if err != nil {
			return wb.f.SetCellValue(sheet, cell, field.Value)
		}
		if err := wb.f.SetCellFloat(sheet, cell, v, -1, 64); err != nil {
			return err
		}
		return wb.f.SetCellStyle(sheet, cell, cell, wb.amountStyle)
	case report.KindCount:
		n, err := strconv.Atoi(field.Value)
		if err != nil {
			return wb.f.SetCellValue(sheet, cell, field.Value)
		}
		return wb.f.SetCellValue(sheet, cell, n)
	}
	return wb.f.SetCellStr(sheet, cell, field.Value)
}
