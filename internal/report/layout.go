// =============================================================================
// Settlement Report Parser - Section Layouts
// =============================================================================
//
// Each section is described by a layout: an ordered list of columns, where
// every column names the positional index it is read from, the label used
// for it in the export, and how it is decoded. One generic decoder consumes
// every layout, so index bookkeeping lives in exactly one place.
//
// POSITIONS:
//   Organization and Company rows start at index 0. Settlement, Fee and
//   Transaction rows carry their sentinel at index 0, so their first value
//   sits at index 1.
//
// =============================================================================

package report

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// column maps one positional field onto a record of type T.
type column[T any] struct {
	index  int
	name   string
	kind   ColumnKind
	decode func(rec *T, raw string) error
	encode func(rec *T) string
}

func textColumn[T any](index int, name string, field func(*T) *string) column[T] {
	return column[T]{
		index: index,
		name:  name,
		kind:  KindText,
		decode: func(rec *T, raw string) error {
			*field(rec) = raw
			return nil
		},
		encode: func(rec *T) string { return *field(rec) },
	}
}

func amountColumn[T any](index int, name string, field func(*T) *decimal.Decimal) column[T] {
	return column[T]{
		index: index,
		name:  name,
		kind:  KindAmount,
		decode: func(rec *T, raw string) error {
			d, err := ParseAmount(raw)
			*field(rec) = d
			return err
		},
		encode: func(rec *T) string { return formatAmount(*field(rec)) },
	}
}

func countColumn[T any](index int, name string, field func(*T) *int) column[T] {
	return column[T]{
		index: index,
		name:  name,
		kind:  KindCount,
		decode: func(rec *T, raw string) error {
			n, err := ParseCount(raw)
			*field(rec) = n
			return err
		},
		encode: func(rec *T) string { return strconv.Itoa(*field(rec)) },
	}
}

// =============================================================================
// LAYOUT TABLES
// =============================================================================

var organizationLayout = []column[Organization]{
	textColumn(0, "OrganizationNumber", func(o *Organization) *string { return &o.OrganizationNumber }),
	textColumn(1, "MerchantName", func(o *Organization) *string { return &o.MerchantName }),
}

var companyLayout = []column[Company]{
	textColumn(0, "Name", func(c *Company) *string { return &c.Name }),
	textColumn(1, "VisitingAddress", func(c *Company) *string { return &c.VisitingAddress }),
	textColumn(2, "Postbox", func(c *Company) *string { return &c.Postbox }),
	textColumn(3, "Zipno", func(c *Company) *string { return &c.Zipno }),
	textColumn(4, "Place", func(c *Company) *string { return &c.Place }),
	textColumn(5, "Country", func(c *Company) *string { return &c.Country }),
	textColumn(6, "CompanyNumber", func(c *Company) *string { return &c.CompanyNumber }),
}

var settlementLayout = []column[Settlement]{
	textColumn(1, "SalesUnitName", func(s *Settlement) *string { return &s.SalesUnitName }),
	textColumn(2, "SaleUnitNumber", func(s *Settlement) *string { return &s.SaleUnitNumber }),
	textColumn(3, "SettlementDate", func(s *Settlement) *string { return &s.SettlementDate }),
	textColumn(4, "SettlementID", func(s *Settlement) *string { return &s.SettlementID }),
	textColumn(5, "SettlementAccount", func(s *Settlement) *string { return &s.SettlementAccount }),
	amountColumn(6, "Gross", func(s *Settlement) *decimal.Decimal { return &s.Gross }),
	textColumn(7, "Currency", func(s *Settlement) *string { return &s.Currency }),
	amountColumn(8, "Fee", func(s *Settlement) *decimal.Decimal { return &s.Fee }),
	amountColumn(9, "Refund", func(s *Settlement) *decimal.Decimal { return &s.Refund }),
	amountColumn(10, "Net", func(s *Settlement) *decimal.Decimal { return &s.Net }),
	countColumn(11, "NumberOfTransactions", func(s *Settlement) *int { return &s.NumberOfTransactions }),
}

var feeLayout = []column[Fee]{
	textColumn(1, "SettlementDate", func(f *Fee) *string { return &f.SettlementDate }),
	textColumn(2, "SaleUnitName", func(f *Fee) *string { return &f.SaleUnitName }),
	textColumn(3, "SaleUnitNumber", func(f *Fee) *string { return &f.SaleUnitNumber }),
	textColumn(4, "FeeAccount", func(f *Fee) *string { return &f.FeeAccount }),
	amountColumn(5, "Fee", func(f *Fee) *decimal.Decimal { return &f.Fee }),
	textColumn(6, "Currency", func(f *Fee) *string { return &f.Currency }),
}

var transactionLayout = []column[Transaction]{
	textColumn(1, "SalesDate", func(t *Transaction) *string { return &t.SalesDate }),
	textColumn(2, "SaleUnitName", func(t *Transaction) *string { return &t.SaleUnitName }),
	textColumn(3, "SaleUnitNumber", func(t *Transaction) *string { return &t.SaleUnitNumber }),
	textColumn(4, "TransactionId", func(t *Transaction) *string { return &t.TransactionId }),
	textColumn(5, "SettlementId", func(t *Transaction) *string { return &t.SettlementId }),
	textColumn(6, "OrderID", func(t *Transaction) *string { return &t.OrderID }),
	textColumn(7, "SettlementDate", func(t *Transaction) *string { return &t.SettlementDate }),
	amountColumn(8, "Gross", func(t *Transaction) *decimal.Decimal { return &t.Gross }),
	textColumn(9, "Currency", func(t *Transaction) *string { return &t.Currency }),
	amountColumn(10, "Fee", func(t *Transaction) *decimal.Decimal { return &t.Fee }),
	amountColumn(11, "Refund", func(t *Transaction) *decimal.Decimal { return &t.Refund }),
	amountColumn(12, "Net", func(t *Transaction) *decimal.Decimal { return &t.Net }),
}

// =============================================================================
// GENERIC ROW CODEC
// =============================================================================

// badValueFunc is called for every column whose decoder failed. Returning a
// non-nil error aborts the row.
type badValueFunc func(name, raw string) error

// decodeRow reads one record from the current line of src.
func decodeRow[T any](src FieldSource, layout []column[T], onBad badValueFunc) (T, error) {
	var rec T
	for _, col := range layout {
		raw := src.Field(col.index)
		if err := col.decode(&rec, raw); err != nil {
			if abort := onBad(col.name, raw); abort != nil {
				return rec, abort
			}
		}
	}
	return rec, nil
}

// encodeRow renders a record back to format-ordered fields.
func encodeRow[T any](rec *T, layout []column[T]) []Field {
	fields := make([]Field, len(layout))
	for i, col := range layout {
		fields[i] = Field{Name: col.name, Value: col.encode(rec), Kind: col.kind}
	}
	return fields
}

func columnNames[T any](layout []column[T]) []string {
	names := make([]string, len(layout))
	for i, col := range layout {
		names[i] = col.name
	}
	return names
}

// SectionColumns returns the column labels of a section in format order.
// It returns nil for StateInitial.
func SectionColumns(section State) []string {
	switch section {
	case StateOrganization:
		return columnNames(organizationLayout)
	case StateCompany:
		return columnNames(companyLayout)
	case StateSettlement:
		return columnNames(settlementLayout)
	case StateFee:
		return columnNames(feeLayout)
	case StateTransaction:
		return columnNames(transactionLayout)
	}
	return nil
}
