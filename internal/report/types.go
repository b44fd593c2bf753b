// =============================================================================
// Settlement Report Parser - Report Types
// =============================================================================
//
// This file declares the typed records produced by the scanner. Field order
// follows the column order of the settlement export, not alphabetical order,
// so the structs can be read side by side with a raw report.
//
// RECORDS:
//   Organization  - exactly one per report
//   Company       - exactly one per report
//   Settlement    - one or more aggregate payout lines
//   Fee           - zero or more independent fee ledger lines
//   Transaction   - zero or more sales lines
//
// =============================================================================

package report

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// Organization identifies the merchant the report was issued for.
type Organization struct {
	OrganizationNumber string `json:"OrganizationNumber" yaml:"OrganizationNumber"`
	MerchantName       string `json:"MerchantName" yaml:"MerchantName"`
}

// Company holds the legal entity address block.
type Company struct {
	Name            string `json:"Name" yaml:"Name"`
	VisitingAddress string `json:"VisitingAddress" yaml:"VisitingAddress"`
	Postbox         string `json:"Postbox" yaml:"Postbox"`
	Zipno           string `json:"Zipno" yaml:"Zipno"`
	Place           string `json:"Place" yaml:"Place"`
	Country         string `json:"Country" yaml:"Country"`
	CompanyNumber   string `json:"CompanyNumber" yaml:"CompanyNumber"`
}

// Settlement is an aggregate payout summarizing many transactions.
type Settlement struct {
	SalesUnitName        string          `json:"SalesUnitName" yaml:"SalesUnitName"`
	SaleUnitNumber       string          `json:"SaleUnitNumber" yaml:"SaleUnitNumber"`
	SettlementDate       string          `json:"SettlementDate" yaml:"SettlementDate"`
	SettlementID         string          `json:"SettlementID" yaml:"SettlementID"`
	SettlementAccount    string          `json:"SettlementAccount" yaml:"SettlementAccount"`
	Gross                decimal.Decimal `json:"Gross" yaml:"Gross"`
	Currency             string          `json:"Currency" yaml:"Currency"`
	Fee                  decimal.Decimal `json:"Fee" yaml:"Fee"`
	Refund               decimal.Decimal `json:"Refund" yaml:"Refund"`
	Net                  decimal.Decimal `json:"Net" yaml:"Net"`
	NumberOfTransactions int             `json:"NumberOfTransactions" yaml:"NumberOfTransactions"`
}

// Fee is a charge line item booked separately from per-transaction fees.
type Fee struct {
	SettlementDate string          `json:"SettlementDate" yaml:"SettlementDate"`
	SaleUnitName   string          `json:"SaleUnitName" yaml:"SaleUnitName"`
	SaleUnitNumber string          `json:"SaleUnitNumber" yaml:"SaleUnitNumber"`
	FeeAccount     string          `json:"FeeAccount" yaml:"FeeAccount"`
	Fee            decimal.Decimal `json:"Fee" yaml:"Fee"`
	Currency       string          `json:"Currency" yaml:"Currency"`
}

// Transaction is a single sale (or refund) included in a settlement.
type Transaction struct {
	SalesDate      string          `json:"SalesDate" yaml:"SalesDate"`
	SaleUnitName   string          `json:"SaleUnitName" yaml:"SaleUnitName"`
	SaleUnitNumber string          `json:"SaleUnitNumber" yaml:"SaleUnitNumber"`
	TransactionId  string          `json:"TransactionId" yaml:"TransactionId"`
	SettlementId   string          `json:"SettlementId" yaml:"SettlementId"`
	OrderID        string          `json:"OrderID" yaml:"OrderID"`
	SettlementDate string          `json:"SettlementDate" yaml:"SettlementDate"`
	Gross          decimal.Decimal `json:"Gross" yaml:"Gross"`
	Currency       string          `json:"Currency" yaml:"Currency"`
	Fee            decimal.Decimal `json:"Fee" yaml:"Fee"`
	Refund         decimal.Decimal `json:"Refund" yaml:"Refund"`
	Net            decimal.Decimal `json:"Net" yaml:"Net"`
}

// =============================================================================
// RESULT BUNDLE
// =============================================================================

// Report is the result of a single parse. It is built once by the scanner
// and must be treated as read-only by callers.
type Report struct {
	Organization Organization  `json:"organization" yaml:"organization"`
	Company      Company       `json:"company" yaml:"company"`
	Settlements  []Settlement  `json:"settlements" yaml:"settlements"`
	Fees         []Fee         `json:"fees" yaml:"fees"`
	Transactions []Transaction `json:"transactions" yaml:"transactions"`

	// Warnings lists numeric fields that held non-numeric text. It is only
	// populated under NumericLenient, where the affected fields decode as
	// zero. That zero cannot be told apart from an empty field or a real
	// 0.00 amount, so callers that parse leniently must check Warnings
	// before trusting any amount or count.
	Warnings []DataQualityWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Settlement returns the report's settlement when it holds exactly one.
// Older report variants carry a single settlement block; callers that
// expect that shape can use this instead of indexing Settlements.
func (r *Report) Settlement() (Settlement, bool) {
	if len(r.Settlements) != 1 {
		return Settlement{}, false
	}
	return r.Settlements[0], true
}

// =============================================================================
// FIELD VIEW
// =============================================================================

// ColumnKind tells how a positional column is decoded.
type ColumnKind int

const (
	// KindText is copied verbatim after trimming.
	KindText ColumnKind = iota

	// KindAmount is a locale-normalized decimal amount.
	KindAmount

	// KindCount is a plain decimal integer.
	KindCount
)

// Field is one record value rendered back to text, in format order.
type Field struct {
	Name  string
	Value string
	Kind  ColumnKind
}

// Fields returns the organization values in format order.
func (o Organization) Fields() []Field { return encodeRow(&o, organizationLayout) }

// Fields returns the company values in format order.
func (c Company) Fields() []Field { return encodeRow(&c, companyLayout) }

// Fields returns the settlement values in format order.
func (s Settlement) Fields() []Field { return encodeRow(&s, settlementLayout) }

// Fields returns the fee values in format order.
func (f Fee) Fields() []Field { return encodeRow(&f, feeLayout) }

// Fields returns the transaction values in format order.
func (t Transaction) Fields() []Field { return encodeRow(&t, transactionLayout) }
