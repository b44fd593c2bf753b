// =============================================================================
// Settlement Report Parser - Validation Module
// =============================================================================
//
// The scanner only guarantees that a report is structurally readable. This
// module checks that what was read is consistent before it is exported:
//
//   - Required identifiers are present
//   - Gross + Fee + Refund equals Net on every settlement and transaction
//   - Settlement transaction counts match the transactions in the report
//   - One currency is used throughout
//   - Dates use the DD.MM.YYYY layout of the export
//   - Non-numeric values the scanner replaced with zero are surfaced
//
// Each finding has a severity. Errors make the report invalid; warnings do
// so only under TreatWarningsAsErrors.
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/settlement-report-parser/internal/report"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names, usable in ValidationOptions.SkipRules.
const (
	RuleRequired         = "required"
	RuleBalance          = "balance"
	RuleTransactionCount = "transaction_count"
	RuleCurrency         = "currency"
	RuleDateFormat       = "date_format"
	RuleNumeric          = "numeric"
	RuleOrganization     = "organization_match"
)

// DefaultDateLayout is the date layout used throughout the export.
const DefaultDateLayout = "02.01.2006"

// =============================================================================
// VALIDATION ERROR STRUCTURE
// =============================================================================

// ValidationError is a single finding.
type ValidationError struct {
	// Severity is "error" or "warning".
	Severity string

	// Section is the record type the finding is about (Settlement, ...).
	Section string

	// Record is the 1-based index of the record within its section, or 0
	// for the single Organization and Company records.
	Record int

	Field   string
	Value   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	where := e.Section
	if e.Record > 0 {
		where = fmt.Sprintf("%s %d", e.Section, e.Record)
	}
	if e.Field != "" {
		where = fmt.Sprintf("%s, Field '%s'", where, e.Field)
	}
	msg := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(e.Severity), where, e.Message)
	if e.Value != "" {
		msg += fmt.Sprintf(" (value: '%s')", e.Value)
	}
	return msg
}

// ValidationResult summarizes one report.
type ValidationResult struct {
	IsValid bool

	Errors []*ValidationError

	ErrorCount int

	WarningCount int

	// RecordsValidated counts every record checked, organization and
	// company included.
	RecordsValidated int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions configures a Validator.
type ValidationOptions struct {
	// StopOnFirstError stops at the first error-severity finding.
	StopOnFirstError bool

	// TreatWarningsAsErrors makes any warning invalidate the report.
	TreatWarningsAsErrors bool

	// SkipRules disables rules by name.
	SkipRules []string

	// DateLayout is the time layout dates are checked against.
	DateLayout string

	// StrictBalance reports Gross + Fee + Refund != Net as an error instead
	// of a warning. Provider reports do not guarantee the identity.
	StrictBalance bool
}

// DefaultValidationOptions returns the default options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{DateLayout: DefaultDateLayout}
}

// Validator runs the report rules.
type Validator struct {
	options ValidationOptions
	skip    map[string]bool
}

// NewValidator creates a validator with default options.
func NewValidator() *Validator {
	return NewValidatorWithOptions(DefaultValidationOptions())
}

// NewValidatorWithOptions creates a validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	if options.DateLayout == "" {
		options.DateLayout = DefaultDateLayout
	}
	skip := make(map[string]bool, len(options.SkipRules))
	for _, r := range options.SkipRules {
		skip[r] = true
	}
	return &Validator{options: options, skip: skip}
}

// Validate checks a report with default options and returns all findings.
func Validate(rep *report.Report) []*ValidationError {
	return NewValidator().ValidateReport(rep).Errors
}

// collector accumulates findings for one report.
type collector struct {
	v      *Validator
	result *ValidationResult
	stop   bool
}

func (c *collector) add(e *ValidationError) {
	if c.stop || c.v.skip[e.Rule] {
		return
	}
	c.result.Errors = append(c.result.Errors, e)
	if e.Severity == SeverityError {
		c.result.ErrorCount++
		c.result.IsValid = false
		if c.v.options.StopOnFirstError {
			c.stop = true
		}
		return
	}
	c.result.WarningCount++
	if c.v.options.TreatWarningsAsErrors {
		c.result.IsValid = false
	}
}

// ValidateReport runs every enabled rule against rep.
func (v *Validator) ValidateReport(rep *report.Report) *ValidationResult {
	c := &collector{
		v: v,
		result: &ValidationResult{
			IsValid:          true,
			Errors:           make([]*ValidationError, 0),
			RecordsValidated: 2 + len(rep.Settlements) + len(rep.Fees) + len(rep.Transactions),
		},
	}

	v.checkParties(c, rep)
	v.checkSettlements(c, rep)
	v.checkFees(c, rep)
	v.checkTransactions(c, rep)
	v.checkTransactionCount(c, rep)
	v.checkCurrency(c, rep)

	for _, w := range rep.Warnings {
		c.add(&ValidationError{
			Severity: SeverityWarning,
			Section:  w.Section,
			Field:    w.Field,
			Value:    w.Value,
			Rule:     RuleNumeric,
			Message:  fmt.Sprintf("non-numeric value on line %d was read as 0", w.Line),
		})
	}
	return c.result
}

func (v *Validator) checkParties(c *collector, rep *report.Report) {
	required(c, "Organization", 0, "OrganizationNumber", rep.Organization.OrganizationNumber)
	required(c, "Organization", 0, "MerchantName", rep.Organization.MerchantName)
	required(c, "Company", 0, "Name", rep.Company.Name)
	required(c, "Company", 0, "CompanyNumber", rep.Company.CompanyNumber)

	org, company := rep.Organization.OrganizationNumber, rep.Company.CompanyNumber
	if org != "" && company != "" && org != company {
		c.add(&ValidationError{
			Severity: SeverityWarning,
			Section:  "Company",
			Field:    "CompanyNumber",
			Value:    company,
			Rule:     RuleOrganization,
			Message:  fmt.Sprintf("company number differs from organization number %s", org),
		})
	}
}

func (v *Validator) checkSettlements(c *collector, rep *report.Report) {
	for i, st := range rep.Settlements {
		n := i + 1
		required(c, "Settlement", n, "SettlementID", st.SettlementID)
		required(c, "Settlement", n, "Currency", st.Currency)
		v.balance(c, "Settlement", n, st.Gross, st.Fee, st.Refund, st.Net)
		v.date(c, "Settlement", n, "SettlementDate", st.SettlementDate)
	}
}

func (v *Validator) checkFees(c *collector, rep *report.Report) {
	for i, fee := range rep.Fees {
		n := i + 1
		required(c, "Fee", n, "FeeAccount", fee.FeeAccount)
		v.date(c, "Fee", n, "SettlementDate", fee.SettlementDate)
	}
}

func (v *Validator) checkTransactions(c *collector, rep *report.Report) {
	for i, tx := range rep.Transactions {
		n := i + 1
		required(c, "Transaction", n, "TransactionId", tx.TransactionId)
		required(c, "Transaction", n, "Currency", tx.Currency)
		v.balance(c, "Transaction", n, tx.Gross, tx.Fee, tx.Refund, tx.Net)
		v.date(c, "Transaction", n, "SalesDate", tx.SalesDate)
		v.date(c, "Transaction", n, "SettlementDate", tx.SettlementDate)
	}
}

// checkTransactionCount compares NumberOfTransactions with the transaction
// rows. When transactions reference settlements by id the comparison is
// per settlement; otherwise the totals are compared.
func (v *Validator) checkTransactionCount(c *collector, rep *report.Report) {
	if len(rep.Settlements) == 0 {
		return
	}

	perSettlement := make(map[string]int)
	for _, tx := range rep.Transactions {
		perSettlement[tx.SettlementId]++
	}
	linked := false
	for _, st := range rep.Settlements {
		if perSettlement[st.SettlementID] > 0 {
			linked = true
			break
		}
	}

	if linked {
		for i, st := range rep.Settlements {
			if got := perSettlement[st.SettlementID]; got != st.NumberOfTransactions {
				c.add(countMismatch(i+1, st.NumberOfTransactions, got))
			}
		}
		return
	}

	declared := 0
	for _, st := range rep.Settlements {
		declared += st.NumberOfTransactions
	}
	if declared != len(rep.Transactions) {
		c.add(countMismatch(0, declared, len(rep.Transactions)))
	}
}

func countMismatch(record, declared, found int) *ValidationError {
	return &ValidationError{
		Severity: SeverityWarning,
		Section:  "Settlement",
		Record:   record,
		Field:    "NumberOfTransactions",
		Value:    fmt.Sprint(declared),
		Rule:     RuleTransactionCount,
		Message:  fmt.Sprintf("declares %d transactions but the report lists %d", declared, found),
	}
}

// checkCurrency flags records whose currency differs from the first
// settlement's.
func (v *Validator) checkCurrency(c *collector, rep *report.Report) {
	if len(rep.Settlements) == 0 || rep.Settlements[0].Currency == "" {
		return
	}
	want := rep.Settlements[0].Currency
	mismatch := func(section string, n int, got string) {
		if got != "" && got != want {
			c.add(&ValidationError{
				Severity: SeverityError,
				Section:  section,
				Record:   n,
				Field:    "Currency",
				Value:    got,
				Rule:     RuleCurrency,
				Message:  fmt.Sprintf("currency differs from settlement currency %s", want),
			})
		}
	}
	for i, st := range rep.Settlements[1:] {
		mismatch("Settlement", i+2, st.Currency)
	}
	for i, fee := range rep.Fees {
		mismatch("Fee", i+1, fee.Currency)
	}
	for i, tx := range rep.Transactions {
		mismatch("Transaction", i+1, tx.Currency)
	}
}

// =============================================================================
// FIELD RULES
// =============================================================================

func required(c *collector, section string, n int, field, value string) {
	if value != "" {
		return
	}
	c.add(&ValidationError{
		Severity: SeverityError,
		Section:  section,
		Record:   n,
		Field:    field,
		Rule:     RuleRequired,
		Message:  fmt.Sprintf("required field '%s' is empty", field),
	})
}

func (v *Validator) balance(c *collector, section string, n int, gross, fee, refund, net decimal.Decimal) {
	want := gross.Add(fee).Add(refund)
	if want.Equal(net) {
		return
	}
	severity := SeverityWarning
	if v.options.StrictBalance {
		severity = SeverityError
	}
	c.add(&ValidationError{
		Severity: severity,
		Section:  section,
		Record:   n,
		Field:    "Net",
		Value:    net.StringFixed(2),
		Rule:     RuleBalance,
		Message:  fmt.Sprintf("Gross + Fee + Refund = %s does not equal Net", want.StringFixed(2)),
	})
}

func (v *Validator) date(c *collector, section string, n int, field, value string) {
	if value == "" {
		return
	}
	if _, err := time.Parse(v.options.DateLayout, value); err != nil {
		c.add(&ValidationError{
			Severity: SeverityWarning,
			Section:  section,
			Record:   n,
			Field:    field,
			Value:    value,
			Rule:     RuleDateFormat,
			Message:  fmt.Sprintf("date does not match layout %s", v.options.DateLayout),
		})
	}
}

// =============================================================================
// REPORTING
// =============================================================================

// FormatErrors renders findings for display.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Validation completed with %d finding(s):\n\n", len(errors))
	for i, err := range errors {
		fmt.Fprintf(&builder, "%d. %s\n", i+1, err.Error())
	}
	return builder.String()
}

// WriteErrorLog writes the findings for one source file to filePath,
// creating parent directories as needed.
func WriteErrorLog(errors []*ValidationError, sourceFile, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Source: %s\nGenerated: %s\n\n", sourceFile, time.Now().Format(time.RFC3339))
	builder.WriteString(FormatErrors(errors))

	if err := os.WriteFile(filePath, []byte(builder.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
