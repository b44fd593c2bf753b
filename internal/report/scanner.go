// =============================================================================
// Settlement Report Parser - Scanner
// =============================================================================
//
// The scanner makes a single pass over the report text. Every non-blank line
// is fed to the state machine in state.go, which decides whether the line
// opens a section, is a data row of the active section, or is noise. Data
// rows are decoded through the layout tables in layout.go.
//
// The scanner does no I/O. Callers obtain the text themselves (see
// internal/source) and hand it over as a string.
//
// =============================================================================

package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// NumericPolicy decides what happens to non-numeric text in a numeric field.
type NumericPolicy int

const (
	// NumericLenient stores zero for the field and records a
	// DataQualityWarning on the report.
	NumericLenient NumericPolicy = iota

	// NumericStrict aborts the parse with a *DataQualityError.
	NumericStrict
)

func (p NumericPolicy) String() string {
	if p == NumericStrict {
		return "strict"
	}
	return "lenient"
}

// ParseNumericPolicy maps a configuration value to a NumericPolicy.
func ParseNumericPolicy(name string) (NumericPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lenient":
		return NumericLenient, nil
	case "strict":
		return NumericStrict, nil
	}
	return NumericLenient, fmt.Errorf("unknown numeric policy %q (want lenient or strict)", name)
}

// Options configures a Scanner. The zero value is usable.
type Options struct {
	NumericPolicy NumericPolicy
	Strategy      Strategy

	// Logger receives section transitions at debug level. Nil disables
	// logging.
	Logger *zerolog.Logger
}

// DefaultOptions returns lenient numeric handling with the split strategy.
func DefaultOptions() Options {
	return Options{NumericPolicy: NumericLenient, Strategy: StrategySplit}
}

// Scanner parses settlement reports. It holds only configuration, so one
// Scanner can be reused and shared between goroutines.
type Scanner struct {
	opts Options
	log  zerolog.Logger
}

// NewScanner creates a Scanner with the given options.
func NewScanner(opts Options) *Scanner {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "scanner").Logger()
	}
	return &Scanner{opts: opts, log: log}
}

// Parse parses a report with DefaultOptions.
func Parse(text string) (*Report, error) {
	return NewScanner(DefaultOptions()).Parse(text)
}

// Parse scans text and returns the typed report. On error no partial report
// is returned.
func (s *Scanner) Parse(text string) (*Report, error) {
	text = strings.TrimPrefix(text, "\ufeff")

	run := &scan{
		scanner: s,
		src:     NewFieldSource(text, s.opts.Strategy),
		report: &Report{
			Settlements:  []Settlement{},
			Fees:         []Fee{},
			Transactions: []Transaction{},
		},
	}
	if err := run.loop(); err != nil {
		return nil, err
	}
	if err := run.checkRequired(); err != nil {
		return nil, err
	}

	s.log.Debug().
		Int("settlements", len(run.report.Settlements)).
		Int("fees", len(run.report.Fees)).
		Int("transactions", len(run.report.Transactions)).
		Int("warnings", len(run.report.Warnings)).
		Msg("report parsed")
	return run.report, nil
}

// scan is the per-call state of one Parse.
type scan struct {
	scanner *Scanner
	src     FieldSource
	report  *Report

	state       State
	seen        sections
	haveOrg     bool
	haveCompany bool
}

func (r *scan) loop() error {
	log := r.scanner.log
	for r.src.Next() {
		mv, err := transition(r.state, r.seen, r.src.Field(0), r.src.Field(1))
		if err != nil {
			var malformed *MalformedSectionError
			if errors.As(err, &malformed) {
				malformed.Line = r.src.Line()
			}
			return err
		}

		switch mv.step {
		case stepHeader:
			r.seen = r.seen.with(mv.section)
			log.Debug().
				Int("line", r.src.Line()).
				Stringer("from", r.state).
				Stringer("to", mv.next).
				Msg("section header")
		case stepRow:
			if err := r.row(mv.section); err != nil {
				return err
			}
		}
		r.state = mv.next
	}
	return nil
}

// row decodes the current line into the record type of section.
func (r *scan) row(section State) error {
	onBad := func(name, raw string) error {
		w := DataQualityWarning{
			Line:    r.src.Line(),
			Section: section.String(),
			Field:   name,
			Value:   raw,
		}
		if r.scanner.opts.NumericPolicy == NumericStrict {
			return &DataQualityError{Warning: w}
		}
		r.scanner.log.Warn().Int("line", w.Line).Str("section", w.Section).
			Str("field", w.Field).Str("value", w.Value).Msg("non-numeric value stored as zero")
		r.report.Warnings = append(r.report.Warnings, w)
		return nil
	}

	rep := r.report
	switch section {
	case StateOrganization:
		org, err := decodeRow(r.src, organizationLayout, onBad)
		if err != nil {
			return err
		}
		rep.Organization, r.haveOrg = org, true
	case StateCompany:
		company, err := decodeRow(r.src, companyLayout, onBad)
		if err != nil {
			return err
		}
		rep.Company, r.haveCompany = company, true
	case StateSettlement:
		st, err := decodeRow(r.src, settlementLayout, onBad)
		if err != nil {
			return err
		}
		rep.Settlements = append(rep.Settlements, st)
	case StateFee:
		fee, err := decodeRow(r.src, feeLayout, onBad)
		if err != nil {
			return err
		}
		rep.Fees = append(rep.Fees, fee)
	case StateTransaction:
		tx, err := decodeRow(r.src, transactionLayout, onBad)
		if err != nil {
			return err
		}
		rep.Transactions = append(rep.Transactions, tx)
	}
	return nil
}

func (r *scan) checkRequired() error {
	var missing []string
	if !r.haveOrg {
		missing = append(missing, "organization")
	}
	if !r.haveCompany {
		missing = append(missing, "company")
	}
	if len(missing) > 0 {
		return &MissingRequiredDataError{Sections: missing}
	}
	return nil
}
