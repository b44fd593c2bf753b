package report

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Typed errors below unwrap to one of these so callers can
// branch with errors.Is without caring about the details.
var (
	ErrMissingRequiredData = errors.New("missing required report data")
	ErrMalformedSection    = errors.New("malformed report section")
	ErrDataQuality         = errors.New("non-numeric value in numeric field")
	ErrNotNumeric          = errors.New("value is not numeric")
)

// MissingRequiredDataError is returned when the organization or company
// section was never populated.
type MissingRequiredDataError struct {
	// Sections names the sections that were missing, in format order.
	Sections []string
}

func (e *MissingRequiredDataError) Error() string {
	return fmt.Sprintf("missing required %s data", strings.Join(e.Sections, " and "))
}

func (e *MissingRequiredDataError) Unwrap() error { return ErrMissingRequiredData }

// MalformedSectionError is returned when a sentinel-prefixed data row shows
// up before its section header established the section.
type MalformedSectionError struct {
	Line     int
	Sentinel string
	Header   string // header label expected in the second field
	Got      string // what the second field actually held
}

func (e *MalformedSectionError) Error() string {
	return fmt.Sprintf("line %d: %s row before its header (want second field %q, got %q)",
		e.Line, e.Sentinel, e.Header, e.Got)
}

func (e *MalformedSectionError) Unwrap() error { return ErrMalformedSection }

// DataQualityWarning records a numeric field holding non-numeric text.
type DataQualityWarning struct {
	Line    int    `json:"line" yaml:"line"`
	Section string `json:"section" yaml:"section"`
	Field   string `json:"field" yaml:"field"`
	Value   string `json:"value" yaml:"value"`
}

func (w DataQualityWarning) String() string {
	return fmt.Sprintf("line %d: %s.%s: %q is not numeric", w.Line, w.Section, w.Field, w.Value)
}

// DataQualityError aborts a parse under NumericStrict.
type DataQualityError struct {
	Warning DataQualityWarning
}

func (e *DataQualityError) Error() string { return e.Warning.String() }

func (e *DataQualityError) Unwrap() error { return ErrDataQuality }
