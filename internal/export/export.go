// =============================================================================
// Settlement Report Parser - Export Registry
// =============================================================================
//
// Exporters render a parsed report into an output format. Each format lives
// in its own file and registers itself from init, so adding a format means
// adding one file.
//
// FORMATS:
//   json, yaml - the report document, settlement shape applied
//   xml        - element per field, sections numbered with an "n" attribute
//   xlsx       - one worksheet per section
//   pdf        - printable summary
//
// =============================================================================

package export

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ginjaninja78/settlement-report-parser/internal/report"
)

var (
	// ErrUnknownFormat is returned by Lookup for unregistered formats.
	ErrUnknownFormat = errors.New("unknown export format")

	// ErrSettlementShape is returned under ShapeSingle when the report does
	// not hold exactly one settlement.
	ErrSettlementShape = errors.New("report does not hold exactly one settlement")
)

// Exporter writes a report in one output format.
type Exporter interface {
	// Format is the name used in configuration and on the command line.
	Format() string

	// Extension is the output file extension including the leading dot.
	Extension() string

	Export(w io.Writer, rep *report.Report, opts Options) error
}

var registry = map[string]Exporter{}

// Register adds an exporter. Registering the same format twice panics.
func Register(e Exporter) {
	name := strings.ToLower(e.Format())
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("export: format %q registered twice", name))
	}
	registry[name] = e
}

// Lookup returns the exporter for a format name.
func Lookup(format string) (Exporter, error) {
	e, ok := registry[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}
	return e, nil
}

// Formats lists the registered format names in sorted order.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// OPTIONS
// =============================================================================

// Shape selects how settlements appear in document formats.
type Shape int

const (
	// ShapeAuto emits a single "settlement" when the report holds exactly
	// one, and a "settlements" list otherwise.
	ShapeAuto Shape = iota

	// ShapeList always emits a "settlements" list.
	ShapeList

	// ShapeSingle always emits a single "settlement" and fails otherwise.
	ShapeSingle
)

func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeSingle:
		return "single"
	}
	return "auto"
}

// ParseShape maps a configuration value to a Shape.
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return ShapeAuto, nil
	case "list":
		return ShapeList, nil
	case "single":
		return ShapeSingle, nil
	}
	return ShapeAuto, fmt.Errorf("unknown settlement shape %q (want auto, list or single)", name)
}

// Options controls rendering.
type Options struct {
	SettlementShape Shape

	// Indent is the number of spaces per nesting level for text formats.
	// Zero means 2.
	Indent int
}

func (o Options) indent() int {
	if o.Indent <= 0 {
		return 2
	}
	return o.Indent
}

// =============================================================================
// DOCUMENT VIEW
// =============================================================================

// document is the shape-resolved view of a report shared by the json and
// yaml exporters. Exactly one of Settlement and Settlements is set.
type document struct {
	Organization record                      `json:"organization" yaml:"organization"`
	Company      record                      `json:"company" yaml:"company"`
	Settlement   record                      `json:"settlement,omitempty" yaml:"settlement,omitempty"`
	Settlements  *[]record                   `json:"settlements,omitempty" yaml:"settlements,omitempty"`
	Fees         []record                    `json:"fees" yaml:"fees"`
	Transactions []record                    `json:"transactions" yaml:"transactions"`
	Warnings     []report.DataQualityWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// singleSettlement reports whether the settlement section renders as one
// object under shape. It fails for ShapeSingle on a report that does not
// hold exactly one settlement.
func singleSettlement(rep *report.Report, shape Shape) (bool, error) {
	switch shape {
	case ShapeList:
		return false, nil
	case ShapeSingle:
		if len(rep.Settlements) != 1 {
			return false, fmt.Errorf("%w: found %d", ErrSettlementShape, len(rep.Settlements))
		}
		return true, nil
	}
	return len(rep.Settlements) == 1, nil
}

func newDocument(rep *report.Report, shape Shape) (*document, error) {
	single, err := singleSettlement(rep, shape)
	if err != nil {
		return nil, err
	}
	doc := &document{
		Organization: rep.Organization.Fields(),
		Company:      rep.Company.Fields(),
		Fees:         records(rep.Fees),
		Transactions: records(rep.Transactions),
		Warnings:     rep.Warnings,
	}
	if single {
		doc.Settlement = rep.Settlements[0].Fields()
	} else {
		list := records(rep.Settlements)
		doc.Settlements = &list
	}
	return doc, nil
}
