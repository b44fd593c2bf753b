package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/settlement-report-parser/internal/report"
)

func init() { Register(jsonExporter{}) }

type jsonExporter struct{}

func (jsonExporter) Format() string    { return "json" }
func (jsonExporter) Extension() string { return ".json" }

func (jsonExporter) Export(w io.Writer, rep *report.Report, opts Options) error {
	doc, err := newDocument(rep, opts.SettlementShape)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", strings.Repeat(" ", opts.indent()))
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
