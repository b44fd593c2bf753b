package export

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/settlement-report-parser/internal/report"
)

func init() { Register(yamlExporter{}) }

type yamlExporter struct{}

func (yamlExporter) Format() string    { return "yaml" }
func (yamlExporter) Extension() string { return ".yaml" }

func (yamlExporter) Export(w io.Writer, rep *report.Report, opts Options) error {
	doc, err := newDocument(rep, opts.SettlementShape)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(opts.indent())
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
