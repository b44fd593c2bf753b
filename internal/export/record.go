package export

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/settlement-report-parser/internal/report"
)

// record is one report row as the json and yaml exporters see it. Keys
// keep format order and amounts keep the two-decimal text every other
// exporter writes, so -1490 renders as "-1490.00" rather than "-1490".
type record []report.Field

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		// Counts are bare numbers; amounts stay strings as decimal.Decimal
		// writes them.
		if f.Kind == report.KindCount {
			buf.WriteString(f.Value)
			continue
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r record) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range r {
		tag := "!!str"
		switch f.Kind {
		case report.KindAmount:
			tag = "!!float"
		case report.KindCount:
			tag = "!!int"
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: f.Value},
		)
	}
	return node, nil
}

func records[T interface{ Fields() []report.Field }](rows []T) []record {
	out := make([]record, len(rows))
	for i, row := range rows {
		out[i] = row.Fields()
	}
	return out
}
