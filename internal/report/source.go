package report

import (
	"fmt"
	"strings"
)

// FieldSource walks the non-blank lines of a report and exposes the fields
// of the current line. Section recognition only talks to this interface,
// so the tokenizing strategy can change without touching the scanner.
type FieldSource interface {
	// Next advances to the next non-blank line. It returns false at the end.
	Next() bool

	// Field returns the trimmed field at index i of the current line, or
	// "" when the line has fewer fields.
	Field(i int) string

	// Len returns the number of fields on the current line.
	Len() int

	// Line returns the 1-based line number of the current line in the
	// original text, blank lines included.
	Line() int
}

// Strategy selects the FieldSource backing used by a Scanner.
type Strategy int

const (
	// StrategySplit tokenizes every line into a field slice up front.
	StrategySplit Strategy = iota

	// StrategyCursor keeps one forward cursor over the text and extracts
	// the fields of one line at a time into a reused buffer.
	StrategyCursor
)

func (s Strategy) String() string {
	switch s {
	case StrategySplit:
		return "split"
	case StrategyCursor:
		return "cursor"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy maps a configuration value to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "split":
		return StrategySplit, nil
	case "cursor":
		return StrategyCursor, nil
	}
	return StrategySplit, fmt.Errorf("unknown scan strategy %q (want split or cursor)", name)
}

// NewFieldSource returns a FieldSource over text using the given strategy.
func NewFieldSource(text string, strategy Strategy) FieldSource {
	if strategy == StrategyCursor {
		return &cursorSource{text: text}
	}
	return newSplitSource(text)
}

// =============================================================================
// SPLIT BACKING
// =============================================================================

type splitSource struct {
	rows  [][]string
	lines []int
	pos   int
}

func newSplitSource(text string) *splitSource {
	src := &splitSource{pos: -1}
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}
		src.rows = append(src.rows, fields)
		src.lines = append(src.lines, i+1)
	}
	return src
}

func (s *splitSource) Next() bool {
	if s.pos+1 >= len(s.rows) {
		s.pos = len(s.rows)
		return false
	}
	s.pos++
	return true
}

func (s *splitSource) Field(i int) string {
	if s.pos < 0 || s.pos >= len(s.rows) {
		return ""
	}
	row := s.rows[s.pos]
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func (s *splitSource) Len() int {
	if s.pos < 0 || s.pos >= len(s.rows) {
		return 0
	}
	return len(s.rows[s.pos])
}

func (s *splitSource) Line() int {
	if s.pos < 0 || s.pos >= len(s.rows) {
		return 0
	}
	return s.lines[s.pos]
}

// =============================================================================
// CURSOR BACKING
// =============================================================================

type cursorSource struct {
	text   string
	off    int // byte offset of the next unread line
	read   int // lines consumed so far, blank ones included
	line   int
	fields []string
}

func (c *cursorSource) Next() bool {
	for c.off < len(c.text) {
		rest := c.text[c.off:]
		raw := rest
		if end := strings.IndexByte(rest, '\n'); end >= 0 {
			raw = rest[:end]
			c.off += end + 1
		} else {
			c.off = len(c.text)
		}
		c.read++

		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		c.line = c.read
		c.fields = c.fields[:0]
		for {
			comma := strings.IndexByte(raw, ',')
			if comma < 0 {
				c.fields = append(c.fields, strings.TrimSpace(raw))
				break
			}
			c.fields = append(c.fields, strings.TrimSpace(raw[:comma]))
			raw = raw[comma+1:]
		}
		return true
	}
	c.fields = c.fields[:0]
	c.line = 0
	return false
}

func (c *cursorSource) Field(i int) string {
	if i < 0 || i >= len(c.fields) {
		return ""
	}
	return c.fields[i]
}

func (c *cursorSource) Len() int  { return len(c.fields) }
func (c *cursorSource) Line() int { return c.line }
