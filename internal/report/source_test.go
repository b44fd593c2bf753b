package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceLine struct {
	line   int
	fields []string
}

func drain(src FieldSource) []sourceLine {
	var out []sourceLine
	for src.Next() {
		fields := make([]string, src.Len())
		for i := range fields {
			fields[i] = src.Field(i)
		}
		out = append(out, sourceLine{line: src.Line(), fields: fields})
	}
	return out
}

func TestFieldSourceStrategiesAgree(t *testing.T) {
	t.Parallel()

	text := "a, b ,c\r\n\r\n  \nd,,e\n,\nlast"
	want := []sourceLine{
		{line: 1, fields: []string{"a", "b", "c"}},
		{line: 4, fields: []string{"d", "", "e"}},
		{line: 5, fields: []string{"", ""}},
		{line: 6, fields: []string{"last"}},
	}

	for _, strategy := range []Strategy{StrategySplit, StrategyCursor} {
		strategy := strategy
		t.Run(strategy.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, drain(NewFieldSource(text, strategy)))
		})
	}
}

func TestFieldSourceOutOfRange(t *testing.T) {
	t.Parallel()

	for _, strategy := range []Strategy{StrategySplit, StrategyCursor} {
		src := NewFieldSource("only,two", strategy)
		assert.Equal(t, "", src.Field(0), "before Next")

		require.True(t, src.Next())
		assert.Equal(t, "two", src.Field(1))
		assert.Equal(t, "", src.Field(2))
		assert.Equal(t, "", src.Field(-1))

		assert.False(t, src.Next())
		assert.False(t, src.Next())
		assert.Equal(t, 0, src.Len())
	}
}

func TestFieldSourceEmptyText(t *testing.T) {
	t.Parallel()

	for _, strategy := range []Strategy{StrategySplit, StrategyCursor} {
		assert.Empty(t, drain(NewFieldSource("", strategy)))
		assert.Empty(t, drain(NewFieldSource("\r\n\n", strategy)))
	}
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	s, err := ParseStrategy("Cursor")
	require.NoError(t, err)
	assert.Equal(t, StrategyCursor, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategySplit, s)

	_, err = ParseStrategy("regex")
	assert.Error(t, err)
}
