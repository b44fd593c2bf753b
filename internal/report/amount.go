package report

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount normalizes a locale-formatted amount and parses it.
//
// The export may use a space as thousands separator and a comma as decimal
// separator ("16 511,71"). All whitespace is stripped and the decimal comma
// is replaced with a period before parsing, so already-normalized input
// ("16511.71") parses to the same value.
//
// RETURNS:
//   - decimal.Zero for empty input.
//   - ErrNotNumeric (wrapped) when the text is not a number.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := normalizeAmount(raw)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotNumeric, raw)
	}
	return d, nil
}

// ParseCount parses an integer column. No locale normalization applies.
func ParseCount(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, raw)
	}
	return n, nil
}

// normalizeAmount strips whitespace (including non-breaking spaces used as
// thousands separators) and turns the decimal comma into a period.
func normalizeAmount(raw string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\u202f' {
			return -1
		}
		return r
	}, raw)
	return strings.Replace(s, ",", ".", 1)
}

// formatAmount renders an amount with at least two decimals.
func formatAmount(d decimal.Decimal) string {
	places := int32(2)
	if exp := -d.Exponent(); exp > places {
		places = exp
	}
	return d.StringFixed(places)
}
