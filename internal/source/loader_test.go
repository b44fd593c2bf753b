package source_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/settlement-report-parser/internal/source"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     []byte
		encoding string
		want     string
	}{
		{"utf-8 passthrough", []byte("Zipno,Place\n0191,Tromsø"), "", "Zipno,Place\n0191,Tromsø"},
		{"utf-8 bom dropped", []byte("\xef\xbb\xbfOrganizationNumber"), "utf-8", "OrganizationNumber"},
		{"utf-16 bom switches decoder", []byte("\xff\xfeA\x00,\x00B\x00"), "UTF-8", "A,B"},
		{"utf-16be", []byte("\x00A\x00,\x00B"), "utf-16be", "A,B"},
		{"latin1", []byte("Troms\xf8"), "iso-8859-1", "Tromsø"},
		{"latin1 alias", []byte("\xc6RE"), "Latin1", "ÆRE"},
		{"iso-8859-15 euro", []byte("\xa4"), "iso-8859-15", "€"},
		{"windows-1252 euro", []byte("\x80 10"), "windows_1252", "€ 10"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := source.Decode(tc.data, tc.encoding)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeUnknownEncoding(t *testing.T) {
	t.Parallel()

	_, err := source.Decode([]byte("x"), "ebcdic")
	assert.ErrorIs(t, err, source.ErrUnsupportedEncoding)
	assert.False(t, source.Supported("ebcdic"))
	assert.True(t, source.Supported(""))
	assert.True(t, source.Supported("CP-1252"))
}

func TestRead(t *testing.T) {
	t.Parallel()

	got, err := source.Read(strings.NewReader("Name\r\nAcme\r\n"), "")
	require.NoError(t, err)
	assert.Equal(t, "Name\r\nAcme\r\n", got)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("Place\nTroms\xf8\n"), 0o644))

	got, err := source.Load(path, "windows-1252")
	require.NoError(t, err)
	assert.Equal(t, "Place\nTromsø\n", got)

	_, err = source.Load(filepath.Join(dir, "missing.csv"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEncodingsAreSupported(t *testing.T) {
	t.Parallel()

	for _, name := range source.Encodings() {
		assert.True(t, source.Supported(name), name)
	}
}
