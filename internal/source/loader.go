// =============================================================================
// Settlement Report Parser - Source Loader
// =============================================================================
//
// The scanner works on already-decoded text. This package is the byte-side
// collaborator: it reads a report from disk or any io.Reader and converts it
// to UTF-8 text.
//
// SUPPORTED ENCODINGS:
//   - utf-8 (default): a UTF-8 byte order mark is dropped, and a UTF-16 byte
//     order mark switches decoding to UTF-16 of that byte order
//   - utf-16le / utf-16be: BOM honoured when present
//   - iso-8859-1 (latin1), iso-8859-15, windows-1252 (cp1252): the encodings
//     older spreadsheet exports in the Nordics are saved with
//
// =============================================================================

package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnsupportedEncoding is returned for encoding names not listed above.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "utf-8"

var encodings = map[string]encoding.Encoding{
	"utf8":        unicode.UTF8,
	"utf16le":     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf16be":     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	"iso88591":    charmap.ISO8859_1,
	"latin1":      charmap.ISO8859_1,
	"iso885915":   charmap.ISO8859_15,
	"windows1252": charmap.Windows1252,
	"cp1252":      charmap.Windows1252,
}

func canonical(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(name)
}

// Supported reports whether name is a known encoding. The empty string
// selects DefaultEncoding and is supported.
func Supported(name string) bool {
	if strings.TrimSpace(name) == "" {
		return true
	}
	_, ok := encodings[canonical(name)]
	return ok
}

// Encodings lists the accepted encoding names.
func Encodings() []string {
	names := []string{"utf-8", "utf-16le", "utf-16be", "iso-8859-1", "latin1", "iso-8859-15", "windows-1252", "cp1252"}
	sort.Strings(names)
	return names
}

func decoderFor(name string) (transform.Transformer, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultEncoding
	}
	enc, ok := encodings[canonical(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
	if enc == unicode.UTF8 {
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	}
	return enc.NewDecoder(), nil
}

// Decode converts raw report bytes in the given encoding to UTF-8 text.
func Decode(data []byte, encodingName string) (string, error) {
	dec, err := decoderFor(encodingName)
	if err != nil {
		return "", err
	}
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s input: %w", encodingName, err)
	}
	return string(out), nil
}

// Read decodes everything from r.
//
// PARAMETERS:
//   - r: The byte source. It is read to EOF; reports are small enough to
//     hold in memory.
//   - encodingName: One of Encodings(), or "" for DefaultEncoding.
//
// RETURNS:
//   - The decoded text.
//   - An error if the encoding is unknown or reading fails.
func Read(r io.Reader, encodingName string) (string, error) {
	dec, err := decoderFor(encodingName)
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// Load opens a report file and decodes it.
func Load(path, encodingName string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	text, err := Read(file, encodingName)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}
