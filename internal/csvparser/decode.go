package csvparser

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// decoderFor returns the charset for an encoding name, or nil for UTF-8.
func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "iso-8859-15", "latin-9":
		return charmap.ISO8859_15, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// decode converts raw bytes to UTF-8. Input that is already valid UTF-8 is
// returned untouched even when a legacy charset is configured, since the
// catalog is sometimes re-saved as UTF-8 without anyone updating the config.
func decode(raw []byte, name string) ([]byte, error) {
	enc, err := decoderFor(name)
	if err != nil {
		return nil, err
	}
	if enc == nil || utf8.Valid(raw) {
		return raw, nil
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), enc.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return decoded, nil
}
