// Package textcodec decodes note files written by other editors into UTF-8.
package textcodec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names a text encoding recognized by Detect.
type Encoding string

// Recognized encodings.
const (
	UTF8        Encoding = "utf-8"
	UTF8BOM     Encoding = "utf-8-bom"
	UTF16LE     Encoding = "utf-16le"
	UTF16BE     Encoding = "utf-16be"
	Windows1252 Encoding = "windows-1252"
)

// ErrInvalidUTF8 is returned by Encode for text that is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("text is not valid UTF-8")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detect inspects the leading bytes and content of data. Files without a BOM
// that are not valid UTF-8 are assumed to be Windows-1252, the legacy default
// of most desktop editors.
func Detect(data []byte) Encoding {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return UTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		return UTF16BE
	case utf8.Valid(data):
		return UTF8
	default:
		return Windows1252
	}
}

// Decode converts data to a UTF-8 string, dropping any byte order mark.
func Decode(data []byte) (string, Encoding, error) {
	enc := Detect(data)

	var dec encoding.Encoding
	switch enc {
	case UTF8:
		return string(data), enc, nil
	case UTF8BOM:
		return string(data[len(bomUTF8):]), enc, nil
	case UTF16LE:
		dec = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case UTF16BE:
		dec = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case Windows1252:
		dec = charmap.Windows1252
	}

	out, err := dec.NewDecoder().Bytes(data)
	if err != nil {
		return "", enc, fmt.Errorf("decode %s: %w", enc, err)
	}
	return string(out), enc, nil
}

// Encode returns text as UTF-8 so that Decode yields text again. A byte
// order mark is written only when text itself starts with U+FEFF, since
// Decode strips one.
func Encode(text string) ([]byte, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidUTF8
	}
	if strings.HasPrefix(text, "\ufeff") {
		return append(bytes.Clone(bomUTF8), text...), nil
	}
	return []byte(text), nil
}
