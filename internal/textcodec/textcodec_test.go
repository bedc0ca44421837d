package textcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Encoding
	}{
		{"empty", nil, UTF8},
		{"ascii", []byte("hello"), UTF8},
		{"utf8", []byte("héllo"), UTF8},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "hi"...), UTF8BOM},
		{"utf16le bom", []byte{0xFF, 0xFE, 'h', 0}, UTF16LE},
		{"utf16be bom", []byte{0xFE, 0xFF, 0, 'h'}, UTF16BE},
		{"latin", []byte{'c', 'a', 'f', 0xE9}, Windows1252},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.data))
		})
	}
}

func TestDecode_UTF8BOM(t *testing.T) {
	got, enc, err := Decode(append([]byte{0xEF, 0xBB, 0xBF}, "hello"...))
	require.NoError(t, err)
	assert.Equal(t, UTF8BOM, enc)
	assert.Equal(t, "hello", got)
}

func TestDecode_UTF16(t *testing.T) {
	for _, endian := range []unicode.Endianness{unicode.LittleEndian, unicode.BigEndian} {
		data, err := unicode.UTF16(endian, unicode.UseBOM).NewEncoder().Bytes([]byte("héllo\nworld"))
		require.NoError(t, err)

		got, _, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, "héllo\nworld", got)
	}
}

func TestDecode_Windows1252(t *testing.T) {
	data, err := charmap.Windows1252.NewEncoder().Bytes([]byte("café €5"))
	require.NoError(t, err)

	got, enc, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, Windows1252, enc)
	assert.Equal(t, "café €5", got)
}

func TestEncode_RoundTrip(t *testing.T) {
	text := "line one\nligne deux é\n"
	data, err := Encode(text)
	require.NoError(t, err)

	got, enc, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, UTF8, enc)
	assert.Equal(t, text, got)
}

func TestEncode_LeadingBOM(t *testing.T) {
	text := "\ufeffhello"
	data, err := Encode(text)
	require.NoError(t, err)
	assert.Equal(t, []byte("\xef\xbb\xbf\xef\xbb\xbfhello"), data)

	got, enc, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, UTF8BOM, enc)
	assert.Equal(t, text, got)
}

func TestEncode_InvalidUTF8(t *testing.T) {
	for _, text := range []string{"caf\xe9", "\xff\xfeA\x00"} {
		_, err := Encode(text)
		assert.ErrorIs(t, err, ErrInvalidUTF8, "text %q", text)
	}
}
