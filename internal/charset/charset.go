// Package charset resolves text encoding names and transcodes between them
// and UTF-8.
package charset

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/simonhull/vcardtool/internal/types"
)

// Default is the encoding used when no name is configured.
const Default = "UTF-8"

// errInvalidUTF8 is reported when bytes are not valid UTF-8.
var errInvalidUTF8 = errors.New("invalid UTF-8 sequence")

// Lookup resolves an encoding name.
//
// IANA names and aliases are tried first ("UTF-8", "ISO-8859-1", "latin1"),
// then WHATWG labels ("cp1252", "utf8"). An empty name resolves to UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	if name == "" {
		return unicode.UTF8, nil
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(name); err == nil && enc != nil {
		return enc, nil
	}
	return nil, &types.UnsupportedEncodingError{Name: name}
}

// Name returns the canonical IANA name of enc, or "unknown".
func Name(enc encoding.Encoding) string {
	name, err := ianaindex.IANA.Name(enc)
	if err != nil {
		return "unknown"
	}
	return name
}

// isUTF8 reports whether enc is UTF-8, for which transcoding is the identity.
func isUTF8(enc encoding.Encoding) bool {
	if enc == nil || enc == unicode.UTF8 {
		return true
	}
	return Name(enc) == "UTF-8"
}

// NewReader returns a reader that decodes r from enc into UTF-8.
func NewReader(r io.Reader, enc encoding.Encoding) io.Reader {
	if isUTF8(enc) {
		return r
	}
	return transform.NewReader(r, enc.NewDecoder())
}

// NewWriter returns a writer that encodes UTF-8 text into enc.
//
// Close must be called to flush the final bytes; it does not close w.
func NewWriter(w io.Writer, enc encoding.Encoding) io.WriteCloser {
	if isUTF8(enc) {
		return nopCloser{w}
	}
	return transform.NewWriter(w, enc.NewEncoder())
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Decode converts bytes in enc into a UTF-8 string.
//
// Unlike the streaming reader, Decode fails instead of substituting the
// replacement character for invalid input.
func Decode(enc encoding.Encoding, b []byte) (string, error) {
	if isUTF8(enc) {
		if !utf8.Valid(b) {
			return "", errInvalidUTF8
		}
		return string(b), nil
	}

	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", Name(enc), err)
	}
	return string(out), nil
}

// Encode converts a UTF-8 string into bytes in enc.
func Encode(enc encoding.Encoding, s string) ([]byte, error) {
	if isUTF8(enc) {
		return []byte(s), nil
	}

	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", Name(enc), err)
	}
	return out, nil
}
