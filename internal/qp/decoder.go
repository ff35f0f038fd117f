// Package qp decodes quoted-printable property values, including values
// spread over several physical lines by soft line breaks.
//
// The decoder is a pure state-transition function: Step takes the current
// State and the next physical line, and returns the next State together
// with at most one fully decoded line.
package qp

import (
	"bytes"
	"fmt"
	"io"
	"mime/quotedprintable"
	"regexp"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/simonhull/vcardtool/internal/charset"
	"github.com/simonhull/vcardtool/internal/types"
)

// markerRe matches the encoding marker in the parameter list together with
// an adjacent CHARSET parameter on either side. The CHARSET value is ignored:
// payloads are always decoded with the decoder's configured encoding.
//
// Groups: 1 = name and preceding parameters, 2/3 = CHARSET before/after,
// 4 = the separator that ends the marker.
var markerRe = regexp.MustCompile(`^([^:]*?)(;CHARSET=[^;:]*)?;ENCODING=QUOTED-PRINTABLE(;CHARSET=[^;:]*)?([;:])`)

const softBreak = "=\n"

// escapedNewline replaces line breaks found inside a decoded value.
const escapedNewline = `\n`

// State carries raw physical lines of a quoted-printable value that is not
// complete yet. The zero value is the idle state.
type State struct {
	buf string
}

// Pending reports whether lines are buffered waiting for the end of a value.
func (s State) Pending() bool {
	return s.buf != ""
}

// Raw returns the buffered, undecoded lines.
func (s State) Raw() string {
	return s.buf
}

// Decoder decodes quoted-printable values into UTF-8 text.
type Decoder struct {
	enc encoding.Encoding
}

// NewDecoder creates a Decoder whose decoded bytes are interpreted in enc.
func NewDecoder(enc encoding.Encoding) *Decoder {
	return &Decoder{enc: enc}
}

// Marked reports whether the parameter list of line carries the
// quoted-printable marker.
func Marked(line string) bool {
	return markerRe.MatchString(line)
}

// Step feeds the next physical line to the decoder.
//
// A line ending in a soft line break is buffered when it carries the marker
// or when buffering is already active; Step then returns emitted == false.
// Otherwise the buffered lines plus line are decoded as one unit and
// returned with emitted == true and a fresh State.
func (d *Decoder) Step(st State, line string) (next State, out string, emitted bool, err error) {
	if strings.HasSuffix(line, softBreak) && (st.Pending() || Marked(line)) {
		return State{buf: st.buf + line}, "", false, nil
	}

	out, err = d.Decode(st.buf + line)
	if err != nil {
		return State{}, "", false, err
	}
	return State{}, out, true, nil
}

// Flush decodes whatever is still buffered at end of input.
func (d *Decoder) Flush(st State) (out string, emitted bool, err error) {
	if !st.Pending() {
		return "", false, nil
	}
	out, err = d.Decode(st.buf)
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

// Decode decodes one complete logical line.
//
// Lines without the marker are returned unchanged. For marked lines the
// marker is removed from the parameter list and the value is decoded. Line
// breaks inside the decoded value are written as the two characters `\n`;
// the result ends with exactly one "\n" terminator.
//
// Failures are reported as *types.DecodeError carrying line.
func (d *Decoder) Decode(line string) (string, error) {
	m := markerRe.FindStringSubmatchIndex(line)
	if m == nil {
		return line, nil
	}

	// Name and remaining parameters, marker excised, up to the value separator.
	rest := line[m[8]:]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return line, nil
	}
	head := line[m[2]:m[3]] + rest[:colon+1]
	payload := strings.TrimSuffix(rest[colon+1:], "\n")

	value, err := d.decodeValue(payload)
	if err != nil {
		return "", &types.DecodeError{Raw: line, Err: err}
	}

	value = strings.ReplaceAll(value, "\r\n", escapedNewline)
	value = strings.ReplaceAll(value, "\n", escapedNewline)
	return head + value + "\n", nil
}

func (d *Decoder) decodeValue(payload string) (string, error) {
	// Back to the wire bytes first, so decoded escapes and literal
	// characters end up in the same encoding.
	raw, err := charset.Encode(d.enc, payload)
	if err != nil {
		return "", err
	}

	if err := checkEscapes(raw); err != nil {
		return "", err
	}

	decoded, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(raw)))
	if err != nil {
		return "", err
	}

	return charset.Decode(d.enc, decoded)
}

// checkEscapes rejects '=' that is neither followed by two hex digits nor a
// soft line break. mime/quotedprintable passes such bytes through as
// literals.
func checkEscapes(raw []byte) error {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '=' {
			continue
		}
		rest := raw[i+1:]
		if n := softBreakLen(rest); n >= 0 {
			i += n
			continue
		}
		if len(rest) >= 2 && isHex(rest[0]) && isHex(rest[1]) {
			i += 2
			continue
		}
		end := min(len(rest), 2)
		return fmt.Errorf("invalid escape sequence %q at offset %d", raw[i:i+1+end], i)
	}
	return nil
}

// softBreakLen returns the length of the soft line break at the start of
// rest (trailing whitespace, then "\r\n", "\n" or end of payload), or -1.
func softBreakLen(rest []byte) int {
	n := 0
	for n < len(rest) && (rest[n] == ' ' || rest[n] == '\t') {
		n++
	}
	switch {
	case n == len(rest):
		return n
	case rest[n] == '\n':
		return n + 1
	case rest[n] == '\r' && n+1 < len(rest) && rest[n+1] == '\n':
		return n + 2
	}
	return -1
}

func isHex(b byte) bool {
	return '0' <= b && b <= '9' || 'A' <= b && b <= 'F' || 'a' <= b && b <= 'f'
}
