// Package lineio provides physical-line reading and CRLF writing for
// line-oriented vCard text.
package lineio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Reader yields physical lines, each terminated by a single "\n".
//
// CRLF terminators are normalized to "\n" and a final line without a
// terminator gets one, so callers never see a bare or missing terminator.
type Reader struct {
	r    *bufio.Reader
	name string
	line int
	done bool
}

// NewReader creates a Reader. name is used in error messages only.
func NewReader(r io.Reader, name string) *Reader {
	return &Reader{
		r:    bufio.NewReader(r),
		name: name,
	}
}

// Line returns the 1-based number of the last line returned by Next.
func (lr *Reader) Line() int {
	return lr.line
}

// Next returns the next physical line.
//
// Returns io.EOF once the input is exhausted.
func (lr *Reader) Next() (string, error) {
	if lr.done {
		return "", io.EOF
	}

	s, err := lr.r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%s: read line %d: %w", lr.name, lr.line+1, err)
		}
		lr.done = true
		if s == "" {
			return "", io.EOF
		}
		s += "\n"
	}

	lr.line++
	if strings.HasSuffix(s, "\r\n") {
		s = s[:len(s)-2] + "\n"
	}
	return s, nil
}
