package lineio

import (
	"bufio"
	"io"
	"strings"
)

// Writer writes physical lines terminated by CRLF, whatever terminator
// the line carried in memory.
type Writer struct {
	w     *bufio.Writer
	lines int
}

// NewWriter creates a Writer. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Lines returns the number of physical lines written so far.
func (lw *Writer) Lines() int {
	return lw.lines
}

// WriteLine writes one physical line. A trailing "\n" or "\r\n" is replaced
// by "\r\n"; a line without terminator gets one.
func (lw *Writer) WriteLine(line string) error {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if _, err := lw.w.WriteString(line); err != nil {
		return err
	}
	if _, err := lw.w.WriteString("\r\n"); err != nil {
		return err
	}
	lw.lines++
	return nil
}

// WriteLines writes every line in order.
func (lw *Writer) WriteLines(lines []string) error {
	for _, line := range lines {
		if err := lw.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (lw *Writer) Flush() error {
	return lw.w.Flush()
}
