package vcardtool

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/text/encoding"

	"github.com/simonhull/vcardtool/internal/charset"
	"github.com/simonhull/vcardtool/internal/lineio"
	"github.com/simonhull/vcardtool/internal/merge"
)

// SortedSuffix is appended to the input path when MergeFile gets no output
// path.
const SortedSuffix = ".sorted"

// MergeStats counts input records, records merged into another one and
// output records.
type MergeStats = merge.Stats

// Merger sorts records by FN and merges records with identical FN lines.
//
// Only the encoding options and WithLogger apply to a Merger.
type Merger struct {
	inEnc  encoding.Encoding
	outEnc encoding.Encoding
	log    *slog.Logger
}

// NewMerger resolves the encodings named in opts.
func NewMerger(opts ...Option) (*Merger, error) {
	o := buildOptions(opts)

	inEnc, err := charset.Lookup(o.inputEncoding)
	if err != nil {
		return nil, err
	}
	outEnc, err := charset.Lookup(o.outputEncoding)
	if err != nil {
		return nil, err
	}
	return &Merger{inEnc: inEnc, outEnc: outEnc, log: o.logger}, nil
}

// Merge loads every record of r, merges them and writes the result to w.
//
// Nothing is written when loading fails. Every record must carry an FN
// property; a record without one fails with a StructuralError wrapping
// ErrMissingFN.
func (m *Merger) Merge(r io.Reader, w io.Writer) (*MergeStats, error) {
	return m.merge(r, w, "input")
}

func (m *Merger) merge(r io.Reader, w io.Writer, name string) (*MergeStats, error) {
	dst := charset.NewWriter(w, m.outEnc)
	stats, err := merge.Run(
		lineio.NewReader(charset.NewReader(r, m.inEnc), name),
		lineio.NewWriter(dst),
		m.log,
	)
	if err != nil {
		return &stats, err
	}
	if err := dst.Close(); err != nil {
		return &stats, fmt.Errorf("encode output: %w", err)
	}
	return &stats, nil
}

// MergeFile merges the file at in and writes the result to out through a
// temporary file. An empty out means in + SortedSuffix.
func (m *Merger) MergeFile(in, out string, opts ...SaveOption) (*MergeStats, error) {
	if out == "" {
		out = in + SortedSuffix
	}

	src, err := os.Open(in)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer src.Close() //nolint:errcheck // Read-only file

	var stats *MergeStats
	err = writeAtomic(in, out, buildSaveOptions(opts), func(w io.Writer) error {
		var err error
		stats, err = m.merge(src, w, in)
		return err
	}, func(path string) error {
		return validateFile(path, m.outEnc)
	})
	if err != nil {
		return stats, err
	}

	m.log.Debug("output written", "path", out, "records", stats.Output)
	return stats, nil
}

// Merge merges r into w with a Merger built from opts.
func Merge(r io.Reader, w io.Writer, opts ...Option) (*MergeStats, error) {
	m, err := NewMerger(opts...)
	if err != nil {
		return nil, err
	}
	return m.Merge(r, w)
}

// MergeFile merges the file at in with a Merger built from opts.
// An empty out means in + SortedSuffix.
func MergeFile(in, out string, opts ...Option) (*MergeStats, error) {
	m, err := NewMerger(opts...)
	if err != nil {
		return nil, err
	}
	return m.MergeFile(in, out)
}
