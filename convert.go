package vcardtool

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/text/encoding"

	"github.com/simonhull/vcardtool/internal/card"
	"github.com/simonhull/vcardtool/internal/charset"
	"github.com/simonhull/vcardtool/internal/convert"
	"github.com/simonhull/vcardtool/internal/filter"
	"github.com/simonhull/vcardtool/internal/lineio"
	"github.com/simonhull/vcardtool/internal/qp"
	"github.com/simonhull/vcardtool/internal/rewrite"
)

// ConvertedSuffix is appended to the input path when ConvertFile gets no
// output path.
const ConvertedSuffix = ".converted"

// Stats summarizes a conversion: line and record counts plus one Warning
// per discarded record.
type Stats = convert.Stats

// Converter converts vCard 2.1 input to the configured target version.
//
// A Converter is immutable after NewConverter and may be reused for any
// number of inputs, one at a time.
type Converter struct {
	cfg    convert.Config
	inEnc  encoding.Encoding
	outEnc encoding.Encoding
	log    *slog.Logger
}

// NewConverter validates opts and prepares the pipeline stages.
//
// Returns UnsupportedEncodingError for unknown encoding names and an error
// for invalid patterns or an unsupported target version.
func NewConverter(opts ...Option) (*Converter, error) {
	o := buildOptions(opts)

	inEnc, err := charset.Lookup(o.inputEncoding)
	if err != nil {
		return nil, err
	}
	outEnc, err := charset.Lookup(o.outputEncoding)
	if err != nil {
		return nil, err
	}

	rw, err := rewrite.New(o.target, o.stripSentinel)
	if err != nil {
		return nil, err
	}
	removeLines, err := filter.Compile(o.removeLines)
	if err != nil {
		return nil, fmt.Errorf("remove lines: %w", err)
	}
	removeCards, err := filter.Compile(o.removeCards)
	if err != nil {
		return nil, fmt.Errorf("remove cards: %w", err)
	}
	if o.pruneThreshold < 0 {
		return nil, fmt.Errorf("prune threshold must not be negative, got %d", o.pruneThreshold)
	}

	return &Converter{
		cfg: convert.Config{
			Decoder:     qp.NewDecoder(inEnc),
			Rewriter:    rw,
			RemoveLines: removeLines,
			RemoveCards: removeCards,
			Logger:      o.logger,
			Card: card.Options{
				Policy:         o.policy,
				PruneEmpty:     o.pruneEmpty,
				PruneThreshold: o.pruneThreshold,
			},
		},
		inEnc:  inEnc,
		outEnc: outEnc,
		log:    o.logger,
	}, nil
}

// Convert reads records from r and writes converted records to w.
//
// Stats are returned even on error and describe the input consumed so far.
// Output written before a DecodeError or StructuralError is incomplete.
func (c *Converter) Convert(r io.Reader, w io.Writer) (*Stats, error) {
	return c.convert(r, w, "input")
}

func (c *Converter) convert(r io.Reader, w io.Writer, name string) (*Stats, error) {
	dst := charset.NewWriter(w, c.outEnc)
	stats, err := convert.Run(
		lineio.NewReader(charset.NewReader(r, c.inEnc), name),
		lineio.NewWriter(dst),
		c.cfg,
	)
	if err != nil {
		return &stats, err
	}
	if err := dst.Close(); err != nil {
		return &stats, fmt.Errorf("encode output: %w", err)
	}
	return &stats, nil
}

// ConvertFile converts the file at in and writes the result to out.
//
// An empty out means in + ConvertedSuffix. The output is written to a
// temporary file that replaces out only when conversion succeeds, so a
// failed run never leaves a truncated file behind.
func (c *Converter) ConvertFile(in, out string, opts ...SaveOption) (*Stats, error) {
	if out == "" {
		out = in + ConvertedSuffix
	}

	src, err := os.Open(in)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer src.Close() //nolint:errcheck // Read-only file

	var stats *Stats
	err = writeAtomic(in, out, buildSaveOptions(opts), func(w io.Writer) error {
		var err error
		stats, err = c.convert(src, w, in)
		return err
	}, c.validate)
	if err != nil {
		return stats, err
	}

	c.log.Debug("output written", "path", out, "records", stats.Written)
	return stats, nil
}

// validate re-reads a converted file in the output encoding.
func (c *Converter) validate(path string) error {
	return validateFile(path, c.outEnc)
}

// Convert converts r into w with a Converter built from opts.
func Convert(r io.Reader, w io.Writer, opts ...Option) (*Stats, error) {
	c, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	return c.Convert(r, w)
}

// ConvertFile converts the file at in with a Converter built from opts.
// An empty out means in + ConvertedSuffix.
func ConvertFile(in, out string, opts ...Option) (*Stats, error) {
	c, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	return c.ConvertFile(in, out)
}
