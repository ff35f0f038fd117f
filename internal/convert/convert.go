// Package convert drives the single-pass conversion pipeline.
//
// Each physical line flows through decode, rewrite, line filter, card
// filter and into the current card. At END the card is repaired, checked
// and written or discarded. Memory holds one card plus the decoder's soft
// line buffer.
package convert

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/simonhull/vcardtool/internal/card"
	"github.com/simonhull/vcardtool/internal/filter"
	"github.com/simonhull/vcardtool/internal/lineio"
	"github.com/simonhull/vcardtool/internal/qp"
	"github.com/simonhull/vcardtool/internal/rewrite"
	"github.com/simonhull/vcardtool/internal/types"
)

// Config wires the pipeline stages. RemoveLines, RemoveCards and Logger may be nil.
type Config struct {
	Decoder     *qp.Decoder
	Rewriter    *rewrite.Rewriter
	RemoveLines *filter.Set
	RemoveCards *filter.Set
	Logger      *slog.Logger
	Card        card.Options
}

// Stats summarizes a conversion run.
type Stats struct {
	Warnings []types.Warning
	Lines    int // physical input lines
	Cards    int // records read
	Written  int // records written
	Repaired int // written records whose identity was synthesized
	Omitted  int // dropped by a card filter
	Invalid  int // dropped for lack of an identity property
	Pruned   int // dropped as near-empty after repair
}

// Converter is the stateful conversion pipeline.
type Converter struct {
	cfg        Config
	log        *slog.Logger
	w          *lineio.Writer
	card       *card.Card
	state      qp.State
	omitReason string
	stats      Stats
	record     int
	open       bool
}

// New creates a Converter writing emitted cards to w.
func New(cfg Config, w *lineio.Writer) *Converter {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Converter{
		cfg:  cfg,
		log:  log,
		w:    w,
		card: card.New(),
	}
}

// Stats returns the counters collected so far.
func (c *Converter) Stats() Stats {
	return c.stats
}

// Feed processes one physical line. lineNo is used in errors and warnings.
func (c *Converter) Feed(line string, lineNo int) error {
	c.stats.Lines++

	next, out, emitted, err := c.cfg.Decoder.Step(c.state, line)
	c.state = next
	if err != nil {
		return withLine(err, lineNo)
	}
	if !emitted {
		return nil
	}
	return c.process(out, lineNo)
}

// Finish flushes the decoder and checks that no record is left open.
func (c *Converter) Finish(lineNo int) error {
	out, emitted, err := c.cfg.Decoder.Flush(c.state)
	c.state = qp.State{}
	if err != nil {
		return withLine(err, lineNo)
	}
	if emitted {
		if err := c.process(out, lineNo); err != nil {
			return err
		}
	}

	if c.open {
		return c.structural(lineNo, types.ErrUnbalanced, "end of input inside a record")
	}
	return nil
}

func (c *Converter) process(line string, lineNo int) error {
	line = c.cfg.Rewriter.Rewrite(line)

	switch {
	case strings.HasPrefix(line, card.Begin):
		if c.open {
			return c.structural(lineNo, types.ErrUnbalanced, "BEGIN inside an open record")
		}
		c.open = true
		c.record++
		c.stats.Cards++
		c.omitReason = ""
		c.card.Reset()
		c.checkCard(line)
		return nil

	case strings.HasPrefix(line, card.End):
		if !c.open {
			return c.structural(lineNo, types.ErrUnbalanced, "END without BEGIN")
		}
		c.checkCard(line)
		c.open = false
		return c.finishCard(lineNo)

	case strings.TrimRight(line, "\r\n") == "":
		return nil

	case !c.open:
		return c.structural(lineNo, types.ErrStrayContent, fmt.Sprintf("%q", strings.TrimSuffix(line, "\n")))
	}

	store := !c.cfg.RemoveLines.Match(line)
	c.checkCard(line)
	if store {
		c.card.Add(line)
	}
	return nil
}

func (c *Converter) checkCard(line string) {
	if c.card.Omitted() {
		return
	}
	if pattern, ok := c.cfg.RemoveCards.First(line); ok {
		c.card.Omit()
		c.omitReason = pattern
	}
}

func (c *Converter) finishCard(lineNo int) error {
	outcome := c.card.Finish(c.cfg.Card)
	log := c.log.With("record", c.record, "line", lineNo)

	switch outcome {
	case card.Emit:
		if c.card.Synthesized() {
			c.stats.Repaired++
			log.Debug("card repaired", "fn", c.card.FN().Value())
		}
		if err := c.card.Write(c.w); err != nil {
			return fmt.Errorf("write record %d: %w", c.record, err)
		}
		c.stats.Written++
		return nil

	case card.Omitted:
		c.stats.Omitted++
		c.warn(lineNo, "filter", fmt.Sprintf("record %d removed: line matched %q", c.record, c.omitReason))
	case card.Invalid:
		c.stats.Invalid++
		c.warn(lineNo, "repair", fmt.Sprintf("record %d dropped: no FN and nothing to derive it from", c.record))
	case card.Pruned:
		c.stats.Pruned++
		c.warn(lineNo, "prune", fmt.Sprintf("record %d dropped: only a synthesized identity", c.record))
	}
	log.Debug("card discarded", "outcome", outcome.String())
	return nil
}

func (c *Converter) warn(lineNo int, stage, msg string) {
	c.stats.Warnings = append(c.stats.Warnings, types.Warning{Stage: stage, Message: msg, Line: lineNo})
}

func (c *Converter) structural(lineNo int, cause error, reason string) error {
	record := 0
	if c.open {
		record = c.record
	}
	return &types.StructuralError{Line: lineNo, Record: record, Err: cause, Reason: reason}
}

func withLine(err error, lineNo int) error {
	var decErr *types.DecodeError
	if errors.As(err, &decErr) {
		decErr.Line = lineNo
	}
	return err
}

// Run converts every line of r into w and flushes w.
func Run(r *lineio.Reader, w *lineio.Writer, cfg Config) (Stats, error) {
	conv := New(cfg, w)
	for {
		line, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return conv.Stats(), err
		}
		if err := conv.Feed(line, r.Line()); err != nil {
			return conv.Stats(), err
		}
	}

	if err := conv.Finish(r.Line()); err != nil {
		return conv.Stats(), err
	}
	if err := w.Flush(); err != nil {
		return conv.Stats(), fmt.Errorf("flush output: %w", err)
	}

	stats := conv.Stats()
	conv.log.Info("conversion finished",
		"lines", stats.Lines,
		"cards", stats.Cards,
		"written", stats.Written,
		"repaired", stats.Repaired,
		"omitted", stats.Omitted,
		"invalid", stats.Invalid,
		"pruned", stats.Pruned,
	)
	return stats, nil
}
