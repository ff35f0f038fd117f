// Package merge sorts records by their FN line, merges adjacent records
// sharing that line and writes each result with its groups sorted and
// deduplicated.
//
// Unlike the converter, merging is two-phase: Load materializes every
// record first, then Merge and Write operate on the complete set.
package merge

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/simonhull/vcardtool/internal/card"
	"github.com/simonhull/vcardtool/internal/lineio"
	"github.com/simonhull/vcardtool/internal/types"
)

// Record is a loaded record together with its position in the input.
type Record struct {
	Card  *card.Card
	Index int // 1-based record number
	Line  int // line of the BEGIN marker
}

// Key returns the text of the record's FN group.
func (r *Record) Key() string {
	return r.Card.FN().Text()
}

// Stats counts records through the merge.
type Stats struct {
	Input  int // records loaded
	Merged int // records absorbed into a preceding one
	Output int // records written
}

// Load reads every record of r. Each record must carry an FN group.
func Load(r *lineio.Reader) ([]*Record, error) {
	var (
		records []*Record
		cur     *Record
	)

	structural := func(cause error, reason string) error {
		record := 0
		if cur != nil {
			record = cur.Index
		}
		return &types.StructuralError{Line: r.Line(), Record: record, Err: cause, Reason: reason}
	}

	for {
		line, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch {
		case strings.HasPrefix(line, card.Begin):
			if cur != nil {
				return nil, structural(types.ErrUnbalanced, "BEGIN inside an open record")
			}
			cur = &Record{Card: card.New(), Index: len(records) + 1, Line: r.Line()}

		case strings.HasPrefix(line, card.End):
			if cur == nil {
				return nil, structural(types.ErrUnbalanced, "END without BEGIN")
			}
			if cur.Card.FN() == nil {
				return nil, structural(types.ErrMissingFN, fmt.Sprintf("record starting at line %d", cur.Line))
			}
			records = append(records, cur)
			cur = nil

		case strings.TrimRight(line, "\r\n") == "":
			// blank separator

		case cur == nil:
			return nil, structural(types.ErrStrayContent, fmt.Sprintf("%q", strings.TrimSuffix(line, "\n")))

		default:
			cur.Card.Add(line)
		}
	}

	if cur != nil {
		return nil, structural(types.ErrUnbalanced, "end of input inside a record")
	}
	return records, nil
}

// Merge stably sorts records by Key and folds each run of records with an
// equal key into its first record. It returns the surviving records and
// the number absorbed.
func Merge(records []*Record) ([]*Record, int) {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b *Record) int {
		return strings.Compare(a.Key(), b.Key())
	})

	var (
		out    []*Record
		merged int
	)
	for _, rec := range sorted {
		if n := len(out); n > 0 && out[n-1].Key() == rec.Key() {
			out[n-1].Card.Absorb(rec.Card)
			merged++
			continue
		}
		out = append(out, rec)
	}
	return out, merged
}

// rank orders groups within a written record. Folded groups go last even
// when they are FN or N.
func rank(g *types.PropertyGroup) int {
	switch {
	case g.Folded():
		return 3
	case g.Is(card.PropFN):
		return 0
	case g.Is(card.PropN):
		return 1
	default:
		return 2
	}
}

func compareGroups(a, b *types.PropertyGroup) int {
	return cmp.Or(
		cmp.Compare(rank(a), rank(b)),
		cmp.Compare(len(a.Lines), len(b.Lines)),
		strings.Compare(a.Text(), b.Text()),
	)
}

// Canonical returns the groups of c other than VERSION, sorted by rank and
// text, with adjacent duplicates removed.
func Canonical(c *card.Card) []*types.PropertyGroup {
	var groups []*types.PropertyGroup
	for g := range c.Groups() {
		if !g.Is(card.PropVersion) {
			groups = append(groups, g)
		}
	}
	slices.SortStableFunc(groups, compareGroups)
	return slices.CompactFunc(groups, (*types.PropertyGroup).Equal)
}

// WriteRecord writes BEGIN, the VERSION group if any, the canonical groups
// and END.
func WriteRecord(w *lineio.Writer, c *card.Card) error {
	if err := w.WriteLine(card.Begin); err != nil {
		return err
	}
	if v := c.Version(); v != nil {
		if err := w.WriteLines(v.Lines); err != nil {
			return err
		}
	}
	for _, g := range Canonical(c) {
		if err := w.WriteLines(g.Lines); err != nil {
			return err
		}
	}
	return w.WriteLine(card.End)
}

// Run loads r, merges its records and writes them to w, which is flushed.
// A nil logger discards.
func Run(r *lineio.Reader, w *lineio.Writer, log *slog.Logger) (Stats, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	records, err := Load(r)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Input: len(records)}

	out, merged := Merge(records)
	stats.Merged = merged
	for _, rec := range out {
		if err := WriteRecord(w, rec.Card); err != nil {
			return stats, fmt.Errorf("write record %d: %w", rec.Index, err)
		}
		stats.Output++
	}
	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("flush output: %w", err)
	}

	log.Info("merge finished", "input", stats.Input, "merged", stats.Merged, "output", stats.Output)
	return stats, nil
}
