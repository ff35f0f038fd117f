// Package card holds the record model shared by the converter and the
// merger: an ordered list of property groups with back-references to the
// identity properties, plus the repair and validity rules applied at the
// end of each record.
package card

import (
	"iter"
	"slices"
	"strings"

	"github.com/simonhull/vcardtool/internal/lineio"
	"github.com/simonhull/vcardtool/internal/types"
)

// Record delimiters. They are never stored as groups; Write synthesizes them.
const (
	Begin = "BEGIN:VCARD"
	End   = "END:VCARD"
)

// Property names with a special role.
const (
	PropVersion  = "VERSION"
	PropFN       = "FN"
	PropN        = "N"
	PropNickname = "NICKNAME"
)

// State is the lifecycle stage of a Card.
type State int

const (
	// Accumulating cards accept lines through Add.
	Accumulating State = iota
	// Repairing is the stage between END and the terminal decision.
	Repairing
	// Terminal cards have been decided and must be reset before reuse.
	Terminal
)

// Card is one vCard record.
//
// The version, fn, n and nickname fields are indices into groups (-1 when
// absent) and are recomputed after every insertion, rename or removal.
type Card struct {
	groups      []*types.PropertyGroup
	version     int
	fn          int
	n           int
	nickname    int
	state       State
	omit        bool
	synthesized bool
}

// New returns an empty card in the Accumulating state.
func New() *Card {
	c := &Card{}
	c.Reset()
	return c
}

// Reset clears the card for a new record.
func (c *Card) Reset() {
	c.groups = nil
	c.omit = false
	c.synthesized = false
	c.state = Accumulating
	c.reindex()
}

// State returns the card's lifecycle stage.
func (c *Card) State() State {
	return c.state
}

// Add stores one physical line. Continuation lines extend the last group.
func (c *Card) Add(line string) {
	if types.IsContinuation(line) && len(c.groups) > 0 {
		c.groups[len(c.groups)-1].Append(line)
		return
	}
	c.AddGroup(types.NewPropertyGroup(line))
}

// AddGroup appends a complete group.
func (c *Card) AddGroup(g *types.PropertyGroup) {
	c.groups = append(c.groups, g)
	c.reindex()
}

func (c *Card) insert(idx int, g *types.PropertyGroup) {
	c.groups = slices.Insert(c.groups, idx, g)
	c.reindex()
}

func (c *Card) removeIf(del func(*types.PropertyGroup) bool) {
	c.groups = slices.DeleteFunc(c.groups, del)
	c.reindex()
}

func (c *Card) reindex() {
	c.version, c.fn, c.n, c.nickname = -1, -1, -1, -1
	for i, g := range c.groups {
		switch g.Name() {
		case PropVersion:
			if c.version < 0 {
				c.version = i
			}
		case PropFN:
			if c.fn < 0 {
				c.fn = i
			}
		case PropN:
			if c.n < 0 {
				c.n = i
			}
		case PropNickname:
			if c.nickname < 0 {
				c.nickname = i
			}
		}
	}
}

// Omit marks the card for discarding. The flag stays set until Reset.
func (c *Card) Omit() {
	c.omit = true
}

// Omitted reports whether Omit was called.
func (c *Card) Omitted() bool {
	return c.omit
}

// Len returns the number of stored groups.
func (c *Card) Len() int {
	return len(c.groups)
}

// Groups returns an iterator over the stored groups in order.
func (c *Card) Groups() iter.Seq[*types.PropertyGroup] {
	return slices.Values(c.groups)
}

func (c *Card) at(idx int) *types.PropertyGroup {
	if idx < 0 {
		return nil
	}
	return c.groups[idx]
}

// Version returns the first VERSION group, or nil.
func (c *Card) Version() *types.PropertyGroup { return c.at(c.version) }

// FN returns the first FN group, or nil.
func (c *Card) FN() *types.PropertyGroup { return c.at(c.fn) }

// N returns the first N group, or nil.
func (c *Card) N() *types.PropertyGroup { return c.at(c.n) }

// Nickname returns the first NICKNAME group, or nil.
func (c *Card) Nickname() *types.PropertyGroup { return c.at(c.nickname) }

// Synthesized reports whether Repair created or renamed an identity group.
func (c *Card) Synthesized() bool {
	return c.synthesized
}

func hasValue(g *types.PropertyGroup) bool {
	return g != nil && strings.TrimSpace(g.Value()) != ""
}

// Valid reports whether the card carries the identity properties policy needs.
func (c *Card) Valid(policy Policy) bool {
	if !hasValue(c.FN()) {
		return false
	}
	if policy == RequireNAndFN && c.N() == nil {
		return false
	}
	return true
}

// Repair synthesizes missing identity properties. It does nothing for a
// card that is already valid. Check Valid afterwards.
func (c *Card) Repair(policy Policy) {
	if c.Valid(policy) {
		return
	}

	// An FN without value identifies nothing.
	c.removeIf(func(g *types.PropertyGroup) bool {
		return g.Is(PropFN) && !hasValue(g)
	})

	switch policy {
	case RequireNAndFN:
		c.repairNAndFN()
	default:
		c.repairFNOnly()
	}
}

func (c *Card) repairFNOnly() {
	if c.fn < 0 && c.nickname >= 0 {
		c.groups[c.nickname].Rename(PropFN)
		c.synthesized = true
		c.reindex()
	}

	fn := c.FN()
	if fn == nil {
		return
	}
	c.removeIf(func(g *types.PropertyGroup) bool {
		return g.Is(PropNickname) && g.Body() == fn.Body()
	})
}

func (c *Card) repairNAndFN() {
	switch {
	case c.n >= 0 && c.fn < 0:
		value := strings.TrimSpace(strings.Join(strings.Split(c.N().Value(), ";"), " "))
		c.insert(c.n+1, derive(c.N(), PropFN, value))
	case c.fn >= 0 && c.n < 0:
		value := strings.Join(strings.Fields(c.FN().Value()), ";")
		c.insert(c.fn+1, derive(c.FN(), PropN, value))
	case c.nickname >= 0:
		nick, at := c.Nickname(), c.nickname
		if c.n < 0 {
			c.insert(at, derive(nick, PropN, nick.Value()))
		}
		if c.fn < 0 {
			c.insert(at, derive(nick, PropFN, nick.Value()))
		}
	default:
		return
	}
	c.synthesized = true
}

// derive builds a single-line group named name with the parameters of src
// and the given value.
func derive(src *types.PropertyGroup, name, value string) *types.PropertyGroup {
	first := src.Lines[0]
	head := ":"
	if colon := strings.IndexByte(first, ':'); colon >= 0 {
		head = first[len(src.Name()) : colon+1]
	}
	return types.NewPropertyGroup(name + head + value + "\n")
}

// contentLen counts groups other than VERSION and the identity properties.
func (c *Card) contentLen() int {
	n := 0
	for _, g := range c.groups {
		switch g.Name() {
		case PropVersion, PropFN, PropN, PropNickname:
		default:
			n++
		}
	}
	return n
}

// Finish takes the END-of-record decision: omitted cards are discarded,
// others are repaired once and then validated and, optionally, pruned.
// The card is Terminal afterwards.
func (c *Card) Finish(opts Options) Outcome {
	defer func() { c.state = Terminal }()

	if c.omit {
		return Omitted
	}

	c.state = Repairing
	c.Repair(opts.Policy)
	if !c.Valid(opts.Policy) {
		return Invalid
	}

	if opts.PruneEmpty && c.synthesized && c.contentLen() < opts.PruneThreshold {
		return Pruned
	}
	return Emit
}

// Absorb appends the groups of other to c, except other's FN and VERSION
// groups. c keeps the lexicographically greater of both VERSION lines.
func (c *Card) Absorb(other *Card) {
	for i, g := range other.groups {
		if i == other.fn || i == other.version {
			continue
		}
		c.groups = append(c.groups, g.Clone())
	}

	if v := other.Version(); v != nil {
		switch {
		case c.version < 0:
			c.groups = slices.Insert(c.groups, 0, v.Clone())
		case v.Text() > c.groups[c.version].Text():
			c.groups[c.version] = v.Clone()
		}
	}
	c.reindex()
}

// Write serializes the card between synthesized BEGIN and END markers.
func (c *Card) Write(w *lineio.Writer) error {
	if err := w.WriteLine(Begin); err != nil {
		return err
	}
	for _, g := range c.groups {
		if err := w.WriteLines(g.Lines); err != nil {
			return err
		}
	}
	return w.WriteLine(End)
}
