package card

import "fmt"

// Policy selects which identity properties a card needs to be emitted and
// how missing ones are synthesized.
type Policy int

const (
	// RequireFNOnly needs a non-empty FN. A missing FN is made by renaming
	// the first NICKNAME to FN; NICKNAMEs repeating the FN value are then
	// dropped.
	RequireFNOnly Policy = iota

	// RequireNAndFN needs both N and FN. FN is derived from N (components
	// joined with spaces), N from FN (words joined with ';'), and with
	// neither present both are copied from NICKNAME, which is kept.
	RequireNAndFN
)

// String returns the policy name accepted by ParsePolicy.
func (p Policy) String() string {
	switch p {
	case RequireFNOnly:
		return "fn-only"
	case RequireNAndFN:
		return "n-and-fn"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses "fn-only" or "n-and-fn".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "fn-only", "":
		return RequireFNOnly, nil
	case "n-and-fn":
		return RequireNAndFN, nil
	default:
		return RequireFNOnly, fmt.Errorf("unknown repair policy %q (must be fn-only or n-and-fn)", s)
	}
}

// Options controls what happens to a card at its END marker.
type Options struct {
	Policy Policy

	// PruneEmpty drops cards whose identity had to be synthesized and that
	// carry fewer than PruneThreshold other properties.
	PruneEmpty     bool
	PruneThreshold int
}

// DefaultPruneThreshold is the minimum number of non-identity properties a
// repaired card needs to survive pruning.
const DefaultPruneThreshold = 1

// Outcome is the terminal decision for a card.
type Outcome int

const (
	// Emit means the card is written.
	Emit Outcome = iota
	// Omitted means a card filter matched one of its lines.
	Omitted
	// Invalid means the card has no usable identity even after repair.
	Invalid
	// Pruned means the card was repaired but has too little content.
	Pruned
)

// String returns a short description of the outcome.
func (o Outcome) String() string {
	switch o {
	case Emit:
		return "emit"
	case Omitted:
		return "omitted"
	case Invalid:
		return "invalid"
	case Pruned:
		return "pruned"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}
