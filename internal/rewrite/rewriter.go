// Package rewrite normalizes vCard 2.1 property syntax into a target
// version's syntax through an ordered list of pattern substitutions.
//
// Order matters: the bare-type rule produces the TYPE= parameter that the
// preference rule must not pre-empt, so rules always run in the order they
// were given, one after the other, over the whole line.
package rewrite

import (
	"fmt"
	"slices"

	"github.com/simonhull/vcardtool/internal/registry"
	"github.com/simonhull/vcardtool/internal/types"
)

// Rewriter applies an ordered rule list to lines.
type Rewriter struct {
	rules []types.Rule
}

// New returns a Rewriter with the rule set registered for version.
//
// When stripSentinel is true the trailing-sentinel rule is appended last.
func New(version types.Version, stripSentinel bool) (*Rewriter, error) {
	ruleSet := registry.Get(version)
	if ruleSet == nil {
		return nil, fmt.Errorf("no rewrite rules registered for version %s (have %v)", version, registry.Versions())
	}

	rules := ruleSet()
	if stripSentinel {
		rules = append(rules, StripSentinel())
	}
	return NewWithRules(rules...), nil
}

// NewWithRules returns a Rewriter applying exactly rules, in order.
func NewWithRules(rules ...types.Rule) *Rewriter {
	return &Rewriter{rules: slices.Clone(rules)}
}

// Rules returns a copy of the rule list in application order.
func (rw *Rewriter) Rules() []types.Rule {
	return slices.Clone(rw.rules)
}

// Rewrite applies every rule to line and returns the result.
func (rw *Rewriter) Rewrite(line string) string {
	for _, r := range rw.rules {
		line = r.Apply(line)
	}
	return line
}
