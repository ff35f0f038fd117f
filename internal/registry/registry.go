// Package registry manages the rewrite rule sets available per target vCard version.
package registry

import (
	"slices"

	"github.com/simonhull/vcardtool/internal/types"
)

// RuleSet builds the ordered rewrite rules for one target version.
//
// A fresh slice is returned on every call so callers may append to it.
type RuleSet func() []types.Rule

// ruleSets maps target versions to their rule set builders.
var ruleSets = make(map[types.Version]RuleSet)

// Register registers a rule set for a target version.
// This is called by the rewrite package during initialization (init functions).
func Register(version types.Version, rules RuleSet) {
	ruleSets[version] = rules
}

// Get returns the rule set for a given target version.
// Returns nil if no rule set is registered for the version.
func Get(version types.Version) RuleSet {
	return ruleSets[version]
}

// Versions returns every version with a registered rule set, in ascending order.
func Versions() []types.Version {
	versions := make([]types.Version, 0, len(ruleSets))
	for v := range ruleSets {
		versions = append(versions, v)
	}
	slices.Sort(versions)
	return versions
}
