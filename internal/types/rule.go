package types

import (
	"regexp"
	"strings"
)

// Rule is one pattern substitution applied to a whole line.
//
// The replacement is either Template, expanded like regexp.Expand ("${1}"),
// or, when Func is set, computed from the submatches of each match
// (index 0 is the full match).
type Rule struct {
	Pattern  *regexp.Regexp
	Func     func(groups []string) string
	Name     string
	Template string
}

// Apply replaces every non-overlapping match of the rule's pattern in line.
func (r Rule) Apply(line string) string {
	if r.Func == nil {
		return r.Pattern.ReplaceAllString(line, r.Template)
	}

	matches := r.Pattern.FindAllStringSubmatchIndex(line, -1)
	if matches == nil {
		return line
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = line[m[2*i]:m[2*i+1]]
			}
		}
		b.WriteString(line[last:m[0]])
		b.WriteString(r.Func(groups))
		last = m[1]
	}
	b.WriteString(line[last:])
	return b.String()
}
