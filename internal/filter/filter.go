// Package filter implements line-matching pattern sets used to drop single
// lines or whole cards.
package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// Set is an ordered list of patterns with "any match" semantics.
//
// Patterns are anchored at the start of the line: "X-" matches lines
// beginning with X- only. Use ".*X-" to match anywhere.
type Set struct {
	patterns []*regexp.Regexp
	sources  []string
}

// Compile builds a Set from pattern sources. A nil or empty list yields a
// Set that never matches.
func Compile(patterns []string) (*Set, error) {
	s := &Set{
		patterns: make([]*regexp.Regexp, 0, len(patterns)),
		sources:  make([]string, 0, len(patterns)),
	}
	for _, p := range patterns {
		re, err := regexp.Compile(`^(?:` + p + `)`)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		s.patterns = append(s.patterns, re)
		s.sources = append(s.sources, p)
	}
	return s, nil
}

// Len returns the number of patterns.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.patterns)
}

// Match reports whether any pattern matches line.
func (s *Set) Match(line string) bool {
	_, ok := s.First(line)
	return ok
}

// First returns the source of the first pattern matching line. The line
// terminator is not part of the matched text, so "$" anchors at the end of
// the content.
func (s *Set) First(line string) (string, bool) {
	if s == nil {
		return "", false
	}
	line = strings.TrimSuffix(line, "\n")
	for i, re := range s.patterns {
		if re.MatchString(line) {
			return s.sources[i], true
		}
	}
	return "", false
}
