package types

import (
	"slices"
	"strings"
)

// PropertyGroup is one logical property of a record.
//
// A group is made of one or more physical lines. The first line carries the
// property name; every following line is a continuation line, beginning with
// a single space or horizontal tab. Lines keep their "\n" terminator.
type PropertyGroup struct {
	Lines []string
}

// NewPropertyGroup returns a group holding a single physical line.
func NewPropertyGroup(line string) *PropertyGroup {
	return &PropertyGroup{Lines: []string{line}}
}

// IsContinuation reports whether a physical line continues the previous group.
func IsContinuation(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

// Name returns the token preceding the first ':' or ';' of the first line.
//
// Returns an empty string when the first line has neither separator.
func (g *PropertyGroup) Name() string {
	if len(g.Lines) == 0 {
		return ""
	}
	first := g.Lines[0]
	i := strings.IndexAny(first, ":;")
	if i < 0 {
		return ""
	}
	return first[:i]
}

// Is reports whether the group's name is exactly name.
func (g *PropertyGroup) Is(name string) bool {
	return g.Name() == name
}

// Body returns the full group text with the leading name token removed.
//
// Two groups with equal bodies carry the same parameters and value, whatever
// their property name.
func (g *PropertyGroup) Body() string {
	text := g.Text()
	return text[len(g.Name()):]
}

// Value returns the unfolded property value: the text after the first ':'
// with terminators and the leading whitespace of continuation lines removed.
func (g *PropertyGroup) Value() string {
	if len(g.Lines) == 0 {
		return ""
	}
	first := strings.TrimSuffix(g.Lines[0], "\n")
	i := strings.IndexByte(first, ':')
	if i < 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(first[i+1:])
	for _, line := range g.Lines[1:] {
		if IsContinuation(line) {
			line = line[1:]
		}
		b.WriteString(strings.TrimSuffix(line, "\n"))
	}
	return b.String()
}

// Text returns all physical lines concatenated.
func (g *PropertyGroup) Text() string {
	return strings.Join(g.Lines, "")
}

// Append adds a continuation line to the group.
func (g *PropertyGroup) Append(line string) {
	g.Lines = append(g.Lines, line)
}

// Folded reports whether the group spans more than one physical line.
func (g *PropertyGroup) Folded() bool {
	return len(g.Lines) > 1
}

// Rename replaces the leading name token of the first line.
func (g *PropertyGroup) Rename(name string) {
	if len(g.Lines) == 0 {
		return
	}
	g.Lines[0] = name + g.Lines[0][len(g.Name()):]
}

// Equal reports whether both groups hold element-wise identical lines.
func (g *PropertyGroup) Equal(other *PropertyGroup) bool {
	if g == nil || other == nil {
		return g == other
	}
	return slices.Equal(g.Lines, other.Lines)
}

// Clone returns a deep copy of the group.
func (g *PropertyGroup) Clone() *PropertyGroup {
	return &PropertyGroup{Lines: slices.Clone(g.Lines)}
}
