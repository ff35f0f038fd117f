package types

import (
	"fmt"
	"strings"
)

// Version is the vCard format version a conversion targets.
type Version int

const (
	// VersionUnknown represents an unset or unrecognized version.
	VersionUnknown Version = iota
	// Version30 is vCard 3.0 (RFC 2426).
	Version30
	// Version40 is vCard 4.0 (RFC 6350).
	Version40
)

// String returns the version number as it appears in a VERSION property.
func (v Version) String() string {
	switch v {
	case Version30:
		return "3.0"
	case Version40:
		return "4.0"
	case VersionUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Version(%d)", int(v))
	}
}

// ParseVersion parses "3.0" or "4.0" (a bare "3" or "4" is accepted too).
func ParseVersion(s string) (Version, error) {
	switch strings.TrimSpace(s) {
	case "3.0", "3":
		return Version30, nil
	case "4.0", "4":
		return Version40, nil
	default:
		return VersionUnknown, fmt.Errorf("unsupported target version %q", s)
	}
}
