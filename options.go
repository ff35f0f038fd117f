package vcardtool

import (
	"log/slog"

	"github.com/simonhull/vcardtool/internal/card"
	"github.com/simonhull/vcardtool/internal/charset"
	"github.com/simonhull/vcardtool/internal/types"
)

// Option configures conversion and merging.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	stats, err := vcardtool.ConvertFile("contacts.vcf", "",
//	    vcardtool.WithInputEncoding("ISO-8859-1"),
//	    vcardtool.WithRemoveCards(`CATEGORIES:.*Archive`),
//	)
type Option func(*options)

// options holds configuration shared by Converter and Merger.
type options struct {
	logger         *slog.Logger
	inputEncoding  string
	outputEncoding string
	removeLines    []string
	removeCards    []string
	pruneThreshold int
	policy         RepairPolicy
	target         FormatVersion
	stripSentinel  bool
	pruneEmpty     bool
}

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		logger:         slog.New(slog.DiscardHandler),
		inputEncoding:  charset.Default,
		outputEncoding: charset.Default,
		pruneThreshold: card.DefaultPruneThreshold,
		policy:         RequireFNOnly,
		target:         VCard30,
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// DefaultPruneThreshold is the prune threshold used unless
// WithPruneThreshold says otherwise.
const DefaultPruneThreshold = card.DefaultPruneThreshold

// RepairPolicy decides which identity properties a record needs and how
// missing ones are synthesized.
type RepairPolicy = card.Policy

const (
	// RequireFNOnly needs a non-empty FN; a missing FN is made from NICKNAME.
	RequireFNOnly = card.RequireFNOnly
	// RequireNAndFN needs both N and FN and derives either from the other.
	RequireNAndFN = card.RequireNAndFN
)

// ParseRepairPolicy parses "fn-only" or "n-and-fn". An empty string is fn-only.
func ParseRepairPolicy(s string) (RepairPolicy, error) {
	return card.ParsePolicy(s)
}

// FormatVersion is the vCard version conversion targets.
type FormatVersion = types.Version

// Supported conversion targets.
const (
	VCard30 = types.Version30
	VCard40 = types.Version40
)

// ParseFormatVersion parses "3.0" or "4.0".
func ParseFormatVersion(s string) (FormatVersion, error) {
	return types.ParseVersion(s)
}

// WithInputEncoding sets the text encoding of the input, by IANA or WHATWG
// name. Quoted-printable payloads are decoded in this encoding too.
//
// Default is UTF-8. Unknown names fail with UnsupportedEncodingError.
func WithInputEncoding(name string) Option {
	return func(o *options) {
		o.inputEncoding = name
	}
}

// WithOutputEncoding sets the text encoding of the written file.
//
// Default is UTF-8.
func WithOutputEncoding(name string) Option {
	return func(o *options) {
		o.outputEncoding = name
	}
}

// WithRemoveLines adds patterns for lines that are never stored.
//
// Patterns are regular expressions matched at the start of each rewritten
// line. Repeated calls append.
//
// Example:
//
//	vcardtool.WithRemoveLines("PHOTO", "X-ANDROID-CUSTOM")
func WithRemoveLines(patterns ...string) Option {
	return func(o *options) {
		o.removeLines = append(o.removeLines, patterns...)
	}
}

// WithRemoveCards adds patterns that drop the whole record when any of its
// lines matches, including lines removed by WithRemoveLines.
func WithRemoveCards(patterns ...string) Option {
	return func(o *options) {
		o.removeCards = append(o.removeCards, patterns...)
	}
}

// WithStripSentinel removes a trailing '$' from N and FN values.
func WithStripSentinel() Option {
	return func(o *options) {
		o.stripSentinel = true
	}
}

// WithPruneEmpty drops records whose identity had to be synthesized and
// that carry fewer than the prune threshold of other properties.
//
// Example:
//
//	// Drop contacts that are nothing but a nickname
//	vcardtool.WithPruneEmpty()
func WithPruneEmpty() Option {
	return func(o *options) {
		o.pruneEmpty = true
	}
}

// WithPruneThreshold sets the minimum number of properties besides
// VERSION, FN, N and NICKNAME a repaired record needs to survive pruning.
//
// Default is 1. Only effective together with WithPruneEmpty.
func WithPruneThreshold(n int) Option {
	return func(o *options) {
		o.pruneThreshold = n
	}
}

// WithRepairPolicy selects the identity repair policy.
//
// Default is RequireFNOnly.
func WithRepairPolicy(p RepairPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithTargetVersion selects the vCard version written by conversion.
//
// Default is VCard30.
func WithTargetVersion(v FormatVersion) Option {
	return func(o *options) {
		o.target = v
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
