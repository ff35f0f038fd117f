// Package config loads conversion profiles from YAML or TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/vcardtool/internal/card"
	"github.com/simonhull/vcardtool/internal/filter"
	"github.com/simonhull/vcardtool/internal/types"
)

// Format is a profile file syntax.
type Format int

const (
	FormatUnknown Format = iota
	FormatYAML
	FormatTOML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// FormatOf picks the format from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatUnknown
	}
}

// File is a conversion profile. Zero values mean "not set".
type File struct {
	InputEncoding  string   `yaml:"input_encoding" toml:"input_encoding"`
	OutputEncoding string   `yaml:"output_encoding" toml:"output_encoding"`
	Remove         []string `yaml:"remove" toml:"remove"`
	RemoveCard     []string `yaml:"remove_card" toml:"remove_card"`
	StripSentinel  bool     `yaml:"strip_sentinel" toml:"strip_sentinel"`
	PruneEmpty     bool     `yaml:"prune_empty" toml:"prune_empty"`
	PruneThreshold int      `yaml:"prune_threshold" toml:"prune_threshold"`
	RepairPolicy   string   `yaml:"repair_policy" toml:"repair_policy"`
	TargetVersion  string   `yaml:"target_version" toml:"target_version"`
}

// ParseError reports a profile that could not be parsed or validated.
type ParseError struct {
	Err     error
	Path    string
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("config %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("config %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads and validates the profile at path.
func Load(path string) (*File, error) {
	format := FormatOf(path)
	if format == FormatUnknown {
		return nil, &ParseError{Path: path, Message: "unknown file extension (want .yaml, .yml or .toml)"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(format, path, data)
}

// Parse decodes data in the given format. Unknown keys are rejected.
// source names the data in errors.
func Parse(format Format, source string, data []byte) (*File, error) {
	var f File

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
		}

	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			perr := &ParseError{Path: source, Message: err.Error(), Err: err}
			var (
				decErr    *toml.DecodeError
				strictErr *toml.StrictMissingError
			)
			switch {
			case errors.As(err, &decErr):
				perr.Line, perr.Column = decErr.Position()
			case errors.As(err, &strictErr):
				perr.Message = strings.TrimSpace(strictErr.String())
			}
			return nil, perr
		}

	default:
		return nil, &ParseError{Path: source, Message: fmt.Sprintf("unsupported format %s", format)}
	}

	if err := f.Validate(); err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return &f, nil
}

// Validate checks values that can be checked without opening any file.
func (f *File) Validate() error {
	if _, err := card.ParsePolicy(f.RepairPolicy); err != nil {
		return err
	}
	if f.TargetVersion != "" {
		if _, err := types.ParseVersion(f.TargetVersion); err != nil {
			return err
		}
	}
	if f.PruneThreshold < 0 {
		return fmt.Errorf("prune_threshold must not be negative, got %d", f.PruneThreshold)
	}
	if _, err := filter.Compile(f.Remove); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	if _, err := filter.Compile(f.RemoveCard); err != nil {
		return fmt.Errorf("remove_card: %w", err)
	}
	return nil
}
