// Command vcardtool converts vCard 2.1 files to vCard 3.0 and merges
// contacts sharing the same formatted name.
//
// Usage:
//
//	vcardtool convert [flags] infile [outfile]
//	vcardtool merge [flags] infile [outfile]
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/simonhull/vcardtool"
	"github.com/simonhull/vcardtool/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code:
// 0 on success, 1 when the input cannot be processed, 2 on usage errors.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		// Flag and argument errors reported by cobra itself.
		return 2
	}
	return 0
}

type exitError struct {
	err  error
	code int
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitErrorf(code int, err error) error {
	return &exitError{code: code, err: err}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath  string
	logLevel    string
	inEncoding  string
	outEncoding string
}

// saveFlags control how the output file is written.
type saveFlags struct {
	backup          string
	validate        bool
	preserveModTime bool
}

func (s *saveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.backup, "backup", "", "Keep an existing output file under this suffix (e.g. .bak)")
	cmd.Flags().BoolVar(&s.validate, "validate", false, "Re-read the output after writing")
	cmd.Flags().BoolVar(&s.preserveModTime, "preserve-modtime", false, "Give the output the input's modification time")
}

func (s *saveFlags) options() []vcardtool.SaveOption {
	var opts []vcardtool.SaveOption
	if s.backup != "" {
		opts = append(opts, vcardtool.WithBackup(s.backup))
	}
	if s.validate {
		opts = append(opts, vcardtool.WithValidation())
	}
	if s.preserveModTime {
		opts = append(opts, vcardtool.WithPreserveModTime())
	}
	return opts
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "vcardtool",
		Short: "Convert and merge vCard address books",
		Long: `vcardtool converts vCard 2.1 exports, as written by many phones, to
vCard 3.0 (or 4.0), and merges contacts that share the same formatted name.`,
		Version:       vcardtool.GetVersionInfo().String(),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Profile file (.yaml, .yml or .toml)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&g.inEncoding, "in-encoding", "", "Input text encoding (default UTF-8)")
	root.PersistentFlags().StringVar(&g.outEncoding, "out-encoding", "", "Output text encoding (default UTF-8)")

	root.AddCommand(newConvertCmd(&g, stderr))
	root.AddCommand(newMergeCmd(&g, stderr))
	return root
}

// setup loads the profile, if any, and builds the logger. Encoding flags
// override the profile.
func (g *globalFlags) setup(cmd *cobra.Command, stderr io.Writer) (*config.File, *slog.Logger, error) {
	level, err := parseLogLevel(g.logLevel)
	if err != nil {
		return nil, nil, exitErrorf(2, err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	profile := &config.File{}
	if g.configPath != "" {
		profile, err = config.Load(g.configPath)
		if err != nil {
			return nil, nil, exitErrorf(2, err)
		}
		logger.Debug("profile loaded", "path", g.configPath)
	}

	flags := cmd.Flags()
	if flags.Changed("in-encoding") {
		profile.InputEncoding = g.inEncoding
	}
	if flags.Changed("out-encoding") {
		profile.OutputEncoding = g.outEncoding
	}
	return profile, logger, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", s)
	}
}

func encodingOptions(profile *config.File) []vcardtool.Option {
	var opts []vcardtool.Option
	if profile.InputEncoding != "" {
		opts = append(opts, vcardtool.WithInputEncoding(profile.InputEncoding))
	}
	if profile.OutputEncoding != "" {
		opts = append(opts, vcardtool.WithOutputEncoding(profile.OutputEncoding))
	}
	return opts
}

// inputError maps library errors to exit codes: bad option values are usage
// errors, everything else means the input could not be processed.
func inputError(err error) error {
	var encErr *vcardtool.UnsupportedEncodingError
	if errors.As(err, &encErr) {
		return exitErrorf(2, err)
	}
	return exitErrorf(1, err)
}

func outputPath(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return ""
}
