package main

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/simonhull/vcardtool"
	"github.com/simonhull/vcardtool/internal/config"
)

type convertFlags struct {
	save           saveFlags
	remove         []string
	removeCard     []string
	repairPolicy   string
	targetVersion  string
	pruneThreshold int
	stripSentinel  bool
	pruneEmpty     bool
}

func newConvertCmd(g *globalFlags, stderr io.Writer) *cobra.Command {
	var f convertFlags

	cmd := &cobra.Command{
		Use:   "convert [flags] infile [outfile]",
		Short: "Convert a vCard 2.1 file to vCard 3.0",
		Long: `Convert a vCard 2.1 file to vCard 3.0 (or 4.0 with --target-version).

Quoted-printable values are decoded, vendor properties are mapped to their
standard equivalents and contacts without a formatted name get one from
their nickname. The output defaults to infile.converted.

Patterns given with --remove and --remove-card are regular expressions
matched at the start of each converted line.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, logger, err := g.setup(cmd, stderr)
			if err != nil {
				return err
			}

			opts, err := f.options(cmd, profile)
			if err != nil {
				return exitErrorf(2, err)
			}
			opts = append(opts, vcardtool.WithLogger(logger))

			conv, err := vcardtool.NewConverter(opts...)
			if err != nil {
				return inputError(err)
			}

			stats, err := conv.ConvertFile(args[0], outputPath(args), f.save.options()...)
			if err != nil {
				return exitErrorf(1, err)
			}
			logWarnings(logger, stats.Warnings)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&f.remove, "remove", "r", nil, "Drop lines matching this pattern (repeatable)")
	cmd.Flags().StringArrayVar(&f.removeCard, "remove-card", nil, "Drop cards with a line matching this pattern (repeatable)")
	cmd.Flags().BoolVar(&f.stripSentinel, "strip-sentinel", false, "Strip a trailing '$' from N and FN values")
	cmd.Flags().BoolVar(&f.pruneEmpty, "prune-empty", false, "Drop repaired cards with too little content")
	cmd.Flags().IntVar(&f.pruneThreshold, "prune-threshold", vcardtool.DefaultPruneThreshold, "Minimum number of non-identity properties for --prune-empty")
	cmd.Flags().StringVar(&f.repairPolicy, "repair-policy", "fn-only", "Identity repair policy (fn-only, n-and-fn)")
	cmd.Flags().StringVar(&f.targetVersion, "target-version", "3.0", "vCard version to write (3.0, 4.0)")
	f.save.register(cmd)
	return cmd
}

// options merges the profile with the flags. Flags that were set win;
// pattern lists are appended to the profile's.
func (f *convertFlags) options(cmd *cobra.Command, profile *config.File) ([]vcardtool.Option, error) {
	flags := cmd.Flags()
	opts := encodingOptions(profile)

	opts = append(opts,
		vcardtool.WithRemoveLines(slices.Concat(profile.Remove, f.remove)...),
		vcardtool.WithRemoveCards(slices.Concat(profile.RemoveCard, f.removeCard)...),
	)

	strip := profile.StripSentinel
	if flags.Changed("strip-sentinel") {
		strip = f.stripSentinel
	}
	if strip {
		opts = append(opts, vcardtool.WithStripSentinel())
	}

	pruneEmpty := profile.PruneEmpty
	if flags.Changed("prune-empty") {
		pruneEmpty = f.pruneEmpty
	}
	if pruneEmpty {
		opts = append(opts, vcardtool.WithPruneEmpty())
	}

	threshold := f.pruneThreshold
	if !flags.Changed("prune-threshold") && profile.PruneThreshold > 0 {
		threshold = profile.PruneThreshold
	}
	opts = append(opts, vcardtool.WithPruneThreshold(threshold))

	policyName := f.repairPolicy
	if !flags.Changed("repair-policy") && profile.RepairPolicy != "" {
		policyName = profile.RepairPolicy
	}
	policy, err := vcardtool.ParseRepairPolicy(policyName)
	if err != nil {
		return nil, err
	}
	opts = append(opts, vcardtool.WithRepairPolicy(policy))

	versionName := f.targetVersion
	if !flags.Changed("target-version") && profile.TargetVersion != "" {
		versionName = profile.TargetVersion
	}
	version, err := vcardtool.ParseFormatVersion(versionName)
	if err != nil {
		return nil, err
	}
	opts = append(opts, vcardtool.WithTargetVersion(version))

	return opts, nil
}

func logWarnings(logger *slog.Logger, warnings []vcardtool.Warning) {
	for _, w := range warnings {
		logger.Warn(fmt.Sprintf("card dropped: %s", w.Message), "stage", w.Stage, "line", w.Line)
	}
}
