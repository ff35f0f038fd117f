package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/simonhull/vcardtool"
)

func newMergeCmd(g *globalFlags, stderr io.Writer) *cobra.Command {
	var (
		save    saveFlags
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "merge [flags] infile [outfile]",
		Short: "Sort contacts and merge those with the same formatted name",
		Long: `Sort contacts by their FN line and merge contacts whose FN lines are
identical. Properties of each contact are sorted and exact duplicates are
removed. Every contact must have an FN property; convert the file first.
The output defaults to infile.sorted.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, logger, err := g.setup(cmd, stderr)
			if err != nil {
				return err
			}

			opts := append(encodingOptions(profile), vcardtool.WithLogger(logger))
			m, err := vcardtool.NewMerger(opts...)
			if err != nil {
				return inputError(err)
			}

			stats, err := m.MergeFile(args[0], outputPath(args), save.options()...)
			if err != nil {
				return exitErrorf(1, err)
			}

			if verbose {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "input entries :", stats.Input)
				fmt.Fprintln(out, "merged entries:", stats.Merged)
				fmt.Fprintln(out, "output entries:", stats.Output)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print record counts")
	save.register(cmd)
	return cmd
}
