package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

const flagCoverage = "coverage"

func newDiscoverCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover [root]",
		Short: "List the test files the runner would execute",
		Long: `List the test files under root (default: the working directory) that match
the configured test_match patterns. With --coverage, list the source files
coverage is collected from instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			coverage, _ := cmd.Flags().GetBool(flagCoverage)
			discover := opts.cfg.Discover
			if coverage {
				discover = opts.cfg.CoverageSources
			}

			files, err := discover(root)
			if err != nil {
				return err
			}
			for _, f := range files {
				if opts.cfg.Verbose {
					if t := opts.cfg.Transformer(f); t != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", f, t)
						continue
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}

	cmd.Flags().Bool(flagCoverage, false, "List coverage sources instead of test files")
	return cmd
}
