package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workshopstudio/taskapi/internal/testconfig"
)

const (
	flagProfile    = "profile"
	flagModuleRoot = "module-root"
)

func newCoverageCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Work with coverage profiles",
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Report coverage and enforce the configured thresholds",
		Long: `Summarize a profile written by go test -coverprofile, run the configured
coverage reporters and fail when any measured metric is below its threshold.
Only files selected by coverage.collect_from are counted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, _ := cmd.Flags().GetString(flagProfile)
			root, _ := cmd.Flags().GetString(flagModuleRoot)

			cov, err := testconfig.LoadProfile(profile, root)
			if err != nil {
				return err
			}
			cov = cov.Filter(opts.cfg.Covered)

			if opts.cfg.Coverage.Collect {
				if err := opts.cfg.WriteCoverageReports(cov, root, cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			if err := opts.cfg.Coverage.Thresholds.Enforce(cov.Summary()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Coverage thresholds met")
			return nil
		},
	}
	check.Flags().String(flagProfile, "cover.out", "Cover profile to summarize")
	check.Flags().String(flagModuleRoot, ".", "Directory holding go.mod")

	cmd.AddCommand(check)
	return cmd
}
