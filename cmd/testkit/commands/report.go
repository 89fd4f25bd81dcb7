package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/workshopstudio/taskapi/internal/testconfig"
)

const (
	flagInput  = "input"
	flagOutDir = "out-dir"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render test results with the configured reporters",
		Long: `Read the output of go test -json and run every configured reporter:
a console summary, a JUnit XML file and an HTML report. Exits non-zero when
any test failed.

Examples:
  go test -json ./... > test.json
  testkit report --input test.json

  go test -json ./... | testkit report --input -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, _ := cmd.Flags().GetString(flagInput)
			outDir, _ := cmd.Flags().GetString(flagOutDir)

			var r io.Reader = cmd.InOrStdin()
			if input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("failed to open test output: %w", err)
				}
				defer f.Close()
				r = f
			}

			report, err := testconfig.ParseResults(r)
			if err != nil {
				return err
			}
			if err := opts.cfg.WriteReports(report, outDir, cmd.OutOrStdout()); err != nil {
				return err
			}
			if totals := testconfig.CountResults(report); totals.Failed > 0 {
				return fmt.Errorf("%d of %d tests failed", totals.Failed, totals.Tests)
			}
			return nil
		},
	}

	cmd.Flags().StringP(flagInput, "i", "test.json", "go test -json output, or - for stdin")
	cmd.Flags().String(flagOutDir, ".", "Directory report files are written under")
	return cmd
}
