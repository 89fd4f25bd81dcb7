package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workshopstudio/taskapi/internal/awsclients"
	"github.com/workshopstudio/taskapi/internal/config"
	"github.com/workshopstudio/taskapi/internal/logger"
	"github.com/workshopstudio/taskapi/internal/testconfig"
)

// flag names
const (
	flagConfig = "config"
	flagDotEnv = "env-file"
)

// newClients creates the AWS clients for commands that reach the deployed stack
var newClients = awsclients.New

// rootOptions carries the state resolved before any subcommand runs
type rootOptions struct {
	configPath string
	dotEnv     []string
	cfg        *testconfig.Config
}

// NewRootCmd builds the testkit command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "testkit",
		Short: "testkit - test runner tooling for the workshop task API",
		Long: `testkit resolves the test runner configuration, discovers test files,
enforces coverage thresholds, renders test reports and serves the task API
locally for manual testing.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger.InitializeAndConfigure()
			if err := config.LoadDotEnv(opts.dotEnv...); err != nil {
				return err
			}

			cfg, err := testconfig.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, flagConfig, "c", "", "Path to the runner configuration (default: ./testkit.yaml when present)")
	cmd.PersistentFlags().StringSliceVar(&opts.dotEnv, flagDotEnv, nil, "Dotenv files to load (default: "+config.DefaultDotEnvFile+")")

	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newDiscoverCmd(opts))
	cmd.AddCommand(newAliasCmd(opts))
	cmd.AddCommand(newCoverageCmd(opts))
	cmd.AddCommand(newReportCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newEnvCmd())

	return cmd
}

// Execute runs the command tree against the process arguments
func Execute() error {
	return NewRootCmd().Execute()
}
