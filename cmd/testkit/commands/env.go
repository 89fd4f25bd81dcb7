package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/workshopstudio/taskapi/internal/config"
	"github.com/workshopstudio/taskapi/internal/stack"
)

const flagStack = "stack"

func newEnvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print the test environment in dotenv format",
		Long: `Print the variables the test setup exports, in dotenv format, ready to be
saved as .env.test. With --stack, the endpoint, table and bucket are read
from the outputs of the deployed CloudFormation stack.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := config.TestEnv()
			consts := config.FromEnv()

			if name, _ := cmd.Flags().GetString(flagStack); name != "" {
				clients, err := newClients(consts.Region)
				if err != nil {
					return fmt.Errorf("failed to create AWS clients: %w", err)
				}
				out, err := stack.Describe(cmd.Context(), clients.CloudFormation, name)
				if err != nil {
					return err
				}
				consts = out.Apply(consts)
				consts.StackName = name
			}

			for k, v := range consts.GetEnvironmentVars() {
				env[k] = v
			}
			data, err := godotenv.Marshal(env)
			if err != nil {
				return fmt.Errorf("failed to encode environment: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), data)
			return nil
		},
	}

	cmd.Flags().String(flagStack, "", "CloudFormation stack to read outputs from")
	return cmd
}
