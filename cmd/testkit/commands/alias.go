package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const flagRootDir = "root-dir"

func newAliasCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias <import>",
		Short: "Resolve an aliased import path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rootDir, _ := cmd.Flags().GetString(flagRootDir)
			if rootDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
				rootDir = wd
			}

			resolved, ok := opts.cfg.ResolveAlias(args[0], rootDir)
			if !ok {
				return fmt.Errorf("no module name mapping matches %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), resolved)
			return nil
		},
	}

	cmd.Flags().String(flagRootDir, "", "Value substituted for <rootDir> (default: working directory)")
	return cmd
}
