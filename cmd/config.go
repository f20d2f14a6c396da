package cmd

import (
	"github.com/TFMV/notegraph/config"
	"github.com/TFMV/notegraph/ui"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage notegraph configuration",
	}
	cmd.AddCommand(configInitCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <path>",
		Short: "Write the default configuration (.yaml, .yml or .toml)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefaultConfig(args[0]); err != nil {
				return err
			}
			ui.Good.Fprintf(cmd.OutOrStdout(), "  wrote %s\n", args[0])
			return nil
		},
	}
}
