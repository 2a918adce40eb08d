package main

import (
	"os"

	"github.com/YuminosukeSato/simulix/config"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration files",
	}

	var out string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return config.Write(cmd.OutOrStdout(), config.Default())
			}
			f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
			if err != nil {
				return errors.Wrapf(err, "create %s", out)
			}
			defer f.Close()
			return config.Write(f, config.Default())
		},
	}
	initCmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout (must not exist)")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after file, environment and clamping",
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Write(cmd.OutOrStdout(), a.cfg)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
