package main

import (
	"fmt"

	"rfpwatch/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or bootstrap the config file.",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config unless one exists.",
	RunE: func(cmd *cobra.Command, args []string) error {
		wrote, err := config.EnsureFile(cfgPath)
		if err != nil {
			return err
		}
		if wrote {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgPath)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", cfgPath)
		}
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config and list its warnings.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		_, v := config.NormalizeAndValidate(cfg)
		for _, w := range v.Warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
		}
		if err := v.Err(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configCheckCmd)
}
