package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"rfpwatch/internal/secrets"

	"github.com/spf13/cobra"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage source API keys in the OS keyring.",
}

var secretSetCmd = &cobra.Command{
	Use:   "set <source>",
	Short: "Store an API key for a source. The key is read from stdin.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		key := strings.TrimSpace(line)
		if key == "" {
			if err != nil {
				return fmt.Errorf("read key: %w", err)
			}
			return errors.New("empty key")
		}
		if err := secrets.SetSourceKey(args[0], key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored key for %s\n", args[0])
		return nil
	},
}

var secretDeleteCmd = &cobra.Command{
	Use:   "delete <source>",
	Short: "Remove a stored API key.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.DeleteSourceKey(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted key for %s\n", args[0])
		return nil
	},
}

func init() {
	secretCmd.AddCommand(secretSetCmd, secretDeleteCmd)
}
