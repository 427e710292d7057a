package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "rfpwatch",
	Short:         "rfpwatch aggregates public tender and RFP listings and serves them as JSON.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", filepath.Join("config", "config.yml"), "path to the config file")
	rootCmd.AddCommand(serveCmd, ingestCmd, listCmd, secretCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
