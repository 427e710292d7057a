package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the stored opportunities as a table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		ops, err := db.List(cmd.Context())
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Organization", "Region", "Sector", "Deadline", "Budget", "Link"})
		for _, op := range ops {
			t.AppendRow(table.Row{op.Organization, op.Region, op.Sector, op.Deadline, op.Budget, op.Link})
		}
		t.AppendFooter(table.Row{"", "", "", "", "Total", len(ops)})
		t.Render()
		return nil
	},
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}
