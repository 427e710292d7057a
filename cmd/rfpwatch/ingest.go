package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"rfpwatch/internal/telemetry"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion and replace the stored generation.",
	Long: "Fetches every enabled source, normalizes and filters the results and replaces the\n" +
		"stored set in one transaction. Exits non-zero on configuration or persistence failure;\n" +
		"individual source failures are logged only.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName)
		if err != nil {
			return err
		}
		defer func() { _ = shutdownTracing(cmd.Context()) }()

		db, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		runner, err := newRunner(cfg, db, nil, nil)
		if err != nil {
			return err
		}
		out, err := runner.RunOnce(ctx)
		if err != nil {
			return err
		}

		for _, s := range out.Result.Sources {
			if !s.OK() {
				slog.Warn("source failed", "source", s.Name, "err", s.Error)
			}
		}
		if out.KeptPrevious {
			fmt.Fprintln(cmd.OutOrStdout(), "every source failed; previous data kept")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d opportunities\n", out.Persisted)
		return nil
	},
}
