package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	dbfx "tender-scout/db/fx"
	appfx "tender-scout/internal/app/fx"
	"tender-scout/internal/cycle"
	cyclefx "tender-scout/internal/cycle/fx"
	"tender-scout/internal/envutil"
)

func newRootCmd() *cobra.Command {
	var (
		portalsFile string
		portalKeys  []string
		timeout     time.Duration
	)

	rootCmd := &cobra.Command{
		Use:           "runner",
		Short:         "Run one crawl cycle and print the summary as JSON",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if portalsFile != "" {
				if err := os.Setenv("CRAWL_PORTALS_FILE", portalsFile); err != nil {
					return err
				}
			}

			var summary cycle.Summary

			app := fx.New(
				fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
					return &fxevent.ZapLogger{Logger: logger}
				}),
				appfx.Module,
				dbfx.Module,
				cyclefx.Module,
				fx.Invoke(func(lc fx.Lifecycle, orchestrator *cycle.Orchestrator) {
					lc.Append(fx.Hook{
						OnStart: func(ctx context.Context) error {
							out, err := orchestrator.RunPortals(ctx, portalKeys...)
							if err != nil {
								return err
							}
							summary = out
							return nil
						},
					})
				}),
			)

			startCtx, startCancel := context.WithTimeout(cmd.Context(), timeout)
			defer startCancel()
			if err := app.Start(startCtx); err != nil {
				return err
			}

			stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer stopCancel()
			if err := app.Stop(stopCtx); err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return fmt.Errorf("encode summary: %w", err)
			}
			return nil
		},
	}

	rootCmd.Flags().StringVar(&portalsFile, "portals", envutil.String(os.Getenv, "CRAWL_PORTALS_FILE", ""), "Portal definitions YAML (overrides CRAWL_PORTALS_FILE)")
	rootCmd.Flags().StringSliceVar(&portalKeys, "portal", nil, "Restrict the cycle to these portal keys (repeatable)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 15*time.Minute, "Upper bound for the whole cycle")

	return rootCmd
}
