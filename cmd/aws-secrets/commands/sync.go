package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/aws-secrets/internal/config"
	"github.com/systmms/aws-secrets/internal/dotenv"
	"github.com/systmms/aws-secrets/internal/metrics"
	"github.com/systmms/aws-secrets/internal/reconcile"
	"github.com/systmms/aws-secrets/internal/ui"
)

func NewSyncCommand(cfg *config.Config) *cobra.Command {
	var (
		filename string
		mode     string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync secrets from a .env file to AWS",
		Long: `Push the keys of a local .env file to the configured secret.

Modes:
  merge      Local values are laid over the remote secret. Remote-only keys stay.
  overwrite  The remote secret becomes exactly the local file. Remote-only keys are removed.

Examples:
  aws-secrets sync --dry-run
  aws-secrets sync -f .env.production -m overwrite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			syncMode, err := reconcile.ParseMode(mode)
			if err != nil {
				return err
			}

			local, err := dotenv.ReadFile(filename)
			if err != nil {
				return err
			}
			cfg.Logger.Debug("Read %d keys from %s", local.Len(), filename)

			ctx, cancel := withTimeout(cmd, cfg)
			defer cancel()

			start := time.Now()
			store, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}

			sp := startSpinner(cmd, cfg, "Syncing secrets...")
			res, err := reconcile.Run(ctx, store, local, reconcile.Options{Mode: syncMode, DryRun: dryRun})
			sp.Stop()
			if res.Target != nil {
				printPlan(cmd.OutOrStdout(), res.Plan)
			}
			if err != nil {
				return timeoutError(err, cfg.TimeoutOrDefault())
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out)
				fmt.Fprintln(out, ui.Changed.Sprint("Dry run - no changes made"))
			} else {
				cfg.Logger.Info("Successfully synced secrets to AWS")
				printSummary(out, res.Plan)
			}

			if cfg.MetricsFile != "" {
				m := metrics.NewSyncMetrics()
				m.Observe(res, time.Since(start), time.Now())
				if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
					return err
				}
				cfg.Logger.Debug("Wrote sync metrics to %s", cfg.MetricsFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filename, "filename", "f", dotenv.DefaultFilename, "Input filename")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(reconcile.ModeMerge), "Sync mode (merge/overwrite)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Show what would be updated without making changes")

	return cmd
}

func printPlan(w io.Writer, plan reconcile.Plan) {
	fmt.Fprintln(w, ui.Key.Sprint("Changes to be made:"))
	if plan.Empty() {
		fmt.Fprintln(w, ui.Muted.Sprint("no changes"))
		return
	}
	for _, c := range plan.Added {
		fmt.Fprintln(w, ui.Added.Sprintf("+ %s: %s", c.Key, c.Value))
	}
	for _, c := range plan.Changed {
		fmt.Fprintln(w, ui.Changed.Sprintf("~ %s: %s", c.Key, c.Value))
	}
	for _, key := range plan.Removed {
		fmt.Fprintln(w, ui.Removed.Sprintf("- %s", key))
	}
}

func printSummary(w io.Writer, plan reconcile.Plan) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.Key.Sprint("Sync Summary:"))
	fmt.Fprintf(w, "Total secrets: %d\n", plan.Target.Len())
	fmt.Fprintln(w, ui.Added.Sprintf("Added/Modified: %d", plan.Modified()))
	if plan.Mode == reconcile.ModeOverwrite {
		fmt.Fprintln(w, ui.Removed.Sprintf("Removed: %d", len(plan.Removed)))
	}
}
