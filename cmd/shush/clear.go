package main

import (
	"log/slog"
	"time"

	"github.com/shush-sh/shush/internal/models"
	"github.com/shush-sh/shush/internal/reconcile"
	"github.com/shush-sh/shush/internal/registry"
	"github.com/shush-sh/shush/internal/resolver"
	"github.com/shush-sh/shush/pkg/config"
	"github.com/spf13/cobra"
)

// NewClearCmd creates the clear command.
func NewClearCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	flags := &selectorFlags{}

	var (
		configFile string
		fleet      bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove silences from the selected targets",
		Long: `Clear removes the silence entries covering the selected targets.
Targets that are not silenced are reported as skipped, so clearing is
safe to re-run.`,
		Example: `  # Unsilence one client
  shush clear -i web-01

  # Clear the disk silences across the database fleet
  shush clear -i 'db-*' -c 'disk*'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cfg, configFile); err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			client, err := registry.NewClient(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			inv, err := fetchInventory(ctx, client, flags)
			if err != nil {
				return err
			}

			targets, err := resolver.Resolve(flags.selectors(), inv, resolver.Options{
				Strict:     cfg.Strict,
				AllowFleet: fleet,
				Checks:     flags.checks,
			})
			if err != nil {
				return err
			}

			current, err := client.List(ctx, registry.Scope{})
			if err != nil {
				return err
			}

			plan, err := reconcile.Plan(reconcile.IntentClear, targets, current, reconcile.PlanOptions{
				Now: time.Now(),
			})
			if err != nil {
				return err
			}

			if cfg.DryRun {
				return writePlanOutput(cfg, plan)
			}

			slog.Debug("executing plan",
				slog.Int("targets", len(targets)),
				slog.Int("deletes", plan.Count(models.ActionDelete)))

			summary := reconcile.Execute(ctx, plan, client, cfg.Concurrency)
			if err := writeSummaryOutput(cfg, &summary); err != nil {
				return err
			}
			return finish(&summary)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&configFile, "config-file", "", "Config file path")
	cmd.Flags().StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "Registry API base URL")
	cmd.Flags().BoolVar(&fleet, "fleet", false, "Allow a fleet-wide clear (all clients, all checks)")
	cmd.Flags().BoolVar(&cfg.Strict, "strict", cfg.Strict, "Fail when a selector matches nothing")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "Print the plan without applying it")
	cmd.Flags().StringVarP(&cfg.Format, "format", "f", cfg.Format, "Output format: text or json")

	return cmd
}
