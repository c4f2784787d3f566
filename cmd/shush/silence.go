package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shush-sh/shush/internal/models"
	"github.com/shush-sh/shush/internal/reconcile"
	"github.com/shush-sh/shush/internal/registry"
	"github.com/shush-sh/shush/internal/resolver"
	"github.com/shush-sh/shush/pkg/config"
	"github.com/spf13/cobra"
)

// NewSilenceCmd creates the silence command.
func NewSilenceCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	flags := &selectorFlags{}

	var (
		configFile      string
		expire          string
		expireOnResolve bool
		reason          string
		overwrite       bool
		fleet           bool
	)

	cmd := &cobra.Command{
		Use:   "silence",
		Short: "Silence checks on the selected targets",
		Long: `Silence resolves the selected clients, subscriptions or nodes into
concrete targets and creates a silence entry for each one. Targets that
are already silenced with the same ttl and reason are skipped, so
re-running the same command is safe.`,
		Example: `  # Silence everything on one client for two hours
  shush silence -i web-01

  # Silence the disk checks on every database client until cleared
  shush silence -i 'db-*' -c 'disk*' --expire none --reason "maintenance"

  # Silence a subscription until its checks next pass
  shush silence -s load_balancer --expire-on-resolve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cfg, configFile); err != nil {
				return err
			}

			ttl, indefinite, err := config.ParseExpire(expire)
			if err != nil {
				return fmt.Errorf("invalid --expire: %w", err)
			}
			spec := models.RecordSpec{
				TTL:             ttl,
				Indefinite:      indefinite,
				ExpireOnResolve: expireOnResolve,
				Reason:          reason,
				Creator:         cfg.Creator,
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

			plan, err := reconcile.Plan(reconcile.IntentSilence, targets, current, reconcile.PlanOptions{
				Spec:      spec,
				Overwrite: overwrite,
				Now:       time.Now(),
			})
			if err != nil {
				return err
			}

			if cfg.DryRun {
				return writePlanOutput(cfg, plan)
			}

			slog.Debug("executing plan",
				slog.Int("targets", len(targets)),
				slog.Int("creates", plan.Count(models.ActionCreate)))

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
	cmd.Flags().StringVarP(&expire, "expire", "e", "2h", "Silence duration (e.g. 30m, 2h, 1d, or 'none' for indefinite)")
	cmd.Flags().BoolVarP(&expireOnResolve, "expire-on-resolve", "r", false, "Expire the silence when the check next passes")
	cmd.Flags().StringVarP(&reason, "reason", "m", "", "Reason recorded on the silence entry")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing entries whose ttl or reason differ")
	cmd.Flags().BoolVar(&fleet, "fleet", false, "Allow a fleet-wide silence (all clients, all checks)")
	cmd.Flags().BoolVar(&cfg.Strict, "strict", cfg.Strict, "Fail when a selector matches nothing")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "Print the plan without applying it")
	cmd.Flags().StringVarP(&cfg.Format, "format", "f", cfg.Format, "Output format: text or json")
	cmd.Flags().StringVar(&cfg.Creator, "creator", cfg.Creator, "Creator recorded on the silence entry")

	return cmd
}
