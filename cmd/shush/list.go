package main

import (
	"os"
	"time"

	"github.com/shush-sh/shush/internal/models"
	"github.com/shush-sh/shush/internal/reconcile"
	"github.com/shush-sh/shush/internal/registry"
	"github.com/shush-sh/shush/internal/reporter"
	"github.com/shush-sh/shush/internal/resolver"
	"github.com/shush-sh/shush/pkg/config"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	flags := &selectorFlags{}

	var configFile string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active silences",
		Long: `List shows the active silence entries, optionally narrowed to the
selected clients, subscriptions or nodes. Expired entries the registry
has not purged yet are never shown.`,
		Example: `  # Everything that is currently silenced
  shush list

  # Only the silences on the database fleet
  shush list -i 'db-*'`,
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

			// Without selectors the whole registry is listed, so resolution
			// is skipped entirely. Listing is read-only and exempt from the
			// fleet-wide guard.
			var targets []models.Target
			if selectors := flags.selectors(); len(selectors) > 0 {
				inv, err := fetchInventory(ctx, client, flags)
				if err != nil {
					return err
				}
				targets, err = resolver.Resolve(selectors, inv, resolver.Options{
					Strict:     cfg.Strict,
					AllowFleet: true,
					Checks:     flags.checks,
				})
				if err != nil {
					return err
				}
			}

			current, err := client.List(ctx, registry.Scope{})
			if err != nil {
				return err
			}

			now := time.Now()
			records := reconcile.FilterCurrent(targets, current, now)

			if cfg.Format == "json" {
				return reporter.WriteRecordsJSON(os.Stdout, records)
			}
			return reporter.WriteRecords(os.Stdout, records, now)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&configFile, "config-file", "", "Config file path")
	cmd.Flags().StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "Registry API base URL")
	cmd.Flags().BoolVar(&cfg.Strict, "strict", cfg.Strict, "Fail when a selector matches nothing")
	cmd.Flags().StringVarP(&cfg.Format, "format", "f", cfg.Format, "Output format: text or json")

	return cmd
}
