package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shush-sh/shush/internal/app"
	"github.com/shush-sh/shush/internal/models"
	"github.com/shush-sh/shush/internal/registry"
	"github.com/shush-sh/shush/internal/reporter"
	"github.com/shush-sh/shush/internal/resolver"
	"github.com/shush-sh/shush/pkg/config"
	"github.com/spf13/cobra"
)

// selectorFlags are the target selection flags shared by silence, clear
// and list.
type selectorFlags struct {
	clients       []string
	subscriptions []string
	nodes         []string
	checks        []string
}

func (f *selectorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.clients, "clients", "i", nil, "Client names or globs (comma separated)")
	cmd.Flags().StringSliceVarP(&f.subscriptions, "subscriptions", "s", nil, "Subscription names or globs (comma separated)")
	cmd.Flags().StringSliceVarP(&f.nodes, "nodes", "n", nil, "Cloud instance IDs or globs (comma separated)")
	cmd.Flags().StringSliceVarP(&f.checks, "checks", "c", nil, "Check names or globs (comma separated)")
	cmd.MarkFlagsMutuallyExclusive("clients", "subscriptions", "nodes")
}

func (f *selectorFlags) selectors() []resolver.Selector {
	var out []resolver.Selector
	out = append(out, resolver.Selectors(resolver.SelectClient, f.clients)...)
	out = append(out, resolver.Selectors(resolver.SelectSubscription, f.subscriptions)...)
	out = append(out, resolver.Selectors(resolver.SelectNode, f.nodes)...)
	return out
}

// needsInventory reports whether resolution requires a snapshot: globs must
// expand against it and node IDs must be mapped through it. Exact names
// pass through, so a purely exact invocation skips the inventory fetch.
func (f *selectorFlags) needsInventory() bool {
	if len(f.nodes) > 0 {
		return true
	}
	for _, sel := range f.selectors() {
		if resolver.IsGlob(sel.Pattern) {
			return true
		}
	}
	for _, check := range f.checks {
		if check != models.CheckWildcard && resolver.IsGlob(check) {
			return true
		}
	}
	return false
}

// loadConfig overlays the discovered config file onto cfg. Flags the user
// already set win over file values.
func loadConfig(cfg *config.Config, configFile string) error {
	fc, path, err := config.LoadFirstExistingFile(config.SearchPaths(configFile))
	if err != nil {
		return err
	}
	if fc == nil {
		if configFile != "" {
			return fmt.Errorf("config file %q not found", configFile)
		}
		if isFirstRun && cfg.APIURL == "" {
			app.PrintConfigHint(os.Stderr)
		}
	} else {
		slog.Debug("loaded config file", slog.String("path", path))
		if err := fc.Apply(cfg); err != nil {
			return err
		}
	}

	if cfg.Creator == "" {
		cfg.Creator = defaultCreator()
	}
	return nil
}

// defaultCreator attributes silences to the invoking user.
func defaultCreator() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "shush"
}

// signalContext returns a context canceled on interrupt or termination, so
// no new registry operations are issued after the user bails out.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// fetchInventory returns the inventory snapshot when resolution needs it,
// and an empty one otherwise.
func fetchInventory(ctx context.Context, client *registry.Client, flags *selectorFlags) (*models.InventorySnapshot, error) {
	if !flags.needsInventory() {
		return &models.InventorySnapshot{}, nil
	}
	snap, err := client.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func writePlanOutput(cfg *config.Config, plan models.OperationPlan) error {
	if cfg.Format == "json" {
		return reporter.WritePlanJSON(os.Stdout, plan)
	}
	return reporter.WritePlan(os.Stdout, plan)
}

func writeSummaryOutput(cfg *config.Config, summary *models.Summary) error {
	if cfg.Format == "json" {
		return reporter.WriteSummaryJSON(os.Stdout, summary)
	}
	return reporter.WriteSummary(os.Stdout, summary)
}

// finish converts a summary into the command result: nil when everything
// succeeded or was skipped, a PartialFailureError otherwise.
func finish(summary *models.Summary) error {
	if failed := summary.Count(models.ResultFailed); failed > 0 {
		return &PartialFailureError{Failed: failed}
	}
	return nil
}
