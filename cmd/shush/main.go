package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/shush-sh/shush/internal/app"
	"github.com/shush-sh/shush/internal/logging"
	"github.com/shush-sh/shush/internal/models"
	"github.com/shush-sh/shush/internal/registry"
	"github.com/shush-sh/shush/internal/resolver"
	"github.com/spf13/cobra"
)

var (
	version    = "1.0.0"
	verbose    bool
	isFirstRun bool
)

// Exit codes for structured error reporting.
const (
	ExitSuccess      = 0
	ExitInternal     = 1
	ExitInvalidArg   = 2
	ExitNotFound     = 3
	ExitUnauthorized = 4
	ExitNetwork      = 5
	ExitPartial      = 6
)

// PartialFailureError indicates the invocation completed but some targets
// failed. The per-target summary was already printed.
type PartialFailureError struct {
	Failed int
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%d targets failed", e.Failed)
}

func main() {
	logging.Init(false)
	isFirstRun = app.IsFirstRun()

	root := &cobra.Command{
		Use:   "shush",
		Short: "Silence checks in a Sensu-compatible monitoring system",
		Long: `Shush silences, unsilences and lists silenced checks across clients
and subscriptions, with wildcard expansion against the live inventory
and safe, idempotent handling of existing silence entries.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(verbose)
		},
	}

	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.AddCommand(NewSilenceCmd())
	root.AddCommand(NewClearCmd())
	root.AddCommand(NewListCmd())
	root.AddCommand(NewVersionCmd())

	if err := root.Execute(); err != nil {
		exitCode := classifyError(err)
		var pf *PartialFailureError
		if errors.As(err, &pf) {
			slog.Warn("some operations failed", slog.Int("count", pf.Failed))
		} else {
			slog.Error("command failed", slog.String("error", err.Error()))
		}
		os.Exit(exitCode)
	}
}

func classifyError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var pf *PartialFailureError
	if errors.As(err, &pf) {
		return ExitPartial
	}

	var ve *models.ValidationError
	var re *resolver.ResolutionError
	if errors.As(err, &ve) || errors.As(err, &re) {
		return ExitInvalidArg
	}

	switch {
	case errors.Is(err, registry.ErrUnauthorized):
		return ExitUnauthorized
	case errors.Is(err, registry.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, registry.ErrUnavailable):
		return ExitNetwork
	}

	return ExitInternal
}
