package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shush-sh/shush/internal/models"
	"github.com/shush-sh/shush/internal/registry"
)

// Execute runs the plan against reg with at most concurrency in-flight
// operations. Operations are independent: one target's failure never aborts
// the rest. Cancellation stops dispatching new operations; in-flight ones
// finish or fail on their own and are reported either way.
func Execute(ctx context.Context, plan models.OperationPlan, reg registry.Registry, concurrency int) models.Summary {
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		summary models.Summary
	)
	sem := make(chan struct{}, concurrency)

	record := func(r models.Result) {
		mu.Lock()
		summary.Results = append(summary.Results, r)
		mu.Unlock()
	}

	for _, op := range plan {
		if op.Action == models.ActionSkip {
			record(models.Result{
				Target: op.Target,
				Action: op.Action,
				Kind:   models.ResultSkipped,
				Reason: op.SkipReason,
			})
			continue
		}

		// Stop issuing new operations once the invocation is canceled.
		if err := ctx.Err(); err != nil {
			record(models.Result{
				Target: op.Target,
				Action: op.Action,
				Kind:   models.ResultFailed,
				Reason: "canceled before dispatch",
				Err:    err,
			})
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(op models.Operation) {
			defer func() {
				<-sem
				wg.Done()
			}()
			record(execute(ctx, op, reg))
		}(op)
	}

	wg.Wait()
	summary.Sort()
	return summary
}

func execute(ctx context.Context, op models.Operation, reg registry.Registry) models.Result {
	var err error
	switch op.Action {
	case models.ActionCreate:
		err = reg.Create(ctx, op.Record)
	case models.ActionDelete:
		err = reg.Delete(ctx, op.Target)
		if errors.Is(err, registry.ErrNotFound) {
			// The entry vanished between planning and execution. Delete is
			// idempotent, so that is the state we wanted.
			return models.Result{
				Target: op.Target,
				Action: op.Action,
				Kind:   models.ResultSkipped,
				Reason: "not silenced",
			}
		}
	}

	if err != nil {
		slog.Debug("registry operation failed",
			slog.String("action", string(op.Action)),
			slog.String("target", op.Target.String()),
			slog.String("error", err.Error()),
		)
		return models.Result{
			Target: op.Target,
			Action: op.Action,
			Kind:   models.ResultFailed,
			Reason: registry.Kind(err),
			Err:    err,
		}
	}

	return models.Result{
		Target: op.Target,
		Action: op.Action,
		Kind:   models.ResultSuccess,
	}
}
