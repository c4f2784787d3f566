// Package reconcile computes and executes the minimal set of registry
// operations needed to reach the desired silence state.
package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/shush-sh/shush/internal/models"
)

// Intent is the requested action for planning.
type Intent string

const (
	IntentSilence Intent = "silence"
	IntentClear   Intent = "clear"
)

// expirySlack is how far two expiry times may drift while still counting as
// the same silence. Re-running the same command moments later must plan a
// Skip, not a conflict.
const expirySlack = time.Minute

// PlanOptions carry the desired record semantics and the conflict policy.
type PlanOptions struct {
	Spec models.RecordSpec
	// Overwrite replaces an unexpired record whose reason or ttl differ.
	// Without it the conflict is surfaced as a skip, never applied silently.
	Overwrite bool
	Now       time.Time
}

// Plan computes the operations for intent over targets, diffed against the
// current registry state. Planning is pure: no I/O, so dry runs and tests
// need no live registry. Targets are assumed deduplicated by the resolver;
// a target is never planned twice.
func Plan(intent Intent, targets []models.Target, current []models.SilenceRecord, opts PlanOptions) (models.OperationPlan, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	existing := indexByTarget(current, now)

	var plan models.OperationPlan
	for _, target := range targets {
		switch intent {
		case IntentSilence:
			op, err := planSilence(target, existing, opts, now)
			if err != nil {
				return nil, err
			}
			plan = append(plan, op)
		case IntentClear:
			plan = append(plan, planClear(target, existing))
		default:
			return nil, fmt.Errorf("unknown intent %q", intent)
		}
	}
	return plan, nil
}

func planSilence(target models.Target, existing map[models.Target]models.SilenceRecord, opts PlanOptions, now time.Time) (models.Operation, error) {
	desired, err := models.BuildRecord(target, opts.Spec, now)
	if err != nil {
		return models.Operation{}, err
	}

	prev, ok := existing[target]
	if !ok {
		return models.Operation{Action: models.ActionCreate, Target: target, Record: desired}, nil
	}

	if sameSemantics(prev, desired) {
		return models.Operation{
			Action:     models.ActionSkip,
			Target:     target,
			SkipReason: "already silenced",
		}, nil
	}

	if opts.Overwrite {
		return models.Operation{Action: models.ActionCreate, Target: target, Record: desired}, nil
	}

	return models.Operation{
		Action:     models.ActionSkip,
		Target:     target,
		SkipReason: fmt.Sprintf("already silenced with different ttl or reason by %s; use overwrite to replace", creatorOrUnknown(prev)),
	}, nil
}

func planClear(target models.Target, existing map[models.Target]models.SilenceRecord) models.Operation {
	if _, ok := existing[target]; !ok {
		return models.Operation{
			Action:     models.ActionSkip,
			Target:     target,
			SkipReason: "not silenced",
		}
	}
	return models.Operation{Action: models.ActionDelete, Target: target}
}

// FilterCurrent returns the unexpired records matching targets, or all of
// them when no targets are given, sorted for deterministic output. A target
// selecting all checks matches every record on that client or subscription,
// so listing a client shows its per-check silences too.
func FilterCurrent(targets []models.Target, current []models.SilenceRecord, now time.Time) []models.SilenceRecord {
	if now.IsZero() {
		now = time.Now()
	}

	var out []models.SilenceRecord
	for _, rec := range current {
		if rec.Expired(now) {
			continue
		}
		if len(targets) > 0 && !anyTargetCovers(targets, rec.Target) {
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Target.Compare(out[j].Target) < 0
	})
	return out
}

func anyTargetCovers(targets []models.Target, rt models.Target) bool {
	for _, t := range targets {
		if t.Kind != rt.Kind || t.Name != rt.Name {
			continue
		}
		if t.AllChecks() || t.Check == rt.Check {
			return true
		}
	}
	return false
}

func indexByTarget(current []models.SilenceRecord, now time.Time) map[models.Target]models.SilenceRecord {
	index := make(map[models.Target]models.SilenceRecord, len(current))
	for _, rec := range current {
		// Stale entries are logically absent.
		if rec.Expired(now) {
			continue
		}
		index[rec.Target] = rec
	}
	return index
}

// sameSemantics reports whether an existing record already says what the
// desired one would. Expiry times within expirySlack count as equal.
func sameSemantics(existing, desired models.SilenceRecord) bool {
	if existing.Reason != desired.Reason {
		return false
	}
	if existing.ExpireOnResolve != desired.ExpireOnResolve {
		return false
	}
	if existing.Indefinite() != desired.Indefinite() {
		return false
	}
	if existing.Indefinite() {
		return true
	}
	drift := existing.ExpiresAt.Sub(*desired.ExpiresAt)
	if drift < 0 {
		drift = -drift
	}
	return drift <= expirySlack
}

func creatorOrUnknown(rec models.SilenceRecord) string {
	if rec.Creator == "" {
		return "unknown creator"
	}
	return rec.Creator
}
