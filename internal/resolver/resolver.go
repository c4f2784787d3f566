// Package resolver expands user-supplied selectors into concrete silence
// targets against an inventory snapshot.
package resolver

import (
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/shush-sh/shush/internal/models"
)

// ResolutionError reports a selector that matched nothing in strict mode.
type ResolutionError struct {
	Selector string
	Msg      string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("selector %q: %s", e.Selector, e.Msg)
}

// Options control strictness and the fleet-wide guard.
type Options struct {
	// Strict turns empty expansions and unmapped node IDs into errors
	// instead of warnings.
	Strict bool
	// AllowFleet permits the one deliberately dangerous combination:
	// a match-everything selector together with all checks.
	AllowFleet bool
	// Checks are the check names or globs the silence applies to.
	// Empty means every check on each resolved target.
	Checks []string
}

// Resolve expands selectors into a deduplicated, sorted set of targets.
//
// Exact client and subscription names pass through unvalidated: silencing a
// client that has not registered yet is legal and common. Globs expand
// strictly against the inventory. Node selectors always go through the
// inventory, since only it knows the instance-to-client mapping.
func Resolve(selectors []Selector, inv *models.InventorySnapshot, opts Options) ([]models.Target, error) {
	if len(selectors) == 0 {
		return nil, &models.ValidationError{Msg: "at least one client, subscription or node selector is required"}
	}

	opts.Checks = cleanChecks(opts.Checks)
	if err := guardFleetWide(selectors, opts); err != nil {
		return nil, err
	}

	checks, err := expandChecks(opts.Checks, inv, opts.Strict)
	if err != nil {
		return nil, err
	}

	seen := make(map[models.Target]struct{})
	var targets []models.Target
	add := func(t models.Target) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		targets = append(targets, t)
	}

	for _, sel := range selectors {
		names, kind, err := expandSelector(sel, inv, opts.Strict)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			for _, check := range checks {
				if kind == models.KindClient {
					add(models.ClientTarget(name, check))
				} else {
					add(models.SubscriptionTarget(name, check))
				}
			}
		}
	}

	sort.Slice(targets, func(i, j int) bool {
		return targets[i].Compare(targets[j]) < 0
	})
	return targets, nil
}

// guardFleetWide rejects the all-targets x all-checks product unless the
// caller asked for it in so many words. It must never be assembled from two
// partial wildcards by accident.
func guardFleetWide(selectors []Selector, opts Options) error {
	if opts.AllowFleet || len(opts.Checks) > 0 {
		return nil
	}
	for _, sel := range selectors {
		if strings.TrimSpace(sel.Pattern) == models.CheckWildcard {
			return &models.ValidationError{
				Msg: fmt.Sprintf(
					"selector %q with no checks would silence every check on every %s; pass the fleet flag if that is really the intent",
					sel.Pattern, sel.Kind,
				),
			}
		}
	}
	return nil
}

func expandSelector(sel Selector, inv *models.InventorySnapshot, strict bool) ([]string, models.TargetKind, error) {
	pattern := strings.TrimSpace(sel.Pattern)

	switch sel.Kind {
	case SelectClient:
		if !IsGlob(pattern) {
			return []string{pattern}, models.KindClient, nil
		}
		names, err := expandGlob(pattern, inv.ClientNames(), "clients", strict)
		return names, models.KindClient, err

	case SelectSubscription:
		if !IsGlob(pattern) {
			return []string{pattern}, models.KindSubscription, nil
		}
		names, err := expandGlob(pattern, inv.SubscriptionNames(), "subscriptions", strict)
		return names, models.KindSubscription, err

	case SelectNode:
		return expandNodes(pattern, inv, strict)

	default:
		return nil, "", fmt.Errorf("unknown selector kind %q", sel.Kind)
	}
}

// expandNodes maps instance IDs to registered client names. Unlike client
// names, instance IDs are meaningless to the registry, so they always go
// through the inventory.
func expandNodes(pattern string, inv *models.InventorySnapshot, strict bool) ([]string, models.TargetKind, error) {
	ids := []string{pattern}
	if IsGlob(pattern) {
		var all []string
		for _, c := range inv.Clients {
			if c.InstanceID != "" {
				all = append(all, c.InstanceID)
			}
		}
		expanded, err := expandGlob(pattern, all, "instance IDs", strict)
		if err != nil {
			return nil, models.KindClient, err
		}
		ids = expanded
	}

	var names []string
	for _, id := range ids {
		name, ok := inv.ClientByInstanceID(id)
		if !ok {
			if strict {
				return nil, models.KindClient, &ResolutionError{
					Selector: id,
					Msg:      "instance ID is not associated with any registered client",
				}
			}
			slog.Warn("instance ID is not associated with any registered client; "+
				"a recently provisioned instance may not have registered yet",
				slog.String("instance_id", id))
			continue
		}
		names = append(names, name)
	}
	return names, models.KindClient, nil
}

func expandGlob(pattern string, candidates []string, what string, strict bool) ([]string, error) {
	var matched []string
	for _, name := range candidates {
		ok, err := path.Match(pattern, name)
		if err != nil {
			return nil, &models.ValidationError{Msg: fmt.Sprintf("malformed pattern %q: %v", pattern, err)}
		}
		if ok {
			matched = append(matched, name)
		}
	}

	if len(matched) == 0 {
		if strict {
			return nil, &ResolutionError{
				Selector: pattern,
				Msg:      fmt.Sprintf("matched no %s in the inventory", what),
			}
		}
		slog.Warn("selector matched nothing in the inventory",
			slog.String("pattern", pattern),
			slog.String("dimension", what))
	}
	return matched, nil
}

func cleanChecks(checks []string) []string {
	var out []string
	for _, check := range checks {
		for _, part := range strings.Split(check, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func expandChecks(checks []string, inv *models.InventorySnapshot, strict bool) ([]string, error) {
	if len(checks) == 0 {
		return []string{models.CheckWildcard}, nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, check := range checks {
		names := []string{check}
		if IsGlob(check) && check != models.CheckWildcard {
			expanded, err := expandGlob(check, inv.Checks, "checks", strict)
			if err != nil {
				return nil, err
			}
			names = expanded
		}
		for _, name := range names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}

	// All globs expanded empty: no targets, never a widening to all checks.
	return out, nil
}
