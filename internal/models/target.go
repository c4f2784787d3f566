package models

import (
	"fmt"
	"strings"
)

// CheckWildcard is the sentinel meaning "every check" on a target.
// It is also the literal the registry wire format uses.
const CheckWildcard = "*"

// TargetKind distinguishes client-scoped targets from subscription-scoped ones.
type TargetKind string

const (
	KindClient       TargetKind = "client"
	KindSubscription TargetKind = "subscription"
)

// Target is the (client-or-subscription, check) pair a silence applies to.
// Targets are value objects: immutable once built, compared by equality.
type Target struct {
	Kind  TargetKind `json:"kind"`
	Name  string     `json:"name"`
	Check string     `json:"check"`
}

// ClientTarget builds a target scoped to a single client.
// An empty check means every check on the client.
func ClientTarget(name, check string) Target {
	return Target{Kind: KindClient, Name: name, Check: normalizeCheck(check)}
}

// SubscriptionTarget builds a target scoped to a subscription.
func SubscriptionTarget(name, check string) Target {
	return Target{Kind: KindSubscription, Name: name, Check: normalizeCheck(check)}
}

func normalizeCheck(check string) string {
	check = strings.TrimSpace(check)
	if check == "" {
		return CheckWildcard
	}
	return check
}

// Subscription returns the wire-format subscription for the target.
// Client targets map to the implicit "client:NAME" subscription.
func (t Target) Subscription() string {
	if t.Kind == KindClient {
		return "client:" + t.Name
	}
	return t.Name
}

// ID is the deterministic registry identifier for the target. Re-silencing
// the same target always addresses the same registry entry.
func (t Target) ID() string {
	return t.Subscription() + ":" + t.Check
}

// AllChecks reports whether the target covers every check.
func (t Target) AllChecks() bool {
	return t.Check == CheckWildcard
}

func (t Target) String() string {
	if t.AllChecks() {
		return fmt.Sprintf("%s %s (all checks)", t.Kind, t.Name)
	}
	return fmt.Sprintf("%s %s check %s", t.Kind, t.Name, t.Check)
}

// Compare orders targets by subscription then check, for deterministic output.
func (t Target) Compare(o Target) int {
	if c := strings.Compare(t.Subscription(), o.Subscription()); c != 0 {
		return c
	}
	return strings.Compare(t.Check, o.Check)
}
