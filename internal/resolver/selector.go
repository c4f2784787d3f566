package resolver

import "strings"

// SelectorKind says which dimension of the inventory a selector addresses.
type SelectorKind string

const (
	// SelectClient addresses clients by name.
	SelectClient SelectorKind = "client"
	// SelectSubscription addresses subscriptions by name.
	SelectSubscription SelectorKind = "subscription"
	// SelectNode addresses clients indirectly by cloud instance ID.
	SelectNode SelectorKind = "node"
)

// Selector is one user-supplied pattern: an exact name or a glob.
type Selector struct {
	Kind    SelectorKind
	Pattern string
}

// Selectors builds a selector list of one kind from comma-separated or
// repeated flag values.
func Selectors(kind SelectorKind, values []string) []Selector {
	var out []Selector
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			out = append(out, Selector{Kind: kind, Pattern: part})
		}
	}
	return out
}

// IsGlob reports whether pattern contains glob metacharacters and therefore
// must be expanded against the inventory rather than passed through.
func IsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}
