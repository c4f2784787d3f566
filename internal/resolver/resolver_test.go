package resolver

import (
	"errors"
	"testing"

	"github.com/shush-sh/shush/internal/models"
)

func testInventory() *models.InventorySnapshot {
	return &models.InventorySnapshot{
		Clients: []models.ClientInfo{
			{Name: "web-01", InstanceID: "i-web01", Subscriptions: []string{"web", "linux"}},
			{Name: "db-01", InstanceID: "i-db01", Subscriptions: []string{"db", "linux"}},
			{Name: "db-02", Subscriptions: []string{"db", "linux"}},
		},
		Checks: []string{"cpu", "disk", "disk-inodes", "memory"},
	}
}

func TestResolveExactAndGlob(t *testing.T) {
	selectors := []Selector{
		{Kind: SelectClient, Pattern: "web-01"},
		{Kind: SelectClient, Pattern: "db-*"},
	}

	targets, err := Resolve(selectors, testInventory(), Options{Checks: []string{"cpu"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []models.Target{
		models.ClientTarget("db-01", "cpu"),
		models.ClientTarget("db-02", "cpu"),
		models.ClientTarget("web-01", "cpu"),
	}
	if len(targets) != len(want) {
		t.Fatalf("expected %d targets, got %d: %v", len(want), len(targets), targets)
	}
	for i := range want {
		if targets[i] != want[i] {
			t.Fatalf("at %d expected %v, got %v", i, want[i], targets[i])
		}
	}
}

func TestResolveExactPassThroughUnvalidated(t *testing.T) {
	// Silencing a client the inventory has never seen is legal: it may be
	// about to register.
	selectors := []Selector{{Kind: SelectClient, Pattern: "brand-new-host"}}

	targets, err := Resolve(selectors, testInventory(), Options{Strict: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(targets) != 1 || targets[0] != models.ClientTarget("brand-new-host", "*") {
		t.Fatalf("unexpected targets: %v", targets)
	}
}

func TestResolveDedupOverlappingSelectors(t *testing.T) {
	selectors := []Selector{
		{Kind: SelectClient, Pattern: "db-01"},
		{Kind: SelectClient, Pattern: "db-*"},
	}

	targets, err := Resolve(selectors, testInventory(), Options{Checks: []string{"disk"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("expected overlapping selectors to dedup to 2 targets, got %d: %v", len(targets), targets)
	}
}

func TestResolveEmptyGlobStrictVsLenient(t *testing.T) {
	selectors := []Selector{{Kind: SelectClient, Pattern: "cache-*"}}

	_, err := Resolve(selectors, testInventory(), Options{Strict: true})
	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResolutionError in strict mode, got %v", err)
	}

	targets, err := Resolve(selectors, testInventory(), Options{Strict: false})
	if err != nil {
		t.Fatalf("lenient mode should not error, got %v", err)
	}
	if len(targets) != 0 {
		t.Fatalf("expected no targets, got %v", targets)
	}
}

func TestResolveGlobSubsetOfInventory(t *testing.T) {
	selectors := []Selector{{Kind: SelectSubscription, Pattern: "*"}}

	targets, err := Resolve(selectors, testInventory(), Options{Checks: []string{"cpu"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	known := make(map[string]struct{})
	for _, sub := range testInventory().SubscriptionNames() {
		known[sub] = struct{}{}
	}
	for _, target := range targets {
		if _, ok := known[target.Name]; !ok {
			t.Fatalf("target %v not advertised by the inventory", target)
		}
	}
}

func TestResolveFleetWideGuard(t *testing.T) {
	selectors := []Selector{{Kind: SelectSubscription, Pattern: "*"}}
	inv := testInventory()

	// Match-everything selector with all checks must be refused by default.
	_, err := Resolve(selectors, inv, Options{})
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for fleet-wide product, got %v", err)
	}

	// Explicit fleet flag permits it.
	if _, err := Resolve(selectors, inv, Options{AllowFleet: true}); err != nil {
		t.Fatalf("fleet flag should permit the product, got %v", err)
	}

	// Both dimensions requested in so many words permits it too.
	if _, err := Resolve(selectors, inv, Options{Checks: []string{"*"}}); err != nil {
		t.Fatalf("explicit check wildcard should permit the product, got %v", err)
	}

	// Whitespace in checks must not sneak past the guard.
	_, err = Resolve(selectors, inv, Options{Checks: []string{"  "}})
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for blank checks, got %v", err)
	}
}

func TestResolveNodeSelectors(t *testing.T) {
	selectors := []Selector{{Kind: SelectNode, Pattern: "i-web01"}}

	targets, err := Resolve(selectors, testInventory(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(targets) != 1 || targets[0] != models.ClientTarget("web-01", "*") {
		t.Fatalf("unexpected targets: %v", targets)
	}
}

func TestResolveUnmappedNode(t *testing.T) {
	selectors := []Selector{{Kind: SelectNode, Pattern: "i-unknown"}}
	inv := testInventory()

	// Lenient: warn and continue with nothing.
	targets, err := Resolve(selectors, inv, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(targets) != 0 {
		t.Fatalf("expected no targets, got %v", targets)
	}

	// Strict: error out before any write.
	_, err = Resolve(selectors, inv, Options{Strict: true})
	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
}

func TestResolveCheckGlobExpansion(t *testing.T) {
	selectors := []Selector{{Kind: SelectClient, Pattern: "db-01"}}

	targets, err := Resolve(selectors, testInventory(), Options{Checks: []string{"disk*"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("expected disk and disk-inodes targets, got %v", targets)
	}
	for _, target := range targets {
		if target.AllChecks() {
			t.Fatalf("check glob must never widen to all checks: %v", target)
		}
	}
}

func TestSelectorsSplitsCommaLists(t *testing.T) {
	sels := Selectors(SelectClient, []string{"a,b", " c "})
	if len(sels) != 3 {
		t.Fatalf("expected 3 selectors, got %v", sels)
	}
	if sels[2].Pattern != "c" {
		t.Fatalf("expected trimmed pattern, got %q", sels[2].Pattern)
	}
}

func TestIsGlob(t *testing.T) {
	cases := []struct {
		pattern string
		want    bool
	}{
		{pattern: "web-01", want: false},
		{pattern: "web-*", want: true},
		{pattern: "db-0?", want: true},
		{pattern: "db-[12]", want: true},
	}
	for _, tc := range cases {
		if got := IsGlob(tc.pattern); got != tc.want {
			t.Fatalf("IsGlob(%q) = %v, want %v", tc.pattern, got, tc.want)
		}
	}
}
