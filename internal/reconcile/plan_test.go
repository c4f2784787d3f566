package reconcile

import (
	"errors"
	"testing"
	"time"

	"github.com/shush-sh/shush/internal/models"
)

var planNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func existingRecord(t *testing.T, target models.Target, spec models.RecordSpec) models.SilenceRecord {
	t.Helper()
	rec, err := models.BuildRecord(target, spec, planNow)
	if err != nil {
		t.Fatalf("failed to build record: %v", err)
	}
	return rec
}

func TestPlanSilenceCreatesForNewTargets(t *testing.T) {
	targets := []models.Target{
		models.ClientTarget("db-01", "*"),
		models.ClientTarget("db-02", "*"),
		models.ClientTarget("web-01", "*"),
	}

	plan, err := Plan(IntentSilence, targets, nil, PlanOptions{
		Spec: models.RecordSpec{TTL: 10 * time.Minute, Reason: "maintenance"},
		Now:  planNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := plan.Count(models.ActionCreate); got != 3 {
		t.Fatalf("expected 3 creates, got %d", got)
	}
	for _, op := range plan {
		if op.Record.Reason != "maintenance" {
			t.Fatalf("expected reason on planned record, got %q", op.Record.Reason)
		}
	}
}

func TestPlanSilenceSkipsAlreadySilenced(t *testing.T) {
	target := models.ClientTarget("web-01", "cpu")
	spec := models.RecordSpec{TTL: 10 * time.Minute, Reason: "maintenance"}
	current := []models.SilenceRecord{existingRecord(t, target, spec)}

	plan, err := Plan(IntentSilence, []models.Target{target}, current, PlanOptions{Spec: spec, Now: planNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan) != 1 || plan[0].Action != models.ActionSkip {
		t.Fatalf("expected a single skip, got %v", plan)
	}
	if plan[0].SkipReason != "already silenced" {
		t.Fatalf("unexpected skip reason %q", plan[0].SkipReason)
	}
}

func TestPlanSilenceExpirySlack(t *testing.T) {
	target := models.ClientTarget("web-01", "cpu")
	spec := models.RecordSpec{TTL: 10 * time.Minute, Reason: "maintenance"}

	// The existing record was created 30 seconds ago with the same ttl, so
	// its expiry trails the desired one slightly. Still the same silence.
	earlier, err := models.BuildRecord(target, spec, planNow.Add(-30*time.Second))
	if err != nil {
		t.Fatalf("failed to build record: %v", err)
	}

	plan, err := Plan(IntentSilence, []models.Target{target}, []models.SilenceRecord{earlier}, PlanOptions{Spec: spec, Now: planNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan[0].Action != models.ActionSkip {
		t.Fatalf("expected skip within expiry slack, got %v", plan[0])
	}
}

func TestPlanSilenceConflictSurfaced(t *testing.T) {
	target := models.ClientTarget("web-01", "cpu")
	current := []models.SilenceRecord{
		existingRecord(t, target, models.RecordSpec{TTL: time.Hour, Reason: "deploy", Creator: "alex"}),
	}
	opts := PlanOptions{
		Spec: models.RecordSpec{TTL: 10 * time.Minute, Reason: "maintenance"},
		Now:  planNow,
	}

	plan, err := Plan(IntentSilence, []models.Target{target}, current, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan[0].Action != models.ActionSkip {
		t.Fatalf("expected conflict to surface as skip, got %v", plan[0])
	}
	if plan[0].SkipReason == "already silenced" {
		t.Fatal("conflict skip must be distinguishable from idempotent skip")
	}

	opts.Overwrite = true
	plan, err = Plan(IntentSilence, []models.Target{target}, current, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan[0].Action != models.ActionCreate {
		t.Fatalf("expected overwrite to plan a create, got %v", plan[0])
	}
}

func TestPlanSilenceIgnoresExpiredRecord(t *testing.T) {
	target := models.ClientTarget("web-01", "cpu")
	stale := existingRecord(t, target, models.RecordSpec{TTL: time.Minute, Reason: "old"})

	plan, err := Plan(IntentSilence, []models.Target{target}, []models.SilenceRecord{stale}, PlanOptions{
		Spec: models.RecordSpec{TTL: 10 * time.Minute, Reason: "old"},
		Now:  planNow.Add(5 * time.Minute),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan[0].Action != models.ActionCreate {
		t.Fatalf("expired record must be treated as absent, got %v", plan[0])
	}
}

func TestPlanSilenceInvalidTTL(t *testing.T) {
	_, err := Plan(IntentSilence, []models.Target{models.ClientTarget("a", "b")}, nil, PlanOptions{
		Spec: models.RecordSpec{TTL: -time.Minute},
		Now:  planNow,
	})
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestPlanClear(t *testing.T) {
	silenced := models.ClientTarget("web-01", "cpu")
	never := models.ClientTarget("db-01", "cpu")
	current := []models.SilenceRecord{
		existingRecord(t, silenced, models.RecordSpec{TTL: time.Hour}),
	}

	plan, err := Plan(IntentClear, []models.Target{silenced, never}, current, PlanOptions{Now: planNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan[0].Action != models.ActionDelete {
		t.Fatalf("expected delete for silenced target, got %v", plan[0])
	}
	if plan[1].Action != models.ActionSkip || plan[1].SkipReason != "not silenced" {
		t.Fatalf("clearing a never-silenced target must skip, got %v", plan[1])
	}
}

func TestFilterCurrent(t *testing.T) {
	web := models.ClientTarget("web-01", "cpu")
	db := models.SubscriptionTarget("db", "disk")
	stale := models.ClientTarget("old", "cpu")

	current := []models.SilenceRecord{
		existingRecord(t, db, models.RecordSpec{TTL: time.Hour}),
		existingRecord(t, web, models.RecordSpec{TTL: time.Hour}),
		existingRecord(t, stale, models.RecordSpec{TTL: time.Second}),
	}
	now := planNow.Add(time.Minute)

	all := FilterCurrent(nil, current, now)
	if len(all) != 2 {
		t.Fatalf("expected 2 unexpired records, got %d", len(all))
	}
	if all[0].Target != web || all[1].Target != db {
		t.Fatalf("expected sorted output, got %v", all)
	}

	only := FilterCurrent([]models.Target{db}, current, now)
	if len(only) != 1 || only[0].Target != db {
		t.Fatalf("expected only the db record, got %v", only)
	}
}

func TestFilterCurrentAllChecksCoversPerCheckRecords(t *testing.T) {
	cpu := models.ClientTarget("web-01", "cpu")
	disk := models.ClientTarget("web-01", "disk")
	other := models.ClientTarget("web-02", "cpu")

	current := []models.SilenceRecord{
		existingRecord(t, cpu, models.RecordSpec{TTL: time.Hour}),
		existingRecord(t, disk, models.RecordSpec{TTL: time.Hour}),
		existingRecord(t, other, models.RecordSpec{TTL: time.Hour}),
	}
	now := planNow.Add(time.Minute)

	// Listing a client without naming checks shows its per-check silences.
	got := FilterCurrent([]models.Target{models.ClientTarget("web-01", "")}, current, now)
	if len(got) != 2 {
		t.Fatalf("expected both web-01 records, got %d: %v", len(got), got)
	}
	if got[0].Target != cpu || got[1].Target != disk {
		t.Fatalf("expected web-01 cpu and disk records, got %v", got)
	}

	// A concrete check still matches exactly.
	got = FilterCurrent([]models.Target{cpu}, current, now)
	if len(got) != 1 || got[0].Target != cpu {
		t.Fatalf("expected only the cpu record, got %v", got)
	}

	// Kind must match: a subscription named like the client covers nothing.
	got = FilterCurrent([]models.Target{models.SubscriptionTarget("web-01", "")}, current, now)
	if len(got) != 0 {
		t.Fatalf("expected no records for subscription web-01, got %v", got)
	}
}
