package reporter

import (
	"strings"
	"testing"
	"time"

	"github.com/shush-sh/shush/internal/models"
)

func sampleSummary() *models.Summary {
	return &models.Summary{
		Results: []models.Result{
			{Target: models.ClientTarget("db-01", "*"), Action: models.ActionCreate, Kind: models.ResultSuccess},
			{Target: models.ClientTarget("db-02", "*"), Action: models.ActionSkip, Kind: models.ResultSkipped, Reason: "already silenced"},
			{Target: models.ClientTarget("web-01", "*"), Action: models.ActionCreate, Kind: models.ResultFailed, Reason: "unavailable"},
		},
	}
}

func TestWriteSummarySections(t *testing.T) {
	var b strings.Builder
	if err := WriteSummary(&b, sampleSummary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"Succeeded (1)",
		"Skipped (1)",
		"Failed (1)",
		"client db-01 (all checks)",
		"already silenced",
		"unavailable",
		"1 succeeded, 1 skipped, 1 failed",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, textANSIBold) {
		t.Fatal("ANSI codes must not leak into non-terminal writers")
	}
}

func TestWriteRecordsIndefiniteIsLoud(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(10 * time.Minute)

	records := []models.SilenceRecord{
		{Target: models.SubscriptionTarget("db", "disk"), ExpiresAt: &expires, Reason: "maintenance", Creator: "oncall"},
		{Target: models.ClientTarget("web-01", "*")},
	}

	var b strings.Builder
	if err := WriteRecords(&b, records, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := b.String()

	if !strings.Contains(out, "expires in 10m0s") {
		t.Fatalf("expected relative expiry, got:\n%s", out)
	}
	if !strings.Contains(out, "expires: never") {
		t.Fatalf("indefinite silence must render distinctly, got:\n%s", out)
	}
	if !strings.Contains(out, `reason="maintenance"`) {
		t.Fatalf("expected reason, got:\n%s", out)
	}
}

func TestWriteRecordsEmpty(t *testing.T) {
	var b strings.Builder
	if err := WriteRecords(&b, nil, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(b.String(), "No active silences") {
		t.Fatalf("unexpected output: %s", b.String())
	}
}

func TestWritePlan(t *testing.T) {
	now := time.Now()
	rec, err := models.BuildRecord(models.ClientTarget("web-01", "cpu"), models.RecordSpec{TTL: time.Hour}, now)
	if err != nil {
		t.Fatalf("failed to build record: %v", err)
	}

	plan := models.OperationPlan{
		{Action: models.ActionCreate, Target: rec.Target, Record: rec},
		{Action: models.ActionDelete, Target: models.SubscriptionTarget("db", "*")},
		{Action: models.ActionSkip, Target: models.ClientTarget("db-02", "*"), SkipReason: "not silenced"},
	}

	var b strings.Builder
	if err := WritePlan(&b, plan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := b.String()

	if !strings.Contains(out, "Plan (1 creates, 1 deletes, 1 skips)") {
		t.Fatalf("missing plan header:\n%s", out)
	}
	for _, want := range []string{"create:", "delete:", "skip:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
