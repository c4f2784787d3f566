package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shush-sh/shush/internal/models"
)

const (
	textANSIReset = "\x1b[0m"
	textANSIBold  = "\x1b[1m"
)

// WriteSummary writes the per-target outcome of an invocation to out,
// grouped into Succeeded, Skipped and Failed sections.
func WriteSummary(out io.Writer, summary *models.Summary) error {
	if summary == nil {
		return fmt.Errorf("summary is nil")
	}
	_, err := io.WriteString(out, renderSummary(summary, supportsANSI(out)))
	return err
}

func renderSummary(summary *models.Summary, useANSI bool) string {
	var b strings.Builder

	sections := []struct {
		title string
		kind  models.ResultKind
	}{
		{title: "Succeeded", kind: models.ResultSuccess},
		{title: "Skipped", kind: models.ResultSkipped},
		{title: "Failed", kind: models.ResultFailed},
	}

	for _, section := range sections {
		count := summary.Count(section.kind)
		if count == 0 {
			continue
		}
		writeTextSectionHeader(&b, fmt.Sprintf("%s (%d)", section.title, count), useANSI)
		for _, r := range summary.Results {
			if r.Kind != section.kind {
				continue
			}
			switch {
			case r.Reason != "":
				fmt.Fprintf(&b, "  %s: %s [%s]\n", r.Action, r.Target, r.Reason)
			default:
				fmt.Fprintf(&b, "  %s: %s\n", r.Action, r.Target)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%d succeeded, %d skipped, %d failed\n",
		summary.Count(models.ResultSuccess),
		summary.Count(models.ResultSkipped),
		summary.Count(models.ResultFailed))

	return b.String()
}

// WritePlan writes a dry-run rendering of the plan without executing it.
func WritePlan(out io.Writer, plan models.OperationPlan) error {
	var b strings.Builder

	writeTextSectionHeader(&b, fmt.Sprintf("Plan (%d creates, %d deletes, %d skips)",
		plan.Count(models.ActionCreate),
		plan.Count(models.ActionDelete),
		plan.Count(models.ActionSkip)), supportsANSI(out))

	for _, op := range plan {
		switch op.Action {
		case models.ActionSkip:
			fmt.Fprintf(&b, "  skip:   %s [%s]\n", op.Target, op.SkipReason)
		case models.ActionCreate:
			fmt.Fprintf(&b, "  create: %s %s\n", op.Target, describeExpiry(op.Record, time.Now()))
		case models.ActionDelete:
			fmt.Fprintf(&b, "  delete: %s\n", op.Target)
		}
	}

	_, err := io.WriteString(out, b.String())
	return err
}

// WriteRecords writes the current silence entries, one per line.
func WriteRecords(out io.Writer, records []models.SilenceRecord, now time.Time) error {
	var b strings.Builder

	if len(records) == 0 {
		b.WriteString("No active silences\n")
		_, err := io.WriteString(out, b.String())
		return err
	}

	writeTextSectionHeader(&b, fmt.Sprintf("Active silences (%d)", len(records)), supportsANSI(out))
	for _, rec := range records {
		line := fmt.Sprintf("  %s  %s", rec.Target, describeExpiry(rec, now))
		if rec.Reason != "" {
			line += fmt.Sprintf("  reason=%q", rec.Reason)
		}
		if rec.Creator != "" {
			line += "  by=" + rec.Creator
		}
		b.WriteString(line + "\n")
	}

	_, err := io.WriteString(out, b.String())
	return err
}

func describeExpiry(rec models.SilenceRecord, now time.Time) string {
	var desc string
	if rec.Indefinite() {
		// Deliberately loud: an indefinite silence stays until cleared.
		desc = "expires: never"
	} else {
		desc = "expires in " + rec.Remaining(now).Round(time.Second).String()
	}
	if rec.ExpireOnResolve {
		desc += " (or on resolve)"
	}
	return desc
}

func writeTextSectionHeader(b *strings.Builder, title string, useANSI bool) {
	header := title
	if useANSI {
		header = textANSIBold + title + textANSIReset
	}
	fmt.Fprintf(b, "%s\n", header)
	fmt.Fprintf(b, "%s\n", strings.Repeat("-", len(title)))
}

func supportsANSI(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}

	info, err := file.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}
