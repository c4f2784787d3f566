package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shush-sh/shush/internal/models"
)

// jsonResult mirrors models.Result with the error flattened to its kind, so
// machine consumers get a stable shape.
type jsonResult struct {
	Target models.Target     `json:"target"`
	Action models.Action     `json:"action"`
	Kind   models.ResultKind `json:"kind"`
	Reason string            `json:"reason,omitempty"`
	Error  string            `json:"error,omitempty"`
}

type jsonSummary struct {
	Succeeded int          `json:"succeeded"`
	Skipped   int          `json:"skipped"`
	Failed    int          `json:"failed"`
	Results   []jsonResult `json:"results"`
}

// WriteSummaryJSON writes the invocation summary to out as indented JSON.
func WriteSummaryJSON(out io.Writer, summary *models.Summary) error {
	if summary == nil {
		return fmt.Errorf("summary is nil")
	}

	doc := jsonSummary{
		Succeeded: summary.Count(models.ResultSuccess),
		Skipped:   summary.Count(models.ResultSkipped),
		Failed:    summary.Count(models.ResultFailed),
		Results:   make([]jsonResult, 0, len(summary.Results)),
	}
	for _, r := range summary.Results {
		jr := jsonResult{
			Target: r.Target,
			Action: r.Action,
			Kind:   r.Kind,
			Reason: r.Reason,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		doc.Results = append(doc.Results, jr)
	}

	return writeJSON(out, doc)
}

type jsonRecord struct {
	Target          models.Target `json:"target"`
	ID              string        `json:"id"`
	ExpiresAt       *time.Time    `json:"expires_at,omitempty"`
	ExpireOnResolve bool          `json:"expire_on_resolve,omitempty"`
	Reason          string        `json:"reason,omitempty"`
	Creator         string        `json:"creator,omitempty"`
}

// WriteRecordsJSON writes the current silence entries to out as indented JSON.
func WriteRecordsJSON(out io.Writer, records []models.SilenceRecord) error {
	docs := make([]jsonRecord, 0, len(records))
	for _, rec := range records {
		docs = append(docs, jsonRecord{
			Target:          rec.Target,
			ID:              rec.ID(),
			ExpiresAt:       rec.ExpiresAt,
			ExpireOnResolve: rec.ExpireOnResolve,
			Reason:          rec.Reason,
			Creator:         rec.Creator,
		})
	}
	return writeJSON(out, docs)
}

// WritePlanJSON writes a dry-run plan to out as indented JSON.
func WritePlanJSON(out io.Writer, plan models.OperationPlan) error {
	return writeJSON(out, plan)
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	data = append(data, '\n')
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}
