package models

import "sort"

// ResultKind classifies the outcome of one executed operation.
type ResultKind string

const (
	ResultSuccess ResultKind = "success"
	ResultSkipped ResultKind = "skipped"
	ResultFailed  ResultKind = "failed"
)

// Result is the per-target outcome of plan execution. One target's failure
// never masks another target's success.
type Result struct {
	Target Target     `json:"target"`
	Action Action     `json:"action"`
	Kind   ResultKind `json:"kind"`
	Reason string     `json:"reason,omitempty"`
	Err    error      `json:"-"`
}

// Summary aggregates per-target results for reporting.
type Summary struct {
	Results []Result `json:"results"`
}

// Sort orders results by target for deterministic output regardless of
// execution concurrency.
func (s *Summary) Sort() {
	sort.Slice(s.Results, func(i, j int) bool {
		return s.Results[i].Target.Compare(s.Results[j].Target) < 0
	})
}

// Count returns how many results have the given kind.
func (s *Summary) Count(kind ResultKind) int {
	n := 0
	for _, r := range s.Results {
		if r.Kind == kind {
			n++
		}
	}
	return n
}

// Failed reports whether any operation failed.
func (s *Summary) Failed() bool {
	return s.Count(ResultFailed) > 0
}
