package models

import (
	"fmt"
	"time"
)

// ValidationError reports a request rejected before any registry call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// RecordSpec carries the caller's intent for a new silence record.
// Indefinite and TTL are mutually exclusive: an indefinite silence has no
// expiry at all, which is distinct from any finite TTL however large.
type RecordSpec struct {
	TTL             time.Duration
	Indefinite      bool
	ExpireOnResolve bool
	Reason          string
	Creator         string
}

// SilenceRecord is the canonical in-memory silence entry. A nil ExpiresAt
// means the silence never expires on its own.
type SilenceRecord struct {
	Target          Target     `json:"target"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	ExpireOnResolve bool       `json:"expire_on_resolve,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	Creator         string     `json:"creator,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// BuildRecord validates spec and builds the record for target at time now.
func BuildRecord(target Target, spec RecordSpec, now time.Time) (SilenceRecord, error) {
	rec := SilenceRecord{
		Target:          target,
		ExpireOnResolve: spec.ExpireOnResolve,
		Reason:          spec.Reason,
		Creator:         spec.Creator,
		CreatedAt:       now,
	}

	if spec.Indefinite {
		return rec, nil
	}

	if spec.TTL <= 0 {
		return SilenceRecord{}, &ValidationError{
			Msg: fmt.Sprintf("ttl must be positive, got %s", spec.TTL),
		}
	}

	expires := now.Add(spec.TTL)
	rec.ExpiresAt = &expires
	return rec, nil
}

// ID returns the registry identifier, derived from the target only.
func (r SilenceRecord) ID() string {
	return r.Target.ID()
}

// Indefinite reports whether the record never expires on its own.
func (r SilenceRecord) Indefinite() bool {
	return r.ExpiresAt == nil
}

// Expired reports whether the record's expiry has passed. Expired records
// are logically absent even if still physically present in the registry.
func (r SilenceRecord) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

// Remaining returns the time left before expiry, zero for indefinite records.
func (r SilenceRecord) Remaining(now time.Time) time.Duration {
	if r.ExpiresAt == nil {
		return 0
	}
	d := r.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
