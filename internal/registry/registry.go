// Package registry mediates all reads and writes against the remote silence
// registry: list, create and delete, with retry, backoff and rate limiting.
package registry

import (
	"context"

	"github.com/shush-sh/shush/internal/models"
)

// Registry is the capability the reconciliation engine needs from a silence
// backend. Any implementation with idempotent-capable list/create/delete
// semantics can satisfy it, including in-memory test doubles.
type Registry interface {
	// List returns the unexpired silence records matching scope.
	List(ctx context.Context, scope Scope) ([]models.SilenceRecord, error)
	// Create writes a record. Re-creating an identical record is a no-op.
	Create(ctx context.Context, rec models.SilenceRecord) error
	// Delete removes the record for target. Deleting an absent record is ok.
	Delete(ctx context.Context, target models.Target) error
}

// Inventory supplies the read-only snapshot used for wildcard expansion.
type Inventory interface {
	Snapshot(ctx context.Context) (*models.InventorySnapshot, error)
}

// Scope restricts a List call. Zero value means everything.
type Scope struct {
	Subscription string
	Check        string
}

// Matches reports whether t falls inside the scope.
func (s Scope) Matches(t models.Target) bool {
	if s.Subscription != "" && s.Subscription != t.Subscription() {
		return false
	}
	if s.Check != "" && s.Check != t.Check {
		return false
	}
	return true
}
