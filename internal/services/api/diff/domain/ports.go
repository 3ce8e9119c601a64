package domain

import (
	"context"

	"wta/internal/core/diff"
)

// Store persists comparisons
// every method is atomic per (ownerID, id)
type Store interface {
	// UpsertSide sets side, clears any result and bumps the version, creating the record at version 1
	UpsertSide(ctx context.Context, ownerID, id string, side Side, payload string) (created bool, err error)

	// Get returns the current snapshot, ok is false when absent
	Get(ctx context.Context, ownerID, id string) (c Comparison, ok bool, err error)

	// UpdateResult stores r only if the record is still the c.Gen record at c.Version
	UpdateResult(ctx context.Context, c Comparison, r diff.Result) (applied bool, err error)

	// Delete removes the record, deleted is false when there was nothing to remove
	Delete(ctx context.Context, ownerID, id string) (deleted bool, err error)
}

// EventSink receives compare events, Emit must never block the caller
type EventSink interface {
	Emit(ev CompareEvent)
}

// ServicePort is the interface implemented by the diff service
type ServicePort interface {
	UpsertLeft(ctx context.Context, ownerID, id, data string) (bool, error)
	UpsertRight(ctx context.Context, ownerID, id, data string) (bool, error)
	Get(ctx context.Context, ownerID, id string) (Comparison, bool, error)
	Status(ctx context.Context, ownerID, id string) (StatusView, error)
	Compare(ctx context.Context, ownerID, id string) (diff.Result, error)
	Delete(ctx context.Context, ownerID, id string) (bool, error)
}
