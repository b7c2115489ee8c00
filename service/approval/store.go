package approval

import (
	"context"
	"time"
)

// Store is the persistence contract for approval requests. Every mutation
// targets a request by id and must fail loudly (dao.ErrNotFound) when the
// request does not exist, never silently no-op. Writes to the same request
// must be atomic: compound updates become visible together or not at all.
//
// The reference implementation is in-memory (memory.New); a durable,
// tenant-partitioned backend swaps in behind this interface with no change
// to callers.
type Store interface {
	// CreateRequest assigns an id and creation time and returns the stored
	// record.
	CreateRequest(ctx context.Context, request *Request) (*Request, error)

	GetRequest(ctx context.Context, id string) (*Request, error)

	GetRequestByRunAndStep(ctx context.Context, runID, stepID string) (*Request, error)

	UpdateStatus(ctx context.Context, id string, status Status) error

	// AddDecision appends a decision; the decision list is append-only.
	AddDecision(ctx context.Context, id string, decision Decision) error

	// IncrementEscalation bumps the escalation counter and returns the new
	// value.
	IncrementEscalation(ctx context.Context, id string) (int, error)

	UpdateApprovers(ctx context.Context, id string, approvers []string) error

	UpdateExpiresAt(ctx context.Context, id string, expiresAt time.Time) error

	// Escalate applies an escalation step atomically: new approver set, new
	// expiry, incremented counter and StatusEscalated become visible
	// together. It returns the new escalation count.
	Escalate(ctx context.Context, id string, approvers []string, expiresAt time.Time) (int, error)

	// SetResolved transitions the request to a terminal status and stamps
	// ResolvedAt.
	SetResolved(ctx context.Context, id string, status Status) (*Request, error)

	ListPending(ctx context.Context, tenantID string) ([]*Request, error)

	ListByRunID(ctx context.Context, runID string) ([]*Request, error)
}
