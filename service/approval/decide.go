package approval

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/stepgate/internal/clock"
	"github.com/viant/stepgate/service/dao"
	"github.com/viant/stepgate/service/notify"
)

// Decision entry points. They are deliberately decoupled from the waiting
// Gate instance: an inbound webhook or CLI handler records a decision
// against the store, and the gate observes it on its next poll tick.

// Approve appends an approval decision and evaluates the request policy.
// When the policy is satisfied the request resolves as approved and a
// resolution notification fires. A decision against an already-terminal
// request is not recorded; the request is returned unchanged.
func Approve(ctx context.Context, store Store, notifier notify.Notifier, id, decidedBy, reason string) (*Request, error) {
	request, err := loadRequest(ctx, store, id)
	if err != nil {
		return nil, err
	}
	if request.Status.IsTerminal() {
		return request, nil
	}
	decision := Decision{Approved: true, DecidedBy: decidedBy, Reason: reason, DecidedAt: clock.Now()}
	if err = store.AddDecision(ctx, id, decision); err != nil {
		if errors.Is(err, ErrAlreadyResolved) {
			// The request turned terminal between the load and the write;
			// report the settled state instead of failing the caller.
			return loadRequest(ctx, store, id)
		}
		return nil, fmt.Errorf("failed to record approval by %v: %w", decidedBy, err)
	}
	request, err = loadRequest(ctx, store, id)
	if err != nil {
		return nil, err
	}
	switch request.PolicyOutcome() {
	case OutcomeApproved:
		return resolve(ctx, store, notifier, id, StatusApproved, &decision)
	case OutcomeRejected:
		// A rejection recorded earlier short-circuits this approval.
		return resolve(ctx, store, notifier, id, StatusRejected, &decision)
	}
	return request, nil
}

// Reject is unconditional: any single rejection terminates a pending
// request as rejected.
func Reject(ctx context.Context, store Store, notifier notify.Notifier, id, decidedBy, reason string) (*Request, error) {
	request, err := loadRequest(ctx, store, id)
	if err != nil {
		return nil, err
	}
	if request.Status.IsTerminal() {
		return request, nil
	}
	decision := Decision{Approved: false, DecidedBy: decidedBy, Reason: reason, DecidedAt: clock.Now()}
	if err = store.AddDecision(ctx, id, decision); err != nil {
		if errors.Is(err, ErrAlreadyResolved) {
			return loadRequest(ctx, store, id)
		}
		return nil, fmt.Errorf("failed to record rejection by %v: %w", decidedBy, err)
	}
	return resolve(ctx, store, notifier, id, StatusRejected, &decision)
}

// Cancel forces a terminal cancelled state without recording a decision.
// Cancelling an already-terminal request leaves it untouched, ResolvedAt
// included.
func Cancel(ctx context.Context, store Store, id string) (*Request, error) {
	request, err := loadRequest(ctx, store, id)
	if err != nil {
		return nil, err
	}
	if request.Status.IsTerminal() {
		return request, nil
	}
	resolved, err := store.SetResolved(ctx, id, StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel request %v: %w", id, err)
	}
	return resolved, nil
}

func resolve(ctx context.Context, store Store, notifier notify.Notifier, id string, status Status, decision *Decision) (*Request, error) {
	resolved, err := store.SetResolved(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve request %v as %v: %w", id, status, err)
	}
	if notifier != nil {
		notifier.SendToAll(ctx, resolved.Channels, NewResolvedMessage(resolved, decision))
	}
	return resolved, nil
}

func loadRequest(ctx context.Context, store Store, id string) (*Request, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	request, err := store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("approval request %v: %w", id, dao.ErrNotFound)
	}
	return request, nil
}
