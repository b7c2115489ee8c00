package approval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/stepgate/internal/clock"
	"github.com/viant/stepgate/service/notify"
	"github.com/viant/stepgate/tracing"
)

const (
	// DefaultPollInterval bounds escalation timeliness: a request can run up
	// to one interval past its nominal expiry before escalation fires.
	DefaultPollInterval = time.Second
	// DefaultMaxWait applies when neither the caller nor the escalation
	// policy bounds the wait.
	DefaultMaxWait = time.Hour
)

// Result is what a step blocked on approval receives once the gate
// resolves.
type Result struct {
	Approved  bool     `json:"approved"`
	Request   *Request `json:"request"`
	Reason    string   `json:"reason,omitempty"`
	TimedOut  bool     `json:"timedOut"`
	Escalated bool     `json:"escalated"`
}

// GateOption adjusts gate behaviour.
type GateOption func(*Gate)

// WithPollInterval overrides the poll tick.
func WithPollInterval(interval time.Duration) GateOption {
	return func(g *Gate) { g.pollInterval = interval }
}

// WithMaxWait bounds the overall wait regardless of escalation policy.
func WithMaxWait(maxWait time.Duration) GateOption {
	return func(g *Gate) { g.maxWait = maxWait }
}

// Gate binds one (runID, stepID) step to an approval request and blocks the
// caller until the request reaches a terminal state. The gate instance that
// waits and the caller that records a decision communicate only through the
// store; there is no direct channel between them.
type Gate struct {
	store    Store
	notifier notify.Notifier
	template *Request

	pollInterval time.Duration
	maxWait      time.Duration

	// mu guards requestID: the waiting goroutine writes it, while
	// Approve/Reject/Cancel/RequestID may be called from other goroutines.
	mu        sync.RWMutex
	requestID string
}

// NewGate builds a gate around a request template carrying the step
// identity, approvers, policy, escalation policy, channels and rendering
// context. Store and notifier are explicit dependencies: no ambient
// globals, so tests and multi-tenant deployments run fully isolated
// instances.
func NewGate(store Store, notifier notify.Notifier, template *Request, options ...GateOption) *Gate {
	gate := &Gate{
		store:        store,
		notifier:     notifier,
		template:     template,
		pollInterval: DefaultPollInterval,
	}
	for _, option := range options {
		option(gate)
	}
	return gate
}

// RequestID returns the id of the request created by WaitForApproval, empty
// before the wait starts. Safe to call from any goroutine.
func (g *Gate) RequestID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.requestID
}

func (g *Gate) setRequestID(id string) {
	g.mu.Lock()
	g.requestID = id
	g.mu.Unlock()
}

// WaitForApproval creates the approval request, notifies the configured
// channels and blocks until a terminal state is reached: approved, rejected,
// timed out or cancelled. Escalation checks run on every poll tick.
// Cancelling ctx interrupts the wait immediately.
func (g *Gate) WaitForApproval(ctx context.Context) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "approval.waitForApproval")
	defer span.End()

	request := g.template.Clone()
	request.Status = StatusPending
	if policy := request.EscalationPolicy; policy != nil && policy.TimeoutMs > 0 {
		expiresAt := clock.Now().Add(policy.Timeout())
		request.ExpiresAt = &expiresAt
	}
	created, err := g.store.CreateRequest(ctx, request)
	if err != nil {
		span.SetStatus(err)
		return nil, fmt.Errorf("failed to create approval request: %w", err)
	}
	g.setRequestID(created.ID)
	span.WithAttributes(map[string]string{
		"request.id": created.ID,
		"run.id":     created.RunID,
		"step.id":    created.StepID,
	})
	g.notify(ctx, created, NewCreatedMessage(created))

	maxWait := g.maxWait
	if maxWait <= 0 {
		if policy := created.EscalationPolicy; policy != nil && policy.TimeoutMs > 0 {
			maxWait = policy.Timeout()
		} else {
			maxWait = DefaultMaxWait
		}
	}
	deadline := clock.Now().Add(maxWait)

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	escalated := false
	for {
		current, err := g.load(ctx)
		if err != nil {
			span.SetStatus(err)
			return nil, err
		}
		if current.Status.IsTerminal() {
			return g.resultFrom(current, escalated), nil
		}

		escalation, err := g.runEscalation(ctx, current)
		if err != nil {
			span.SetStatus(err)
			return nil, err
		}
		if escalation != nil {
			if escalation.Action == ActionEscalate {
				escalated = true
			}
			if escalation.Status.IsTerminal() {
				current, err = g.load(ctx)
				if err != nil {
					span.SetStatus(err)
					return nil, err
				}
				return g.resultFrom(current, escalated), nil
			}
		}

		if !clock.Now().Before(deadline) {
			return g.finishAfterDeadline(ctx, escalated, span)
		}

		select {
		case <-ctx.Done():
			span.SetStatus(ctx.Err())
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// finishAfterDeadline forces one final escalation pass once maxWait elapsed
// and resolves the request as timeout when nothing else did.
func (g *Gate) finishAfterDeadline(ctx context.Context, escalated bool, span *tracing.Span) (*Result, error) {
	current, err := g.load(ctx)
	if err != nil {
		span.SetStatus(err)
		return nil, err
	}
	if current.Status.IsTerminal() {
		return g.resultFrom(current, escalated), nil
	}
	escalation, err := g.runEscalation(ctx, current)
	if err != nil {
		span.SetStatus(err)
		return nil, err
	}
	if escalation == nil || !escalation.Status.IsTerminal() {
		resolved, err := g.store.SetResolved(ctx, current.ID, StatusTimeout)
		if err != nil {
			span.SetStatus(err)
			return nil, fmt.Errorf("failed to resolve request %v after wait limit: %w", current.ID, err)
		}
		g.notify(ctx, resolved, NewResolvedMessage(resolved, nil))
		return g.resultFrom(resolved, escalated), nil
	}
	current, err = g.load(ctx)
	if err != nil {
		span.SetStatus(err)
		return nil, err
	}
	return g.resultFrom(current, escalated), nil
}

// load re-reads the gate's request. A vanished request is a fatal internal
// inconsistency: the gate created it and nothing else should delete it.
func (g *Gate) load(ctx context.Context) (*Request, error) {
	current, err := g.store.GetRequest(ctx, g.RequestID())
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("approval request %v disappeared mid-wait", g.RequestID())
	}
	return current, nil
}

// runEscalation applies a due escalation and sends the matching
// notifications. It returns nil when no escalation fired.
func (g *Gate) runEscalation(ctx context.Context, current *Request) (*EscalationResult, error) {
	result, err := PerformEscalation(ctx, current, g.store)
	if err != nil || result == nil {
		return result, err
	}
	switch result.Action {
	case ActionAutoReject:
		if resolved, loadErr := g.store.GetRequest(ctx, current.ID); loadErr == nil && resolved != nil {
			g.notify(ctx, resolved, NewResolvedMessage(resolved, nil))
		}
	default:
		if updated, loadErr := g.store.GetRequest(ctx, current.ID); loadErr == nil && updated != nil {
			g.notify(ctx, updated, NewEscalatedMessage(updated, result))
		}
	}
	return result, nil
}

func (g *Gate) notify(ctx context.Context, request *Request, message *notify.Message) {
	if g.notifier == nil {
		return
	}
	g.notifier.SendToAll(ctx, request.Channels, message)
}

func (g *Gate) resultFrom(request *Request, escalated bool) *Result {
	result := &Result{
		Request:   request,
		Escalated: escalated || request.EscalationCount > 0,
	}
	switch request.Status {
	case StatusApproved:
		result.Approved = true
		result.Reason = lastDecisionReason(request, true)
	case StatusRejected:
		result.Reason = lastDecisionReason(request, false)
		if result.Reason == "" {
			result.Reason = "rejected by approver"
		}
	case StatusTimeout:
		result.TimedOut = true
		result.Reason = "no decision was reached before the deadline"
	case StatusCancelled:
		result.Reason = "approval request was cancelled"
	}
	return result
}

func lastDecisionReason(request *Request, approved bool) string {
	for i := len(request.Decisions) - 1; i >= 0; i-- {
		if request.Decisions[i].Approved == approved {
			return request.Decisions[i].Reason
		}
	}
	return ""
}

// Approve records an approval decision through the gate's store and
// evaluates the request policy. See the package-level Approve.
func (g *Gate) Approve(ctx context.Context, decidedBy, reason string) (*Request, error) {
	return Approve(ctx, g.store, g.notifier, g.RequestID(), decidedBy, reason)
}

// Reject records a rejection. Any single rejection terminates the request.
func (g *Gate) Reject(ctx context.Context, decidedBy, reason string) (*Request, error) {
	return Reject(ctx, g.store, g.notifier, g.RequestID(), decidedBy, reason)
}

// Cancel forces a terminal cancelled state with no decision recorded.
func (g *Gate) Cancel(ctx context.Context) (*Request, error) {
	return Cancel(ctx, g.store, g.RequestID())
}
