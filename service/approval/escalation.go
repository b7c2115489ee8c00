package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/stepgate/internal/clock"
)

// EscalationDecision is the outcome of a pure escalation check.
type EscalationDecision struct {
	ShouldEscalate bool
	Action         EscalationAction
	EscalateTo     []string
	NotifyAdmins   []string
	Reason         string
}

// CheckEscalation decides, without side effects, whether a request is due
// for escalation at the supplied instant. Reaching MaxEscalations forces
// auto_reject regardless of the configured action: this is the circuit
// breaker that guarantees termination.
func CheckEscalation(request *Request, now time.Time) EscalationDecision {
	policy := request.EscalationPolicy
	if policy == nil || request.ExpiresAt == nil {
		return EscalationDecision{}
	}
	if now.Before(*request.ExpiresAt) {
		return EscalationDecision{}
	}
	if policy.MaxEscalations > 0 && request.EscalationCount >= policy.MaxEscalations {
		return EscalationDecision{
			ShouldEscalate: true,
			Action:         ActionAutoReject,
			Reason:         fmt.Sprintf("escalation limit of %d reached; no decision was reached", policy.MaxEscalations),
		}
	}
	decision := EscalationDecision{
		ShouldEscalate: true,
		Action:         policy.Action,
		Reason:         "approval request expired",
	}
	switch policy.Action {
	case ActionEscalate:
		decision.EscalateTo = policy.EscalateToApprovers
	case ActionNotifyAdmin:
		decision.NotifyAdmins = policy.NotifyAdmins
	}
	return decision
}

// EscalationResult reports what PerformEscalation did to the request.
type EscalationResult struct {
	Action          EscalationAction
	Status          Status
	Approvers       []string
	NotifyAdmins    []string
	EscalationCount int
	Reason          string
}

// PerformEscalation executes the decision CheckEscalation produced for the
// request, mutating it through the store. It returns nil when no escalation
// is due.
//
// auto_reject resolves the request as timeout. escalate with an empty
// next-approver list degrades to auto_reject (there is nowhere to escalate
// to); otherwise it unions the approver sets, extends the expiry by the
// policy timeout from now and re-enters the waiting state. notify_admin
// mutates nothing and only reports the admins to notify; such a request can
// stay pending indefinitely until a human acts.
func PerformEscalation(ctx context.Context, request *Request, store Store) (*EscalationResult, error) {
	decision := CheckEscalation(request, clock.Now())
	if !decision.ShouldEscalate {
		return nil, nil
	}

	action := decision.Action
	if action == ActionEscalate && len(decision.EscalateTo) == 0 {
		action = ActionAutoReject
		decision.Reason = "no next-level approvers configured; no decision was reached"
	}

	switch action {
	case ActionAutoReject:
		if _, err := store.SetResolved(ctx, request.ID, StatusTimeout); err != nil {
			return nil, fmt.Errorf("failed to resolve expired request %v: %w", request.ID, err)
		}
		return &EscalationResult{
			Action: ActionAutoReject,
			Status: StatusTimeout,
			Reason: decision.Reason,
		}, nil

	case ActionEscalate:
		approvers := unionApprovers(request.Approvers, decision.EscalateTo)
		expiresAt := clock.Now().Add(request.EscalationPolicy.Timeout())
		count, err := store.Escalate(ctx, request.ID, approvers, expiresAt)
		if errors.Is(err, ErrAlreadyResolved) {
			// An approver resolved the request between the expiry check and
			// the escalation write; the decision wins and nothing is due.
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to escalate request %v: %w", request.ID, err)
		}
		return &EscalationResult{
			Action:          ActionEscalate,
			Status:          StatusEscalated,
			Approvers:       approvers,
			EscalationCount: count,
			Reason:          decision.Reason,
		}, nil

	default: // ActionNotifyAdmin
		return &EscalationResult{
			Action:       ActionNotifyAdmin,
			Status:       request.Status,
			NotifyAdmins: decision.NotifyAdmins,
			Reason:       decision.Reason,
		}, nil
	}
}

// unionApprovers merges both lists preserving order and dropping duplicates.
func unionApprovers(current, next []string) []string {
	seen := make(map[string]bool, len(current)+len(next))
	out := make([]string, 0, len(current)+len(next))
	for _, list := range [][]string{current, next} {
		for _, approver := range list {
			if approver == "" || seen[approver] {
				continue
			}
			seen[approver] = true
			out = append(out, approver)
		}
	}
	return out
}
