package approval

import (
	"time"

	"github.com/viant/stepgate/model/step"
	"github.com/viant/stepgate/service/notify"
)

// Status is the request lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusTimeout   Status = "timeout"
	StatusEscalated Status = "escalated"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether the status ends the request lifecycle.
// StatusEscalated is non-terminal: it loops back to an extended wait.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusTimeout, StatusCancelled:
		return true
	}
	return false
}

// Policy determines how many approvals satisfy a request.
type Policy string

const (
	// PolicyAny succeeds on the first approval.
	PolicyAny Policy = "any"
	// PolicyAll requires one approval per listed approver.
	PolicyAll Policy = "all"
	// PolicyMajority requires strictly more than half of the approvers.
	PolicyMajority Policy = "majority"
)

// EscalationAction is the corrective action taken when a request expires.
type EscalationAction string

const (
	ActionAutoReject  EscalationAction = "auto_reject"
	ActionEscalate    EscalationAction = "escalate"
	ActionNotifyAdmin EscalationAction = "notify_admin"
)

// EscalationPolicy is attached at request-creation time and read-only
// thereafter: escalation mutates the request's fields, never its policy.
type EscalationPolicy struct {
	TimeoutMs           int64            `json:"timeoutMs" yaml:"timeoutMs"`
	Action              EscalationAction `json:"action" yaml:"action"`
	EscalateToApprovers []string         `json:"escalateToApprovers,omitempty" yaml:"escalateToApprovers,omitempty"`
	NotifyAdmins        []string         `json:"notifyAdmins,omitempty" yaml:"notifyAdmins,omitempty"`
	MaxEscalations      int              `json:"maxEscalations,omitempty" yaml:"maxEscalations,omitempty"` // 0 = unlimited
}

// Timeout returns the policy timeout as a duration.
func (p *EscalationPolicy) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// RiskLevel grades a request for human-facing rendering and notification
// priority.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Decision is one approver's vote. Immutable once appended; the decision
// list is never rewritten, only grown.
type Decision struct {
	Approved  bool      `json:"approved"`
	DecidedBy string    `json:"decidedBy"`
	Reason    string    `json:"reason,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}

// Context carries human-facing detail about what is being approved. It is
// used only for rendering, never for policy evaluation.
type Context struct {
	Description     string                `json:"description,omitempty"`
	RiskLevel       RiskLevel             `json:"riskLevel,omitempty"`
	ProposedChanges []step.ProposedChange `json:"proposedChanges,omitempty"`
}

// Request is the human-in-the-loop gating record. It is created by the gate
// and mutated only through Store methods; it is terminal once ResolvedAt is
// set.
type Request struct {
	ID       string `json:"id"`
	RunID    string `json:"runId"`
	StepID   string `json:"stepId"`
	TenantID string `json:"tenantId"`

	RequestedBy string   `json:"requestedBy"`
	Approvers   []string `json:"approvers"`
	Policy      Policy   `json:"policy"`

	Status    Status     `json:"status"`
	Decisions []Decision `json:"decisions,omitempty"`

	EscalationPolicy *EscalationPolicy `json:"escalationPolicy,omitempty"`
	EscalationCount  int               `json:"escalationCount"`

	Channels []notify.Channel `json:"channels,omitempty"`

	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`

	Context Context `json:"context,omitempty"`
}

// Clone returns a deep copy so concurrent readers never observe a record
// mid-mutation.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Approvers = append([]string(nil), r.Approvers...)
	clone.Decisions = append([]Decision(nil), r.Decisions...)
	clone.Channels = append([]notify.Channel(nil), r.Channels...)
	if r.ExpiresAt != nil {
		expires := *r.ExpiresAt
		clone.ExpiresAt = &expires
	}
	if r.ResolvedAt != nil {
		resolved := *r.ResolvedAt
		clone.ResolvedAt = &resolved
	}
	if r.EscalationPolicy != nil {
		policy := *r.EscalationPolicy
		policy.EscalateToApprovers = append([]string(nil), r.EscalationPolicy.EscalateToApprovers...)
		policy.NotifyAdmins = append([]string(nil), r.EscalationPolicy.NotifyAdmins...)
		clone.EscalationPolicy = &policy
	}
	clone.Context.ProposedChanges = append([]step.ProposedChange(nil), r.Context.ProposedChanges...)
	return &clone
}

// Outcome is the aggregate result of evaluating recorded decisions against
// the request policy.
type Outcome string

const (
	OutcomePending  Outcome = "pending"
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

// PolicyOutcome evaluates the recorded decisions. A single rejection
// anywhere short-circuits all approvals.
func (r *Request) PolicyOutcome() Outcome {
	approvedBy := make(map[string]bool)
	for _, decision := range r.Decisions {
		if !decision.Approved {
			return OutcomeRejected
		}
		approvedBy[decision.DecidedBy] = true
	}
	required := make(map[string]bool)
	for _, approver := range r.Approvers {
		required[approver] = true
	}
	switch r.Policy {
	case PolicyAll:
		for approver := range required {
			if !approvedBy[approver] {
				return OutcomePending
			}
		}
		if len(required) == 0 {
			return OutcomePending
		}
		return OutcomeApproved
	case PolicyMajority:
		if len(approvedBy)*2 > len(required) {
			return OutcomeApproved
		}
		return OutcomePending
	default: // PolicyAny
		if len(approvedBy) > 0 {
			return OutcomeApproved
		}
		return OutcomePending
	}
}

// Event envelope published by stores on request/decision changes.
type Event struct {
	Topic   string            `json:"topic"`
	Request *Request          `json:"request,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Standard event topics.
const (
	TopicRequestCreated   = "request.created"
	TopicRequestUpdated   = "request.updated"
	TopicRequestEscalated = "request.escalated"
	TopicRequestResolved  = "request.resolved"
	TopicDecisionCreated  = "decision.created"
)
