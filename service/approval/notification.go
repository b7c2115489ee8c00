package approval

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/viant/stepgate/model/step"
	"github.com/viant/stepgate/service/notify"
)

// riskBadge prefixes subject lines so the risk is visible before the message
// is opened.
func riskBadge(risk RiskLevel) string {
	switch risk {
	case RiskCritical:
		return "[CRITICAL]"
	case RiskHigh:
		return "[HIGH]"
	case RiskLow:
		return "[LOW]"
	default:
		return "[MEDIUM]"
	}
}

func (r *Request) describeTarget() string {
	if r.Context.Description != "" {
		return r.Context.Description
	}
	return fmt.Sprintf("step %s of run %s", r.StepID, r.RunID)
}

// changeStat returns the added/deleted line counts of a proposed change. The
// counts come from the unified diff when one is attached and parseable.
func changeStat(change step.ProposedChange) (added, deleted int) {
	if change.Patch == "" {
		return 0, 0
	}
	fileDiff, err := diff.ParseFileDiff([]byte(change.Patch))
	if err != nil {
		return 0, 0
	}
	stat := fileDiff.Stat()
	return int(stat.Added + stat.Changed), int(stat.Deleted + stat.Changed)
}

func renderChanges(builder *strings.Builder, changes []step.ProposedChange) {
	if len(changes) == 0 {
		return
	}
	fmt.Fprintf(builder, "\n**Proposed changes** (%d files):\n", len(changes))
	for _, change := range changes {
		added, deleted := changeStat(change)
		fmt.Fprintf(builder, "- `%s` (%s, +%d/-%d)", change.Path, change.Operation, added, deleted)
		if change.Summary != "" {
			fmt.Fprintf(builder, " — %s", change.Summary)
		}
		builder.WriteByte('\n')
	}
}

func renderHeader(builder *strings.Builder, request *Request) {
	if request.Context.Description != "" {
		fmt.Fprintf(builder, "%s\n\n", request.Context.Description)
	}
	risk := request.Context.RiskLevel
	if risk == "" {
		risk = RiskMedium
	}
	fmt.Fprintf(builder, "**Run**: %s\n**Step**: %s\n**Risk**: %s\n", request.RunID, request.StepID, risk)
}

// NewCreatedMessage renders the notification sent when a request is opened.
func NewCreatedMessage(request *Request) *notify.Message {
	var builder strings.Builder
	renderHeader(&builder, request)
	fmt.Fprintf(&builder, "**Approvers**: %s\n**Policy**: %s\n",
		strings.Join(request.Approvers, ", "), request.Policy)
	if request.ExpiresAt != nil {
		fmt.Fprintf(&builder, "**Expires**: %s\n", request.ExpiresAt.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	renderChanges(&builder, request.Context.ProposedChanges)
	return &notify.Message{
		Subject:    fmt.Sprintf("%s Approval required: %s", riskBadge(request.Context.RiskLevel), request.describeTarget()),
		Body:       builder.String(),
		RequestID:  request.ID,
		RunID:      request.RunID,
		Recipients: append([]string(nil), request.Approvers...),
		Priority:   notify.PriorityForRisk(string(request.Context.RiskLevel)),
	}
}

// NewEscalatedMessage renders the notification sent after an escalation
// fired. Escalations are always urgent regardless of configured risk.
func NewEscalatedMessage(request *Request, result *EscalationResult) *notify.Message {
	var builder strings.Builder
	renderHeader(&builder, request)
	fmt.Fprintf(&builder, "**Escalation level**: %d\n", result.EscalationCount)
	recipients := result.Approvers
	switch result.Action {
	case ActionEscalate:
		fmt.Fprintf(&builder, "**Approvers now**: %s\n", strings.Join(result.Approvers, ", "))
	case ActionNotifyAdmin:
		recipients = result.NotifyAdmins
		fmt.Fprintf(&builder, "**Admins notified**: %s\n", strings.Join(result.NotifyAdmins, ", "))
	}
	renderChanges(&builder, request.Context.ProposedChanges)
	return &notify.Message{
		Subject:    fmt.Sprintf("%s Approval escalated: %s", riskBadge(request.Context.RiskLevel), request.describeTarget()),
		Body:       builder.String(),
		RequestID:  request.ID,
		RunID:      request.RunID,
		Recipients: append([]string(nil), recipients...),
		Priority:   notify.PriorityUrgent,
	}
}

// NewResolvedMessage renders the notification sent once the request reaches
// a terminal state. Timeouts are urgent; other resolutions keep the
// risk-derived priority.
func NewResolvedMessage(request *Request, decision *Decision) *notify.Message {
	var builder strings.Builder
	renderHeader(&builder, request)
	fmt.Fprintf(&builder, "**Outcome**: %s\n", request.Status)
	if decision != nil {
		fmt.Fprintf(&builder, "**Decided by**: %s\n", decision.DecidedBy)
		if decision.Reason != "" {
			fmt.Fprintf(&builder, "**Reason**: %s\n", decision.Reason)
		}
	}
	priority := notify.PriorityForRisk(string(request.Context.RiskLevel))
	if request.Status == StatusTimeout {
		priority = notify.PriorityUrgent
	}
	return &notify.Message{
		Subject:    fmt.Sprintf("%s Approval %s: %s", riskBadge(request.Context.RiskLevel), request.Status, request.describeTarget()),
		Body:       builder.String(),
		RequestID:  request.ID,
		RunID:      request.RunID,
		Recipients: append([]string(nil), request.Approvers...),
		Priority:   priority,
	}
}
