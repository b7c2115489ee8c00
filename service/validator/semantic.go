package validator

import (
	"fmt"

	"github.com/viant/stepgate/model/step"
)

// durationToleranceMs is the accepted skew between the reported duration and
// the timestamp delta.
const durationToleranceMs = 100

// Report aggregates the structural and semantic findings for one envelope.
type Report struct {
	Structural []FieldError `json:"structural,omitempty"`
	Semantic   []Issue      `json:"semantic,omitempty"`
}

// Valid reports whether the envelope may progress: no structural violations
// and no error-severity semantic issues. Warnings are advisory.
func (r *Report) Valid() bool {
	if len(r.Structural) > 0 {
		return false
	}
	for _, issue := range r.Semantic {
		if issue.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Warnings returns the advisory subset of semantic issues.
func (r *Report) Warnings() []Issue {
	var out []Issue
	for _, issue := range r.Semantic {
		if issue.Severity == SeverityWarning {
			out = append(out, issue)
		}
	}
	return out
}

// ValidateOutputSemantics checks cross-field consistency of a structurally
// valid StepOutput.
func ValidateOutputSemantics(output *step.StepOutput) []Issue {
	var issues []Issue

	timing := output.Timing
	if !timing.StartedAt.IsZero() && !timing.CompletedAt.IsZero() {
		if timing.CompletedAt.Before(timing.StartedAt) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "timing.completedAt",
				Message:  "completedAt precedes startedAt",
			})
		} else {
			// durationMs is a required field, so zero counts as a reported
			// value and still has to agree with the timestamp delta.
			delta := timing.CompletedAt.Sub(timing.StartedAt).Milliseconds()
			if diff := delta - timing.DurationMs; diff > durationToleranceMs || diff < -durationToleranceMs {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     "timing.durationMs",
					Message:  fmt.Sprintf("durationMs %d disagrees with timestamp delta %dms", timing.DurationMs, delta),
				})
			}
		}
	}

	if output.ResultCode == step.ResultFatal || output.ResultCode == step.ResultRetryable {
		if !output.Error.IsPopulated() {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "error",
				Message:  fmt.Sprintf("resultCode %q requires a populated error", output.ResultCode),
			})
		}
	}

	// Not fatal: some approvals gate non-file actions.
	if output.RequiresApproval && len(output.ProposedChanges) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "proposedChanges",
			Message:  "requiresApproval is set but no proposed changes are listed",
		})
	}

	if cost := output.Cost; cost != nil {
		if cost.Tokens.Total != cost.Tokens.Input+cost.Tokens.Output {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "cost.tokens.total",
				Message: fmt.Sprintf("tokens.total %d != input %d + output %d",
					cost.Tokens.Total, cost.Tokens.Input, cost.Tokens.Output),
			})
		}
	}

	for name, artifact := range output.Artifacts {
		if err := artifact.Validate(); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "artifacts." + name,
				Message:  err.Error(),
			})
		}
	}
	return issues
}

// ValidateStepOutputFull runs structural validation and, only when the shape
// is sound, the semantic checks on top.
func ValidateStepOutputFull(output *step.StepOutput) (*Report, error) {
	report := &Report{}
	violations, err := ValidateStepOutput(output)
	if err != nil {
		return nil, err
	}
	report.Structural = violations
	if len(violations) > 0 {
		return report, nil
	}
	report.Semantic = ValidateOutputSemantics(output)
	return report, nil
}
