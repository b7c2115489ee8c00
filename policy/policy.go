// Package policy provides a simple, optional per-step approval layer that can
// be attached to a pipeline run via context. It is deliberately decoupled
// from the rest of stepgate so that using it is entirely opt-in – orchestrators
// that do not embed the Policy in their context keep the original "auto"
// behaviour.
package policy

import (
	"context"
	"strings"

	"github.com/viant/stepgate/model/step"
)

// Execution modes recognised by the orchestrator.
const (
	ModeAsk  = "ask"  // route every sensitive step through the approval gate
	ModeAuto = "auto" // execute automatically (default)
	ModeDeny = "deny" // block execution
)

// Policy represents the approval settings for the current pipeline run.
//
//   - Mode controls the high-level behaviour (ask / auto / deny).
//   - AllowList, BlockList allow coarse filtering by step type regardless of
//     Mode.
//
// A nil *Policy means "execute everything automatically" and is therefore the
// zero-cost default.
type Policy struct {
	Mode      string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowList []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// ForRiskMode returns the default policy implied by a step input's risk
// mode: conservative runs ask everything sensitive, the rest run auto.
func ForRiskMode(mode step.RiskMode) *Policy {
	if mode == step.RiskConservative {
		return &Policy{Mode: ModeAsk}
	}
	return &Policy{Mode: ModeAuto}
}

// IsAllowed evaluates AllowList / BlockList. Both lists match by exact,
// case-insensitive comparison of the step type.
func (p *Policy) IsAllowed(stepType step.StepType) bool {
	if p == nil {
		return true
	}
	normalized := strings.ToLower(string(stepType))

	// BlockList has priority.
	for _, blocked := range p.BlockList {
		if normalized == strings.ToLower(blocked) {
			return false
		}
	}
	if len(p.AllowList) == 0 {
		return true
	}
	for _, allowed := range p.AllowList {
		if normalized == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// RequiresApproval reports whether a step of the given type must pass the
// approval gate before its output may be applied.
func (p *Policy) RequiresApproval(stepType step.StepType) bool {
	if p == nil {
		return false
	}
	return p.Mode == ModeAsk && p.IsAllowed(stepType)
}

// IsDenied reports whether the policy blocks the step outright.
func (p *Policy) IsDenied(stepType step.StepType) bool {
	if p == nil {
		return false
	}
	return p.Mode == ModeDeny || !p.IsAllowed(stepType)
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy, or nil when none is attached.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
