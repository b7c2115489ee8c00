package stepgate

import (
	"context"

	"github.com/viant/stepgate/model/step"
	"github.com/viant/stepgate/service/approval"
	"github.com/viant/stepgate/service/approval/memory"
	"github.com/viant/stepgate/service/event"
	"github.com/viant/stepgate/service/messaging"
	qmem "github.com/viant/stepgate/service/messaging/memory"
	"github.com/viant/stepgate/service/notify"
	"github.com/viant/stepgate/service/validator"
)

// Service is the high-level façade wiring the approval store, notifier and
// gate defaults together. All collaborators are explicit constructor
// dependencies so tests and multi-tenant deployments run fully isolated
// instances.
type Service struct {
	config   *Config
	store    approval.Store
	notifier notify.Notifier
	events   messaging.Queue[approval.Event]
}

// New creates a service with the in-memory reference store and logging
// notifier unless options supply replacements.
func New(options ...Option) *Service {
	ret := &Service{config: DefaultConfig()}
	for _, option := range options {
		option(ret)
	}
	if ret.events == nil {
		ret.events = qmem.NewQueue[approval.Event](qmem.DefaultConfig())
	}
	if ret.store == nil {
		ret.store = memory.New(memory.WithEventQueue(ret.events))
	}
	if ret.notifier == nil {
		ret.notifier = notify.NewLogNotifier()
	}
	return ret
}

// Store exposes the approval store for decision handlers (webhook, CLI, UI).
func (s *Service) Store() approval.Store { return s.store }

// Notifier exposes the configured notifier.
func (s *Service) Notifier() notify.Notifier { return s.notifier }

// Events exposes the approval event feed.
func (s *Service) Events() messaging.Queue[approval.Event] { return s.events }

// NewGate builds an approval gate around the request template, applying the
// service defaults for poll interval, max wait, escalation policy and
// channels unless the template or options override them.
func (s *Service) NewGate(template *approval.Request, options ...approval.GateOption) *approval.Gate {
	if template.EscalationPolicy == nil {
		template.EscalationPolicy = s.config.Escalation
	}
	if len(template.Channels) == 0 {
		template.Channels = s.config.Channels
	}
	opts := make([]approval.GateOption, 0, 2+len(options))
	if interval := s.config.Gate.PollInterval(); interval > 0 {
		opts = append(opts, approval.WithPollInterval(interval))
	}
	if maxWait := s.config.Gate.MaxWait(); maxWait > 0 {
		opts = append(opts, approval.WithMaxWait(maxWait))
	}
	opts = append(opts, options...)
	return approval.NewGate(s.store, s.notifier, template, opts...)
}

// GateForOutput builds a gate for a step whose output requires approval,
// deriving the request identity and human-facing context from the
// envelopes.
func (s *Service) GateForOutput(input *step.StepInput, output *step.StepOutput, approvers []string, policy approval.Policy, options ...approval.GateOption) *approval.Gate {
	template := &approval.Request{
		RunID:       input.RunID,
		StepID:      input.StepID,
		TenantID:    input.TenantID,
		RequestedBy: string(input.StepType),
		Approvers:   approvers,
		Policy:      policy,
		Context: approval.Context{
			Description:     output.Summary,
			RiskLevel:       riskFor(input),
			ProposedChanges: output.ProposedChanges,
		},
	}
	return s.NewGate(template, options...)
}

// ValidateOutput runs the full structural plus semantic validation.
func (s *Service) ValidateOutput(output *step.StepOutput) (*validator.Report, error) {
	return validator.ValidateStepOutputFull(output)
}

// OnEvent starts a listener applying handler to every approval event until
// ctx is cancelled or the returned stop function is called.
func (s *Service) OnEvent(ctx context.Context, handler func(*approval.Event)) (stop func()) {
	listener := event.NewListener(event.NewPublisher(s.events), handler)
	listener.Start(ctx)
	return listener.Stop
}

// riskFor grades a step for human-facing rendering: steps that mutate the
// target repository rank higher than read-only analysis.
func riskFor(input *step.StepInput) approval.RiskLevel {
	switch input.StepType {
	case step.TypeApply:
		if input.RiskMode == step.RiskAggressive {
			return approval.RiskCritical
		}
		return approval.RiskHigh
	case step.TypeCode, step.TypeResolve:
		return approval.RiskMedium
	default:
		return approval.RiskLow
	}
}
