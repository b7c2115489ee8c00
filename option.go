package stepgate

import (
	"github.com/viant/stepgate/service/approval"
	"github.com/viant/stepgate/service/messaging"
	"github.com/viant/stepgate/service/notify"
)

// Option customises the Service.
type Option func(s *Service)

// WithConfig replaces the default configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithStore sets the approval store (defaults to the in-memory reference
// store).
func WithStore(store approval.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithNotifier sets the notifier (defaults to the logging reference
// notifier).
func WithNotifier(notifier notify.Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

// WithEventQueue sets the queue approval store events flow through.
func WithEventQueue(queue messaging.Queue[approval.Event]) Option {
	return func(s *Service) { s.events = queue }
}

// WithChannels sets the default notification channels attached to every
// request the service creates.
func WithChannels(channels ...notify.Channel) Option {
	return func(s *Service) { s.config.Channels = channels }
}

// WithEscalationPolicy sets the default escalation policy attached to every
// request the service creates.
func WithEscalationPolicy(policy *approval.EscalationPolicy) Option {
	return func(s *Service) { s.config.Escalation = policy }
}
