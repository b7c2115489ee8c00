package memory

import (
	"github.com/viant/stepgate/service/approval"
	"github.com/viant/stepgate/service/messaging"
)

type Option func(*service)

// WithEventQueue supplies the queue mutation events are published to. By
// default the store creates its own in-memory queue.
func WithEventQueue(queue messaging.Queue[approval.Event]) Option {
	return func(s *service) { s.events = queue }
}
