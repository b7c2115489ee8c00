package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/viant/stepgate/internal/clock"
	"github.com/viant/stepgate/internal/idgen"
)

// Notifier delivers messages to configured channels.
type Notifier interface {
	// Send delivers to exactly one channel.
	Send(ctx context.Context, channel Channel, message *Message) (*SendResult, error)

	// SendToAll iterates over channels, skipping disabled ones and isolating
	// per-channel failures so one bad channel does not prevent delivery to
	// the others. Failed deliveries appear as unsuccessful results, never as
	// a returned error.
	SendToAll(ctx context.Context, channels []Channel, message *Message) []SendResult

	// TestChannel verifies a channel configuration without sending a real
	// notification.
	TestChannel(ctx context.Context, channel Channel) error
}

// LogNotifier is the reference Notifier: it writes every message to the
// process log. Production transports implement the same contract.
type LogNotifier struct {
	logf func(format string, args ...interface{})
}

// NewLogNotifier returns a notifier writing through the standard logger.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logf: log.Printf}
}

// Send logs the message and reports success.
func (n *LogNotifier) Send(_ context.Context, channel Channel, message *Message) (*SendResult, error) {
	if message == nil {
		return nil, fmt.Errorf("notify: nil message")
	}
	if !channel.Enabled {
		return nil, fmt.Errorf("notify: channel %v is disabled", channel.Type)
	}
	n.logf("[notify][%s][%s] %s (request %s, run %s)\n%s",
		channel.Type, message.Priority, message.Subject, message.RequestID, message.RunID, message.Body)
	return &SendResult{
		Success:     true,
		ChannelType: channel.Type,
		Recipients:  message.Recipients,
		SentAt:      clock.Now(),
		MessageID:   idgen.New(),
	}, nil
}

// SendToAll fans the message out to every enabled channel.
func (n *LogNotifier) SendToAll(ctx context.Context, channels []Channel, message *Message) []SendResult {
	return FanOut(ctx, n, channels, message)
}

// TestChannel only checks the enabled flag; the log transport has no
// configuration to verify.
func (n *LogNotifier) TestChannel(_ context.Context, channel Channel) error {
	if !channel.Enabled {
		return fmt.Errorf("notify: channel %v is disabled", channel.Type)
	}
	return nil
}

// FanOut implements the SendToAll contract on top of any single-channel
// sender, so transport implementations only need to provide Send.
func FanOut(ctx context.Context, notifier Notifier, channels []Channel, message *Message) []SendResult {
	results := make([]SendResult, 0, len(channels))
	for _, channel := range channels {
		if !channel.Enabled {
			continue
		}
		result, err := notifier.Send(ctx, channel, message)
		if err != nil {
			results = append(results, SendResult{
				Success:     false,
				ChannelType: channel.Type,
				Recipients:  message.Recipients,
				Error:       err.Error(),
				SentAt:      clock.Now(),
			})
			continue
		}
		results = append(results, *result)
	}
	return results
}

var _ Notifier = (*LogNotifier)(nil)
