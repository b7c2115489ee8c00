package notify

import "time"

// ChannelType identifies the delivery transport.
type ChannelType string

const (
	ChannelSlack   ChannelType = "slack"
	ChannelEmail   ChannelType = "email"
	ChannelWebhook ChannelType = "webhook"
	ChannelInApp   ChannelType = "in_app"
)

// Channel is one configured delivery target. Config is opaque to this
// package; each transport interprets its own settings.
type Channel struct {
	Type    ChannelType            `json:"type" yaml:"type"`
	Config  map[string]interface{} `json:"config,omitempty" yaml:"config,omitempty"`
	Enabled bool                   `json:"enabled" yaml:"enabled"`
}

// Priority orders messages for the receiving side.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// PriorityForRisk derives a message priority from a risk level label.
func PriorityForRisk(risk string) Priority {
	switch risk {
	case "critical":
		return PriorityUrgent
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityNormal
	}
}

// Message is a rendered notification ready for delivery.
type Message struct {
	Subject    string   `json:"subject"`
	Body       string   `json:"body"` // markdown
	RequestID  string   `json:"requestId"`
	RunID      string   `json:"runId"`
	Recipients []string `json:"recipients,omitempty"`
	Priority   Priority `json:"priority"`
}

// SendResult reports the outcome of delivery to a single channel.
type SendResult struct {
	Success     bool        `json:"success"`
	ChannelType ChannelType `json:"channelType"`
	Recipients  []string    `json:"recipients,omitempty"`
	Error       string      `json:"error,omitempty"`
	SentAt      time.Time   `json:"sentAt"`
	MessageID   string      `json:"messageId,omitempty"`
}
