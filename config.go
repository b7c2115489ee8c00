package stepgate

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/viant/stepgate/service/approval"
	"github.com/viant/stepgate/service/notify"
)

// Config is a serialisable representation of the control-plane
// configuration. It can be populated from JSON or YAML. The zero-value is
// useful – all nested fields inherit their package defaults.
type Config struct {
	Gate       GateConfig                 `json:"gate" yaml:"gate"`
	Escalation *approval.EscalationPolicy `json:"escalation,omitempty" yaml:"escalation,omitempty"`
	Channels   []notify.Channel           `json:"channels,omitempty" yaml:"channels,omitempty"`
}

// GateConfig holds the waiting-loop defaults applied to every gate the
// service builds.
type GateConfig struct {
	PollIntervalMs int64 `json:"pollIntervalMs" yaml:"pollIntervalMs"`
	MaxWaitMs      int64 `json:"maxWaitMs" yaml:"maxWaitMs"`
}

// PollInterval returns the poll tick as a duration.
func (c *GateConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// MaxWait returns the overall wait bound; zero means "derive from the
// escalation policy or fall back to the package default".
func (c *GateConfig) MaxWait() time.Duration {
	return time.Duration(c.MaxWaitMs) * time.Millisecond
}

// DefaultConfig returns a Config populated with the same defaults the
// constructors previously hard-coded.
func DefaultConfig() *Config {
	return &Config{
		Gate: GateConfig{
			PollIntervalMs: approval.DefaultPollInterval.Milliseconds(),
		},
	}
}

// Validate returns an aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Gate.PollIntervalMs <= 0 {
		return fmt.Errorf("gate.pollIntervalMs must be > 0")
	}
	if c.Gate.MaxWaitMs < 0 {
		return fmt.Errorf("gate.maxWaitMs must be >= 0")
	}
	if escalation := c.Escalation; escalation != nil {
		if escalation.TimeoutMs <= 0 {
			return fmt.Errorf("escalation.timeoutMs must be > 0")
		}
		switch escalation.Action {
		case approval.ActionAutoReject, approval.ActionEscalate, approval.ActionNotifyAdmin:
		default:
			return fmt.Errorf("unsupported escalation.action: %v", escalation.Action)
		}
	}
	for i, channel := range c.Channels {
		switch channel.Type {
		case notify.ChannelSlack, notify.ChannelEmail, notify.ChannelWebhook, notify.ChannelInApp:
		default:
			return fmt.Errorf("channels[%d]: unsupported type %v", i, channel.Type)
		}
	}
	return nil
}

// LoadConfig reads a YAML config document from the supplied URL (any afs
// scheme: file, mem, s3, …).
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	config := DefaultConfig()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", URL, err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
