package stepgate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/stepgate/model/step"
	"github.com/viant/stepgate/service/approval"
	"github.com/viant/stepgate/service/notify"
)

func testInput() *step.StepInput {
	return &step.StepInput{
		RunID:            "run-1",
		StepID:           "step-apply",
		TenantID:         "acme",
		StepType:         step.TypeApply,
		RiskMode:         step.RiskStandard,
		CapabilitiesMode: step.CapabilitiesPropose,
		QueuedAt:         time.Now().UTC(),
		AttemptNumber:    1,
		MaxAttempts:      3,
	}
}

func testOutput() *step.StepOutput {
	started := time.Now().UTC().Add(-2 * time.Second)
	return &step.StepOutput{
		RunID:            "run-1",
		StepID:           "step-apply",
		ResultCode:       step.ResultOK,
		Summary:          "apply reviewed changes",
		RequiresApproval: true,
		ProposedChanges: []step.ProposedChange{
			{Path: "main.go", Operation: "modify", Summary: "fix nil check"},
		},
		Timing: step.Timing{
			StartedAt:   started,
			CompletedAt: started.Add(2 * time.Second),
			DurationMs:  2000,
		},
	}
}

func TestServiceDefaults(t *testing.T) {
	service := New()
	assert.NotNil(t, service.Store())
	assert.NotNil(t, service.Notifier())
	assert.NotNil(t, service.Events())
}

func TestGateForOutputApprovedEndToEnd(t *testing.T) {
	service := New(WithNotifier(&silentNotifier{}))
	ctx := context.Background()

	stop := approval.AutoApprove(ctx, service.Store(), nil, "acme", 5*time.Millisecond)
	defer stop()

	gate := service.GateForOutput(testInput(), testOutput(), []string{"alice"}, approval.PolicyAny,
		approval.WithPollInterval(5*time.Millisecond), approval.WithMaxWait(5*time.Second))
	result, err := gate.WaitForApproval(ctx)
	require.NoError(t, err)
	assert.True(t, result.Approved)
	assert.Equal(t, "run-1", result.Request.RunID)
	assert.Equal(t, approval.RiskHigh, result.Request.Context.RiskLevel)
	assert.Len(t, result.Request.Context.ProposedChanges, 1)
}

func TestGateForOutputRejectedEndToEnd(t *testing.T) {
	service := New(WithNotifier(&silentNotifier{}))
	ctx := context.Background()

	stop := approval.AutoReject(ctx, service.Store(), nil, "acme", "not today", 5*time.Millisecond)
	defer stop()

	gate := service.GateForOutput(testInput(), testOutput(), []string{"alice"}, approval.PolicyAny,
		approval.WithPollInterval(5*time.Millisecond), approval.WithMaxWait(5*time.Second))
	result, err := gate.WaitForApproval(ctx)
	require.NoError(t, err)
	assert.False(t, result.Approved)
	assert.Equal(t, "not today", result.Reason)
}

func TestNewGateAppliesServiceDefaults(t *testing.T) {
	escalation := &approval.EscalationPolicy{TimeoutMs: 50, Action: approval.ActionAutoReject}
	channels := []notify.Channel{{Type: notify.ChannelInApp, Enabled: true}}
	service := New(
		WithNotifier(&silentNotifier{}),
		WithEscalationPolicy(escalation),
		WithChannels(channels...),
	)

	gate := service.NewGate(&approval.Request{
		RunID:     "run-1",
		StepID:    "step-1",
		TenantID:  "acme",
		Approvers: []string{"alice"},
		Policy:    approval.PolicyAny,
	}, approval.WithPollInterval(5*time.Millisecond))

	// nobody decides, so the default escalation policy times the request out
	result, err := gate.WaitForApproval(context.Background())
	require.NoError(t, err)
	assert.True(t, result.TimedOut)
	require.NotNil(t, result.Request.EscalationPolicy)
	assert.Equal(t, escalation.Action, result.Request.EscalationPolicy.Action)
	assert.Equal(t, channels, result.Request.Channels)
}

func TestRiskFor(t *testing.T) {
	testCases := []struct {
		stepType step.StepType
		riskMode step.RiskMode
		expect   approval.RiskLevel
	}{
		{step.TypeApply, step.RiskAggressive, approval.RiskCritical},
		{step.TypeApply, step.RiskStandard, approval.RiskHigh},
		{step.TypeCode, step.RiskStandard, approval.RiskMedium},
		{step.TypeResolve, step.RiskConservative, approval.RiskMedium},
		{step.TypeTriage, step.RiskStandard, approval.RiskLow},
		{step.TypeReview, step.RiskAggressive, approval.RiskLow},
	}
	for _, testCase := range testCases {
		input := &step.StepInput{StepType: testCase.stepType, RiskMode: testCase.riskMode}
		assert.Equal(t, testCase.expect, riskFor(input), "%v/%v", testCase.stepType, testCase.riskMode)
	}
}

func TestValidateOutput(t *testing.T) {
	service := New()
	report, err := service.ValidateOutput(testOutput())
	require.NoError(t, err)
	assert.True(t, report.Valid())

	broken := testOutput()
	broken.Summary = ""
	report, err = service.ValidateOutput(broken)
	require.NoError(t, err)
	assert.False(t, report.Valid())
}

func TestOnEvent(t *testing.T) {
	service := New(WithNotifier(&silentNotifier{}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var topics []string
	stop := service.OnEvent(ctx, func(event *approval.Event) {
		mu.Lock()
		topics = append(topics, event.Topic)
		mu.Unlock()
	})
	defer stop()

	created, err := service.Store().CreateRequest(ctx, &approval.Request{
		RunID:     "run-1",
		StepID:    "step-1",
		TenantID:  "acme",
		Approvers: []string{"alice"},
		Policy:    approval.PolicyAny,
	})
	require.NoError(t, err)
	_, err = approval.Approve(ctx, service.Store(), nil, created.ID, "alice", "")
	require.NoError(t, err)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		seen := len(topics)
		mu.Unlock()
		if seen >= 3 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, topics, approval.TopicRequestCreated)
	assert.Contains(t, topics, approval.TopicDecisionCreated)
	assert.Contains(t, topics, approval.TopicRequestResolved)
}

// silentNotifier keeps test output clean.
type silentNotifier struct{}

func (n *silentNotifier) Send(context.Context, notify.Channel, *notify.Message) (*notify.SendResult, error) {
	return &notify.SendResult{Success: true}, nil
}

func (n *silentNotifier) SendToAll(context.Context, []notify.Channel, *notify.Message) []notify.SendResult {
	return nil
}

func (n *silentNotifier) TestChannel(context.Context, notify.Channel) error { return nil }
