package validator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/stepgate/model/step"
)

func validInput() *step.StepInput {
	return &step.StepInput{
		RunID:            "run-1",
		StepID:           "step-1",
		TenantID:         "acme",
		StepType:         step.TypeCode,
		RiskMode:         step.RiskStandard,
		CapabilitiesMode: step.CapabilitiesPropose,
		QueuedAt:         time.Now(),
		AttemptNumber:    1,
		MaxAttempts:      3,
	}
}

func validOutput() *step.StepOutput {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &step.StepOutput{
		RunID:      "run-1",
		StepID:     "step-1",
		ResultCode: step.ResultOK,
		Summary:    "resolved merge conflict",
		Timing: step.Timing{
			StartedAt:   started,
			CompletedAt: started.Add(2 * time.Second),
			DurationMs:  2000,
		},
	}
}

func TestValidateStepInput(t *testing.T) {
	violations, err := ValidateStepInput(validInput())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateStepInputAggregatesViolations(t *testing.T) {
	document := map[string]interface{}{
		"runId":            "run-1",
		"stepType":         "deploy",
		"riskMode":         "standard",
		"capabilitiesMode": "propose",
		"queuedAt":         "2026-01-02T03:04:05Z",
		"attemptNumber":    0,
		"maxAttempts":      3,
	}
	violations, err := ValidateStepInput(document)
	require.NoError(t, err)
	// missing stepId + tenantId, bad stepType enum, attemptNumber below minimum
	assert.GreaterOrEqual(t, len(violations), 4)
	paths := make([]string, 0, len(violations))
	for _, violation := range violations {
		assert.NotEmpty(t, violation.Message)
		paths = append(paths, violation.Path)
	}
	assert.Contains(t, paths, "stepType")
	assert.Contains(t, paths, "attemptNumber")
}

func TestValidateStepOutput(t *testing.T) {
	violations, err := ValidateStepOutput(validOutput())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateStepOutputRejectsNegativeTokens(t *testing.T) {
	output := validOutput()
	output.Cost = &step.Cost{Tokens: step.TokenUsage{Input: -1, Output: 2, Total: 1}}
	violations, err := ValidateStepOutput(output)
	require.NoError(t, err)
	require.NotEmpty(t, violations)
	assert.Contains(t, violations[0].Path, "tokens")
}

func TestValidatePartialAcceptsIncompleteEnvelope(t *testing.T) {
	violations, err := ValidateStepInputPartial(map[string]interface{}{"runId": "run-1"})
	require.NoError(t, err)
	assert.Empty(t, violations)

	violations, err = ValidateStepOutputPartial(map[string]interface{}{
		"resultCode": "ok",
		"timing":     map[string]interface{}{"durationMs": 10},
	})
	require.NoError(t, err)
	assert.Empty(t, violations)

	// present fields are still type checked
	violations, err = ValidateStepOutputPartial(map[string]interface{}{"resultCode": "done"})
	require.NoError(t, err)
	assert.NotEmpty(t, violations)
}

func TestAssertValidStepOutputSummarisesFirstThreePaths(t *testing.T) {
	err := AssertValidStepOutput(map[string]interface{}{})
	require.Error(t, err)
	var validationErr *StepValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "StepOutput", validationErr.Envelope)
	assert.GreaterOrEqual(t, len(validationErr.Violations), 4)
	assert.Contains(t, err.Error(), "and")
	assert.Contains(t, err.Error(), "more")
}

func TestParseStepOutputRoundTrip(t *testing.T) {
	data, err := json.Marshal(validOutput())
	require.NoError(t, err)
	output, err := ParseStepOutput(data)
	require.NoError(t, err)
	assert.Equal(t, "run-1", output.RunID)
	assert.Equal(t, step.ResultOK, output.ResultCode)

	_, err = ParseStepOutput([]byte(`{"runId":"run-1"}`))
	assert.Error(t, err)
}
