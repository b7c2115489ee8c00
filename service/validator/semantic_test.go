package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/stepgate/model/step"
)

func issueAt(issues []Issue, path string) *Issue {
	for i := range issues {
		if issues[i].Path == path {
			return &issues[i]
		}
	}
	return nil
}

func TestValidateOutputSemantics(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	testCases := []struct {
		name     string
		mutate   func(output *step.StepOutput)
		path     string
		severity Severity
	}{
		{
			name: "completedAt precedes startedAt",
			mutate: func(output *step.StepOutput) {
				output.Timing.CompletedAt = started.Add(-time.Second)
			},
			path:     "timing.completedAt",
			severity: SeverityError,
		},
		{
			name: "fatal without error detail",
			mutate: func(output *step.StepOutput) {
				output.ResultCode = step.ResultFatal
			},
			path:     "error",
			severity: SeverityError,
		},
		{
			name: "retryable without error detail",
			mutate: func(output *step.StepOutput) {
				output.ResultCode = step.ResultRetryable
			},
			path:     "error",
			severity: SeverityError,
		},
		{
			name: "approval without proposed changes",
			mutate: func(output *step.StepOutput) {
				output.RequiresApproval = true
			},
			path:     "proposedChanges",
			severity: SeverityWarning,
		},
		{
			name: "duration disagrees with timestamps",
			mutate: func(output *step.StepOutput) {
				output.Timing.DurationMs = 5000
			},
			path:     "timing.durationMs",
			severity: SeverityWarning,
		},
		{
			name: "zero duration against real timestamp delta",
			mutate: func(output *step.StepOutput) {
				output.Timing.DurationMs = 0
			},
			path:     "timing.durationMs",
			severity: SeverityWarning,
		},
		{
			name: "token total mismatch",
			mutate: func(output *step.StepOutput) {
				output.Cost = &step.Cost{Tokens: step.TokenUsage{Input: 10, Output: 5, Total: 20}}
			},
			path:     "cost.tokens.total",
			severity: SeverityError,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			output := validOutput()
			testCase.mutate(output)
			issues := ValidateOutputSemantics(output)
			issue := issueAt(issues, testCase.path)
			require.NotNil(t, issue, "expected issue at %v, got %v", testCase.path, issues)
			assert.Equal(t, testCase.severity, issue.Severity)
		})
	}
}

func TestValidateOutputSemanticsAcceptsConsistentOutput(t *testing.T) {
	output := validOutput()
	output.ResultCode = step.ResultFatal
	output.Error = &step.ErrorDetail{Code: "merge_conflict", Message: "unresolvable conflict"}
	output.Cost = &step.Cost{Tokens: step.TokenUsage{Input: 10, Output: 5, Total: 15}}
	assert.Empty(t, ValidateOutputSemantics(output))
}

func TestValidateOutputSemanticsDurationWithinTolerance(t *testing.T) {
	output := validOutput()
	output.Timing.DurationMs = 2050 // 50ms off a 2s delta
	assert.Empty(t, ValidateOutputSemantics(output))
}

func TestValidateOutputSemanticsFlagsBrokenArtifact(t *testing.T) {
	output := validOutput()
	output.Artifacts = map[string]step.ArtifactRef{
		"log": {Kind: step.ArtifactPointer},
	}
	issues := ValidateOutputSemantics(output)
	require.NotNil(t, issueAt(issues, "artifacts.log"))
}

func TestValidateStepOutputFull(t *testing.T) {
	report, err := ValidateStepOutputFull(validOutput())
	require.NoError(t, err)
	assert.True(t, report.Valid())
	assert.Empty(t, report.Warnings())

	// structural failure suppresses semantic checks
	broken := validOutput()
	broken.RunID = ""
	broken.ResultCode = step.ResultFatal
	report, err = ValidateStepOutputFull(broken)
	require.NoError(t, err)
	assert.False(t, report.Valid())
	assert.NotEmpty(t, report.Structural)
	assert.Empty(t, report.Semantic)

	// warnings alone do not invalidate
	warned := validOutput()
	warned.RequiresApproval = true
	report, err = ValidateStepOutputFull(warned)
	require.NoError(t, err)
	assert.True(t, report.Valid())
	assert.Len(t, report.Warnings(), 1)
}
