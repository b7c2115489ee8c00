package step

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultCodeTables(t *testing.T) {
	testCases := []struct {
		code           ResultCode
		canRetry       bool
		shouldContinue bool
		terminal       bool
	}{
		{ResultOK, false, true, true},
		{ResultRetryable, true, false, true},
		{ResultFatal, false, false, true},
		{ResultBlocked, false, false, false},
		{ResultSkipped, false, true, true},
	}
	for _, testCase := range testCases {
		t.Run(string(testCase.code), func(t *testing.T) {
			assert.Equal(t, testCase.canRetry, testCase.code.CanRetry())
			assert.Equal(t, testCase.shouldContinue, testCase.code.ShouldContinue())
			assert.Equal(t, testCase.terminal, testCase.code.IsTerminal())
			assert.True(t, testCase.code.IsValid())
		})
	}
	assert.False(t, ResultCode("unknown").IsValid())
}

func TestStepTypeIsValid(t *testing.T) {
	for _, stepType := range StepTypes {
		assert.True(t, stepType.IsValid())
	}
	assert.False(t, StepType("deploy").IsValid())
}
