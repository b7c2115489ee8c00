package step

// ResultCode classifies the outcome of one step attempt. It is a lookup into
// fixed policy tables consumed by the orchestrator, not a free-form label.
type ResultCode string

const (
	// ResultOK indicates the step succeeded and the pipeline may advance.
	ResultOK ResultCode = "ok"
	// ResultRetryable indicates a transient failure; the orchestrator may
	// retry the same step.
	ResultRetryable ResultCode = "retryable"
	// ResultFatal indicates a permanent failure; the run should abort.
	ResultFatal ResultCode = "fatal"
	// ResultBlocked indicates the step is awaiting external input, typically
	// a human approval decision. A blocked step is not retried on a timer; it
	// is unblocked by an external decision.
	ResultBlocked ResultCode = "blocked"
	// ResultSkipped indicates the step was intentionally not executed; the
	// pipeline may advance.
	ResultSkipped ResultCode = "skipped"
)

// ResultCodes lists all recognised result codes.
var ResultCodes = []ResultCode{ResultOK, ResultRetryable, ResultFatal, ResultBlocked, ResultSkipped}

// IsValid reports whether c is a member of the closed result-code set.
func (c ResultCode) IsValid() bool {
	for _, candidate := range ResultCodes {
		if c == candidate {
			return true
		}
	}
	return false
}

// CanRetry reports whether the orchestrator may retry a step that produced
// this result.
func (c ResultCode) CanRetry() bool {
	return c == ResultRetryable
}

// ShouldContinue reports whether the orchestrator may advance to the next
// step after this result.
func (c ResultCode) ShouldContinue() bool {
	return c == ResultOK || c == ResultSkipped
}

// IsTerminal reports whether this result ends the current attempt without
// further external input.
func (c ResultCode) IsTerminal() bool {
	return c != ResultBlocked
}
