package step

import "time"

// Timing records when a step attempt started and finished, with optional
// sub-phase durations keyed by phase name.
type Timing struct {
	StartedAt   time.Time        `json:"startedAt"`
	CompletedAt time.Time        `json:"completedAt"`
	DurationMs  int64            `json:"durationMs"`
	Phases      map[string]int64 `json:"phases,omitempty"`
}

// TokenUsage counts tokens consumed by a model invocation.
type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

// Cost captures the model spend attributed to one step attempt.
type Cost struct {
	Model        string     `json:"model,omitempty"`
	Provider     string     `json:"provider,omitempty"`
	Tokens       TokenUsage `json:"tokens"`
	EstimatedUSD float64    `json:"estimatedUsd,omitempty"`
}

// ErrorDetail describes a step failure in a structured form.
type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// IsPopulated reports whether the error carries an actual message.
func (e *ErrorDetail) IsPopulated() bool {
	return e != nil && e.Message != ""
}

// ProposedChange describes one file-level change a step proposes to apply.
// Patch, when present, is a unified diff against the current file content.
type ProposedChange struct {
	Path      string `json:"path"`
	Operation string `json:"operation"` // create | modify | delete
	Patch     string `json:"patch,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// StepOutput is the response half of the step envelope. It is owned by the
// step executor and never mutated after creation; a correction requires a
// new StepOutput.
type StepOutput struct {
	RunID  string `json:"runId"`
	StepID string `json:"stepId"`

	ResultCode ResultCode             `json:"resultCode"`
	Summary    string                 `json:"summary"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Error      *ErrorDetail           `json:"error,omitempty"`
	Artifacts  map[string]ArtifactRef `json:"artifacts,omitempty"`

	Timing Timing `json:"timing"`
	Cost   *Cost  `json:"cost,omitempty"`

	NextStep         StepType         `json:"nextStep,omitempty"`
	RequiresApproval bool             `json:"requiresApproval,omitempty"`
	ProposedChanges  []ProposedChange `json:"proposedChanges,omitempty"`
}
