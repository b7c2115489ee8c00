package step

import "time"

// StepType identifies the kind of work a step performs.
type StepType string

const (
	TypeTriage  StepType = "triage"
	TypePlan    StepType = "plan"
	TypeCode    StepType = "code"
	TypeResolve StepType = "resolve"
	TypeReview  StepType = "review"
	TypeApply   StepType = "apply"
)

// StepTypes lists all recognised step types.
var StepTypes = []StepType{TypeTriage, TypePlan, TypeCode, TypeResolve, TypeReview, TypeApply}

// IsValid reports whether t is a member of the closed step-type set.
func (t StepType) IsValid() bool {
	for _, candidate := range StepTypes {
		if t == candidate {
			return true
		}
	}
	return false
}

// RiskMode controls how aggressively the pipeline may act.
type RiskMode string

const (
	RiskConservative RiskMode = "conservative"
	RiskStandard     RiskMode = "standard"
	RiskAggressive   RiskMode = "aggressive"
)

// CapabilitiesMode constrains which side effects a step executor may perform.
type CapabilitiesMode string

const (
	CapabilitiesReadOnly CapabilitiesMode = "readOnly"
	CapabilitiesPropose  CapabilitiesMode = "propose"
	CapabilitiesFull     CapabilitiesMode = "full"
)

// Repository identifies a source-control repository a step operates on.
type Repository struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	DefaultBranch string `json:"defaultBranch,omitempty"`
	CloneURL      string `json:"cloneUrl,omitempty"`
}

// PullRequest identifies a pull request in the execution context.
type PullRequest struct {
	Number     int    `json:"number"`
	HeadBranch string `json:"headBranch,omitempty"`
	BaseBranch string `json:"baseBranch,omitempty"`
	URL        string `json:"url,omitempty"`
}

// Issue identifies an issue-tracker item in the execution context.
type Issue struct {
	Number int      `json:"number"`
	Title  string   `json:"title,omitempty"`
	Labels []string `json:"labels,omitempty"`
	URL    string   `json:"url,omitempty"`
}

// ModelConfig carries the model selection for a step executor.
type ModelConfig struct {
	Provider    string  `json:"provider,omitempty"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"maxTokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// StepInput is the request half of the step envelope. It is immutable once
// constructed and owned by the orchestrator for the lifetime of one attempt.
type StepInput struct {
	RunID    string `json:"runId"`
	StepID   string `json:"stepId"`
	TenantID string `json:"tenantId"`

	Repository  *Repository  `json:"repository,omitempty"`
	PullRequest *PullRequest `json:"pullRequest,omitempty"`
	Issue       *Issue       `json:"issue,omitempty"`

	StepType         StepType         `json:"stepType"`
	RiskMode         RiskMode         `json:"riskMode"`
	CapabilitiesMode CapabilitiesMode `json:"capabilitiesMode"`

	PreviousOutput *StepOutput            `json:"previousOutput,omitempty"`
	Artifacts      map[string]ArtifactRef `json:"artifacts,omitempty"`
	Model          *ModelConfig           `json:"model,omitempty"`
	Params         map[string]interface{} `json:"params,omitempty"`

	QueuedAt      time.Time `json:"queuedAt"`
	AttemptNumber int       `json:"attemptNumber"`
	MaxAttempts   int       `json:"maxAttempts"`
}
