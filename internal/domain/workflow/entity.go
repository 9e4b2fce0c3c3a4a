package workflow

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"minerva/pkg/errors"
)

// Status is the workflow state machine position.
// Pending → Running → {Completed, Failed, PartiallyCompleted}
type Status string

const (
	StatusPending            Status = "pending"
	StatusRunning            Status = "running"
	StatusCompleted          Status = "completed"
	StatusFailed             Status = "failed"
	StatusPartiallyCompleted Status = "partially_completed"
)

// Terminal reports whether the status is final. Terminal workflows are never
// re-executed; re-running requires a new Workflow record.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusPartiallyCompleted:
		return true
	}
	return false
}

// FailurePolicy controls what the engine does when a step fails.
type FailurePolicy string

const (
	// HaltOnError stops at the first failing step; later steps are never
	// attempted and have no result entries.
	HaltOnError FailurePolicy = "halt_on_error"

	// ContinueOnError records the failure and proceeds to the next step.
	ContinueOnError FailurePolicy = "continue_on_error"
)

func (p FailurePolicy) valid() bool {
	return p == HaltOnError || p == ContinueOnError
}

// OutputRef splices a prior step's output field into this step's
// parameters. Step must be a strictly smaller index than the referencing
// step; Param names the parameter to set (defaults to Field).
type OutputRef struct {
	Step  int    `json:"step"`
	Field string `json:"field"`
	Param string `json:"param,omitempty"`
}

// ParamName returns the parameter name the referenced value is spliced
// under.
func (r OutputRef) ParamName() string {
	if r.Param != "" {
		return r.Param
	}
	return r.Field
}

// Step is one workflow step definition: which agent runs and with what
// parameters.
type Step struct {
	AgentKind  string                 `json:"agent_kind"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Ref        *OutputRef             `json:"ref,omitempty"`
}

// StepResult is the recorded outcome of one executed step.
type StepResult struct {
	AgentKind  string                 `json:"agent_kind"`
	Success    bool                   `json:"success"`
	Output     map[string]interface{} `json:"output,omitempty"`
	Error      string                 `json:"error,omitempty"`
	DurationMs int64                  `json:"duration_ms"`
}

// Steps is a JSONB-stored ordered step definition sequence.
type Steps []Step

// Value implements driver.Valuer
func (s Steps) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner
func (s *Steps) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = nil
		return nil
	default:
		return errors.Newf("cannot scan %T into Steps", src)
	}
}

// StepResults is a JSONB-stored ordered step result sequence. It never has
// more entries than the step definitions.
type StepResults []StepResult

// Value implements driver.Valuer
func (s StepResults) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]StepResult{})
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner
func (s *StepResults) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = nil
		return nil
	default:
		return errors.Newf("cannot scan %T into StepResults", src)
	}
}

// Workflow is a named, ordered sequence of agent invocations and their
// outcomes. Mutated only by the engine while running; immutable once the
// status is terminal.
type Workflow struct {
	ID          uuid.UUID     `db:"id"`
	Name        string        `db:"name"`
	Policy      FailurePolicy `db:"policy"`
	Steps       Steps         `db:"steps"`
	Results     StepResults   `db:"results"`
	Status      Status        `db:"status"`
	CreatedAt   time.Time     `db:"created_at"`
	CompletedAt *time.Time    `db:"completed_at"`
}

// New validates the step definitions and constructs a Pending workflow.
// Structurally invalid definitions are rejected here, before any agent or
// storage call is made.
func New(name string, steps []Step, policy FailurePolicy) (*Workflow, error) {
	if name == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "workflow name is required")
	}
	if len(steps) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "workflow needs at least one step")
	}
	if !policy.valid() {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown failure policy %q", policy)
	}

	for i, step := range steps {
		if step.AgentKind == "" {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "step %d has no agent kind", i)
		}
		if step.Ref == nil {
			continue
		}
		if step.Ref.Field == "" {
			return nil, errors.Wrapf(errors.ErrInvalidStepReference, "step %d references an empty output field", i)
		}
		if step.Ref.Step < 0 || step.Ref.Step >= i {
			return nil, errors.Wrapf(errors.ErrInvalidStepReference,
				"step %d references step %d; only strictly earlier steps are allowed", i, step.Ref.Step)
		}
	}

	return &Workflow{
		ID:        uuid.New(),
		Name:      name,
		Policy:    policy,
		Steps:     steps,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}
