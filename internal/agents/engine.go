package agents

import (
	"context"
	"fmt"
	"time"

	"minerva/internal/adapters/ai"
	"minerva/internal/domain/workflow"
	"minerva/internal/metrics"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// Engine drives a workflow through its state machine, executing steps
// sequentially against the registry. The engine mutates the workflow in
// memory only; persisting transitions is the caller's job.
type Engine struct {
	registry *Registry
	log      *logger.Logger
}

// NewEngine constructs a workflow engine over the given registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{
		registry: registry,
		log:      logger.Get().With("component", "workflow_engine"),
	}
}

// Run executes the workflow's steps in order and moves it to a terminal
// status. It returns the typed agent results parallel to wf.Results so
// callers can unwrap payloads the serialized form flattens away.
//
// Under halt_on_error the first failing step ends the run: wf.Results holds
// exactly one entry per attempted step and the status becomes failed. Under
// continue_on_error every step runs; the status is completed when all
// succeeded and partially_completed otherwise.
//
// A workflow in a terminal status is never re-executed.
func (e *Engine) Run(ctx context.Context, wf *workflow.Workflow) ([]*Result, error) {
	if wf.Status.Terminal() {
		return nil, errors.Wrapf(errors.ErrWorkflowTerminal, "workflow %s is already %s", wf.ID, wf.Status)
	}

	wf.Status = workflow.StatusRunning
	wf.Results = make(workflow.StepResults, 0, len(wf.Steps))
	results := make([]*Result, 0, len(wf.Steps))
	failed := false
	var usage ai.Usage

	e.log.Infow("Workflow started", "workflow_id", wf.ID, "name", wf.Name, "steps", len(wf.Steps), "policy", wf.Policy)

	for i, step := range wf.Steps {
		res := e.runStep(ctx, wf, i, step, results)
		results = append(results, res)
		wf.Results = append(wf.Results, stepResult(step, res))
		usage.Add(res.Usage)

		metrics.WorkflowSteps.WithLabelValues(step.AgentKind, statusLabel(res.Success)).Inc()

		if !res.Success {
			failed = true
			if wf.Policy == workflow.HaltOnError {
				e.log.Warnw("Workflow halted on step failure",
					"workflow_id", wf.ID, "step", i, "agent", step.AgentKind, "error", res.Error)
				break
			}
		}
	}

	switch {
	case failed && wf.Policy == workflow.HaltOnError:
		wf.Status = workflow.StatusFailed
	case failed:
		wf.Status = workflow.StatusPartiallyCompleted
	default:
		wf.Status = workflow.StatusCompleted
	}
	now := time.Now().UTC()
	wf.CompletedAt = &now

	metrics.WorkflowExecutions.WithLabelValues(string(wf.Status)).Inc()
	e.log.Infow("Workflow finished",
		"workflow_id", wf.ID, "status", wf.Status, "steps_run", len(wf.Results), "total_tokens", usage.TotalTokens)

	return results, nil
}

// runStep resolves the step's parameters and agent and executes it. Every
// failure mode is folded into a failed Result; runStep never panics the run.
func (e *Engine) runStep(ctx context.Context, wf *workflow.Workflow, idx int, step workflow.Step, prior []*Result) *Result {
	kind := Kind(step.AgentKind)
	start := time.Now()

	params, err := e.resolveParameters(step, prior)
	if err != nil {
		return timed(Failure(kind, err.Error()), start)
	}

	agent, err := e.registry.Resolve(kind)
	if err != nil {
		return timed(Failure(kind, fmt.Sprintf("unknown agent kind %q", step.AgentKind)), start)
	}

	e.log.Infow("Step started", "workflow_id", wf.ID, "step", idx, "agent", kind)

	res, err := agent.Execute(ctx, params)
	if err != nil {
		// Infrastructure errors (storage down, context canceled) are
		// recorded as step failures so the policy decides what happens.
		e.log.Errorw("Step errored", "workflow_id", wf.ID, "step", idx, "agent", kind, "error", err)
		metrics.ObserveAgentCall(string(kind), false, time.Since(start), 0, 0)
		return timed(Failure(kind, err.Error()), start)
	}

	metrics.ObserveAgentCall(string(kind), res.Success, time.Since(start), res.Usage.PromptTokens, res.Usage.CompletionTokens)
	return timed(res, start)
}

// resolveParameters clones the step's static parameters and splices in the
// referenced output of an earlier step, if any. Referencing a failed step
// or a missing output field fails the step without invoking its agent.
func (e *Engine) resolveParameters(step workflow.Step, prior []*Result) (Parameters, error) {
	params := Parameters(step.Parameters).Clone()

	if step.Ref == nil {
		return params, nil
	}

	src := prior[step.Ref.Step]
	if !src.Success {
		return nil, errors.Newf("step %d failed; its output %q is unavailable", step.Ref.Step, step.Ref.Field)
	}
	value, ok := src.Outputs[step.Ref.Field]
	if !ok {
		return nil, errors.Newf("step %d produced no output field %q", step.Ref.Step, step.Ref.Field)
	}

	params[step.Ref.ParamName()] = value
	return params, nil
}

func stepResult(step workflow.Step, res *Result) workflow.StepResult {
	return workflow.StepResult{
		AgentKind:  step.AgentKind,
		Success:    res.Success,
		Output:     res.Outputs,
		Error:      res.Error,
		DurationMs: res.DurationMs,
	}
}

func timed(res *Result, start time.Time) *Result {
	res.DurationMs = time.Since(start).Milliseconds()
	return res
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
