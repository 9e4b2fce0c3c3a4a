package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"minerva/internal/domain/query"
	"minerva/internal/domain/workflow"
	"minerva/internal/events"
	"minerva/internal/metrics"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// Orchestrator is the single entry point for callers: it routes free-text
// queries to the right agent and executes multi-step workflow definitions.
// Every accepted request leaves exactly one persisted record behind (a
// Query for HandleQuery, a Workflow for HandleWorkflow) whether or not the
// agents succeeded.
type Orchestrator struct {
	resolver  *Resolver
	engine    *Engine
	registry  *Registry
	queries   query.Repository
	workflows workflow.Repository
	publisher *events.Publisher
	log       *logger.Logger
}

// NewOrchestrator wires the orchestrator. publisher may be nil when event
// publishing is disabled.
func NewOrchestrator(
	resolver *Resolver,
	engine *Engine,
	registry *Registry,
	queries query.Repository,
	workflows workflow.Repository,
	publisher *events.Publisher,
) *Orchestrator {
	return &Orchestrator{
		resolver:  resolver,
		engine:    engine,
		registry:  registry,
		queries:   queries,
		workflows: workflows,
		publisher: publisher,
		log:       logger.Get().With("component", "orchestrator"),
	}
}

// QueryRequest is one free-text request. Filters are explicit caller-typed
// entities; they override whatever the resolver extracts, field by field.
type QueryRequest struct {
	Text    string
	Filters query.Entities
}

// HandleQuery resolves the request's intent, runs the matching agent as a
// single-step halt-on-error workflow, and persists the outcome as a Query
// record. An agent failure is a recorded outcome, not an error: the returned
// error is non-nil only for invalid input or when the record could not be
// persisted (ErrStorageUnavailable).
func (o *Orchestrator) HandleQuery(ctx context.Context, req QueryRequest) (*query.Query, error) {
	if req.Text == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "query text is required")
	}
	acceptedAt := time.Now().UTC()

	kind, entities := o.resolver.Resolve(ctx, req.Text, req.Filters)

	// A QA query with no extracted question is about the text itself.
	if kind == AgentQA && entities.Question == "" {
		entities.Question = req.Text
	}

	wf, err := workflow.New(
		fmt.Sprintf("query:%s", kind),
		[]workflow.Step{{AgentKind: string(kind), Parameters: parametersFromEntities(entities)}},
		workflow.HaltOnError,
	)
	if err != nil {
		return nil, err
	}

	results, err := o.engine.Run(ctx, wf)
	if err != nil {
		return nil, err
	}
	res := results[0]

	rec := &query.Query{
		ID:               uuid.New(),
		Text:             req.Text,
		Intent:           string(kind),
		Entities:         entities,
		Answer:           answerFor(res),
		ReportsUsed:      res.ReportsUsed,
		MarketDataUsed:   res.MarketDataUsed,
		PromptTokens:     res.Usage.PromptTokens,
		CompletionTokens: res.Usage.CompletionTokens,
		CostUSD:          res.CostUSD,
		CreatedAt:        acceptedAt,
	}

	if err := o.queries.Store(ctx, rec); err != nil {
		return nil, errors.Wrapf(errors.ErrStorageUnavailable, "store query record: %v", err)
	}

	metrics.QueriesHandled.WithLabelValues(rec.Intent, statusLabel(res.Success)).Inc()
	o.publisher.PublishQueryHandled(ctx, events.QueryHandledEvent{
		QueryID:   rec.ID,
		Intent:    rec.Intent,
		Succeeded: res.Success,
		CreatedAt: rec.CreatedAt,
	})

	o.log.Infow("Query handled", "query_id", rec.ID, "intent", rec.Intent, "success", res.Success)
	return rec, nil
}

// HandleWorkflow validates, persists, executes, and re-persists a workflow.
// Unknown agent kinds are rejected before anything is stored or run.
func (o *Orchestrator) HandleWorkflow(ctx context.Context, name string, steps []workflow.Step, policy workflow.FailurePolicy) (*workflow.Workflow, error) {
	wf, err := workflow.New(name, steps, policy)
	if err != nil {
		return nil, err
	}
	for i, step := range steps {
		if _, err := o.registry.Resolve(Kind(step.AgentKind)); err != nil {
			return nil, errors.Wrapf(errors.ErrUnknownAgentKind, "step %d: %q", i, step.AgentKind)
		}
	}

	if err := o.workflows.Create(ctx, wf); err != nil {
		return nil, errors.Wrapf(errors.ErrStorageUnavailable, "create workflow record: %v", err)
	}

	if _, err := o.engine.Run(ctx, wf); err != nil {
		return nil, err
	}

	if err := o.workflows.Update(ctx, wf); err != nil {
		return nil, errors.Wrapf(errors.ErrStorageUnavailable, "update workflow record: %v", err)
	}

	o.publisher.PublishWorkflowFinished(ctx, events.WorkflowFinishedEvent{
		WorkflowID: wf.ID,
		Name:       wf.Name,
		Status:     string(wf.Status),
		StepsTotal: len(wf.Steps),
		StepsRun:   len(wf.Results),
		CreatedAt:  time.Now().UTC(),
	})

	return wf, nil
}

// GetQuery returns a persisted query record.
func (o *Orchestrator) GetQuery(ctx context.Context, id uuid.UUID) (*query.Query, error) {
	return o.queries.GetByID(ctx, id)
}

// GetWorkflow returns a persisted workflow record.
func (o *Orchestrator) GetWorkflow(ctx context.Context, id uuid.UUID) (*workflow.Workflow, error) {
	return o.workflows.GetByID(ctx, id)
}

// answerFor flattens the agent result into the query record's answer text.
// Failed executions document the reason so the record explains itself.
func answerFor(res *Result) string {
	if !res.Success {
		return fmt.Sprintf("Request failed: %s", res.Error)
	}
	switch {
	case res.Answer != "":
		return res.Answer
	case res.Report != nil:
		if res.Report.Summary != "" {
			return fmt.Sprintf("Generated report %q: %s", res.Report.Title, res.Report.Summary)
		}
		return fmt.Sprintf("Generated report %q", res.Report.Title)
	case len(res.DataPoints) > 0:
		return fmt.Sprintf("Collected %d market data points", len(res.DataPoints))
	default:
		return "Request completed"
	}
}

// parametersFromEntities maps typed entities onto the loose parameter bag
// agents consume.
func parametersFromEntities(e query.Entities) map[string]interface{} {
	params := make(map[string]interface{})
	if e.Sector != "" {
		params["sector"] = e.Sector
	}
	if e.Country != "" {
		params["country"] = e.Country
	}
	if e.FinancialProduct != "" {
		params["financial_product"] = e.FinancialProduct
	}
	if e.CustomKeyword != "" {
		params["custom_keyword"] = e.CustomKeyword
	}
	if e.Question != "" {
		params["question"] = e.Question
	}
	return params
}
