package agents

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/adapters/ai"
	"minerva/internal/domain/query"
	"minerva/internal/domain/workflow"
	"minerva/pkg/errors"
)

func newTestOrchestrator(provider ai.ChatProvider, queries *memQueries, workflows *memWorkflows, agents ...Agent) *Orchestrator {
	registry := NewRegistry(agents...)
	resolver := NewResolver(provider, "gpt-4o-mini", 0.1, nil)
	engine := NewEngine(registry)
	return NewOrchestrator(resolver, engine, registry, queries, workflows, nil)
}

func TestOrchestrator_HandleQuery(t *testing.T) {
	ctx := context.Background()

	provider := &fakeProvider{
		chatFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			return &ai.ChatResponse{
				Content: `{"intent": "question_answering", "parameters": {"question": "what is the leasing market size in France?", "country": "France"}}`,
				Usage:   ai.Usage{PromptTokens: 120, CompletionTokens: 40, TotalTokens: 160},
			}, nil
		},
	}

	reportID := uuid.New()
	pointID := uuid.New()
	qa := &fakeAgent{kind: AgentQA, executeFunc: func(_ context.Context, p Parameters) (*Result, error) {
		return &Result{
			Kind:           AgentQA,
			Success:        true,
			Answer:         "The French leasing market is worth €5.2 billion.",
			ReportsUsed:    query.UUIDList{reportID},
			MarketDataUsed: query.UUIDList{pointID},
			Usage:          ai.Usage{PromptTokens: 800, CompletionTokens: 120},
			Outputs:        map[string]interface{}{"answer": "The French leasing market is worth €5.2 billion."},
		}, nil
	}}

	queries := &memQueries{}
	workflows := newMemWorkflows()
	orch := newTestOrchestrator(provider, queries, workflows, qa)

	rec, err := orch.HandleQuery(ctx, QueryRequest{Text: "what is the leasing market size in France?"})
	require.NoError(t, err)

	assert.Equal(t, "qa", rec.Intent)
	assert.Equal(t, "France", rec.Entities.Country)
	assert.Equal(t, "The French leasing market is worth €5.2 billion.", rec.Answer)
	assert.Equal(t, 800, rec.PromptTokens)
	assert.Equal(t, 120, rec.CompletionTokens)
	assert.Equal(t, query.UUIDList{reportID}, rec.ReportsUsed)
	assert.Equal(t, query.UUIDList{pointID}, rec.MarketDataUsed)
	assert.False(t, rec.CreatedAt.IsZero())

	assert.Len(t, queries.records, 1, "exactly one query record persisted")
	assert.Equal(t, 0, workflows.creates, "single queries never persist a workflow record")
}

func TestOrchestrator_HandleQuery_AgentFailureIsRecorded(t *testing.T) {
	ctx := context.Background()

	provider := &fakeProvider{
		chatFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			return &ai.ChatResponse{Content: `{"intent": "data_collection", "parameters": {}}`}, nil
		},
	}
	collector := &fakeAgent{kind: AgentDataCollector, executeFunc: func(_ context.Context, p Parameters) (*Result, error) {
		return Failure(AgentDataCollector, "sector is required for data collection"), nil
	}}

	queries := &memQueries{}
	orch := newTestOrchestrator(provider, queries, newMemWorkflows(), collector)

	rec, err := orch.HandleQuery(ctx, QueryRequest{Text: "collect some data"})
	require.NoError(t, err, "an agent failure is an outcome, not an error")

	assert.Contains(t, rec.Answer, "sector is required")
	assert.Len(t, queries.records, 1, "failed executions still leave one record")
}

func TestOrchestrator_HandleQuery_QuestionDefaultsToText(t *testing.T) {
	ctx := context.Background()

	provider := &fakeProvider{
		chatFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			return &ai.ChatResponse{Content: `{"intent": "question_answering", "parameters": {}}`}, nil
		},
	}

	var seen Parameters
	qa := &fakeAgent{kind: AgentQA, executeFunc: func(_ context.Context, p Parameters) (*Result, error) {
		seen = p
		return &Result{Kind: AgentQA, Success: true, Answer: "42"}, nil
	}}

	orch := newTestOrchestrator(provider, &memQueries{}, newMemWorkflows(), qa)

	_, err := orch.HandleQuery(ctx, QueryRequest{Text: "how big is the market?"})
	require.NoError(t, err)
	assert.Equal(t, "how big is the market?", seen.String("question"))
}

func TestOrchestrator_HandleQuery_EmptyText(t *testing.T) {
	orch := newTestOrchestrator(&fakeProvider{}, &memQueries{}, newMemWorkflows(), &fakeAgent{kind: AgentQA})

	_, err := orch.HandleQuery(context.Background(), QueryRequest{})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestOrchestrator_HandleQuery_StorageUnavailable(t *testing.T) {
	ctx := context.Background()

	provider := &fakeProvider{
		chatFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			return &ai.ChatResponse{Content: `{"intent": "question_answering", "parameters": {}}`}, nil
		},
	}
	queries := &memQueries{storeErr: errors.New("connection refused")}
	orch := newTestOrchestrator(provider, queries, newMemWorkflows(), &fakeAgent{kind: AgentQA})

	_, err := orch.HandleQuery(ctx, QueryRequest{Text: "anything"})
	assert.True(t, errors.Is(err, errors.ErrStorageUnavailable))
}

func TestOrchestrator_HandleWorkflow(t *testing.T) {
	ctx := context.Background()

	collector := &fakeAgent{kind: AgentDataCollector, executeFunc: func(_ context.Context, p Parameters) (*Result, error) {
		return &Result{Kind: AgentDataCollector, Success: true, Outputs: map[string]interface{}{"sector": "automotive"}}, nil
	}}
	reporter := &fakeAgent{kind: AgentReportGenerator}

	workflows := newMemWorkflows()
	orch := newTestOrchestrator(&fakeProvider{}, &memQueries{}, workflows, collector, reporter)

	wf, err := orch.HandleWorkflow(ctx, "collect then report", []workflow.Step{
		{AgentKind: "data_collector", Parameters: map[string]interface{}{"sector": "automotive"}},
		{AgentKind: "report_generator", Ref: &workflow.OutputRef{Step: 0, Field: "sector"}},
	}, workflow.HaltOnError)
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusCompleted, wf.Status)
	assert.Equal(t, 1, workflows.creates, "exactly one workflow record persisted")
	assert.Equal(t, 1, workflows.updates)

	stored, err := workflows.GetByID(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCompleted, stored.Status)
	assert.Len(t, stored.Results, 2)
}

func TestOrchestrator_HandleWorkflow_UnknownKindRejectedUpfront(t *testing.T) {
	workflows := newMemWorkflows()
	orch := newTestOrchestrator(&fakeProvider{}, &memQueries{}, workflows, &fakeAgent{kind: AgentQA})

	_, err := orch.HandleWorkflow(context.Background(), "bad", []workflow.Step{
		{AgentKind: "translator"},
	}, workflow.HaltOnError)

	assert.True(t, errors.Is(err, errors.ErrUnknownAgentKind))
	assert.Equal(t, 0, workflows.creates, "nothing persisted for invalid definitions")
}

func TestOrchestrator_HandleWorkflow_InvalidReference(t *testing.T) {
	orch := newTestOrchestrator(&fakeProvider{}, &memQueries{}, newMemWorkflows(), &fakeAgent{kind: AgentQA})

	_, err := orch.HandleWorkflow(context.Background(), "bad", []workflow.Step{
		{AgentKind: "qa", Ref: &workflow.OutputRef{Step: 0, Field: "answer"}},
	}, workflow.HaltOnError)

	assert.True(t, errors.Is(err, errors.ErrInvalidStepReference))
}

func TestOrchestrator_GetQuery(t *testing.T) {
	ctx := context.Background()

	provider := &fakeProvider{
		chatFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			return &ai.ChatResponse{Content: `{"intent": "question_answering", "parameters": {}}`}, nil
		},
	}
	queries := &memQueries{}
	orch := newTestOrchestrator(provider, queries, newMemWorkflows(), &fakeAgent{kind: AgentQA})

	rec, err := orch.HandleQuery(ctx, QueryRequest{Text: "anything", Filters: query.Entities{Sector: "tech"}})
	require.NoError(t, err)

	got, err := orch.GetQuery(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "tech", got.Entities.Sector)
}
