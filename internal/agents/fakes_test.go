package agents

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"minerva/internal/adapters/ai"
	"minerva/internal/domain/marketdata"
	"minerva/internal/domain/query"
	"minerva/internal/domain/report"
	"minerva/internal/domain/workflow"
	"minerva/pkg/errors"
)

// fakeProvider implements ai.ChatProvider with canned responses.
type fakeProvider struct {
	chatFunc func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error)
	calls    int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	f.calls++
	if f.chatFunc != nil {
		return f.chatFunc(ctx, req)
	}
	return &ai.ChatResponse{Content: "{}"}, nil
}

// fakeAgent implements Agent with a scripted outcome.
type fakeAgent struct {
	kind        Kind
	executeFunc func(context.Context, Parameters) (*Result, error)
}

func (f *fakeAgent) Kind() Kind { return f.kind }

func (f *fakeAgent) Execute(ctx context.Context, params Parameters) (*Result, error) {
	if f.executeFunc != nil {
		return f.executeFunc(ctx, params)
	}
	return &Result{Kind: f.kind, Success: true, Outputs: map[string]interface{}{}}, nil
}

// memMarketData is an in-memory marketdata.Repository.
type memMarketData struct {
	mu       sync.Mutex
	points   []marketdata.Point
	storeErr error
}

func (m *memMarketData) Store(ctx context.Context, point *marketdata.Point) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points = append(m.points, *point)
	return nil
}

func (m *memMarketData) List(ctx context.Context, filter marketdata.Filter) ([]marketdata.Point, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []marketdata.Point
	for _, p := range m.points {
		if filter.Sector != "" && p.Sector != filter.Sector {
			continue
		}
		if filter.Country != "" && p.Country != filter.Country {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// memReports is an in-memory report.Repository.
type memReports struct {
	mu      sync.Mutex
	reports []report.Report
}

func (m *memReports) Store(ctx context.Context, rep *report.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, *rep)
	return nil
}

func (m *memReports) GetByID(ctx context.Context, id uuid.UUID) (*report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reports {
		if m.reports[i].ID == id {
			return &m.reports[i], nil
		}
	}
	return nil, errors.ErrNotFound
}

func (m *memReports) List(ctx context.Context, filter report.Filter) ([]report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []report.Report
	for _, r := range m.reports {
		if filter.Sector != "" && r.Sector != filter.Sector {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// memQueries is an in-memory query.Repository.
type memQueries struct {
	mu       sync.Mutex
	records  []query.Query
	storeErr error
}

func (m *memQueries) Store(ctx context.Context, q *query.Query) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *q)
	return nil
}

func (m *memQueries) GetByID(ctx context.Context, id uuid.UUID) (*query.Query, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			return &m.records[i], nil
		}
	}
	return nil, errors.ErrNotFound
}

func (m *memQueries) List(ctx context.Context, intent string, limit int) ([]query.Query, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []query.Query
	for _, q := range m.records {
		if intent != "" && q.Intent != intent {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

// memWorkflows is an in-memory workflow.Repository.
type memWorkflows struct {
	mu        sync.Mutex
	records   map[uuid.UUID]workflow.Workflow
	createErr error
	updateErr error
	creates   int
	updates   int
}

func newMemWorkflows() *memWorkflows {
	return &memWorkflows{records: make(map[uuid.UUID]workflow.Workflow)}
}

func (m *memWorkflows) Create(ctx context.Context, wf *workflow.Workflow) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	m.records[wf.ID] = *wf
	return nil
}

func (m *memWorkflows) Update(ctx context.Context, wf *workflow.Workflow) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[wf.ID]; !ok {
		return errors.ErrNotFound
	}
	m.updates++
	m.records[wf.ID] = *wf
	return nil
}

func (m *memWorkflows) GetByID(ctx context.Context, id uuid.UUID) (*workflow.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wf, ok := m.records[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return &wf, nil
}

// memCache is an in-memory ResolutionCache.
type memCache struct {
	mu      sync.Mutex
	entries map[string]query.Resolution
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]query.Resolution)}
}

func (m *memCache) Get(ctx context.Context, rawText string) (*query.Resolution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.entries[rawText]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return &res, nil
}

func (m *memCache) Save(ctx context.Context, rawText string, res query.Resolution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[rawText] = res
	return nil
}
