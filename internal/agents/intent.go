package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"minerva/internal/adapters/ai"
	"minerva/internal/domain/query"
	"minerva/internal/metrics"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// ResolutionCache caches classifications of identical raw text.
type ResolutionCache interface {
	Get(ctx context.Context, rawText string) (*query.Resolution, error)
	Save(ctx context.Context, rawText string, res query.Resolution) error
}

// Resolver turns free text into an agent kind plus structured entities. The
// backend is called at most once per resolution; any failure or contract
// violation degrades to the deterministic keyword fallback instead of a
// retry, so a single user request never pays for two classify calls.
type Resolver struct {
	provider    ai.ChatProvider
	model       string
	temperature float64
	cache       ResolutionCache
	log         *logger.Logger
}

// NewResolver constructs an intent resolver. cache may be nil.
func NewResolver(provider ai.ChatProvider, model string, temperature float64, cache ResolutionCache) *Resolver {
	return &Resolver{
		provider:    provider,
		model:       model,
		temperature: temperature,
		cache:       cache,
		log:         logger.Get().With("component", "intent_resolver"),
	}
}

const resolverSystemPrompt = `You are an expert query analyzer for a market intelligence system. Your task is to determine intent (data_collection, report_generation, question_answering) and extract parameters from user queries. Output only JSON.`

const resolverPromptTemplate = `Analyze the following user query for a market intelligence system. Determine the user's intent and extract relevant parameters.

User Query: %q

Possible Intents:
- data_collection: the user wants to find, research, or collect new or up-to-date data about a market.
- report_generation: the user wants a structured summary or generated report based on existing, previously collected data.
- question_answering: the user is asking a specific question about existing data or reports.

Parameters to Extract:
- sector (e.g., Technology, Healthcare)
- country (e.g., France, US) - optional
- financial_product (e.g., Leasing, Loan) - optional
- custom_keyword (any specific term like "market outlook 2025") - optional
- question (if intent is question_answering)

Output ONLY a JSON object with "intent" and "parameters" keys, for example:
{"intent": "data_collection", "parameters": {"sector": "Technology", "country": "Germany"}}`

// classification is the constrained output contract of the backend.
type classification struct {
	Intent     string `json:"intent"`
	Parameters struct {
		Sector           string `json:"sector"`
		Country          string `json:"country"`
		FinancialProduct string `json:"financial_product"`
		CustomKeyword    string `json:"custom_keyword"`
		Question         string `json:"question"`
	} `json:"parameters"`
}

// Resolve classifies raw text into (kind, entities). It never fails: backend
// failure or a malformed response falls back to the keyword heuristic.
// Explicit filters always override extracted entities field-by-field.
func (r *Resolver) Resolve(ctx context.Context, rawText string, explicit query.Entities) (Kind, query.Entities) {
	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, rawText); err == nil {
			if kind, ok := kindFromIntent(cached.AgentKind); ok {
				metrics.IntentResolutions.WithLabelValues("cache").Inc()
				return kind, cached.Entities.Merge(explicit)
			}
		}
	}

	extracted, err := r.classify(ctx, rawText)
	if err != nil {
		// Degraded resolution: log it, count it, carry on. Not user-visible.
		r.log.Warnf("Intent resolution degraded, using keyword fallback: %v", err)
		metrics.IntentResolutions.WithLabelValues("fallback").Inc()
		return FallbackKind(rawText), explicit
	}

	kind, ok := kindFromIntent(extracted.AgentKind)
	if !ok {
		r.log.Warnf("Backend returned unknown intent %q, using keyword fallback", extracted.AgentKind)
		metrics.IntentResolutions.WithLabelValues("fallback").Inc()
		return FallbackKind(rawText), explicit
	}

	if r.cache != nil {
		if err := r.cache.Save(ctx, rawText, *extracted); err != nil {
			r.log.Debugf("Failed to cache intent resolution: %v", err)
		}
	}

	metrics.IntentResolutions.WithLabelValues("backend").Inc()
	return kind, extracted.Entities.Merge(explicit)
}

// classify performs the single backend call and enforces the constrained
// output contract.
func (r *Resolver) classify(ctx context.Context, rawText string) (*query.Resolution, error) {
	resp, err := r.provider.Chat(ctx, ai.ChatRequest{
		Model:       r.model,
		Temperature: r.temperature,
		MaxTokens:   1000,
		JSONOnly:    true,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: resolverSystemPrompt},
			{Role: ai.RoleUser, Content: fmt.Sprintf(resolverPromptTemplate, rawText)},
		},
	})
	if err != nil {
		return nil, err
	}

	var cls classification
	if err := json.Unmarshal([]byte(stripJSONFences(resp.Content)), &cls); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedResponse, err.Error())
	}

	return &query.Resolution{
		AgentKind: cls.Intent,
		Entities: query.Entities{
			Sector:           cls.Parameters.Sector,
			Country:          cls.Parameters.Country,
			FinancialProduct: cls.Parameters.FinancialProduct,
			CustomKeyword:    cls.Parameters.CustomKeyword,
			Question:         cls.Parameters.Question,
		},
	}, nil
}

// kindFromIntent maps backend intent labels (and bare kind tags) to kinds.
func kindFromIntent(intent string) (Kind, bool) {
	switch strings.TrimSpace(strings.ToLower(intent)) {
	case "data_collection", string(AgentDataCollector):
		return AgentDataCollector, true
	case "report_generation", string(AgentReportGenerator):
		return AgentReportGenerator, true
	case "question_answering", "qa_agent", string(AgentQA):
		return AgentQA, true
	}
	return "", false
}

// FallbackKind is the deterministic keyword heuristic used when the backend
// is unavailable or violates its contract. It always returns a kind.
func FallbackKind(rawText string) Kind {
	text := strings.ToLower(rawText)

	for _, term := range []string{"collect", "gather", "fetch"} {
		if strings.Contains(text, term) {
			return AgentDataCollector
		}
	}
	for _, term := range []string{"report", "generate", "summary"} {
		if strings.Contains(text, term) {
			return AgentReportGenerator
		}
	}
	return AgentQA
}

// stripJSONFences tolerates models that wrap JSON in markdown fences.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
