package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"minerva/internal/agents"
	"minerva/internal/domain/query"
	"minerva/internal/domain/workflow"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// Handlers exposes the orchestrator over HTTP.
type Handlers struct {
	orchestrator *agents.Orchestrator
	log          *logger.Logger
}

// NewHandlers creates the API handler set.
func NewHandlers(orchestrator *agents.Orchestrator) *Handlers {
	return &Handlers{
		orchestrator: orchestrator,
		log:          logger.Get().With("component", "api"),
	}
}

type queryRequest struct {
	Text    string         `json:"text"`
	Filters query.Entities `json:"filters"`
}

type workflowRequest struct {
	Name   string                 `json:"name"`
	Policy workflow.FailurePolicy `json:"policy"`
	Steps  []workflow.Step        `json:"steps"`
}

// HandleQuery accepts a free-text query and returns the persisted record.
func (h *Handlers) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := h.orchestrator.HandleQuery(r.Context(), agents.QueryRequest{
		Text:    req.Text,
		Filters: req.Filters,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// HandleWorkflow accepts a workflow definition, executes it, and returns the
// terminal record.
func (h *Handlers) HandleWorkflow(w http.ResponseWriter, r *http.Request) {
	var req workflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Policy == "" {
		req.Policy = workflow.HaltOnError
	}

	wf, err := h.orchestrator.HandleWorkflow(r.Context(), req.Name, req.Steps, req.Policy)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, workflowResponse(wf))
}

// GetQuery returns a persisted query record by id.
func (h *Handlers) GetQuery(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query id")
		return
	}

	rec, err := h.orchestrator.GetQuery(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GetWorkflow returns a persisted workflow record by id.
func (h *Handlers) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid workflow id")
		return
	}

	wf, err := h.orchestrator.GetWorkflow(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workflowResponse(wf))
}

// writeDomainError maps domain sentinels onto HTTP status codes.
func (h *Handlers) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrInvalidInput),
		errors.Is(err, errors.ErrInvalidStepReference),
		errors.Is(err, errors.ErrUnknownAgentKind):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errors.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errors.ErrStorageUnavailable):
		h.log.Errorf("Storage unavailable: %v", err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		h.log.Errorf("Request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// workflowView is the serialized workflow record.
type workflowView struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Policy      string               `json:"policy"`
	Status      string               `json:"status"`
	Steps       workflow.Steps       `json:"steps"`
	Results     workflow.StepResults `json:"results"`
	CreatedAt   string               `json:"created_at"`
	CompletedAt string               `json:"completed_at,omitempty"`
}

func workflowResponse(wf *workflow.Workflow) workflowView {
	v := workflowView{
		ID:        wf.ID,
		Name:      wf.Name,
		Policy:    string(wf.Policy),
		Status:    string(wf.Status),
		Steps:     wf.Steps,
		Results:   wf.Results,
		CreatedAt: wf.CreatedAt.Format(time.RFC3339),
	}
	if wf.CompletedAt != nil {
		v.CompletedAt = wf.CompletedAt.Format(time.RFC3339)
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
