package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"minerva/internal/adapters/kafka"
	"minerva/pkg/logger"
)

// QueryHandledEvent is emitted after a single query reaches a persisted
// outcome.
type QueryHandledEvent struct {
	QueryID   uuid.UUID `json:"query_id"`
	Intent    string    `json:"intent"`
	Succeeded bool      `json:"succeeded"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkflowFinishedEvent is emitted when a workflow reaches a terminal state.
type WorkflowFinishedEvent struct {
	WorkflowID uuid.UUID `json:"workflow_id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	StepsTotal int       `json:"steps_total"`
	StepsRun   int       `json:"steps_run"`
	CreatedAt  time.Time `json:"created_at"`
}

// Publisher publishes core events to Kafka. Publishing is best-effort:
// failures are logged, never propagated.
type Publisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{
		producer: producer,
		log:      logger.Get().With("component", "event_publisher"),
	}
}

// PublishQueryHandled publishes a query handled event
func (p *Publisher) PublishQueryHandled(ctx context.Context, event QueryHandledEvent) {
	if p == nil || p.producer == nil {
		return
	}
	if err := p.producer.Publish(ctx, TopicQueryEvents, event.QueryID.String(), event); err != nil {
		p.log.Warnf("Failed to publish query event %s: %v", event.QueryID, err)
	}
}

// PublishWorkflowFinished publishes a workflow finished event
func (p *Publisher) PublishWorkflowFinished(ctx context.Context, event WorkflowFinishedEvent) {
	if p == nil || p.producer == nil {
		return
	}
	if err := p.producer.Publish(ctx, TopicWorkflowEvents, event.WorkflowID.String(), event); err != nil {
		p.log.Warnf("Failed to publish workflow event %s: %v", event.WorkflowID, err)
	}
}
