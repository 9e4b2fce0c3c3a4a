package events

// Kafka topics for downstream consumers (dashboards, audit).
const (
	TopicQueryEvents    = "minerva.query.events"
	TopicWorkflowEvents = "minerva.workflow.events"
)
