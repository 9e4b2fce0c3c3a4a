package agents

// Kind enumerates the fixed set of agent specializations.
type Kind string

const (
	AgentDataCollector   Kind = "data_collector"
	AgentReportGenerator Kind = "report_generator"
	AgentQA              Kind = "qa"
)

// Parameters is the flat field-to-value mapping passed to an agent for one
// execution.
type Parameters map[string]interface{}

// String returns the named parameter as a string, or "" when absent or not
// a string.
func (p Parameters) String(key string) string {
	if p == nil {
		return ""
	}
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Clone returns a shallow copy so ref splicing never mutates a step
// definition.
func (p Parameters) Clone() Parameters {
	out := make(Parameters, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
