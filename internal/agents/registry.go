package agents

import (
	"sort"

	"minerva/pkg/errors"
)

// Registry is a fixed mapping from agent kind to implementation, built once
// at startup and immutable afterwards so a running workflow always resolves
// the same capability for a kind.
type Registry struct {
	agents map[Kind]Agent
}

// NewRegistry constructs a registry over the given agents. Later entries
// with a duplicate kind replace earlier ones.
func NewRegistry(agents ...Agent) *Registry {
	m := make(map[Kind]Agent, len(agents))
	for _, ag := range agents {
		m[ag.Kind()] = ag
	}
	return &Registry{agents: m}
}

// Resolve returns the agent for a kind or ErrUnknownAgentKind.
func (r *Registry) Resolve(kind Kind) (Agent, error) {
	ag, ok := r.agents[kind]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownAgentKind, "%q", kind)
	}
	return ag, nil
}

// Kinds returns the registered kinds in stable order.
func (r *Registry) Kinds() []Kind {
	res := make([]Kind, 0, len(r.agents))
	for k := range r.agents {
		res = append(res, k)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}
