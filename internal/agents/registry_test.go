package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/pkg/errors"
)

func TestRegistry_Resolve(t *testing.T) {
	reg := NewRegistry(
		&fakeAgent{kind: AgentDataCollector},
		&fakeAgent{kind: AgentQA},
	)

	t.Run("known kind", func(t *testing.T) {
		ag, err := reg.Resolve(AgentDataCollector)
		require.NoError(t, err)
		assert.Equal(t, AgentDataCollector, ag.Kind())
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := reg.Resolve(Kind("translator"))
		assert.True(t, errors.Is(err, errors.ErrUnknownAgentKind))
	})
}

func TestRegistry_Kinds(t *testing.T) {
	reg := NewRegistry(
		&fakeAgent{kind: AgentQA},
		&fakeAgent{kind: AgentDataCollector},
		&fakeAgent{kind: AgentReportGenerator},
	)

	assert.Equal(t, []Kind{AgentDataCollector, AgentQA, AgentReportGenerator}, reg.Kinds())
}

func TestRegistry_DuplicateKindReplaces(t *testing.T) {
	first := &fakeAgent{kind: AgentQA}
	second := &fakeAgent{kind: AgentQA}
	reg := NewRegistry(first, second)

	ag, err := reg.Resolve(AgentQA)
	require.NoError(t, err)
	assert.Same(t, second, ag)
}
