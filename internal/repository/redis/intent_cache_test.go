package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/domain/query"
	"minerva/internal/testsupport"
	"minerva/pkg/errors"
)

func TestIntentCache_SaveAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := testsupport.NewTestRedis(t)
	cache := NewIntentCache(client, time.Minute)
	ctx := context.Background()

	res := query.Resolution{
		AgentKind: "data_collection",
		Entities:  query.Entities{Sector: "leasing", Country: "France"},
	}

	err := cache.Save(ctx, "collect leasing data for France", res)
	require.NoError(t, err)

	cached, err := cache.Get(ctx, "collect leasing data for France")
	require.NoError(t, err)
	assert.Equal(t, "data_collection", cached.AgentKind)
	assert.Equal(t, "leasing", cached.Entities.Sector)

	t.Run("different text misses", func(t *testing.T) {
		_, err := cache.Get(ctx, "something else entirely")
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})
}

func TestIntentCache_TTLExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := testsupport.NewTestRedis(t)
	cache := NewIntentCache(client, 50*time.Millisecond)
	ctx := context.Background()

	err := cache.Save(ctx, "ephemeral", query.Resolution{AgentKind: "question_answering"})
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = cache.Get(ctx, "ephemeral")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
