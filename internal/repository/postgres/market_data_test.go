package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/domain/marketdata"
	"minerva/internal/testsupport"
)

func TestMarketDataRepository_StoreAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	repo := NewMarketDataRepository(testDB.DB())
	ctx := context.Background()

	point := &marketdata.Point{
		ID:               uuid.New(),
		Sector:           "test_leasing",
		Country:          "France",
		FinancialProduct: "leasing",
		DataPoint:        "market_size",
		Value:            "€5.2 billion",
		Source:           "Industry Report",
		Date:             "2024-01-01",
		CreatedAt:        time.Now().UTC(),
	}

	err := repo.Store(ctx, point)
	require.NoError(t, err, "Store should not return error")

	points, err := repo.List(ctx, marketdata.Filter{Sector: "test_leasing"})
	require.NoError(t, err)
	require.NotEmpty(t, points)
	assert.Equal(t, point.ID, points[0].ID)
	assert.Equal(t, "market_size", points[0].DataPoint)
	assert.Equal(t, "€5.2 billion", points[0].Value)

	t.Run("non-matching filter returns nothing", func(t *testing.T) {
		points, err := repo.List(ctx, marketdata.Filter{Sector: "test_leasing", Country: "Japan"})
		require.NoError(t, err)
		assert.Empty(t, points)
	})
}
