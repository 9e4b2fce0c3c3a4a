package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/domain/report"
	"minerva/internal/testsupport"
	"minerva/pkg/errors"
)

func TestReportRepository_StoreAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	repo := NewReportRepository(testDB.DB())
	ctx := context.Background()

	rec := &report.Report{
		ID:               uuid.New(),
		Title:            "French Leasing Market",
		Sector:           "test_leasing",
		Country:          "France",
		FinancialProduct: "leasing",
		Summary:          "Steady growth.",
		Content:          "# French Leasing Market\n\nThe market is worth €5.2 billion.",
		CreatedAt:        time.Now().UTC(),
	}

	err := repo.Store(ctx, rec)
	require.NoError(t, err, "Store should not return error")

	retrieved, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Title, retrieved.Title)
	assert.Equal(t, rec.Content, retrieved.Content)

	listed, err := repo.List(ctx, report.Filter{Sector: "test_leasing", Country: "France"})
	require.NoError(t, err)
	assert.NotEmpty(t, listed)
}

func TestReportRepository_GetMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	repo := NewReportRepository(testDB.DB())

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
