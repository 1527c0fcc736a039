package repository_test

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaxstock/vaxstock-backend/internal/catalog/repository"
	"github.com/vaxstock/vaxstock-backend/pkg/errors"
	"github.com/vaxstock/vaxstock-backend/pkg/testutil"
)

var suite *testutil.IntegrationSuite

func TestMain(m *testing.M) {
	flag.Parse()
	ctx := context.Background()

	if !testing.Short() {
		var err error
		suite, err = testutil.NewIntegrationSuite(ctx)
		if err != nil {
			log.Fatalf("failed to create integration suite: %v", err)
		}
	}

	code := m.Run()
	testutil.TerminateContainer(ctx)
	os.Exit(code)
}

func createTestItem(t *testing.T, ctx context.Context, repo *repository.ItemRepository, name string) *repository.Item {
	t.Helper()
	item := &repository.Item{
		Name:   name,
		Unit:   "vials",
		Dosage: 10,
	}
	err := repo.Create(ctx, item)
	require.NoError(t, err)
	return item
}

func TestItemRepository_CreateSeedsMonthlyConfigs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	_, ctx := suite.NewAccount(t)
	repo := repository.NewItemRepository(suite.DB)

	item := createTestItem(t, ctx, repo, "BCG")
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, 0, item.Position)

	configs, err := repo.GetConfigs(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, configs, 12)
	for i, cfg := range configs {
		assert.Equal(t, i, cfg.MonthIndex)
		assert.Zero(t, cfg.AverageCostCents)
	}
}

func TestItemRepository_ListKeepsPositionOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	_, ctx := suite.NewAccount(t)
	repo := repository.NewItemRepository(suite.DB)

	first := createTestItem(t, ctx, repo, "First")
	second := createTestItem(t, ctx, repo, "Second")

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, second.ID, items[1].ID)

	// Swap the order
	require.NoError(t, repo.Reorder(ctx, []string{second.ID, first.ID}))

	items, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)
}

func TestItemRepository_UpdateConfig(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	_, ctx := suite.NewAccount(t)
	repo := repository.NewItemRepository(suite.DB)

	item := createTestItem(t, ctx, repo, "Polio")

	cfg, err := repo.UpdateConfig(ctx, item.ID, 3, 2550, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2550), cfg.AverageCostCents)
	assert.Equal(t, 100, cfg.MinStock)

	byMonth, err := repo.ConfigsForMonth(ctx, 3)
	require.NoError(t, err)
	require.Contains(t, byMonth, item.ID)
	assert.Equal(t, int64(2550), byMonth[item.ID].AverageCostCents)
}

func TestItemRepository_SoftDeleteHidesItem(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	_, ctx := suite.NewAccount(t)
	repo := repository.NewItemRepository(suite.DB)

	item := createTestItem(t, ctx, repo, "Measles")
	require.NoError(t, repo.SoftDelete(ctx, item.ID))

	_, err := repo.GetByID(ctx, item.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemRepository_AccountIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	_, ctxA := suite.NewAccount(t)
	_, ctxB := suite.NewAccount(t)
	repo := repository.NewItemRepository(suite.DB)

	item := createTestItem(t, ctxA, repo, "Private")

	_, err := repo.GetByID(ctxB, item.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	items, err := repo.List(ctxB)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemRepository_MissingAccountContext(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	repo := repository.NewItemRepository(suite.DB)

	_, err := repo.List(context.Background())
	assert.Error(t, err)
}
