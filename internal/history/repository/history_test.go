package repository_test

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaxstock/vaxstock-backend/internal/history/repository"
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

func TestHistoryRepository_RecordAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	accountID, ctx := suite.NewAccount(t)
	repo := repository.NewHistoryRepository(suite.DB)

	details, _ := json.Marshal(map[string]string{"name": "BCG"})
	require.NoError(t, repo.Record(context.Background(), accountID, repository.TypeCatalog, "catalog.item.created", details))
	require.NoError(t, repo.Record(context.Background(), accountID, repository.TypeOrder, "order.received", nil))

	entries, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first
	assert.Equal(t, "order.received", entries[0].Action)
	assert.Equal(t, repository.TypeOrder, entries[0].EntryType)
	assert.Equal(t, "catalog.item.created", entries[1].Action)

	// Empty details are stored as an empty object
	assert.JSONEq(t, `{}`, string(entries[0].Details))
}

func TestHistoryRepository_ListHonorsLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	accountID, ctx := suite.NewAccount(t)
	repo := repository.NewHistoryRepository(suite.DB)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Record(context.Background(), accountID, repository.TypeInventory, "inventory.entry.updated", nil))
	}

	entries, err := repo.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestHistoryRepository_ScopedToAccount(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	accountA, _ := suite.NewAccount(t)
	_, ctxB := suite.NewAccount(t)
	repo := repository.NewHistoryRepository(suite.DB)

	require.NoError(t, repo.Record(context.Background(), accountA, repository.TypeCatalog, "catalog.item.deleted", nil))

	entries, err := repo.List(ctxB, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
