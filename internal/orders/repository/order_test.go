package repository_test

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogrepo "github.com/vaxstock/vaxstock-backend/internal/catalog/repository"
	"github.com/vaxstock/vaxstock-backend/internal/orders/repository"
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

func createTestItem(t *testing.T, ctx context.Context, name string) *catalogrepo.Item {
	t.Helper()
	repo := catalogrepo.NewItemRepository(suite.DB)
	item := &catalogrepo.Item{Name: name, Unit: "vials", Dosage: 10}
	require.NoError(t, repo.Create(ctx, item))
	return item
}

func createTestOrder(t *testing.T, ctx context.Context, repo *repository.OrderRepository, itemID string, quantity int) *repository.Order {
	t.Helper()
	order := &repository.Order{
		RequestName: "March restock",
		Items: []repository.OrderItem{
			{ItemID: itemID, Quantity: quantity, UnitCostCents: 2550},
		},
	}
	require.NoError(t, repo.Create(ctx, order))
	return order
}

func TestOrderRepository_CreateStartsPending(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	_, ctx := suite.NewAccount(t)
	repo := repository.NewOrderRepository(suite.DB)
	item := createTestItem(t, ctx, "BCG")

	order := createTestOrder(t, ctx, repo, item.ID, 300)
	assert.Equal(t, repository.StatusPending, order.Status)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 300, got.Items[0].Quantity)
	assert.Nil(t, got.Items[0].ActualDate)
}

func TestOrderRepository_ReceiveStampsLines(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	_, ctx := suite.NewAccount(t)
	repo := repository.NewOrderRepository(suite.DB)
	item := createTestItem(t, ctx, "Polio")
	order := createTestOrder(t, ctx, repo, item.ID, 200)

	arrival := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	batch := "L-4417"
	expiry := arrival.AddDate(0, 6, 0)

	err := repo.Receive(ctx, order.ID, []repository.LineReceipt{
		{OrderItemID: order.Items[0].ID, ActualDate: arrival, BatchNumber: &batch, ExpiryDate: &expiry},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusReceived, got.Status)
	require.NotNil(t, got.Items[0].ActualDate)
	assert.Equal(t, arrival.Format("2006-01-02"), got.Items[0].ActualDate.Format("2006-01-02"))
	require.NotNil(t, got.Items[0].BatchNumber)
	assert.Equal(t, batch, *got.Items[0].BatchNumber)
}

func TestOrderRepository_ReceiveTwiceConflicts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	_, ctx := suite.NewAccount(t)
	repo := repository.NewOrderRepository(suite.DB)
	item := createTestItem(t, ctx, "Measles")
	order := createTestOrder(t, ctx, repo, item.ID, 100)

	arrival := time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)
	receipts := []repository.LineReceipt{{OrderItemID: order.Items[0].ID, ActualDate: arrival}}

	require.NoError(t, repo.Receive(ctx, order.ID, receipts))

	err := repo.Receive(ctx, order.ID, receipts)
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestOrderRepository_UpdateReceiptRequiresReceived(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	_, ctx := suite.NewAccount(t)
	repo := repository.NewOrderRepository(suite.DB)
	item := createTestItem(t, ctx, "Tetanus")
	order := createTestOrder(t, ctx, repo, item.ID, 50)

	arrival := time.Date(2025, time.May, 9, 0, 0, 0, 0, time.UTC)
	receipts := []repository.LineReceipt{{OrderItemID: order.Items[0].ID, ActualDate: arrival}}

	err := repo.UpdateReceipt(ctx, order.ID, receipts)
	assert.True(t, errors.Is(err, errors.ErrConflict))

	require.NoError(t, repo.Receive(ctx, order.ID, receipts))

	corrected := arrival.AddDate(0, 0, 3)
	err = repo.UpdateReceipt(ctx, order.ID, []repository.LineReceipt{
		{OrderItemID: order.Items[0].ID, ActualDate: corrected},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, corrected.Format("2006-01-02"), got.Items[0].ActualDate.Format("2006-01-02"))
}

func TestOrderRepository_UpdateOnlyWhilePending(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	_, ctx := suite.NewAccount(t)
	repo := repository.NewOrderRepository(suite.DB)
	item := createTestItem(t, ctx, "Hepatitis B")
	order := createTestOrder(t, ctx, repo, item.ID, 80)

	order.RequestName = "April restock"
	order.Items = []repository.OrderItem{
		{ItemID: item.ID, Quantity: 120, UnitCostCents: 3000},
	}
	require.NoError(t, repo.Update(ctx, order))

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "April restock", got.RequestName)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 120, got.Items[0].Quantity)

	arrival := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Receive(ctx, order.ID, []repository.LineReceipt{
		{OrderItemID: got.Items[0].ID, ActualDate: arrival},
	}))

	err = repo.Update(ctx, order)
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestOrderRepository_DeleteRemovesOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	_, ctx := suite.NewAccount(t)
	repo := repository.NewOrderRepository(suite.DB)
	item := createTestItem(t, ctx, "Rabies")
	order := createTestOrder(t, ctx, repo, item.ID, 40)

	require.NoError(t, repo.Delete(ctx, order.ID))

	_, err := repo.GetByID(ctx, order.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	err = repo.Delete(ctx, order.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestOrderRepository_ListNewestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	_, ctx := suite.NewAccount(t)
	repo := repository.NewOrderRepository(suite.DB)
	item := createTestItem(t, ctx, "Influenza")

	first := createTestOrder(t, ctx, repo, item.ID, 10)
	second := createTestOrder(t, ctx, repo, item.ID, 20)

	orders, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	ids := []string{orders[0].ID, orders[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
	for _, o := range orders {
		assert.Len(t, o.Items, 1)
	}
}

func TestOrderRepository_NegativeQuantityRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	_, ctx := suite.NewAccount(t)
	repo := repository.NewOrderRepository(suite.DB)
	item := createTestItem(t, ctx, "Yellow Fever")

	order := &repository.Order{
		RequestName: "Bad order",
		Items: []repository.OrderItem{
			{ItemID: item.ID, Quantity: -5, UnitCostCents: 100},
		},
	}
	err := repo.Create(ctx, order)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}
