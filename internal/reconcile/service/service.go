// Package service loads account snapshots from the store and runs the
// reconciliation engine over them.
package service

import (
	"context"
	"time"

	catalogrepo "github.com/vaxstock/vaxstock-backend/internal/catalog/repository"
	inventoryrepo "github.com/vaxstock/vaxstock-backend/internal/inventory/repository"
	ordersrepo "github.com/vaxstock/vaxstock-backend/internal/orders/repository"
	"github.com/vaxstock/vaxstock-backend/internal/reconcile"
	"github.com/vaxstock/vaxstock-backend/pkg/logger"
)

// ReconcileService assembles engine inputs from the repositories and
// computes chains, panoramas and breakdowns on demand. Results are
// recomputed per request; the engine is fast enough that no cache or
// stored aggregate is kept.
type ReconcileService struct {
	items   *catalogrepo.ItemRepository
	orders  *ordersrepo.OrderRepository
	entries *inventoryrepo.EntryRepository
	logger  *logger.Logger
}

// NewReconcileService creates a new reconcile service
func NewReconcileService(
	items *catalogrepo.ItemRepository,
	orders *ordersrepo.OrderRepository,
	entries *inventoryrepo.EntryRepository,
	log *logger.Logger,
) *ReconcileService {
	return &ReconcileService{
		items:   items,
		orders:  orders,
		entries: entries,
		logger:  log,
	}
}

// snapshot is everything the engine needs for one account-year.
type snapshot struct {
	items   []reconcile.Item
	rows    []*catalogrepo.Item
	orders  []reconcile.Order
	entries []reconcile.MonthEntry
	dates   []reconcile.MonthDates
}

func (s *ReconcileService) load(ctx context.Context, year int) (*snapshot, error) {
	rows, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}

	orderRows, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}

	entryRows, err := s.entries.ListEntries(ctx, year)
	if err != nil {
		return nil, err
	}

	dateRows, err := s.entries.ListDates(ctx, year)
	if err != nil {
		return nil, err
	}

	snap := &snapshot{rows: rows}
	for _, row := range rows {
		snap.items = append(snap.items, reconcile.Item{
			ID:     row.ID,
			Name:   row.Name,
			Unit:   row.Unit,
			Dosage: row.Dosage,
		})
	}
	snap.orders = toEngineOrders(orderRows)
	snap.entries = toEngineEntries(entryRows)
	snap.dates = toEngineDates(dateRows)

	return snap, nil
}

// EngineData bundles the engine inputs and derived chain of one
// account-year for downstream consumers (reports).
type EngineData struct {
	Items  []reconcile.Item
	Orders []reconcile.Order
	Chain  reconcile.Chain
}

// Data loads the snapshot for a year and derives its chain.
func (s *ReconcileService) Data(ctx context.Context, year int) (*EngineData, error) {
	snap, err := s.load(ctx, year)
	if err != nil {
		return nil, err
	}

	return &EngineData{
		Items:  snap.items,
		Orders: snap.orders,
		Chain:  reconcile.BuildChain(snap.items, snap.orders, snap.entries, snap.dates, year),
	}, nil
}

// Chain computes the twelve-month stock chain for every item of the
// account.
func (s *ReconcileService) Chain(ctx context.Context, year int) (reconcile.Chain, []*catalogrepo.Item, error) {
	snap, err := s.load(ctx, year)
	if err != nil {
		return nil, nil, err
	}

	chain := reconcile.BuildChain(snap.items, snap.orders, snap.entries, snap.dates, year)
	return chain, snap.rows, nil
}

// Panorama computes the FIFO batch balances for one item, or for every
// item when itemID is empty, as of the end of the selected month.
func (s *ReconcileService) Panorama(ctx context.Context, itemID string, monthIndex, year int, now time.Time) (map[string][]reconcile.BatchBalance, error) {
	snap, err := s.load(ctx, year)
	if err != nil {
		return nil, err
	}

	chain := reconcile.BuildChain(snap.items, snap.orders, snap.entries, snap.dates, year)

	out := make(map[string][]reconcile.BatchBalance)
	for _, item := range snap.items {
		if itemID != "" && item.ID != itemID {
			continue
		}
		out[item.ID] = reconcile.Panorama(item.ID, snap.orders, snap.entries, chain, monthIndex, year, now)
	}

	return out, nil
}

// Breakdown computes the per-checkpoint consumption of every item for
// the selected month.
func (s *ReconcileService) Breakdown(ctx context.Context, monthIndex, year int) (map[string]reconcile.Breakdown, error) {
	snap, err := s.load(ctx, year)
	if err != nil {
		return nil, err
	}

	chain := reconcile.BuildChain(snap.items, snap.orders, snap.entries, snap.dates, year)

	var monthDates reconcile.MonthDates
	for _, d := range snap.dates {
		if d.MonthIndex == monthIndex {
			monthDates = d
			break
		}
	}

	entryByItem := make(map[string]reconcile.MonthEntry)
	for _, e := range snap.entries {
		if e.MonthIndex == monthIndex {
			entryByItem[e.ItemID] = e
		}
	}

	out := make(map[string]reconcile.Breakdown, len(snap.items))
	for _, item := range snap.items {
		out[item.ID] = reconcile.CheckpointBreakdown(
			snap.orders, entryByItem[item.ID], monthDates, chain, item.ID, monthIndex, year)
	}

	return out, nil
}

func toEngineOrders(rows []*ordersrepo.Order) []reconcile.Order {
	out := make([]reconcile.Order, 0, len(rows))
	for _, row := range rows {
		order := reconcile.Order{
			ID:     row.ID,
			Status: reconcile.OrderStatus(row.Status),
		}
		for _, line := range row.Items {
			item := reconcile.OrderItem{
				ItemID:   line.ItemID,
				Quantity: line.Quantity,
			}
			if line.ActualDate != nil {
				item.ActualDate = *line.ActualDate
			}
			if line.BatchNumber != nil {
				item.BatchNumber = *line.BatchNumber
			}
			if line.ExpiryDate != nil {
				item.ExpiryDate = *line.ExpiryDate
			}
			order.Items = append(order.Items, item)
		}
		out = append(out, order)
	}
	return out
}

func toEngineEntries(rows []*inventoryrepo.MonthEntry) []reconcile.MonthEntry {
	out := make([]reconcile.MonthEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, reconcile.MonthEntry{
			ItemID:             row.ItemID,
			MonthIndex:         row.MonthIndex,
			Year:               row.Year,
			Counts:             [reconcile.NumCheckpoints]*int{row.CountS1, row.CountS2, row.CountS3, row.CountS4},
			ManualInitialStock: row.ManualInitialStock,
		})
	}
	return out
}

func toEngineDates(rows []*inventoryrepo.MonthDates) []reconcile.MonthDates {
	out := make([]reconcile.MonthDates, 0, len(rows))
	for _, row := range rows {
		dates := reconcile.MonthDates{
			MonthIndex: row.MonthIndex,
			Year:       row.Year,
		}
		for i, d := range []*time.Time{row.DateS1, row.DateS2, row.DateS3, row.DateS4} {
			if d != nil {
				dates.Checkpoints[i] = *d
			}
		}
		out = append(out, dates)
	}
	return out
}
