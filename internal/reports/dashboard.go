package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vaxstock/vaxstock-backend/internal/reconcile"
)

// expiryWarningDays matches the engine's expiring-soon window.
const expiryWarningDays = 120

// TopConsumer is one row of the highest-consumption list.
type TopConsumer struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Consumed int    `json:"consumed"`
}

// DashboardMetrics summarizes the stock position at the close of a
// month.
type DashboardMetrics struct {
	TotalStockValue  decimal.Decimal `json:"total_stock_value"`
	LowStockCount    int             `json:"low_stock_count"`
	UpcomingExpiries int             `json:"upcoming_expiries"`
	TopConsumers     []TopConsumer   `json:"top_consumers"`
}

// BuildDashboard derives the dashboard metrics for one month.
// costCents and minStock map item IDs to the month's config values.
// Upcoming expiries count every received order line whose expiry falls
// within the warning window of now, whatever its remaining balance.
func BuildDashboard(items []reconcile.Item, chain reconcile.Chain, costCents map[string]int64, minStock map[string]int, orders []reconcile.Order, monthIndex int, now time.Time) DashboardMetrics {
	metrics := DashboardMetrics{
		TotalStockValue: decimal.Zero,
		TopConsumers:    []TopConsumer{},
	}

	known := make(map[string]bool, len(items))
	for _, item := range items {
		known[item.ID] = true

		final, consumed := 0, 0
		if months, ok := chain[item.ID]; ok && monthIndex >= 0 && monthIndex < reconcile.MonthsPerYear {
			final = months[monthIndex].Final
			consumed = months[monthIndex].Consumed
		}

		value := centsToDecimal(costCents[item.ID]).Mul(decimal.NewFromInt(int64(final)))
		metrics.TotalStockValue = metrics.TotalStockValue.Add(value)

		if min, ok := minStock[item.ID]; ok && final < min {
			metrics.LowStockCount++
		}

		if consumed > 0 {
			metrics.TopConsumers = append(metrics.TopConsumers, TopConsumer{
				ItemID:   item.ID,
				ItemName: item.Name,
				Consumed: consumed,
			})
		}
	}

	sort.SliceStable(metrics.TopConsumers, func(i, j int) bool {
		return metrics.TopConsumers[i].Consumed > metrics.TopConsumers[j].Consumed
	})
	if len(metrics.TopConsumers) > 5 {
		metrics.TopConsumers = metrics.TopConsumers[:5]
	}

	for _, o := range orders {
		if o.Status != reconcile.OrderStatusReceived {
			continue
		}
		for _, line := range o.Items {
			if !known[line.ItemID] || line.ExpiryDate.IsZero() {
				continue
			}
			days := int(line.ExpiryDate.Sub(now).Hours() / 24)
			if days > 0 && days < expiryWarningDays {
				metrics.UpcomingExpiries++
			}
		}
	}

	return metrics
}
