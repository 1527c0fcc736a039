package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchOrder(itemID string, qty int, arrival, expiry time.Time, batch string) Order {
	return Order{
		ID:     "order-" + batch,
		Status: OrderStatusReceived,
		Items: []OrderItem{{
			ItemID:      itemID,
			Quantity:    qty,
			ActualDate:  arrival,
			BatchNumber: batch,
			ExpiryDate:  expiry,
		}},
	}
}

func chainWithConsumption(itemID string, consumed ...int) Chain {
	var months [MonthsPerYear]MonthResult
	for i, c := range consumed {
		months[i] = MonthResult{Consumed: c}
	}
	return Chain{itemID: months}
}

func TestPanorama_FIFOWalksOpeningBatchFirst(t *testing.T) {
	// Opening stock of 1000, one batch of 500 arriving Feb 10.
	// Cumulative consumption of 1200 empties the opening batch and eats
	// 200 from the dated one.
	entries := []MonthEntry{{
		ItemID:             "vaccine-a",
		MonthIndex:         0,
		Year:               2025,
		ManualInitialStock: intPtr(1000),
	}}
	orders := []Order{
		batchOrder("vaccine-a", 500, date(2025, time.February, 10), date(2026, time.June, 1), "B"),
	}
	chain := chainWithConsumption("vaccine-a", 700, 500)

	now := date(2025, time.March, 1)
	got := Panorama("vaccine-a", orders, entries, chain, 1, 2025, now)

	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].BatchNumber)
	assert.Equal(t, 300, got[0].Balance)
	assert.False(t, got[0].IsOpening)
}

func TestPanorama_OpeningBatchPinnedBeforeEarlierArrivals(t *testing.T) {
	// A batch dated Jan 1 still queues behind the opening stock.
	entries := []MonthEntry{{
		ItemID:             "vaccine-a",
		MonthIndex:         0,
		Year:               2025,
		ManualInitialStock: intPtr(100),
	}}
	orders := []Order{
		batchOrder("vaccine-a", 200, date(2025, time.January, 1), time.Time{}, "early"),
	}
	chain := chainWithConsumption("vaccine-a", 150)

	got := Panorama("vaccine-a", orders, entries, chain, 0, 2025, date(2025, time.February, 1))

	require.Len(t, got, 1)
	assert.Equal(t, "early", got[0].BatchNumber)
	assert.Equal(t, 150, got[0].Balance) // opening 100 consumed fully, then 50 of "early"
}

func TestPanorama_DatedBatchesSortedByArrival(t *testing.T) {
	orders := []Order{
		batchOrder("vaccine-a", 100, date(2025, time.March, 20), time.Time{}, "late"),
		batchOrder("vaccine-a", 100, date(2025, time.January, 5), time.Time{}, "early"),
	}
	chain := chainWithConsumption("vaccine-a", 0, 0, 120)

	got := Panorama("vaccine-a", orders, nil, chain, 2, 2025, date(2025, time.April, 1))

	// 120 consumed: "early" gone, "late" keeps 80.
	require.Len(t, got, 1)
	assert.Equal(t, "late", got[0].BatchNumber)
	assert.Equal(t, 80, got[0].Balance)
}

func TestPanorama_ArrivalsAfterSelectedMonthExcluded(t *testing.T) {
	orders := []Order{
		batchOrder("vaccine-a", 100, date(2025, time.January, 31), time.Time{}, "in"),
		batchOrder("vaccine-a", 100, date(2025, time.February, 1), time.Time{}, "out"),
	}
	chain := Chain{"vaccine-a": [MonthsPerYear]MonthResult{}}

	got := Panorama("vaccine-a", orders, nil, chain, 0, 2025, date(2025, time.March, 1))

	require.Len(t, got, 1)
	assert.Equal(t, "in", got[0].BatchNumber)
}

func TestPanorama_ZeroBalancesDropOut(t *testing.T) {
	orders := []Order{
		batchOrder("vaccine-a", 100, date(2025, time.January, 5), time.Time{}, "gone"),
		batchOrder("vaccine-a", 100, date(2025, time.January, 10), time.Time{}, "left"),
	}
	chain := chainWithConsumption("vaccine-a", 100)

	got := Panorama("vaccine-a", orders, nil, chain, 0, 2025, date(2025, time.February, 1))

	require.Len(t, got, 1)
	assert.Equal(t, "left", got[0].BatchNumber)
	assert.Equal(t, 100, got[0].Balance)
}

func TestPanorama_ExpiringSoonWindow(t *testing.T) {
	now := date(2025, time.March, 1)
	orders := []Order{
		batchOrder("vaccine-a", 10, date(2025, time.January, 5), now.AddDate(0, 0, 30), "soon"),
		batchOrder("vaccine-a", 10, date(2025, time.January, 6), now.AddDate(0, 0, 200), "far"),
		batchOrder("vaccine-a", 10, date(2025, time.January, 7), now.AddDate(0, 0, -5), "expired"),
		batchOrder("vaccine-a", 10, date(2025, time.January, 8), time.Time{}, "no-expiry"),
	}
	chain := Chain{"vaccine-a": [MonthsPerYear]MonthResult{}}

	got := Panorama("vaccine-a", orders, nil, chain, 2, 2025, now)

	require.Len(t, got, 4)
	flags := map[string]bool{}
	for _, b := range got {
		flags[b.BatchNumber] = b.IsExpiringSoon
	}
	assert.True(t, flags["soon"])
	assert.False(t, flags["far"])
	assert.False(t, flags["expired"])
	assert.False(t, flags["no-expiry"])
}

func TestPanorama_NoOpeningBatchWithoutManualInitial(t *testing.T) {
	entries := []MonthEntry{{
		ItemID:     "vaccine-a",
		MonthIndex: 0,
		Year:       2025,
		Counts:     [NumCheckpoints]*int{intPtr(50)},
	}}
	chain := Chain{"vaccine-a": [MonthsPerYear]MonthResult{}}

	got := Panorama("vaccine-a", nil, entries, chain, 0, 2025, date(2025, time.February, 1))
	assert.Empty(t, got)
}

func TestPanorama_UnknownItemYieldsNoConsumption(t *testing.T) {
	orders := []Order{
		batchOrder("vaccine-a", 100, date(2025, time.January, 5), time.Time{}, "B"),
	}

	// Item absent from the chain: batches emerge untouched.
	got := Panorama("vaccine-a", orders, nil, Chain{}, 0, 2025, date(2025, time.February, 1))

	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].Balance)
}

func TestPanorama_MonthOutOfRange(t *testing.T) {
	assert.Nil(t, Panorama("vaccine-a", nil, nil, Chain{}, -1, 2025, time.Now()))
	assert.Nil(t, Panorama("vaccine-a", nil, nil, Chain{}, 12, 2025, time.Now()))
}
