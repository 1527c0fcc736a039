package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func receivedOrder(itemID string, qty int, arrival time.Time) Order {
	return Order{
		ID:     "order-" + itemID,
		Status: OrderStatusReceived,
		Items: []OrderItem{
			{ItemID: itemID, Quantity: qty, ActualDate: arrival},
		},
	}
}

func TestReceivedInInterval_FirstCheckpointIncludesEverythingUpToDate(t *testing.T) {
	dates := MonthDates{
		MonthIndex:  2,
		Year:        2025,
		Checkpoints: [NumCheckpoints]time.Time{date(2025, time.March, 7)},
	}
	orders := []Order{
		receivedOrder("vaccine-a", 100, date(2025, time.March, 3)),
		receivedOrder("vaccine-a", 50, date(2025, time.March, 7)), // boundary: inclusive
		receivedOrder("vaccine-a", 25, date(2025, time.March, 8)), // after the checkpoint
	}

	got := ReceivedInInterval(orders, dates, "vaccine-a", 2, 2025, 0)
	assert.Equal(t, 150, got)
}

func TestReceivedInInterval_LaterCheckpointIsHalfOpen(t *testing.T) {
	dates := MonthDates{
		MonthIndex: 2,
		Year:       2025,
		Checkpoints: [NumCheckpoints]time.Time{
			date(2025, time.March, 7),
			date(2025, time.March, 14),
		},
	}
	orders := []Order{
		receivedOrder("vaccine-a", 100, date(2025, time.March, 7)),  // on start: excluded
		receivedOrder("vaccine-a", 60, date(2025, time.March, 8)),   // inside
		receivedOrder("vaccine-a", 40, date(2025, time.March, 14)),  // on end: included
		receivedOrder("vaccine-a", 999, date(2025, time.March, 15)), // past end
	}

	got := ReceivedInInterval(orders, dates, "vaccine-a", 2, 2025, 1)
	assert.Equal(t, 100, got)
}

func TestReceivedInInterval_UnsetEndDateYieldsZero(t *testing.T) {
	dates := MonthDates{MonthIndex: 2, Year: 2025}
	orders := []Order{receivedOrder("vaccine-a", 100, date(2025, time.March, 3))}

	assert.Zero(t, ReceivedInInterval(orders, dates, "vaccine-a", 2, 2025, 0))
}

func TestReceivedInInterval_LaterCheckpointNeedsStartDate(t *testing.T) {
	dates := MonthDates{
		MonthIndex: 2,
		Year:       2025,
		Checkpoints: [NumCheckpoints]time.Time{
			{}, // S1 date missing
			date(2025, time.March, 14),
		},
	}
	orders := []Order{receivedOrder("vaccine-a", 100, date(2025, time.March, 10))}

	assert.Zero(t, ReceivedInInterval(orders, dates, "vaccine-a", 2, 2025, 1))
}

func TestReceivedInInterval_OnlyReceivedOrdersWithArrivalCount(t *testing.T) {
	dates := MonthDates{
		MonthIndex:  2,
		Year:        2025,
		Checkpoints: [NumCheckpoints]time.Time{date(2025, time.March, 31)},
	}
	orders := []Order{
		{
			ID:     "pending",
			Status: OrderStatusPending,
			Items:  []OrderItem{{ItemID: "vaccine-a", Quantity: 500, ActualDate: date(2025, time.March, 3)}},
		},
		{
			ID:     "no-arrival",
			Status: OrderStatusReceived,
			Items:  []OrderItem{{ItemID: "vaccine-a", Quantity: 200}},
		},
		receivedOrder("vaccine-a", 70, date(2025, time.March, 20)),
	}

	assert.Equal(t, 70, ReceivedInInterval(orders, dates, "vaccine-a", 2, 2025, 0))
}

func TestReceivedInInterval_CalendarMonthMembership(t *testing.T) {
	dates := MonthDates{
		MonthIndex:  2,
		Year:        2025,
		Checkpoints: [NumCheckpoints]time.Time{date(2025, time.March, 31)},
	}
	orders := []Order{
		receivedOrder("vaccine-a", 100, date(2025, time.February, 28)), // previous month
		receivedOrder("vaccine-a", 100, date(2024, time.March, 15)),    // previous year
		receivedOrder("vaccine-a", 30, date(2025, time.March, 15)),
	}

	assert.Equal(t, 30, ReceivedInInterval(orders, dates, "vaccine-a", 2, 2025, 0))
}

func TestReceivedInInterval_OtherItemsIgnored(t *testing.T) {
	dates := MonthDates{
		MonthIndex:  0,
		Year:        2025,
		Checkpoints: [NumCheckpoints]time.Time{date(2025, time.January, 31)},
	}
	orders := []Order{
		{
			ID:     "mixed",
			Status: OrderStatusReceived,
			Items: []OrderItem{
				{ItemID: "vaccine-a", Quantity: 10, ActualDate: date(2025, time.January, 5)},
				{ItemID: "vaccine-b", Quantity: 90, ActualDate: date(2025, time.January, 5)},
			},
		},
	}

	assert.Equal(t, 10, ReceivedInInterval(orders, dates, "vaccine-a", 0, 2025, 0))
}

func TestReceivedInInterval_CheckpointOutOfRange(t *testing.T) {
	orders := []Order{receivedOrder("vaccine-a", 10, date(2025, time.January, 5))}
	dates := MonthDates{MonthIndex: 0, Year: 2025}

	assert.Zero(t, ReceivedInInterval(orders, dates, "vaccine-a", 0, 2025, -1))
	assert.Zero(t, ReceivedInInterval(orders, dates, "vaccine-a", 0, 2025, NumCheckpoints))
}
