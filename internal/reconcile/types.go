// Package reconcile implements the stock-chain reconciliation engine:
// interval receipt aggregation, month-by-month stock derivation, FIFO
// batch panorama and per-checkpoint consumption breakdown.
//
// The engine is pure: it operates on in-memory snapshots, never touches
// the store or the wall clock (callers pass "now" where it matters), and
// is total over malformed input (dangling references drop out silently).
package reconcile

import "time"

// NumCheckpoints is the number of stock counts per month (S1..S4,
// roughly weekly).
const NumCheckpoints = 4

// MonthsPerYear bounds month indices: 0 = January .. 11 = December.
const MonthsPerYear = 12

// OrderStatus is the lifecycle state of a purchase order.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusReceived OrderStatus = "RECEIVED"
)

// Item is the catalog snapshot the engine needs.
type Item struct {
	ID     string
	Name   string
	Unit   string
	Dosage int
}

// OrderItem is one line of a purchase order. ActualDate and ExpiryDate
// use the zero time.Time as the single "not set" marker.
type OrderItem struct {
	ItemID      string
	Quantity    int
	ActualDate  time.Time
	BatchNumber string
	ExpiryDate  time.Time
}

// Order is a purchase order snapshot. Only RECEIVED orders contribute
// receipts to the chain.
type Order struct {
	ID     string
	Status OrderStatus
	Items  []OrderItem
}

// MonthEntry holds the recorded stock counts for one item-month.
// Counts[k] is the S(k+1) checkpoint count; nil means no count was taken.
// ManualInitialStock, when non-nil, overrides the carried-over initial.
type MonthEntry struct {
	ItemID             string
	MonthIndex         int
	Year               int
	Counts             [NumCheckpoints]*int
	ManualInitialStock *int
}

// MonthDates holds the checkpoint dates for one month. Checkpoints[k]
// is the date of the S(k+1) count; the zero time.Time means not set.
type MonthDates struct {
	MonthIndex  int
	Year        int
	Checkpoints [NumCheckpoints]time.Time
}

// MonthResult is the derived stock position for one item-month.
type MonthResult struct {
	Initial  int `json:"initial"`
	Final    int `json:"final"`
	Consumed int `json:"consumed"`
}

// Chain maps item ID to its twelve derived month results.
type Chain map[string][MonthsPerYear]MonthResult

// BatchBalance is one row of the FIFO batch panorama: what remains of a
// received lot after cumulative consumption has been walked through the
// batches in arrival order.
type BatchBalance struct {
	BatchNumber    string    `json:"batch_number"`
	ArrivalDate    time.Time `json:"arrival_date"`
	ExpiryDate     time.Time `json:"expiry_date,omitempty"`
	Quantity       int       `json:"quantity"`
	Balance        int       `json:"balance"`
	IsOpening      bool      `json:"is_opening"`
	IsExpiringSoon bool      `json:"is_expiring_soon"`
}

// Breakdown is the per-checkpoint inferred consumption for one
// item-month, plus fortnight subtotals.
type Breakdown struct {
	Checkpoints     [NumCheckpoints]int `json:"checkpoints"`
	FirstFortnight  int                 `json:"first_fortnight"`
	SecondFortnight int                 `json:"second_fortnight"`
}

// sameCalendarMonth reports whether t falls in the given month of the
// given year, by calendar components.
func sameCalendarMonth(t time.Time, monthIndex, year int) bool {
	return t.Year() == year && int(t.Month())-1 == monthIndex
}

// endOfMonth returns the last day of the month at midnight.
func endOfMonth(monthIndex, year int) time.Time {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, time.Month(monthIndex+2), 0, 0, 0, 0, 0, time.UTC)
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
