package reconcile

import (
	"sort"
	"time"
)

// expiringSoonDays is the warning window for batch expiry.
const expiringSoonDays = 120

// Panorama returns the FIFO batch balances for one item as of the end
// of the selected month.
//
// Batches are the received order lines for the item, ordered by arrival
// date, preceded by a synthetic opening batch when January carries a
// manual initial stock. Cumulative consumption for months 0..monthIndex
// is walked through the batches first-in-first-out; only batches with a
// remaining balance appear in the result.
//
// now is the caller's wall clock, used only for the expiring-soon flag.
func Panorama(itemID string, orders []Order, entries []MonthEntry, chain Chain, monthIndex, year int, now time.Time) []BatchBalance {
	if monthIndex < 0 || monthIndex >= MonthsPerYear {
		return nil
	}

	end := endOfMonth(monthIndex, year)

	var batches []BatchBalance

	// Opening stock behaves as the oldest batch, pinned ahead of any
	// dated arrival.
	if opening := openingStock(entries, itemID, year); opening > 0 {
		batches = append(batches, BatchBalance{
			BatchNumber: "opening",
			ArrivalDate: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			Quantity:    opening,
			IsOpening:   true,
		})
	}

	var dated []BatchBalance
	for _, o := range orders {
		if o.Status != OrderStatusReceived {
			continue
		}
		for _, line := range o.Items {
			if line.ItemID != itemID || line.ActualDate.IsZero() {
				continue
			}
			if line.ActualDate.After(end) {
				continue
			}
			dated = append(dated, BatchBalance{
				BatchNumber: line.BatchNumber,
				ArrivalDate: line.ActualDate,
				ExpiryDate:  line.ExpiryDate,
				Quantity:    line.Quantity,
			})
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].ArrivalDate.Before(dated[j].ArrivalDate)
	})
	batches = append(batches, dated...)

	remaining := 0
	if months, ok := chain[itemID]; ok {
		for m := 0; m <= monthIndex; m++ {
			remaining += months[m].Consumed
		}
	}

	var out []BatchBalance
	for _, b := range batches {
		taken := b.Quantity
		if taken > remaining {
			taken = remaining
		}
		remaining -= taken

		b.Balance = b.Quantity - taken
		if b.Balance <= 0 {
			continue
		}
		b.IsExpiringSoon = expiringSoon(b.ExpiryDate, now)
		out = append(out, b)
	}

	return out
}

// openingStock returns January's manual initial stock for the item, or
// 0 when none is set.
func openingStock(entries []MonthEntry, itemID string, year int) int {
	for _, e := range entries {
		if e.ItemID == itemID && e.Year == year && e.MonthIndex == 0 {
			if e.ManualInitialStock != nil {
				return *e.ManualInitialStock
			}
			return 0
		}
	}
	return 0
}

// expiringSoon reports whether the expiry falls within the warning
// window of now. Already-expired batches are not flagged.
func expiringSoon(expiry, now time.Time) bool {
	if expiry.IsZero() {
		return false
	}
	days := int(expiry.Sub(now).Hours() / 24)
	return days >= 0 && days <= expiringSoonDays
}
