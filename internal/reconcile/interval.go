package reconcile

import "time"

// receipt is one received order line that landed for a given item.
type receipt struct {
	arrival  time.Time
	quantity int
}

// monthReceipts collects the received quantities for an item that
// arrived within the calendar month. Only RECEIVED orders count, and
// only lines with an actual arrival date.
func monthReceipts(orders []Order, itemID string, monthIndex, year int) []receipt {
	var out []receipt
	for _, o := range orders {
		if o.Status != OrderStatusReceived {
			continue
		}
		for _, line := range o.Items {
			if line.ItemID != itemID || line.ActualDate.IsZero() {
				continue
			}
			if !sameCalendarMonth(line.ActualDate, monthIndex, year) {
				continue
			}
			out = append(out, receipt{arrival: line.ActualDate, quantity: line.Quantity})
		}
	}
	return out
}

// ReceivedInInterval sums the quantities received for an item within
// the interval ending at the given checkpoint of a month.
//
// The interval for checkpoint 0 is everything up to and including its
// date. For later checkpoints it is (previous date, this date]; if
// either boundary date is unset the interval is empty and the sum is 0.
func ReceivedInInterval(orders []Order, dates MonthDates, itemID string, monthIndex, year, checkpoint int) int {
	if checkpoint < 0 || checkpoint >= NumCheckpoints {
		return 0
	}

	end := dates.Checkpoints[checkpoint]
	if end.IsZero() {
		return 0
	}

	var start time.Time
	if checkpoint > 0 {
		start = dates.Checkpoints[checkpoint-1]
		if start.IsZero() {
			return 0
		}
	}

	total := 0
	for _, r := range monthReceipts(orders, itemID, monthIndex, year) {
		if r.arrival.After(end) {
			continue
		}
		if checkpoint > 0 && !start.Before(r.arrival) {
			continue
		}
		total += r.quantity
	}
	return total
}
