package reconcile

import "sync"

// BuildChain derives the twelve-month stock chain for every item.
//
// Months are computed in order: each month's initial balance is the
// previous month's final, unless a manual initial stock overrides it.
// A month with no recorded count rolls the whole month's receipts into
// the final balance with zero consumption. A month with counts anchors
// on the latest checkpoint taken: receipts are split at the checkpoint
// date, consumption is inferred from what went missing before it, and
// the final balance is the count plus whatever arrived after.
//
// Items are independent, so they are computed concurrently.
func BuildChain(items []Item, orders []Order, entries []MonthEntry, dates []MonthDates, year int) Chain {
	entryByItemMonth := make(map[string]map[int]MonthEntry)
	for _, e := range entries {
		if e.Year != year || e.MonthIndex < 0 || e.MonthIndex >= MonthsPerYear {
			continue
		}
		if entryByItemMonth[e.ItemID] == nil {
			entryByItemMonth[e.ItemID] = make(map[int]MonthEntry)
		}
		entryByItemMonth[e.ItemID][e.MonthIndex] = e
	}

	var datesByMonth [MonthsPerYear]MonthDates
	for _, d := range dates {
		if d.Year != year || d.MonthIndex < 0 || d.MonthIndex >= MonthsPerYear {
			continue
		}
		datesByMonth[d.MonthIndex] = d
	}

	chain := make(Chain, len(items))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func(item Item) {
			defer wg.Done()
			results := buildItemChain(item.ID, orders, entryByItemMonth[item.ID], datesByMonth, year)
			mu.Lock()
			chain[item.ID] = results
			mu.Unlock()
		}(item)
	}
	wg.Wait()

	return chain
}

func buildItemChain(itemID string, orders []Order, entries map[int]MonthEntry, dates [MonthsPerYear]MonthDates, year int) [MonthsPerYear]MonthResult {
	var results [MonthsPerYear]MonthResult

	prevFinal := 0
	for m := 0; m < MonthsPerYear; m++ {
		entry, hasEntry := entries[m]

		initial := prevFinal
		if hasEntry && entry.ManualInitialStock != nil {
			initial = *entry.ManualInitialStock
		}

		receipts := monthReceipts(orders, itemID, m, year)
		totalReceived := 0
		for _, r := range receipts {
			totalReceived += r.quantity
		}

		last := -1
		if hasEntry {
			last = lastCheckpoint(entry)
		}

		var result MonthResult
		if last < 0 {
			// No count taken this month: everything received stays.
			result = MonthResult{
				Initial:  initial,
				Final:    initial + totalReceived,
				Consumed: 0,
			}
		} else {
			count := *entry.Counts[last]
			countDate := dates[m].Checkpoints[last]

			receivedUpTo := 0
			for _, r := range receipts {
				// An unset count date puts every receipt after the count.
				if !countDate.IsZero() && !r.arrival.After(countDate) {
					receivedUpTo += r.quantity
				}
			}
			receivedAfter := totalReceived - receivedUpTo

			result = MonthResult{
				Initial:  initial,
				Consumed: clampNonNegative(initial + receivedUpTo - count),
				Final:    clampNonNegative(count + receivedAfter),
			}
		}

		results[m] = result
		prevFinal = result.Final
	}

	return results
}

// lastCheckpoint returns the index of the latest checkpoint with a
// recorded count, or -1 when no count was taken.
func lastCheckpoint(entry MonthEntry) int {
	for k := NumCheckpoints - 1; k >= 0; k-- {
		if entry.Counts[k] != nil {
			return k
		}
	}
	return -1
}
