package reconcile

// CheckpointBreakdown infers the consumption between checkpoints of one
// item-month from the recorded counts and the receipts that landed in
// each interval.
//
// For checkpoint k with a recorded count, consumption is what went
// missing since the previous count (the month's initial balance for the
// first checkpoint), clamped at zero. Checkpoints without a count
// contribute nothing. The fortnight subtotals pair S1+S2 and S3+S4.
func CheckpointBreakdown(orders []Order, entry MonthEntry, dates MonthDates, chain Chain, itemID string, monthIndex, year int) Breakdown {
	var bd Breakdown
	if monthIndex < 0 || monthIndex >= MonthsPerYear {
		return bd
	}

	prev := 0
	if months, ok := chain[itemID]; ok {
		prev = months[monthIndex].Initial
	}

	for k := 0; k < NumCheckpoints; k++ {
		received := ReceivedInInterval(orders, dates, itemID, monthIndex, year, k)

		count := 0
		if entry.Counts[k] != nil {
			count = *entry.Counts[k]
		}

		if count > 0 {
			bd.Checkpoints[k] = clampNonNegative(prev + received - count)
		}

		prev = count
	}

	bd.FirstFortnight = bd.Checkpoints[0] + bd.Checkpoints[1]
	bd.SecondFortnight = bd.Checkpoints[2] + bd.Checkpoints[3]
	return bd
}
