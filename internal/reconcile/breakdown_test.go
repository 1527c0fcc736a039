package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckpointBreakdown_PerCheckpointConsumption(t *testing.T) {
	// Initial 1000. S1=900 after 50 received, S2=800 with nothing new.
	entry := MonthEntry{
		ItemID:     "vaccine-a",
		MonthIndex: 0,
		Year:       2025,
		Counts:     [NumCheckpoints]*int{intPtr(900), intPtr(800), nil, nil},
	}
	dates := MonthDates{
		MonthIndex: 0,
		Year:       2025,
		Checkpoints: [NumCheckpoints]time.Time{
			date(2025, time.January, 7),
			date(2025, time.January, 14),
		},
	}
	orders := []Order{receivedOrder("vaccine-a", 50, date(2025, time.January, 3))}
	chain := Chain{"vaccine-a": [MonthsPerYear]MonthResult{{Initial: 1000}}}

	got := CheckpointBreakdown(orders, entry, dates, chain, "vaccine-a", 0, 2025)

	assert.Equal(t, 150, got.Checkpoints[0]) // 1000 + 50 - 900
	assert.Equal(t, 100, got.Checkpoints[1]) // 900 + 0 - 800
	assert.Equal(t, 0, got.Checkpoints[2])
	assert.Equal(t, 0, got.Checkpoints[3])
	assert.Equal(t, 250, got.FirstFortnight)
	assert.Equal(t, 0, got.SecondFortnight)
}

func TestCheckpointBreakdown_MissingCountContributesNothing(t *testing.T) {
	entry := MonthEntry{
		ItemID:     "vaccine-a",
		MonthIndex: 0,
		Year:       2025,
		Counts:     [NumCheckpoints]*int{nil, nil, intPtr(400), nil},
	}
	dates := MonthDates{
		MonthIndex: 0,
		Year:       2025,
		Checkpoints: [NumCheckpoints]time.Time{
			date(2025, time.January, 7),
			date(2025, time.January, 14),
			date(2025, time.January, 21),
		},
	}
	chain := Chain{"vaccine-a": [MonthsPerYear]MonthResult{{Initial: 500}}}

	got := CheckpointBreakdown(nil, entry, dates, chain, "vaccine-a", 0, 2025)

	assert.Equal(t, 0, got.Checkpoints[0])
	assert.Equal(t, 0, got.Checkpoints[1])
	// S3 compares against S2 (unset, treated as 0), so nothing went missing.
	assert.Equal(t, 0, got.Checkpoints[2])
}

func TestCheckpointBreakdown_ClampsAtZero(t *testing.T) {
	// Count above what was on hand: no negative consumption.
	entry := MonthEntry{
		ItemID:     "vaccine-a",
		MonthIndex: 0,
		Year:       2025,
		Counts:     [NumCheckpoints]*int{intPtr(900)},
	}
	dates := MonthDates{
		MonthIndex:  0,
		Year:        2025,
		Checkpoints: [NumCheckpoints]time.Time{date(2025, time.January, 7)},
	}
	chain := Chain{"vaccine-a": [MonthsPerYear]MonthResult{{Initial: 100}}}

	got := CheckpointBreakdown(nil, entry, dates, chain, "vaccine-a", 0, 2025)

	assert.Equal(t, 0, got.Checkpoints[0])
}

func TestCheckpointBreakdown_SecondFortnight(t *testing.T) {
	entry := MonthEntry{
		ItemID:     "vaccine-a",
		MonthIndex: 0,
		Year:       2025,
		Counts: [NumCheckpoints]*int{
			intPtr(1000), intPtr(1000), intPtr(940), intPtr(900),
		},
	}
	dates := MonthDates{
		MonthIndex: 0,
		Year:       2025,
		Checkpoints: [NumCheckpoints]time.Time{
			date(2025, time.January, 7),
			date(2025, time.January, 14),
			date(2025, time.January, 21),
			date(2025, time.January, 28),
		},
	}
	chain := Chain{"vaccine-a": [MonthsPerYear]MonthResult{{Initial: 1000}}}

	got := CheckpointBreakdown(nil, entry, dates, chain, "vaccine-a", 0, 2025)

	assert.Equal(t, 0, got.FirstFortnight)
	assert.Equal(t, 100, got.SecondFortnight) // 60 + 40
}

func TestCheckpointBreakdown_MonthOutOfRange(t *testing.T) {
	got := CheckpointBreakdown(nil, MonthEntry{}, MonthDates{}, Chain{}, "vaccine-a", 12, 2025)
	assert.Equal(t, Breakdown{}, got)
}
