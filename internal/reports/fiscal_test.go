package reports

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaxstock/vaxstock-backend/internal/reconcile"
)

func monthChain(itemID string, monthIndex, consumed, final int) reconcile.Chain {
	var months [reconcile.MonthsPerYear]reconcile.MonthResult
	months[monthIndex] = reconcile.MonthResult{Consumed: consumed, Final: final}
	return reconcile.Chain{itemID: months}
}

func TestBuildFiscalReport_LineMath(t *testing.T) {
	items := []reconcile.Item{{ID: "bcg", Name: "BCG", Dosage: 10}}
	chain := monthChain("bcg", 3, 42, 0)
	costs := map[string]int64{"bcg": 2550} // 25.50 per vial

	report := BuildFiscalReport(items, chain, costs, 3, 0)

	require.Len(t, report.Lines, 1)
	line := report.Lines[0]
	assert.Equal(t, 42, line.ConsumedUnits)
	assert.Equal(t, 420, line.ConsumedDoses)
	assert.True(t, line.UnitCost.Equal(decimal.RequireFromString("25.50")), line.UnitCost.String())
	assert.True(t, line.DoseCost.Equal(decimal.RequireFromString("2.55")), line.DoseCost.String())
	assert.True(t, line.Total.Equal(decimal.RequireFromString("1071.00")), line.Total.String())
	assert.True(t, report.GrandTotal.Equal(line.Total))
}

func TestBuildFiscalReport_CostPerUnitProduced(t *testing.T) {
	items := []reconcile.Item{{ID: "bcg", Name: "BCG", Dosage: 1}}
	chain := monthChain("bcg", 0, 100, 0)
	costs := map[string]int64{"bcg": 200} // 2.00

	report := BuildFiscalReport(items, chain, costs, 0, 50)

	// 200.00 total over 50 produced units.
	assert.True(t, report.CostPerUnitProduced.Equal(decimal.RequireFromString("4")), report.CostPerUnitProduced.String())
}

func TestBuildFiscalReport_ZeroProductionYieldsZeroCostPerUnit(t *testing.T) {
	items := []reconcile.Item{{ID: "bcg", Dosage: 1}}
	chain := monthChain("bcg", 0, 100, 0)

	report := BuildFiscalReport(items, chain, map[string]int64{"bcg": 100}, 0, 0)

	assert.True(t, report.CostPerUnitProduced.IsZero())
}

func TestBuildFiscalReport_MissingConfigCostsZero(t *testing.T) {
	items := []reconcile.Item{{ID: "bcg", Dosage: 5}}
	chain := monthChain("bcg", 0, 10, 0)

	report := BuildFiscalReport(items, chain, map[string]int64{}, 0, 0)

	require.Len(t, report.Lines, 1)
	assert.True(t, report.Lines[0].Total.IsZero())
	assert.Equal(t, 50, report.Lines[0].ConsumedDoses)
}

func TestBuildFiscalReport_ZeroDosageTreatedAsSingleDose(t *testing.T) {
	items := []reconcile.Item{{ID: "bcg", Dosage: 0}}
	chain := monthChain("bcg", 0, 10, 0)

	report := BuildFiscalReport(items, chain, map[string]int64{"bcg": 100}, 0, 0)

	require.Len(t, report.Lines, 1)
	assert.Equal(t, 10, report.Lines[0].ConsumedDoses)
	assert.True(t, report.Lines[0].DoseCost.Equal(decimal.RequireFromString("1")))
}

func TestBuildFiscalReport_GrandTotalSumsAllItems(t *testing.T) {
	items := []reconcile.Item{
		{ID: "a", Dosage: 1},
		{ID: "b", Dosage: 1},
	}
	chain := reconcile.Chain{}
	var aMonths, bMonths [reconcile.MonthsPerYear]reconcile.MonthResult
	aMonths[0] = reconcile.MonthResult{Consumed: 10}
	bMonths[0] = reconcile.MonthResult{Consumed: 20}
	chain["a"] = aMonths
	chain["b"] = bMonths

	report := BuildFiscalReport(items, chain, map[string]int64{"a": 100, "b": 50}, 0, 0)

	// 10*1.00 + 20*0.50 = 20.00
	assert.True(t, report.GrandTotal.Equal(decimal.RequireFromString("20.00")), report.GrandTotal.String())
}
