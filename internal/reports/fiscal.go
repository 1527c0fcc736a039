// Package reports derives the fiscal cost table and dashboard metrics
// from the reconciliation chain.
package reports

import (
	"github.com/shopspring/decimal"
	"github.com/vaxstock/vaxstock-backend/internal/reconcile"
)

// FiscalLine is one row of the monthly cost table.
type FiscalLine struct {
	ItemID        string          `json:"item_id"`
	ItemName      string          `json:"item_name"`
	ConsumedUnits int             `json:"consumed_units"`
	ConsumedDoses int             `json:"consumed_doses"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	DoseCost      decimal.Decimal `json:"dose_cost"`
	Total         decimal.Decimal `json:"total"`
}

// FiscalReport is the monthly cost table with its grand total and the
// cost per unit produced.
type FiscalReport struct {
	Lines               []FiscalLine    `json:"lines"`
	GrandTotal          decimal.Decimal `json:"grand_total"`
	Production          int             `json:"production"`
	CostPerUnitProduced decimal.Decimal `json:"cost_per_unit_produced"`
}

// BuildFiscalReport derives the cost table for one month. costCents
// maps item ID to the month's average unit cost in cents; items without
// a config cost zero. Production of zero yields a zero cost per unit.
func BuildFiscalReport(items []reconcile.Item, chain reconcile.Chain, costCents map[string]int64, monthIndex, production int) FiscalReport {
	report := FiscalReport{
		Lines:               make([]FiscalLine, 0, len(items)),
		GrandTotal:          decimal.Zero,
		Production:          production,
		CostPerUnitProduced: decimal.Zero,
	}

	for _, item := range items {
		consumed := 0
		if months, ok := chain[item.ID]; ok && monthIndex >= 0 && monthIndex < reconcile.MonthsPerYear {
			consumed = months[monthIndex].Consumed
		}

		dosage := item.Dosage
		if dosage <= 0 {
			dosage = 1
		}

		unitCost := centsToDecimal(costCents[item.ID])
		doseCost := unitCost.Div(decimal.NewFromInt(int64(dosage)))
		total := unitCost.Mul(decimal.NewFromInt(int64(consumed)))

		report.Lines = append(report.Lines, FiscalLine{
			ItemID:        item.ID,
			ItemName:      item.Name,
			ConsumedUnits: consumed,
			ConsumedDoses: consumed * dosage,
			UnitCost:      unitCost,
			DoseCost:      doseCost.Round(4),
			Total:         total,
		})
		report.GrandTotal = report.GrandTotal.Add(total)
	}

	if production > 0 {
		report.CostPerUnitProduced = report.GrandTotal.
			Div(decimal.NewFromInt(int64(production))).Round(4)
	}

	return report
}

func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}
