package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthSummary aggregates the records of a single calendar month.
// Total and Average are rounded to two decimal places; the per-category
// subtotals are not.
type MonthSummary struct {
	Year       int                        `json:"year"`
	Month      time.Month                 `json:"month"`
	Total      decimal.Decimal            `json:"total_amount"`
	Count      int                        `json:"expense_count"`
	Average    decimal.Decimal            `json:"average_amount"`
	Categories map[string]decimal.Decimal `json:"categories"`
}

func summarize(year int, month time.Month, records []Record) MonthSummary {
	summary := MonthSummary{
		Year:       year,
		Month:      month,
		Total:      decimal.Zero,
		Average:    decimal.Zero,
		Categories: sumByCategory(records),
	}
	if len(records) == 0 {
		return summary
	}

	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	summary.Count = len(records)
	summary.Total = total.Round(2)
	summary.Average = total.Div(decimal.NewFromInt(int64(len(records)))).Round(2)
	return summary
}

func sumByCategory(records []Record) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, r := range records {
		if sum, ok := totals[r.Category]; ok {
			totals[r.Category] = sum.Add(r.Amount)
		} else {
			totals[r.Category] = r.Amount
		}
	}
	return totals
}
