package core

import (
	"math"
	"sort"
	"time"
)

type (
	// SummaryView carries the dashboard KPI figures derived from the full
	// ledger. All monetary fields are non-negative magnitudes except Net,
	// which may go negative when outflows exceed inflows.
	SummaryView struct {
		TotalInflow      float64 `json:"total_inflow"`
		LifestyleOutflow float64 `json:"lifestyle_outflow"`
		Net              float64 `json:"net"`
		FulizaUsed       float64 `json:"fuliza_used"`
		FulizaRepaid     float64 `json:"fuliza_repaid"`
		MerchantSpend    float64 `json:"merchant_spend"`
	}

	// CategoryRollup is the signed sum and record count for one category.
	CategoryRollup struct {
		Category string  `json:"type"`
		Total    float64 `json:"total"`
		Count    int     `json:"count"`
	}

	// TimelinePoint is the Fuliza draw total for one calendar day.
	TimelinePoint struct {
		Date  time.Time `json:"date"`
		Value float64   `json:"value"`
	}

	// FulizaStats is the overdraft analytics view: totals, the used/inflow
	// ratio, and the per-day draw timeline in date-ascending order.
	FulizaStats struct {
		UsedTotal   float64         `json:"fuliza_used_total"`
		UsedCount   int             `json:"fuliza_used_count"`
		RepaidTotal float64         `json:"fuliza_repaid_total"`
		Ratio       float64         `json:"fuliza_ratio"`
		Timeline    []TimelinePoint `json:"timeline"`
	}
)

// Summarize computes the KPI summary over the ledger. Malformed records are
// skipped and counted in the second return value, never silently summed.
// An empty ledger yields a zero-valued view, not an error.
func Summarize(records []TransactionRecord) (SummaryView, int) {
	valid, skipped := validRecords(records)

	var s SummaryView
	var outflowTotal float64
	for _, r := range valid {
		switch {
		case r.Amount > 0:
			s.TotalInflow += r.Amount
		case r.Amount < 0:
			out := -r.Amount
			outflowTotal += out
			if r.Category != CategoryFuliza && r.Category != CategoryFulizaRepayment {
				s.LifestyleOutflow += out
			}
			if r.Category == CategoryFulizaRepayment {
				s.FulizaRepaid += out
			}
			if r.Category == CategoryMerchantPayment {
				s.MerchantSpend += out
			}
		}
		s.FulizaUsed += r.FulizaUsed
	}
	s.Net = s.TotalInflow - outflowTotal
	return s, skipped
}

// RollupByCategory groups the ledger by exact category value. Totals are
// signed sums, so rollup totals add up to the ledger's total signed amount.
// No category is dropped, zero totals included. Result order is unspecified;
// callers sort for presentation.
func RollupByCategory(records []TransactionRecord) ([]CategoryRollup, int) {
	valid, skipped := validRecords(records)

	byCat := make(map[string]*CategoryRollup)
	order := make([]string, 0)
	for _, r := range valid {
		ru, ok := byCat[r.Category]
		if !ok {
			ru = &CategoryRollup{Category: r.Category}
			byCat[r.Category] = ru
			order = append(order, r.Category)
		}
		ru.Total += r.Amount
		ru.Count++
	}

	out := make([]CategoryRollup, 0, len(order))
	for _, cat := range order {
		out = append(out, *byCat[cat])
	}
	return out, skipped
}

// TopExpenses returns the n records with the largest outflow magnitude,
// ranked by magnitude descending with most-recent timestamp breaking ties.
// n <= 0 yields an empty slice.
func TopExpenses(records []TransactionRecord, n int) ([]TransactionRecord, int) {
	valid, skipped := validRecords(records)
	if n <= 0 {
		return []TransactionRecord{}, skipped
	}

	expenses := make([]TransactionRecord, 0, len(valid))
	for _, r := range valid {
		if r.Amount < 0 {
			expenses = append(expenses, r)
		}
	}
	sort.Slice(expenses, func(i, j int) bool {
		mi, mj := -expenses[i].Amount, -expenses[j].Amount
		if mi != mj {
			return mi > mj
		}
		return expenses[i].Timestamp.After(expenses[j].Timestamp)
	})

	if n > len(expenses) {
		n = len(expenses)
	}
	return expenses[:n], skipped
}

// FulizaUsage computes overdraft analytics over the ledger. The ratio is
// defined as 0 when total inflow is 0.
func FulizaUsage(records []TransactionRecord) (FulizaStats, int) {
	valid, skipped := validRecords(records)

	var stats FulizaStats
	var totalInflow float64
	perDay := make(map[time.Time]float64)
	for _, r := range valid {
		if r.Amount > 0 {
			totalInflow += r.Amount
		}
		if r.Amount < 0 && r.Category == CategoryFulizaRepayment {
			stats.RepaidTotal += -r.Amount
		}
		if r.FulizaUsed > 0 {
			stats.UsedTotal += r.FulizaUsed
			stats.UsedCount++
			perDay[r.Day()] += r.FulizaUsed
		}
	}

	if totalInflow > 0 {
		stats.Ratio = stats.UsedTotal / totalInflow
	}

	days := make([]time.Time, 0, len(perDay))
	for day := range perDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	stats.Timeline = make([]TimelinePoint, 0, len(days))
	for _, day := range days {
		stats.Timeline = append(stats.Timeline, TimelinePoint{Date: day, Value: perDay[day]})
	}
	return stats, skipped
}

// Round2 rounds a monetary value to two decimal places for display, matching
// the statement precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
