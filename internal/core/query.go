// Package core implements the transaction analytics and query engine:
// filtering with deterministic pagination, derived aggregate views, and the
// CSV export format. Every operation is a pure function over the ledger slice
// it is handed; nothing in this package holds state.
package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type (
	// Query is a filter specification over the ledger. Zero values mean
	// "predicate omitted"; all supplied predicates must pass (logical AND).
	Query struct {
		// Text matches as a case-insensitive substring of code or category.
		Text string
		// Start/End bound the calendar date, inclusive on both sides. A
		// single bound filters one side only.
		Start time.Time
		End   time.Time
		// Category matches exactly, case-sensitive.
		Category string
		// MinAmount/MaxAmount bound the signed amount, inclusive. Callers
		// wanting "outflows over X" pass a negative bound.
		MinAmount *float64
		MaxAmount *float64

		Page     int // 1-based
		PageSize int
	}

	// ResultPage is one page of matches plus the total match count ignoring
	// pagination.
	ResultPage struct {
		Total    int                 `json:"total"`
		Page     int                 `json:"page"`
		PageSize int                 `json:"page_size"`
		Data     []TransactionRecord `json:"data"`
	}
)

// Search applies q to the ledger and returns the requested page. Matches are
// ordered newest first, ties broken by code ascending, so re-running the same
// query against an unchanged ledger always yields the same page. A page past
// the end returns empty data with the correct total.
func Search(records []TransactionRecord, q Query) (ResultPage, error) {
	if q.Page < 1 {
		return ResultPage{}, fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidQuery, q.Page)
	}
	if q.PageSize < 1 {
		return ResultPage{}, fmt.Errorf("%w: page size must be >= 1, got %d", ErrInvalidQuery, q.PageSize)
	}

	matched := make([]TransactionRecord, 0, len(records))
	for _, r := range records {
		if q.matches(r) {
			matched = append(matched, r)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.After(matched[j].Timestamp)
		}
		return matched[i].Code < matched[j].Code
	})

	page := ResultPage{
		Total:    len(matched),
		Page:     q.Page,
		PageSize: q.PageSize,
		Data:     []TransactionRecord{},
	}

	lo := (q.Page - 1) * q.PageSize
	if lo >= len(matched) {
		return page, nil
	}
	hi := lo + q.PageSize
	if hi > len(matched) {
		hi = len(matched)
	}
	page.Data = append(page.Data, matched[lo:hi]...)
	return page, nil
}

func (q Query) matches(r TransactionRecord) bool {
	if q.Text != "" {
		term := strings.ToLower(q.Text)
		if !strings.Contains(strings.ToLower(r.Code), term) &&
			!strings.Contains(strings.ToLower(r.Category), term) {
			return false
		}
	}
	if !q.Start.IsZero() && r.Day().Before(dayOf(q.Start)) {
		return false
	}
	if !q.End.IsZero() && r.Day().After(dayOf(q.End)) {
		return false
	}
	if q.Category != "" && r.Category != q.Category {
		return false
	}
	if q.MinAmount != nil && r.Amount < *q.MinAmount {
		return false
	}
	if q.MaxAmount != nil && r.Amount > *q.MaxAmount {
		return false
	}
	return true
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
