package core

import (
	"errors"
	"testing"
	"time"
)

func ts(day, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC)
}

func sampleLedger() []TransactionRecord {
	return []TransactionRecord{
		{Code: "UA111AAAAA", Timestamp: ts(1, 9), Category: "Received", Amount: 1000, Balance: 1000},
		{Code: "UB222BBBBB", Timestamp: ts(2, 12), Category: "Merchant Payment", Amount: -200, Balance: 800},
		{Code: "UC333CCCCC", Timestamp: ts(3, 8), Category: "Money Transfer", Amount: -150, Balance: 650},
		{Code: "UD444DDDDD", Timestamp: ts(3, 8), Category: "Airtime Purchase", Amount: -50, Balance: 600},
		{Code: "UE555EEEEE", Timestamp: ts(5, 17), Category: "Fuliza Repayment", Amount: -120, Balance: 480},
	}
}

func TestSearchPagination(t *testing.T) {
	ledger := sampleLedger()[:3]

	p1, err := Search(ledger, Query{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if p1.Total != 3 || len(p1.Data) != 2 {
		t.Fatalf("page 1: total=%d len=%d, want 3 and 2", p1.Total, len(p1.Data))
	}

	p2, err := Search(ledger, Query{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if p2.Total != 3 || len(p2.Data) != 1 {
		t.Fatalf("page 2: total=%d len=%d, want 3 and 1", p2.Total, len(p2.Data))
	}

	p3, err := Search(ledger, Query{Page: 3, PageSize: 2})
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if p3.Total != 3 || len(p3.Data) != 0 {
		t.Fatalf("page past end: total=%d len=%d, want 3 and 0", p3.Total, len(p3.Data))
	}

	// No record appears on two pages and every match appears exactly once.
	seen := map[string]bool{}
	for _, page := range []ResultPage{p1, p2, p3} {
		for _, r := range page.Data {
			if seen[r.Code] {
				t.Fatalf("record %s returned on more than one page", r.Code)
			}
			seen[r.Code] = true
		}
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct records across pages, got %d", len(seen))
	}
}

func TestSearchOrderingDeterministic(t *testing.T) {
	ledger := sampleLedger()

	page, err := Search(ledger, Query{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []string{"UE555EEEEE", "UC333CCCCC", "UD444DDDDD", "UB222BBBBB", "UA111AAAAA"}
	if len(page.Data) != len(want) {
		t.Fatalf("got %d records, want %d", len(page.Data), len(want))
	}
	for i, code := range want {
		if page.Data[i].Code != code {
			t.Fatalf("position %d: got %s, want %s", i, page.Data[i].Code, code)
		}
	}

	// Re-running the same query yields the same slice.
	again, _ := Search(ledger, Query{Page: 1, PageSize: 10})
	for i := range page.Data {
		if page.Data[i].Code != again.Data[i].Code {
			t.Fatalf("ordering not stable at position %d", i)
		}
	}
}

func TestSearchPredicates(t *testing.T) {
	ledger := sampleLedger()
	neg200 := -200.0
	neg100 := -100.0

	cases := []struct {
		name string
		q    Query
		want []string
	}{
		{"text matches code", Query{Text: "ub222"}, []string{"UB222BBBBB"}},
		{"text matches category", Query{Text: "merchant"}, []string{"UB222BBBBB"}},
		{"category exact", Query{Category: "Money Transfer"}, []string{"UC333CCCCC"}},
		{"category is case sensitive", Query{Category: "money transfer"}, nil},
		{"start bound only", Query{Start: ts(3, 0)}, []string{"UE555EEEEE", "UC333CCCCC", "UD444DDDDD"}},
		{"end bound only", Query{End: ts(2, 23)}, []string{"UB222BBBBB", "UA111AAAAA"}},
		{"date range", Query{Start: ts(2, 0), End: ts(3, 0)}, []string{"UC333CCCCC", "UD444DDDDD", "UB222BBBBB"}},
		{"signed amount bounds", Query{MinAmount: &neg200, MaxAmount: &neg100}, []string{"UE555EEEEE", "UC333CCCCC", "UB222BBBBB"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.q.Page = 1
			tc.q.PageSize = 50
			page, err := Search(ledger, tc.q)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(page.Data) != len(tc.want) {
				t.Fatalf("got %d matches, want %d", len(page.Data), len(tc.want))
			}
			for i, code := range tc.want {
				if page.Data[i].Code != code {
					t.Fatalf("position %d: got %s, want %s", i, page.Data[i].Code, code)
				}
			}
		})
	}
}

func TestSearchFilteringMonotonic(t *testing.T) {
	ledger := sampleLedger()

	base, _ := Search(ledger, Query{Page: 1, PageSize: 50})
	narrowed, _ := Search(ledger, Query{Text: "u", Category: "Merchant Payment", Page: 1, PageSize: 50})
	if narrowed.Total > base.Total {
		t.Fatalf("adding predicates increased total: %d > %d", narrowed.Total, base.Total)
	}
}

func TestSearchInvalidQuery(t *testing.T) {
	ledger := sampleLedger()

	cases := []Query{
		{Page: 0, PageSize: 10},
		{Page: -1, PageSize: 10},
		{Page: 1, PageSize: 0},
		{Page: 1, PageSize: -5},
	}
	for i, q := range cases {
		if _, err := Search(ledger, q); !errors.Is(err, ErrInvalidQuery) {
			t.Fatalf("case %d: expected ErrInvalidQuery, got %v", i, err)
		}
	}
}

func TestSearchEmptyLedger(t *testing.T) {
	page, err := Search(nil, Query{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 0 || len(page.Data) != 0 {
		t.Fatalf("empty ledger: total=%d len=%d", page.Total, len(page.Data))
	}
}
