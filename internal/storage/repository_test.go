package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pesatrack/internal/core"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleBatch() []core.TransactionRecord {
	return []core.TransactionRecord{
		{
			Code:      "UA111AAAAA",
			Timestamp: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
			Category:  "Received",
			Amount:    1000,
			Balance:   1000,
		},
		{
			Code:       "UB222BBBBB",
			Timestamp:  time.Date(2025, 3, 2, 12, 30, 45, 0, time.UTC),
			Category:   "Merchant Payment",
			Amount:     -200,
			Balance:    800,
			FulizaUsed: 50,
		},
	}
}

func TestReplaceAndLoadBatch(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.ReplaceBatch(ctx, sampleBatch()); err != nil {
		t.Fatalf("replace batch: %v", err)
	}

	loaded, err := repo.LoadBatch(ctx)
	if err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d records, want 2", len(loaded))
	}

	got := loaded[1]
	if got.Code != "UB222BBBBB" || got.Category != "Merchant Payment" {
		t.Fatalf("record = %+v", got)
	}
	if !got.Timestamp.Equal(time.Date(2025, 3, 2, 12, 30, 45, 0, time.UTC)) {
		t.Fatalf("timestamp = %v", got.Timestamp)
	}
	if got.Amount != -200 || got.Balance != 800 || got.FulizaUsed != 50 {
		t.Fatalf("amounts = %v/%v/%v", got.Amount, got.Balance, got.FulizaUsed)
	}
}

func TestReplaceBatchSwapsWholesale(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.ReplaceBatch(ctx, sampleBatch()); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	replacement := []core.TransactionRecord{{
		Code:      "UC333CCCCC",
		Timestamp: time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC),
		Category:  "Money Transfer",
		Amount:    -150,
		Balance:   650,
	}}
	if err := repo.ReplaceBatch(ctx, replacement); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1 (old batch must be gone)", n)
	}
}

func TestLoadPage(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.ReplaceBatch(ctx, sampleBatch()); err != nil {
		t.Fatalf("replace batch: %v", err)
	}

	first, err := repo.LoadPage(ctx, 1, 0)
	if err != nil {
		t.Fatalf("load first page: %v", err)
	}
	if len(first) != 1 || first[0].Code != "UA111AAAAA" {
		t.Fatalf("first page = %+v", first)
	}

	second, err := repo.LoadPage(ctx, 1, 1)
	if err != nil {
		t.Fatalf("load second page: %v", err)
	}
	if len(second) != 1 || second[0].Code != "UB222BBBBB" {
		t.Fatalf("second page = %+v", second)
	}

	past, err := repo.LoadPage(ctx, 10, 2)
	if err != nil {
		t.Fatalf("load past end: %v", err)
	}
	if len(past) != 0 {
		t.Fatalf("page past end = %+v", past)
	}
}

func TestLoadBatchEmpty(t *testing.T) {
	repo := testRepo(t)

	loaded, err := repo.LoadBatch(context.Background())
	if err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty batch, got %d records", len(loaded))
	}
}
