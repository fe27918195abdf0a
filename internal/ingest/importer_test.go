package ingest

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"pesatrack/internal/core"
	"pesatrack/internal/ledger"
	"pesatrack/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

type capturePersister struct {
	batches [][]core.TransactionRecord
}

func (c *capturePersister) ReplaceBatch(_ context.Context, records []core.TransactionRecord) error {
	c.batches = append(c.batches, records)
	return nil
}

func TestImporterCSV(t *testing.T) {
	csvData := strings.Join([]string{
		"Transaction Code,Date,Type,Amount,Balance,Fuliza Used",
		"UAA11AAAAA,2025-03-01 09:00:00,Received,1000.00,1000.00,0.00",
		"UBB22BBBBB,2025-03-02 12:00:00,Merchant Payment,-200.00,800.00,50.00",
	}, "\n")

	store := ledger.New()
	repo := &capturePersister{}
	im := NewImporter(store, repo, testLogger())

	res, err := im.Import(context.Background(), "statement.csv", []byte(csvData))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 0 {
		t.Fatalf("result = %+v", res)
	}
	if res.BatchID == "" {
		t.Fatal("missing batch id")
	}
	if store.Len() != 2 {
		t.Fatalf("ledger has %d records, want 2", store.Len())
	}
	if len(repo.batches) != 1 || len(repo.batches[0]) != 2 {
		t.Fatalf("persister saw %v", repo.batches)
	}
}

func TestImporterDeduplicatesByCode(t *testing.T) {
	store := ledger.New()
	store.Load([]core.TransactionRecord{{
		Code: "UAA11AAAAA", Timestamp: mustTime(t, "2025-03-01 09:00:00"), Category: "Received", Amount: 1000,
	}})
	im := NewImporter(store, nil, testLogger())

	csvData := strings.Join([]string{
		"Transaction Code,Date,Type,Amount,Balance",
		"UAA11AAAAA,2025-03-01 09:00:00,Received,1000.00,1000.00",
		"UCC33CCCCC,2025-03-03 08:00:00,Money Transfer,-150.00,850.00",
	}, "\n")

	res, err := im.Import(context.Background(), "again.csv", []byte(csvData))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 1 {
		t.Fatalf("result = %+v, want 1 imported 1 skipped", res)
	}
	if store.Len() != 2 {
		t.Fatalf("ledger has %d records, want 2", store.Len())
	}
}

func TestImporterSkipsMalformedRows(t *testing.T) {
	csvData := strings.Join([]string{
		"Transaction Code,Date,Type,Amount,Balance",
		"UAA11AAAAA,not-a-date,Received,1000.00,1000.00",
		"UBB22BBBBB,2025-03-02 12:00:00,Merchant Payment,-200.00,800.00",
	}, "\n")

	im := NewImporter(ledger.New(), nil, testLogger())
	res, err := im.Import(context.Background(), "bad.csv", []byte(csvData))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 1 {
		t.Fatalf("result = %+v, want 1 imported 1 skipped", res)
	}
}

func TestImporterStatementText(t *testing.T) {
	im := NewImporter(ledger.New(), nil, testLogger())

	res, err := im.Import(context.Background(), "statement.txt", []byte(sampleStatement))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 4 {
		t.Fatalf("imported = %d, want 4", res.Imported)
	}
}

func TestImporterUnsupportedExtension(t *testing.T) {
	im := NewImporter(ledger.New(), nil, testLogger())

	if _, err := im.Import(context.Background(), "statement.pdf", []byte("%PDF-1.4")); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestParseCSVRejectsWrongHeader(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("foo,bar,baz,qux,quux\n"))
	if err == nil {
		t.Fatal("expected header mismatch error")
	}
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(StatementTimeFormat, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return parsed
}
