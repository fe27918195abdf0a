package ingest

import (
	"strings"
	"testing"
	"time"

	"pesatrack/internal/core"
)

func TestParseCSV(t *testing.T) {
	input := strings.Join([]string{
		"Transaction Code,Date,Type,Amount,Balance,Fuliza Used",
		"UAB12CD34X,2025-03-01 09:15:00,Received,35000.00,35000.00,0.00",
		"UAB56EF78Y,2025-03-02 12:30:45,Merchant Payment,-1460.00,33540.00,200.00",
	}, "\n")

	records, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.Code != "UAB12CD34X" || first.Category != "Received" {
		t.Errorf("first record = %+v", first)
	}
	if want := time.Date(2025, 3, 1, 9, 15, 0, 0, time.UTC); !first.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v", first.Timestamp)
	}
	if records[1].Amount != -1460 || records[1].FulizaUsed != 200 {
		t.Errorf("second record = %+v", records[1])
	}
}

func TestParseCSVWithoutFulizaColumn(t *testing.T) {
	input := strings.Join([]string{
		"Transaction Code,Date,Type,Amount,Balance",
		"UAB12CD34X,2025-03-01 09:15:00,Received,100.00,100.00",
	}, "\n")

	records, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 1 || records[0].FulizaUsed != 0 {
		t.Fatalf("records = %+v", records)
	}
}

func TestParseCSVRejectsForeignHeader(t *testing.T) {
	input := "id,when,what\n1,2025-03-01,thing\n"
	if _, err := ParseCSV(strings.NewReader(input)); err == nil {
		t.Fatal("expected header error")
	}
}

func TestParseCSVMalformedRowFailsValidation(t *testing.T) {
	input := strings.Join([]string{
		"Transaction Code,Date,Type,Amount,Balance",
		"UAB12CD34X,not a date,Received,abc,100.00",
	}, "\n")

	records, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Validate() == nil {
		t.Fatal("record with bad date should fail validation")
	}
}

func TestParseCSVRoundTripsExport(t *testing.T) {
	original := []core.TransactionRecord{
		{
			Code:       "UAB12CD34X",
			Timestamp:  time.Date(2025, 3, 1, 9, 15, 0, 0, time.UTC),
			Category:   "Received",
			Amount:     35000,
			Balance:    35000,
			FulizaUsed: 0,
		},
		{
			Code:       "UAB56EF78Y",
			Timestamp:  time.Date(2025, 3, 2, 12, 30, 45, 0, time.UTC),
			Category:   core.CategoryMerchantPayment,
			Amount:     -1460,
			Balance:    33540,
			FulizaUsed: 200,
		},
	}

	parsed, err := ParseCSV(strings.NewReader(core.ExportCSV(original)))
	if err != nil {
		t.Fatalf("parse exported csv: %v", err)
	}
	if len(parsed) != len(original) {
		t.Fatalf("got %d records, want %d", len(parsed), len(original))
	}
	for i := range original {
		if parsed[i].Code != original[i].Code ||
			!parsed[i].Timestamp.Equal(original[i].Timestamp) ||
			parsed[i].Amount != original[i].Amount ||
			parsed[i].FulizaUsed != original[i].FulizaUsed {
			t.Errorf("record %d = %+v, want %+v", i, parsed[i], original[i])
		}
	}
}
