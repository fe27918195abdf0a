package ingest

import (
	"testing"
	"time"

	"pesatrack/internal/core"
)

const sampleStatement = `MPESA STATEMENT
UAB12CD34X 2025-03-01 09:15:00 Funds received from employer 35,000.00 Completed 35,000.00
UAB56EF78Y 2025-03-02 12:30:45 Merchant Payment to SUPERMARKET -1,460.00 Completed 33,540.00
UAB90GH12Z 2025-03-03 08:00:00 Customer Transfer to JANE -500.00 Completed 33,040.00
UAB34JK56W 2025-03-04 19:45:10 OD Loan Repayment -120.00 Completed 32,920.00
`

func TestParseStatementText(t *testing.T) {
	records := ParseStatementText(sampleStatement)
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}

	first := records[0]
	if first.Code != "UAB12CD34X" {
		t.Errorf("code = %q", first.Code)
	}
	if want := time.Date(2025, 3, 1, 9, 15, 0, 0, time.UTC); !first.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", first.Timestamp, want)
	}
	if first.Category != "Received" {
		t.Errorf("category = %q, want Received", first.Category)
	}
	if first.Amount != 35000 {
		t.Errorf("amount = %v, want 35000 (comma grouping stripped)", first.Amount)
	}
	if first.Balance != 35000 {
		t.Errorf("balance = %v", first.Balance)
	}

	if records[1].Category != core.CategoryMerchantPayment || records[1].Amount != -1460 {
		t.Errorf("merchant row = %+v", records[1])
	}
	if records[2].Category != "Money Transfer" {
		t.Errorf("transfer category = %q", records[2].Category)
	}
	if records[3].Category != core.CategoryFulizaRepayment {
		t.Errorf("repayment category = %q", records[3].Category)
	}
}

func TestParseStatementTextNoDate(t *testing.T) {
	records := ParseStatementText("UAB12CD34X Merchant Payment -100.00 garbled line")
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if !records[0].Timestamp.IsZero() {
		t.Fatalf("expected zero timestamp, got %v", records[0].Timestamp)
	}
	if records[0].Validate() == nil {
		t.Fatal("dateless record should fail validation")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{"Funds received from 0712", "Received"},
		{"Business Payment from ACME LTD", "Received"},
		{"Pay Bill to KPLC", core.CategoryMerchantPayment},
		{"Customer Payment to Small business", core.CategoryMerchantPayment},
		{"OD Loan Repayment", core.CategoryFulizaRepayment},
		{"OverDraft of Credit Party", core.CategoryFuliza},
		{"Airtime Purchase", "Airtime Purchase"},
		{"C2B Transfer via API", "Airtel Money Transfer"},
		{"Unit Trust Investment order", "Ziidi Investment"},
		{"Customer Withdrawal At Agent Till", "Withdrawal"},
		{"something unrecognized", "Other"},
	}
	for i, tc := range cases {
		if got := classify(tc.body); got != tc.want {
			t.Fatalf("case %d: classify(%q) = %q, want %q", i, tc.body, got, tc.want)
		}
	}
}

func TestConsolidateFuliza(t *testing.T) {
	day := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	records := []core.TransactionRecord{
		{Code: "UAA", Timestamp: day, Category: core.CategoryMerchantPayment, Amount: -700},
		{Code: "UAA", Timestamp: day, Category: core.CategoryFuliza, Amount: 200},
		{Code: "UBB", Timestamp: day, Category: "Received", Amount: 1000},
	}

	out := ConsolidateFuliza(records)
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2 (draw row folded away)", len(out))
	}
	if out[0].Code != "UAA" || out[0].FulizaUsed != 200 {
		t.Fatalf("funded row = %+v, want FulizaUsed 200", out[0])
	}
	if out[0].Category != core.CategoryMerchantPayment {
		t.Fatalf("funded row kept wrong category %q", out[0].Category)
	}
	if out[1].FulizaUsed != 0 {
		t.Fatalf("untouched row gained FulizaUsed %v", out[1].FulizaUsed)
	}
}

func TestConsolidateFulizaDrawOnlyGroupDropped(t *testing.T) {
	day := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	records := []core.TransactionRecord{
		{Code: "UCC", Timestamp: day, Category: core.CategoryFuliza, Amount: 300},
	}
	if out := ConsolidateFuliza(records); len(out) != 0 {
		t.Fatalf("draw-only group should be dropped, got %+v", out)
	}
}
