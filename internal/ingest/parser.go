// Package ingest turns raw M-PESA statement exports into ledger records. The
// statement text parser works off the transaction code and narrative phrases
// Safaricom prints; the CSV parser reads back the dashboard's own export
// layout.
package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"pesatrack/internal/core"
)

// StatementTimeFormat is the timestamp layout M-PESA statements print.
const StatementTimeFormat = "2006-01-02 15:04:05"

var (
	codeRe   = regexp.MustCompile(`\bU[A-Z0-9]{9,}\b`)
	dateRe   = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`)
	amountRe = regexp.MustCompile(`-?\d{1,3}(?:,\d{3})*\.\d{2}`)
)

// narrativeCategories maps statement narrative phrases to categories, checked
// in order. More specific phrases come before the generic ones they overlap.
var narrativeCategories = []struct {
	marker   string
	category string
}{
	{"Funds received", "Received"},
	{"Merchant Payment", core.CategoryMerchantPayment},
	{"Loan Repayment", core.CategoryFulizaRepayment},
	{"Bundle Purchase", "Bundle Purchase"},
	{"Pay Bill", core.CategoryMerchantPayment},
	{"Unit Trust Invest", "Ziidi Investment"},
	{"Customer Transfer", "Money Transfer"},
	{"Airtime Purchase", "Airtime Purchase"},
	{"C2B Transfer", "Airtel Money Transfer"},
	{"Unit Trust Withdraw", "Ziidi Withdrawal"},
	{"OverDraft of Credit Party", core.CategoryFuliza},
	{"Customer Withdrawal At Agent", "Withdrawal"},
	{"Withdrawal Charge", "Withdrawal Charge"},
	{"Business Payment from", "Received"},
	{"Customer Payment to Small", core.CategoryMerchantPayment},
}

// ParseStatementText extracts transaction records from raw statement text.
// The text is split on transaction codes; each code's trailing body yields
// the date, the first monetary value as the amount and the last as the
// running balance. Bodies with no parseable date produce a record with a zero
// timestamp, which downstream validation rejects and counts.
func ParseStatementText(raw string) []core.TransactionRecord {
	codes := codeRe.FindAllString(raw, -1)
	bodies := codeRe.Split(raw, -1)

	records := make([]core.TransactionRecord, 0, len(codes))
	for i, code := range codes {
		body := bodies[i+1]

		var timestamp time.Time
		if m := dateRe.FindString(body); m != "" {
			timestamp, _ = time.Parse(StatementTimeFormat, m)
		}

		var amount, balance float64
		if amounts := amountRe.FindAllString(body, -1); len(amounts) > 0 {
			amount = parseMoney(amounts[0])
			balance = parseMoney(amounts[len(amounts)-1])
		}

		records = append(records, core.TransactionRecord{
			Code:      code,
			Timestamp: timestamp,
			Category:  classify(body),
			Amount:    amount,
			Balance:   balance,
		})
	}
	return records
}

func classify(body string) string {
	for _, nc := range narrativeCategories {
		if strings.Contains(body, nc.marker) {
			return nc.category
		}
	}
	return "Other"
}

// parseMoney converts a comma-grouped statement figure like "-1,460.00".
func parseMoney(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// ConsolidateFuliza folds overdraft draw rows into the transaction that
// triggered them. Statements record a Fuliza draw as a separate positive row
// sharing the funded transaction's code; the draw amount moves onto the
// funded row's FulizaUsed field and the artificial inflow row is dropped.
// Groups consisting only of draw rows are dropped entirely.
func ConsolidateFuliza(records []core.TransactionRecord) []core.TransactionRecord {
	groups := make(map[string][]core.TransactionRecord)
	order := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := groups[r.Code]; !ok {
			order = append(order, r.Code)
		}
		groups[r.Code] = append(groups[r.Code], r)
	}

	out := make([]core.TransactionRecord, 0, len(order))
	for _, code := range order {
		group := groups[code]
		row := group[0]

		var drawn float64
		for _, r := range group {
			if r.Category == core.CategoryFuliza {
				drawn += r.Amount
			}
		}
		if drawn != 0 {
			if row.Category == core.CategoryFuliza {
				continue
			}
			row.FulizaUsed = drawn
		}
		out = append(out, row)
	}
	return out
}
