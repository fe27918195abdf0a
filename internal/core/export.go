package core

import (
	"strconv"
	"strings"
)

// ExportTimeFormat is the fixed, lexically sortable timestamp layout used in
// exported rows.
const ExportTimeFormat = "2006-01-02 15:04:05"

// exportHeader is the fixed column order of the delimited export.
var exportHeader = []string{"Transaction Code", "Date", "Type", "Amount", "Balance", "Fuliza Used"}

// ExportCSV renders records as comma-delimited text with a fixed header row.
// Input order is preserved; callers pass records in the order they should
// appear. Embedded commas in field values are not escaped; this mirrors the
// dashboard's plain download format and is a documented limitation, not an
// RFC 4180 guarantee.
func ExportCSV(records []TransactionRecord) string {
	var b strings.Builder
	b.WriteString(strings.Join(exportHeader, ","))
	for _, r := range records {
		b.WriteByte('\n')
		b.WriteString(r.Code)
		b.WriteByte(',')
		b.WriteString(r.Timestamp.Format(ExportTimeFormat))
		b.WriteByte(',')
		b.WriteString(r.Category)
		b.WriteByte(',')
		b.WriteString(formatAmount(r.Amount))
		b.WriteByte(',')
		b.WriteString(formatAmount(r.Balance))
		b.WriteByte(',')
		b.WriteString(formatAmount(r.FulizaUsed))
	}
	return b.String()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
