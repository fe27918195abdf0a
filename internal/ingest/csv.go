package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"pesatrack/internal/core"
)

// csvColumns is the header layout ParseCSV expects, matching the exporter.
// The Fuliza Used column is optional so exports from before overdraft
// tracking still load.
var csvColumns = []string{"Transaction Code", "Date", "Type", "Amount", "Balance", "Fuliza Used"}

// ParseCSV reads transaction records from the dashboard's CSV export layout.
// Column order is fixed by the header row; rows with a malformed date or
// amount produce a record that fails validation rather than aborting the
// whole file.
func ParseCSV(r io.Reader) ([]core.TransactionRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var records []core.TransactionRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if len(row) < 5 {
			continue
		}

		rec := core.TransactionRecord{
			Code:     strings.TrimSpace(row[0]),
			Category: strings.TrimSpace(row[2]),
		}
		rec.Timestamp, _ = time.Parse(StatementTimeFormat, strings.TrimSpace(row[1]))
		rec.Amount = parseCSVMoney(row[3])
		rec.Balance = parseCSVMoney(row[4])
		if len(row) > 5 {
			rec.FulizaUsed = parseCSVMoney(row[5])
		}
		records = append(records, rec)
	}
	return records, nil
}

func checkHeader(header []string) error {
	if len(header) < 5 {
		return fmt.Errorf("%w: csv header has %d columns, want at least 5", core.ErrUnsupportedFile, len(header))
	}
	for i, want := range csvColumns[:5] {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("%w: csv column %d is %q, want %q", core.ErrUnsupportedFile, i, header[i], want)
		}
	}
	return nil
}

func parseCSVMoney(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}
