package core

import (
	"errors"
	"time"
)

// Reserved categories used by the summary math. The category vocabulary is
// open (statements introduce new labels freely); only these three carry
// special meaning for the overdraft and merchant aggregates.
const (
	CategoryFuliza          = "Fuliza"
	CategoryFulizaRepayment = "Fuliza Repayment"
	CategoryMerchantPayment = "Merchant Payment"
)

// TransactionRecord is one ledger entry as parsed from an M-PESA statement.
// Amount sign encodes direction: positive is an inflow, negative an outflow.
type TransactionRecord struct {
	Code       string    `json:"transaction_code"`
	Timestamp  time.Time `json:"date"`
	Category   string    `json:"type"`
	Amount     float64   `json:"amount"`
	Balance    float64   `json:"balance"`
	FulizaUsed float64   `json:"fuliza_used"`
}

var (
	ErrInvalidQuery    = errors.New("invalid query")
	ErrMissingCode     = errors.New("missing transaction code")
	ErrMissingDate     = errors.New("missing transaction date")
	ErrNegativeFuliza  = errors.New("negative fuliza amount")
	ErrUnsupportedFile = errors.New("unsupported statement file type")
)

// Validate reports whether the record carries the fields every aggregation
// relies on. Records failing validation are skipped (and counted) rather than
// summed with zero values.
func (r TransactionRecord) Validate() error {
	if r.Code == "" {
		return ErrMissingCode
	}
	if r.Timestamp.IsZero() {
		return ErrMissingDate
	}
	if r.FulizaUsed < 0 {
		return ErrNegativeFuliza
	}
	return nil
}

// Inflow reports whether the record is an inflow. Classification follows the
// amount sign, never the category label.
func (r TransactionRecord) Inflow() bool {
	return r.Amount > 0
}

// Day returns the calendar day of the transaction with the time component
// stripped, in the timestamp's location.
func (r TransactionRecord) Day() time.Time {
	y, m, d := r.Timestamp.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.Timestamp.Location())
}

// validRecords partitions the ledger into records safe to aggregate and a
// count of malformed ones.
func validRecords(records []TransactionRecord) ([]TransactionRecord, int) {
	skipped := 0
	valid := make([]TransactionRecord, 0, len(records))
	for _, r := range records {
		if r.Validate() != nil {
			skipped++
			continue
		}
		valid = append(valid, r)
	}
	return valid, skipped
}
