package amqp

import (
	"encoding/json"
	"time"
)

// StatementImportedMessage tells the sync worker that a statement import
// changed the ledger. It carries only identifiers and counts; the worker
// fetches the full batch from storage.
type StatementImportedMessage struct {
	BatchID       string    `json:"batch_id"`
	Imported      int       `json:"imported"`
	Skipped       int       `json:"skipped"`
	LedgerVersion uint64    `json:"ledger_version"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewStatementImportedMessage creates a sync message for one import batch
func NewStatementImportedMessage(batchID string, imported, skipped int, ledgerVersion uint64) *StatementImportedMessage {
	return &StatementImportedMessage{
		BatchID:       batchID,
		Imported:      imported,
		Skipped:       skipped,
		LedgerVersion: ledgerVersion,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *StatementImportedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// StatementImportedMessageFromJSON creates a message from JSON bytes
func StatementImportedMessageFromJSON(data []byte) (*StatementImportedMessage, error) {
	var msg StatementImportedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
