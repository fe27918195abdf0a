package sheets

import (
	"context"

	"pesatrack/internal/core"
)

// LedgerMirror replicates the persisted ledger to an external spreadsheet.
// The whole batch is replaced on each sync, mirroring the storage layer's
// replace-not-patch lifecycle.
type LedgerMirror interface {
	ReplaceRows(ctx context.Context, records []core.TransactionRecord) error
}
