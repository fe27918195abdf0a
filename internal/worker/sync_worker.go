// Package worker mirrors the persisted ledger into Google Sheets. It consumes
// import notifications from AMQP and also resyncs on a timer, so a lost
// message delays the mirror instead of losing data.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pesatrack/internal/amqp"
	"pesatrack/internal/core"
	"pesatrack/internal/log"
	"pesatrack/internal/sheets"
)

// BatchLoader reads the persisted ledger in pages.
type BatchLoader interface {
	LoadPage(ctx context.Context, limit, offset int) ([]core.TransactionRecord, error)
}

// SyncWorker replaces the spreadsheet contents with the persisted ledger
// whenever an import lands or the periodic resync fires.
type SyncWorker struct {
	loader    BatchLoader
	mirror    sheets.LedgerMirror
	logger    *log.Logger
	batchSize int
	interval  time.Duration

	mu          sync.Mutex
	lastVersion uint64
	synced      bool
}

func NewSyncWorker(loader BatchLoader, mirror sheets.LedgerMirror, logger *log.Logger, batchSize int, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		loader:    loader,
		mirror:    mirror,
		logger:    logger.WithComponent(log.ComponentWorker),
		batchSize: batchSize,
		interval:  interval,
	}
}

// HandleImportMessage processes one import notification. Messages carrying a
// ledger version at or below the last mirrored one are acknowledged without
// work; the mirror already reflects a newer ledger.
func (w *SyncWorker) HandleImportMessage(ctx context.Context, msg *amqp.StatementImportedMessage) error {
	w.mu.Lock()
	stale := w.synced && msg.LedgerVersion <= w.lastVersion
	w.mu.Unlock()
	if stale {
		w.logger.InfoContext(ctx, "skipping stale import message",
			log.FieldBatchID, msg.BatchID,
			log.FieldLedgerVer, msg.LedgerVersion)
		return nil
	}

	if err := w.resync(ctx); err != nil {
		return fmt.Errorf("sync batch %s: %w", msg.BatchID, err)
	}

	w.mu.Lock()
	if msg.LedgerVersion > w.lastVersion {
		w.lastVersion = msg.LedgerVersion
	}
	w.synced = true
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "import mirrored to sheets",
		log.FieldOperation, log.OpSync,
		log.FieldBatchID, msg.BatchID,
		log.FieldImported, msg.Imported,
		log.FieldLedgerVer, msg.LedgerVersion)
	return nil
}

// StartupSync mirrors whatever the store holds at boot, recovering from
// messages missed while the worker was down.
func (w *SyncWorker) StartupSync(ctx context.Context) error {
	if err := w.resync(ctx); err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	w.mu.Lock()
	w.synced = true
	w.mu.Unlock()
	w.logger.InfoContext(ctx, "startup sync completed", log.FieldOperation, log.OpStartup)
	return nil
}

// RunPeriodic resyncs on the configured interval until ctx is cancelled.
// Failures are logged and retried on the next tick.
func (w *SyncWorker) RunPeriodic(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.resync(ctx); err != nil {
				w.logger.ErrorContext(ctx, "periodic resync failed",
					log.FieldOperation, log.OpSync,
					log.FieldError, err.Error())
			}
		}
	}
}

// resync assembles the full persisted ledger page by page and replaces the
// spreadsheet contents with it.
func (w *SyncWorker) resync(ctx context.Context) error {
	var records []core.TransactionRecord
	for offset := 0; ; offset += w.batchSize {
		page, err := w.loader.LoadPage(ctx, w.batchSize, offset)
		if err != nil {
			return fmt.Errorf("load ledger page at %d: %w", offset, err)
		}
		records = append(records, page...)
		if len(page) < w.batchSize {
			break
		}
	}

	if err := w.mirror.ReplaceRows(ctx, records); err != nil {
		return fmt.Errorf("replace mirror rows: %w", err)
	}

	w.logger.InfoContext(ctx, "ledger mirrored",
		log.FieldOperation, log.OpSync,
		log.FieldLedgerSize, len(records))
	return nil
}
