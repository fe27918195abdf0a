package ingest

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"pesatrack/internal/core"
	"pesatrack/internal/ledger"
	"pesatrack/internal/log"
)

// Persister receives each imported batch for durable storage. Implementations
// must be safe for concurrent use.
type Persister interface {
	ReplaceBatch(ctx context.Context, records []core.TransactionRecord) error
}

// ImportResult reports what one statement upload did to the ledger.
type ImportResult struct {
	BatchID  string `json:"batch_id"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Message  string `json:"message"`
}

// Importer parses uploaded statement files and merges them into the ledger.
type Importer struct {
	store  *ledger.Store
	repo   Persister
	logger *log.Logger
}

// NewImporter builds an importer. repo may be nil when the process runs on
// the in-memory backend only.
func NewImporter(store *ledger.Store, repo Persister, logger *log.Logger) *Importer {
	return &Importer{
		store:  store,
		repo:   repo,
		logger: logger.WithComponent(log.ComponentIngest),
	}
}

// Import parses data according to the filename extension, consolidates
// overdraft draw rows, drops malformed records and records whose code is
// already in the ledger, then appends the remainder. The whole post-merge
// ledger is persisted so restarts reload the same view.
func (im *Importer) Import(ctx context.Context, filename string, data []byte) (ImportResult, error) {
	parsed, err := im.parse(filename, data)
	if err != nil {
		return ImportResult{}, err
	}

	batch := ConsolidateFuliza(parsed)
	existing := im.store.Codes()

	fresh := make([]core.TransactionRecord, 0, len(batch))
	skipped := 0
	for _, r := range batch {
		if r.Validate() != nil {
			skipped++
			continue
		}
		if _, dup := existing[r.Code]; dup {
			skipped++
			continue
		}
		existing[r.Code] = struct{}{}
		fresh = append(fresh, r)
	}

	im.store.Append(fresh)
	if im.repo != nil {
		if err := im.repo.ReplaceBatch(ctx, im.store.All()); err != nil {
			return ImportResult{}, fmt.Errorf("persist imported batch: %w", err)
		}
	}

	result := ImportResult{
		BatchID:  uuid.NewString(),
		Imported: len(fresh),
		Skipped:  skipped,
		Message:  fmt.Sprintf("imported %d transactions, skipped %d", len(fresh), skipped),
	}
	im.logger.InfoContext(ctx, "statement imported",
		log.FieldOperation, log.OpImport,
		log.FieldBatchID, result.BatchID,
		log.FieldFilename, filename,
		log.FieldImported, result.Imported,
		log.FieldSkipped, result.Skipped,
		log.FieldLedgerSize, im.store.Len(),
	)
	return result, nil
}

func (im *Importer) parse(filename string, data []byte) ([]core.TransactionRecord, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return ParseCSV(bytes.NewReader(data))
	case ".txt":
		return ParseStatementText(string(data)), nil
	default:
		return nil, fmt.Errorf("%w: %s (use .csv or .txt)", core.ErrUnsupportedFile, ext)
	}
}
