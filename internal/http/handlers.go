package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"pesatrack/internal/core"
	"pesatrack/internal/log"
)

// maxUploadBytes bounds statement uploads. M-PESA statements are small text
// files; anything near this limit is not a statement.
const maxUploadBytes = 10 << 20

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	key := s.versionKey()
	if view, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, view)
		return
	}

	view, skipped := core.Summarize(s.store.All())
	if skipped > 0 {
		log.FromContext(r.Context()).WarnContext(r.Context(), "summary skipped malformed records",
			log.FieldOperation, log.OpQuery,
			log.FieldSkipped, skipped)
	}
	s.summaryCache.Set(key, view)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	key := s.versionKey()
	if rollups, ok := s.rollupCache.Get(key); ok {
		writeJSON(w, http.StatusOK, rollups)
		return
	}

	rollups, _ := core.RollupByCategory(s.store.All())
	s.rollupCache.Set(key, rollups)
	writeJSON(w, http.StatusOK, rollups)
}

func (s *Server) handleTopExpenses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit, err := parseLimitParam(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := s.topKey(limit)
	if top, ok := s.topCache.Get(key); ok {
		writeJSON(w, http.StatusOK, top)
		return
	}

	top, _ := core.TopExpenses(s.store.All(), limit)
	s.topCache.Set(key, top)
	writeJSON(w, http.StatusOK, top)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	q, err := parseTransactionQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := core.Search(s.store.All(), q)
	if err != nil {
		if errors.Is(err, core.ErrInvalidQuery) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Query failed")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleFuliza(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	key := s.versionKey()
	if stats, ok := s.fulizaCache.Get(key); ok {
		writeJSON(w, http.StatusOK, stats)
		return
	}

	stats, _ := core.FulizaUsage(s.store.All())
	s.fulizaCache.Set(key, stats)
	writeJSON(w, http.StatusOK, stats)
}

// handleExport streams the filtered ledger as a CSV download. The same filter
// parameters as /api/transactions apply; pagination does not.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	q, err := parseTransactionQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records := s.store.All()
	q.Page = 1
	q.PageSize = len(records)
	if q.PageSize < 1 {
		q.PageSize = 1
	}
	page, err := core.Search(records, q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	_, _ = io.WriteString(w, core.ExportCSV(page.Data))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	result, err := s.importer.Import(r.Context(), header.Filename, data)
	if err != nil {
		if errors.Is(err, core.ErrUnsupportedFile) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "import failed",
			log.FieldOperation, log.OpImport,
			log.FieldFilename, header.Filename,
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "Import failed")
		return
	}

	if s.publisher != nil {
		if err := s.publisher.PublishStatementImported(r.Context(), result.BatchID, result.Imported, result.Skipped, s.store.Version()); err != nil {
			// The import already succeeded; the sync worker catches up on
			// the next message.
			log.FromContext(r.Context()).WarnContext(r.Context(), "failed to publish import event",
				log.FieldBatchID, result.BatchID,
				log.FieldError, err.Error())
		}
	}

	writeJSON(w, http.StatusOK, result)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "Assistant is not configured")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message must not be empty")
		return
	}

	answer, err := s.chat.Chat(r.Context(), req.Message)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "chat completion failed",
			log.FieldOperation, log.OpChat,
			log.FieldError, err.Error())
		writeError(w, http.StatusBadGateway, "Assistant request failed")
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Answer: answer})
}
