// Package http exposes the dashboard's JSON API: analytics views, the
// filterable transaction list, CSV export, statement upload, and the chat
// endpoint. Analytics responses are cached per ledger version, so a new
// import naturally invalidates every cached view.
package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"pesatrack/internal/cache"
	"pesatrack/internal/core"
	"pesatrack/internal/ingest"
	"pesatrack/internal/ledger"
	"pesatrack/internal/log"
)

// Chatter answers a free-form question about the ledger.
type Chatter interface {
	Chat(ctx context.Context, message string) (string, error)
}

// ImportPublisher notifies the sync worker that an import changed the ledger.
type ImportPublisher interface {
	PublishStatementImported(ctx context.Context, batchID string, imported, skipped int, ledgerVersion uint64) error
}

// Options carries the server's collaborators. Chat and Publisher may be nil;
// the matching endpoints then degrade gracefully.
type Options struct {
	Addr          string
	Store         *ledger.Store
	Importer      *ingest.Importer
	Chat          Chatter
	Publisher     ImportPublisher
	Logger        *log.Logger
	AllowedOrigin string
}

type Server struct {
	http.Server

	store     *ledger.Store
	importer  *ingest.Importer
	chat      Chatter
	publisher ImportPublisher
	logger    *log.Logger

	allowedOrigin string
	rateLimiter   *rateLimiter
	metrics       *securityMetrics

	summaryCache *cache.LRUCache[core.SummaryView]
	rollupCache  *cache.LRUCache[[]core.CategoryRollup]
	topCache     *cache.LRUCache[[]core.TransactionRecord]
	fulizaCache  *cache.LRUCache[core.FulizaStats]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		store:         opts.Store,
		importer:      opts.Importer,
		chat:          opts.Chat,
		publisher:     opts.Publisher,
		logger:        logger.WithComponent(log.ComponentHTTP),
		allowedOrigin: opts.AllowedOrigin,
		rateLimiter:   newRateLimiter(),
		metrics:       &securityMetrics{},
		summaryCache:  cache.NewLRUCache[core.SummaryView](16, 5*time.Minute),
		rollupCache:   cache.NewLRUCache[[]core.CategoryRollup](16, 5*time.Minute),
		topCache:      cache.NewLRUCache[[]core.TransactionRecord](64, 5*time.Minute),
		fulizaCache:   cache.NewLRUCache[core.FulizaStats](16, 5*time.Minute),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.rollupCache)
	s.cacheManager.Register(s.topCache)
	s.cacheManager.Register(s.fulizaCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/summary", s.withAPIMiddleware(s.handleSummary))
	mux.HandleFunc("/api/categories", s.withAPIMiddleware(s.handleCategories))
	mux.HandleFunc("/api/top-expenses", s.withAPIMiddleware(s.handleTopExpenses))
	mux.HandleFunc("/api/transactions", s.withAPIMiddleware(s.handleTransactions))
	mux.HandleFunc("/api/fuliza", s.withAPIMiddleware(s.handleFuliza))
	mux.HandleFunc("/api/export", s.withAPIMiddleware(s.handleExport))
	mux.HandleFunc("/api/upload", s.withAPIMiddleware(s.handleUpload))
	mux.HandleFunc("/api/chat", s.withAPIMiddleware(s.handleChat))

	return s
}

// Shutdown stops the HTTP server and the cache and rate limiter sweeps.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withAPIMiddleware adds security headers, CORS, rate limiting, and request
// logging around an API handler.
func (s *Server) withAPIMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		reqLogger := s.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, reqLogger)
		r = r.WithContext(ctx)

		if detectSuspiciousRequest(r, s.metrics) {
			reqLogger.WarnContext(ctx, "suspicious request",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Mutating endpoints are rate limited per client
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.metrics) {
			reqLogger.WarnContext(ctx, "rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		log.HTTPEnd(ctx, reqLogger, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// versionKey ties a cache entry to the ledger state it was computed from.
func (s *Server) versionKey() string {
	return "v" + strconv.FormatUint(s.store.Version(), 10)
}

func (s *Server) topKey(limit int) string {
	return fmt.Sprintf("%s:n%d", s.versionKey(), limit)
}
