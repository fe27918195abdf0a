package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"pesatrack/internal/amqp"
	"pesatrack/internal/assistant"
	"pesatrack/internal/config"
	apphttp "pesatrack/internal/http"
	"pesatrack/internal/ingest"
	"pesatrack/internal/ledger"
	"pesatrack/internal/log"
	"pesatrack/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := ledger.New()

	// On the sqlite backend the persisted ledger seeds the in-memory store so
	// restarts come back with the same view.
	var repo *storage.SQLiteRepository
	if cfg.DataBackend == "sqlite" {
		var err error
		repo, err = storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository",
				log.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()

		records, err := repo.LoadBatch(ctx)
		if err != nil {
			logger.Error("Failed to load persisted ledger", log.FieldError, err.Error())
			os.Exit(1)
		}
		store.Load(records)
		logger.Info("Ledger loaded from SQLite",
			log.FieldLedgerSize, store.Len(), "path", cfg.SQLiteDBPath)
	} else {
		logger.Info("Using in-memory ledger", "backend", cfg.DataBackend)
	}

	var persister ingest.Persister
	if repo != nil {
		persister = repo
	}
	importer := ingest.NewImporter(store, persister, logger)

	var chat apphttp.Chatter
	if cfg.ChatEnabled() {
		chat = assistant.NewClient(assistant.Options{
			APIKey:        cfg.GroqAPIKey,
			BaseURL:       cfg.GroqBaseURL,
			Model:         cfg.GroqModel,
			MaxTokens:     cfg.ChatMaxTokens,
			HideReasoning: cfg.HideReasoning,
			Sanitizer:     assistant.Sanitizer{StartTag: cfg.ReasoningStartTag, EndTag: cfg.ReasoningEndTag},
		}, store, logger)
		logger.Info("Assistant enabled", log.FieldModel, cfg.GroqModel)
	} else {
		logger.Info("Assistant disabled - no GROQ_API_KEY provided")
	}

	var publisher apphttp.ImportPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:          ":" + cfg.Port,
		Store:         store,
		Importer:      importer,
		Chat:          chat,
		Publisher:     publisher,
		Logger:        logger,
		AllowedOrigin: cfg.AllowedOrigin,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting pesatrack server",
			log.FieldOperation, log.OpStartup,
			"port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
