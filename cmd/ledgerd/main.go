package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/intern-ledger/internal/application"
	"github.com/example/intern-ledger/internal/config"
	"github.com/example/intern-ledger/internal/domain"
	httptransport "github.com/example/intern-ledger/internal/http"
	"github.com/example/intern-ledger/internal/logging"
	"github.com/example/intern-ledger/internal/persistence"
	"github.com/example/intern-ledger/internal/persistence/backend"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		slog.Error("failed to build logger", "error", err)
		os.Exit(1)
	}

	handle, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err, "storage", cfg.Storage)
		os.Exit(1)
	}
	defer func() {
		if cerr := handle.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	handler, err := newHandler(ctx, cfg, handle.Store, logger)
	if err != nil {
		logger.Error("failed to load ledger", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("ledger API listening", "addr", server.Addr, "storage", cfg.Storage)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// newHandler loads the document from store, seeding the sample data on first
// start, and assembles the HTTP router.
func newHandler(ctx context.Context, cfg config.Config, store persistence.Store, logger *slog.Logger) (http.Handler, error) {
	clock := application.SystemClock{Location: cfg.Location}
	hasher := application.NewPasswordHasher(application.DefaultArgon2idParams)
	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }

	var seed func() domain.Document
	if _, err := store.Load(ctx); errors.Is(err, persistence.ErrNotFound) {
		sample, err := application.SampleDocument(clock, idGenerator, hasher)
		if err != nil {
			return nil, fmt.Errorf("build sample document: %w", err)
		}
		logger.InfoContext(ctx, "seeding sample document", "admin", application.SampleAdminUsername)
		seed = func() domain.Document { return sample }
	}

	engine, err := application.LoadEngine(ctx, store, seed, logger)
	if err != nil {
		return nil, err
	}

	accountService := application.NewAccountServiceWithLogger(engine, clock, idGenerator, hasher, logger)
	authService := application.NewAuthServiceWithLogger(accountService, application.NewMemorySessions(), tokenGenerator, clock, cfg.SessionTTL, logger)
	personService := application.NewPersonService(engine, clock, logger)
	ledgerService := application.NewLedgerServiceWithLogger(engine, clock, idGenerator, logger)
	examService := application.NewExamServiceWithLogger(engine, clock, idGenerator, logger)
	policyService := application.NewPolicyService(engine, logger)
	reportService := application.NewReportService(engine, logger)
	documentService := application.NewDocumentService(engine, logger)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(authService, logger),
		Accounts: httptransport.NewAccountHandler(accountService, logger),
		Persons:  httptransport.NewPersonHandler(personService, logger),
		Ledger:   httptransport.NewLedgerHandler(ledgerService, logger),
		Exams:    httptransport.NewExamHandler(examService, logger),
		Admin:    httptransport.NewAdminHandler(policyService, reportService, documentService, logger),
		Sessions: authService,
		Logger:   logger,
	}), nil
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
