package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"justicia-backend/config"
	"justicia-backend/engine"
	"justicia-backend/handlers"
	"justicia-backend/repository"
	"justicia-backend/repository/memstore"
	"justicia-backend/service"
	"justicia-backend/storage"
	"justicia-backend/telemetry"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// stores groups the persistence the services are built on
type stores struct {
	cases      service.CaseStore
	decisions  service.DecisionStore
	audit      service.AuditStore
	files      service.FileStore
	users      service.UserStore
	references service.ReferenceStore
	precedents engine.PrecedentLookup
	close      func()
}

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	rules := engine.DefaultRuleSet()
	if cfg.RulesFile != "" {
		rules, err = engine.LoadRuleSet(cfg.RulesFile)
		if err != nil {
			return err
		}
	}
	logger.Info("rule table loaded", "version", rules.Version, "rules", len(rules.Rules))

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	// Initialize storage
	docs, err := storage.NewStorage(ctx, cfg.StorageConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("storage initialized", "type", cfg.StorageType)

	// Initialize services
	caseService := service.NewCaseService(
		service.WithCaseStore(st.cases),
		service.WithCaseDecisionStore(st.decisions),
		service.WithUserStore(st.users),
		service.WithCaseAuditStore(st.audit),
		service.WithClassifier(engine.NewClassifier(engine.WithRuleSet(rules))),
		service.WithCaseNumberPrefix(cfg.CaseNumberPrefix),
		service.WithCaseLogger(logger),
	)
	decisionService := service.NewDecisionService(
		service.WithDecisionCaseStore(st.cases),
		service.WithDecisionStore(st.decisions),
		service.WithApproverStore(st.users),
		service.WithDecisionAuditStore(st.audit),
		service.WithGenerator(engine.NewGenerator(st.precedents, engine.WithPrecedentLimit(cfg.PrecedentLimit))),
		service.WithDocumentStorage(docs),
		service.WithDecisionLogger(logger),
	)
	evidenceService := service.NewEvidenceService(
		service.WithFileStore(st.files),
		service.WithEvidenceCaseStore(st.cases),
		service.WithEvidenceAuditStore(st.audit),
		service.WithEvidenceStorage(docs),
		service.WithMaxEvidenceSize(cfg.MaxUploadBytes),
		service.WithEvidenceLogger(logger),
	)
	referenceService := service.NewReferenceService(
		service.WithReferenceStore(st.references),
		service.WithActiveRules(rules),
	)

	router := handlers.NewRouter(handlers.RouterConfig{
		Cases:      caseService,
		Decisions:  decisionService,
		Evidence:   evidenceService,
		References: referenceService,
		Logger:     logger,
	})

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stores, error) {
	st := &stores{close: func() {}}

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		mem := memstore.NewSeeded()
		st.cases = mem.Cases()
		st.decisions = mem.Decisions()
		st.audit = mem.Audit()
		st.files = mem.Files()
		st.users = mem.Users()
		st.references = mem.References()
		st.precedents = mem.References()
		logger.Warn("using in-memory store; data is lost on restart")
	default:
		db, err := initPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		refs := repository.NewReferenceRepository(db)
		st.cases = repository.NewCaseRepository(db)
		st.decisions = repository.NewDecisionRepository(db)
		st.audit = repository.NewAuditRepository(db)
		st.files = repository.NewFileRepository(db)
		st.users = repository.NewUserRepository(db)
		st.references = refs
		st.precedents = refs
		st.close = db.Close
		logger.Info("postgres connection established")
	}

	if cfg.PrecedentSource == config.PrecedentSourceSQLite {
		snapshot, err := repository.OpenSQLitePrecedentStore(cfg.PrecedentSQLitePath)
		if err != nil {
			st.close()
			return nil, err
		}
		closeStores := st.close
		st.precedents = snapshot
		st.close = func() {
			if err := snapshot.Close(); err != nil {
				logger.Warn("failed to close precedent snapshot", "error", err)
			}
			closeStores()
		}
		logger.Info("precedent lookups served from sqlite snapshot", "path", cfg.PrecedentSQLitePath)
	}

	return st, nil
}

func initPostgres(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
