// @title Receiptly API
// @version 1.0
// @description Receipt upload, extraction and listing API.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Identity provider token. Format: "Bearer {token}"
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"receiptly/internal/agent"
	"receiptly/internal/config"
	"receiptly/internal/handler"
	"receiptly/internal/llm"
	"receiptly/internal/logger"
	"receiptly/internal/pdfinfo"
	"receiptly/internal/repository/postgres"
	"receiptly/internal/router"
	"receiptly/internal/scanner"
	"receiptly/internal/scanner/providers"
	"receiptly/internal/service"
	"receiptly/internal/storage"
	"receiptly/internal/workflow"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, &cfg.DB, zlog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	receiptRepo := postgres.NewReceiptRepo(db)
	fileRepo := postgres.NewStoredFileRepo(db)

	// Initialize storage
	objectStorage, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	// Initialize scanning providers
	providers.Register()
	docScanner, err := scanner.NewChain(ctx, cfg.Scanner.Providers(), zlog)
	if err != nil {
		return fmt.Errorf("failed to initialize scanner: %w", err)
	}
	defer func() {
		if err := scanner.Close(docScanner); err != nil {
			zlog.Warn("closing scanners", zap.Error(err))
		}
	}()

	trigger, err := workflow.NewTrigger(&cfg.Workflow, zlog)
	if err != nil {
		return fmt.Errorf("failed to initialize extraction trigger: %w", err)
	}

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWT)
	receiptSvc := service.NewReceiptService(
		receiptRepo, fileRepo, objectStorage, pdfinfo.NewInspector(), trigger,
		service.NewChangeFeed(), &cfg.Storage, zlog,
	)

	// Extraction network and workflow host
	network := agent.NewNetwork(
		agent.NewScanningAgent(docScanner, zlog),
		agent.NewDatabaseAgent(llm.NewOpenAIChat(&cfg.Agent), receiptSvc, zlog),
		zlog,
	)
	engine := workflow.NewEngine(workflow.EngineConfig{
		Concurrency: cfg.Workflow.Concurrency,
		MaxSteps:    cfg.Workflow.MaxSteps,
		RunTimeout:  cfg.Workflow.RunTimeout,
		HistorySize: cfg.Workflow.HistorySize,
	}, zlog)
	if err := engine.Register(agent.NewExtractionFunction(network)); err != nil {
		return fmt.Errorf("failed to register extraction function: %w", err)
	}

	// Setup router
	health := handler.NewHealthHandler(map[string]handler.Probe{
		"database": handler.PingProbe(db),
		"workflow": engine.Ready,
	})
	r := router.Setup(router.Options{
		Logger:         zlog,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthService:    authSvc,
		Health:         health,
		Receipts:       handler.NewReceiptHandler(receiptSvc, zlog),
		Workflow:       handler.NewWorkflowHandler(engine, cfg.Workflow.SigningKey, zlog),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Stop taking requests first so no new events reach the engine.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zlog.Error("http server shutdown", zap.Error(err))
		}
		return engine.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
