package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/veridoc-app/veridoc/internal/config"
	"github.com/veridoc-app/veridoc/internal/filestore"
	"github.com/veridoc-app/veridoc/internal/handler"
	"github.com/veridoc-app/veridoc/internal/job"
	"github.com/veridoc-app/veridoc/internal/middleware"
	"github.com/veridoc-app/veridoc/internal/provenance"
	"github.com/veridoc-app/veridoc/internal/repo"
	"github.com/veridoc-app/veridoc/internal/schedule"
	"github.com/veridoc-app/veridoc/internal/service"
)

const (
	appName    = "VeriDoc"
	appOrg     = "VeriDoc SAS"
	appContact = "verification@veridoc.example"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "veridoc",
		Short: "veridoc document provenance server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run veridoc server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			db, err := repo.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := repo.ApplyMigrations(db); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, db)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, db *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_path", cfg.DBPath),
		zap.String("file_store", cfg.FileStore.Type),
	)

	if err := os.MkdirAll(cfg.StagingDir, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}

	docRepo := repo.NewDocumentRepo(db)
	auditRepo := repo.NewAuditRepo(db)
	shareRepo := repo.NewShareRepo(db)
	userRepo := repo.NewUserRepo(db)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}
	embedder := provenance.NewEmbedder(appName, appOrg, appContact)

	documentService := service.NewDocumentService(docRepo, auditRepo, userRepo, store, embedder)
	shareService := service.NewShareService(docRepo, shareRepo, userRepo, auditRepo)

	deps := handler.RouterDeps{
		Documents:       handler.NewDocumentHandler(documentService, cfg.StagingDir),
		Shares:          handler.NewShareHandler(shareService),
		JWTSecret:       []byte(cfg.JWTSecret),
		RateLimitWindow: time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute,
		RateLimitMax:    cfg.RateLimit.MaxRequests,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSHosts),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewScheduler()
	sweep := job.NewStagingSweepJob(cfg.StagingDir, handler.StagingFilePrefix, time.Duration(cfg.Jobs.StagingMaxAgeMinutes)*time.Minute)
	if err := scheduler.AddJob(sweep, cfg.Jobs.StagingSweepSpec); err != nil {
		return fmt.Errorf("schedule staging sweep: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
