package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/docuhub/docuhub-api/api/swagger"
	"github.com/docuhub/docuhub-api/internal/handler"
	"github.com/docuhub/docuhub-api/internal/middleware"
	"github.com/docuhub/docuhub-api/internal/models"
	"github.com/docuhub/docuhub-api/internal/repository"
	"github.com/docuhub/docuhub-api/internal/service"
	"github.com/docuhub/docuhub-api/pkg/cache"
	"github.com/docuhub/docuhub-api/pkg/config"
	"github.com/docuhub/docuhub-api/pkg/database"
	"github.com/docuhub/docuhub-api/pkg/jobs"
	"github.com/docuhub/docuhub-api/pkg/logger"
	corsmiddleware "github.com/docuhub/docuhub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/docuhub/docuhub-api/pkg/middleware/requestid"
	"github.com/docuhub/docuhub-api/pkg/storage"
)

// @title DocuHub API
// @version 1.0.0
// @description Document control and drawing approval workflow API
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	drawingRepo := repository.NewDrawingRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	validate := validator.New()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "docuhub-api",
		Audience:           []string{"docuhub"},
	})

	metricsSvc := service.NewMetricsService()

	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, emailLogProvider(logr), jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.QueueSize,
		MaxRetries: cfg.Notifications.WorkerRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
	}, logr)
	if cfg.Notifications.Enabled {
		notificationSvc.Start(ctx)
		defer notificationSvc.Stop()
	}

	sink := service.EventSinkFunc(func(event models.ProjectEvent) {
		metricsSvc.ObserveEvent(event)
		if cfg.Notifications.Enabled {
			notificationSvc.Publish(event)
		}
	})

	projectSvc := service.NewProjectService(projectRepo, drawingRepo, historyRepo, userRepo, logr,
		service.WithProjectEventSink(sink),
		service.WithProjectCache(cacheRepo),
		service.WithReviewConflictObserver(metricsSvc.ObserveReviewConflict),
	)
	drawingSvc := service.NewDrawingService(drawingRepo, projectRepo, userRepo, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(projectRepo, drawingRepo, userRepo, cacheRepo, cfg.Dashboard.CacheTTL, logr)

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to init export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	historySvc := service.NewHistoryService(historyRepo, projectRepo, exportStore, signer, service.HistoryConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)
	if cfg.Exports.Enabled {
		go cleanupExports(ctx, historySvc, cfg.Exports.CleanupInterval, logr)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	projectHandler := handler.NewProjectHandler(projectSvc)
	drawingHandler := handler.NewDrawingHandler(drawingSvc)
	historyHandler := handler.NewHistoryHandler(historySvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	userHandler := handler.NewUserHandler(userSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.POST("/auth/logout", authHandler.Logout)
	authed.POST("/auth/change-password", authHandler.ChangePassword)
	authed.GET("/auth/me", authHandler.Me)

	projects := authed.Group("/projects")
	projects.POST("", projectHandler.Create)
	projects.GET("", projectHandler.List)
	projects.GET("/:id", projectHandler.Get)
	projects.PATCH("/:id", projectHandler.Update)
	projects.DELETE("/:id", projectHandler.Delete)
	projects.POST("/:id/submit", projectHandler.Submit)
	projects.POST("/:id/review", middleware.RequireRoles(models.RoleAdmin, models.RoleApprover), projectHandler.Review)
	projects.POST("/bulk-review", middleware.RequireRoles(models.RoleAdmin, models.RoleApprover), projectHandler.BulkReview)
	projects.POST("/:id/versions", projectHandler.NewVersion)
	projects.PUT("/:id/status", middleware.RequireRoles(models.RoleAdmin), projectHandler.SetStatus)
	projects.POST("/:id/restore", middleware.RequireRoles(models.RoleAdmin), projectHandler.Restore)

	projects.GET("/:id/drawings", drawingHandler.List)
	projects.POST("/:id/drawings", drawingHandler.Add)
	projects.PATCH("/:id/drawings/:drawingId", drawingHandler.Update)
	projects.DELETE("/:id/drawings/:drawingId", drawingHandler.Delete)

	projects.GET("/:id/history", historyHandler.ProjectHistory)
	projects.GET("/:id/notifications", middleware.RequireRoles(models.RoleAdmin, models.RoleApprover), notificationHandler.Trail)

	history := authed.Group("/history")
	history.GET("/receipts/:receiptId", historyHandler.VerifyReceipt)
	if cfg.Exports.Enabled {
		history.POST("/register/export",
			middleware.RequireRoles(models.RoleAdmin, models.RoleApprover),
			middleware.Audit(userRepo, models.AuditActionRegisterExport, "history_register"),
			historyHandler.ExportRegister)
		api.GET("/history/register/download/:token", historyHandler.DownloadExport)
	}

	if cfg.Dashboard.Enabled {
		dashboard := authed.Group("/dashboard")
		dashboard.GET("/me", dashboardHandler.UserStats)
		dashboard.GET("/admin", middleware.RequireRoles(models.RoleAdmin, models.RoleApprover), dashboardHandler.AdminStats)
	}

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	userAudit := middleware.Audit(userRepo, models.AuditActionUserAdmin, "users")
	users := authed.Group("/users")
	users.GET("", adminOnly, userHandler.List)
	users.POST("", adminOnly, userAudit, userHandler.Create)
	users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Get)
	users.PATCH("/:id", adminOnly, userAudit, userHandler.Update)
	users.DELETE("/:id", adminOnly, userAudit, userHandler.Deactivate)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// emailLogProvider stands in for an SMTP integration: deliveries are recorded
// in the email log table and mirrored to the structured log.
func emailLogProvider(logr *zap.Logger) service.EmailProvider {
	return service.EmailProviderFunc(func(ctx context.Context, to, subject, body string) error {
		logr.Info("email dispatched",
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return nil
	})
}

func cleanupExports(ctx context.Context, svc *service.HistoryService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := svc.CleanupExports()
			if err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				logr.Info("expired exports removed", zap.Int("count", len(removed)))
			}
		}
	}
}
