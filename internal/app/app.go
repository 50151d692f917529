package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"admissions_backend/database"
	"admissions_backend/internal/auth"
	"admissions_backend/internal/config"
	"admissions_backend/internal/email"
	"admissions_backend/internal/handlers"
	"admissions_backend/internal/logger"
	"admissions_backend/internal/middleware"
	"admissions_backend/internal/routes"
	"admissions_backend/internal/services"
	"admissions_backend/internal/storage"
	"admissions_backend/internal/validator"
	"admissions_backend/internal/workers"
	"admissions_backend/pkg/apperrors"
)

const shutdownTimeout = 15 * time.Second

// Server is a fully wired application.
type Server struct {
	Router   *gin.Engine
	Services *services.ServiceContainer
	Worker   *workers.CleanupWorker
}

func Run() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("production")
		logger.Fatal("Failed to load config", "error", err)
	}
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	db, err := database.Open(cfg.Database, cfg.Server.Env)
	if err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}
	if err := database.SeedCatalog(db); err != nil {
		logger.Fatal("Failed to seed catalog", "error", err)
	}

	store, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", store.Provider())

	srv := NewServer(cfg, db, store)

	if err := srv.Services.AuthService.SeedAdmin(context.Background(), db, cfg.Admin); err != nil {
		logger.Fatal("Failed to seed admin user", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv.Worker.Start(ctx)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	srv.Worker.Wait()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server stopped")
}

// NewServer wires services, handlers and routes. store may be nil to disable uploads.
func NewServer(cfg *config.Config, db *gorm.DB, store storage.Storage) *Server {
	apperrors.SetDebug(cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	mailer := email.NewMailer(email.NewProvider(cfg.Email), email.NewTemplateManager(), cfg.Email.FromName)
	tokens := auth.NewTokenManager(auth.TokenConfig{
		Secret: cfg.JWT.Secret,
		TTL:    time.Duration(cfg.JWT.TTL) * time.Minute,
		Issuer: cfg.JWT.Issuer,
	})

	container := services.NewServiceContainer(cfg, store, mailer, tokens)
	appHandlers := initializeHandlers(cfg, container)

	otpLimiter := middleware.NewRateLimiter(middleware.Limit{
		Rate:   cfg.OTP.SendPerMinute,
		Period: time.Minute,
		Burst:  cfg.OTP.SendPerMinute,
	})
	guards := &handlers.Guards{
		Student: middleware.AuthMiddleware(tokens),
		Admin:   []gin.HandlerFunc{middleware.AuthMiddleware(tokens), middleware.AdminMiddleware()},
		OTP:     middleware.RateLimitMiddleware(otpLimiter),
	}

	router := initializeGinRouter(cfg, db)

	uploadsDir := ""
	if local, ok := store.(*storage.LocalStorage); ok && cfg.IsDevelopment() {
		uploadsDir = local.BasePath()
	}
	routes.RegisterRoutes(router, appHandlers, guards, uploadsDir)

	return &Server{
		Router:   router,
		Services: container,
		Worker:   workers.NewCleanupWorker(db, container.OTPService, otpLimiter),
	}
}

func initializeHandlers(cfg *config.Config, container *services.ServiceContainer) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		HealthHandler:      handlers.NewHealthHandler(baseHandler),
		AuthHandler:        handlers.NewAuthHandler(baseHandler, container.AuthService),
		StudentHandler:     handlers.NewStudentHandler(baseHandler, container.StudentService),
		ApplicationHandler: handlers.NewApplicationHandler(baseHandler, container.ApplicationService, container.StepCacheService),
		DocumentHandler:    handlers.NewDocumentHandler(baseHandler, container.DocumentService, cfg.Upload.MaxSize),
		PaymentHandler:     handlers.NewPaymentHandler(baseHandler, container.PaymentService),
		MessageHandler:     handlers.NewMessageHandler(baseHandler, container.MessageService),
		CatalogHandler:     handlers.NewCatalogHandler(baseHandler, container.CatalogService),
		AdminHandler:       handlers.NewAdminHandler(baseHandler, container.AdminService),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}
