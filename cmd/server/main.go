package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"studio_site_go/config"
	"studio_site_go/db"
	"studio_site_go/handlers"
	"studio_site_go/middleware"
	"studio_site_go/models"
	"studio_site_go/services"
	"studio_site_go/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(&models.AvailabilityEntry{}, &models.ContactSubmission{}, &models.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Long-lived clients
	mirror := services.NewMirrorFromConfig(context.Background(), cfg)
	mailer := services.NewResendMailer(cfg)
	if cfg.EmailTestMode {
		log.Println("[INFO] EMAIL_TEST_MODE is on; emails are logged to console")
	}
	dispatcher := services.NewDispatcher(cfg.SideEffectTimeout)
	verifier := services.NewJWTVerifier(db.DB, cfg.AuthTokenSecret, cfg.AuthTokenIssuer)
	loginLimiter := middleware.NewLoginRateLimiter()
	defer loginLimiter.Stop()

	h := handlers.NewHandler(db.DB, cfg, mirror, mailer, dispatcher)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit("1M"))

	handlers.RegisterRoutes(e, h, verifier, loginLimiter)

	// Background jobs
	jobCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	if mirror.Configured() && cfg.CalendarResyncInterval > 0 {
		go jobs.RunPeriodically(jobCtx, cfg.CalendarResyncInterval, func(ctx context.Context) {
			_ = jobs.ResyncUpcomingMonths(ctx, db.DB, mirror, dispatcher, time.Now())
		})
	}

	// Start server
	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("[INFO] Shutting down server...")
	stopJobs()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("[WARNING] Server shutdown: %v", err)
	}

	// Let queued calendar syncs and notifications finish
	dispatcher.Wait()
	log.Println("[INFO] Server stopped")
}
