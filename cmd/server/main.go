package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sumire/fixhub/internal/config"
	"github.com/sumire/fixhub/internal/handler"
	"github.com/sumire/fixhub/internal/repository"
	"github.com/sumire/fixhub/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected")

	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	authSvc := service.NewAuthService(userRepo, service.AuthConfig{
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		GitHubClientID:     cfg.GitHubClientID,
		GitHubClientSecret: cfg.GitHubClientSecret,
		JWTSecret:          cfg.JWTSecret,
		FrontendURL:        cfg.FrontendURL,
	})
	geocoder := service.NewGeocodeClient(cfg.GeocodeURL, cfg.GeocodeAPIKey)
	notificationSvc := service.NewNotificationService(notificationRepo, cfg.RecentFeedLimit, cfg.HistoryPageSize)
	jobSvc := service.NewJobService(jobRepo, userRepo, geocoder, notificationSvc)
	offerSvc := service.NewOfferService(offerRepo, jobRepo, jobSvc, notificationSvc)
	reviewSvc := service.NewReviewService(reviewRepo, jobRepo)

	authHandler := handler.NewAuthHandler(authSvc)
	jobHandler := handler.NewJobHandler(jobSvc)
	offerHandler := handler.NewOfferHandler(offerSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	reviewHandler := handler.NewReviewHandler(reviewSvc)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewAppValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(handler.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType, "Accept-Language"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.GET("/google", authHandler.GoogleRedirect)
	auth.GET("/google/callback", authHandler.GoogleCallback)
	auth.GET("/github", authHandler.GitHubRedirect)
	auth.GET("/github/callback", authHandler.GitHubCallback)
	auth.POST("/refresh", authHandler.Refresh)

	protected := api.Group("", handler.JWTAuth(authSvc), handler.RequestLocale())

	protected.GET("/auth/me", authHandler.Me)
	protected.PATCH("/auth/role", authHandler.SwitchRole)
	protected.PUT("/auth/address", authHandler.SaveAddress)

	protected.POST("/jobs", jobHandler.Create)
	protected.GET("/jobs", jobHandler.List)
	protected.GET("/jobs/open", jobHandler.ListOpen)
	protected.GET("/jobs/assigned", jobHandler.ListAssigned)
	protected.GET("/jobs/:id", jobHandler.Get)
	protected.POST("/jobs/:id/close", jobHandler.Close)
	protected.POST("/jobs/:id/reopen", jobHandler.Reopen)
	protected.POST("/jobs/:id/complete", jobHandler.Complete)

	protected.POST("/jobs/:id/offers", offerHandler.Submit)
	protected.GET("/jobs/:id/offers", offerHandler.ListByJob)
	protected.POST("/offers/:id/accept", offerHandler.Accept)
	protected.POST("/offers/:id/reject", offerHandler.Reject)

	protected.GET("/notifications/recent", notificationHandler.Recent)
	protected.GET("/notifications/history", notificationHandler.History)
	protected.PATCH("/notifications/:id/read", notificationHandler.ToggleRead)

	protected.POST("/jobs/:id/review", reviewHandler.Attach)
	protected.GET("/jobs/:id/review", reviewHandler.ForJob)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
