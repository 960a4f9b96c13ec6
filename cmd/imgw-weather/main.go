package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/mzielinski/imgw-weather/internal/api/http"
	"github.com/mzielinski/imgw-weather/internal/config"
	"github.com/mzielinski/imgw-weather/internal/imgw"
	"github.com/mzielinski/imgw-weather/internal/observability"
	"github.com/mzielinski/imgw-weather/internal/scheduler"
	"github.com/mzielinski/imgw-weather/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(slogger)

	clock := clockwork.NewRealClock()

	// Observation store with idempotent schema creation.
	obsStore, err := store.New(cfg.DatabasePath, clock, slogger)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer func() {
		if err := obsStore.Close(); err != nil {
			slogger.Error("store close failed", "error", err)
		}
	}()

	metrics := observability.NewMetrics()

	// Ingestion pipeline and query facade.
	client := imgw.NewClient(cfg.IMGWAPIURL, cfg.APITimeout)
	fetcher := imgw.NewFetcher(client, obsStore, metrics, slogger)
	service := imgw.NewService(obsStore, fetcher, cfg.CurrentLimit, cfg.MaxHistoryDays, clock, slogger)

	// Populate the store on startup without delaying the first listen.
	service.Refresh()

	sched := scheduler.New(fetcher, cfg.FetchInterval, slogger)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "imgw-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, service)

	go func() {
		slogger.Info("http listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slogger.Error("fiber server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slogger.Error("error during shutdown", "error", err)
	}
}
