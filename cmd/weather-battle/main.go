package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-battle/internal/api/http"
	"github.com/i474232898/weather-battle/internal/battle"
	"github.com/i474232898/weather-battle/internal/battle/providers"
	"github.com/i474232898/weather-battle/internal/config"
	"github.com/i474232898/weather-battle/internal/logging"
	"github.com/i474232898/weather-battle/internal/scheduler"
	"github.com/i474232898/weather-battle/internal/store"
)

const appName = "weather-battle"

// Exit statuses.
const (
	exitOK            = 0
	exitUnexpected    = 1
	exitConfig        = 2
	exitUpstream      = 3
	exitInvalidSeries = 4
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	serve := fs.Bool("serve", false, "Run the HTTP API and scheduled battles instead of a single battle")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: failed to load config: %v\n", err)
		return exitCode(err)
	}

	log := logging.New(stderr, cfg, appName)
	service := newService(cfg, log)

	if *serve {
		if err := runServer(cfg, service, log); err != nil {
			log.Error("server stopped", "error", err)
			return exitUnexpected
		}
		return exitOK
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintln(stdout, "Welcome to weather battle!")
	fmt.Fprintln(stdout)

	res, err := service.Battle(ctx, cfg.Battle.Cities.City1, cfg.Battle.Cities.City2)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return exitCode(err)
	}

	fmt.Fprint(stdout, res.Report)
	return exitOK
}

func newService(cfg *config.AppConfig, log *slog.Logger) *battle.Service {
	// Shared HTTP client for outbound geocoding and forecast calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var geocoder battle.Geocoder = providers.NewOpenMeteoGeocoder(httpClient, log)
	if cfg.GoogleGeocoderAPIKey != "" {
		geocoder = providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey, log)
	}
	var source battle.WeatherSource = providers.NewOpenMeteoProvider(httpClient, cfg.WeatherTimezone, log)
	if cfg.WeatherSource == "weatherapi" {
		source = providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey, log)
	}
	cache := store.NewMemoryStore(cfg.CacheMaxEntries, cfg.CacheMaxAge)

	return battle.NewService(geocoder, source, cache, cfg.Battle.Limits(), log)
}

func runServer(cfg *config.AppConfig, service *battle.Service, log *slog.Logger) error {
	cities := [2]string{cfg.Battle.Cities.City1, cfg.Battle.Cities.City2}

	// Scheduler that periodically battles the configured cities.
	sched := scheduler.New(cities, cfg.BattleInterval, service, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
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

	app.Get("/health", healthHandler(service.Thresholds()))

	httpapi.RegisterRoutes(app, service, cities)

	go func() {
		log.Info("http server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return app.ShutdownWithContext(shutdownCtx)
}

// healthHandler reports liveness and the thresholds battles are decided with.
func healthHandler(th battle.Thresholds) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ok",
			"service":    appName,
			"thresholds": th,
		})
	}
}

// exitCode maps an error kind to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, battle.ErrInvalidConfiguration):
		return exitConfig
	case errors.Is(err, battle.ErrLocationNotFound), errors.Is(err, battle.ErrUpstream),
		errors.Is(err, context.DeadlineExceeded):
		return exitUpstream
	case errors.Is(err, battle.ErrMissingData), errors.Is(err, battle.ErrMismatchedLengths):
		return exitInvalidSeries
	default:
		return exitUnexpected
	}
}
