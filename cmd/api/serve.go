package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	alertsHttp "site-analytics-service/internal/alerts/adapters/http/fiber"
	"site-analytics-service/internal/alerts/adapters/webhook"
	alertsYaml "site-analytics-service/internal/alerts/adapters/yaml"
	"site-analytics-service/internal/alerts/core/scheduler"
	alertsUsecase "site-analytics-service/internal/alerts/core/usecase"
	"site-analytics-service/internal/platform/config"
	"site-analytics-service/internal/platform/logging"
	queryHttp "site-analytics-service/internal/query/adapters/http/fiber"
	"site-analytics-service/internal/query/adapters/memory"
	queryUsecase "site-analytics-service/internal/query/core/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the alert scheduler",
	Long: `Run the HTTP API and the alert scheduler.

The default source.driver is memory. With source.dsn unset it starts empty and
every query answers with empty series; set source.dsn to a YAML or JSON seed
file (events: [{timestamp, domain, visitor, session, view, page, ...}]) to
serve demo data.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.New(), configFile)
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return err
		}
		defer logger.Sync()

		return serve(cmd.Context(), cfg, logger)
	},
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Event source
	source, closeSource, err := openSource(ctx, cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to open %s source: %w", cfg.Source.Driver, err)
	}
	defer func() {
		if err := closeSource(); err != nil {
			logger.Warn("event source close error", zap.Error(err))
		}
	}()
	logger.Info("event source ready", zap.String("driver", cfg.Source.Driver))
	if store, ok := source.(*memory.Store); ok && store.Len() == 0 {
		logger.Warn("memory source is empty, queries will return no data; set source.dsn to a seed file")
	}

	// Metrics registry
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Usecases
	queryUC := queryUsecase.NewQueryUseCase(source,
		queryUsecase.WithLogger(logger.Named("query")),
		queryUsecase.WithMetrics(queryUsecase.NewMetrics(reg)),
	)

	registry := scheduler.NewRegistry(
		scheduler.WithLogger(logger.Named("scheduler")),
		scheduler.WithRegisterer(reg),
	)
	defer registry.Close()

	notifier := webhook.NewNotifier(webhook.WithLogger(logger.Named("webhook")))
	alertUC := alertsUsecase.NewAlertUseCase(registry, queryUC, notifier,
		alertsUsecase.WithLogger(logger.Named("alerts")),
	)

	if cfg.Alerts.File != "" {
		defs, err := alertsYaml.LoadFile(cfg.Alerts.File)
		if err != nil {
			return err
		}
		ids, err := alertUC.RegisterDefinitions(defs)
		if err != nil {
			return fmt.Errorf("failed to register alerts from %s: %w", cfg.Alerts.File, err)
		}
		logger.Info("alerts registered", zap.String("file", cfg.Alerts.File), zap.Int("count", len(ids)))
	}

	// HTTP (Fiber) app + handlers
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	// query endpoints
	queryHandler := queryHttp.NewQueryHandler(queryUC)
	app.Post("/query", queryHandler.Query)
	app.Post("/query/props", queryHandler.QueryProps)

	// alert endpoints
	alertHandler := alertsHttp.NewAlertHandler(alertUC)
	app.Get("/alerts", alertHandler.ListAlerts)
	app.Post("/alerts", alertHandler.CreateAlert)
	app.Delete("/alerts/:id", alertHandler.DeleteAlert)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	// Graceful shutdown
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.Server.Address)
	}()

	logger.Info("server started", zap.String("address", cfg.Server.Address))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case <-ctx.Done():
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("fiber stopped: %w", err)
		}
		return nil
	}

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error("fiber shutdown error", zap.Error(err))
	}

	logger.Info("server exiting")
	return nil
}
