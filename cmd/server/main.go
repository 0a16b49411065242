// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"label-service/internal/catalog"
	"label-service/internal/config"
	"label-service/internal/convert"
	"label-service/internal/routes"
	"label-service/internal/service"
	"label-service/internal/utils"
)

// Application represents the main application
type Application struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server

	catalog   *catalog.Registry
	converter *convert.Converter

	// Services
	printService     *service.PrintService
	discoveryService *service.DiscoveryService
}

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config file (default: ./config.yaml or ./configs/config.yaml)")
	pflag.Parse()

	app, err := NewApplication(*configPath)
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "label-service")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	if err := app.initializeCatalog(); err != nil {
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeCatalog loads the label and printer model catalog
func (app *Application) initializeCatalog() error {
	registry, err := catalog.Load(app.config.Catalog.Path, app.logger)
	if err != nil {
		return err
	}
	app.catalog = registry

	// the configured defaults must resolve before any request arrives
	if _, _, err := registry.Resolve(app.config.Printer.Label, app.config.Printer.Model); err != nil {
		return fmt.Errorf("default printer settings: %w", err)
	}
	return nil
}

// initializeServices creates service instances
func (app *Application) initializeServices() error {
	app.converter = convert.NewConverter(app.catalog, app.logger)

	app.printService = service.NewPrintService(app.converter, app.catalog, app.config, app.logger)
	if _, err := app.printService.DefaultOptions(); err != nil {
		return fmt.Errorf("default conversion options: %w", err)
	}

	app.discoveryService = service.NewDiscoveryService(app.catalog, app.config, app.logger)

	app.logger.Info("Services initialized successfully")
	return nil
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() error {
	routerManager := routes.NewRouter(
		app.config,
		app.logger,
		app.catalog,
		app.printService,
		app.discoveryService,
	)

	router := routerManager.SetupRouter()

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
		zap.String("default_model", app.config.Printer.Model),
		zap.String("default_label", app.config.Printer.Label),
	)

	return nil
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "label-service")
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	app.logger.Info("Application shutdown completed")

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}

// Start runs the HTTP server until a shutdown signal arrives
func (app *Application) Start() error {
	go func() {
		defer utils.LogPanic(app.logger)

		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.waitForShutdown()

	return nil
}
