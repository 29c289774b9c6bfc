package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"bakehouse/internal/api"
	"bakehouse/internal/database"
	"bakehouse/internal/monitoring"
	"bakehouse/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Opens the database (migrating and seeding it as configured), starts
the realtime hub and serves the API until interrupted. Metrics are served
from the API unless metrics.port names a separate port.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "API server port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(log)
	go hub.Run(ctx)

	store, err := database.Open(cfg.Database, log, database.WithPublisher(hub))
	if err != nil {
		return err
	}
	defer store.Close()

	monitor := monitoring.NewMonitor()
	if ings, err := store.ListIngredients(ctx); err == nil {
		for _, ing := range ings {
			monitor.SetStockValue(ing.Name, ing.StockValue)
		}
	}

	bakery := api.NewBakeryAPI(cfg, store, hub, monitor, log)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: bakery.Router,
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled && cfg.Metrics.Port != 0 {
		metricsServer = startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, monitor)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting API server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("API server shutdown error", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("metrics server shutdown error", "error", err)
		}
	}
	return nil
}

func startMetricsServer(port int, path string, monitor *monitoring.Monitor) *http.Server {
	metricsRouter := gin.New()
	metricsRouter.GET(path, gin.WrapH(monitor.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	go func() {
		log.Info("starting metrics server", "port", port)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "error", err)
		}
	}()
	return metricsServer
}
