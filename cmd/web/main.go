package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tomz197/hashgrid/internal/config"
	"github.com/tomz197/hashgrid/internal/logging"
	"github.com/tomz197/hashgrid/internal/sim"
	"github.com/tomz197/hashgrid/internal/telemetry"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

func main() {
	cfg, err := config.Load(config.GetEnv("HASHGRID_CONFIG", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.Log.Level, "web")

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	if !config.GetEnvBool("GIN_DEBUG", false) {
		gin.SetMode(gin.ReleaseMode)
	}

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceName = cfg.Telemetry.ServiceName
	tcfg.MetricExporter = cfg.Telemetry.MetricExporter
	shutdownTelemetry, err := telemetry.Init(context.Background(), tcfg)
	if err != nil {
		logger.Fatal("telemetry", "err", err)
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	simServer, err := sim.NewServer(cfg, logger.WithPrefix("sim"))
	if err != nil {
		logger.Fatal("simulation", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	simDone := make(chan error, 1)
	go func() { simDone <- simServer.Run(ctx) }()

	srv := &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           newRouter(simServer, telemetry.MetricsHandler()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting web server", "addr", "http://"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
	if err := <-simDone; err != nil {
		logger.Error("simulation", "err", err)
	}
}
