package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"aqiserve/config"
	"aqiserve/db"
	qhttp "aqiserve/http"
	"aqiserve/logging"
	"aqiserve/ml"
	"aqiserve/monitoring"
	"aqiserve/predictor"
	"aqiserve/schema"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "aqiserve: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Load schema and model, check they agree
	featureSchema, err := schema.Resolve(cfg.Schema)
	if err != nil {
		return err
	}
	model, err := ml.LoadModel(cfg.Model.Path)
	if err != nil {
		return err
	}

	metrics := monitoring.NewMetrics()
	opts := []predictor.Option{
		predictor.WithCache(cfg.Cache.Size),
		predictor.WithObserver(metrics),
		predictor.WithLogger(logger),
	}
	if cfg.Audit.Path != "" {
		store, err := db.Open(cfg.Audit.Path)
		if err != nil {
			return fmt.Errorf("open audit store: %w", err)
		}
		defer store.Close()
		opts = append(opts, predictor.WithRecorder(store))
		logger.Info("audit store opened", zap.String("path", cfg.Audit.Path))
	}

	p, err := predictor.New(featureSchema, model, opts...)
	if err != nil {
		return err
	}
	logger.Info("model loaded",
		zap.String("path", cfg.Model.Path),
		zap.String("schema", featureSchema.String()),
		zap.Strings("columns", featureSchema.Columns()),
	)

	if cfg.Model.Watch {
		if err := monitoring.WatchArtifact(ctx, cfg.Model.Path, logger, nil); err != nil {
			logger.Warn("model watcher disabled", zap.Error(err))
		}
	}

	// 3. Start HTTP servers
	server := qhttp.NewServer(qhttp.ServerConfig{
		Addr:           cfg.Addr(),
		Timeout:        cfg.Http.Timeout,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	}, p, logger, metrics)

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.Start()
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("starting metrics server", zap.String("addr", cfg.Metrics.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	// 4. Wait for a signal or a listener failure
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errCh:
	}

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	logger.Info("exiting")
	return runErr
}
