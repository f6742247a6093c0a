package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sms_classifier/config"
	"sms_classifier/internal/bootstrap"
	"sms_classifier/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

const (
	shutdownTimeout = 30 * time.Second // Maximum time to wait for graceful shutdown
)

func main() {
	// Load .env file if exists (for local development)
	envErr := godotenv.Load()

	mode := flag.String("mode", "all", "Run mode: api, worker, all")
	flag.Parse()

	cfg, err := config.Load()
	initLogger(cfg)
	if envErr != nil {
		logger.Debug("No .env file found, using environment variables")
	}
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	switch *mode {
	case "api":
		runAPI(cfg)
	case "worker":
		runWorker(cfg)
	case "all":
		runAll(cfg)
	default:
		logger.Fatal("Unknown mode: %s", *mode)
	}
}

func initLogger(cfg *config.Config) {
	level := logger.LevelInfo
	console := false
	if cfg != nil {
		if cfg.LogLevel != "" {
			level = logger.ParseLevel(cfg.LogLevel)
		} else if cfg.IsDevelopment() {
			level = logger.LevelDebug
		}
		console = cfg.IsDevelopment()
	}
	logger.Init(logger.Config{
		Level:   level,
		Service: "sms-classifier",
		Console: console,
	})
}

func runAPI(cfg *config.Config) {
	app, cleanup, err := bootstrap.NewAPI(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize API: %v", err)
	}
	defer cleanup()

	go func() {
		waitForSignal()
		shutdownAPI(app)
	}()

	listen(app, cfg.Port)
}

func runWorker(cfg *config.Config) {
	w, cleanup, err := bootstrap.NewWorker(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize worker: %v", err)
	}
	defer cleanup()

	stopped := make(chan struct{})
	go func() {
		waitForSignal()
		stopWorker(w)
		close(stopped)
	}()

	logger.Info("Starting worker...")
	w.Start()
	<-stopped
}

// runAll serves the API and runs the worker on one set of connections.
func runAll(cfg *config.Config) {
	deps, cleanup, err := bootstrap.NewDependencies(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies: %v", err)
	}
	defer cleanup()

	var w *bootstrap.Worker
	if deps.HasStore() {
		w, err = bootstrap.NewWorkerWithDeps(cfg, deps)
		if err != nil {
			logger.Fatal("Failed to initialize worker: %v", err)
		}
		go w.Start()
	} else {
		logger.Warn("No database configured, running API only")
	}

	var app *fiber.App
	if w != nil {
		app = bootstrap.NewAPIWithDeps(cfg, deps, w.Trigger())
	} else {
		app = bootstrap.NewAPIWithDeps(cfg, deps, nil)
	}

	stopped := make(chan struct{})
	go func() {
		waitForSignal()
		shutdownAPI(app)
		if w != nil {
			stopWorker(w)
		}
		close(stopped)
	}()

	listen(app, cfg.Port)
	<-stopped
}

func waitForSignal() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
}

func listen(app *fiber.App, port string) {
	addr := ":" + port
	logger.Info("Starting API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

func shutdownAPI(app *fiber.App) {
	logger.Info("Shutting down API server (timeout: %v)...", shutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Error shutting down: %v", err)
		return
	}
	logger.Info("API server shut down gracefully")
}

func stopWorker(w *bootstrap.Worker) {
	logger.Info("Shutting down worker (timeout: %v)...", shutdownTimeout)

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Worker shut down gracefully")
	case <-time.After(shutdownTimeout):
		logger.Warn("Worker shutdown timed out, forcing exit")
		os.Exit(1)
	}
}
