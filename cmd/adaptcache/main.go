// cmd/adaptcache/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/FairForge/adaptcache/internal/api"
	"github.com/FairForge/adaptcache/internal/config"
	"github.com/FairForge/adaptcache/internal/events"
	"github.com/FairForge/adaptcache/internal/learning"
	"github.com/FairForge/adaptcache/internal/scheduler"
	"github.com/FairForge/adaptcache/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(os.Getenv("ADAPTCACHE_CONFIG"))
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	config.LoadFromEnv(cfg)

	mem := store.NewMemory(cfg.Store.Capacity)

	// Prefetches re-read through the store so hot entries refresh
	// their LRU position. A real deployment plugs in a fetcher that
	// recomputes the expensive value.
	fetcher := learning.FetcherFunc(func(ctx context.Context, key string) error {
		_, _, err := mem.Get(ctx, "default", key)
		return err
	})

	engine := learning.NewEngine(cfg.Learning, mem, fetcher, logger)
	defer engine.Close()

	bus, err := events.NewBus(logger)
	if err != nil {
		logger.Fatal("failed to create event bus", zap.Error(err))
	}
	learning.Attach(bus, engine)

	sched := scheduler.New(logger)
	sched.Add(scheduler.Job{
		Name:     "AnalyzePatterns",
		Interval: cfg.Learning.AnalysisInterval,
		Run:      engine.AnalyzePatterns,
	})
	sched.Add(scheduler.Job{
		Name:     "OptimizeCache",
		Interval: cfg.Learning.OptimizeInterval,
		Run:      engine.OptimizeCache,
	})
	sched.Start(context.Background())
	defer sched.Stop()

	server := api.NewServer(cfg, logger, engine, mem)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	logger.Info("adaptcache started",
		zap.Int("port", cfg.Server.Port),
		zap.Duration("learning_window", cfg.Learning.LearningWindow))

	if err := server.Start(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
