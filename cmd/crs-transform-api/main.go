package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mohammed-shakir/crs-transform/internal/api"
	"github.com/mohammed-shakir/crs-transform/internal/app"
	"github.com/mohammed-shakir/crs-transform/internal/cache"
	"github.com/mohammed-shakir/crs-transform/internal/cache/redisstore"
	"github.com/mohammed-shakir/crs-transform/internal/cache/respcache"
	"github.com/mohammed-shakir/crs-transform/internal/core/config"
	"github.com/mohammed-shakir/crs-transform/internal/core/observability"
	"github.com/mohammed-shakir/crs-transform/internal/core/server"
	_ "github.com/mohammed-shakir/crs-transform/internal/geodesy/builtin"
	"github.com/mohammed-shakir/crs-transform/internal/logger"
	"github.com/mohammed-shakir/crs-transform/internal/metrics"
	"github.com/mohammed-shakir/crs-transform/pkg/reload/kafka"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	addrFlag := flag.String("addr", "", "listen address, overrides ADDR")
	flag.Parse()

	cfg := config.FromEnv()
	if *addrFlag != "" {
		cfg.Addr = *addrFlag
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Service:   "crs-transform",
		Component: "api",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	appLog.Info("starting crs-transform api",
		"addr", cfg.Addr,
		"version", Version,
		"provider", cfg.Provider,
		"precision", cfg.Precision)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mp := metrics.Init(metrics.Config{
		Enabled: cfg.MetricsEnabled,
		Addr:    cfg.MetricsAddr,
		Build: metrics.BuildInfo{
			Version:   Version,
			Revision:  os.Getenv("BUILD_REVISION"),
			Branch:    os.Getenv("BUILD_BRANCH"),
			BuildDate: os.Getenv("BUILD_DATE"),
		},
	})
	observability.Init(mp.Registerer(), cfg.MetricsEnabled)

	engine, err := app.NewEngine(cfg, appLog)
	if err != nil {
		appLog.Error("engine setup failed", "err", err)
		return 1
	}

	var respCache cache.Interface = cache.Nop{}
	if cfg.Cache.Enabled {
		var l2 respcache.Backend
		if cfg.Cache.RedisAddr != "" {
			rc, err := redisstore.New(ctx, cfg.Cache.RedisAddr)
			if err != nil {
				appLog.Warn("redis unavailable; using in-process cache only", "addr", cfg.Cache.RedisAddr, "err", err)
			} else {
				defer func() { _ = rc.Close() }()
				l2 = rc
			}
		}
		respCache = respcache.New(respcache.Config{
			L1Size:    cfg.Cache.L1Size,
			TTL:       cfg.Cache.TTL,
			OpTimeout: cfg.Cache.OpTimeout,
		}, l2, appLog)
	}

	runner := kafka.New(kafka.FromEnv(), engine.Exclusions, kafka.Options{
		Logger:   appLog,
		Register: mp.Registerer(),
		Cache:    respCache,
	})
	if err := runner.Start(ctx); err != nil {
		appLog.Error("exclusion reload failed to start", "err", err)
		return 1
	}
	defer runner.Stop()

	handler := api.New(api.Config{
		BaseURL:      cfg.BaseURL,
		Precision:    cfg.Precision,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}, engine.Selector, respCache, appLog)

	deps := server.Deps{API: handler, Ready: runner}
	if cfg.MetricsEnabled && cfg.MetricsAddr == "" {
		deps.Metrics = mp.Handler()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx, cfg, appLog, deps) })
	g.Go(func() error { return mp.Serve(gctx, appLog) })

	if err := g.Wait(); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
