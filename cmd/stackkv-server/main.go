package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yndnr/stackkv-go/internal/core/service"
	"github.com/yndnr/stackkv-go/internal/infra/buildinfo"
	"github.com/yndnr/stackkv-go/internal/infra/confloader"
	"github.com/yndnr/stackkv-go/internal/infra/shutdown"
	"github.com/yndnr/stackkv-go/internal/server/config"
	"github.com/yndnr/stackkv-go/internal/server/httpserver"
	"github.com/yndnr/stackkv-go/internal/server/httpserver/handler"
	"github.com/yndnr/stackkv-go/internal/server/kvserver"
	"github.com/yndnr/stackkv-go/internal/storage/memory"
	"github.com/yndnr/stackkv-go/internal/telemetry/logger"
	"github.com/yndnr/stackkv-go/internal/telemetry/metric"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("stackkv-server %s\n", buildinfo.String())
		return nil
	}

	loader := newLoader(*configFile)
	cfg, err := loadConfig(loader)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogLogger := log.Slog()

	info := buildinfo.Get()
	log.Info("starting stackkv-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", loader.FilePath())

	// Store and service
	store := memory.New(config.ToStoreOptions(cfg)...)
	metrics := metric.Global()
	metrics.MustRegister(metric.NewCollector(store))

	svc := service.NewTxService(store,
		service.WithMetrics(metrics),
		service.WithRollbackOnDisconnect(cfg.Store.RollbackOnDisconnect),
	)

	kv := kvserver.New(config.ToKVServerConfig(cfg), svc, slogLogger, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sh := shutdown.NewHandler(shutdownTimeout, slogLogger)

	// Hooks run in reverse order: HTTP first, then kv, then the watcher.
	if loader.FilePath() != "" {
		watcher, err := startConfigWatcher(loader, slogLogger)
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			sh.OnShutdown("config watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	sh.OnShutdown("kv server", kv.Shutdown)

	go func() {
		log.Info("kv server listening", "network", cfg.Server.KV.Network, "addr", cfg.Server.KV.Addr)
		if err := kv.ListenAndServe(ctx); err != nil && !errors.Is(err, kvserver.ErrServerClosed) {
			log.Error("kv server error", "error", err)
			sh.Trigger()
		}
	}()

	if cfg.Server.HTTP.Enabled {
		router := httpserver.NewRouter(&httpserver.RouterConfig{
			Handler: handler.New(handler.Config{
				Store:       svc,
				Server:      kv,
				Logger:      slogLogger,
				SystemStats: cfg.Server.HTTP.SystemStats,
			}),
			Metrics:   metrics.Handler(),
			Logger:    slogLogger,
			AllowList: cfg.Server.HTTP.AllowList,
			RateLimit: cfg.Server.HTTP.RateLimit,
			AccessLog: cfg.Server.HTTP.AccessLog,
		})
		httpSrv := httpserver.New(cfg.Server.HTTP.Addr, router)
		sh.OnShutdown("http server", httpSrv.Shutdown)

		go func() {
			log.Info("admin http server listening", "addr", cfg.Server.HTTP.Addr)
			if err := httpSrv.ListenAndServe(); err != nil {
				log.Error("admin http server error", "error", err)
				sh.Trigger()
			}
		}()
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := sh.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

func newLoader(configFile string) *confloader.Loader {
	var opts []confloader.Option
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	return confloader.NewLoader(opts...)
}

// loadConfig layers defaults, file and environment, then normalizes and
// validates the result.
func loadConfig(loader *confloader.Loader) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	cfg = config.Sanitize(cfg)
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	lc := config.ToLoggerConfig(cfg)
	lc.Output = os.Stdout

	log, err := logger.New(lc)
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// startConfigWatcher reloads the config file on change and applies the
// settings that can change at runtime. Today that is only log.level;
// listener and store settings need a restart.
func startConfigWatcher(loader *confloader.Loader, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(loader.FilePath()); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(path string) {
		next := config.Default()
		if err := loader.Reload(next); err != nil {
			log.Warn("config reload failed", "path", path, "error", err)
			return
		}
		next = config.Sanitize(next)
		if err := config.Verify(next); err != nil {
			log.Warn("reloaded config rejected", "path", path, "error", err)
			return
		}

		if prev := logger.GetLevel(); prev != next.Log.Level {
			logger.SetLevel(next.Log.Level)
			log.Info("log level changed", "from", prev, "to", next.Log.Level)
		}
	})
	w.StartAsync()

	return w, nil
}
