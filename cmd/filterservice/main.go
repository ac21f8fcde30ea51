// Command filterservice exposes Filtering@k as an RPC service over the
// platform's JSON-over-TCP protocol, for callers that want a single-list
// solve without standing up the full benchmark driver.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rsavio/attrfilter/internal/filtersvc"
	"github.com/rsavio/attrfilter/internal/optcache"
	"github.com/rsavio/attrfilter/pkg/config"
	"github.com/rsavio/attrfilter/pkg/grpc"
	"github.com/rsavio/attrfilter/pkg/health"
	"github.com/rsavio/attrfilter/pkg/logger"
	"github.com/rsavio/attrfilter/pkg/metrics"
	"github.com/rsavio/attrfilter/pkg/middleware"
	pkgredis "github.com/rsavio/attrfilter/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	addr := flag.String("addr", ":9100", "RPC listen address")
	metricsPort := flag.Int("metrics-port", 9101, "Prometheus metrics port")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	m := metrics.New()
	shutdownMetrics := metrics.StartServer(*metricsPort)

	var cache *optcache.Cache
	if rdb, err := pkgredis.NewClient(cfg.Redis); err != nil {
		slog.Warn("redis unavailable, OPT memoization disabled", "error", err)
	} else {
		cache = optcache.New(rdb, cfg.Redis.CacheTTL, m)
	}

	server := grpc.NewServer()
	filtersvc.New(cache, m).Register(server)
	slog.Info("filtering rpc methods registered", "count", server.MethodCount())

	checker := health.NewChecker()
	checker.Register("rpc", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d methods registered", server.MethodCount())}
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	var chain http.Handler = mux
	chain = middleware.Timeout(5 * time.Second)(chain)
	chain = middleware.Metrics(m)(chain)
	healthServer := &http.Server{Addr: ":9102", Handler: chain}
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("health server error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		server.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		healthServer.Shutdown(shutdownCtx)
		shutdownMetrics(shutdownCtx)
	}()

	slog.Info("filtering rpc service listening", "addr", *addr)
	if err := server.Serve(*addr); err != nil {
		slog.Error("rpc server error", "error", err)
		os.Exit(1)
	}
	slog.Info("filtering rpc service stopped")
}
