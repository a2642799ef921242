package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	appAdmin "medicart/internal/application/admin"
	appCart "medicart/internal/application/cart"
	appOrder "medicart/internal/application/order"
	appUser "medicart/internal/application/user"
	"medicart/internal/config"
	httptransport "medicart/internal/infrastructure/http"
	"medicart/internal/infrastructure/id"
	"medicart/internal/infrastructure/session"
	"medicart/internal/persistence/memory"
	"medicart/internal/persistence/postgres"
	"medicart/internal/pkg/logging"
	"medicart/internal/store"
	"medicart/internal/textextract"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	baseLogger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		baseLogger.Fatal("trace_exporter_init_failed", zap.Error(err))
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, closeGateway, err := newGateway(ctx, cfg)
	if err != nil {
		baseLogger.Fatal("gateway_init_failed", zap.Error(err))
	}
	defer closeGateway()

	st, err := store.Open(ctx, gateway)
	if err != nil {
		baseLogger.Fatal("store_open_failed", zap.Error(err))
	}

	sessions := newSessionStore(cfg)

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpDurations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	orderOutcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_operations_total",
			Help: "Order lifecycle operations by outcome.",
		},
		[]string{"operation", "outcome"},
	)
	prometheus.MustRegister(httpRequests, httpDurations, orderOutcomes)

	userService := appUser.NewService(st)
	cartService := appCart.NewService(st)
	orderService := appOrder.NewService(st, id.NewUUIDGenerator(), nil, orderOutcomes)
	adminService := appAdmin.NewService(st, orderService)

	handler := httptransport.NewHandler(
		userService, cartService, orderService, adminService,
		sessions, textextract.NewFuzzy(),
	)

	root := http.NewServeMux()
	root.Handle("/metrics", promhttp.Handler())
	root.Handle("/", handler.Router(httptransport.ObservabilityMiddleware(baseLogger, httpRequests, httpDurations)))

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: root,
	}

	go func() {
		baseLogger.Info("http_server_start", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		baseLogger.Info("http_server_stopped")
	}
}

func newGateway(ctx context.Context, cfg *config.Config) (store.Gateway, func(), error) {
	if cfg.DatabaseURL == "" {
		return memory.New(), func() {}, nil
	}
	pg, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return pg, func() { _ = pg.Close() }, nil
}

func newSessionStore(cfg *config.Config) session.Store {
	if cfg.RedisAddr == "" {
		return session.NewMemory()
	}
	return session.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
}
