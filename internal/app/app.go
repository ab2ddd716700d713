package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	healthcheck "github.com/vladislavdragonenkov/restaurant-service/internal/health"
	"github.com/vladislavdragonenkov/restaurant-service/internal/httpapi"
	"github.com/vladislavdragonenkov/restaurant-service/internal/metrics"
	"github.com/vladislavdragonenkov/restaurant-service/internal/version"
)

const readHeaderTimeout = 10 * time.Second

// Run поднимает HTTP API, сервер метрик и (опционально) gRPC health,
// и блокируется до отмены ctx или падения HTTP-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	serviceMetrics := metrics.NewServiceMetrics()
	deps, err := initRuntimeDependencies(ctx, cfg, logger, serviceMetrics)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("store", deps.storeChecker)

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", cfg.HTTPAddr, err)
	}

	var (
		grpcServer   *grpc.Server
		healthServer *health.Server
		grpcErrCh    <-chan error
	)
	if cfg.GRPCHealthAddr != "" {
		grpcLis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
		if err != nil {
			_ = lis.Close()
			return fmt.Errorf("listen grpc health %s: %w", cfg.GRPCHealthAddr, err)
		}
		grpcServer, healthServer = newGRPCHealthServer(logger)
		grpcErrCh = serveGRPC(grpcServer, grpcLis, logger)
		go pollStoreHealth(ctx, healthHandler, healthServer, cfg.HealthPollInterval, logger)
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.Options{
			Repo:      deps.repo,
			Publisher: deps.publisher,
			Metrics:   serviceMetrics,
			Logger:    logger.WithField("layer", "http"),
		}),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP сервер слушает %s", lis.Addr())
		errCh <- httpSrv.Serve(lis)
	}()

	stopAll := func() {
		shutdownHTTPWithTimeout(httpSrv, cfg.ShutdownTimeout, logger)
		stopGRPC(grpcServer, healthServer, cfg.ShutdownTimeout, logger)
		shutdownHTTP(metricsSrv, logger)
	}

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем серверы")
		stopAll()
		return ctx.Err()
	case err := <-grpcErrCh:
		stopAll()
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("grpc health server: %w", err)
	case err := <-errCh:
		stopAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus и health checks.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: readHeaderTimeout}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	shutdownHTTPWithTimeout(srv, 5*time.Second, logger)
}

func shutdownHTTPWithTimeout(srv *http.Server, timeout time.Duration, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).WithField("addr", srv.Addr).Warn("http shutdown with error")
	}
}
