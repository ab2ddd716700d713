package app

import (
	"context"
	"errors"
	"net"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	healthcheck "github.com/vladislavdragonenkov/restaurant-service/internal/health"
)

// grpcHealthService — имя сервиса в gRPC health протоколе.
const grpcHealthService = "restaurants"

// statusEvaluator — источник агрегированного статуса (healthcheck.Handler).
type statusEvaluator interface {
	Evaluate(ctx context.Context) (healthcheck.Status, map[string]healthcheck.Check)
}

// newGRPCHealthServer создаёт gRPC сервер только с health и reflection.
func newGRPCHealthServer(logger *log.Entry) (*grpc.Server, *health.Server) {
	grpcMetrics := promgrpc.NewServerMetrics()
	if err := prometheus.Register(grpcMetrics); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*promgrpc.ServerMetrics); ok {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	grpcMetrics.InitializeMetrics(grpcServer)
	reflection.Register(grpcServer)

	// До первого опроса хранилища сервис считается не готовым.
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(grpcHealthService, healthpb.HealthCheckResponse_NOT_SERVING)

	return grpcServer, healthServer
}

// applyHealthStatus переводит статус health checks в статус gRPC health.
func applyHealthStatus(hs *health.Server, status healthcheck.Status) healthpb.HealthCheckResponse_ServingStatus {
	serving := healthpb.HealthCheckResponse_NOT_SERVING
	if status != healthcheck.StatusUnhealthy {
		serving = healthpb.HealthCheckResponse_SERVING
	}
	hs.SetServingStatus(grpcHealthService, serving)
	return serving
}

// pollStoreHealth периодически опрашивает evaluator, пока не отменён ctx.
func pollStoreHealth(ctx context.Context, evaluator statusEvaluator, hs *health.Server, interval time.Duration, logger *log.Entry) {
	if interval <= 0 {
		interval = 15 * time.Second
	}

	last := healthpb.HealthCheckResponse_UNKNOWN
	poll := func() {
		status, _ := evaluator.Evaluate(ctx)
		if ctx.Err() != nil {
			return
		}
		if serving := applyHealthStatus(hs, status); serving != last {
			logger.WithField("status", serving.String()).Info("grpc health status changed")
			last = serving
		}
	}

	poll()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}

// serveGRPC запускает сервер и возвращает канал с ошибкой Serve.
func serveGRPC(server *grpc.Server, lis net.Listener, logger *log.Entry) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("gRPC health сервер слушает %s", lis.Addr())
		errCh <- server.Serve(lis)
	}()
	return errCh
}

// stopGRPC пытается остановить сервер аккуратно, затем принудительно.
func stopGRPC(server *grpc.Server, hs *health.Server, timeout time.Duration, logger *log.Entry) {
	if server == nil {
		return
	}
	if hs != nil {
		hs.Shutdown()
	}

	stoppedCh := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stoppedCh)
	}()
	select {
	case <-stoppedCh:
	case <-time.After(timeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		server.Stop()
	}
}
