package app

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	healthcheck "github.com/vladislavdragonenkov/restaurant-service/internal/health"
)

func dialBufconn(t *testing.T, lis *bufconn.Listener) healthpb.HealthClient {
	t.Helper()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn)
}

// servingStatus возвращает UNKNOWN при ошибке вызова.
func servingStatus(client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN
	}
	return resp.GetStatus()
}

func TestGRPCHealthServer_FollowsStoreHealth(t *testing.T) {
	logger := log.WithField("test", "grpc-health")
	lis := bufconn.Listen(1 << 20)

	server, hs := newGRPCHealthServer(logger)
	errCh := serveGRPC(server, lis, logger)
	defer stopGRPC(server, hs, time.Second, logger)

	client := dialBufconn(t, lis)

	require.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(client, ""))
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(client, grpcHealthService))

	var storeDown atomic.Bool
	handler := healthcheck.NewHandler("test")
	handler.RegisterChecker("store", healthcheck.NewFuncChecker("store", func(context.Context) error {
		if storeDown.Load() {
			return errors.New("store down")
		}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pollStoreHealth(ctx, handler, hs, 10*time.Millisecond, logger)

	require.Eventually(t, func() bool {
		return servingStatus(client, grpcHealthService) == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	storeDown.Store(true)
	require.Eventually(t, func() bool {
		return servingStatus(client, grpcHealthService) == healthpb.HealthCheckResponse_NOT_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case err := <-errCh:
		t.Fatalf("grpc server stopped unexpectedly: %v", err)
	default:
	}
}

func TestApplyHealthStatus(t *testing.T) {
	_, hs := newGRPCHealthServer(log.WithField("test", "grpc-status"))

	require.Equal(t, healthpb.HealthCheckResponse_SERVING, applyHealthStatus(hs, healthcheck.StatusHealthy))
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, applyHealthStatus(hs, healthcheck.StatusDegraded))
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, applyHealthStatus(hs, healthcheck.StatusUnhealthy))
}

func TestStopGRPC_NilServer(_ *testing.T) {
	// Не должно паниковать
	stopGRPC(nil, nil, time.Second, log.WithField("test", "grpc-nil"))
}
