// Package server поднимает gRPC-сервер со стандартным сервисом grpc.health.v1,
// чтобы оркестратор мог проверять готовность процессов сервиса абонементов.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/fithub/membership-service/internal/lib/sl"
)

// ServiceName имя сервиса в ответах health-check.
const ServiceName = "membership"

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer периодически проверяет зависимости и публикует итог
// в стандартном health-сервисе gRPC.
type HealthServer struct {
	srv      *grpc.Server
	health   *health.Server
	checks   map[string]Pinger
	interval time.Duration
	log      *slog.Logger
}

// NewHealthServer создаёт HealthServer. До первой проверки статус NOT_SERVING.
func NewHealthServer(checks map[string]Pinger, interval time.Duration, log *slog.Logger) *HealthServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	h := health.NewServer()
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, h)

	return &HealthServer{
		srv:      srv,
		health:   h,
		checks:   checks,
		interval: interval,
		log:      log,
	}
}

// Serve слушает addr до отмены ctx.
func (s *HealthServer) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc.Serve: %w", err)
	}
	return s.ServeListener(ctx, lis)
}

// ServeListener обслуживает lis до отмены ctx, после чего плавно останавливается.
func (s *HealthServer) ServeListener(ctx context.Context, lis net.Listener) error {
	go s.watch(ctx)
	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.srv.GracefulStop()
	}()

	s.log.Info("gRPC health server listening", slog.String("address", lis.Addr().String()))
	if err := s.srv.Serve(lis); err != nil {
		return fmt.Errorf("grpc.Serve: %w", err)
	}
	return nil
}

func (s *HealthServer) watch(ctx context.Context) {
	s.refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *HealthServer) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.interval/2+time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	for name, check := range s.checks {
		if err := check.Ping(ctx); err != nil {
			s.log.Warn("dependency is down", slog.String("dependency", name), sl.Err(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
}
