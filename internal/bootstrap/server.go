// Package bootstrap runs the HTTP API next to a gRPC server that carries the
// standard health service.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Domenick1991/goaero/config"
)

const shutdownTimeout = 5 * time.Second

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
	log        *slog.Logger
}

func NewServers(cfg *config.Config, handler http.Handler, log *slog.Logger) *Servers {
	if log == nil {
		log = slog.Default()
	}

	grpcSrv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, hs)
	reflection.Register(grpcSrv)

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		health: hs,
		log:    log,
	}
}

// Run starts the gRPC and HTTP servers on the configured addresses and blocks
// until ctx is cancelled or a server fails.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, log *slog.Logger) error {
	grpcLis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	httpLis, err := net.Listen("tcp", cfg.HTTP.Address)
	if err != nil {
		grpcLis.Close()
		return fmt.Errorf("listen HTTP %s: %w", cfg.HTTP.Address, err)
	}
	return NewServers(cfg, handler, log).Serve(ctx, grpcLis, httpLis)
}

// Serve runs both servers on the given listeners. A cancelled ctx drains them
// and returns nil.
func (s *Servers) Serve(ctx context.Context, grpcLis, httpLis net.Listener) error {
	errCh := make(chan error, 2)

	go func() {
		if err := s.grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()
	go func() {
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.log.Info("servers started", "http", httpLis.Addr().String(), "grpc", grpcLis.Addr().String())

	select {
	case err := <-errCh:
		s.stop()
		return err
	case <-ctx.Done():
		s.log.Info("shutting down servers")
		return s.stop()
	}
}

func (s *Servers) stop() error {
	s.health.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.grpcServer.GracefulStop()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
