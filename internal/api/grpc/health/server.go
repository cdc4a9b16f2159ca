package health

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/oshokin/alarm-trigger/internal/logger"
)

const (
	// ServiceController reports whether the sampling loop is running.
	ServiceController = "alarm.controller"
	// ServiceRecognizer reports whether the recognizer loaded its reference sound.
	ServiceRecognizer = "alarm.recognizer"
)

// Reporter publishes controller health through the standard gRPC health service.
type Reporter struct {
	// server is the grpc-go health implementation.
	server *health.Server
}

// NewReporter creates a reporter with every service NOT_SERVING.
func NewReporter() *Reporter {
	r := &Reporter{server: health.NewServer()}

	for _, service := range []string{"", ServiceController, ServiceRecognizer} {
		r.server.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	return r
}

// SetControllerRunning marks the loop, and the server as a whole, as serving or not.
func (r *Reporter) SetControllerRunning(running bool) {
	status := servingStatus(running)
	r.server.SetServingStatus("", status)
	r.server.SetServingStatus(ServiceController, status)
}

// SetRecognizerReady reports recognizer readiness.
func (r *Reporter) SetRecognizerReady(ready bool) {
	r.server.SetServingStatus(ServiceRecognizer, servingStatus(ready))
}

// Serve listens on address and serves health checks until ctx is canceled.
func (r *Reporter) Serve(ctx context.Context, address string) error {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	logger.InfoKV(ctx, "Health endpoint listening", "listen_address", lis.Addr().String())

	return r.ServeListener(ctx, lis)
}

// ServeListener serves health checks on lis until ctx is canceled.
func (r *Reporter) ServeListener(ctx context.Context, lis net.Listener) error {
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, r.server)

	// done is closed once GracefulStop returns so Serve does not return early.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		r.server.Shutdown()
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "Health endpoint stopped")

	return nil
}

// servingStatus maps a flag onto the health enum.
func servingStatus(ok bool) healthpb.HealthCheckResponse_ServingStatus {
	if ok {
		return healthpb.HealthCheckResponse_SERVING
	}

	return healthpb.HealthCheckResponse_NOT_SERVING
}
