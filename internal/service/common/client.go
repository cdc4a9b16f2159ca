//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/oshokin/alarm-trigger/internal/config"
)

// Client wraps the gRPC health client of a running controller.
type Client struct {
	// conn is the underlying gRPC connection.
	conn *grpc.ClientConn
	// api is the generated health client.
	api healthpb.HealthClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// dialOptions are appended to the default dial options.
	dialOptions []grpc.DialOption
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for health calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithDialOptions appends extra gRPC dial options, e.g. a custom dialer.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *Client) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial creates a client for the controller health endpoint.
// The endpoint is meant for a trusted local network and uses insecure transport.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	client := &Client{
		callTimeout: config.DefaultLinkTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	dialOptions := append(
		[]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())},
		client.dialOptions...,
	)

	conn, err := grpc.NewClient(address, dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("dial controller: %w", err)
	}

	client.conn = conn
	client.api = healthpb.NewHealthClient(conn)

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Check returns the health of one controller service.
func (c *Client) Check(ctx context.Context, service string) (*healthpb.HealthCheckResponse, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Check(callCtx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return nil, fmt.Errorf("check %q: %w", service, err)
	}

	return resp, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
