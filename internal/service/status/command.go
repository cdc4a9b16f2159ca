package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/oshokin/alarm-trigger/internal/api/grpc/health"
	"github.com/oshokin/alarm-trigger/internal/config"
	"github.com/oshokin/alarm-trigger/internal/service/common"
)

// Options controls the status query.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Address overrides the health address from the settings.
	Address string
	// Timeout bounds each health call.
	Timeout time.Duration
	// Out receives one line per service.
	Out io.Writer
	// DialOptions are passed to the client, e.g. for tests.
	DialOptions []common.Option
}

var (
	// ErrNotServing is returned when the controller loop is not running.
	ErrNotServing = errors.New("controller is not serving")
	// errNoHealthAddress is returned when neither settings nor flags name an endpoint.
	errNoHealthAddress = errors.New("no health address configured")
)

// Run queries the controller health endpoint and prints every service status.
func Run(ctx context.Context, opts *Options) error {
	address := opts.Address
	if address == "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}

		address = cfg.HealthAddress
	}

	if address == "" {
		return errNoHealthAddress
	}

	clientOptions := append([]common.Option{common.WithCallTimeout(opts.Timeout)}, opts.DialOptions...)

	client, err := common.Dial(ctx, address, clientOptions...)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	marshal := protojson.MarshalOptions{EmitUnpopulated: true}
	serving := false

	for _, service := range []string{health.ServiceController, health.ServiceRecognizer} {
		resp, err := client.Check(ctx, service)
		if err != nil {
			return err
		}

		encoded, err := marshal.Marshal(resp)
		if err != nil {
			return fmt.Errorf("encode %s status: %w", service, err)
		}

		if _, err = fmt.Fprintf(opts.Out, "%s %s\n", service, encoded); err != nil {
			return fmt.Errorf("write status: %w", err)
		}

		if service == health.ServiceController {
			serving = resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
		}
	}

	if !serving {
		return ErrNotServing
	}

	return nil
}
