package status

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/oshokin/alarm-trigger/internal/api/grpc/health"
	"github.com/oshokin/alarm-trigger/internal/service/common"
)

// TestRun_PrintsStatuses queries an in-memory controller endpoint.
func TestRun_PrintsStatuses(t *testing.T) {
	t.Parallel()

	lis := bufconn.Listen(1 << 20)
	reporter := health.NewReporter()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = reporter.ServeListener(ctx, lis) }()

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }

	var out bytes.Buffer

	opts := &Options{
		Address:     "passthrough:///bufnet",
		Timeout:     time.Second,
		Out:         &out,
		DialOptions: []common.Option{common.WithDialOptions(grpc.WithContextDialer(dialer))},
	}

	require.ErrorIs(t, Run(ctx, opts), ErrNotServing)
	require.Contains(t, out.String(), health.ServiceController)
	require.Contains(t, out.String(), "NOT_SERVING")

	reporter.SetControllerRunning(true)
	reporter.SetRecognizerReady(true)
	out.Reset()

	require.NoError(t, Run(ctx, opts))
	require.NotContains(t, out.String(), "NOT_SERVING")
	require.Contains(t, out.String(), health.ServiceRecognizer)
}

// TestRun_RequiresAddress fails without settings or an explicit address.
func TestRun_RequiresAddress(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{ConfigPath: "missing-settings.yaml", Out: new(bytes.Buffer)})
	require.Error(t, err)
}
