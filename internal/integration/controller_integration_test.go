package integration

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/oshokin/alarm-trigger/internal/api/grpc/health"
	"github.com/oshokin/alarm-trigger/internal/bridge/httplink"
	"github.com/oshokin/alarm-trigger/internal/config"
	"github.com/oshokin/alarm-trigger/internal/platform"
	"github.com/oshokin/alarm-trigger/internal/service/common"
	"github.com/oshokin/alarm-trigger/internal/service/controller"
	"github.com/oshokin/alarm-trigger/internal/service/status"
)

// fixedRecognizer always recognizes the same command index.
type fixedRecognizer struct {
	code byte
}

func (r fixedRecognizer) Begin(context.Context, int) error { return nil }
func (r fixedRecognizer) Clear(context.Context) int        { return 0 }
func (r fixedRecognizer) Load(context.Context, byte) int   { return 0 }

func (r fixedRecognizer) Recognize(_ context.Context, buf []byte, _ uint16) int {
	buf[1] = r.code

	return 2
}

// startReportServer records the raw query of every report request.
func startReportServer(t *testing.T) (url string, queries <-chan string) {
	t.Helper()

	received := make(chan string, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.URL.Path + "?" + r.URL.RawQuery

		_, _ = w.Write([]byte("OK"))
	}))
	t.Cleanup(srv.Close)

	return srv.URL, received
}

// startHealth serves the reporter on an in-memory listener and returns status dial options.
func startHealth(ctx context.Context, t *testing.T, reporter *health.Reporter) []common.Option {
	t.Helper()

	lis := bufconn.Listen(1 << 20)

	go func() { _ = reporter.ServeListener(ctx, lis) }()

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }

	return []common.Option{common.WithDialOptions(grpc.WithContextDialer(dialer))}
}

func newSettings(serverURL string) *config.Config {
	cfg := config.Default()
	cfg.DeviceID = "car42"
	cfg.Link.ServerURL = serverURL

	return cfg
}

// TestController_ReportsOverHTTP drives a burst through the real HTTP link.
func TestController_ReportsOverHTTP(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	url, queries := startReportServer(t)
	cfg := newSettings(url)
	require.NoError(t, config.Validate(cfg))

	clock := platform.NewManualClock(0)
	edges := new(platform.ManualEdgeSource)

	c, err := controller.New(cfg, controller.Deps{
		Clock:      clock,
		Edges:      edges,
		Recognizer: fixedRecognizer{code: cfg.Voice.MatchIndex},
		Link:       httplink.New(httplink.WithTimeout(time.Second)),
	})
	require.NoError(t, err)
	require.NoError(t, c.Setup(ctx))

	edges.Fire(int(cfg.Pulse.Threshold))
	clock.Advance(1000)
	c.Step(ctx)

	select {
	case got := <-queries:
		require.Equal(t, "/api.php?id=car42&c=1", got)
	case <-time.After(time.Second):
		t.Fatal("report was not sent")
	}

	// A quiet period sends nothing.
	clock.Advance(1000)
	c.Step(ctx)

	select {
	case got := <-queries:
		t.Fatalf("unexpected report %q", got)
	default:
	}
}

// TestController_StatusFollowsLoop checks health through the status command while the loop runs.
func TestController_StatusFollowsLoop(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	url, _ := startReportServer(t)
	cfg := newSettings(url)
	require.NoError(t, config.Validate(cfg))

	reporter := health.NewReporter()
	dialOptions := startHealth(ctx, t, reporter)

	c, err := controller.New(cfg, controller.Deps{
		Clock:      platform.NewSystemClock(),
		Edges:      new(platform.ManualEdgeSource),
		Recognizer: fixedRecognizer{},
		Link:       httplink.New(),
		Status:     reporter,
	})
	require.NoError(t, err)
	require.NoError(t, c.Setup(ctx))

	var out bytes.Buffer

	opts := &status.Options{
		Address:     "passthrough:///bufnet",
		Timeout:     time.Second,
		Out:         &out,
		DialOptions: dialOptions,
	}

	require.ErrorIs(t, status.Run(ctx, opts), status.ErrNotServing)

	loopCtx, stopLoop := context.WithCancel(ctx)
	done := make(chan error, 1)

	go func() { done <- c.Loop(loopCtx, time.Millisecond) }()

	require.Eventually(t, func() bool {
		out.Reset()

		return status.Run(ctx, opts) == nil
	}, 2*time.Second, 20*time.Millisecond)
	require.Contains(t, out.String(), health.ServiceRecognizer)

	stopLoop()
	require.NoError(t, <-done)
	require.ErrorIs(t, status.Run(ctx, opts), status.ErrNotServing)
}
