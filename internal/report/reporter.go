package report

import (
	"context"
	"net/url"
	"strings"

	"github.com/oshokin/alarm-trigger/internal/domain/alarm"
	"github.com/oshokin/alarm-trigger/internal/logger"
)

// Credentials are the access point settings used to open the data link.
type Credentials struct {
	// APN is the access point name.
	APN string
	// Username is the access point user.
	Username string
	// Password is the access point password.
	Password string
}

// Reporter delivers triggered alarms through a DataLink. Every call opens the
// link from scratch; nothing is retried or remembered between calls.
type Reporter struct {
	// link is the data-link collaborator.
	link DataLink
	// credentials open the data session.
	credentials Credentials
	// path is appended to the server URL.
	path string
	// target is the server base URL joined with path.
	target string
	// responseSize is the capacity of the response buffer.
	responseSize int
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithResponseSize sets the response buffer capacity.
func WithResponseSize(size int) Option {
	return func(r *Reporter) {
		if size > 0 {
			r.responseSize = size
		}
	}
}

// WithPath overrides the API path appended to the server URL.
func WithPath(path string) Option {
	return func(r *Reporter) {
		if path != "" {
			r.path = path
		}
	}
}

const (
	// DefaultPath is the API path appended to the server URL.
	DefaultPath = "/api.php"
	// DefaultResponseSize is the default response buffer capacity.
	DefaultResponseSize = 64
)

// NewReporter creates a reporter posting to serverURL + DefaultPath.
func NewReporter(link DataLink, credentials Credentials, serverURL string, opts ...Option) *Reporter {
	r := &Reporter{
		link:         link,
		credentials:  credentials,
		path:         DefaultPath,
		responseSize: DefaultResponseSize,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.target = joinTarget(serverURL, r.path)

	return r
}

// Target returns the URL reports are sent to.
func (r *Reporter) Target() string {
	return r.target
}

// Report opens the data link and sends one alarm report for deviceID.
func (r *Reporter) Report(ctx context.Context, deviceID string, raised bool) alarm.ReportOutcome {
	status := r.link.OpenConnection(ctx, r.credentials.APN, r.credentials.Username, r.credentials.Password)
	if status != StatusOK {
		logger.ErrorKV(ctx, "Open data link failed", "code", status)

		return alarm.ReportOutcome{Kind: alarm.LinkOpenFailed, Code: status}
	}

	payload := Payload(deviceID, raised)
	response := make([]byte, r.responseSize)

	logger.InfoKV(ctx, "Sending alarm report", "url", r.target, "payload", payload)

	status = r.link.SendRequest(ctx, MethodGet, r.target, payload, response)
	if status != StatusOK {
		logger.ErrorKV(ctx, "Alarm report send failed", "code", status)

		return alarm.ReportOutcome{Kind: alarm.SendFailed, Code: status}
	}

	logger.Info(ctx, "Alarm report sent")

	return alarm.ReportOutcome{Kind: alarm.Sent}
}

// Payload builds the query-style report payload. Keys keep their wire order.
func Payload(deviceID string, raised bool) string {
	flag := "0"
	if raised {
		flag = "1"
	}

	return "id=" + url.QueryEscape(deviceID) + "&c=" + flag
}

// joinTarget joins a base URL and a path with exactly one slash.
func joinTarget(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
