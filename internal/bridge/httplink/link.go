package httplink

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/oshokin/alarm-trigger/internal/logger"
	"github.com/oshokin/alarm-trigger/internal/report"
)

const (
	// StatusNoAccessPoint is returned by OpenConnection when no APN is configured.
	StatusNoAccessPoint = 1
	// StatusTransport is returned by SendRequest when the request never got a response.
	StatusTransport = 2
	// StatusBadMethod is returned by SendRequest for methods the link cannot issue.
	StatusBadMethod = 3
)

// Link is a report.DataLink over a host network connection.
// Opening the link only checks the access point settings; the host
// network stack owns the actual session.
type Link struct {
	// client is the shared HTTP client.
	client *resty.Client
}

// Option configures a Link.
type Option func(*Link)

// WithTimeout bounds every request.
func WithTimeout(timeout time.Duration) Option {
	return func(l *Link) {
		if timeout > 0 {
			l.client.SetTimeout(timeout)
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(l *Link) {
		if hc != nil {
			timeout := l.client.GetClient().Timeout
			l.client = resty.NewWithClient(hc).SetTimeout(timeout)
		}
	}
}

// New creates a link with retries disabled; reports are fire-and-forget.
func New(opts ...Option) *Link {
	l := &Link{
		client: resty.New().
			SetRetryCount(0).
			SetTimeout(10 * time.Second).
			SetHeader("Accept", "*/*"),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// OpenConnection checks that an access point is configured.
func (l *Link) OpenConnection(ctx context.Context, apn, username, _ string) int {
	if strings.TrimSpace(apn) == "" {
		return StatusNoAccessPoint
	}

	logger.DebugKV(ctx, "Data link opened", "apn", apn, "username", strings.TrimSpace(username))

	return report.StatusOK
}

// SendRequest issues the request and copies at most len(response) body bytes
// into response. A larger body is truncated, not treated as a failure.
func (l *Link) SendRequest(
	ctx context.Context,
	method report.Method,
	url, payload string,
	response []byte,
) int {
	if method != report.MethodGet {
		return StatusBadMethod
	}

	resp, err := l.client.R().
		SetContext(ctx).
		Get(withQuery(url, payload))
	if err != nil {
		logger.WarnKV(ctx, "Report request failed", "error", err)

		return StatusTransport
	}

	body := resp.Body()

	n := copy(response, body)
	if n < len(body) {
		logger.WarnKV(ctx, "Report response truncated", "size", len(body), "capacity", len(response))
	}

	if resp.IsError() {
		return resp.StatusCode()
	}

	return report.StatusOK
}

// withQuery appends payload to url verbatim, keeping the key order of the payload.
func withQuery(url, payload string) string {
	payload = strings.TrimPrefix(payload, "&")
	if payload == "" {
		return url
	}

	if strings.Contains(url, "?") {
		return url + "&" + payload
	}

	return url + "?" + payload
}
