package httplink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-trigger/internal/report"
)

// TestOpenConnection requires an access point.
func TestOpenConnection(t *testing.T) {
	t.Parallel()

	l := New()
	require.Equal(t, StatusNoAccessPoint, l.OpenConnection(context.Background(), " ", " ", " "))
	require.Equal(t, report.StatusOK, l.OpenConnection(context.Background(), "internet", " ", " "))
}

// TestSendRequest_QueryAndTruncation checks the request target and bounded buffer.
func TestSendRequest_QueryAndTruncation(t *testing.T) {
	t.Parallel()

	var gotQuery, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery

		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	l := New(WithTimeout(time.Second))
	response := make([]byte, 8)

	status := l.SendRequest(context.Background(), report.MethodGet, srv.URL+"/api.php", "id=car1&c=1", response)

	require.Equal(t, report.StatusOK, status)
	require.Equal(t, "/api.php", gotPath)
	require.Equal(t, "id=car1&c=1", gotQuery)
	require.Equal(t, []byte("xxxxxxxx"), response)
}

// TestSendRequest_HTTPError returns the HTTP status as the failure code.
func TestSendRequest_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	l := New()
	status := l.SendRequest(context.Background(), report.MethodGet, srv.URL, "id=a&c=1", make([]byte, 4))

	require.Equal(t, http.StatusServiceUnavailable, status)
}

// TestSendRequest_Transport covers unreachable servers and unsupported methods.
func TestSendRequest_Transport(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	l := New(WithTimeout(500 * time.Millisecond))
	require.Equal(t, StatusTransport, l.SendRequest(context.Background(), report.MethodGet, url, "", nil))
	require.Equal(t, StatusBadMethod, l.SendRequest(context.Background(), "POST", url, "", nil))
}

// TestReporterOverLink runs the reporter against a real HTTP server.
func TestReporterOverLink(t *testing.T) {
	t.Parallel()

	hits := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- r.URL.RequestURI()

		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	r := report.NewReporter(New(WithHTTPClient(srv.Client())), report.Credentials{APN: "internet"}, srv.URL)

	require.True(t, r.Report(context.Background(), "car11223344", true).Succeeded())
	require.Equal(t, "/api.php?id=car11223344&c=1", <-hits)
}

// TestWithQuery keeps payload order and separators.
func TestWithQuery(t *testing.T) {
	t.Parallel()

	require.Equal(t, "http://h/api.php?id=x&c=1", withQuery("http://h/api.php", "&id=x&c=1"))
	require.Equal(t, "http://h/api.php?k=v&id=x&c=1", withQuery("http://h/api.php?k=v", "id=x&c=1"))
	require.Equal(t, "http://h/api.php", withQuery("http://h/api.php", ""))
}
