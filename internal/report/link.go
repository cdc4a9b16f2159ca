package report

import "context"

// Method is the request method understood by the data link.
type Method string

// MethodGet issues the report as a GET request with the payload as query.
const MethodGet Method = "GET"

// StatusOK is the status returned by successful data link calls.
const StatusOK = 0

// DataLink is the cellular data-link collaborator.
type DataLink interface {
	// OpenConnection opens a data session with the given access point credentials.
	OpenConnection(ctx context.Context, apn, username, password string) int
	// SendRequest issues one request and copies at most len(response) bytes of the
	// response body into response.
	SendRequest(ctx context.Context, method Method, url, payload string, response []byte) int
}
