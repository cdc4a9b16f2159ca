// Package report delivers a triggered alarm to the remote server over a
// DataLink: open the link, send one request, surface the outcome. Failures
// are reported as alarm.ReportOutcome values and never retried.
package report
