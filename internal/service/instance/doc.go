// Package instance guards against running two controllers on the same host.
package instance
