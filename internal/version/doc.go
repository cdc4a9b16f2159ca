// Package version exposes the build metadata of alarm-trigger. Version, Commit
// and BuildTime are set through -ldflags "-X"; the controller logs Short on start.
package version
