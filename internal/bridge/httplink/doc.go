// Package httplink implements the report data link on top of a resty HTTP
// client, for controllers whose uplink is provided by the host network.
package httplink
