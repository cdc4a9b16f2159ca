// Package status implements the status subcommand, which queries a running
// controller's health endpoint and prints the result as protobuf JSON.
package status
