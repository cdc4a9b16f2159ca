// Package config defines the controller settings and provides helpers to
// load, validate and save them in YAML format.
//
// Validate fills defaults (threshold 10, 1s sampling periods, match index 0,
// /api.php, 64 byte response buffer) so callers can rely on every field.
package config
