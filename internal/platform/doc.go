// Package platform abstracts the hardware capabilities the controller needs:
// a wrapping millisecond clock and a falling-edge event source.
package platform
