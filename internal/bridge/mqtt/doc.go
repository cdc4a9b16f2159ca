// Package mqtt bridges the controller to its peripherals over an MQTT broker.
//
// A receiver bridge publishes RF falling edges to the edge topic; a voice
// module bridge accepts commands (begin, clear, load N, recognize T) on the
// command topic and publishes recognized indexes on the result topic.
// The paho wrapper follows the broker conventions used by the other services.
package mqtt
