package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the alarm-trigger controller.
type Config struct {
	// DeviceID identifies this controller in alarm reports.
	DeviceID string `yaml:"device_id"`
	// Link describes the data link used to deliver alarm reports.
	Link Link `yaml:"link"`
	// Pulse configures RF pulse sampling.
	Pulse Pulse `yaml:"pulse"`
	// Voice configures the voice-recognition gate.
	Voice Voice `yaml:"voice"`
	// Bridge configures the MQTT bridge that delivers RF edges and recognizer traffic.
	Bridge Bridge `yaml:"bridge"`
	// HealthAddress is the gRPC health endpoint listen address; empty disables it.
	HealthAddress string `yaml:"health_addr"`
	// LoopInterval is the pause between scheduler ticks.
	LoopInterval time.Duration `yaml:"loop_interval"`
	// LogLevel is the minimum level written to the debug sink.
	LogLevel string `yaml:"log_level"`
}

// Link holds access-point credentials and the report endpoint.
type Link struct {
	// APN is the access point name of the cellular data session.
	APN string `yaml:"apn"`
	// Username is the access point user name.
	Username string `yaml:"username"`
	// Password is the access point password.
	Password string `yaml:"password"`
	// ServerURL is the base URL of the report server.
	ServerURL string `yaml:"server_url"`
	// Path is appended to ServerURL to form the report target.
	Path string `yaml:"path"`
	// Timeout bounds a single open or send call.
	Timeout time.Duration `yaml:"timeout"`
	// ResponseBufferSize caps how many response bytes are kept.
	ResponseBufferSize int `yaml:"response_buffer_size"`
}

// Pulse configures the RF burst classifier.
type Pulse struct {
	// Threshold is the minimum pulse count per period to consider RF active.
	Threshold uint32 `yaml:"threshold"`
	// Period is how often the pulse counter is drained.
	Period time.Duration `yaml:"period"`
}

// Voice configures the recognizer and the match rule.
type Voice struct {
	// Period is how often the recognizer is sampled.
	Period time.Duration `yaml:"period"`
	// MatchIndex is the result code that corroborates an alarm.
	MatchIndex uint8 `yaml:"match_index"`
	// ReferenceIndex is the stored sound loaded into the recognizer at startup.
	ReferenceIndex uint8 `yaml:"reference_index"`
	// RecognizeTimeout is passed verbatim to the recognizer, in its own units.
	RecognizeTimeout uint16 `yaml:"recognize_timeout"`
	// BaudRate is passed to the recognizer on startup.
	BaudRate int `yaml:"baud_rate"`
}

// Bridge holds MQTT connection settings and topics.
type Bridge struct {
	// Broker is the MQTT broker URL, e.g. tcp://127.0.0.1:1883.
	Broker string `yaml:"broker"`
	// ClientID is the MQTT client identifier; defaults to the device id.
	ClientID string `yaml:"client_id"`
	// Username is the optional broker user.
	Username string `yaml:"username"`
	// Password is the optional broker password.
	Password string `yaml:"password"`
	// EdgeTopic carries one message per RF falling edge.
	EdgeTopic string `yaml:"edge_topic"`
	// VoiceResultTopic carries recognition results.
	VoiceResultTopic string `yaml:"voice_result_topic"`
	// VoiceCommandTopic receives recognizer commands.
	VoiceCommandTopic string `yaml:"voice_command_topic"`
}

const (
	// DefaultConfigFilename is the default filename for controller settings.
	DefaultConfigFilename = "alarm-trigger-settings.yaml"

	// DefaultPulseThreshold is the minimum burst size that counts as RF activity.
	DefaultPulseThreshold = 10

	// DefaultSamplePeriod is the period of both pulse and voice sampling.
	DefaultSamplePeriod = time.Second

	// DefaultMatchIndex is the recognizer result code that confirms an alarm.
	DefaultMatchIndex = 0

	// DefaultRecognizeTimeout is the recognizer timeout in its own units.
	DefaultRecognizeTimeout = 50

	// DefaultBaudRate is the recognizer serial rate.
	DefaultBaudRate = 9600

	// DefaultAPIPath is appended to the server URL.
	DefaultAPIPath = "/api.php"

	// DefaultResponseBufferSize is the capacity of the report response buffer.
	DefaultResponseBufferSize = 64

	// DefaultLinkTimeout bounds data link calls.
	DefaultLinkTimeout = 10 * time.Second

	// DefaultLoopInterval is the pause between scheduler ticks.
	DefaultLoopInterval = 5 * time.Millisecond

	// DefaultFilePermissions is the permission used for written settings.
	DefaultFilePermissions = 0o600

	// reservedResultCode is the recognizer sentinel and can never be a match.
	reservedResultCode = 255
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errDeviceIDRequired is returned when the device identifier is missing.
	errDeviceIDRequired = errors.New("device id must be provided")
	// errServerURLRequired is returned when the report server is missing.
	errServerURLRequired = errors.New("server url must be provided")
	// errBrokerRequired is returned when the bridge broker is missing.
	errBrokerRequired = errors.New("bridge broker must be provided")
	// errTopicRequired is returned when a bridge topic is missing.
	errTopicRequired = errors.New("bridge topics must be provided")
	// errReservedMatchIndex is returned when the match index equals the failure sentinel.
	errReservedMatchIndex = errors.New("match index 255 is reserved for failed recognition")
)

// Default returns a configuration with every default applied and example endpoints.
func Default() *Config {
	cfg := &Config{
		DeviceID: "car11223344",
		Link: Link{
			APN:       "internet",
			Username:  " ",
			Password:  " ",
			ServerURL: "http://127.0.0.1:8080",
		},
		Bridge: Bridge{
			Broker:            "tcp://127.0.0.1:1883",
			EdgeTopic:         "alarm/rf/edge",
			VoiceResultTopic:  "alarm/voice/result",
			VoiceCommandTopic: "alarm/voice/command",
		},
		HealthAddress: "127.0.0.1:50061",
		LogLevel:      "info",
	}

	// Defaults never fail validation.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Settings carry access point and broker credentials.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills defaults for the optional ones.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if strings.TrimSpace(cfg.DeviceID) == "" {
		return errDeviceIDRequired
	}

	if err := validateLink(&cfg.Link); err != nil {
		return err
	}

	if cfg.Pulse.Threshold == 0 {
		cfg.Pulse.Threshold = DefaultPulseThreshold
	}

	if cfg.Pulse.Period <= 0 {
		cfg.Pulse.Period = DefaultSamplePeriod
	}

	if err := validateVoice(&cfg.Voice); err != nil {
		return err
	}

	if err := validateBridge(&cfg.Bridge, cfg.DeviceID); err != nil {
		return err
	}

	if cfg.LoopInterval <= 0 {
		cfg.LoopInterval = DefaultLoopInterval
	}

	return nil
}

func validateLink(link *Link) error {
	if link.ServerURL == "" {
		return errServerURLRequired
	}

	if _, err := url.ParseRequestURI(link.ServerURL); err != nil {
		return fmt.Errorf("invalid server url: %w", err)
	}

	if link.Path == "" {
		link.Path = DefaultAPIPath
	}

	if link.Timeout <= 0 {
		link.Timeout = DefaultLinkTimeout
	}

	if link.ResponseBufferSize <= 0 {
		link.ResponseBufferSize = DefaultResponseBufferSize
	}

	return nil
}

func validateVoice(voice *Voice) error {
	if voice.MatchIndex == reservedResultCode {
		return errReservedMatchIndex
	}

	if voice.Period <= 0 {
		voice.Period = DefaultSamplePeriod
	}

	if voice.RecognizeTimeout == 0 {
		voice.RecognizeTimeout = DefaultRecognizeTimeout
	}

	if voice.BaudRate <= 0 {
		voice.BaudRate = DefaultBaudRate
	}

	return nil
}

func validateBridge(bridge *Bridge, deviceID string) error {
	if bridge.Broker == "" {
		return errBrokerRequired
	}

	if _, err := url.Parse(bridge.Broker); err != nil {
		return fmt.Errorf("invalid bridge broker: %w", err)
	}

	if bridge.EdgeTopic == "" || bridge.VoiceResultTopic == "" || bridge.VoiceCommandTopic == "" {
		return errTopicRequired
	}

	if bridge.ClientID == "" {
		bridge.ClientID = "alarm-trigger-" + deviceID
	}

	return nil
}
