package controller

import (
	"context"
	"fmt"

	"github.com/oshokin/alarm-trigger/internal/api/grpc/health"
	"github.com/oshokin/alarm-trigger/internal/bridge/httplink"
	"github.com/oshokin/alarm-trigger/internal/bridge/mqtt"
	"github.com/oshokin/alarm-trigger/internal/config"
	"github.com/oshokin/alarm-trigger/internal/logger"
	"github.com/oshokin/alarm-trigger/internal/platform"
	"github.com/oshokin/alarm-trigger/internal/service/instance"
	"github.com/oshokin/alarm-trigger/internal/version"
)

// Options controls the alarm-trigger process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// LogLevel overrides the level from the settings when not empty.
	LogLevel string
	// AllowMultiple skips the single-instance check.
	AllowMultiple bool
}

// Run loads settings, connects the bridges and runs the sampling loop until
// ctx is canceled. Only startup failures are returned; runtime failures are logged.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-trigger")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	levelName := cfg.LogLevel
	if opts.LogLevel != "" {
		levelName = opts.LogLevel
	}

	if err = logger.Configure(levelName); err != nil {
		return err
	}

	if !opts.AllowMultiple {
		if err = instance.EnsureSingle(instance.CurrentExecutable()); err != nil {
			return err
		}
	}

	logger.InfoKV(ctx, "Starting controller", "version", version.Short(), "device_id", cfg.DeviceID)

	bridge, err := mqtt.Connect(ctx, mqtt.Options{
		Broker:   cfg.Bridge.Broker,
		ClientID: cfg.Bridge.ClientID,
		Username: cfg.Bridge.Username,
		Password: cfg.Bridge.Password,
		Timeout:  cfg.Link.Timeout,
	})
	if err != nil {
		return fmt.Errorf("connect bridge: %w", err)
	}

	defer func() {
		_ = bridge.Close()
	}()

	var (
		edges      = mqtt.NewEdgeSource(bridge, cfg.Bridge.EdgeTopic)
		recognizer = mqtt.NewRecognizer(bridge, cfg.Bridge.VoiceResultTopic, cfg.Bridge.VoiceCommandTopic)
		status     = health.NewReporter()
	)

	defer func() {
		_ = edges.Close()
		_ = recognizer.Close()
	}()

	if cfg.HealthAddress != "" {
		go func() {
			if serveErr := status.Serve(ctx, cfg.HealthAddress); serveErr != nil {
				logger.ErrorKV(ctx, "Health endpoint failed", "error", serveErr)
			}
		}()
	}

	ctrl, err := New(cfg, Deps{
		Clock:      platform.NewSystemClock(),
		Edges:      edges,
		Recognizer: recognizer,
		Link:       httplink.New(httplink.WithTimeout(cfg.Link.Timeout)),
		Status:     status,
	})
	if err != nil {
		return fmt.Errorf("build controller: %w", err)
	}

	if err = ctrl.Setup(ctx); err != nil {
		return fmt.Errorf("setup controller: %w", err)
	}

	return ctrl.Loop(ctx, cfg.LoopInterval)
}
