package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/alarm-trigger/internal/config"
	"github.com/oshokin/alarm-trigger/internal/domain/alarm"
	"github.com/oshokin/alarm-trigger/internal/logger"
	"github.com/oshokin/alarm-trigger/internal/platform"
	"github.com/oshokin/alarm-trigger/internal/pulse"
	"github.com/oshokin/alarm-trigger/internal/report"
	"github.com/oshokin/alarm-trigger/internal/scheduler"
	"github.com/oshokin/alarm-trigger/internal/voice"
)

const (
	// taskVoice refreshes the voice state; registered first so the decision sees it.
	taskVoice = "voice-refresh"
	// taskPulse drains the counter and decides.
	taskPulse = "pulse-decision"
)

// StatusReporter receives controller health changes.
type StatusReporter interface {
	SetControllerRunning(running bool)
	SetRecognizerReady(ready bool)
}

// Deps are the collaborators of the controller.
type Deps struct {
	// Clock is read once per loop iteration.
	Clock platform.Clock
	// Edges delivers RF falling edges.
	Edges platform.EdgeSource
	// Recognizer is the voice-recognition module.
	Recognizer voice.Recognizer
	// Link is the data link used for reports.
	Link report.DataLink
	// Status is optional.
	Status StatusReporter
}

// errMissingDependency is returned when a required collaborator is nil.
var errMissingDependency = errors.New("controller dependency is missing")

// Controller owns the sampling loop state. Only the pulse counter is written
// from outside the loop goroutine, by the edge handler.
type Controller struct {
	// deviceID identifies the controller in reports.
	deviceID string
	// baudRate is passed to the recognizer on Setup.
	baudRate int
	// rules configure the decision.
	rules alarm.Rules

	clock    platform.Clock
	edges    platform.EdgeSource
	status   StatusReporter
	counter  pulse.Counter
	voice    *voice.State
	reporter *report.Reporter
	tasks    *scheduler.Scheduler
}

// New wires a controller from settings and collaborators.
func New(cfg *config.Config, deps Deps) (*Controller, error) {
	if deps.Clock == nil || deps.Edges == nil || deps.Recognizer == nil || deps.Link == nil {
		return nil, errMissingDependency
	}

	c := &Controller{
		deviceID: cfg.DeviceID,
		baudRate: cfg.Voice.BaudRate,
		rules: alarm.Rules{
			Threshold:  cfg.Pulse.Threshold,
			MatchIndex: cfg.Voice.MatchIndex,
		},
		clock:  deps.Clock,
		edges:  deps.Edges,
		status: deps.Status,
		voice: voice.NewState(
			deps.Recognizer,
			voice.WithTimeout(cfg.Voice.RecognizeTimeout),
			voice.WithReferenceIndex(cfg.Voice.ReferenceIndex),
		),
		reporter: report.NewReporter(
			deps.Link,
			report.Credentials{
				APN:      cfg.Link.APN,
				Username: cfg.Link.Username,
				Password: cfg.Link.Password,
			},
			cfg.Link.ServerURL,
			report.WithPath(cfg.Link.Path),
			report.WithResponseSize(cfg.Link.ResponseBufferSize),
		),
		tasks: scheduler.New(),
	}

	if err := c.tasks.Register(taskVoice, platform.DurationToMillis(cfg.Voice.Period), c.refreshVoice); err != nil {
		return nil, fmt.Errorf("register %s: %w", taskVoice, err)
	}

	if err := c.tasks.Register(taskPulse, platform.DurationToMillis(cfg.Pulse.Period), c.processPulses); err != nil {
		return nil, fmt.Errorf("register %s: %w", taskPulse, err)
	}

	return c, nil
}

// Setup initialises the recognizer, attaches the edge handler and starts the
// task clocks. A recognizer failure only leaves the voice gate closed.
func (c *Controller) Setup(ctx context.Context) error {
	logger.Info(ctx, "Initializing controller")

	if err := c.voice.Init(ctx, c.baudRate); err != nil {
		logger.WarnKV(ctx, "Voice gate disabled", "error", err)
	}

	if c.status != nil {
		c.status.SetRecognizerReady(c.voice.Ready())
	}

	if err := c.edges.OnFallingEdge(ctx, c.counter.OnEdge); err != nil {
		return fmt.Errorf("attach edge handler: %w", err)
	}

	c.tasks.Reset(c.clock.Now())

	logger.InfoKV(ctx, "Controller initialized", "recognizer_ready", c.voice.Ready(), "rules", c.rules)

	return nil
}

// Step reads the clock once and runs the due tasks.
func (c *Controller) Step(ctx context.Context) []string {
	return c.tasks.Tick(ctx, c.clock.Now())
}

// Loop calls Step every interval until ctx is canceled.
func (c *Controller) Loop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = config.DefaultLoopInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if c.status != nil {
		c.status.SetControllerRunning(true)
		defer c.status.SetControllerRunning(false)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, stopping loop")

			return nil
		case <-ticker.C:
			c.Step(ctx)
		}
	}
}

// refreshVoice is the voice task body.
func (c *Controller) refreshVoice(ctx context.Context, now platform.Millis) {
	c.voice.Refresh(logger.WithKV(ctx, "uptime_ms", uint32(now)), now)
}

// processPulses is the pulse task body.
func (c *Controller) processPulses(ctx context.Context, now platform.Millis) {
	c.evaluate(logger.WithKV(ctx, "uptime_ms", uint32(now)))
}

// evaluate drains the counter, decides and reports a triggered alarm.
// The outcome is nil unless a report was attempted.
func (c *Controller) evaluate(ctx context.Context) (alarm.Decision, *alarm.ReportOutcome) {
	count := c.counter.DrainAndReset()
	decision := alarm.Decide(count, c.voice.Snapshot(), c.rules)

	switch decision.Kind {
	case alarm.BelowThreshold:
		logger.DebugKV(ctx, "RF signal below threshold", "pulses", count)

		return decision, nil
	case alarm.Suppressed:
		logger.InfoKV(ctx, "RF burst suppressed", "pulses", count, "reason", decision.Reason)

		return decision, nil
	}

	logger.InfoKV(ctx, "Alarm triggered", "pulses", count)

	outcome := c.reporter.Report(ctx, c.deviceID, true)
	logger.InfoKV(ctx, "Alarm report finished", "outcome", outcome.String())

	return decision, &outcome
}
