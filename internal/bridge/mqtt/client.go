package mqtt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/alarm-trigger/internal/logger"
)

// MessageHandler processes one message received on a subscribed topic.
type MessageHandler func(topic string, payload []byte) error

// Transport is the subset of an MQTT session the bridge components need.
type Transport interface {
	Subscribe(topic string, handler MessageHandler) error
	Unsubscribe(topics ...string) error
	Publish(topic string, payload []byte) error
}

// Options configures the broker session.
type Options struct {
	// Broker is the broker URL, e.g. tcp://127.0.0.1:1883.
	Broker string
	// ClientID identifies the session.
	ClientID string
	// Username is the optional broker user.
	Username string
	// Password is the optional broker password.
	Password string
	// Timeout bounds connect, subscribe and publish round trips.
	Timeout time.Duration
}

const (
	// qos is used for every subscription and publication; edges must not be duplicated.
	qos byte = 0
	// disconnectQuiesce is how long Close waits for in-flight work, in ms.
	disconnectQuiesce = 250
	// defaultTimeout bounds broker round trips when Options.Timeout is unset.
	defaultTimeout = 5 * time.Second
)

var (
	// errTimeout is returned when the broker does not acknowledge in time.
	errTimeout = errors.New("mqtt operation timed out")
	// errBrokerRequired is returned when no broker is configured.
	errBrokerRequired = errors.New("broker must be provided")
	// routeLogsOnce routes paho's package loggers into the debug sink once.
	//nolint:gochecknoglobals // paho loggers are package-level.
	routeLogsOnce sync.Once
)

// Client is a paho session implementing Transport.
type Client struct {
	// client is the underlying paho client.
	client paho.Client
	// timeout bounds every token wait.
	timeout time.Duration
}

// Connect opens a session to the broker and waits for the CONNACK.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	if opts.Broker == "" {
		return nil, errBrokerRequired
	}

	routeLogsOnce.Do(func() {
		paho.CRITICAL = logger.StdLogger("mqtt", zapcore.ErrorLevel)
		paho.ERROR = logger.StdLogger("mqtt", zapcore.ErrorLevel)
		paho.WARN = logger.StdLogger("mqtt", zapcore.WarnLevel)
	})

	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	clientOptions := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetConnectTimeout(opts.Timeout).
		SetOrderMatters(false)

	if opts.Username != "" {
		clientOptions.SetUsername(opts.Username)
	}

	if opts.Password != "" {
		clientOptions.SetPassword(opts.Password)
	}

	c := &Client{
		client:  paho.NewClient(clientOptions),
		timeout: opts.Timeout,
	}

	if err := c.wait(ctx, c.client.Connect()); err != nil {
		return nil, fmt.Errorf("connect to broker %s: %w", opts.Broker, err)
	}

	logger.InfoKV(ctx, "Connected to MQTT broker", "broker", opts.Broker, "client_id", opts.ClientID)

	return c, nil
}

// Subscribe registers handler for topic. Handler errors are logged, not returned to the broker.
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	callback := func(_ paho.Client, msg paho.Message) {
		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			logger.WarnKV(context.Background(), "MQTT message rejected", "topic", msg.Topic(), "error", err)
		}
	}

	if err := c.wait(context.Background(), c.client.Subscribe(topic, qos, callback)); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	return nil
}

// Unsubscribe removes the subscriptions for topics.
func (c *Client) Unsubscribe(topics ...string) error {
	if err := c.wait(context.Background(), c.client.Unsubscribe(topics...)); err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}

	return nil
}

// Publish sends payload to topic.
func (c *Client) Publish(topic string, payload []byte) error {
	if err := c.wait(context.Background(), c.client.Publish(topic, qos, false, payload)); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	return nil
}

// Close disconnects from the broker.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}

	c.client.Disconnect(disconnectQuiesce)

	return nil
}

// wait blocks until the token completes, the context ends or the timeout elapses.
func (c *Client) wait(ctx context.Context, token paho.Token) error {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errTimeout
	}
}
