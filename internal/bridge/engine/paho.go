package engine

import (
	"crypto/tls"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/mqtt-bridge/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time a single connection
	// attempt may take before the retry policy kicks in.
	defaultConnectTimeout = 10 * time.Second

	// defaultOpTimeout bounds how long a subscribe/publish/unsubscribe
	// waits for acknowledgment before its result callback reports a
	// timeout.
	defaultOpTimeout = 5 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2
)

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Paho implements Engine on top of paho.mqtt.golang.
//
// The paho client owns the network goroutines and the automatic
// reconnection policy; Paho bridges its token-based completion model to
// the asynchronous Callbacks contract by waiting out each token on a
// dedicated goroutine.
type Paho struct {
	client pahomqtt.Client
	cb     Callbacks
	log    Logger
}

// NewPaho creates an engine bound to the given configuration and
// callbacks. tlsCfg may be nil for plain transports.
//
// The engine is created disconnected; call Connect to dispatch the
// initial connection attempt.
func NewPaho(cfg *config.Config, tlsCfg *tls.Config, cb Callbacks) *Paho {
	e := &Paho{cb: cb}

	opts := buildClientOptions(cfg, tlsCfg)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		e.cb.connected()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		e.cb.connectionLost(err)
	})
	opts.SetDefaultPublishHandler(e.handleMessage)

	e.client = pahomqtt.NewClient(opts)
	return e
}

// SetLogger sets a logger for handler panic recovery. If not set, panics
// in message callbacks are silently swallowed.
func (e *Paho) SetLogger(log Logger) {
	e.log = log
}

// buildClientOptions creates paho options from bridge config.
//
// This configures:
//   - Broker URI derived from the transport/TLS selection
//   - Client ID and optional credentials
//   - Automatic reconnect with the configured backoff bounds
//   - Retry of the initial connection attempt
//   - Clean session mode and keep-alive
//   - TLS configuration (if a trust bundle was resolved)
func buildClientOptions(cfg *config.Config, tlsCfg *tls.Config) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	opts.AddBroker(ServerURI(cfg.Broker))
	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Clean session - start fresh on connect (no persistent session on broker)
	opts.SetCleanSession(true)

	// Auto-reconnect with exponential backoff after the first successful
	// connect; the session never issues a second explicit connect. The
	// initial attempt is not retried inside the client: its token must
	// resolve so a failure surfaces as a terminal notification.
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetMaxReconnectInterval(cfg.MaxReconnectDelay())

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(cfg.KeepAliveInterval())

	if tlsCfg != nil {
		opts.SetTLSConfig(tlsCfg)
	}

	return opts
}

// Connect dispatches the initial connection attempt. Completion is
// reported through OnConnected or OnConnectFailed.
func (e *Paho) Connect() error {
	token := e.client.Connect()
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			e.cb.connectFailed(err)
		}
		// Success is reported via the OnConnect handler so reconnects
		// and the first connect share one path.
	}()
	return nil
}

// Subscribe dispatches a subscription request. The terminal outcome is
// reported through OnSubscribeResult.
func (e *Paho) Subscribe(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}

	token := e.client.Subscribe(topic, qos, e.handleMessage)
	go func() {
		if !token.WaitTimeout(defaultOpTimeout) {
			e.cb.subscribeResult(topic, ErrTimeout)
			return
		}
		e.cb.subscribeResult(topic, token.Error())
	}()
	return nil
}

// Publish dispatches a publication. The terminal outcome is reported
// through OnPublishResult, followed by OnDeliveryComplete on success.
func (e *Paho) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}

	token := e.client.Publish(topic, qos, retained, payload)
	go func() {
		if !token.WaitTimeout(defaultOpTimeout) {
			e.cb.publishResult(topic, 0, ErrTimeout)
			return
		}

		var id uint16
		if pt, ok := token.(*pahomqtt.PublishToken); ok {
			id = pt.MessageID()
		}
		err := token.Error()
		e.cb.publishResult(topic, id, err)
		if err == nil {
			e.cb.deliveryComplete(id)
		}
	}()
	return nil
}

// Unsubscribe dispatches an unsubscribe request. The terminal outcome is
// reported through OnUnsubscribeResult.
func (e *Paho) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	token := e.client.Unsubscribe(topic)
	go func() {
		if !token.WaitTimeout(defaultOpTimeout) {
			e.cb.unsubscribeResult(topic, ErrTimeout)
			return
		}
		e.cb.unsubscribeResult(topic, token.Error())
	}()
	return nil
}

// IsConnected reports the engine's own liveness bookkeeping. After an OS
// suspend this can lag true socket state; the health monitor compensates.
func (e *Paho) IsConnected() bool {
	return e.client.IsConnected()
}

// Disconnect closes the connection, waiting up to quiesce for in-flight
// work to finish.
func (e *Paho) Disconnect(quiesce time.Duration) {
	e.client.Disconnect(uint(quiesce.Milliseconds()))
}

// handleMessage bridges inbound publications to OnMessage with panic
// recovery, so a consumer bug cannot unwind into the paho router.
func (e *Paho) handleMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	defer func() {
		if r := recover(); r != nil {
			if e.log != nil {
				e.log.Error("message callback panic recovered",
					"topic", msg.Topic(),
					"panic", r,
				)
			}
		}
	}()

	e.cb.message(msg.Topic(), msg.Payload(), msg.Qos())
}
