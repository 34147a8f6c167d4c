package engine

import (
	"fmt"
	"time"

	"github.com/nerrad567/mqtt-bridge/internal/infrastructure/config"
)

// Engine is the asynchronous network stack driven by the session.
//
// Connect, Subscribe, Publish and Unsubscribe only dispatch; their
// outcome is always reported later through Callbacks, never through the
// return value. A non-nil return means the dispatch itself was rejected.
//
// Only the session's run thread may call these methods; Callbacks run on
// engine-internal goroutines.
type Engine interface {
	Connect() error
	Subscribe(topic string, qos byte) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Unsubscribe(topic string) error
	IsConnected() bool
	Disconnect(quiesce time.Duration)
}

// Callbacks receives engine notifications. All fields are optional.
//
// Implementations run on engine-internal goroutines concurrently with the
// session thread; they must do minimal, non-blocking work — construct an
// event, push it, flip an atomic — and return promptly.
type Callbacks struct {
	// OnConnected fires on the initial connect and every reconnect.
	OnConnected func()

	// OnConnectFailed fires when a connect dispatch later fails.
	OnConnectFailed func(err error)

	// OnConnectionLost fires when an established connection drops.
	// Automatic reconnection continues inside the engine.
	OnConnectionLost func(err error)

	// OnMessage fires for every inbound publication.
	OnMessage func(topic string, payload []byte, qos byte)

	// OnDeliveryComplete fires when an outbound publication is fully
	// acknowledged, carrying its correlation token.
	OnDeliveryComplete func(token uint16)

	// OnSubscribeResult reports the terminal outcome of a subscribe.
	OnSubscribeResult func(topic string, err error)

	// OnPublishResult reports the terminal outcome of a publish.
	OnPublishResult func(topic string, token uint16, err error)

	// OnUnsubscribeResult reports the terminal outcome of an unsubscribe.
	OnUnsubscribeResult func(topic string, err error)
}

func (c Callbacks) connected() {
	if c.OnConnected != nil {
		c.OnConnected()
	}
}

func (c Callbacks) connectFailed(err error) {
	if c.OnConnectFailed != nil {
		c.OnConnectFailed(err)
	}
}

func (c Callbacks) connectionLost(err error) {
	if c.OnConnectionLost != nil {
		c.OnConnectionLost(err)
	}
}

func (c Callbacks) message(topic string, payload []byte, qos byte) {
	if c.OnMessage != nil {
		c.OnMessage(topic, payload, qos)
	}
}

func (c Callbacks) deliveryComplete(token uint16) {
	if c.OnDeliveryComplete != nil {
		c.OnDeliveryComplete(token)
	}
}

func (c Callbacks) subscribeResult(topic string, err error) {
	if c.OnSubscribeResult != nil {
		c.OnSubscribeResult(topic, err)
	}
}

func (c Callbacks) publishResult(topic string, token uint16, err error) {
	if c.OnPublishResult != nil {
		c.OnPublishResult(topic, token, err)
	}
}

func (c Callbacks) unsubscribeResult(topic string, err error) {
	if c.OnUnsubscribeResult != nil {
		c.OnUnsubscribeResult(topic, err)
	}
}

// ServerURI builds the broker URI from the transport selection:
// <scheme>://<host>:<port>, with the WebSocket path appended for the
// WebSocket transports.
func ServerURI(b config.BrokerConfig) string {
	uri := fmt.Sprintf("%s://%s:%d", b.Scheme(), b.Host, b.Port)
	if b.WebSockets {
		uri += b.WebSocketPath
	}
	return uri
}
