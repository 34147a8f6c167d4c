package session

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/mqtt-bridge/internal/bridge/certs"
	"github.com/nerrad567/mqtt-bridge/internal/bridge/engine"
	"github.com/nerrad567/mqtt-bridge/internal/bridge/event"
	"github.com/nerrad567/mqtt-bridge/internal/infrastructure/config"
	"github.com/nerrad567/mqtt-bridge/internal/infrastructure/logging"
)

// Timing constants.
const (
	// defaultLoopQuantum is the run loop's per-iteration sleep. It is
	// the only sleep in the hot path and bounds both request-dispatch
	// latency and CPU usage.
	defaultLoopQuantum = 100 * time.Millisecond

	// disconnectQuiesce bounds the shutdown disconnect so an
	// unresponsive broker cannot hang the run loop.
	disconnectQuiesce = time.Second

	// staleSettleDelay is the pause after tearing down a stale link
	// before automatic reconnection is left to take over.
	staleSettleDelay = 2 * time.Second
)

// engineFactory builds the network engine for one run. Swapped in tests.
type engineFactory func(cfg *config.Config, tlsCfg *tls.Config, cb engine.Callbacks) engine.Engine

// Session bridges the asynchronous engine to a poll-friendly consumer.
//
// The run loop is the only code that calls into the engine; consumers
// interact exclusively through the Request methods and the event queue.
//
// Thread Safety:
//   - Run must be called once, on its own goroutine.
//   - Stop, IsConnected, State and the Request methods are safe from any
//     goroutine.
type Session struct {
	cfg    *config.Config
	events *event.Queue
	log    *logging.Logger

	resolver  *certs.Resolver
	health    *monitor
	newEngine engineFactory
	quantum   time.Duration

	// eng is written once by Run before the loop starts and read by the
	// loop and the health pass on the same goroutine.
	eng engine.Engine

	state     atomic.Int32
	connected atomic.Bool
	stopping  atomic.Bool

	work workQueue
}

// New creates a session for the given configuration.
//
// A client id is generated when the configuration leaves it empty; the
// id also keys the synthesized certificate file, so it is fixed here
// rather than at connect time.
func New(cfg *config.Config, events *event.Queue, log *logging.Logger) *Session {
	c := *cfg
	if c.Broker.ClientID == "" {
		c.Broker.ClientID = "mqtt-bridge-" + uuid.NewString()[:8]
	}

	s := &Session{
		cfg:     &c,
		events:  events,
		log:     log.With("component", "session", "client_id", c.Broker.ClientID),
		health:  newMonitor(c.Health.CheckInterval, c.KeepAliveInterval()),
		quantum: defaultLoopQuantum,
	}
	s.resolver = certs.NewResolver(c.Broker.CertFile, c.Broker.ClientID)
	s.resolver.SetLogger(s.log)
	s.newEngine = func(cfg *config.Config, tlsCfg *tls.Config, cb engine.Callbacks) engine.Engine {
		e := engine.NewPaho(cfg, tlsCfg, cb)
		e.SetLogger(s.log)
		return e
	}
	s.state.Store(int32(StateIdle))
	return s
}

// Run owns the session thread: it connects, then drains work and runs
// periodic health checks until Stop is called or ctx is cancelled.
//
// Exactly one explicit connect is issued per Run; all reconnection is
// delegated to the engine. Run returns an error only when startup fails
// before the loop begins.
func (s *Session) Run(ctx context.Context) error {
	s.setState(StateConnecting)

	eng, err := s.startEngine()
	if err != nil {
		s.events.Push(event.Event{Type: event.TypeError, Detail: err.Error()})
		s.setState(StateStopped)
		return err
	}
	s.eng = eng

	lastHealth := time.Now()
	for !s.stopping.Load() && ctx.Err() == nil {
		s.dispatchWork()

		if time.Since(lastHealth) >= s.cfg.Health.CheckInterval {
			s.checkHealth()
			lastHealth = time.Now()
		}

		select {
		case <-ctx.Done():
		case <-time.After(s.quantum):
		}
	}

	s.setState(StateDisconnecting)
	s.log.Info("disconnecting", "quiesce", disconnectQuiesce)
	eng.Disconnect(disconnectQuiesce)
	s.connected.Store(false)
	s.resolver.Cleanup()
	s.setState(StateStopped)
	s.log.Info("session stopped")
	return nil
}

// Stop requests shutdown. It is idempotent, safe from any goroutine, and
// returns without waiting for the run loop to exit.
func (s *Session) Stop() {
	s.stopping.Store(true)
}

// IsConnected returns a snapshot of the connection flag.
func (s *Session) IsConnected() bool {
	return s.connected.Load()
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	return State(s.state.Load())
}

// RequestSubscribe queues a subscription request. The terminal outcome
// arrives later as a SubscribeSucceeded or SubscribeFailed event.
func (s *Session) RequestSubscribe(topic string, qos byte) {
	s.work.add(workItem{kind: workSubscribe, topic: topic, qos: qos})
}

// RequestPublish queues a publication. The terminal outcome arrives
// later as a PublishSucceeded or PublishFailed event.
func (s *Session) RequestPublish(topic string, payload []byte, qos byte, retained bool) {
	s.work.add(workItem{kind: workPublish, topic: topic, payload: payload, qos: qos, retained: retained})
}

// RequestUnsubscribe queues an unsubscribe request.
func (s *Session) RequestUnsubscribe(topic string) {
	s.work.add(workItem{kind: workUnsubscribe, topic: topic})
}

// PendingRequests returns the work queue depth, for diagnostics.
func (s *Session) PendingRequests() int {
	return s.work.depth()
}

// startEngine resolves the trust bundle when TLS is enabled, builds the
// engine and dispatches the single explicit connect of this run.
func (s *Session) startEngine() (engine.Engine, error) {
	var tlsCfg *tls.Config
	if s.cfg.Broker.TLS {
		bundle, err := s.resolver.Resolve()
		if err != nil {
			return nil, fmt.Errorf("resolving trust bundle: %w", err)
		}
		tlsCfg, err = bundle.TLSConfig()
		if err != nil {
			return nil, fmt.Errorf("building TLS config: %w", err)
		}
	}

	eng := s.newEngine(s.cfg, tlsCfg, s.callbacks())

	s.log.Info("connecting",
		"uri", engine.ServerURI(s.cfg.Broker),
		"tls", s.cfg.Broker.TLS,
		"websockets", s.cfg.Broker.WebSockets,
	)
	if err := eng.Connect(); err != nil {
		return nil, fmt.Errorf("dispatching connect: %w", err)
	}
	return eng, nil
}

// callbacks binds engine notifications to this session. The closures run
// on engine goroutines and only push events, flip atomics and touch the
// activity timestamp — never call back into the engine.
func (s *Session) callbacks() engine.Callbacks {
	return engine.Callbacks{
		OnConnected: func() {
			s.connected.Store(true)
			s.setState(StateConnected)
			s.health.Touch()
			s.events.Push(event.Event{Type: event.TypeConnected, Detail: "connected to broker"})
		},
		OnConnectFailed: func(err error) {
			s.setState(StateIdle)
			s.events.Push(event.Event{Type: event.TypeError, Detail: "connect failed: " + err.Error()})
		},
		OnConnectionLost: func(err error) {
			s.connected.Store(false)
			s.setState(StateReconnecting)
			detail := "unknown cause"
			if err != nil {
				detail = err.Error()
			}
			s.events.Push(event.Event{Type: event.TypeConnectionLost, Detail: detail})
		},
		OnMessage: func(topic string, payload []byte, qos byte) {
			s.health.Touch()
			s.events.Push(event.Event{Type: event.TypeMessageArrived, Topic: topic, Payload: payload, QoS: qos})
		},
		OnDeliveryComplete: func(token uint16) {
			s.health.Touch()
			s.events.Push(event.Event{Type: event.TypeDeliveryComplete, Token: token})
		},
		OnSubscribeResult: func(topic string, err error) {
			if err != nil {
				s.events.Push(event.Event{Type: event.TypeSubscribeFailed, Topic: topic, Detail: "subscribe failed: " + err.Error()})
				return
			}
			s.events.Push(event.Event{Type: event.TypeSubscribeSucceeded, Topic: topic})
		},
		OnPublishResult: func(topic string, token uint16, err error) {
			if err != nil {
				s.events.Push(event.Event{Type: event.TypePublishFailed, Topic: topic, Detail: "publish failed: " + err.Error()})
				return
			}
			s.events.Push(event.Event{Type: event.TypePublishSucceeded, Topic: topic, Token: token})
		},
		OnUnsubscribeResult: func(topic string, err error) {
			if err != nil {
				s.events.Push(event.Event{Type: event.TypeError, Topic: topic, Detail: "unsubscribe failed: " + err.Error()})
			}
		},
	}
}

// dispatchWork drains queued requests in submission order while the
// connection is up. Items queued while disconnected wait for the next
// connect; they are not expired or deduplicated.
func (s *Session) dispatchWork() {
	for s.connected.Load() {
		item, ok := s.work.take()
		if !ok {
			return
		}
		s.dispatch(item)
	}
}

// dispatch hands one item to the engine. A synchronous rejection is
// surfaced as a failure event carrying the topic, matching the terminal
// event the engine would otherwise deliver.
func (s *Session) dispatch(item workItem) {
	switch item.kind {
	case workSubscribe:
		if err := s.eng.Subscribe(item.topic, item.qos); err != nil {
			s.events.Push(event.Event{Type: event.TypeSubscribeFailed, Topic: item.topic, Detail: "subscribe rejected: " + err.Error()})
		}
	case workPublish:
		if err := s.eng.Publish(item.topic, item.payload, item.qos, item.retained); err != nil {
			s.events.Push(event.Event{Type: event.TypePublishFailed, Topic: item.topic, Detail: "publish rejected: " + err.Error()})
		}
	case workUnsubscribe:
		if err := s.eng.Unsubscribe(item.topic); err != nil {
			s.events.Push(event.Event{Type: event.TypeError, Topic: item.topic, Detail: "unsubscribe rejected: " + err.Error()})
		}
	}
}

// checkHealth runs one monitor pass and acts on the verdict.
func (s *Session) checkHealth() {
	switch s.health.Check(s.connected.Load(), s.eng.IsConnected()) {
	case verdictLost:
		s.connected.Store(false)
		s.setState(StateReconnecting)
		s.events.Push(event.Event{Type: event.TypeConnectionLost, Detail: "stale connection detected"})
		// Automatic reconnection re-establishes the link.
	case verdictStale:
		s.connected.Store(false)
		s.setState(StateReconnecting)
		s.log.Warn("no activity since resume, recycling connection")
		// Off the health-check path: teardown may block for the full
		// quiesce window.
		go s.recycleStaleLink(s.eng)
	case verdictHealthy:
	}
}

// recycleStaleLink tears down a link whose liveness bookkeeping survived
// an OS suspend, then leaves re-establishment to automatic reconnection.
func (s *Session) recycleStaleLink(eng engine.Engine) {
	eng.Disconnect(disconnectQuiesce)
	time.Sleep(staleSettleDelay)
	s.log.Info("stale link recycled, awaiting automatic reconnect")
}

func (s *Session) setState(st State) {
	prev := State(s.state.Swap(int32(st)))
	if prev != st {
		s.log.Debug("state transition", "from", prev.String(), "to", st.String())
	}
}
