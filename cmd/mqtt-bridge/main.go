// MQTT Bridge - Synchronous MQTT for event-loop applications
//
// This is the main entry point for the mqtt-bridge demonstration binary.
// It connects to a broker, echoes messages arriving on the demo topic and
// shuts down cleanly on a control message or an interrupt signal.
//
// The interesting code lives in internal/bridge; this binary is a worked
// example of consuming the session and event queue from a single loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/mqtt-bridge/internal/bridge/event"
	"github.com/nerrad567/mqtt-bridge/internal/bridge/session"
	"github.com/nerrad567/mqtt-bridge/internal/infrastructure/config"
	"github.com/nerrad567/mqtt-bridge/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// popTimeout bounds each event-queue wait so the loop can notice signals.
const popTimeout = 250 * time.Millisecond

// statusInterval paces the periodic status report.
const statusInterval = 30 * time.Second

// topics is the demo topic set. Defaults suit a scratch broker; each one
// can be overridden through the environment to fit an existing layout.
type topics struct {
	demo     string
	response string
	control  string
}

func demoTopics() topics {
	t := topics{
		demo:     "test/topic",
		response: "test/response",
		control:  "control/stop",
	}
	if v := os.Getenv("MQTTBRIDGE_DEMO_TOPIC"); v != "" {
		t.demo = v
	}
	if v := os.Getenv("MQTTBRIDGE_RESPONSE_TOPIC"); v != "" {
		t.response = v
	}
	if v := os.Getenv("MQTTBRIDGE_CONTROL_TOPIC"); v != "" {
		t.control = v
	}
	return t
}

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting mqtt-bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// The event queue is the only channel from the session back to us.
	events := event.NewQueue()
	sess := session.New(cfg, events, log)

	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run(ctx) }()

	top := demoTopics()
	log.Info("event loop started",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"demo_topic", top.demo,
	)

	lastStatus := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received, stopping session")
			sess.Stop()
			return waitForSession(runErr, log)
		case err := <-runErr:
			// The session exited on its own; before the loop asked it to,
			// that means startup failed.
			if err != nil {
				return fmt.Errorf("session: %w", err)
			}
			return nil
		default:
		}

		if time.Since(lastStatus) >= statusInterval {
			log.Info("status",
				"state", sess.State().String(),
				"connected", sess.IsConnected(),
				"pending_requests", sess.PendingRequests(),
				"queued_events", events.Len(),
			)
			lastStatus = time.Now()
		}

		ev, ok := events.Pop(popTimeout)
		if !ok {
			continue
		}

		if stop := handleEvent(sess, ev, top, byte(cfg.QoS), log); stop {
			log.Info("stop requested via control topic")
			sess.Stop()
			return waitForSession(runErr, log)
		}
	}
}

// handleEvent processes one event from the session. It returns true when
// the control topic asks for shutdown.
func handleEvent(sess *session.Session, ev event.Event, top topics, qos byte, log *logging.Logger) bool {
	switch ev.Type {
	case event.TypeConnected:
		log.Info("connected, subscribing", "topics", []string{top.demo, top.control})
		sess.RequestSubscribe(top.demo, qos)
		sess.RequestSubscribe(top.control, qos)

	case event.TypeConnectionLost:
		log.Warn("connection lost", "detail", ev.Detail)

	case event.TypeMessageArrived:
		log.Info("message arrived", "topic", ev.Topic, "bytes", len(ev.Payload))
		switch ev.Topic {
		case top.demo:
			sess.RequestPublish(top.response, append([]byte("Echo: "), ev.Payload...), qos, false)
		case top.control:
			if string(ev.Payload) == "shutdown" {
				return true
			}
		}

	case event.TypeSubscribeSucceeded:
		log.Info("subscribed", "topic", ev.Topic)

	case event.TypeSubscribeFailed:
		log.Error("subscribe failed", "topic", ev.Topic, "detail", ev.Detail)

	case event.TypePublishSucceeded:
		log.Debug("published", "topic", ev.Topic, "token", ev.Token)

	case event.TypePublishFailed:
		log.Error("publish failed", "topic", ev.Topic, "detail", ev.Detail)

	case event.TypeDeliveryComplete:
		log.Debug("delivery complete", "token", ev.Token)

	case event.TypeError:
		log.Error("session error", "detail", ev.Detail)
	}
	return false
}

// waitForSession blocks until the run goroutine exits, bounded so a hung
// disconnect cannot wedge shutdown.
func waitForSession(runErr <-chan error, log *logging.Logger) error {
	select {
	case err := <-runErr:
		if err != nil {
			return fmt.Errorf("session: %w", err)
		}
	case <-time.After(10 * time.Second):
		log.Error("session did not stop in time, exiting anyway")
	}
	log.Info("mqtt-bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses MQTTBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MQTTBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
