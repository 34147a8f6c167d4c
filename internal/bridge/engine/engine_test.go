package engine

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/mqtt-bridge/internal/infrastructure/config"
)

func TestServerURI(t *testing.T) {
	tests := []struct {
		name   string
		broker config.BrokerConfig
		want   string
	}{
		{
			"websocket TLS default path",
			config.BrokerConfig{Host: "broker.example", Port: 8883, TLS: true, WebSockets: true, WebSocketPath: "/mqtt"},
			"wss://broker.example:8883/mqtt",
		},
		{
			"websocket plain",
			config.BrokerConfig{Host: "broker.example", Port: 8080, WebSockets: true, WebSocketPath: "/ws"},
			"ws://broker.example:8080/ws",
		},
		{
			"tcp TLS",
			config.BrokerConfig{Host: "broker.example", Port: 8883, TLS: true},
			"ssl://broker.example:8883",
		},
		{
			"tcp plain",
			config.BrokerConfig{Host: "localhost", Port: 1883},
			"tcp://localhost:1883",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ServerURI(tt.broker))
		})
	}
}

func testBridgeConfig() *config.Config {
	return &config.Config{
		Broker: config.BrokerConfig{
			Host:          "broker.example",
			Port:          8883,
			ClientID:      "bridge-test",
			TLS:           false,
			WebSockets:    true,
			WebSocketPath: "/mqtt",
			KeepAlive:     30,
		},
		Auth: config.AuthConfig{Username: "user", Password: "secret"},
		QoS:  1,
		Reconnect: config.ReconnectConfig{
			InitialDelay: 2,
			MaxDelay:     45,
		},
		Health: config.HealthConfig{CheckInterval: time.Second},
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testBridgeConfig()

	opts := buildClientOptions(cfg, nil)

	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "ws://broker.example:8883/mqtt", opts.Servers[0].String())
	assert.Equal(t, "bridge-test", opts.ClientID)
	assert.Equal(t, "user", opts.Username)
	assert.Equal(t, "secret", opts.Password)
	assert.True(t, opts.CleanSession)
	assert.True(t, opts.AutoReconnect)
	assert.False(t, opts.ConnectRetry, "initial connect must not retry internally or its failure never resolves")
	assert.Equal(t, 45*time.Second, opts.MaxReconnectInterval)
	assert.Equal(t, int64(30), opts.KeepAlive)
	assert.Nil(t, opts.TLSConfig)
}

func TestBuildClientOptionsAnonymous(t *testing.T) {
	cfg := testBridgeConfig()
	cfg.Auth = config.AuthConfig{}

	opts := buildClientOptions(cfg, nil)

	assert.Empty(t, opts.Username)
	assert.Empty(t, opts.Password)
}

func TestCallbacksZeroValueSafe(t *testing.T) {
	// A zero Callbacks must tolerate every notification.
	var cb Callbacks
	cb.connected()
	cb.connectFailed(ErrTimeout)
	cb.connectionLost(ErrTimeout)
	cb.message("t", []byte("p"), 1)
	cb.deliveryComplete(7)
	cb.subscribeResult("t", nil)
	cb.publishResult("t", 7, nil)
	cb.unsubscribeResult("t", nil)
}

func TestConnectFailureReportsThroughCallback(t *testing.T) {
	// Reserve a port, then close the listener so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	cfg := testBridgeConfig()
	cfg.Broker.Host = "127.0.0.1"
	cfg.Broker.Port = port
	cfg.Broker.WebSockets = false

	failed := make(chan error, 1)
	e := NewPaho(cfg, nil, Callbacks{
		OnConnectFailed: func(err error) { failed <- err },
	})

	require.NoError(t, e.Connect())

	select {
	case err := <-failed:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("connect failure was never reported")
	}
}

func TestDispatchValidation(t *testing.T) {
	e := NewPaho(testBridgeConfig(), nil, Callbacks{})

	assert.ErrorIs(t, e.Subscribe("", 1), ErrInvalidTopic)
	assert.ErrorIs(t, e.Subscribe("topic", 3), ErrInvalidQoS)
	assert.ErrorIs(t, e.Publish("", nil, 1, false), ErrInvalidTopic)
	assert.ErrorIs(t, e.Publish("topic", nil, 3, false), ErrInvalidQoS)
	assert.ErrorIs(t, e.Unsubscribe(""), ErrInvalidTopic)
}
