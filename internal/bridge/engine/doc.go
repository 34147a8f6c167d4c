// Package engine abstracts the asynchronous MQTT network stack behind a
// small dispatch interface with callback-based completion.
//
// The session is the only caller of Engine methods; every dispatch is
// fire-and-forget and its outcome arrives later through Callbacks on an
// engine-internal goroutine. Reconnection after a lost connection is
// entirely engine-owned — the session never issues a second connect.
//
// The production implementation wraps paho.mqtt.golang, translating its
// token-based completion into the callback contract. Tests substitute a
// scripted fake.
package engine
