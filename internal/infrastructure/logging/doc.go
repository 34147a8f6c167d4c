// Package logging provides structured logging for the MQTT bridge.
//
// This package wraps log/slog with:
//   - Level filtering from configuration
//   - JSON or text output formats
//   - Default service/version fields on every record
//
// Usage:
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("session started", "client_id", clientID)
package logging
