package certs

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// tlsMinVersion is the minimum TLS version for secure connections.
const tlsMinVersion = tls.VersionTLS12

// TLSConfig builds the TLS client configuration for the resolved bundle.
//
// System bundles leave RootCAs nil so the runtime uses the platform
// verifier; explicit bundles are parsed into a dedicated pool.
func (b Bundle) TLSConfig() (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion: tlsMinVersion,
	}
	if b.System {
		return cfg, nil
	}

	data, err := os.ReadFile(b.Path)
	if err != nil {
		return nil, fmt.Errorf("reading trust bundle: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("%w: no certificates parsed from %s", ErrNoTrustBundle, b.Path)
	}
	cfg.RootCAs = pool

	return cfg, nil
}
