package certs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Domain-specific errors for trust bundle resolution.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNoTrustBundle is returned when every trust source is exhausted.
	// No TLS connection is attempted without a bundle.
	ErrNoTrustBundle = errors.New("certs: no trust bundle could be resolved")

	// ErrDeferToSystem is returned by platform sources whose TLS stack
	// consumes the system certificate paths directly, making extraction
	// a deliberate no-op.
	ErrDeferToSystem = errors.New("certs: platform defers to system trust store")
)

// tempFilePrefix names synthesized bundles under the process temp directory.
const tempFilePrefix = "mqtt_certs_"

// Source enumerates trusted certificates from a platform trust store.
type Source interface {
	// Certificates returns the DER encoding of each trusted root and
	// intermediate certificate, or ErrDeferToSystem on platforms where
	// the TLS stack reads system paths itself.
	Certificates() ([][]byte, error)
}

// Logger is the subset of logging used during resolution and cleanup.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Bundle is the outcome of trust resolution.
type Bundle struct {
	// Path locates a PEM trust bundle on disk. Empty when System is true.
	Path string

	// System indicates the TLS stack should use its own root store
	// rather than an explicit bundle file.
	System bool

	// Synthesized marks bundles extracted into a session-owned temp file
	// that must be removed on shutdown.
	Synthesized bool
}

// Resolver produces a trust bundle for the TLS handshake, trying sources
// in strict priority order:
//
//  1. Caller-supplied certificate file, if present on disk
//  2. Well-known pre-installed bundle paths for the platform
//  3. Extraction from the OS trust store (Source)
//
// Resolution fails only when all three are exhausted.
type Resolver struct {
	// CertFile is an optional caller-supplied bundle path. The file is
	// caller-owned and never deleted.
	CertFile string

	// ClientID keys the synthesized temp file name so concurrent
	// sessions do not clobber each other's bundles.
	ClientID string

	// Dir overrides the temp directory for synthesized bundles.
	// Defaults to os.TempDir().
	Dir string

	// Source overrides the platform trust store. Defaults to the
	// platform implementation selected at build time.
	Source Source

	log      Logger
	tempFile string
}

// NewResolver creates a resolver for the given caller-supplied certificate
// path (may be empty) and client id.
func NewResolver(certFile, clientID string) *Resolver {
	return &Resolver{
		CertFile: certFile,
		ClientID: clientID,
	}
}

// SetLogger sets a logger for resolution progress and cleanup warnings.
func (r *Resolver) SetLogger(log Logger) {
	r.log = log
}

// Resolve locates or synthesizes a PEM trust bundle.
//
// Returns:
//   - Bundle: resolved bundle, or a system-roots marker on platforms
//     that defer to OS paths
//   - error: ErrNoTrustBundle (wrapped) when every source is exhausted
func (r *Resolver) Resolve() (Bundle, error) {
	// 1. Caller-supplied certificate file
	if r.CertFile != "" {
		if fileExists(r.CertFile) {
			r.infof("using provided certificate file", "path", r.CertFile)
			return Bundle{Path: r.CertFile}, nil
		}
		r.warnf("provided certificate file not found, falling back", "path", r.CertFile)
	}

	// 2. Pre-installed bundle paths
	for _, path := range bundleSearchPaths[runtime.GOOS] {
		if fileExists(path) {
			r.infof("using pre-installed certificate bundle", "path", path)
			return Bundle{Path: path}, nil
		}
	}

	// 3. Platform trust store extraction
	ders, err := r.source().Certificates()
	if errors.Is(err, ErrDeferToSystem) {
		r.infof("deferring to system certificate paths")
		return Bundle{System: true}, nil
	}
	if err != nil {
		return Bundle{}, fmt.Errorf("extracting system certificates: %w", err)
	}
	if len(ders) == 0 {
		return Bundle{}, fmt.Errorf("%w: system trust store yielded no certificates", ErrNoTrustBundle)
	}

	path, err := r.persist(encodeCertificates(ders))
	if err != nil {
		return Bundle{}, err
	}
	r.infof("synthesized certificate bundle", "path", path, "certificates", len(ders))
	return Bundle{Path: path, Synthesized: true}, nil
}

// Cleanup removes the synthesized bundle, if any. Deletion failure is
// logged and swallowed; a stale file is regenerated on the next run.
func (r *Resolver) Cleanup() {
	if r.tempFile == "" {
		return
	}
	if err := os.Remove(r.tempFile); err != nil && !os.IsNotExist(err) {
		r.warnf("failed to remove temporary certificate file", "path", r.tempFile, "error", err)
	}
	r.tempFile = ""
}

// persist writes the PEM bundle to a deterministic temp file keyed by
// client id, so a crashed run's leftover is simply overwritten.
func (r *Resolver) persist(pemData []byte) (string, error) {
	dir := r.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, tempFilePrefix+r.ClientID+".pem")
	if err := os.WriteFile(path, pemData, 0o600); err != nil {
		return "", fmt.Errorf("writing temporary certificate file: %w", err)
	}
	r.tempFile = path
	return path, nil
}

func (r *Resolver) source() Source {
	if r.Source != nil {
		return r.Source
	}
	return systemSource{}
}

func (r *Resolver) infof(msg string, args ...any) {
	if r.log != nil {
		r.log.Info(msg, args...)
	}
}

func (r *Resolver) warnf(msg string, args ...any) {
	if r.log != nil {
		r.log.Warn(msg, args...)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// bundleSearchPaths lists well-known pre-installed bundle locations per
// platform, in preference order.
var bundleSearchPaths = map[string][]string{
	"linux": {
		"/etc/ssl/certs/ca-certificates.crt", // Debian/Ubuntu
		"/etc/pki/tls/certs/ca-bundle.crt",   // RedHat/CentOS
		"/etc/ssl/ca-bundle.pem",             // OpenSUSE
		"/etc/ssl/cert.pem",                  // Generic
	},
	"darwin": {
		"/etc/ssl/cert.pem",                       // System default
		"/opt/homebrew/etc/openssl@3/cert.pem",    // Apple Silicon Homebrew
		"/opt/homebrew/etc/openssl@1.1/cert.pem",  // Apple Silicon Homebrew
		"/usr/local/etc/openssl@3/cert.pem",       // Homebrew OpenSSL 3
		"/usr/local/etc/openssl@1.1/cert.pem",     // Homebrew OpenSSL 1.1
		"/usr/local/etc/openssl/cert.pem",         // Older Homebrew
	},
	// Windows has no conventional bundle file; extraction is the path.
}
