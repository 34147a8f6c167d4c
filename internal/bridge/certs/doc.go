// Package certs resolves the TLS trust bundle used to validate the broker
// certificate.
//
// Trust sources are tried in strict priority order:
//
//  1. A caller-supplied certificate file (never deleted)
//  2. Well-known pre-installed bundle paths for the platform
//  3. Extraction from the OS trust store — crypt32 stores on Windows,
//     the security(1) tool on macOS; Linux defers to the distribution's
//     bundle paths, which the TLS stack reads directly
//
// Extracted bundles are written to a temp file named after the client id
// and removed on shutdown. If no source yields a bundle, resolution fails
// and no TLS connection is attempted.
package certs
