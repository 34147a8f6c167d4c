//go:build darwin

package certs

import (
	"encoding/pem"
	"fmt"
	"os/exec"
)

// systemKeychains lists the keychains holding trusted roots, checked in
// order. The system roots keychain covers the stock trust store; the
// system keychain picks up administrator-installed intermediates.
var systemKeychains = []string{
	"/System/Library/Keychains/SystemRootCertificates.keychain",
	"/Library/Keychains/System.keychain",
}

// systemSource extracts trusted certificates via the security(1) tool,
// which emits PEM directly. The Security framework would need cgo; the
// tool ships with every macOS install.
type systemSource struct{}

func (systemSource) Certificates() ([][]byte, error) {
	var ders [][]byte
	var lastErr error

	for _, keychain := range systemKeychains {
		out, err := exec.Command("/usr/bin/security", "find-certificate", "-a", "-p", keychain).Output()
		if err != nil {
			lastErr = err
			continue
		}

		rest := out
		for {
			var block *pem.Block
			block, rest = pem.Decode(rest)
			if block == nil {
				break
			}
			if block.Type == "CERTIFICATE" {
				ders = append(ders, block.Bytes)
			}
		}
	}

	if len(ders) == 0 && lastErr != nil {
		return nil, fmt.Errorf("enumerating keychain certificates: %w", lastErr)
	}
	return ders, nil
}
