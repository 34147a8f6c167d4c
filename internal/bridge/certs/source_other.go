//go:build !linux && !darwin && !windows

package certs

// systemSource has no trust store extraction on this platform; resolution
// fails unless a caller-supplied or pre-installed bundle is found.
type systemSource struct{}

func (systemSource) Certificates() ([][]byte, error) {
	return nil, nil
}
