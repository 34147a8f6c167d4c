//go:build windows

package certs

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// systemStores are the certificate stores holding trusted roots and
// intermediates, matching what the schannel stack trusts.
var systemStores = []string{"ROOT", "CA"}

// systemSource enumerates certificates from the Windows system stores
// via crypt32. Stores that cannot be opened are skipped; the bundle is
// whatever the remaining stores yield.
type systemSource struct{}

func (systemSource) Certificates() ([][]byte, error) {
	var ders [][]byte

	for _, store := range systemStores {
		name, err := windows.UTF16PtrFromString(store)
		if err != nil {
			continue
		}
		handle, err := windows.CertOpenSystemStore(0, name)
		if err != nil {
			continue
		}

		var ctx *windows.CertContext
		for {
			ctx, err = windows.CertEnumCertificatesInStore(handle, ctx)
			if err != nil || ctx == nil {
				break
			}
			// Copy out of the store-owned buffer before the context is
			// released by the next enumeration step.
			der := unsafe.Slice(ctx.EncodedCert, ctx.Length)
			ders = append(ders, append([]byte(nil), der...))
		}

		_ = windows.CertCloseStore(handle, 0)
	}

	return ders, nil
}
