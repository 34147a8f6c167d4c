package certs

import (
	"bytes"
	"encoding/pem"
)

// encodeCertificates renders DER certificates as a concatenated PEM
// bundle: RFC 4648 standard base64, padded, wrapped at 64 columns inside
// CERTIFICATE armor.
func encodeCertificates(ders [][]byte) []byte {
	var buf bytes.Buffer
	for _, der := range ders {
		// bytes.Buffer writes cannot fail.
		_ = pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: der})
	}
	return buf.Bytes()
}
