// Package pubkey parses the DER-encoded RSA public keys the verification
// core accepts for DKIM signature checking.
package pubkey

import (
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
)

// ErrKeyParseError is returned when key_bytes cannot be interpreted as
// either RSA encoding this package accepts.
var ErrKeyParseError = errors.New("public key bytes cannot be interpreted")

// Parse decodes a PublicKey's key_bytes into an *rsa.PublicKey.
//
// RFC 6376 defines k=rsa public keys as ASN.1 DER encoded RSAPublicKey
// (PKCS#1). Many real-world DNS records instead carry a full
// SubjectPublicKeyInfo (PKIX) wrapper; both forms are accepted, with
// PKCS#1 tried first since it is what the RFC specifies.
func Parse(keyBytes []byte, keyType string) (*rsa.PublicKey, error) {
	if keyType != "" && keyType != "rsa" {
		return nil, fmt.Errorf("%w: unsupported key type %q", ErrKeyParseError, keyType)
	}

	if pub, err := x509.ParsePKCS1PublicKey(keyBytes); err == nil {
		return pub, nil
	}

	pub, err := x509.ParsePKIXPublicKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyParseError, err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an rsa public key (%T)", ErrKeyParseError, pub)
	}
	return rsaPub, nil
}
