// Package bodyhash computes the DKIM bh= value: a canonicalized,
// optionally length-limited SHA-256 digest of a message body.
package bodyhash

import (
	"crypto"
	_ "crypto/sha256" // register SHA-256 with the crypto package
	"encoding/base64"
	"hash"
	"io"

	"github.com/zkemail/zkemail-go/internal/canonical"
)

// BodyHash streams canonicalized body bytes into a running hash.
type BodyHash struct {
	hashAlgo crypto.Hash
	w        io.WriteCloser
	hasher   hash.Hash
	limit    int64
}

// Write feeds raw body bytes through canonicalization into the hash.
func (b *BodyHash) Write(p []byte) (n int, err error) {
	return b.w.Write(p)
}

// Close flushes any buffered canonicalization state (trailing CRLF rules).
func (b *BodyHash) Close() error {
	return b.w.Close()
}

// Get returns the base64-encoded digest. Call only after Close.
func (b *BodyHash) Get() string {
	sum := b.hasher.Sum(nil)
	return base64.StdEncoding.EncodeToString(sum)
}

// Sum returns the raw digest bytes. Call only after Close.
func (b *BodyHash) Sum() []byte {
	return b.hasher.Sum(nil)
}

// NewBodyHash builds a BodyHash for the given canonicalization and hash
// algorithm. A limit of 0 means unlimited (no l= tag).
func NewBodyHash(canon canonical.Canonicalization, hashAlgo crypto.Hash, limit int64) *BodyHash {
	if limit < 0 {
		limit = 0
	}
	hasher := hashAlgo.New()
	bh := &BodyHash{
		hashAlgo: hashAlgo,
		hasher:   hasher,
		limit:    limit,
	}

	// canonicalizer -> limitWriter -> hasher
	var writer io.Writer = hasher
	if limit > 0 {
		writer = newLimitWriter(writer, limit)
	}

	switch canon {
	case canonical.Relaxed:
		bh.w = canonical.RelaxedBody(writer)
	default:
		bh.w = canonical.SimpleBody(writer)
	}
	return bh
}
