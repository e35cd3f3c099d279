package bodyhash

import (
	"crypto"
	"testing"

	"github.com/zkemail/zkemail-go/internal/canonical"
)

// Cases drawn from RFC 6376 §3.4.4: the l= tag applies to the body
// *after* canonicalization, not to the raw source body.
func TestBodyHashWithRelaxedCanonicalizationAndLimit(t *testing.T) {
	testCases := []struct {
		name             string
		body             string
		canonicalization canonical.Canonicalization
		hashAlgo         crypto.Hash
		limit            int64
		want             string
	}{
		{
			// relaxed-canonicalized body is "Test\r\n"; limit 4 keeps "Test".
			name:             "rfc6376_relaxed_body_with_limit_4",
			body:             "Test  \r\n\r\n\r\n",
			canonicalization: canonical.Relaxed,
			hashAlgo:         crypto.SHA256,
			limit:            4,
			want:             "Uy6qvZV0iA2/drm4zACDLCCm7BE9aCKZVQ16bg80XiU=",
		},
		{
			// limit 5 keeps "Test\r".
			name:             "rfc6376_relaxed_body_with_limit_5",
			body:             "Test  \r\n\r\n\r\n",
			canonicalization: canonical.Relaxed,
			hashAlgo:         crypto.SHA256,
			limit:            5,
			want:             "KCUDYh74+flYXTn9al83JsyOBrUP9b07hSy8u6j/Qqs=",
		},
		{
			name:             "rfc6376_simple_body_with_limit_4",
			body:             "Test\r\n",
			canonicalization: canonical.Simple,
			hashAlgo:         crypto.SHA256,
			limit:            4,
			want:             "Uy6qvZV0iA2/drm4zACDLCCm7BE9aCKZVQ16bg80XiU=",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bh := NewBodyHash(tc.canonicalization, tc.hashAlgo, tc.limit)
			bh.Write([]byte(tc.body))
			bh.Close()
			got := bh.Get()
			if got != tc.want {
				t.Errorf("want %s, but got %s", tc.want, got)
			}
		})
	}
}
