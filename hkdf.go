package noise

import (
	"crypto/hmac"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

// hkdfN runs HKDF with the Noise-spec chaining key as salt and the mixed
// input (a DH output, a PSK, an ephemeral public key, or empty at split) as
// input keying material, producing n output
// blocks of hashLen bytes each. This is mathematically identical to the
// Noise spec's own HMAC-chain construction (Extract(ck, input) followed by
// successive HMAC(tempKey, prevOutput || byte(i))), since HKDF-Expand with a
// nil info string is exactly that chain; golang.org/x/crypto/hkdf is used
// here in place of hand-rolling it.
func hkdfN(h HashFunc, ck, inputKeyMaterial []byte, n int) ([][]byte, error) {
	newHash := func() hash.Hash { return h.Hash() }
	reader := hkdf.New(newHash, inputKeyMaterial, ck, nil)
	hashLen := newHash().Size()
	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		out[i] = make([]byte, hashLen)
		if _, err := io.ReadFull(reader, out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// hmacHash computes HMAC(key, data) using the given hash constructor. It is
// used by the test-vector runner to independently cross-check hkdfN against
// a from-scratch application of the Noise spec's HKDF definition.
func hmacHash(newHash func() hash.Hash, key, data []byte) []byte {
	mac := hmac.New(newHash, key)
	mac.Write(data)
	return mac.Sum(nil)
}
