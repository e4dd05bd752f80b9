package noise

import (
	"hash"
	"io"
)

// A DHFunc implements Diffie-Hellman key agreement. Implementations are
// treated as pluggable capabilities with a fixed contract; this package
// ships Curve25519 and does not implement X448 (see DESIGN.md).
type DHFunc interface {
	// GenerateKeypair generates a new keypair using random as a source of
	// entropy.
	GenerateKeypair(random io.Reader) (DHKey, error)

	// DH performs a Diffie-Hellman calculation between the provided private
	// and public keys and returns the shared secret.
	DH(privkey, pubkey []byte) ([]byte, error)

	// DHLen is the number of bytes returned by DH and expected of a public
	// key (32 for Curve25519, 56 for X448).
	DHLen() int

	// DHName is the name of the DH function as it appears in a Noise
	// protocol name (e.g. "25519").
	DHName() string
}

// A HashFunc implements a cryptographic hash function. The HMAC-based HKDF
// construction the Noise spec builds on top of it lives in hkdfN.
type HashFunc interface {
	// Hash returns a fresh hash.Hash state.
	Hash() hash.Hash

	// HashName is the name of the hash function as it appears in a Noise
	// protocol name (e.g. "SHA256").
	HashName() string
}

// A CipherFunc implements an AEAD symmetric cipher.
type CipherFunc interface {
	// Cipher initializes the algorithm with the provided key and returns a
	// ready-to-use Cipher.
	Cipher(k [32]byte) Cipher

	// CipherName is the name of the cipher as it appears in a Noise
	// protocol name (e.g. "ChaChaPoly").
	CipherName() string
}

// A Cipher is an AEAD cipher that has been initialized with a key. The
// nonce encoding is cipher-specific and normative: ChaCha20-Poly1305 uses
// 4 zero bytes followed by a little-endian 64-bit counter; AES-GCM uses 4
// zero bytes followed by a big-endian 64-bit counter.
type Cipher interface {
	// Encrypt encrypts plaintext with nonce n and appends the ciphertext
	// and authentication tag (computed over the ciphertext and ad) to out.
	Encrypt(out []byte, n uint64, ad, plaintext []byte) []byte

	// Decrypt authenticates ad and ciphertext under nonce n, decrypts, and
	// appends the plaintext to out.
	Decrypt(out []byte, n uint64, ad, ciphertext []byte) ([]byte, error)
}

// A CipherSuite bundles the three orthogonal capabilities a Noise protocol
// instance is parameterized over. Construct one with NewCipherSuite.
type CipherSuite interface {
	DHFunc
	CipherFunc
	HashFunc
	// Name returns the protocol-name fragment "<dh>_<cipher>_<hash>".
	Name() []byte
}
