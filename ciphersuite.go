package noise

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"hash"
	"io"

	"github.com/samber/oops"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
)

// cipherSuite is the concrete CipherSuite implementation returned by
// NewCipherSuite, bundling one backend per capability.
type cipherSuite struct {
	DHFunc
	CipherFunc
	HashFunc
	name []byte
}

func (c *cipherSuite) Name() []byte { return c.name }

// NewCipherSuite composes a DHFunc, CipherFunc and HashFunc into a
// CipherSuite, precomputing the "<dh>_<cipher>_<hash>" name fragment used by
// ProtocolName.
func NewCipherSuite(dh DHFunc, ci CipherFunc, h HashFunc) CipherSuite {
	name := dh.DHName() + "_" + ci.CipherName() + "_" + h.HashName()
	return &cipherSuite{DHFunc: dh, CipherFunc: ci, HashFunc: h, name: []byte(name)}
}

// DH25519 is the Curve25519 Diffie-Hellman function, clamped per RFC 7748.
var DH25519 DHFunc = dh25519{}

type dh25519 struct{}

func (dh25519) GenerateKeypair(random io.Reader) (DHKey, error) {
	var private [32]byte
	if _, err := io.ReadFull(random, private[:]); err != nil {
		return DHKey{}, err
	}
	public, err := curve25519.X25519(private[:], curve25519.Basepoint)
	if err != nil {
		return DHKey{}, oops.Errorf("%w: %v", ErrDHFailed, err)
	}
	return NewDHKey(private[:], public), nil
}

func (dh25519) DH(privkey, pubkey []byte) ([]byte, error) {
	if len(privkey) != 32 || len(pubkey) != 32 {
		return nil, ErrWrongKeySize
	}
	out, err := curve25519.X25519(privkey, pubkey)
	if err != nil {
		return nil, oops.Errorf("%w: %v", ErrDHFailed, err)
	}
	return out, nil
}

func (dh25519) DHLen() int     { return 32 }
func (dh25519) DHName() string { return "25519" }

// DH448 is not implemented: no vetted X448 implementation exists in the
// reference dependency corpus (see DESIGN.md). Calling any method panics
// with a descriptive message rather than silently behaving like Curve25519.
var DH448 DHFunc = dh448{}

type dh448 struct{}

func (dh448) GenerateKeypair(io.Reader) (DHKey, error) {
	panic("noise: DH448 is not implemented")
}
func (dh448) DH(_, _ []byte) ([]byte, error) { panic("noise: DH448 is not implemented") }
func (dh448) DHLen() int                     { return 56 }
func (dh448) DHName() string                 { return "448" }

// CipherChaChaPoly is the ChaCha20-Poly1305 AEAD cipher. Its nonce is 4
// zero bytes followed by a little-endian 64-bit counter, per the Noise
// spec's normative encoding for this cipher.
var CipherChaChaPoly CipherFunc = cipherChaChaPoly{}

type cipherChaChaPoly struct{}

func (cipherChaChaPoly) CipherName() string { return "ChaChaPoly" }

func (cipherChaChaPoly) Cipher(k [32]byte) Cipher {
	aead, err := chacha20poly1305.New(k[:])
	if err != nil {
		panic(err) // key is always exactly 32 bytes
	}
	return &aeadCipher{aead: aead, encodeNonce: encodeNonceLE}
}

// CipherAESGCM is the AES-256-GCM AEAD cipher. Its nonce is 4 zero bytes
// followed by a big-endian 64-bit counter, per the Noise spec's normative
// encoding for this cipher (the opposite byte order from ChaChaPoly).
var CipherAESGCM CipherFunc = cipherAESGCM{}

type cipherAESGCM struct{}

func (cipherAESGCM) CipherName() string { return "AESGCM" }

func (cipherAESGCM) Cipher(k [32]byte) Cipher {
	block, err := aes.NewCipher(k[:])
	if err != nil {
		panic(err) // key is always exactly 32 bytes
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		panic(err)
	}
	return &aeadCipher{aead: aead, encodeNonce: encodeNonceBE}
}

// aeadCipher adapts a stdlib/x-crypto cipher.AEAD to the Cipher interface,
// parameterized over nonce byte order so the two backends share one
// Encrypt/Decrypt implementation.
type aeadCipher struct {
	aead        cipher.AEAD
	encodeNonce func(n uint64) []byte
}

func (c *aeadCipher) Encrypt(out []byte, n uint64, ad, plaintext []byte) []byte {
	return c.aead.Seal(out, c.encodeNonce(n), plaintext, ad)
}

func (c *aeadCipher) Decrypt(out []byte, n uint64, ad, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < tagSize {
		return nil, ErrShortMessage
	}
	plaintext, err := c.aead.Open(out, c.encodeNonce(n), ciphertext, ad)
	if err != nil {
		return nil, oops.Errorf("%w: %v", ErrOpenFailed, err)
	}
	return plaintext, nil
}

func encodeNonceLE(n uint64) []byte {
	var nonce [12]byte
	binary.LittleEndian.PutUint64(nonce[4:], n)
	return nonce[:]
}

func encodeNonceBE(n uint64) []byte {
	var nonce [12]byte
	binary.BigEndian.PutUint64(nonce[4:], n)
	return nonce[:]
}

// HashSHA256 is the SHA-256 hash function.
var HashSHA256 HashFunc = hashSHA256{}

type hashSHA256 struct{}

func (hashSHA256) Hash() hash.Hash  { return sha256.New() }
func (hashSHA256) HashName() string { return "SHA256" }

// HashSHA512 is the SHA-512 hash function.
var HashSHA512 HashFunc = hashSHA512{}

type hashSHA512 struct{}

func (hashSHA512) Hash() hash.Hash  { return sha512.New() }
func (hashSHA512) HashName() string { return "SHA512" }

// HashBLAKE2s is the BLAKE2s-256 hash function.
var HashBLAKE2s HashFunc = hashBLAKE2s{}

type hashBLAKE2s struct{}

func (hashBLAKE2s) Hash() hash.Hash {
	h, err := blake2s.New256(nil)
	if err != nil {
		panic(err)
	}
	return h
}
func (hashBLAKE2s) HashName() string { return "BLAKE2s" }

// HashBLAKE2b is the BLAKE2b-512 hash function.
var HashBLAKE2b HashFunc = hashBLAKE2b{}

type hashBLAKE2b struct{}

func (hashBLAKE2b) Hash() hash.Hash {
	h, err := blake2b.New512(nil)
	if err != nil {
		panic(err)
	}
	return h
}
func (hashBLAKE2b) HashName() string { return "BLAKE2b" }

// randReader is the source of entropy used by GenerateKeypair when callers
// do not supply their own, matching the reference corpus's use of
// crypto/rand directly rather than a seeded PRNG.
var randReader io.Reader = rand.Reader
