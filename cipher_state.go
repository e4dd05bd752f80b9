package noise

import (
	"math"

	"github.com/awnumar/memguard"
)

// A CipherState provides one-shot AEAD encryption keyed with a 64-bit
// counter nonce. Before a key is set, EncryptWithAD/DecryptWithAD pass
// plaintext through unchanged and ignore the associated data, matching the
// Noise spec's handling of the pre-key phase of a handshake. The key
// itself lives in a memguard.LockedBuffer rather than a plain array,
// grounded on the same long-lived-key guarding the reference corpus's
// ratchet package applies to its own chain and header keys.
type CipherState struct {
	cs      CipherSuite
	c       Cipher
	kbuf    *memguard.LockedBuffer
	hasK    bool
	n       uint64
	invalid bool
}

// InitializeKey sets the cipher key and resets the nonce to zero. The
// cipher backend is constructed from k before k is handed to memguard,
// since NewBufferFromBytes wipes its source slice in place.
func (s *CipherState) InitializeKey(cs CipherSuite, k [32]byte) {
	s.cs = cs
	s.c = cs.Cipher(k)
	if s.kbuf != nil {
		s.kbuf.Destroy()
	}
	s.kbuf = memguard.NewBufferFromBytes(k[:])
	s.hasK = true
	s.n = 0
}

// HasKey reports whether a key has been set.
func (s *CipherState) HasKey() bool {
	return s.hasK
}

// SetNonce overwrites the internal counter. Used by rekey and by tests that
// need to reproduce a fixed transcript.
func (s *CipherState) SetNonce(n uint64) {
	s.n = n
}

// Nonce returns the current counter value.
func (s *CipherState) Nonce() uint64 {
	return s.n
}

// EncryptWithAD encrypts plaintext under the current key and associated
// data, appends the result to out, and advances the counter. If no key is
// set, plaintext is appended to out unchanged and ad is ignored.
func (s *CipherState) EncryptWithAD(out, ad, plaintext []byte) ([]byte, error) {
	if s.invalid {
		return nil, ErrDisposed
	}
	if !s.hasK {
		return append(out, plaintext...), nil
	}
	if s.n > MaxNonce {
		log.WithField("nonce", s.n).Debug("cipher state exhausted maximum nonce")
		return nil, ErrMaxNonce
	}
	out = s.c.Encrypt(out, s.n, ad, plaintext)
	s.n++
	return out, nil
}

// DecryptWithAD authenticates and decrypts ciphertext under the current key
// and associated data, appends the plaintext to out, and advances the
// counter. On tag failure the counter is not advanced. If no key is set,
// ciphertext is appended to out unchanged.
func (s *CipherState) DecryptWithAD(out, ad, ciphertext []byte) ([]byte, error) {
	if s.invalid {
		return nil, ErrDisposed
	}
	if !s.hasK {
		return append(out, ciphertext...), nil
	}
	if s.n > MaxNonce {
		log.WithField("nonce", s.n).Debug("cipher state exhausted maximum nonce")
		return nil, ErrMaxNonce
	}
	plaintext, err := s.c.Decrypt(out, s.n, ad, ciphertext)
	if err != nil {
		log.Debug("aead authentication failed")
		return nil, err
	}
	s.n++
	return plaintext, nil
}

// ExplicitEncrypt is the out-of-order producer variant: it behaves exactly
// like EncryptWithAD but also reports the nonce used, so a caller can
// transmit it alongside the ciphertext.
func (s *CipherState) ExplicitEncrypt(out, ad, plaintext []byte) (ciphertext []byte, nonceUsed uint64, err error) {
	nonceUsed = s.n
	ciphertext, err = s.EncryptWithAD(out, ad, plaintext)
	return ciphertext, nonceUsed, err
}

// ExplicitDecrypt is the out-of-order consumer variant: it decrypts under a
// caller-supplied nonce without reading or advancing the internal counter,
// so messages may be consumed in any order. Callers are responsible for
// rejecting or bounding replayed nonces.
func (s *CipherState) ExplicitDecrypt(out []byte, nonce uint64, ad, ciphertext []byte) ([]byte, error) {
	if s.invalid {
		return nil, ErrDisposed
	}
	if !s.hasK {
		return append(out, ciphertext...), nil
	}
	plaintext, err := s.c.Decrypt(out, nonce, ad, ciphertext)
	if err != nil {
		log.WithField("nonce", nonce).Debug("aead authentication failed on out-of-order read")
		return nil, err
	}
	return plaintext, nil
}

// Rekey advances the key material per the Noise spec's rekey extension:
// k = ENCRYPT(k, maxnonce, zerolen, zeros), truncated to 32 bytes. The
// nonce n is left untouched (callers that want a fresh transport epoch
// call SetNonce(0) themselves).
func (s *CipherState) Rekey() {
	var zeros [32]byte
	out := s.c.Encrypt(nil, math.MaxUint64, []byte{}, zeros[:])
	var newK [32]byte
	copy(newK[:], out[:32])
	s.c = s.cs.Cipher(newK)
	if s.kbuf != nil {
		s.kbuf.Destroy()
	}
	s.kbuf = memguard.NewBufferFromBytes(newK[:])
	secureZero(out)
}

// Dispose destroys the locked buffer backing the cipher key and marks the
// state unusable.
func (s *CipherState) Dispose() {
	if s.kbuf != nil {
		s.kbuf.Destroy()
	}
	s.hasK = false
	s.invalid = true
}
