package noise

// A symmetricState drives key derivation and AEAD through a handshake: a
// running transcript hash h, a chaining key ck, and an inner CipherState.
// Grounded on the reference backend's symmetricState, generalized to the
// hkdfN helper built on golang.org/x/crypto/hkdf instead of a hand-rolled
// HMAC chain.
type symmetricState struct {
	cs   CipherSuite
	c    CipherState
	ck   []byte
	h    []byte
	hasK bool
}

// initializeSymmetric seeds h and ck from the protocol name: if the name is
// no longer than the hash length it is zero-padded, otherwise it is hashed.
func (s *symmetricState) initializeSymmetric(cs CipherSuite, protocolName []byte) {
	s.cs = cs
	hasher := cs.Hash()
	hashLen := hasher.Size()
	s.h = make([]byte, hashLen)
	if len(protocolName) <= hashLen {
		copy(s.h, protocolName)
	} else {
		hasher.Write(protocolName)
		s.h = hasher.Sum(s.h[:0])
	}
	s.ck = make([]byte, hashLen)
	copy(s.ck, s.h)
	s.c = CipherState{}
}

// mixHash folds data into the running transcript hash: h = HASH(h || data).
func (s *symmetricState) mixHash(data []byte) {
	hasher := s.cs.Hash()
	hasher.Write(s.h)
	hasher.Write(data)
	s.h = hasher.Sum(s.h[:0])
}

// mixKey derives a new chaining key and cipher key from a DH or PSK input:
// (ck, tempK) = HKDF(ck, input, 2), tempK truncated to 32 bytes.
func (s *symmetricState) mixKey(inputKeyMaterial []byte) error {
	out, err := hkdfN(s.cs, s.ck, inputKeyMaterial, 2)
	if err != nil {
		return err
	}
	copy(s.ck, out[0])
	var k [32]byte
	copy(k[:], out[1])
	s.c.InitializeKey(s.cs, k)
	s.hasK = true
	secureZero(out[1])
	secureZero(k[:])
	return nil
}

// mixKeyAndHash derives a new chaining key, folds the intermediate hash
// output into the transcript, and reinitializes the cipher key: (ck, tempH,
// tempK) = HKDF(ck, input, 3); mixHash(tempH); reinitialize with tempK.
func (s *symmetricState) mixKeyAndHash(inputKeyMaterial []byte) error {
	out, err := hkdfN(s.cs, s.ck, inputKeyMaterial, 3)
	if err != nil {
		return err
	}
	copy(s.ck, out[0])
	s.mixHash(out[1])
	var k [32]byte
	copy(k[:], out[2])
	s.c.InitializeKey(s.cs, k)
	s.hasK = true
	secureZero(out[1])
	secureZero(out[2])
	secureZero(k[:])
	return nil
}

// handshakeHash returns the current transcript hash. Valid at any point,
// but only meaningful for channel binding once the handshake has split.
func (s *symmetricState) handshakeHash() []byte {
	return s.h
}

// encryptAndHash encrypts plaintext under h as associated data and folds
// the result (not the plaintext) into the transcript.
func (s *symmetricState) encryptAndHash(out, plaintext []byte) ([]byte, error) {
	base := len(out)
	ciphertext, err := s.c.EncryptWithAD(out, s.h, plaintext)
	if err != nil {
		return nil, err
	}
	s.mixHash(ciphertext[base:])
	return ciphertext, nil
}

// decryptAndHash decrypts data under h as associated data and folds the
// ciphertext (not the plaintext) into the transcript, since the transcript
// commits to what was actually transmitted.
func (s *symmetricState) decryptAndHash(out, data []byte) ([]byte, error) {
	plaintext, err := s.c.DecryptWithAD(out, s.h, data)
	if err != nil {
		return nil, err
	}
	s.mixHash(data)
	return plaintext, nil
}

// split derives two independent transport cipher states from the final
// chaining key and zeros ck, which is no longer needed.
func (s *symmetricState) split() (*CipherState, *CipherState) {
	out, err := hkdfN(s.cs, s.ck, nil, 2)
	if err != nil {
		panic(err) // hkdf only fails on hash-size/length invariants, never on empty input
	}
	c1, c2 := &CipherState{}, &CipherState{}
	var k1, k2 [32]byte
	copy(k1[:], out[0])
	copy(k2[:], out[1])
	c1.InitializeKey(s.cs, k1)
	c2.InitializeKey(s.cs, k2)
	secureZero(out[0])
	secureZero(out[1])
	secureZero(k1[:])
	secureZero(k2[:])
	secureZero(s.ck)
	return c1, c2
}
