package noise

// A Transport is the post-handshake secure channel produced by
// (*HandshakeState).WriteMessage/ReadMessage once the pattern queue is
// empty. Grounded on the reference backend's escape-hatch design for
// CipherState (a Transport is just the two split CipherStates plus
// direction bookkeeping), generalized here with an explicit out-of-order
// API so the internal counter never has to be exposed to callers directly.
type Transport struct {
	initiator bool
	send      *CipherState
	recv      *CipherState
	oneWay    bool
	disposed  bool
}

// IsOneWay reports whether this transport supports only a single
// direction, per the pattern it was split from.
func (t *Transport) IsOneWay() bool {
	return t.oneWay
}

// Write encrypts plaintext in order using the send cipher, appending the
// result to out. Fails if this side has no send direction or the message
// (plaintext plus the 16-byte tag) exceeds maxMessageLen. It is a
// Segments{plaintext} wrapper around
// WriteSegments for callers that already have a flat buffer.
func (t *Transport) Write(out, plaintext []byte, maxMessageLen int) ([]byte, error) {
	return t.WriteSegments(out, Segments{plaintext}, maxMessageLen)
}

// WriteSegments is the scatter-gather form of Write: plaintext arrives as
// an ordered list of byte ranges instead of one flat slice, coalesced here
// since the AEAD backend requires a contiguous buffer.
func (t *Transport) WriteSegments(out []byte, plaintext Segments, maxMessageLen int) ([]byte, error) {
	if t.disposed {
		return nil, ErrDisposed
	}
	if t.send == nil {
		return nil, ErrNotOneWayDirection
	}
	flat, err := Coalesce(plaintext, maxMessageLen-tagSize)
	if err != nil {
		return nil, err
	}
	return t.send.EncryptWithAD(out, nil, flat)
}

// Read decrypts ciphertext in order using the recv cipher, appending the
// plaintext to out. Fails if this side has no recv direction. It is a
// Segments{ciphertext} wrapper around ReadSegments for callers that
// already have a flat buffer.
func (t *Transport) Read(out, ciphertext []byte) ([]byte, error) {
	return t.ReadSegments(out, Segments{ciphertext})
}

// ReadSegments is the scatter-gather form of Read.
func (t *Transport) ReadSegments(out []byte, ciphertext Segments) ([]byte, error) {
	if t.disposed {
		return nil, ErrDisposed
	}
	if t.recv == nil {
		return nil, ErrNotOneWayDirection
	}
	flat, err := Coalesce(ciphertext, ciphertext.Len())
	if err != nil {
		return nil, err
	}
	return t.recv.DecryptWithAD(out, nil, flat)
}

// WriteOutOfOrder encrypts plaintext using the send cipher's current
// counter, reports the nonce it used, and still advances the counter, so
// out-of-order mode and in-order mode may be interleaved by the same
// producer if desired. It is a Segments{plaintext} wrapper around
// WriteOutOfOrderSegments for callers that already have a flat buffer.
func (t *Transport) WriteOutOfOrder(out, plaintext []byte, maxMessageLen int) (ciphertext []byte, nonceUsed uint64, err error) {
	return t.WriteOutOfOrderSegments(out, Segments{plaintext}, maxMessageLen)
}

// WriteOutOfOrderSegments is the scatter-gather form of WriteOutOfOrder.
func (t *Transport) WriteOutOfOrderSegments(out []byte, plaintext Segments, maxMessageLen int) (ciphertext []byte, nonceUsed uint64, err error) {
	if t.disposed {
		return nil, 0, ErrDisposed
	}
	if t.send == nil {
		return nil, 0, ErrNotOneWayDirection
	}
	flat, err := Coalesce(plaintext, maxMessageLen)
	if err != nil {
		return nil, 0, err
	}
	return t.send.ExplicitEncrypt(out, nil, flat)
}

// ReadOutOfOrder decrypts ciphertext under the caller-supplied nonce
// without touching the recv cipher's internal counter, so messages may be
// consumed in any order or replayed. The caller owns replay-window policy.
// It is a Segments{ciphertext} wrapper around ReadOutOfOrderSegments for
// callers that already have a flat buffer.
func (t *Transport) ReadOutOfOrder(out []byte, nonce uint64, ciphertext []byte) ([]byte, error) {
	return t.ReadOutOfOrderSegments(out, nonce, Segments{ciphertext})
}

// ReadOutOfOrderSegments is the scatter-gather form of ReadOutOfOrder.
func (t *Transport) ReadOutOfOrderSegments(out []byte, nonce uint64, ciphertext Segments) ([]byte, error) {
	if t.disposed {
		return nil, ErrDisposed
	}
	if t.recv == nil {
		return nil, ErrNotOneWayDirection
	}
	flat, err := Coalesce(ciphertext, ciphertext.Len())
	if err != nil {
		return nil, err
	}
	return t.recv.ExplicitDecrypt(out, nonce, nil, flat)
}

// RekeySend advances the send cipher's key per the Noise spec's rekey
// extension. Fails if this side has no send direction.
func (t *Transport) RekeySend() error {
	if t.send == nil {
		return ErrNotOneWayDirection
	}
	t.send.Rekey()
	return nil
}

// RekeyRecv advances the recv cipher's key per the Noise spec's rekey
// extension. Fails if this side has no recv direction.
func (t *Transport) RekeyRecv() error {
	if t.recv == nil {
		return ErrNotOneWayDirection
	}
	t.recv.Rekey()
	return nil
}

// SendNonce returns the send cipher's current counter, useful for deciding
// when to proactively rekey before MaxNonce is reached.
func (t *Transport) SendNonce() uint64 {
	if t.send == nil {
		return 0
	}
	return t.send.Nonce()
}

// RecvNonce returns the recv cipher's current counter (in-order mode only;
// unaffected by out-of-order reads).
func (t *Transport) RecvNonce() uint64 {
	if t.recv == nil {
		return 0
	}
	return t.recv.Nonce()
}

// Dispose zeros both cipher states' keys and marks the transport unusable.
func (t *Transport) Dispose() {
	if t.send != nil {
		t.send.Dispose()
	}
	if t.recv != nil {
		t.recv.Dispose()
	}
	t.disposed = true
}
