package noise

import (
	"crypto/rand"
	"io"
	"sync"

	"github.com/awnumar/memguard"
	"github.com/go-i2p/logger"
)

// A HandshakeState drives a Noise handshake by interpreting the token
// pattern queued at construction. It is single-owner: exported entry
// points are guarded by a mutex only to catch accidental concurrent misuse,
// not to promise safe concurrent use, matching the reference backend.
type HandshakeState struct {
	ss symmetricState

	originalInitiator bool // fixed role at construction, used only to gate fallback eligibility
	initiator         bool // perceived-initiator role; mutable, swapped by fallback

	s  DHKey  // local static keypair
	e  DHKey  // local ephemeral keypair
	rs []byte // remote static public key
	re []byte // remote ephemeral public key

	pskQueue []*memguard.LockedBuffer
	isPsk    bool
	isOneWay bool

	messagePatterns [][]MessagePattern
	turnToWrite     bool
	msgIdx          int

	maxMessageLen int
	rng           io.Reader

	disposed bool
	mu       sync.Mutex

	log *logger.Entry
}

// NewHandshakeState validates cfg and builds a HandshakeState ready to
// exchange the first message. The Fallback modifier may never appear on
// cfg.Pattern here; XXfallback handshakes are entered exclusively through
// (*HandshakeState).fallback.
func NewHandshakeState(cfg Config) (*HandshakeState, error) {
	if cfg.Pattern.Name == HandshakeXXfallback.Name {
		return nil, ErrForbiddenModifier
	}
	return newHandshakeState(cfg, cfg.Initiator)
}

// newHandshakeState is the shared constructor path for NewHandshakeState
// and fallback; perceivedInitiator may differ from cfg.Initiator only when
// called from fallback, which has already swapped roles.
func newHandshakeState(cfg Config, perceivedInitiator bool) (*HandshakeState, error) {
	dhLen := cfg.CipherSuite.DHLen()

	if cfg.StaticKeypair.IsSet() && len(cfg.StaticKeypair.Public) != dhLen {
		return nil, ErrWrongKeySize
	}
	if len(cfg.PeerStatic) > 0 && len(cfg.PeerStatic) != dhLen {
		return nil, ErrWrongKeySize
	}
	for _, psk := range cfg.PresharedKeys {
		if len(psk) != 32 {
			return nil, ErrInvalidPSKSize
		}
	}

	needsLocalStatic, needsRemoteStatic := staticKeyRequirements(cfg.Pattern, perceivedInitiator)
	if needsLocalStatic && !cfg.StaticKeypair.IsSet() {
		return nil, ErrMissingStaticKey
	}
	if !needsLocalStatic && cfg.StaticKeypair.IsSet() {
		return nil, ErrSurplusStaticKey
	}
	if needsRemoteStatic && len(cfg.PeerStatic) == 0 {
		return nil, ErrMissingRemoteKey
	}

	pskCount := 0
	for _, msg := range cfg.Pattern.Messages {
		for _, tok := range msg {
			if tok == MessagePatternPSK {
				pskCount++
			}
		}
	}
	if pskCount != len(cfg.PresharedKeys) {
		return nil, ErrPSKCountMismatch
	}

	rng := cfg.Random
	if rng == nil {
		rng = rand.Reader
	}

	hs := &HandshakeState{
		originalInitiator: cfg.Initiator,
		initiator:         perceivedInitiator,
		s:                 cfg.StaticKeypair,
		e:                 cfg.EphemeralKeypair,
		isPsk:             pskCount > 0,
		isOneWay:          len(cfg.Pattern.Messages) == 1,
		messagePatterns:   cfg.Pattern.Messages,
		turnToWrite:       perceivedInitiator,
		maxMessageLen:     cfg.maxMessageLength(),
		rng:               rng,
		log:               log.WithField("pattern", cfg.Pattern.Name).WithField("role", roleName(perceivedInitiator)),
	}
	if len(cfg.PeerStatic) > 0 {
		hs.rs = append([]byte(nil), cfg.PeerStatic...)
	}
	if len(cfg.PeerEphemeral) > 0 {
		hs.re = append([]byte(nil), cfg.PeerEphemeral...)
	}
	if pskCount > 0 {
		hs.pskQueue = make([]*memguard.LockedBuffer, len(cfg.PresharedKeys))
		for i, psk := range cfg.PresharedKeys {
			hs.pskQueue[i] = memguard.NewBufferFromBytes(append([]byte(nil), psk...))
		}
	}

	hs.ss.initializeSymmetric(cfg.CipherSuite, []byte(ProtocolName(cfg.Pattern.Name, 0, cfg.CipherSuite)))
	hs.ss.mixHash(cfg.Prologue)
	hs.processPreMessages(cfg.Pattern, perceivedInitiator)

	hs.log.Debug("handshake state constructed")
	return hs, nil
}

func roleName(initiator bool) string {
	if initiator {
		return "initiator"
	}
	return "responder"
}

// staticKeyRequirements inspects a pattern's pre-messages to determine
// whether this side must supply a local static keypair and/or a
// known-in-advance remote static key. Dynamic S tokens inside Messages are
// not pre-known; they arrive on or leave the wire during the exchange, but
// still require a local static keypair if this side is ever the one
// writing them.
func staticKeyRequirements(p HandshakePattern, initiator bool) (needsLocalStatic, needsRemoteStatic bool) {
	for _, tok := range p.InitiatorPreMessages {
		if tok != MessagePatternS {
			continue
		}
		if initiator {
			needsLocalStatic = true
		} else {
			needsRemoteStatic = true
		}
	}
	for _, tok := range p.ResponderPreMessages {
		if tok != MessagePatternS {
			continue
		}
		if initiator {
			needsRemoteStatic = true
		} else {
			needsLocalStatic = true
		}
	}
	writerIsInitiator := true
	for _, msg := range p.Messages {
		if writerIsInitiator == initiator {
			for _, tok := range msg {
				if tok == MessagePatternS {
					needsLocalStatic = true
				}
			}
		}
		writerIsInitiator = !writerIsInitiator
	}
	return needsLocalStatic, needsRemoteStatic
}

// processPreMessages mixes known pre-message public keys into the
// transcript in the order the Noise spec fixes: initiator's pre-messages
// first, then the responder's.
func (hs *HandshakeState) processPreMessages(p HandshakePattern, initiator bool) {
	for _, tok := range p.InitiatorPreMessages {
		switch {
		case initiator && tok == MessagePatternS:
			hs.ss.mixHash(hs.s.Public)
		case initiator && tok == MessagePatternE:
			hs.ss.mixHash(hs.e.Public)
		case !initiator && tok == MessagePatternS:
			hs.ss.mixHash(hs.rs)
		case !initiator && tok == MessagePatternE:
			hs.ss.mixHash(hs.re)
		}
	}
	for _, tok := range p.ResponderPreMessages {
		switch {
		case !initiator && tok == MessagePatternS:
			hs.ss.mixHash(hs.s.Public)
		case !initiator && tok == MessagePatternE:
			hs.ss.mixHash(hs.e.Public)
		case initiator && tok == MessagePatternS:
			hs.ss.mixHash(hs.rs)
		case initiator && tok == MessagePatternE:
			hs.ss.mixHash(hs.re)
		}
	}
}

// WriteMessage appends the next handshake message to out, including the
// optional payload. If this call empties the pattern queue, a Transport is
// returned alongside the handshake hash. It is a Segments{payload} wrapper
// around WriteMessageSegments for callers that already have a flat buffer.
func (hs *HandshakeState) WriteMessage(out, payload []byte) ([]byte, []byte, *Transport, error) {
	return hs.WriteMessageSegments(out, Segments{payload})
}

// WriteMessageSegments is the scatter-gather form of WriteMessage: payload
// arrives as an ordered list of byte ranges instead of one flat slice,
// coalesced here since encryptAndHash requires a contiguous buffer.
func (hs *HandshakeState) WriteMessageSegments(out []byte, payload Segments) ([]byte, []byte, *Transport, error) {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if hs.disposed {
		return nil, nil, nil, ErrDisposed
	}
	if !hs.turnToWrite {
		return nil, nil, nil, ErrOutOfTurn
	}
	if hs.msgIdx >= len(hs.messagePatterns) {
		return nil, nil, nil, ErrHandshakeComplete
	}
	flatPayload, err := Coalesce(payload, hs.maxMessageLen)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(out)+hs.messageOverhead(hs.msgIdx)+len(flatPayload) > hs.maxMessageLen {
		return nil, nil, nil, ErrMessageTooLong
	}

	for _, tok := range hs.messagePatterns[hs.msgIdx] {
		out, err = hs.writeToken(out, tok)
		if err != nil {
			hs.disposed = true
			return nil, nil, nil, err
		}
	}

	out, err = hs.ss.encryptAndHash(out, flatPayload)
	if err != nil {
		hs.disposed = true
		return nil, nil, nil, err
	}

	hs.turnToWrite = false
	hs.msgIdx++
	hs.log.WithField("message_index", hs.msgIdx).Debug("wrote handshake message")

	if hs.msgIdx >= len(hs.messagePatterns) {
		transport, hash := hs.split()
		return out, hash, transport, nil
	}
	return out, nil, nil, nil
}

// messageOverhead computes the wire-byte cost of every token in message
// index idx (public keys, and any AEAD tag once a key is established) plus
// the tag on the trailing payload encryption, without mutating hs or
// performing any cryptographic work. This lets WriteMessageSegments reject
// an oversized request as a precondition, before generating an ephemeral or
// dequeuing a PSK.
func (hs *HandshakeState) messageOverhead(idx int) int {
	dhLen := hs.ss.cs.DHLen()
	hasK := hs.ss.hasK
	overhead := 0
	for _, tok := range hs.messagePatterns[idx] {
		switch tok {
		case MessagePatternE:
			overhead += dhLen
			if hs.isPsk {
				hasK = true
			}
		case MessagePatternS:
			overhead += dhLen
			if hasK {
				overhead += tagSize
			}
		case MessagePatternDHEE, MessagePatternDHES, MessagePatternDHSE, MessagePatternDHSS, MessagePatternPSK:
			hasK = true
		}
	}
	if hasK {
		overhead += tagSize
	}
	return overhead
}

func (hs *HandshakeState) writeToken(out []byte, tok MessagePattern) ([]byte, error) {
	switch tok {
	case MessagePatternE:
		e, err := hs.ss.cs.GenerateKeypair(hs.rng)
		if err != nil {
			return nil, err
		}
		hs.e = e
		out = append(out, hs.e.Public...)
		hs.ss.mixHash(hs.e.Public)
		if hs.isPsk {
			if err := hs.ss.mixKey(hs.e.Public); err != nil {
				return nil, err
			}
		}
		return out, nil
	case MessagePatternS:
		if !hs.s.IsSet() {
			return nil, ErrMissingStaticKey
		}
		return hs.ss.encryptAndHash(out, hs.s.Public)
	case MessagePatternDHEE:
		return out, hs.mixDH(hs.e.Private(), hs.re)
	case MessagePatternDHES:
		if hs.initiator {
			return out, hs.mixDH(hs.e.Private(), hs.rs)
		}
		return out, hs.mixDH(hs.s.Private(), hs.re)
	case MessagePatternDHSE:
		if hs.initiator {
			return out, hs.mixDH(hs.s.Private(), hs.re)
		}
		return out, hs.mixDH(hs.e.Private(), hs.rs)
	case MessagePatternDHSS:
		return out, hs.mixDH(hs.s.Private(), hs.rs)
	case MessagePatternPSK:
		return out, hs.consumePSK()
	}
	return out, nil
}

func (hs *HandshakeState) mixDH(privkey, pubkey []byte) error {
	shared, err := hs.ss.cs.DH(privkey, pubkey)
	if err != nil {
		return err
	}
	err = hs.ss.mixKey(shared)
	secureZero(shared)
	return err
}

func (hs *HandshakeState) consumePSK() error {
	if len(hs.pskQueue) == 0 {
		return ErrMissingPSK
	}
	pskBuf := hs.pskQueue[0]
	hs.pskQueue = hs.pskQueue[1:]
	err := hs.ss.mixKeyAndHash(pskBuf.Bytes())
	pskBuf.Destroy()
	return err
}

// ReadMessage decrypts the next expected handshake message from wire,
// appending the recovered payload to out. It mirrors WriteMessage
// precisely. On any failure it rolls the transcript back to its pre-call
// checkpoint and marks the handshake unusable: further WriteMessage or
// ReadMessage calls return ErrDisposed, while Fallback remains available.
// It is a Segments{wire} wrapper around ReadMessageSegments
// for callers that already have a flat buffer.
func (hs *HandshakeState) ReadMessage(out, wire []byte) ([]byte, []byte, *Transport, error) {
	return hs.ReadMessageSegments(out, Segments{wire})
}

// ReadMessageSegments is the scatter-gather form of ReadMessage: wire
// arrives as an ordered list of byte ranges instead of one flat slice,
// coalesced here since token parsing and decryptAndHash require a
// contiguous buffer.
func (hs *HandshakeState) ReadMessageSegments(out []byte, wire Segments) ([]byte, []byte, *Transport, error) {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if hs.disposed {
		return nil, nil, nil, ErrDisposed
	}
	if hs.turnToWrite {
		return nil, nil, nil, ErrOutOfTurn
	}
	if hs.msgIdx >= len(hs.messagePatterns) {
		return nil, nil, nil, ErrHandshakeComplete
	}
	flatWire, err := Coalesce(wire, hs.maxMessageLen)
	if err != nil {
		return nil, nil, nil, err
	}

	checkpointCK := append([]byte(nil), hs.ss.ck...)
	checkpointH := append([]byte(nil), hs.ss.h...)
	rsBefore := hs.rs

	remaining, err := hs.readTokens(flatWire)
	if err != nil {
		hs.ss.ck, hs.ss.h = checkpointCK, checkpointH
		hs.rs = rsBefore
		hs.disposed = true
		hs.log.Debug("handshake message token processing failed")
		return nil, nil, nil, err
	}

	out, err = hs.ss.decryptAndHash(out, remaining)
	if err != nil {
		hs.ss.ck, hs.ss.h = checkpointCK, checkpointH
		hs.rs = rsBefore
		hs.disposed = true
		hs.log.Debug("handshake message decryption failed")
		return nil, nil, nil, err
	}

	hs.turnToWrite = true
	hs.msgIdx++
	hs.log.WithField("message_index", hs.msgIdx).Debug("read handshake message")

	if hs.msgIdx >= len(hs.messagePatterns) {
		transport, hash := hs.split()
		return out, hash, transport, nil
	}
	return out, nil, nil, nil
}

func (hs *HandshakeState) readTokens(wire []byte) ([]byte, error) {
	dhLen := hs.ss.cs.DHLen()
	for _, tok := range hs.messagePatterns[hs.msgIdx] {
		switch tok {
		case MessagePatternE:
			if len(wire) < dhLen {
				return nil, ErrShortMessage
			}
			hs.re = append(hs.re[:0], wire[:dhLen]...)
			wire = wire[dhLen:]
			hs.ss.mixHash(hs.re)
			if hs.isPsk {
				if err := hs.ss.mixKey(hs.re); err != nil {
					return nil, err
				}
			}
		case MessagePatternS:
			n := dhLen
			if hs.ss.hasK {
				n += tagSize
			}
			if len(wire) < n {
				return nil, ErrShortMessage
			}
			if len(hs.rs) > 0 {
				return nil, ErrSurplusStaticKey
			}
			rs, err := hs.ss.decryptAndHash(nil, wire[:n])
			if err != nil {
				return nil, err
			}
			hs.rs = rs
			wire = wire[n:]
		case MessagePatternDHEE:
			if err := hs.mixDH(hs.e.Private(), hs.re); err != nil {
				return nil, err
			}
		case MessagePatternDHES:
			var err error
			if hs.initiator {
				err = hs.mixDH(hs.e.Private(), hs.rs)
			} else {
				err = hs.mixDH(hs.s.Private(), hs.re)
			}
			if err != nil {
				return nil, err
			}
		case MessagePatternDHSE:
			var err error
			if hs.initiator {
				err = hs.mixDH(hs.s.Private(), hs.re)
			} else {
				err = hs.mixDH(hs.e.Private(), hs.rs)
			}
			if err != nil {
				return nil, err
			}
		case MessagePatternDHSS:
			if err := hs.mixDH(hs.s.Private(), hs.rs); err != nil {
				return nil, err
			}
		case MessagePatternPSK:
			if err := hs.consumePSK(); err != nil {
				return nil, err
			}
		}
	}
	return wire, nil
}

// split finalizes the handshake into a Transport, assigning cipher states
// by perceived-initiator role: the initiator's send cipher is c1 (the
// responder's recv cipher), and vice versa. One-way patterns leave the
// unused direction nil.
func (hs *HandshakeState) split() (*Transport, []byte) {
	c1, c2 := hs.ss.split()
	hash := append([]byte(nil), hs.ss.h...)

	var send, recv *CipherState
	if hs.initiator {
		send, recv = c1, c2
	} else {
		send, recv = c2, c1
	}
	if hs.isOneWay {
		if hs.initiator {
			recv = nil
		} else {
			send = nil
		}
	}

	hs.log.Debug("handshake complete, splitting into transport")
	hs.zeroSensitive()
	return &Transport{initiator: hs.initiator, send: send, recv: recv, oneWay: hs.isOneWay}, hash
}

// zeroSensitive erases the handshake's key material. Called automatically
// on split and by Dispose.
func (hs *HandshakeState) zeroSensitive() {
	hs.s.Zero()
	hs.e.Zero()
	for _, psk := range hs.pskQueue {
		psk.Destroy()
	}
	hs.pskQueue = nil
}

// Dispose erases sensitive key material and marks the handshake unusable.
// Safe to call multiple times, and safe to call after split (which already
// zeroes local key material).
func (hs *HandshakeState) Dispose() {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.zeroSensitive()
	hs.disposed = true
}

// PeerStatic returns the remote party's static public key, if known.
func (hs *HandshakeState) PeerStatic() []byte {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.rs
}

// MessageIndex returns the number of messages processed so far.
func (hs *HandshakeState) MessageIndex() int {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.msgIdx
}
