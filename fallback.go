package noise

// fallback transitions a HandshakeState into the XXfallback recovery
// pattern after an IK-style attempt failed because the initiator held a
// stale or incorrect responder static key. Both the original initiator and
// the original responder call this on their own (independent) handshake
// object once the failure is observed, passing the same new prologue.
// Eligibility is asymmetric: the original initiator successfully completed
// exactly one message (msgIdx == 1); the original responder's read of that
// same message failed partway through, so it never advances msgIdx, but it
// already captured the initiator's ephemeral (mixed into the transcript
// before the failing token) and that capture is what fallback requires.
//
// On success roles swap: the original responder becomes the initiator of
// the new XX-style exchange, retaining the peer's ephemeral it already
// captured; the original initiator becomes the responder, retaining its
// own ephemeral keypair. XX message pattern 0 (bare E) is replaced by this
// pre-known ephemeral, so only the counterparts of XX message patterns 1
// and 2 remain queued, with ES and SE exchanged because the roles swapped.
func (hs *HandshakeState) fallback(newPrologue []byte, cfg Config, perceivedInitiator bool) (*HandshakeState, error) {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	eligible := (hs.originalInitiator && hs.msgIdx == 1) ||
		(!hs.originalInitiator && hs.msgIdx == 0 && len(hs.re) > 0)
	if !eligible {
		return nil, ErrFallbackNotEligible
	}

	next := cfg
	next.Pattern = HandshakeXXfallback
	next.Initiator = perceivedInitiator
	next.Prologue = newPrologue
	next.PresharedKeys = nil
	next.PeerStatic = nil
	if perceivedInitiator {
		// Original responder: already holds the peer's ephemeral public key.
		next.PeerEphemeral = hs.re
	} else {
		// Original initiator: still holds its own ephemeral keypair. Deep-copy
		// it into a fresh LockedBuffer so hs.zeroSensitive() below destroys
		// only hs's own copy, not the one handed off to fb.
		next.EphemeralKeypair = NewDHKey(append([]byte(nil), hs.e.Private()...), append([]byte(nil), hs.e.Public...))
	}

	fb, err := newHandshakeState(regenerateStaticKeypair(next), perceivedInitiator)
	if err != nil {
		return nil, err
	}

	hs.zeroSensitive()
	hs.disposed = true
	hs.log.Debug("handshake fell back to XXfallback")
	return fb, nil
}

// regenerateStaticKeypair derives a fresh local static keypair before
// entering XXfallback, so a rejected or stale static identity from the
// failed IK attempt is never carried forward.
func regenerateStaticKeypair(cfg Config) Config {
	if !cfg.StaticKeypair.IsSet() {
		return cfg
	}
	rng := cfg.Random
	if rng == nil {
		rng = randReader
	}
	kp, err := cfg.CipherSuite.GenerateKeypair(rng)
	if err != nil {
		return cfg
	}
	cfg.StaticKeypair.Zero()
	cfg.StaticKeypair = kp
	return cfg
}

// Fallback is the exported entry point for the XXfallback recovery
// transition. cfg carries the same CipherSuite as the failed attempt and,
// if this side authenticates with a static key, StaticKeypair set to
// trigger regeneration; PeerStatic and PresharedKeys from the failed
// attempt are always discarded, since XXfallback never carries pre-known
// static keys or PSKs.
func (hs *HandshakeState) Fallback(newPrologue []byte, cfg Config) (*HandshakeState, error) {
	return hs.fallback(newPrologue, cfg, !hs.originalInitiator)
}
