package noise

import "io"

// A Config carries everything needed to start a Noise handshake. It is
// read once by NewHandshakeState and never mutated afterward, so a Config
// value can be reused (e.g. rebuilt with a new Pattern) across fallback.
type Config struct {
	// CipherSuite is the set of cryptographic primitives used throughout
	// the handshake and the resulting transport.
	CipherSuite CipherSuite

	// Random is the source of entropy for ephemeral key generation. If
	// nil, crypto/rand.Reader is used.
	Random io.Reader

	// Pattern is the handshake pattern, with any PSK modifiers already
	// folded in via ApplyModifiers.
	Pattern HandshakePattern

	// Initiator is true if this side sends the first handshake message.
	Initiator bool

	// Prologue is data both sides must have agreed on out of band; it is
	// mixed into the transcript hash before any pre-message tokens.
	Prologue []byte

	// PresharedKeys is the ordered queue of 32-byte PSKs, consumed one per
	// PSK token encountered across the whole pattern (not just message
	// zero). Its length must equal the number of Psk modifier bits set on
	// the pattern that produced Config.Pattern.
	PresharedKeys [][]byte

	// MaxMessageLength bounds the size of any single handshake or
	// transport message. Zero means DefaultMaxMessageLength.
	MaxMessageLength int

	// StaticKeypair is this side's static keypair, required iff the
	// pattern's message tokens or pre-messages reference a local S.
	StaticKeypair DHKey

	// EphemeralKeypair, if set, seeds hs.e before any tokens are processed.
	// It is only actually read by a pre-message E token (the fallback
	// pre-message path in processPreMessages); a message-pattern E token
	// always generates a fresh ephemeral via GenerateKeypair and overwrites
	// it regardless. To pin the ephemeral used by an ordinary handshake
	// message, supply a deterministic Random instead. Primarily a test
	// hook; production callers should leave this zero.
	EphemeralKeypair DHKey

	// PeerStatic is the remote party's static public key, required iff the
	// pattern's pre-messages or message tokens reference a remote S known
	// in advance (e.g. patterns starting with "K" or "I" from this side's
	// perspective, or "N"/"X" from the other's).
	PeerStatic []byte

	// PeerEphemeral is the remote party's ephemeral public key, used only
	// by fallback() and pre-message patterns that reference a remote E.
	PeerEphemeral []byte
}

func (c Config) maxMessageLength() int {
	if c.MaxMessageLength == 0 {
		return DefaultMaxMessageLength
	}
	return c.MaxMessageLength
}
