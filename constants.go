package noise

import "math"

// MaxNonce is the maximum value of n that is allowed for the in-order
// counter nonce. 2^64-1 is reserved (used by Rekey), so Encrypt/Decrypt
// return ErrMaxNonce once n would reach it.
const MaxNonce = uint64(math.MaxUint64) - 1

// DefaultMaxMessageLength is the Noise spec's fixed message-size limit. It
// is the default used when Config.MaxMessageLength is zero; callers may
// override it per protocol instance at construction.
const DefaultMaxMessageLength = 65535

// tagSize is the AEAD authentication tag length, fixed at 16 bytes for both
// built-in cipher backends.
const tagSize = 16

// MessagePattern identifies a single token within a handshake message
// pattern.
type MessagePattern int

const (
	MessagePatternE MessagePattern = iota
	MessagePatternS
	MessagePatternDHEE
	MessagePatternDHES
	MessagePatternDHSE
	MessagePatternDHSS
	MessagePatternPSK
)

// Modifier is a bitset of handshake-pattern modifiers applied on top of a
// base pattern.
type Modifier uint8

const (
	ModifierFallback Modifier = 1 << iota
	ModifierPsk0
	ModifierPsk1
	ModifierPsk2
	ModifierPsk3
)

// pskBits lists the Psk modifiers in ascending placement order, paired with
// the suffix each one contributes to a protocol name (Psk0 prepends to
// message 0; Psk(i>0) appends to message i-1).
var pskBits = []struct {
	bit  Modifier
	name string
}{
	{ModifierPsk0, "psk0"},
	{ModifierPsk1, "psk1"},
	{ModifierPsk2, "psk2"},
	{ModifierPsk3, "psk3"},
}

// String renders the modifier bitset as it appears in a canonical protocol
// name, e.g. "psk0psk2" or "fallback".
func (m Modifier) String() string {
	s := ""
	if m&ModifierFallback != 0 {
		s += "fallback"
	}
	for _, pb := range pskBits {
		if m&pb.bit != 0 {
			s += pb.name
		}
	}
	return s
}

// pskCount returns the number of Psk bits set, i.e. the number of preshared
// keys the caller must supply.
func (m Modifier) pskCount() int {
	n := 0
	for _, pb := range pskBits {
		if m&pb.bit != 0 {
			n++
		}
	}
	return n
}
