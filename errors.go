package noise

import "github.com/samber/oops"

// Construction errors. Returned by NewHandshakeState; the handshake object
// is not created.
var (
	ErrWrongKeySize         = oops.Errorf("noise: key has wrong size for the configured DH function")
	ErrMissingStaticKey     = oops.Errorf("noise: pattern requires a local static keypair that was not provided")
	ErrMissingRemoteKey     = oops.Errorf("noise: pattern requires a remote static key that was not provided")
	ErrSurplusStaticKey     = oops.Errorf("noise: local static keypair provided but pattern does not use one")
	ErrForbiddenModifier    = oops.Errorf("noise: Fallback modifier may only be set by fallback()")
	ErrPSKCountMismatch     = oops.Errorf("noise: number of preshared keys does not match modifier bits")
	ErrInvalidPSKSize       = oops.Errorf("noise: preshared key must be exactly 32 bytes")
	ErrUnrecognizedModifier = oops.Errorf("noise: unrecognized modifier suffix in pattern token")
	ErrModifierOutOfRange   = oops.Errorf("noise: psk modifier has no corresponding message pattern")
)

// Protocol misuse errors. State is unchanged on precondition failure.
var (
	ErrOutOfTurn           = oops.Errorf("noise: WriteMessage/ReadMessage called out of turn")
	ErrHandshakeComplete   = oops.Errorf("noise: handshake already completed")
	ErrMessageTooLong      = oops.Errorf("noise: message exceeds MaxMessageLength")
	ErrBufferTooSmall      = oops.Errorf("noise: output buffer too small")
	ErrFallbackNotEligible = oops.Errorf("noise: fallback() called at the wrong moment")
	ErrNotOneWayDirection  = oops.Errorf("noise: operation not allowed on this one-way transport direction")
)

// Cryptographic failure errors. Terminal for the handshake or transport;
// callers must abandon the object.
var (
	ErrMaxNonce     = oops.Errorf("noise: cipher state has reached the maximum nonce, a new handshake must be performed")
	ErrShortMessage = oops.Errorf("noise: message is shorter than the expected token overhead")
	ErrOpenFailed   = oops.Errorf("noise: AEAD authentication failed")
	ErrDHFailed     = oops.Errorf("noise: Diffie-Hellman operation failed")
	ErrMissingPSK   = oops.Errorf("noise: PSK token encountered but preshared key queue is empty")
)

// Disposed-access errors.
var (
	ErrDisposed = oops.Errorf("noise: operation attempted on a disposed object")
)
