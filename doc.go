// Package noise implements the Noise Protocol Framework (revision 33).
//
// Noise is a low-level framework for building crypto protocols. Noise
// protocols support mutual and optional authentication, identity hiding,
// forward secrecy, zero round-trip encryption, and other advanced features.
// For more details, visit https://noiseprotocol.org.
//
// This package covers the framework's core: cipher-state and symmetric-state
// key derivation, the handshake state machine that interprets a declarative
// pattern of tokens, the XXfallback recovery pattern, and a post-handshake
// Transport with support for out-of-order delivery via explicit nonces. The
// concrete AEAD, DH, and hash algorithms are pluggable via CipherSuite; this
// package ships working Curve25519/ChaCha20-Poly1305/AES-GCM/SHA-2/BLAKE2
// backends but does not otherwise concern itself with I/O, framing, or
// protocol negotiation.
package noise
