package noise

import "github.com/awnumar/memguard"

// A DHKey is a keypair used for Diffie-Hellman key agreement. The private
// half lives in a memguard.LockedBuffer, mlocked and wiped by Zero rather
// than left to a plain zeroing loop, the way the reference corpus's
// ratchet package (other_examples/katzenpost-katzenpost__ratchet.go)
// guards its own long-lived root/chain/header/ratchet keys.
type DHKey struct {
	private *memguard.LockedBuffer
	Public  []byte
}

// NewDHKey wraps a freshly generated private key and its public
// counterpart. It takes ownership of priv: memguard.NewBufferFromBytes
// copies it into a locked page and wipes the source slice in place, so the
// caller must not reuse or retain priv afterward.
func NewDHKey(priv, pub []byte) DHKey {
	return DHKey{private: memguard.NewBufferFromBytes(priv), Public: pub}
}

// Private returns the private key bytes, or nil if the keypair is unset or
// has already been zeroed. The returned slice aliases the locked buffer
// directly; callers must not retain it past the call that consumes it.
func (k DHKey) Private() []byte {
	if k.private == nil || !k.private.IsAlive() {
		return nil
	}
	return k.private.Bytes()
}

// IsSet reports whether the keypair carries key material.
func (k DHKey) IsSet() bool {
	return len(k.Public) > 0
}

// Zero destroys the locked buffer backing the private key, wiping it and
// releasing the guarded page. Does not touch the public key, which is not
// sensitive. Safe to call on a zero-value DHKey or one already zeroed.
func (k *DHKey) Zero() {
	if k.private != nil {
		k.private.Destroy()
	}
}
