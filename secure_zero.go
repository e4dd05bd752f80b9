package noise

// secureZero overwrites b with zeros. It is used to erase short-lived,
// function-local values (intermediate HKDF outputs, derived keys before they
// are handed to a CipherState, DH shared secrets, the Rekey scratch output)
// before they are released to the garbage collector. Long-lived key material
// (DHKey private halves, cipher keys, queued PSKs) is held in memguard
// buffers and wiped by Destroy instead (see DESIGN.md).
func secureZero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
