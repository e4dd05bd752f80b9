package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipherState_NoKeyPassthrough(t *testing.T) {
	var cs CipherState
	assert.False(t, cs.HasKey())

	out, err := cs.EncryptWithAD(nil, []byte("ad"), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), out)

	out, err = cs.DecryptWithAD(nil, []byte("ad"), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), out)
}

func TestCipherState_EncryptDecryptRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name   string
		cipher CipherFunc
	}{
		{"ChaChaPoly", CipherChaChaPoly},
		{"AESGCM", CipherAESGCM},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cs := NewCipherSuite(DH25519, tc.cipher, HashSHA256)
			var key [32]byte
			for i := range key {
				key[i] = byte(i)
			}
			var sender, receiver CipherState
			sender.InitializeKey(cs, key)
			receiver.InitializeKey(cs, key)

			ciphertext, err := sender.EncryptWithAD(nil, []byte("ad"), []byte("plaintext"))
			require.NoError(t, err)

			plaintext, err := receiver.DecryptWithAD(nil, []byte("ad"), ciphertext)
			require.NoError(t, err)
			assert.Equal(t, []byte("plaintext"), plaintext)
			assert.Equal(t, uint64(1), sender.Nonce())
			assert.Equal(t, uint64(1), receiver.Nonce())
		})
	}
}

func TestCipherState_TagTamperDetected(t *testing.T) {
	cs := NewCipherSuite(DH25519, CipherChaChaPoly, HashSHA256)
	var key [32]byte
	var sender, receiver CipherState
	sender.InitializeKey(cs, key)
	receiver.InitializeKey(cs, key)

	ciphertext, err := sender.EncryptWithAD(nil, nil, []byte("plaintext"))
	require.NoError(t, err)
	ciphertext[len(ciphertext)-1] ^= 0x01

	_, err = receiver.DecryptWithAD(nil, nil, ciphertext)
	assert.ErrorIs(t, err, ErrOpenFailed)
	assert.Equal(t, uint64(0), receiver.Nonce(), "counter must not advance on failure")
}

func TestCipherState_ExplicitOutOfOrder(t *testing.T) {
	cs := NewCipherSuite(DH25519, CipherChaChaPoly, HashSHA256)
	var key [32]byte
	var sender, receiver CipherState
	sender.InitializeKey(cs, key)
	receiver.InitializeKey(cs, key)

	payloads := []string{"Hallo 0", "Hallo 1", "Hallo 2", "Hallo 3", "Hallo 4"}
	ciphertexts := make([][]byte, len(payloads))
	nonces := make([]uint64, len(payloads))
	for i, p := range payloads {
		ct, n, err := sender.ExplicitEncrypt(nil, nil, []byte(p))
		require.NoError(t, err)
		ciphertexts[i] = ct
		nonces[i] = n
	}
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, nonces)

	// consume out of order: 0, 3, 2, 1, and re-read 0 again
	for _, i := range []int{0, 3, 2, 1, 0} {
		plaintext, err := receiver.ExplicitDecrypt(nil, nonces[i], nil, ciphertexts[i])
		require.NoError(t, err)
		assert.Equal(t, payloads[i], string(plaintext))
	}
	assert.Equal(t, uint64(0), receiver.Nonce(), "out-of-order reads must not advance the internal counter")
}

func TestCipherState_MaxNonce(t *testing.T) {
	cs := NewCipherSuite(DH25519, CipherChaChaPoly, HashSHA256)
	var key [32]byte
	var sender CipherState
	sender.InitializeKey(cs, key)
	sender.SetNonce(MaxNonce + 1)

	_, err := sender.EncryptWithAD(nil, nil, []byte("x"))
	assert.ErrorIs(t, err, ErrMaxNonce)
}

func TestCipherState_Rekey(t *testing.T) {
	cs := NewCipherSuite(DH25519, CipherChaChaPoly, HashSHA256)
	var key [32]byte
	var cipher CipherState
	cipher.InitializeKey(cs, key)
	before := append([]byte(nil), cipher.kbuf.Bytes()...)
	cipher.Rekey()
	assert.NotEqual(t, before, cipher.kbuf.Bytes())
}

func TestCipherState_DisposeZeroesKey(t *testing.T) {
	cs := NewCipherSuite(DH25519, CipherChaChaPoly, HashSHA256)
	var key [32]byte
	for i := range key {
		key[i] = 0xAA
	}
	var cipher CipherState
	cipher.InitializeKey(cs, key)
	kbuf := cipher.kbuf
	cipher.Dispose()

	assert.False(t, kbuf.IsAlive())
	_, err := cipher.EncryptWithAD(nil, nil, []byte("x"))
	assert.ErrorIs(t, err, ErrDisposed)
}
