package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransportPair(t *testing.T) (*Transport, *Transport) {
	t.Helper()
	cs := NewCipherSuite(DH25519, CipherChaChaPoly, HashSHA256)
	initCfg := Config{CipherSuite: cs, Pattern: HandshakeNN, Initiator: true}
	respCfg := Config{CipherSuite: cs, Pattern: HandshakeNN, Initiator: false}

	init, err := NewHandshakeState(initCfg)
	require.NoError(t, err)
	resp, err := NewHandshakeState(respCfg)
	require.NoError(t, err)

	initT, respT, _, _ := runHandshake(t, init, resp, nil)
	return initT, respT
}

func TestTransport_InOrderNonceDiscipline(t *testing.T) {
	initT, respT := newTestTransportPair(t)

	for i, msg := range []string{"one", "two", "three"} {
		ct, err := initT.Write(nil, []byte(msg), DefaultMaxMessageLength)
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), initT.SendNonce())

		pt, err := respT.Read(nil, ct)
		require.NoError(t, err)
		assert.Equal(t, msg, string(pt))
		assert.Equal(t, uint64(i+1), respT.RecvNonce())
	}
}

func TestTransport_InOrderReplayRejected(t *testing.T) {
	initT, respT := newTestTransportPair(t)

	ct, err := initT.Write(nil, []byte("payload"), DefaultMaxMessageLength)
	require.NoError(t, err)

	_, err = respT.Read(nil, ct)
	require.NoError(t, err)

	// replaying the same in-order ciphertext must fail: the recv counter
	// has already advanced past the nonce it was encrypted under.
	_, err = respT.Read(nil, ct)
	assert.Error(t, err)
}

func TestTransport_OutOfOrderPermutedDelivery(t *testing.T) {
	initT, respT := newTestTransportPair(t)

	messages := []string{"a", "b", "c", "d"}
	ciphertexts := make([][]byte, len(messages))
	nonces := make([]uint64, len(messages))
	for i, m := range messages {
		ct, n, err := initT.WriteOutOfOrder(nil, []byte(m), DefaultMaxMessageLength)
		require.NoError(t, err)
		ciphertexts[i] = ct
		nonces[i] = n
	}

	for _, i := range []int{3, 1, 0, 2} {
		pt, err := respT.ReadOutOfOrder(nil, nonces[i], ciphertexts[i])
		require.NoError(t, err)
		assert.Equal(t, messages[i], string(pt))
	}

	// a permuted replay of a previously consumed nonce still succeeds: the
	// receiver's counter is untouched by out-of-order reads.
	pt, err := respT.ReadOutOfOrder(nil, nonces[0], ciphertexts[0])
	require.NoError(t, err)
	assert.Equal(t, messages[0], string(pt))
}

func TestTransport_OneWayDirectionRejected(t *testing.T) {
	cs := NewCipherSuite(DH25519, CipherChaChaPoly, HashSHA256)
	respStatic := mustKeypair(t, DH25519)

	initCfg := Config{CipherSuite: cs, Pattern: HandshakeN, Initiator: true, PeerStatic: respStatic.Public}
	respCfg := Config{CipherSuite: cs, Pattern: HandshakeN, Initiator: false, StaticKeypair: respStatic}

	init, err := NewHandshakeState(initCfg)
	require.NoError(t, err)
	resp, err := NewHandshakeState(respCfg)
	require.NoError(t, err)

	msg, _, initT, err := init.WriteMessage(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, initT)
	require.True(t, initT.IsOneWay())

	_, _, respT, err := resp.ReadMessage(nil, msg)
	require.NoError(t, err)
	require.NotNil(t, respT)
	require.True(t, respT.IsOneWay())

	_, err = respT.Write(nil, []byte("x"), DefaultMaxMessageLength)
	assert.ErrorIs(t, err, ErrNotOneWayDirection)

	_, err = initT.Read(nil, []byte("x"))
	assert.ErrorIs(t, err, ErrNotOneWayDirection)
}

func TestTransport_RekeyChangesCiphertext(t *testing.T) {
	initT, respT := newTestTransportPair(t)

	before, err := initT.Write(nil, []byte("same plaintext"), DefaultMaxMessageLength)
	require.NoError(t, err)
	_, err = respT.Read(nil, before)
	require.NoError(t, err)

	require.NoError(t, initT.RekeySend())
	require.NoError(t, respT.RekeyRecv())

	after, err := initT.Write(nil, []byte("same plaintext"), DefaultMaxMessageLength)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	pt, err := respT.Read(nil, after)
	require.NoError(t, err)
	assert.Equal(t, "same plaintext", string(pt))
}

func TestTransport_DisposeRejectsFurtherUse(t *testing.T) {
	initT, _ := newTestTransportPair(t)
	initT.Dispose()

	_, err := initT.Write(nil, []byte("x"), DefaultMaxMessageLength)
	assert.ErrorIs(t, err, ErrDisposed)
}
