package noise

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegments_Len(t *testing.T) {
	s := Segments{[]byte("ab"), []byte("cde"), nil, []byte("f")}
	assert.Equal(t, 6, s.Len())
}

func TestSegments_SliceWithinOneSegment(t *testing.T) {
	s := Segments{[]byte("abcdef")}
	out, err := s.Slice(2, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("cde"), out)
}

func TestSegments_SliceCrossesBoundary(t *testing.T) {
	s := Segments{[]byte("abc"), []byte("def"), []byte("ghi")}
	out, err := s.Slice(2, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("cdefg"), out)
}

func TestSegments_SliceOutOfRange(t *testing.T) {
	s := Segments{[]byte("abc")}
	_, err := s.Slice(1, 10)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestSegments_CopyTo(t *testing.T) {
	s := Segments{[]byte("ab"), []byte("cd")}
	out := s.CopyTo([]byte("pre-"))
	assert.Equal(t, []byte("pre-abcd"), out)
}

func TestSegments_Coalesce(t *testing.T) {
	s := Segments{[]byte("ab"), []byte("cd")}
	out, err := Coalesce(s, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), out)

	_, err = Coalesce(s, 2)
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

// TestSegments_ScatterGatherInvariance covers property 3 by driving an
// actual handshake and transport through the Segments-typed overloads:
// cutting the same payload into arbitrary byte ranges must produce the
// same wire message and the same transport ciphertext as feeding it
// contiguously, so callers may split framed I/O buffers wherever
// convenient without changing what goes out on the wire.
func TestSegments_ScatterGatherInvariance(t *testing.T) {
	handshakePayload := []byte("the quick brown fox jumps over the lazy dog")
	handshakeContiguous := Segments{handshakePayload}
	handshakeScattered := Segments{handshakePayload[:1], handshakePayload[1:4], handshakePayload[4:20], handshakePayload[20:]}

	transportPayload := []byte("out on the wire, split however the caller likes")
	transportContiguous := Segments{transportPayload}
	transportScattered := Segments{transportPayload[:5], transportPayload[5:9], transportPayload[9:]}

	// A message-pattern E token always generates a fresh ephemeral via
	// GenerateKeypair regardless of Config.EphemeralKeypair (see config.go),
	// so the two runs below are made to derive the same DH outputs by
	// feeding each side a deterministic Random reader instead, fresh per
	// run so both runs consume identical bytes.
	initSeed := bytes.Repeat([]byte{0x01}, 32)
	respSeed := bytes.Repeat([]byte{0x02}, 32)

	run := func(handshakePayload, wirePayload Segments) (msg1, ciphertext []byte) {
		cs := NewCipherSuite(DH25519, CipherChaChaPoly, HashSHA256)
		initCfg := Config{
			CipherSuite: cs,
			Pattern:     HandshakeNN,
			Initiator:   true,
			Random:      bytes.NewReader(append([]byte(nil), initSeed...)),
		}
		respCfg := Config{
			CipherSuite: cs,
			Pattern:     HandshakeNN,
			Initiator:   false,
			Random:      bytes.NewReader(append([]byte(nil), respSeed...)),
		}

		init, err := NewHandshakeState(initCfg)
		require.NoError(t, err)
		resp, err := NewHandshakeState(respCfg)
		require.NoError(t, err)

		msg0, _, _, err := init.WriteMessage(nil, nil)
		require.NoError(t, err)
		_, _, _, err = resp.ReadMessage(nil, msg0)
		require.NoError(t, err)

		msg1Out, _, respT, err := resp.WriteMessageSegments(nil, handshakePayload)
		require.NoError(t, err)
		require.NotNil(t, respT)

		_, _, initT, err := init.ReadMessage(nil, msg1Out)
		require.NoError(t, err)
		require.NotNil(t, initT)

		ct, err := initT.WriteSegments(nil, wirePayload, DefaultMaxMessageLength)
		require.NoError(t, err)

		return msg1Out, ct
	}

	msg1Contiguous, ctContiguous := run(handshakeContiguous, transportContiguous)
	msg1Scattered, ctScattered := run(handshakeScattered, transportScattered)

	assert.Equal(t, msg1Contiguous, msg1Scattered, "splitting the handshake payload into segments must not change the wire bytes")
	assert.Equal(t, ctContiguous, ctScattered, "splitting the transport payload into segments must not change the ciphertext")
}
