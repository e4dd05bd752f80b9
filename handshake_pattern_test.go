package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupPattern_BaseNames(t *testing.T) {
	for _, name := range []string{"N", "K", "X", "NN", "NK", "NX", "XN", "XK", "XX", "KN", "KK", "KX", "IN", "IK", "IX", "XR"} {
		p, mods, ok := LookupPattern(name)
		require.True(t, ok, name)
		assert.Equal(t, Modifier(0), mods)
		assert.Equal(t, name, p.Name)
	}
}

func TestLookupPattern_Unknown(t *testing.T) {
	_, _, ok := LookupPattern("ZZ")
	assert.False(t, ok)
}

func TestLookupPattern_PSKModifiers(t *testing.T) {
	p, mods, ok := LookupPattern("IKpsk2")
	require.True(t, ok)
	assert.Equal(t, "IK", p.Name)
	assert.Equal(t, ModifierPsk2, mods)
}

func TestLookupPattern_XXfallback(t *testing.T) {
	p, mods, ok := LookupPattern("XXfallback")
	require.True(t, ok)
	assert.Equal(t, "XXfallback", p.Name)
	assert.Equal(t, Modifier(0), mods)
}

func TestApplyModifiers_RejectsFallback(t *testing.T) {
	_, err := ApplyModifiers(HandshakeXX, ModifierFallback)
	assert.ErrorIs(t, err, ErrForbiddenModifier)
}

func TestApplyModifiers_Psk0PrependsFirstMessage(t *testing.T) {
	out, err := ApplyModifiers(HandshakeNN, ModifierPsk0)
	require.NoError(t, err)
	require.NotEmpty(t, out.Messages[0])
	assert.Equal(t, MessagePatternPSK, out.Messages[0][0])
	assert.Equal(t, "NNpsk0", out.Name)
	// original registry entry must be untouched
	assert.NotEqual(t, MessagePatternPSK, HandshakeNN.Messages[0][0])
}

func TestApplyModifiers_Psk2AppendsSecondMessage(t *testing.T) {
	out, err := ApplyModifiers(HandshakeIK, ModifierPsk2)
	require.NoError(t, err)
	last := out.Messages[1][len(out.Messages[1])-1]
	assert.Equal(t, MessagePatternPSK, last)
}

func TestApplyModifiers_OutOfRangePskErrors(t *testing.T) {
	_, err := ApplyModifiers(HandshakeN, ModifierPsk3)
	assert.Error(t, err)
}

func TestApplyModifiers_MultiplePSKBits(t *testing.T) {
	out, err := ApplyModifiers(HandshakeXX, ModifierPsk0|ModifierPsk2)
	require.NoError(t, err)
	assert.Equal(t, MessagePatternPSK, out.Messages[0][0])
	assert.Equal(t, MessagePatternPSK, out.Messages[1][len(out.Messages[1])-1])
	assert.Equal(t, "XXpsk0psk2", out.Name)
}

func TestProtocolName(t *testing.T) {
	cs := NewCipherSuite(DH25519, CipherChaChaPoly, HashSHA256)
	name := ProtocolName("NN", 0, cs)
	assert.Equal(t, "Noise_NN_25519_ChaChaPoly_SHA256", name)
}
