package noise

import "github.com/samber/oops"

// A HandshakePattern is a list of pre-messages and per-message tokens that
// define a specific Noise handshake.
type HandshakePattern struct {
	Name                 string
	InitiatorPreMessages []MessagePattern
	ResponderPreMessages []MessagePattern
	Messages             [][]MessagePattern
}

// clone returns a deep copy so that PSK insertion never mutates the
// package-level registry entries.
func (p HandshakePattern) clone() HandshakePattern {
	out := HandshakePattern{
		Name:                 p.Name,
		InitiatorPreMessages: append([]MessagePattern(nil), p.InitiatorPreMessages...),
		ResponderPreMessages: append([]MessagePattern(nil), p.ResponderPreMessages...),
		Messages:             make([][]MessagePattern, len(p.Messages)),
	}
	for i, m := range p.Messages {
		out.Messages[i] = append([]MessagePattern(nil), m...)
	}
	return out
}

// patternRegistry is the closed set of named base patterns this package
// supports, keyed by canonical name.
var patternRegistry = map[string]HandshakePattern{
	"N":          HandshakeN,
	"K":          HandshakeK,
	"X":          HandshakeX,
	"NN":         HandshakeNN,
	"NK":         HandshakeNK,
	"NX":         HandshakeNX,
	"XN":         HandshakeXN,
	"XK":         HandshakeXK,
	"XX":         HandshakeXX,
	"KN":         HandshakeKN,
	"KK":         HandshakeKK,
	"KX":         HandshakeKX,
	"IN":         HandshakeIN,
	"IK":         HandshakeIK,
	"IX":         HandshakeIX,
	"XR":         HandshakeXR,
	"XXfallback": HandshakeXXfallback,
}

// LookupPattern resolves a canonical pattern token, e.g. "IK" or "IKpsk2" or
// "XXfallback", to its base pattern and parsed modifier bitset. It returns
// false if the base pattern name is not in the registry. A token that
// matches a registry entry verbatim (e.g. "XXfallback", whose own name ends
// in the "fallback" suffix splitPatternToken would otherwise strip) is
// resolved directly, with no modifiers, before any suffix splitting.
func LookupPattern(token string) (HandshakePattern, Modifier, bool) {
	if p, ok := patternRegistry[token]; ok {
		return p, 0, true
	}
	base, mods, err := splitPatternToken(token)
	if err != nil {
		return HandshakePattern{}, 0, false
	}
	p, ok := patternRegistry[base]
	if !ok {
		return HandshakePattern{}, 0, false
	}
	return p, mods, true
}

// splitPatternToken separates a pattern token into its base name (leading
// uppercase run) and its trailing modifier suffixes ("fallback", "psk0"..
// "psk3", concatenated in any order).
func splitPatternToken(token string) (string, Modifier, error) {
	i := 0
	for i < len(token) && (token[i] < 'a' || token[i] > 'z') {
		i++
	}
	base, suffix := token[:i], token[i:]
	var mods Modifier
	for len(suffix) > 0 {
		switch {
		case len(suffix) >= 8 && suffix[:8] == "fallback":
			mods |= ModifierFallback
			suffix = suffix[8:]
		case len(suffix) >= 4 && suffix[:3] == "psk":
			switch suffix[3] {
			case '0':
				mods |= ModifierPsk0
			case '1':
				mods |= ModifierPsk1
			case '2':
				mods |= ModifierPsk2
			case '3':
				mods |= ModifierPsk3
			default:
				return "", 0, oops.Errorf("%w: unrecognized psk modifier in %q", ErrUnrecognizedModifier, token)
			}
			suffix = suffix[4:]
		default:
			return "", 0, oops.Errorf("%w: unrecognized modifier suffix %q", ErrUnrecognizedModifier, suffix)
		}
	}
	return base, mods, nil
}

// ApplyModifiers returns a new pattern with the requested PSK tokens
// inserted. ModifierFallback is never handled here: per spec, applying
// Fallback directly is a construction error everywhere except inside the
// private fallback transition, which builds the XXfallback pattern's token
// content directly rather than deriving it from XX (see fallback.go). It is
// an error to request more Psk bits than the pattern has messages for
// (Psk(i>0) requires message i-1 to exist).
func ApplyModifiers(p HandshakePattern, mods Modifier) (HandshakePattern, error) {
	if mods&ModifierFallback != 0 {
		return HandshakePattern{}, ErrForbiddenModifier
	}
	out := p.clone()
	if mods&ModifierPsk0 != 0 {
		out.Messages[0] = append([]MessagePattern{MessagePatternPSK}, out.Messages[0]...)
	}
	for i, pb := range []Modifier{ModifierPsk1, ModifierPsk2, ModifierPsk3} {
		if mods&pb == 0 {
			continue
		}
		idx := i // Psk1 -> message 0, Psk2 -> message 1, Psk3 -> message 2
		if idx >= len(out.Messages) {
			return HandshakePattern{}, oops.Errorf("%w: %s has no message pattern for psk%d", ErrModifierOutOfRange, p.Name, idx+1)
		}
		out.Messages[idx] = append(out.Messages[idx], MessagePatternPSK)
	}
	if mods != 0 {
		out.Name = p.Name + mods.String()
	}
	return out, nil
}

// ProtocolName builds the canonical Noise protocol name string used to seed
// the symmetric state, e.g. "Noise_IKpsk2_25519_ChaChaPoly_BLAKE2b".
func ProtocolName(patternName string, mods Modifier, cs CipherSuite) string {
	return "Noise_" + patternName + mods.String() + "_" + string(cs.Name())
}
