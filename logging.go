package noise

import "github.com/go-i2p/logger"

// log is the package-level structured logger. It discards output unless
// DEBUG_I2P is set in the environment, matching the rest of the go-i2p
// ecosystem's logging conventions. Handshake and transport events are logged
// at Debug level only, and never include key material, PSKs, or plaintext.
var log = logger.GetGoI2PLogger()
