package tx

import "github.com/rs/zerolog"

var logger = zerolog.Nop()

// SetLogger routes the package's debug events to l. It is meant to be called
// once during startup.
func SetLogger(l zerolog.Logger) {
	logger = l
}
