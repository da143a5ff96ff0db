//go:build windows

package shutdown

import (
	"os"
	"os/signal"
)

// Signals returns a channel that receives interrupt requests, so an in-flight
// recording can be finalized instead of losing the memo. Windows has no
// SIGTERM delivery; Ctrl+C and Ctrl+Break both surface as os.Interrupt.
func Signals() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return ch
}
