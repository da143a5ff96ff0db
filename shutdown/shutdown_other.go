//go:build !windows

package shutdown

import (
	"os"
	"os/signal"
	"syscall"
)

// Signals returns a channel that receives interrupt and terminate requests,
// so an in-flight recording can be finalized instead of losing the memo.
func Signals() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch
}
