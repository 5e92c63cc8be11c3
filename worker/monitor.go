// monitor.go - the live monitor
//
// Grounded on the message-passing description in the worker
// scheduling design this package implements: a single consumer
// goroutine, fed by all workers over one channel, printing periodic
// statistics snapshots.
package worker

import (
	"time"

	"github.com/opencoff/dirload"
	"github.com/opencoff/go-logger"
)

// StatMsg is one message a worker sends to the monitor: its current
// statistics snapshot, and whether this is the worker's final message.
type StatMsg struct {
	Gid   int
	Stats dirload.Stats
	Done  bool
}

// Monitor consumes StatMsg values from ch at a 1-second receive
// timeout, maintaining a local snapshot per worker gid, and emits a
// full table via emit at the configured interval once every worker
// has sent at least one message. It returns when every worker's final
// message has been received, or - in debug mode - when interrupt
// fires.
func Monitor(ch <-chan StatMsg, n int, interval time.Duration, interrupt *dirload.Interrupt, debug bool, emit func([]dirload.Stats), log logger.Logger) error {
	tsv := make([]dirload.Stats, n)
	seen := make([]bool, n)

	ready := false
	lastEmit := time.Now()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			tsv[msg.Gid] = msg.Stats
			seen[msg.Gid] = true

			if msg.Done {
				allDone := true
				for i := range tsv {
					if !tsv[i].Done {
						allDone = false
						break
					}
				}
				if allDone {
					return nil
				}
			}

			if !ready {
				ready = true
				for _, s := range seen {
					if !s {
						ready = false
						break
					}
				}
			}

		case <-time.After(1 * time.Second):
			if debug && interrupt.IsSet() {
				return nil
			}
		}

		if interval > 0 && time.Since(lastEmit) >= interval {
			if ready {
				emit(tsv)
			} else if log != nil {
				log.Info("monitor: not ready")
			}
			lastEmit = time.Now()
		}
	}
}
