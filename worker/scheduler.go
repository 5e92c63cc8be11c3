// scheduler.go - worker pool assembly and the per-worker main loop
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.
package worker

import (
	"fmt"
	"io/fs"
	"math/rand"
	"path/filepath"
	"sync"
	"time"

	"github.com/opencoff/dirload"
	"github.com/opencoff/dirload/dirio"
	"github.com/opencoff/go-logger"
)

// Result is the outcome of one Dispatch call: per-worker completion
// state, their final statistics, and the paths writers created (for
// the caller to clean up or keep).
type Result struct {
	NumComplete    int
	NumInterrupted int
	NumError       int

	Stats      []dirload.Stats
	WritePaths [][]string
}

// monitorCheckInterval is how many entries a worker processes between
// monitor-throttle checks: the monitor send is attempted only every
// 100th entry, and even then is gated by the configured interval.
const monitorCheckInterval = 100

// Dispatch assembles opt.NumReader+opt.NumWriter workers, pins each to
// input[i % len(input)] (and, for non-walk iteration, fl[i %
// len(input)]), runs them concurrently, and waits for all of them to
// finish or be interrupted.
func Dispatch(input []string, fl [][]string, opt *dirload.Options, shared *dirload.SharedDir, interrupt *dirload.Interrupt, monCh chan<- StatMsg, log logger.Logger) (*Result, error) {
	n := opt.NumReader + opt.NumWriter
	if n == 0 {
		return nil, &dirload.InvalidInputError{Reason: "no readers or writers configured"}
	}
	if len(input) == 0 {
		return nil, dirload.ErrEmptyFileList
	}

	workers := make([]*Worker, n)
	for i := 0; i < opt.NumReader; i++ {
		workers[i] = NewReader(i, opt.ReadBufferSize)
	}
	for i := 0; i < opt.NumWriter; i++ {
		workers[opt.NumReader+i] = NewWriter(opt.NumReader+i, opt.WriteBufferSize)
	}

	var wg sync.WaitGroup
	for i, w := range workers {
		root := input[i%len(input)]
		var list []string
		if opt.PathIter != dirload.IterWalk {
			list = fl[i%len(fl)]
		}

		wg.Add(1)
		go func(w *Worker, root string, list []string) {
			defer wg.Done()
			runWorker(w, root, list, opt, shared, interrupt, monCh, log)
		}(w, root, list)
	}
	wg.Wait()

	res := &Result{
		Stats:      make([]dirload.Stats, n),
		WritePaths: make([][]string, n),
	}
	for i, w := range workers {
		res.Stats[i] = w.Stats.Clone()
		res.WritePaths[i] = w.WritePaths()
		res.NumComplete += w.NumComplete
		res.NumInterrupted += w.NumInterrupted
		res.NumError += w.NumError
	}
	return res, nil
}

// runWorker is the per-worker main loop: it iterates entries per
// opt.PathIter (a live walk, or a stride over a pre-materialized file
// list), applying the read or write primitive to each, until
// interrupted, the time budget elapses, num_repeat passes complete, or
// (for writers) the write-path budget is reached.
func runWorker(w *Worker, root string, list []string, opt *dirload.Options, shared *dirload.SharedDir, interrupt *dirload.Interrupt, monCh chan<- StatMsg, log logger.Logger) {
	w.Stats.SetInputPath(root)
	w.Stats.SetTimeBegin()

	if monCh != nil {
		monCh <- StatMsg{Gid: w.Gid, Stats: w.Stats.Clone()}
	}

	var deadline time.Time
	if opt.TimeSecond > 0 {
		deadline = w.Stats.TimeBegin.Add(time.Duration(opt.TimeSecond) * time.Second)
	}

	checks := 0
	var lastSent time.Time
	interval := time.Duration(opt.MonitorIntervalSecond) * time.Second

	maybeNotify := func() {
		checks++
		if checks%monitorCheckInterval != 0 {
			return
		}
		if monCh == nil {
			return
		}
		if interval > 0 && time.Since(lastSent) < interval {
			return
		}
		lastSent = time.Now()
		monCh <- StatMsg{Gid: w.Gid, Stats: w.Stats.Clone()}
	}

	apply := func(path string) error {
		if w.IsReader {
			return dirio.ReadEntry(path, w.ReadW, opt)
		}
		return dirio.WriteEntry(path, w.WriteW, shared, opt)
	}

	budgetExceeded := func() bool {
		return !deadline.IsZero() && time.Now().After(deadline)
	}

	fail := func(path string, err error) {
		if log != nil {
			log.Info("#%d %s: %s", w.Gid, path, err)
		}
		fmt.Println(err)
	}

	interrupted := false
	failed := false

pass:
	for repeat := 0; opt.NumRepeat < 0 || repeat < opt.NumRepeat; repeat++ {
		if interrupt.IsSet() {
			interrupted = true
			break pass
		}
		if budgetExceeded() {
			break pass
		}
		if w.IsWriteDone(opt) {
			break pass
		}

		if opt.PathIter == dirload.IterWalk {
			stoppedEarly := false
			err := filepath.WalkDir(root, func(path string, d fs.DirEntry, derr error) error {
				if derr != nil {
					return nil
				}
				if interrupt.IsSet() {
					interrupted = true
					stoppedEarly = true
					return filepath.SkipAll
				}
				if budgetExceeded() {
					stoppedEarly = true
					return filepath.SkipAll
				}
				if w.IsWriteDone(opt) {
					stoppedEarly = true
					return filepath.SkipAll
				}
				if err := apply(path); err != nil {
					failed = true
					stoppedEarly = true
					fail(path, err)
					return filepath.SkipAll
				}
				maybeNotify()
				return nil
			})
			_ = err
			if stoppedEarly {
				break pass
			}
		} else {
			n := len(list)
			if n == 0 {
				break pass
			}
			for idx := 0; idx < n; idx++ {
				if interrupt.IsSet() {
					interrupted = true
					break pass
				}
				if budgetExceeded() {
					break pass
				}
				if w.IsWriteDone(opt) {
					break pass
				}

				var i int
				switch opt.PathIter {
				case dirload.IterOrdered:
					i = idx
				case dirload.IterReverse:
					i = n - 1 - idx
				case dirload.IterRandom:
					i = rand.Intn(n)
				}

				if err := apply(list[i]); err != nil {
					failed = true
					fail(list[i], err)
					break pass
				}
				maybeNotify()
			}
		}

		w.Stats.IncNumRepeat()
	}

	w.Stats.SetTimeEnd()
	w.Stats.Done = true

	switch {
	case interrupted:
		w.NumInterrupted++
	case failed:
		w.NumError++
	default:
		w.NumComplete++
	}

	if monCh != nil {
		monCh <- StatMsg{Gid: w.Gid, Stats: w.Stats.Clone(), Done: true}
	}
}
