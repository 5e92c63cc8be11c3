// sets.go - the multi-set driver
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
	"time"

	"github.com/opencoff/dirload"
	"github.com/opencoff/dirload/dirio"
	"github.com/opencoff/go-logger"
)

// SetsResult aggregates the outcome of every set RunSets actually ran.
type SetsResult struct {
	NumComplete    int
	NumInterrupted int
	NumError       int
	NumRemaining   int

	Sets []*Result
}

// RunSets invokes Dispatch opt.NumSet times back to back, building a
// fresh SharedDir (and so a fresh run timestamp) for each set. It stops
// early, abandoning any remaining sets, the moment a set reports an
// interrupted worker. Between sets it prints a divider to log, echoing
// the behavior of the tool this scheduler design is drawn from.
func RunSets(input []string, fl [][]string, opt *dirload.Options, interrupt *dirload.Interrupt, monCh chan StatMsg, log logger.Logger) (*SetsResult, error) {
	res := &SetsResult{}

	n := opt.NumReader + opt.NumWriter
	waitMonitor := startMonitor(opt, monCh, n, interrupt, logEmit(log), log)

	for set := 0; set < opt.NumSet; set++ {
		if interrupt.IsSet() {
			break
		}
		if set > 0 && log != nil {
			log.Info("---- set %d/%d ----", set+1, opt.NumSet)
		}

		shared, err := dirload.NewSharedDir(opt.RandomWriteData, opt.WritePathsType)
		if err != nil {
			return res, err
		}

		one, err := Dispatch(input, fl, opt, shared, interrupt, monCh, log)
		if err != nil {
			return res, err
		}
		res.Sets = append(res.Sets, one)
		res.NumComplete += one.NumComplete
		res.NumInterrupted += one.NumInterrupted
		res.NumError += one.NumError

		if !opt.KeepWritePaths {
			remaining, err := dirio.CleanupWritePaths(one.WritePaths, false)
			if err != nil {
				return res, err
			}
			res.NumRemaining += remaining
		} else {
			for _, l := range one.WritePaths {
				res.NumRemaining += len(l)
			}
		}

		if one.NumInterrupted > 0 {
			break
		}
	}

	if monCh != nil {
		close(monCh)
	}
	waitMonitor()
	return res, nil
}

// logEmit builds the monitor's default snapshot emitter: one log line
// per worker, through the scheduler's injected logger.
func logEmit(log logger.Logger) func([]dirload.Stats) {
	return func(tsv []dirload.Stats) {
		if log == nil {
			return
		}
		for gid, s := range tsv {
			role := "writer"
			if s.IsReader {
				role = "reader"
			}
			log.Info("monitor: gid=%d role=%s input=%s repeat=%d stat=%d read=%d/%d write=%d/%d",
				gid, role, s.InputPath, s.NumRepeat, s.NumStat,
				s.NumRead, s.NumReadBytes, s.NumWrite, s.NumWriteBytes)
		}
	}
}

// NewMonitorChan allocates the channel Dispatch's workers send StatMsg
// values over, sized so a burst of per-worker sends never blocks the
// hot path.
func NewMonitorChan(numWorkers int) chan StatMsg {
	return make(chan StatMsg, numWorkers*4)
}

// startMonitor launches Monitor in its own goroutine when the run
// configuration enables it, returning a wait function the caller
// should invoke after the channel is closed.
func startMonitor(opt *dirload.Options, ch <-chan StatMsg, n int, interrupt *dirload.Interrupt, emit func([]dirload.Stats), log logger.Logger) func() {
	if opt.MonitorIntervalSecond <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Monitor(ch, n, time.Duration(opt.MonitorIntervalSecond)*time.Second, interrupt, opt.Debug, emit, log)
	}()
	return func() { <-done }
}
