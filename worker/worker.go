// Package worker implements the worker scheduler and live monitor: a
// fixed pool of reader/writer goroutines dispatched over a set of
// input roots, plus an optional goroutine that periodically snapshots
// their statistics.
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
	"github.com/opencoff/dirload"
	"github.com/opencoff/dirload/dirio"
)

// Worker is one scheduler slot: a global id, its role, its read or
// write buffer state, and the bookkeeping the scheduler needs after
// the run completes.
type Worker struct {
	Gid      int
	IsReader bool

	ReadW  *dirio.ReadWorker
	WriteW *dirio.WriteWorker

	Stats *dirload.Stats

	NumComplete    int
	NumInterrupted int
	NumError       int
}

// NewReader builds a reader worker with a freshly allocated read
// buffer of the given size.
func NewReader(gid, bufSize int) *Worker {
	stats := dirload.NewReaderStats()
	return &Worker{
		Gid:      gid,
		IsReader: true,
		ReadW:    &dirio.ReadWorker{Buf: dirio.NewReadBuffer(bufSize), Stats: stats},
		Stats:    stats,
	}
}

// NewWriter builds a writer worker with a freshly allocated,
// 'A'-filled write buffer of the given size.
func NewWriter(gid, bufSize int) *Worker {
	stats := dirload.NewWriterStats()
	return &Worker{
		Gid:      gid,
		IsReader: false,
		WriteW:   &dirio.WriteWorker{Gid: gid, Buf: dirio.NewWriteBuffer(bufSize), Stats: stats},
		Stats:    stats,
	}
}

// IsWriteDone reports whether a writer worker has reached its
// write-path budget. Always false for readers.
func (w *Worker) IsWriteDone(opt *dirload.Options) bool {
	if w.IsReader {
		return false
	}
	return dirio.IsWriteDone(w.WriteW, opt)
}

// WritePaths returns the paths this worker has created so far, or nil
// for a reader.
func (w *Worker) WritePaths() []string {
	if w.WriteW == nil {
		return nil
	}
	return w.WriteW.WritePaths
}
