// stats.go - per-worker statistics
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

package dirload

import "time"

// Stats is one worker's statistics record. It is owned exclusively by
// that worker while the run is active; the monitor and the final
// aggregation only ever see a Clone() of it.
type Stats struct {
	IsReader  bool
	InputPath string

	TimeBegin time.Time
	TimeEnd   time.Time

	NumRepeat     int
	NumStat       int
	NumRead       int
	NumReadBytes  int64
	NumWrite      int
	NumWriteBytes int64

	Done bool
}

// NewReaderStats returns a zero-valued Stats tagged as a reader.
func NewReaderStats() *Stats {
	return &Stats{IsReader: true}
}

// NewWriterStats returns a zero-valued Stats tagged as a writer.
func NewWriterStats() *Stats {
	return &Stats{IsReader: false}
}

// IsReady reports whether the worker has recorded its input path yet.
func (s *Stats) IsReady() bool {
	return len(s.InputPath) > 0
}

func (s *Stats) SetInputPath(f string) {
	s.InputPath = f
}

func (s *Stats) SetTimeBegin() {
	s.TimeBegin = time.Now()
}

func (s *Stats) SetTimeEnd() {
	s.TimeEnd = time.Now()
}

// TimeElapsed returns the time since TimeBegin was set.
func (s *Stats) TimeElapsed() time.Duration {
	return time.Since(s.TimeBegin)
}

func (s *Stats) IncNumRepeat()        { s.NumRepeat++ }
func (s *Stats) IncNumStat()          { s.NumStat++ }
func (s *Stats) IncNumRead()          { s.NumRead++ }
func (s *Stats) AddNumReadBytes(n int)  { s.NumReadBytes += int64(n) }
func (s *Stats) IncNumWrite()         { s.NumWrite++ }
func (s *Stats) AddNumWriteBytes(n int) { s.NumWriteBytes += int64(n) }

// Clone returns a value copy of s, safe to hand to a goroutine that
// doesn't own s (the monitor, or the final aggregation step).
func (s *Stats) Clone() Stats {
	return *s
}
