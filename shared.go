// shared.go - state shared read-only across all workers
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

import (
	"crypto/rand"
)

// SharedDir is constructed once by the scheduler before any worker is
// spawned and is never mutated afterwards - every worker may read it
// concurrently without synchronization.
type SharedDir struct {
	// RandomData is nil unless random_write_data was requested; when
	// present it is 2*MaxBufferSize bytes, each in [32,128).
	RandomData []byte

	// RunTimestamp is embedded in every write-path name created
	// during this run.
	RunTimestamp string

	// WritePathsType is the ordered multiset writers pick a kind
	// from.
	WritePathsType []WritePathKind
}

// NewSharedDir builds the shared, read-only state for one scheduler
// invocation.
func NewSharedDir(randomWriteData bool, writePathsType []WritePathKind) (*SharedDir, error) {
	if len(writePathsType) == 0 {
		return nil, &InvalidInputError{"empty write paths type"}
	}

	d := &SharedDir{
		RunTimestamp:   timeString(),
		WritePathsType: writePathsType,
	}
	if randomWriteData {
		buf := make([]byte, 2*MaxBufferSize)
		if _, err := rand.Read(buf); err != nil {
			return nil, &PathError{"rand-read", "", err}
		}
		// fold each byte into [32,128)
		for i, b := range buf {
			buf[i] = 32 + b%96
		}
		d.RandomData = buf
	}
	return d, nil
}
