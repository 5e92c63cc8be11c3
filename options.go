// options.go - process-wide run configuration
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

// MaxBufferSize bounds read/write buffer sizes and residual sizes.
const MaxBufferSize = 128 * 1024

// WritePathsPrefix is prepended to every write-path basename dirload
// generates; it is also the prefix used by CollectWritePaths for
// cross-run cleanup.
const WritePathsPrefix = "dirload"

// PathIter selects how a worker iterates over an input root.
type PathIter int

const (
	// IterWalk performs a live recursive walk of the root for every
	// pass of the main loop.
	IterWalk PathIter = iota
	// IterOrdered iterates a pre-materialized file list in order.
	IterOrdered
	// IterReverse iterates a pre-materialized file list back to front.
	IterReverse
	// IterRandom picks a uniformly random index into the file list
	// on every step.
	IterRandom
)

func (p PathIter) String() string {
	switch p {
	case IterWalk:
		return "walk"
	case IterOrdered:
		return "ordered"
	case IterReverse:
		return "reverse"
	case IterRandom:
		return "random"
	default:
		return "unknown"
	}
}

// ParsePathIter decodes the CLI's --path_iter value.
func ParsePathIter(s string) (PathIter, error) {
	switch s {
	case "walk":
		return IterWalk, nil
	case "ordered":
		return IterOrdered, nil
	case "reverse":
		return IterReverse, nil
	case "random":
		return IterRandom, nil
	default:
		return 0, &InvalidInputError{"invalid path iteration type " + s}
	}
}

// Options is the process-wide, immutable-after-construction
// configuration shared read-only by every worker.
type Options struct {
	NumSet    int
	NumReader int
	NumWriter int

	// NumRepeat caps the number of main-loop passes; -1 is
	// unbounded.
	NumRepeat int

	// TimeSecond is the total wall-clock time budget; 0 is
	// unbounded.
	TimeSecond int64

	// MonitorIntervalSecond is the live-monitor cadence; 0 disables
	// the monitor.
	MonitorIntervalSecond int64

	StatOnly        bool
	IgnoreDot       bool
	FollowSymlink   bool
	RandomWriteData bool

	ReadBufferSize  int
	ReadSize        int
	WriteBufferSize int
	WriteSize       int

	// NumWritePaths is the per-writer budget; -1 is unbounded.
	NumWritePaths int

	TruncateWritePaths bool
	FsyncWritePaths    bool
	DirsyncWritePaths  bool
	KeepWritePaths     bool
	CleanWritePaths    bool

	WritePathsBase string
	WritePathsType []WritePathKind

	PathIter  PathIter
	FlistFile string

	Force   bool
	Verbose bool
	Debug   bool
}

// DefaultOptions returns an Options populated with the same defaults
// as the CLI front end.
func DefaultOptions() *Options {
	return &Options{
		NumSet:          1,
		NumRepeat:       -1,
		ReadBufferSize:  1 << 16,
		ReadSize:        -1,
		WriteBufferSize: 1 << 16,
		WriteSize:       -1,
		NumWritePaths:   1 << 10,
		WritePathsBase:  "x",
		WritePathsType:  []WritePathKind{KindDir, KindReg},
		PathIter:        IterOrdered,
	}
}

// Validate checks field-level invariants that don't depend on the
// input roots (those are checked by the CLI once roots are resolved).
func (o *Options) Validate() error {
	if o.ReadBufferSize > MaxBufferSize {
		return &InvalidInputError{"read buffer size exceeds maximum"}
	}
	if o.WriteBufferSize > MaxBufferSize {
		return &InvalidInputError{"write buffer size exceeds maximum"}
	}
	if o.ReadSize > MaxBufferSize {
		return &InvalidInputError{"read size exceeds maximum"}
	}
	if o.WriteSize > MaxBufferSize {
		return &InvalidInputError{"write size exceeds maximum"}
	}
	if len(o.WritePathsBase) == 0 {
		return &InvalidInputError{"empty write paths base"}
	}
	if len(o.WritePathsType) == 0 {
		return &InvalidInputError{"empty write paths type"}
	}
	if len(o.FlistFile) > 0 && o.PathIter == IterWalk {
		o.PathIter = IterOrdered
	}
	return nil
}

// WritePathsBaseName is the base name embedded in every write-path
// this run creates: "dirload_{write_paths_base}".
func (o *Options) WritePathsBaseName() string {
	return WritePathsPrefix + "_" + o.WritePathsBase
}
