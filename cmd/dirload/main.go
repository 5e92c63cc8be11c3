// main.go -- dirload command line front end
//
// Wires flags, input roots, and process exit codes to the worker
// scheduler; the hard engineering lives in the dirload, flist, dirio,
// and worker packages this command only assembles.
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
package main

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"strconv"
	"strings"

	"github.com/opencoff/dirload"
	"github.com/opencoff/dirload/dirio"
	"github.com/opencoff/dirload/flist"
	"github.com/opencoff/dirload/worker"
	"github.com/opencoff/go-logger"
	flag "github.com/opencoff/pflag"
	"github.com/opencoff/shlex"
)

// Z is the program name, used in usage and log messages.
var Z = path.Base(os.Args[0])

// version is bumped by hand; there is no build-time injection here.
const version = "1.0.0"

func main() {
	args := expandExtraArgs(os.Args[1:])

	var help, showVersion bool
	var flistFileCreate, cleanWritePaths bool
	var force, verbose, debug bool
	var statOnly, ignoreDot, followSymlink, randomWriteData bool
	var truncateWritePaths, fsyncWritePaths, dirsyncWritePaths, keepWritePaths bool
	var numSet, numReader, numWriter, numRepeat int
	var timeMinute, timeSecond int
	var monIntervalMinute, monIntervalSecond int
	var readSize, writeSize, numWritePaths int
	var writePathsBase, writePathsType, pathIterName, flistFile string

	readBufSize := NewSizeValue(dirload.MaxBufferSize / 2)
	writeBufSize := NewSizeValue(dirload.MaxBufferSize / 2)

	fs := flag.NewFlagSet(Z, flag.ExitOnError)

	fs.BoolVarP(&help, "help", "h", false, "Show this help and exit")
	fs.BoolVarP(&showVersion, "version", "", false, "Show version and exit")
	fs.BoolVarP(&flistFileCreate, "flist_file_create", "", false, "Build a file-list file from the input roots and exit")
	fs.BoolVarP(&cleanWritePaths, "clean_write_paths", "", false, "Unlink stale write-paths under the input roots and exit")

	fs.IntVarP(&numSet, "num_set", "", 1, "Run `N` back-to-back dispatch sets")
	fs.IntVarP(&numReader, "num_reader", "", 0, "Run `N` reader workers")
	fs.IntVarP(&numWriter, "num_writer", "", 0, "Run `N` writer workers")
	fs.IntVarP(&numRepeat, "num_repeat", "", -1, "Cap each worker to `N` main-loop passes (-1 or 0: unbounded)")

	fs.IntVarP(&timeMinute, "time_minute", "", 0, "Add `M` minutes to the total time budget")
	fs.IntVarP(&timeSecond, "time_second", "", 0, "Add `S` seconds to the total time budget (0: unbounded)")
	fs.IntVarP(&monIntervalMinute, "monitor_interval_minute", "", 0, "Add `M` minutes to the monitor cadence")
	fs.IntVarP(&monIntervalSecond, "monitor_interval_second", "", 0, "Add `S` seconds to the monitor cadence (0: disabled)")

	fs.BoolVarP(&statOnly, "stat_only", "", false, "Only stat entries; never read or write content")
	fs.BoolVarP(&ignoreDot, "ignore_dot", "", false, "Skip dot-paths")
	fs.BoolVarP(&followSymlink, "follow_symlink", "", false, "Follow and read symlink targets")
	fs.BoolVarP(&randomWriteData, "random_write_data", "", false, "Fill written regular files with pseudo-random content")

	fs.VarP(readBufSize, "read_buffer_size", "", "Read buffer `size` (max 128k)")
	fs.VarP(writeBufSize, "write_buffer_size", "", "Write buffer `size` (max 128k)")
	fs.IntVarP(&readSize, "read_size", "", -1, "Per-read residual size: -1 unbounded, 0 random, else literal bytes")
	fs.IntVarP(&writeSize, "write_size", "", -1, "Per-write residual size: -1 skip content, 0 random, else literal bytes")

	fs.IntVarP(&numWritePaths, "num_write_paths", "", 1<<10, "Per-writer write-path budget (-1: unbounded)")
	fs.BoolVarP(&truncateWritePaths, "truncate_write_paths", "", false, "Use ftruncate(2) instead of writing content")
	fs.BoolVarP(&fsyncWritePaths, "fsync_write_paths", "", false, "fsync every created write-path")
	fs.BoolVarP(&dirsyncWritePaths, "dirsync_write_paths", "", false, "fsync the parent directory of every created write-path")
	fs.BoolVarP(&keepWritePaths, "keep_write_paths", "", false, "Don't unlink write-paths at the end of a run")

	fs.StringVarP(&writePathsBase, "write_paths_base", "", "x", "Basename `suffix` for write-paths (an integer N expands to \"x\"*N)")
	fs.StringVarP(&writePathsType, "write_paths_type", "", "dr", "Write-path kind multiset over {d,r,s,l}")

	fs.StringVarP(&pathIterName, "path_iter", "", "ordered", "Path iteration mode: walk, ordered, reverse, random")
	fs.StringVarP(&flistFile, "flist_file", "", "", "Use `file` as a pre-built file-list instead of scanning")

	fs.BoolVarP(&force, "force", "f", false, "Allow shallow input roots and overwrite existing flist files")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	fs.BoolVarP(&debug, "debug", "", false, "Enable debug logging and internal assertions")

	fs.SetOutput(os.Stdout)
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		die("%s", err)
	}

	if help {
		usage(fs)
	}
	if showVersion {
		fmt.Printf("%s %s\n", Z, version)
		os.Exit(0)
	}

	roots, err := validateRoots(fs.Args(), force)
	if err != nil {
		die("%s", err)
	}

	opt := dirload.DefaultOptions()
	opt.NumSet = numSet
	opt.NumReader = numReader
	opt.NumWriter = numWriter
	opt.NumRepeat = normalizeRepeat(numRepeat)
	opt.TimeSecond = int64(timeMinute*60 + timeSecond)
	opt.MonitorIntervalSecond = int64(monIntervalMinute*60 + monIntervalSecond)
	opt.StatOnly = statOnly
	opt.IgnoreDot = ignoreDot
	opt.FollowSymlink = followSymlink
	opt.RandomWriteData = randomWriteData
	opt.ReadBufferSize = int(readBufSize.Value())
	opt.WriteBufferSize = int(writeBufSize.Value())
	opt.ReadSize = readSize
	opt.WriteSize = writeSize
	opt.NumWritePaths = numWritePaths
	opt.TruncateWritePaths = truncateWritePaths
	opt.FsyncWritePaths = fsyncWritePaths
	opt.DirsyncWritePaths = dirsyncWritePaths
	opt.KeepWritePaths = keepWritePaths
	opt.WritePathsBase = expandWritePathsBase(writePathsBase)
	opt.CleanWritePaths = cleanWritePaths
	opt.Force = force
	opt.Verbose = verbose
	opt.Debug = debug
	opt.FlistFile = flistFile

	if kinds, err := dirload.ParseWritePathTypes(writePathsType); err != nil {
		die("%s", err)
	} else {
		opt.WritePathsType = kinds
	}
	if it, err := dirload.ParsePathIter(pathIterName); err != nil {
		die("%s", err)
	} else {
		opt.PathIter = it
	}
	if err := opt.Validate(); err != nil {
		die("%s", err)
	}

	log, closeLog := openLog(debug)
	defer closeLog()

	switch {
	case flistFileCreate:
		runFlistFileCreate(roots, opt)
	case cleanWritePaths:
		runCleanWritePaths(roots, opt)
	default:
		runLoad(roots, opt, log)
	}
}

// runLoad is the default mode: dispatch num_set back-to-back sets of
// reader/writer workers over the input roots.
func runLoad(roots []string, opt *dirload.Options, log logger.Logger) {
	if debugRootWritability(opt) {
		for _, r := range roots {
			ok, err := dirload.IsDirWritable(r)
			if err != nil {
				log.Info("writability probe %s: %s", r, err)
				continue
			}
			log.Info("%s: writable=%v", r, ok)
		}
	}

	var fl [][]string
	var err error
	switch {
	case len(opt.FlistFile) > 0:
		entries, lerr := flist.LoadList(opt.FlistFile)
		if lerr != nil {
			die("%s", lerr)
		}
		fl, err = flist.SplitByRootPrefix(entries, roots)
	case opt.PathIter != dirload.IterWalk:
		fl, err = flist.BuildLists(roots, opt.IgnoreDot)
	}
	if err != nil {
		die("%s", err)
	}

	interrupt := dirload.NewInterrupt()
	stop := dirload.InstallSignalHandler(interrupt)
	defer stop()

	var monCh chan worker.StatMsg
	if opt.MonitorIntervalSecond > 0 {
		monCh = worker.NewMonitorChan(opt.NumReader + opt.NumWriter)
	}

	res, err := worker.RunSets(roots, fl, opt, interrupt, monCh, log)
	if err != nil {
		die("%s", err)
	}

	for _, set := range res.Sets {
		printStatsTable(os.Stdout, set.Stats)
	}
	printSummary(os.Stdout, res.NumInterrupted, res.NumError, res.NumRemaining)

	if res.NumInterrupted > 0 || res.NumError > 0 {
		os.Exit(1)
	}
	os.Exit(0)
}

// runFlistFileCreate builds and persists one concatenated, sorted
// file-list file and exits.
func runFlistFileCreate(roots []string, opt *dirload.Options) {
	if len(opt.FlistFile) == 0 {
		die("--flist_file_create requires --flist_file")
	}
	if err := flist.CreateList(roots, opt.FlistFile, opt.IgnoreDot, opt.Force); err != nil {
		die("%s", err)
	}
	os.Exit(0)
}

// runCleanWritePaths scans the input roots by the write-paths prefix
// and unlinks every match, for cross-run cleanup.
func runCleanWritePaths(roots []string, opt *dirload.Options) {
	found, err := dirio.CollectWritePaths(roots, opt.WritePathsBase)
	if err != nil {
		die("%s", err)
	}
	remaining, err := dirio.CleanupWritePaths([][]string{found}, false)
	if err != nil {
		die("%s", err)
	}
	fmt.Printf("%d write-path(s) found, %d remaining\n", len(found), remaining)
	if remaining > 0 {
		os.Exit(1)
	}
	os.Exit(0)
}

// validateRoots resolves each positional argument to an absolute,
// existing directory. Under non-force mode, a root with fewer than
// three '/' separators is rejected to avoid accidentally stressing a
// shallow system directory.
func validateRoots(args []string, force bool) ([]string, error) {
	if runtime.GOOS == "windows" {
		return nil, &dirload.InvalidInputError{Reason: "dirload is POSIX-only"}
	}
	if len(args) == 0 {
		return nil, &dirload.InvalidInputError{Reason: "no input directories given"}
	}

	roots := make([]string, 0, len(args))
	for _, a := range args {
		abs, err := dirload.AbsPath(a)
		if err != nil {
			return nil, err
		}
		t, err := dirload.FileTypeOf(abs)
		if err != nil {
			return nil, err
		}
		if t != dirload.Dir {
			return nil, &dirload.InvalidInputError{Reason: abs + " is not a directory"}
		}
		if !force && strings.Count(abs, "/") < 3 {
			return nil, &dirload.InvalidInputError{Reason: abs + " looks too shallow; use --force to override"}
		}
		roots = append(roots, abs)
	}
	return roots, nil
}

// normalizeRepeat folds any value <= -1 or 0 to -1 (unbounded),
// matching the CLI contract in spec.md §6.
func normalizeRepeat(n int) int {
	if n <= 0 {
		return -1
	}
	return n
}

// expandWritePathsBase expands an integer-valued base into "x"*N,
// matching the CLI contract in spec.md §6.
func expandWritePathsBase(s string) string {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return strings.Repeat("x", n)
	}
	return s
}

// expandExtraArgs tokenizes DIRLOAD_EXTRA_ARGS (if set) with shlex and
// appends the result after the process's own arguments, so the env var
// can supply additional flags without disturbing positional roots.
func expandExtraArgs(args []string) []string {
	extra := os.Getenv("DIRLOAD_EXTRA_ARGS")
	if len(extra) == 0 {
		return args
	}
	toks, err := shlex.Split(extra)
	if err != nil {
		die("DIRLOAD_EXTRA_ARGS: %s", err)
	}
	return append(append([]string{}, args...), toks...)
}

// openLog opens a debug log file under the user's home directory when
// debug mode is requested, and returns a discard logger otherwise.
func openLog(debug bool) (logger.Logger, func()) {
	if !debug {
		log, err := logger.NewLogger(os.DevNull, logger.LOG_DEBUG, Z, 0)
		if err != nil {
			die("logfile %s: %s", os.DevNull, err)
		}
		return log, func() { log.Close() }
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	logfile := path.Join(home, ".dirload.log")

	log, err := logger.NewLogger(logfile, logger.LOG_DEBUG, Z, logger.Ldate|logger.Ltime|logger.Lmicroseconds|logger.Lfileloc)
	if err != nil {
		die("logfile %s: %s", logfile, err)
	}
	return log, func() { log.Close() }
}

// debugRootWritability reports whether the pre-flight writability
// probe documented in spec.md's supplemented features should run.
func debugRootWritability(opt *dirload.Options) bool {
	return opt.Debug && opt.NumWriter > 0
}

func die(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", Z, fmt.Sprintf(msg, args...))
	os.Exit(1)
}

func usage(fs *flag.FlagSet) {
	fmt.Printf(usageStr, Z, Z)
	fs.PrintDefaults()
	os.Exit(1)
}

var usageStr = `%s - filesystem load generator.

Stresses one or more local directory trees with a configurable mix of
concurrent reader and writer workers.

Usage: %s [options] dir [dir...]

Options:
`
