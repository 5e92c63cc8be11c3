package worker

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/opencoff/dirload"
	"github.com/opencoff/dirload/flist"
)

func newAsserter(t *testing.T) func(cond bool, msg string, args ...interface{}) {
	return func(cond bool, msg string, args ...interface{}) {
		if cond {
			return
		}
		_, file, line, ok := runtime.Caller(1)
		if !ok {
			file = "???"
			line = 0
		}
		s := fmt.Sprintf(msg, args...)
		t.Fatalf("\n%s: %d: Assertion failed: %s\n", file, line, s)
	}
}

func absDir(t *testing.T) string {
	t.Helper()
	d, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("evalsymlinks: %s", err)
	}
	return d
}

func TestDispatchReaders(t *testing.T) {
	assert := newAsserter(t)

	dir := absDir(t)
	assert(os.WriteFile(filepath.Join(dir, "a.txt"), []byte("0123456789"), 0o644) == nil, "write a.txt")
	assert(os.WriteFile(filepath.Join(dir, "b.txt"), []byte("01234567890123456789"), 0o644) == nil, "write b.txt")

	opt := dirload.DefaultOptions()
	opt.NumReader = 2
	opt.NumWriter = 0
	opt.NumRepeat = 1
	opt.ReadSize = -1
	opt.PathIter = dirload.IterOrdered

	fl, err := flist.BuildLists([]string{dir}, false)
	assert(err == nil, "BuildLists: %s", err)

	shared, err := dirload.NewSharedDir(false, opt.WritePathsType)
	assert(err == nil, "NewSharedDir: %s", err)

	interrupt := dirload.NewInterrupt()
	res, err := Dispatch([]string{dir}, fl, opt, shared, interrupt, nil, nil)
	assert(err == nil, "Dispatch: %s", err)
	assert(res.NumComplete == 2, "expected 2 completed workers, got %d", res.NumComplete)
	assert(res.NumInterrupted == 0, "expected 0 interrupted, got %d", res.NumInterrupted)
	assert(res.NumError == 0, "expected 0 errored, got %d", res.NumError)

	var totalRead int64
	for _, s := range res.Stats {
		totalRead += s.NumReadBytes
	}
	// both readers are pinned to the one root and each reads a.txt and
	// b.txt in full: 2 x (10 + 20) bytes.
	assert(totalRead == 60, "expected 60 bytes read total, got %d", totalRead)
}

func TestDispatchWritersRespectBudget(t *testing.T) {
	assert := newAsserter(t)

	dir := absDir(t)
	assert(os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644) == nil, "write a.txt")

	opt := dirload.DefaultOptions()
	opt.NumReader = 0
	opt.NumWriter = 1
	opt.NumRepeat = -1
	opt.NumWritePaths = 3
	opt.WriteSize = 100
	opt.WritePathsType = []dirload.WritePathKind{dirload.KindReg}
	opt.PathIter = dirload.IterOrdered

	fl, err := flist.BuildLists([]string{dir}, false)
	assert(err == nil, "BuildLists: %s", err)

	shared, err := dirload.NewSharedDir(false, opt.WritePathsType)
	assert(err == nil, "NewSharedDir: %s", err)

	interrupt := dirload.NewInterrupt()
	res, err := Dispatch([]string{dir}, fl, opt, shared, interrupt, nil, nil)
	assert(err == nil, "Dispatch: %s", err)
	assert(res.NumComplete == 1, "expected 1 completed worker, got %d", res.NumComplete)
	assert(len(res.WritePaths[0]) == 3, "expected exactly 3 write-paths, got %d", len(res.WritePaths[0]))

	for _, p := range res.WritePaths[0] {
		fi, err := os.Stat(p)
		assert(err == nil, "stat %s: %s", p, err)
		assert(fi.Size() == 100, "expected 100 byte file, got %d", fi.Size())
	}
}

func TestDispatchEmptyConfig(t *testing.T) {
	assert := newAsserter(t)

	opt := dirload.DefaultOptions()
	interrupt := dirload.NewInterrupt()
	_, err := Dispatch(nil, nil, opt, nil, interrupt, nil, nil)
	assert(err != nil, "expected error for empty reader/writer config")
}

func TestDispatchStopsOnFirstError(t *testing.T) {
	assert := newAsserter(t)

	dir := absDir(t)
	assert(os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644) == nil, "write a.txt")

	missing := filepath.Join(dir, "does-not-exist")

	opt := dirload.DefaultOptions()
	opt.NumReader = 1
	opt.NumWriter = 0
	opt.NumRepeat = -1
	opt.ReadSize = -1
	opt.PathIter = dirload.IterOrdered

	fl := [][]string{{missing, filepath.Join(dir, "a.txt")}}

	shared, err := dirload.NewSharedDir(false, opt.WritePathsType)
	assert(err == nil, "NewSharedDir: %s", err)

	interrupt := dirload.NewInterrupt()
	res, err := Dispatch([]string{dir}, fl, opt, shared, interrupt, nil, nil)
	assert(err == nil, "Dispatch: %s", err)
	assert(res.NumError == 1, "expected 1 errored worker, got %d", res.NumError)
	assert(res.NumComplete == 0, "expected 0 completed workers, got %d", res.NumComplete)
	assert(res.Stats[0].NumRead == 0, "expected the good entry after the bad one to be skipped, got %d reads", res.Stats[0].NumRead)
	assert(res.Stats[0].NumRepeat == 0, "expected a failed pass not to increment NumRepeat, got %d", res.Stats[0].NumRepeat)
}

func TestDispatchReverseOrder(t *testing.T) {
	assert := newAsserter(t)

	dir := absDir(t)
	assert(os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644) == nil, "write a")
	assert(os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644) == nil, "write b")
	assert(os.WriteFile(filepath.Join(dir, "c.txt"), []byte("c"), 0o644) == nil, "write c")

	opt := dirload.DefaultOptions()
	opt.NumReader = 1
	opt.NumWriter = 0
	opt.NumRepeat = 1
	opt.StatOnly = true
	opt.PathIter = dirload.IterReverse

	fl, err := flist.BuildLists([]string{dir}, false)
	assert(err == nil, "BuildLists: %s", err)

	shared, err := dirload.NewSharedDir(false, opt.WritePathsType)
	assert(err == nil, "NewSharedDir: %s", err)

	interrupt := dirload.NewInterrupt()
	res, err := Dispatch([]string{dir}, fl, opt, shared, interrupt, nil, nil)
	assert(err == nil, "Dispatch: %s", err)
	assert(res.Stats[0].NumStat == 3, "expected 3 stats, got %d", res.Stats[0].NumStat)
}
