package flist

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
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

func mkfile(t *testing.T, fn string) {
	t.Helper()
	if err := os.WriteFile(fn, []byte("hello"), 0o644); err != nil {
		t.Fatalf("mkfile %s: %s", fn, err)
	}
}

func TestBuildList(t *testing.T) {
	assert := newAsserter(t)

	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "a.txt"))
	mkfile(t, filepath.Join(dir, "b.txt"))
	assert(os.Mkdir(filepath.Join(dir, "sub"), 0o755) == nil, "mkdir sub")
	mkfile(t, filepath.Join(dir, "sub", "c.txt"))
	mkfile(t, filepath.Join(dir, ".dot.txt"))

	l, err := BuildList(dir, false)
	assert(err == nil, "unexpected error: %s", err)
	assert(len(l) == 4, "expected 4 entries, got %d: %v", len(l), l)

	l, err = BuildList(dir, true)
	assert(err == nil, "unexpected error: %s", err)
	assert(len(l) == 3, "expected 3 entries with ignore_dot, got %d: %v", len(l), l)
}

func TestCreateListAndLoadList(t *testing.T) {
	assert := newAsserter(t)

	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "a.txt"))
	mkfile(t, filepath.Join(dir, "b.txt"))

	flistFile := filepath.Join(t.TempDir(), "out.flist")
	assert(CreateList([]string{dir}, flistFile, false, false) == nil, "CreateList should succeed")

	// refuses to overwrite without force
	err := CreateList([]string{dir}, flistFile, false, false)
	assert(err != nil, "CreateList should refuse to overwrite without force")

	assert(CreateList([]string{dir}, flistFile, false, true) == nil, "CreateList with force should succeed")

	entries, err := LoadList(flistFile)
	assert(err == nil, "unexpected error: %s", err)

	want, err := BuildList(dir, false)
	assert(err == nil, "unexpected error: %s", err)
	sort.Strings(want)

	assert(len(entries) == len(want), "expected %d entries, got %d", len(want), len(entries))
	for i := range want {
		assert(entries[i] == want[i], "entry %d: got %q want %q", i, entries[i], want[i])
	}
}

func TestSplitByRootPrefix(t *testing.T) {
	assert := newAsserter(t)

	roots := []string{"/a", "/b"}
	entries := []string{"/a/x", "/a/y", "/b/z"}
	fls, err := SplitByRootPrefix(entries, roots)
	assert(err == nil, "unexpected error: %s", err)
	assert(len(fls[0]) == 2, "expected 2 entries under /a, got %d", len(fls[0]))
	assert(len(fls[1]) == 1, "expected 1 entry under /b, got %d", len(fls[1]))

	_, err = SplitByRootPrefix([]string{"/c/x"}, roots)
	assert(err != nil, "expected error for entry with no matching root")

	_, err = SplitByRootPrefix([]string{"/a/x"}, roots)
	assert(err != nil, "expected error for empty flist under /b")
}

func TestBuildLists(t *testing.T) {
	assert := newAsserter(t)

	d1, d2 := t.TempDir(), t.TempDir()
	mkfile(t, filepath.Join(d1, "a.txt"))
	mkfile(t, filepath.Join(d2, "b.txt"))

	fls, err := BuildLists([]string{d1, d2}, false)
	assert(err == nil, "unexpected error: %s", err)
	assert(len(fls) == 2, "expected 2 lists, got %d", len(fls))
	assert(len(fls[0]) == 1, "expected 1 entry in fls[0]")
	assert(len(fls[1]) == 1, "expected 1 entry in fls[1]")
}
