package dirload

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsDotPath(t *testing.T) {
	assert := newAsserter(t)

	dotList := []string{
		".git",
		"..git",
		"/path/to/.",
		"/path/to/.git/xxx",
		"/path/to/.git/.xxx",
		"/path/to/..git/xxx",
		"/path/to/..git/.xxx",
	}
	for i, f := range dotList {
		assert(IsDotPath(f), "%d: %q should be a dot path", i, f)
	}

	nonDotList := []string{
		"/",
		"xxx",
		"xxx.",
		"xxx..",
		"/path/to/xxx",
		"/path/to/xxx.",
		"/path/to/x.xxx.",
		"/path/to/git./xxx",
		"/path/to/git./xxx.",
		"/path/to/git./x.xxx.",
	}
	for i, f := range nonDotList {
		assert(!IsDotPath(f), "%d: %q should not be a dot path", i, f)
	}
}

func TestIsDirWritable(t *testing.T) {
	assert := newAsserter(t)

	dir := t.TempDir()
	ok, err := IsDirWritable(dir)
	assert(err == nil, "unexpected error: %s", err)
	assert(ok, "%s should be writable", dir)

	fn := filepath.Join(dir, "regular")
	assert(os.WriteFile(fn, nil, 0o644) == nil, "create regular file")

	_, err = IsDirWritable(fn)
	assert(err != nil, "expected error probing a non-directory")
}

func TestRemoveDupStrings(t *testing.T) {
	assert := newAsserter(t)

	in := []string{"a", "b", "a", "c", "b"}
	out := RemoveDupStrings(in)
	assert(len(out) == 3, "expected 3 unique entries, got %d", len(out))
	assert(out[0] == "a" && out[1] == "b" && out[2] == "c", "unexpected order: %v", out)
}

func TestJoinPath(t *testing.T) {
	assert := newAsserter(t)

	assert(JoinPath("/a/b", "c") == "/a/b/c", "join without trailing slash")
	assert(JoinPath("/a/b/", "c") == "/a/b/c", "join with trailing slash")
}
