package dirload

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseWritePathTypes(t *testing.T) {
	assert := newAsserter(t)

	kinds, err := ParseWritePathTypes("drsl")
	assert(err == nil, "unexpected error: %s", err)
	assert(len(kinds) == 4, "expected 4 kinds, got %d", len(kinds))
	assert(kinds[0] == KindDir, "first kind should be Dir")
	assert(kinds[1] == KindReg, "second kind should be Reg")
	assert(kinds[2] == KindSymlink, "third kind should be Symlink")
	assert(kinds[3] == KindHardlink, "fourth kind should be Hardlink")

	_, err = ParseWritePathTypes("")
	assert(err != nil, "expected error for empty string")

	_, err = ParseWritePathTypes("x")
	assert(err != nil, "expected error for invalid letter")
}

func TestClassify(t *testing.T) {
	assert := newAsserter(t)

	dir := t.TempDir()
	reg := filepath.Join(dir, "reg")
	assert(os.WriteFile(reg, []byte("hi"), 0o644) == nil, "create regular file")

	tp, err := RawFileType(dir)
	assert(err == nil, "unexpected error: %s", err)
	assert(tp == Dir, "expected Dir, got %s", tp)

	tp, err = RawFileType(reg)
	assert(err == nil, "unexpected error: %s", err)
	assert(tp == Reg, "expected Reg, got %s", tp)

	link := filepath.Join(dir, "link")
	assert(os.Symlink(reg, link) == nil, "create symlink")

	tp, err = RawFileType(link)
	assert(err == nil, "unexpected error: %s", err)
	assert(tp == Symlink, "expected Symlink, got %s", tp)

	tp, err = FileTypeOf(link)
	assert(err == nil, "unexpected error: %s", err)
	assert(tp == Reg, "expected resolved type Reg, got %s", tp)
}
