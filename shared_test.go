package dirload

import "testing"

func TestNewSharedDirNoRandom(t *testing.T) {
	assert := newAsserter(t)

	d, err := NewSharedDir(false, []WritePathKind{KindDir, KindReg})
	assert(err == nil, "unexpected error: %s", err)
	assert(d.RandomData == nil, "random data should be nil when not requested")
	assert(len(d.RunTimestamp) > 0, "run timestamp should be set")
}

func TestNewSharedDirRandom(t *testing.T) {
	assert := newAsserter(t)

	d, err := NewSharedDir(true, []WritePathKind{KindDir, KindReg})
	assert(err == nil, "unexpected error: %s", err)
	assert(len(d.RandomData) == 2*MaxBufferSize, "expected %d random bytes, got %d", 2*MaxBufferSize, len(d.RandomData))

	for i, b := range d.RandomData {
		assert(b >= 32 && b < 128, "byte %d out of [32,128) range: %d", i, b)
	}
}

func TestNewSharedDirRejectsEmptyTypes(t *testing.T) {
	assert := newAsserter(t)

	_, err := NewSharedDir(false, nil)
	assert(err != nil, "expected error for empty write paths type")
}
