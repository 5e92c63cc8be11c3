// cleanup.go - write-path registry cleanup and cross-run collection
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
package dirio

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opencoff/dirload"
	"github.com/puzpuzpuz/xsync/v3"
)

// CleanupWritePaths unions every worker's write-path list and either
// keeps them (keep_write_paths) or unlinks all of them. It returns the
// remainder: paths that were not unlinked.
func CleanupWritePaths(writePaths [][]string, keep bool) (int, error) {
	var union []string
	for _, l := range writePaths {
		union = append(union, l...)
	}

	if keep {
		return len(union), nil
	}
	if err := UnlinkWritePaths(&union, -1); err != nil {
		return len(union), err
	}
	return len(union), nil
}

// UnlinkWritePaths sorts l lexicographically and deletes from the
// tail, deleting at most count entries (count <= 0 means all of them).
// Sorting plus tail-popping guarantees leaf-before-parent deletion
// order, since a child's path always sorts after its parent's. If a
// popped entry has already vanished (e.g. its parent directory was
// just removed), it is skipped rather than treated as an error.
func UnlinkWritePaths(l *[]string, count int) error {
	n := len(*l)
	if count > 0 && count < n {
		n = count
	}
	sort.Strings(*l)

	for n > 0 && len(*l) > 0 {
		f := (*l)[len(*l)-1]

		t, err := dirload.RawFileType(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				*l = (*l)[:len(*l)-1]
				continue
			}
			return err
		}

		switch t {
		case dirload.Dir:
			if err := os.Remove(f); err != nil {
				return &dirload.PathError{Op: "rmdir", Path: f, Err: err}
			}
		case dirload.Reg, dirload.Symlink:
			if err := os.Remove(f); err != nil {
				return &dirload.PathError{Op: "unlink", Path: f, Err: err}
			}
		default:
			return &dirload.InvalidInputError{Reason: "cannot unlink write path of unsupported type: " + f}
		}

		*l = (*l)[:len(*l)-1]
		n--
	}
	return nil
}

// CollectWritePaths recursively walks the deduplicated roots and
// returns every Dir/Reg/Symlink entry whose basename starts with the
// write-paths prefix - used for out-of-band cleanup across runs. Roots
// are scanned concurrently, one goroutine per root, via dirload.WorkPool;
// matches are accumulated in a lock-free map keyed by path since two
// roots can legitimately walk into the same path when one root is
// nested inside another.
func CollectWritePaths(roots []string, base string) ([]string, error) {
	prefix := dirload.WritePathsPrefix + "_" + base
	found := xsync.NewMapOf[string, struct{}]()

	dedup := dirload.RemoveDupStrings(roots)
	pool := dirload.NewWorkPool[string](len(dedup), func(_ int, root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			t, terr := dirload.RawFileType(path)
			if terr != nil {
				return nil
			}
			switch t {
			case dirload.Dir, dirload.Reg, dirload.Symlink:
				b, berr := dirload.Basename(path)
				if berr != nil {
					return nil
				}
				if strings.HasPrefix(b, prefix) {
					found.Store(path, struct{}{})
				}
			}
			return nil
		})
	})
	if err := pool.SubmitAll(dedup); err != nil {
		return nil, err
	}

	var l []string
	found.Range(func(k string, _ struct{}) bool {
		l = append(l, k)
		return true
	})
	return l, nil
}
