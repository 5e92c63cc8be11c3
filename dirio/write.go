// write.go - the write path of the directory engine
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
	"fmt"
	"math/rand"
	"os"

	"github.com/opencoff/dirload"
)

// WriteWorker is the subset of a scheduler worker the write path
// needs: a per-worker write buffer, its statistics sink, its global
// id, and the registry of paths it has created so far.
type WriteWorker struct {
	Gid          int
	Buf          []byte
	Stats        *dirload.Stats
	WritePaths   []string
	WriteCounter uint64
}

// NewWriteBuffer allocates a worker's write buffer, pre-filled with
// 'A' bytes like the original implementation's write buffer.
func NewWriteBuffer(size int) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = 0x41
	}
	return b
}

// WriteEntry is the write-path counterpart of the engine: classify f,
// account the stat, apply the dot filter, and dispatch to writeFile
// with the right (parent, source) pair.
func WriteEntry(f string, w *WriteWorker, dir *dirload.SharedDir, opt *dirload.Options) error {
	assertFilePath(f)

	t, err := dirload.RawFileType(f)
	if err != nil {
		return err
	}
	w.Stats.IncNumStat()

	if opt.IgnoreDot && t != dirload.Dir && dirload.IsDotPath(f) {
		return nil
	}

	switch t {
	case dirload.Dir:
		return writeFile(f, f, w, dir, opt)
	case dirload.Reg:
		parent, err := dirload.DirPath(f)
		if err != nil {
			return err
		}
		return writeFile(parent, f, w, dir, opt)
	default:
		return nil
	}
}

// writeFile creates one write-path under parent (sourced from an
// existing entry, source, when the new kind is a symlink or hardlink)
// and, for regular-file kinds, writes content to it per opt's
// tri-modal residual policy.
func writeFile(parent, source string, w *WriteWorker, dir *dirload.SharedDir, opt *dirload.Options) error {
	if IsWriteDone(w, opt) {
		return nil
	}

	newBase := fmt.Sprintf("%s_gid%d_%s_%d", opt.WritePathsBaseName(), w.Gid, dir.RunTimestamp, w.WriteCounter)
	w.WriteCounter++
	newPath := dirload.JoinPath(parent, newBase)

	kind := dir.WritePathsType[rand.Intn(len(dir.WritePathsType))]
	if err := createInode(source, newPath, kind); err != nil {
		return err
	}
	if opt.FsyncWritePaths {
		if err := fsyncPath(newPath); err != nil {
			return err
		}
	}
	if opt.DirsyncWritePaths {
		if err := fsyncPath(parent); err != nil {
			return err
		}
	}

	w.WritePaths = append(w.WritePaths, newPath)
	if kind != dirload.KindReg {
		w.Stats.IncNumWrite()
		return nil
	}

	fp, err := os.OpenFile(newPath, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &dirload.PathError{Op: "open-write", Path: newPath, Err: err}
	}
	defer fp.Close()

	b := w.Buf
	resid := opt.WriteSize
	switch {
	case resid < 0:
		w.Stats.IncNumWrite()
		return nil
	case resid == 0:
		resid = rand.Intn(len(b)) + 1
	}

	if opt.TruncateWritePaths {
		if err := fp.Truncate(int64(resid)); err != nil {
			return &dirload.PathError{Op: "truncate", Path: newPath, Err: err}
		}
		w.Stats.IncNumWrite()
	} else {
		for {
			slice := b
			if resid > 0 && len(slice) > resid {
				slice = slice[:resid]
			}
			if opt.RandomWriteData && len(dir.RandomData) > 0 {
				half := len(dir.RandomData) / 2
				off := rand.Intn(half)
				copy(slice, dir.RandomData[off:off+len(slice)])
			}

			n, err := fp.Write(slice)
			w.Stats.IncNumWrite()
			w.Stats.AddNumWriteBytes(n)
			if err != nil {
				return &dirload.PathError{Op: "write", Path: newPath, Err: err}
			}

			resid -= n
			if resid <= 0 {
				if opt.Debug && resid != 0 {
					panic("dirio: residual write should be exactly zero")
				}
				break
			}
		}
	}

	if opt.FsyncWritePaths {
		if err := fp.Sync(); err != nil {
			return &dirload.PathError{Op: "fsync", Path: newPath, Err: err}
		}
	}
	return nil
}

// createInode materializes one ephemeral filesystem object. A
// requested hardlink that degrades (its source isn't a regular file)
// creates a directory instead.
func createInode(source, newPath string, kind dirload.WritePathKind) error {
	if kind == dirload.KindHardlink {
		t, err := dirload.RawFileType(source)
		if err != nil {
			return err
		}
		if t == dirload.Reg {
			if err := os.Link(source, newPath); err != nil {
				return &dirload.PathError{Op: "link", Path: newPath, Err: err}
			}
			return nil
		}
		kind = dirload.KindDir
	}

	switch kind {
	case dirload.KindDir:
		if err := os.Mkdir(newPath, 0o755); err != nil {
			return &dirload.PathError{Op: "mkdir", Path: newPath, Err: err}
		}
	case dirload.KindReg:
		fp, err := os.OpenFile(newPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			return &dirload.PathError{Op: "create", Path: newPath, Err: err}
		}
		fp.Close()
	case dirload.KindSymlink:
		if err := os.Symlink(source, newPath); err != nil {
			return &dirload.PathError{Op: "symlink", Path: newPath, Err: err}
		}
	}
	return nil
}

func fsyncPath(f string) error {
	fp, err := os.Open(f)
	if err != nil {
		return &dirload.PathError{Op: "fsync-open", Path: f, Err: err}
	}
	defer fp.Close()
	if err := fp.Sync(); err != nil {
		return &dirload.PathError{Op: "fsync", Path: f, Err: err}
	}
	return nil
}

// IsWriteDone reports whether w has reached its write-path budget. A
// zero or negative budget means unbounded.
func IsWriteDone(w *WriteWorker, opt *dirload.Options) bool {
	if opt.NumWritePaths <= 0 {
		return false
	}
	return len(w.WritePaths) >= opt.NumWritePaths
}
