// Package dirio implements the directory engine: the read_entry and
// write_entry primitives that act on a single path, buffer
// management, symlink-follow policy, inode creation, and the
// write-path lifecycle (registration, cleanup, cross-run collection).
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
	"io"
	"math/rand"
	"os"

	"github.com/opencoff/dirload"
	"github.com/opencoff/go-mmap"
)

// ReadWorker is the subset of a scheduler worker the directory engine
// needs for accounting: a read buffer and a statistics sink.
type ReadWorker struct {
	Buf   []byte
	Stats *dirload.Stats
}

// NewReadBuffer allocates a worker's read buffer.
func NewReadBuffer(size int) []byte {
	return make([]byte, size)
}

// ReadEntry is the read-path counterpart of the engine: classify f,
// account the stat, apply the dot filter and stat_only short-circuit,
// resolve one level of symlink indirection, and dispatch regular
// files to readFile.
func ReadEntry(f string, w *ReadWorker, opt *dirload.Options) error {
	assertFilePath(f)

	t, err := dirload.RawFileType(f)
	if err != nil {
		return err
	}
	w.Stats.IncNumStat()

	if opt.IgnoreDot && t != dirload.Dir && dirload.IsDotPath(f) {
		return nil
	}
	if opt.StatOnly {
		return nil
	}

	x := f
	if t == dirload.Symlink {
		link, err := dirload.ReadLink(x)
		if err != nil {
			return err
		}
		w.Stats.AddNumReadBytes(len(link))

		if dirload.IsAbsPath(link) {
			x = link
		} else {
			dir, err := dirload.DirPath(f)
			if err != nil {
				return err
			}
			x = dirload.JoinPath(dir, link)
		}

		t, err = dirload.FileTypeOf(x)
		if err != nil {
			return err
		}
		w.Stats.IncNumStat() // a symlink is accounted for twice
		if t == dirload.Symlink {
			panic("dirio: symlink chain did not resolve: " + x)
		}
		if !opt.FollowSymlink {
			return nil
		}
	}

	switch t {
	case dirload.Reg:
		if opt.ReadSize == -1 {
			return readFileViaMmap(x, w, opt)
		}
		return readFile(x, w, opt)
	case dirload.Dir, dirload.Device, dirload.Unsupported:
		return nil
	default:
		panic("dirio: unknown file type for " + x)
	}
}

// readFile reads f according to opt's tri-modal residual policy:
// -1 means read until EOF, 0 means a random length in [1,bufsize], and
// any positive value is a literal byte count.
func readFile(f string, w *ReadWorker, opt *dirload.Options) error {
	fp, err := os.Open(f)
	if err != nil {
		return &dirload.PathError{Op: "open", Path: f, Err: err}
	}
	defer fp.Close()

	b := w.Buf
	resid := opt.ReadSize
	if resid == 0 {
		resid = rand.Intn(len(b)) + 1
	}

	for {
		slice := b
		if resid > 0 && len(slice) > resid {
			slice = slice[:resid]
		}

		n, err := fp.Read(slice)
		w.Stats.IncNumRead()
		w.Stats.AddNumReadBytes(n)
		if n == 0 {
			if err != nil && !errors.Is(err, io.EOF) {
				return &dirload.PathError{Op: "read", Path: f, Err: err}
			}
			break
		}

		if resid > 0 {
			resid -= n
			if resid <= 0 {
				if opt.Debug && resid != 0 {
					panic("dirio: residual read should be exactly zero")
				}
				break
			}
		}
	}
	return nil
}

// readFileViaMmap is the fast path for unbounded reads (read_size ==
// -1) of a regular file: it uses mmap(2) instead of a buffered
// File.Read loop, falling back to the buffered path if mmap fails
// (e.g. zero-length files can't be mapped).
func readFileViaMmap(f string, w *ReadWorker, opt *dirload.Options) error {
	fp, err := os.Open(f)
	if err != nil {
		return &dirload.PathError{Op: "open", Path: f, Err: err}
	}
	defer fp.Close()

	n, err := mmap.Reader(fp, func(b []byte) error {
		w.Stats.IncNumRead()
		w.Stats.AddNumReadBytes(len(b))
		return nil
	})
	if err != nil {
		return readFile(f, w, opt)
	}
	_ = n
	return nil
}

func assertFilePath(f string) {
	if !dirload.IsAbsPath(f) {
		panic("dirio: path is not absolute: " + f)
	}
	if len(f) > 1 && f[len(f)-1] == '/' {
		panic("dirio: path must not end with '/': " + f)
	}
}
