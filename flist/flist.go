// Package flist builds, loads, and persists the pre-materialized file
// lists that non-walk path-iteration modes iterate over.
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
package flist

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/opencoff/dirload"
)

// BuildList walks root and returns every absolute path classified as
// Reg or Symlink. Dir, Device, and Unsupported entries are skipped.
// When ignoreDot is set, non-directory entries whose path passes
// dirload.IsDotPath are also skipped.
func BuildList(root string, ignoreDot bool) ([]string, error) {
	var l []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// a vanished or unreadable entry is not fatal to the
			// overall scan - skip it and keep walking.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		t, terr := dirload.RawFileType(path)
		if terr != nil {
			return nil
		}

		if ignoreDot && t != dirload.Dir && dirload.IsDotPath(path) {
			return nil
		}

		switch t {
		case dirload.Reg, dirload.Symlink:
			l = append(l, path)
		}
		return nil
	})
	if err != nil {
		return nil, &fs.PathError{Op: "walk", Path: root, Err: err}
	}
	return l, nil
}

// LoadList reads one absolute path per line from file, preserving
// order.
func LoadList(file string) ([]string, error) {
	fp, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	var l []string
	sc := bufio.NewScanner(fp)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		l = append(l, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

// CreateList concatenates BuildList over the deduplicated roots, sorts
// the union, and writes one absolute path per line to file. It refuses
// to overwrite an existing file unless force is set.
func CreateList(roots []string, file string, ignoreDot, force bool) error {
	if _, err := os.Stat(file); err == nil {
		if !force {
			return &dirload.InvalidInputError{Reason: "flist file already exists: " + file}
		}
		if err := os.Remove(file); err != nil {
			return err
		}
	}

	var fl []string
	for _, root := range dirload.RemoveDupStrings(roots) {
		l, err := BuildList(root, ignoreDot)
		if err != nil {
			return err
		}
		fl = append(fl, l...)
	}
	sort.Strings(fl)

	fp, err := os.Create(file)
	if err != nil {
		return err
	}
	defer fp.Close()

	w := bufio.NewWriter(fp)
	for _, s := range fl {
		if _, err := w.WriteString(s + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// listJob is one unit of work for the concurrent multi-root builder:
// scan roots[index] and stash the result at result[index].
type listJob struct {
	index int
	root  string
}

// BuildLists scans every root concurrently (one goroutine per root,
// via dirload.WorkPool) and returns one file list per root, in root
// order. Every root's list must be non-empty.
func BuildLists(roots []string, ignoreDot bool) ([][]string, error) {
	result := make([][]string, len(roots))

	pool := dirload.NewWorkPool[listJob](len(roots), func(_ int, job listJob) error {
		l, err := BuildList(job.root, ignoreDot)
		if err != nil {
			return err
		}
		if len(l) == 0 {
			return dirload.ErrEmptyFileList
		}
		result[job.index] = l
		return nil
	})

	jobs := make([]listJob, len(roots))
	for i, root := range roots {
		jobs[i] = listJob{index: i, root: root}
	}
	if err := pool.SubmitAll(jobs); err != nil {
		return nil, err
	}
	return result, nil
}

// SplitByRootPrefix partitions the entries loaded from a file-list
// file into one slice per input root, matched by string prefix. Every
// entry must match at least one root's prefix, and every resulting
// slice must be non-empty - empty file lists would make non-walk
// iteration spin.
func SplitByRootPrefix(entries, roots []string) ([][]string, error) {
	fls := make([][]string, len(roots))
	for _, s := range entries {
		found := false
		for i, root := range roots {
			if len(s) >= len(root) && s[:len(root)] == root {
				fls[i] = append(fls[i], s)
				found = true
				// no break: s can belong to multiple roots when one
				// root is a prefix of another.
			}
		}
		if !found {
			return nil, dirload.ErrNoPrefixMatch
		}
	}
	for _, fl := range fls {
		if len(fl) == 0 {
			return nil, dirload.ErrEmptyFileList
		}
	}
	return fls, nil
}
