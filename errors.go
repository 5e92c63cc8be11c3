// errors.go - descriptive errors for dirload
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

package dirload

import (
	"errors"
	"fmt"
)

// errAny returns true if the target error 'err' matches
// any in the list 'errs'; and returns false otherwise
func errAny(err error, errs ...error) bool {
	for _, e := range errs {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// PathError represents an error encountered while operating on a
// single filesystem path.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("dirload: %s %q: %s", e.Op, e.Path, e.Err.Error())
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// InvalidInputError represents a malformed option, an unusable path or
// symlink target, or any other input that fails validation.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("dirload: invalid input: %s", e.Reason)
}

var (
	_ error = &PathError{}
	_ error = &InvalidInputError{}
)

// ErrEmptyFileList is returned by flist.BuildLists/SplitByRootPrefix
// when a root's materialized list would be empty - iterating it would
// spin.
var ErrEmptyFileList = errors.New("dirload: empty file list")

// ErrNoPrefixMatch is returned when a file-list entry matches none of
// the configured input roots by prefix.
var ErrNoPrefixMatch = errors.New("dirload: file-list entry has no matching root prefix")
