// filetype.go - file type classification
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
	"fmt"
	"io/fs"
	"os"
)

// FileType is the coarse classification dirload cares about for any
// filesystem entry.
type FileType int

const (
	Dir FileType = iota
	Reg
	Symlink
	Device
	Unsupported
)

func (t FileType) String() string {
	switch t {
	case Dir:
		return "dir"
	case Reg:
		return "reg"
	case Symlink:
		return "symlink"
	case Device:
		return "device"
	default:
		return "unsupported"
	}
}

// classify maps a raw fs.FileMode to a FileType.
func classify(m fs.FileMode) FileType {
	switch {
	case m.IsDir():
		return Dir
	case m.IsRegular():
		return Reg
	case m&os.ModeSymlink != 0:
		return Symlink
	case m&(os.ModeDevice|os.ModeCharDevice) != 0:
		return Device
	default:
		return Unsupported
	}
}

// RawFileType classifies f without following a trailing symlink.
func RawFileType(f string) (FileType, error) {
	fi, err := os.Lstat(f)
	if err != nil {
		return Unsupported, &PathError{"lstat", f, err}
	}
	return classify(fi.Mode()), nil
}

// FileTypeOf classifies f, following symlinks.
func FileTypeOf(f string) (FileType, error) {
	fi, err := os.Stat(f)
	if err != nil {
		return Unsupported, &PathError{"stat", f, err}
	}
	return classify(fi.Mode()), nil
}

// WritePathKind is the kind of ephemeral filesystem object a writer
// may create.
type WritePathKind int

const (
	KindDir WritePathKind = iota
	KindReg
	KindSymlink
	KindHardlink
)

// ParseWritePathTypes decodes a string over {d,r,s,l} into the
// ordered multiset of WritePathKind the writer picks from.
func ParseWritePathTypes(s string) ([]WritePathKind, error) {
	if len(s) == 0 {
		return nil, &InvalidInputError{"empty write paths type"}
	}
	kinds := make([]WritePathKind, 0, len(s))
	for _, c := range s {
		var k WritePathKind
		switch c {
		case 'd':
			k = KindDir
		case 'r':
			k = KindReg
		case 's':
			k = KindSymlink
		case 'l':
			k = KindHardlink
		default:
			return nil, &InvalidInputError{fmt.Sprintf("invalid write paths type %q", c)}
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
