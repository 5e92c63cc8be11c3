// path.go - path utilities
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
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// AbsPath returns a lexically-cleaned absolute path for f. It does not
// resolve symlinks and works for paths that don't exist.
func AbsPath(f string) (string, error) {
	a, err := filepath.Abs(f)
	if err != nil {
		return "", &PathError{"abspath", f, err}
	}
	return filepath.Clean(a), nil
}

// DirPath returns the parent directory of f.
func DirPath(f string) (string, error) {
	d := filepath.Dir(f)
	if d == f {
		return "", &PathError{"dirpath", f, os.ErrNotExist}
	}
	return d, nil
}

// Basename returns the last path element of f.
func Basename(f string) (string, error) {
	b := filepath.Base(f)
	if b == "/" || b == "." {
		return "", &PathError{"basename", f, os.ErrNotExist}
	}
	return b, nil
}

// JoinPath joins a and b lexically - it does not resolve ".." entries,
// matching the original implementation's Path::join semantics.
func JoinPath(a, b string) string {
	if strings.HasSuffix(a, "/") {
		return a + b
	}
	return a + "/" + b
}

// IsAbsPath reports whether f begins with a "/".
func IsAbsPath(f string) bool {
	return len(f) > 0 && f[0] == '/'
}

// ReadLink returns the raw target of the symlink f.
func ReadLink(f string) (string, error) {
	p, err := os.Readlink(f)
	if err != nil {
		return "", &PathError{"readlink", f, err}
	}
	if !utf8.ValidString(p) {
		return "", &InvalidInputError{fmt.Sprintf("symlink target of %q is not valid UTF-8", f)}
	}
	return p, nil
}

// IsDotPath reports whether f's basename begins with "." or the path
// contains "/." anywhere. This intentionally misclassifies a trailing
// "/./" segment as a dot-path - it is preserved as-is rather than
// special-cased.
func IsDotPath(f string) bool {
	if b, err := Basename(f); err == nil && strings.HasPrefix(b, ".") {
		return true
	}
	return strings.Contains(f, "/.")
}

// IsDirWritable probes whether dir is writable by creating and
// removing a uniquely-named child directory. It returns false (not an
// error) on permission failure and propagates any other error.
func IsDirWritable(dir string) (bool, error) {
	t, err := RawFileType(dir)
	if err != nil {
		return false, err
	}
	if t != Dir {
		return false, &InvalidInputError{fmt.Sprintf("%q is not a directory", dir)}
	}

	probe := JoinPath(dir, "dirload_write_test_"+timeString())
	if err := os.Mkdir(probe, 0o755); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return false, nil
		}
		return false, &PathError{"mkdir", probe, err}
	}
	if err := os.Remove(probe); err != nil {
		return false, &PathError{"rmdir", probe, err}
	}
	return true, nil
}

// timeString formats the current time as YYYYMMDDhhmmss, matching the
// run-timestamp embedded in write-path names.
func timeString() string {
	return time.Now().Format("20060102150405")
}

// RemoveDupStrings returns input with duplicate entries removed,
// preserving the first occurrence's order.
func RemoveDupStrings(input []string) []string {
	seen := make(map[string]bool, len(input))
	out := make([]string, 0, len(input))
	for _, s := range input {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
