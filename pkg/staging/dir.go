package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// DirMode is applied to every directory the staging tree creates.
const DirMode fs.FileMode = 0o777

// EnsureDirectory creates path and its parents with DirMode when absent.
//
// An existing entry at path is accepted as is, whether or not it is a directory.
// Concurrent callers racing on the same missing directory all succeed: an
// "already exists" outcome from creation counts as success. The mode is
// re-applied after creation because the process umask narrows MkdirAll.
func EnsureDirectory(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(path, DirMode); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s: %v", ErrDirectory, path, err)
	}

	if err := os.Chmod(path, DirMode); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDirectory, path, err)
	}

	return nil
}
