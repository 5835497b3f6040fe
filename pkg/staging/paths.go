package staging

import (
	"path"
	"path/filepath"
	"strings"
)

// Directory returns baseDir/systemName/YYYYMMDD for the source's current date.
func (s Source) Directory(baseDir, systemName string) string {
	return filepath.Join(baseDir, systemName, s.DateStamp())
}

// FileName derives the staged file name from an original client file name.
// Unless overwrite is set, the base name is suffixed with _<unix><random>
// so repeated uploads of the same name do not collide.
func (s Source) FileName(originalName string, overwrite bool) (string, error) {
	base, ext := SplitName(originalName)
	return s.compose(base, ext, overwrite)
}

// FileNameWithExt derives a staged file name like FileName but uses ext
// when the original name carries no extension.
func (s Source) FileNameWithExt(originalName, ext string, overwrite bool) (string, error) {
	base, own := SplitName(originalName)
	if own == "" {
		own = ext
	}
	return s.compose(base, own, overwrite)
}

func (s Source) compose(base, ext string, overwrite bool) (string, error) {
	if base == "" {
		return "", ErrUnresolvableName
	}

	name := base
	if !overwrite {
		name += "_" + s.Suffix()
	}
	if ext != "" {
		name += "." + ext
	}
	return name, nil
}

// SplitName returns the base name and extension (without the dot) of name.
// Directory components are discarded. A leading dot marks a hidden file, not
// an extension.
func SplitName(name string) (base, ext string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}

	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == ".." {
		return "", ""
	}

	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return name, ""
	}
	return name[:dot], name[dot+1:]
}
