package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is matched by every *NotFoundError.
var ErrNotFound = errors.New("file not found")

// NotFoundError reports a file that does not exist. Path is
// the resolved path that was tried.
type NotFoundError struct {
	Path string
	Err  error
}

func (ne *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound, ne.Path)
}

// Is reports whether target is ErrNotFound.
func (ne *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Unwrap returns the underlying file system error.
func (ne *NotFoundError) Unwrap() error {
	return ne.Err
}

// File is the content of a loaded template together with
// the resolved path it was read from. Includes found in
// Content resolve against Dir, the directory of Path in
// the loader's own path syntax.
type File struct {
	Path    string
	Dir     string
	Content string
}

// Loader reads template files. name is resolved against
// baseDir unless it is absolute. A missing file yields an
// error matching ErrNotFound.
type Loader interface {
	Load(ctx context.Context, name, baseDir string) (File, error)
}

// Dir loads files from the host file system.
type Dir struct{}

// Load reads name relative to baseDir.
func (Dir) Load(ctx context.Context, name, baseDir string) (File, error) {
	const errCtx = "loading file"

	if err := ctx.Err(); err != nil {
		return File{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	pa := ResolvePath(name, baseDir)

	content, err := os.ReadFile(pa) //nolint:gosec // template paths are caller-provided
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return File{}, &NotFoundError{Path: pa, Err: err}
		}

		return File{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return File{Path: pa, Dir: filepath.Dir(pa), Content: string(content)}, nil
}

// ResolvePath joins name to baseDir using host path rules.
// Absolute names are only cleaned.
func ResolvePath(name, baseDir string) string {
	if filepath.IsAbs(name) || baseDir == "" {
		return filepath.Clean(name)
	}

	return filepath.Join(baseDir, name)
}

// FS loads files from an io/fs file system such as
// embed.FS or os.DirFS. Paths are slash separated and
// rooted at the file system root; a leading "/" is
// ignored.
type FS struct {
	FS fs.FS
}

// Load reads name relative to baseDir inside the file
// system.
func (fl FS) Load(ctx context.Context, name, baseDir string) (File, error) {
	const errCtx = "loading file"

	if err := ctx.Err(); err != nil {
		return File{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	pa := name
	if !path.IsAbs(name) {
		pa = path.Join(baseDir, name)
	}

	pa = strings.TrimPrefix(path.Clean(pa), "/")
	if pa == "" {
		pa = "."
	}

	if !fs.ValidPath(pa) {
		return File{}, &NotFoundError{Path: pa, Err: fs.ErrInvalid}
	}

	content, err := fs.ReadFile(fl.FS, pa)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return File{}, &NotFoundError{Path: pa, Err: err}
		}

		return File{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return File{Path: pa, Dir: path.Dir(pa), Content: string(content)}, nil
}
