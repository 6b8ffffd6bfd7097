package templating

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/byte4ever/fml/loader"
	"github.com/byte4ever/fml/syntax"
	"github.com/byte4ever/fml/value"
)

// StdinName is the file name reported for a template read
// from standard input.
const StdinName = "<stdin>"

// Options tunes a single ParseFML call.
type Options struct {
	// BaseDir is the directory the top-level path is
	// resolved against. Empty means the working directory.
	BaseDir string
	// TagStyle is "xml" (the default) or "bbcode".
	TagStyle string
}

// Engine renders FML files. The zero value reads the host
// file system, uses xml tags and resolves includes one at
// a time.
type Engine struct {
	// BaseDir is the directory top-level paths are resolved
	// against.
	BaseDir string
	// TagStyle is "xml" (the default) or "bbcode".
	TagStyle string
	// Loader reads template files. loader.Dir when nil.
	Loader loader.Loader
	// Parallelism bounds how many sibling includes are
	// rendered at once. Values below 2 render them in order
	// on the calling goroutine.
	Parallelism int
}

// ParseFML renders the FML file at path with vars as the
// variable context.
func ParseFML(
	ctx context.Context,
	path string,
	vars *value.Object,
	opts Options,
) (string, error) {
	en := Engine{BaseDir: opts.BaseDir, TagStyle: opts.TagStyle}

	return en.ParseFile(ctx, path, vars)
}

// ParseFile renders the file at path, resolved against
// en.BaseDir. Includes resolve against the directory of the
// file that contains them. The final line break of every
// loaded file is dropped.
func (en *Engine) ParseFile(
	ctx context.Context,
	path string,
	vars *value.Object,
) (string, error) {
	rd, err := en.renderer(vars)
	if err != nil {
		return "", err
	}

	return rd.file(ctx, frame{}, path, en.BaseDir, "")
}

// RenderString renders src as if it were the content of a
// file called name located in dir. src is rendered as is;
// nothing is trimmed from its end.
func (en *Engine) RenderString(
	ctx context.Context,
	name string,
	src string,
	vars *value.Object,
	dir string,
) (string, error) {
	rd, err := en.renderer(vars)
	if err != nil {
		return "", err
	}

	return rd.source(ctx, frame{}.enter(name, dir), src)
}

// Expand renders the template at tplPath and writes the
// result to outPath. An empty tplPath reads the template
// from stdin and an empty outPath writes to stdout. The
// output file is replaced atomically; executable selects
// mode 0755 instead of 0644.
func (en *Engine) Expand(
	ctx context.Context,
	tplPath string,
	outPath string,
	vars *value.Object,
	executable bool,
) error {
	const errCtx = "expanding template"

	var (
		out string
		err error
	)

	if tplPath == "" {
		out, err = en.expandStdin(ctx, vars)
	} else {
		out, err = en.ParseFile(ctx, tplPath, vars)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := writeOutput(outPath, out, executable); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func (en *Engine) expandStdin(ctx context.Context, vars *value.Object) (string, error) {
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}

	dir := en.BaseDir
	if dir == "" {
		dir = "."
	}

	return en.RenderString(ctx, StdinName, trimFinalNewline(string(content)), vars, dir)
}

// writeOutput writes out to outPath, or to stdout when
// outPath is empty. A file that already holds out is left
// in place.
func writeOutput(outPath, out string, executable bool) error {
	const errCtx = "writing output"

	if outPath == "" {
		if _, err := io.WriteString(os.Stdout, out); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		return nil
	}

	same, err := unchanged(outPath, out)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if same {
		slog.Debug("output unchanged", "path", outPath)
	} else if err := atomic.WriteFile(outPath, strings.NewReader(out)); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	var perm os.FileMode = 0o644
	if executable {
		perm = 0o755
	}

	if err := os.Chmod(outPath, perm); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func (en *Engine) renderer(vars *value.Object) (*renderer, error) {
	const errCtx = "configuring renderer"

	style, err := syntax.LookupStyle(en.TagStyle)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	ld := en.Loader
	if ld == nil {
		ld = loader.Dir{}
	}

	if vars == nil {
		vars = value.NewObject()
	}

	return &renderer{
		loader:      ld,
		style:       style,
		vars:        vars,
		parallelism: en.Parallelism,
	}, nil
}
