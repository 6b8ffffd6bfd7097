package templating

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/byte4ever/fml/loader"
	"github.com/byte4ever/fml/syntax"
	"github.com/byte4ever/fml/value"
)

// renderer holds what stays fixed for one top-level
// render. It has no mutable state, so concurrent include
// renders can share it.
type renderer struct {
	loader      loader.Loader
	style       syntax.Style
	vars        *value.Object
	parallelism int
}

// frame describes the file being rendered.
type frame struct {
	file  string
	dir   string
	chain []string
}

func (fr frame) enter(file, dir string) frame {
	chain := make([]string, len(fr.chain), len(fr.chain)+1)
	copy(chain, fr.chain)

	return frame{file: file, dir: dir, chain: append(chain, file)}
}

// source parses src and renders it within fr.
func (rd *renderer) source(ctx context.Context, fr frame, src string) (string, error) {
	nodes, err := syntax.ParseString(src, rd.style)
	if err != nil {
		var se *syntax.SyntaxError
		if errors.As(err, &se) {
			return "", se.WithFile(fr.file)
		}

		return "", fmt.Errorf("parsing %s: %w", fr.file, err)
	}

	var sb strings.Builder
	if err := rd.nodes(ctx, fr, nodes, &sb); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func (rd *renderer) nodes(
	ctx context.Context,
	fr frame,
	nodes []syntax.Node,
	sb *strings.Builder,
) error {
	prefetched := rd.prefetch(ctx, fr, nodes)

	for idx, nd := range nodes {
		switch tn := nd.(type) {
		case *syntax.Text:
			sb.WriteString(tn.Text)
		case *syntax.Placeholder:
			if err := rd.placeholder(fr, tn, sb); err != nil {
				return err
			}
		case *syntax.Tag:
			if err := rd.tag(ctx, fr, tn, sb); err != nil {
				return err
			}
		case *syntax.Include:
			res, ok := prefetched.result(ctx, idx)
			if !ok {
				res.out, res.err = rd.include(ctx, fr, tn)
			}

			if res.err != nil {
				return res.err
			}

			sb.WriteString(res.out)
		default:
			return fmt.Errorf("rendering %s: unexpected node %T", fr.file, nd)
		}
	}

	return nil
}

func (rd *renderer) placeholder(
	fr frame,
	ph *syntax.Placeholder,
	sb *strings.Builder,
) error {
	val, err := value.Resolve(rd.vars, ph.Path)
	if err != nil {
		return &UndefinedVariableError{
			Variable: ph.Path,
			File:     fr.file,
			Line:     ph.Pos.Line,
			Col:      ph.Pos.Col,
			Err:      err,
		}
	}

	sb.WriteString(value.Format(val))

	return nil
}

// tag writes the tag delimiters on their own lines around
// the rendered children. A line break hugging either
// delimiter in the source belongs to the delimiter.
func (rd *renderer) tag(
	ctx context.Context,
	fr frame,
	tg *syntax.Tag,
	sb *strings.Builder,
) error {
	sb.WriteString(rd.style.OpenTag(tg.Name))
	sb.WriteByte('\n')

	if err := rd.nodes(ctx, fr, trimEdges(tg.Children), sb); err != nil {
		return err
	}

	sb.WriteByte('\n')
	sb.WriteString(rd.style.CloseTag(tg.Name))

	return nil
}

// trimEdges returns children without the line break that
// follows the opening delimiter and the one that precedes
// the closing delimiter. The tree itself is not modified.
func trimEdges(children []syntax.Node) []syntax.Node {
	if len(children) == 0 {
		return children
	}

	out := append([]syntax.Node(nil), children...)

	if first, ok := out[0].(*syntax.Text); ok {
		out[0] = &syntax.Text{Pos: first.Pos, Text: trimLeadingBreak(first.Text)}
	}

	last := len(out) - 1
	if tail, ok := out[last].(*syntax.Text); ok {
		out[last] = &syntax.Text{Pos: tail.Pos, Text: trimTrailingBreak(tail.Text)}
	}

	return out
}

// trimLeadingBreak drops blanks followed by one line
// break at the start of s.
func trimLeadingBreak(s string) string {
	rest := strings.TrimLeft(s, " \t")

	switch {
	case strings.HasPrefix(rest, "\r\n"):
		return rest[2:]
	case strings.HasPrefix(rest, "\n"):
		return rest[1:]
	}

	return s
}

// trimTrailingBreak drops one line break followed by
// blanks at the end of s.
func trimTrailingBreak(s string) string {
	rest := strings.TrimRight(s, " \t")

	switch {
	case strings.HasSuffix(rest, "\r\n"):
		return rest[:len(rest)-2]
	case strings.HasSuffix(rest, "\n"):
		return rest[:len(rest)-1]
	}

	return s
}

// trimFinalNewline drops the end-of-line marker of the
// last line of a file.
func trimFinalNewline(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}

	return strings.TrimSuffix(s, "\n")
}
