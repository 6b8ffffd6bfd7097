package templating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/byte4ever/fml/loader"
	"github.com/byte4ever/fml/syntax"
)

// file loads name relative to baseDir and renders it as a
// child of parent. from names the including file.
func (rd *renderer) file(
	ctx context.Context,
	parent frame,
	name string,
	baseDir string,
	from string,
) (string, error) {
	fi, err := rd.loader.Load(ctx, name, baseDir)
	if err != nil {
		var ne *loader.NotFoundError
		if errors.As(err, &ne) {
			return "", &FileNotFoundError{Path: ne.Path, From: from, Err: err}
		}

		return "", fmt.Errorf("loading %s: %w", name, err)
	}

	if slices.Contains(parent.chain, fi.Path) {
		chain := slices.Clone(parent.chain)

		return "", &IncludeCycleError{Chain: append(chain, fi.Path)}
	}

	return rd.source(ctx, parent.enter(fi.Path, fi.Dir), trimFinalNewline(fi.Content))
}

// include renders the file named by in, resolved against
// the directory of the including file.
func (rd *renderer) include(ctx context.Context, fr frame, in *syntax.Include) (string, error) {
	slog.Debug("loading include", "path", in.Path, "from", fr.file)

	return rd.file(ctx, fr, in.Path, fr.dir, fr.file)
}

// includeResult is the outcome of one prefetched include.
type includeResult struct {
	out string
	err error
}

// includeSet holds the prefetched includes of one node
// list, indexed like the list.
type includeSet struct {
	results []includeResult
}

// result returns the prefetched outcome for nodes[idx].
// It reports false when there is none to use, either
// because nothing was prefetched or because the include was
// cancelled after a sibling failed; the caller then renders
// the include itself.
func (is *includeSet) result(ctx context.Context, idx int) (includeResult, bool) {
	if is == nil {
		return includeResult{}, false
	}

	res := is.results[idx]
	if res.err != nil && ctx.Err() == nil && errors.Is(res.err, context.Canceled) {
		return includeResult{}, false
	}

	return res, true
}

// prefetch renders the includes directly in nodes using at
// most rd.parallelism goroutines. It returns nil when the
// renderer is sequential or nodes has fewer than two
// includes; such lists are rendered in place.
func (rd *renderer) prefetch(ctx context.Context, fr frame, nodes []syntax.Node) *includeSet {
	if rd.parallelism <= 1 {
		return nil
	}

	var indexes []int

	for idx, nd := range nodes {
		if _, ok := nd.(*syntax.Include); ok {
			indexes = append(indexes, idx)
		}
	}

	if len(indexes) < 2 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	set := &includeSet{results: make([]includeResult, len(nodes))}

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, rd.parallelism)
	)

	for _, idx := range indexes {
		wg.Add(1)

		go func(idx int, in *syntax.Include) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			out, err := rd.include(ctx, fr, in)
			set.results[idx] = includeResult{out: out, err: err}

			if err != nil {
				cancel()
			}
		}(idx, nodes[idx].(*syntax.Include))
	}

	wg.Wait()

	return set
}
