package evaluator

import (
	"context"
	"errors"
	"runtime"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codewithboateng/oversight/internal/ir"
	"github.com/codewithboateng/oversight/internal/rules"
	"github.com/codewithboateng/oversight/internal/source"
)

// EvaluateFiles loads and evaluates paths in parallel. Unreadable, binary
// and oversized files are logged and skipped. Matches come back grouped by
// file in the order of paths.
func EvaluateFiles(ctx context.Context, paths []string, reg *rules.Registry, opts Options) ([]ir.Match, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	perFile := make([][]ir.Match, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := source.Load(p, opts.MaxFileBytes)
			if err != nil {
				level := zap.WarnLevel
				if errors.Is(err, source.ErrBinary) {
					level = zap.DebugLevel
				}
				zap.L().Log(level, "skipping file", zap.String("file", p), zap.Error(err))
				return nil
			}
			perFile[i] = slices.Collect(Evaluate(doc, reg, opts))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []ir.Match
	for _, ms := range perFile {
		out = append(out, ms...)
	}
	zap.L().Debug("evaluation complete", zap.Int("files", len(paths)), zap.Int("matches", len(out)))
	return out, nil
}
