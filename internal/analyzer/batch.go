package analyzer

import (
	"context"

	"resumescan/internal/errors"
	"resumescan/internal/types"

	"golang.org/x/sync/errgroup"
)

// AnalyzeBatch analyses every path against the same job description with at
// most workers analyses in flight. A failing file is recorded in its item
// and does not stop the others. Items keep the order of paths.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, paths []string, jobDescription string, workers int) types.BatchReport {
	if workers < 1 {
		workers = 1
	}
	items := make([]types.BatchItem, len(paths))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			items[i] = a.analyzeItem(ctx, path, jobDescription)
			return nil
		})
	}
	_ = g.Wait()

	return types.BatchReport{Items: items}
}

func (a *Analyzer) analyzeItem(ctx context.Context, path, jobDescription string) types.BatchItem {
	item := types.BatchItem{File: path}
	if err := ctx.Err(); err != nil {
		item.Error = err.Error()
		return item
	}

	report, err := a.Analyze(ctx, Request{Path: path, JobDescription: jobDescription})
	if err != nil {
		item.Error = errors.UserMessage(err)
		var appErr *errors.AppError
		if errors.As(err, &appErr) {
			item.Code = appErr.Code
		}
		return item
	}
	item.Report = report
	return item
}
