// Package bench runs the parallel and sequential blur strategies back to back
// over the current batch and reports how long each took.
package bench

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-blur-bench/pkg/blur"
	"go-blur-bench/pkg/executor"
	"go-blur-bench/pkg/imagestore"
	"go-blur-bench/pkg/stats"
	"go-blur-bench/pkg/status"
)

var ErrEmptyBatch = errors.New("please select an image first")

// Batch supplies the images to benchmark
type Batch interface {
	Batch() []*imagestore.ImageRef
}

type Runner struct {
	store      Batch
	parallel   executor.Executor
	sequential executor.Executor
	sink       status.Sink
	logger     *slog.Logger
}

func NewRunner(store Batch, parallel, sequential executor.Executor, sink status.Sink, logger *slog.Logger) *Runner {
	if sink == nil {
		sink = status.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		store:      store,
		parallel:   parallel,
		sequential: sequential,
		sink:       sink,
		logger:     logger,
	}
}

// Run blurs the batch with the parallel strategy, then with the sequential one.
// When req.OutputDir is set each strategy writes into its own subdirectory and
// both start from the pixels loaded at admission. Otherwise files are overwritten
// in place and the sequential pass blurs the output of the parallel pass.
func (r *Runner) Run(ctx context.Context, req blur.Request) (*stats.Report, error) {
	batch := r.store.Batch()
	if len(batch) == 0 {
		r.sink.Publish(status.Error("bench", "", "Please select an image first"))
		return nil, ErrEmptyBatch
	}

	report := &stats.Report{
		RunID:      uuid.NewString(),
		Radius:     req.Radius,
		KernelSize: req.KernelSize(),
		Timestamp:  time.Now(),
	}
	r.logger.InfoContext(ctx, "starting benchmark", "run", report.RunID, "images", len(batch), "radius", req.Radius, "in_place", req.InPlace())

	report.Parallel = r.runStrategy(ctx, r.parallel, batch, req)
	report.Sequential = r.runStrategy(ctx, r.sequential, batch, req)

	r.logger.InfoContext(ctx, "benchmark complete",
		"run", report.RunID,
		"parallel_ms", stats.Millis(report.Parallel.Elapsed),
		"sequential_ms", stats.Millis(report.Sequential.Elapsed),
	)
	return report, nil
}

func (r *Runner) runStrategy(ctx context.Context, exec executor.Executor, batch []*imagestore.ImageRef, req blur.Request) executor.Result {
	if !req.InPlace() {
		req.OutputDir = filepath.Join(req.OutputDir, strings.ToLower(string(exec.Strategy())))
	}

	var res executor.Result
	elapsed := stats.Measure(func() {
		res = exec.Run(ctx, batch, req)
	})
	res.Elapsed = elapsed

	r.sink.Publish(status.Info("bench", "", stats.ExecutionTimeLine(res)))
	return res
}
