package executor

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"go-blur-bench/pkg/blur"
	"go-blur-bench/pkg/imagestore"
	"go-blur-bench/pkg/status"
)

// Parallel blurs each image of the batch on its own task, at most Workers at a time.
// Outcomes land in index-addressed slots so the result order matches the batch.
type Parallel struct {
	workers int
	sink    status.Sink
	logger  *slog.Logger
}

// NewParallel creates a parallel executor. workers <= 0 uses runtime.NumCPU().
func NewParallel(workers int, sink status.Sink, logger *slog.Logger) *Parallel {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parallel{workers: workers, sink: status.Serialize(sink), logger: logger}
}

func (p *Parallel) Strategy() Strategy { return StrategyParallel }

func (p *Parallel) Workers() int { return p.workers }

func (p *Parallel) Run(ctx context.Context, batch []*imagestore.ImageRef, req blur.Request) Result {
	p.logger.InfoContext(ctx, "starting parallel blur", "images", len(batch), "kernel", req.KernelSize(), "workers", p.workers)

	unit := &blur.Unit{Source: "parallel", Sink: p.sink, Logger: p.logger}
	outcomes := make([]blur.Outcome, len(batch))

	// Tasks never return an error, so one failing image cannot cancel the others.
	var g errgroup.Group
	g.SetLimit(p.workers)

	for i, ref := range batch {
		g.Go(func() error {
			outcomes[i] = unit.Apply(i, ref, req)
			p.logger.DebugContext(ctx, "image processed", "index", i, "path", ref.Path, "outcome", outcomes[i].Kind, "elapsed", outcomes[i].Elapsed)
			return nil
		})
	}
	_ = g.Wait()

	return Result{Strategy: StrategyParallel, Outcomes: outcomes, Workers: p.workers}
}
