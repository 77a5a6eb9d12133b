package executor

import (
	"context"
	"log/slog"

	"go-blur-bench/pkg/blur"
	"go-blur-bench/pkg/imagestore"
	"go-blur-bench/pkg/status"
)

// Sequential blurs the batch in order on the calling goroutine
type Sequential struct {
	sink   status.Sink
	logger *slog.Logger
}

func NewSequential(sink status.Sink, logger *slog.Logger) *Sequential {
	if sink == nil {
		sink = status.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sequential{sink: sink, logger: logger}
}

func (s *Sequential) Strategy() Strategy { return StrategySequential }

func (s *Sequential) Run(ctx context.Context, batch []*imagestore.ImageRef, req blur.Request) Result {
	s.logger.InfoContext(ctx, "starting sequential blur", "images", len(batch), "kernel", req.KernelSize())

	unit := &blur.Unit{Source: "sequential", Sink: s.sink, Logger: s.logger}
	outcomes := make([]blur.Outcome, 0, len(batch))

	for i, ref := range batch {
		out := unit.Apply(i, ref, req)
		s.logger.DebugContext(ctx, "image processed", "index", i, "path", ref.Path, "outcome", out.Kind, "elapsed", out.Elapsed)
		outcomes = append(outcomes, out)
	}

	return Result{Strategy: StrategySequential, Outcomes: outcomes, Workers: 1}
}
