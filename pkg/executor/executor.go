// Package executor runs the blur unit over a whole batch, either one image at a
// time on the calling goroutine or fanned out over a bounded worker pool.
package executor

import (
	"context"
	"time"

	"go-blur-bench/pkg/blur"
	"go-blur-bench/pkg/imagestore"
)

type Strategy string

const (
	StrategySequential Strategy = "Sequential"
	StrategyParallel   Strategy = "Parallel"
)

// Result holds one outcome per batch image, in batch order
type Result struct {
	Strategy Strategy
	Outcomes []blur.Outcome
	Workers  int
	// Elapsed is filled in by the caller that times the run
	Elapsed time.Duration
}

// Succeeded counts the outcomes of kind Success
func (r Result) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Kinds returns the outcome classification of every image in batch order
func (r Result) Kinds() []blur.Kind {
	kinds := make([]blur.Kind, len(r.Outcomes))
	for i, o := range r.Outcomes {
		kinds[i] = o.Kind
	}
	return kinds
}

// Executor processes a batch with a fixed scheduling strategy
type Executor interface {
	Strategy() Strategy
	Run(ctx context.Context, batch []*imagestore.ImageRef, req blur.Request) Result
}
