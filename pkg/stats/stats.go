package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"

	"go-blur-bench/pkg/blur"
	"go-blur-bench/pkg/executor"
)

// Report pairs the parallel and sequential results of one benchmark run
type Report struct {
	RunID      string
	Radius     int
	KernelSize int
	Timestamp  time.Time
	Parallel   executor.Result
	Sequential executor.Result
}

// PerformanceData holds the summary figures for one strategy
type PerformanceData struct {
	AlgorithmName   string
	ImagesProcessed int
	Succeeded       int
	Failed          int
	KernelSize      int
	TotalTime       time.Duration
	AverageTime     time.Duration
	TotalBlurTime   time.Duration // sum of per-image times
	Workers         int
	Failures        map[blur.Kind]int
}

// Summarize computes PerformanceData for a strategy result
func Summarize(res executor.Result, kernelSize int) PerformanceData {
	data := PerformanceData{
		AlgorithmName:   string(res.Strategy),
		ImagesProcessed: len(res.Outcomes),
		KernelSize:      kernelSize,
		TotalTime:       res.Elapsed,
		Workers:         res.Workers,
	}

	data.Succeeded = lo.CountBy(res.Outcomes, func(o blur.Outcome) bool { return o.OK() })
	data.Failed = data.ImagesProcessed - data.Succeeded
	data.Failures = lo.CountValuesBy(
		lo.Filter(res.Outcomes, func(o blur.Outcome, _ int) bool { return !o.OK() }),
		func(o blur.Outcome) blur.Kind { return o.Kind },
	)
	data.TotalBlurTime = lo.SumBy(res.Outcomes, func(o blur.Outcome) time.Duration { return o.Elapsed })

	if data.ImagesProcessed > 0 {
		data.AverageTime = res.Elapsed / time.Duration(data.ImagesProcessed)
	}
	return data
}

// ExecutionTimeLine renders the one-line duration summary for a strategy
func ExecutionTimeLine(res executor.Result) string {
	return fmt.Sprintf("%s execution time: %d ms", res.Strategy, Millis(res.Elapsed))
}

// WriteReport writes a human-readable comparison of both strategies to w
func WriteReport(w io.Writer, r *Report) error {
	if r == nil {
		return nil
	}

	ew := &errWriter{w: w}
	ew.printf("=== Gaussian Blur Benchmark ===\n")
	ew.printf("Run: %s\n", r.RunID)
	ew.printf("Timestamp: %s\n", r.Timestamp.Format("2006-01-02 15:04:05"))
	ew.printf("Blur radius: %d\n", r.Radius)
	ew.printf("Kernel size: %d\n\n", r.KernelSize)

	for _, res := range []executor.Result{r.Parallel, r.Sequential} {
		data := Summarize(res, r.KernelSize)

		ew.printf("=== %s Results ===\n", data.AlgorithmName)
		ew.printf("Images processed: %d\n", data.ImagesProcessed)
		ew.printf("Succeeded: %d\n", data.Succeeded)
		ew.printf("Failed: %d\n", data.Failed)
		for _, kind := range []blur.Kind{blur.LoadFailure, blur.InvalidParameter, blur.ConvolutionFailure, blur.WriteFailure} {
			if n := data.Failures[kind]; n > 0 {
				ew.printf("  %s: %d\n", kind, n)
			}
		}
		ew.printf("Workers: %d\n", data.Workers)
		ew.printf("Total blur time: %d ms\n", Millis(data.TotalBlurTime))
		ew.printf("Average time per image: %d ms\n", Millis(data.AverageTime))
		ew.printf("%s\n", ExecutionTimeLine(res))

		ew.printf("\nImages:\n")
		for i, o := range res.Outcomes {
			if o.OK() {
				ew.printf("  %d. %s -> %s (%d ms)\n", i+1, o.Path, o.OutputPath, Millis(o.Elapsed))
			} else {
				ew.printf("  %d. %s: %s: %v\n", i+1, o.Path, o.Kind, o.Err)
			}
		}
		ew.printf("\n")
	}

	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
