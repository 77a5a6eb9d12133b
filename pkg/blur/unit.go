package blur

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go-blur-bench/pkg/imageio"
	"go-blur-bench/pkg/imagestore"
	"go-blur-bench/pkg/status"
)

// Kind classifies the result of one blur attempt
type Kind int

const (
	Success Kind = iota
	LoadFailure
	InvalidParameter
	ConvolutionFailure
	WriteFailure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case LoadFailure:
		return "load_failure"
	case InvalidParameter:
		return "invalid_parameter"
	case ConvolutionFailure:
		return "convolution_failure"
	case WriteFailure:
		return "write_failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the per-image result of Unit.Apply
type Outcome struct {
	Kind       Kind
	Path       string
	OutputPath string
	Err        error
	Elapsed    time.Duration
}

func (o Outcome) OK() bool { return o.Kind == Success }

// Request holds the blur parameters shared by every image of a run
type Request struct {
	Radius int
	// Sigma of zero or less is derived from the kernel size
	Sigma float64
	// OutputDir receives the blurred files. Empty means overwrite the source
	// file and replace the in-memory pixels.
	OutputDir string
}

func (r Request) KernelSize() int { return KernelSize(r.Radius) }

func (r Request) InPlace() bool { return r.OutputDir == "" }

// Destination returns the path the blurred image for the batch entry at index
// is written to. Outside in-place mode the file name carries the index so
// sources sharing a base name never collide.
func (r Request) Destination(index int, src string) string {
	if r.InPlace() {
		return src
	}
	return filepath.Join(r.OutputDir, fmt.Sprintf("%02d_%s", index, filepath.Base(src)))
}

// Unit applies one blur to one image. It never panics and never returns an
// error; every failure is reported as an Outcome and a status event.
type Unit struct {
	Source string
	Sink   status.Sink
	Logger *slog.Logger
}

// Apply blurs ref, the batch entry at index
func (u *Unit) Apply(index int, ref *imagestore.ImageRef, req Request) (out Outcome) {
	start := time.Now()
	out = Outcome{Path: ref.Path}
	defer func() {
		out.Elapsed = time.Since(start)
	}()

	if !ref.Loaded() {
		out.Kind = LoadFailure
		out.Err = ref.LoadErr
		if out.Err == nil {
			out.Err = fmt.Errorf("image %s has no pixel data", ref.Path)
		}
		u.report(status.Error(u.Source, ref.Path, fmt.Sprintf("Failed to load the image: %s", ref.Path)))
		return out
	}

	kernel, err := NewKernel(req.Radius, req.Sigma)
	if err != nil {
		out.Kind = InvalidParameter
		out.Err = err
		u.report(status.Error(u.Source, ref.Path, "Invalid blur value"))
		return out
	}

	blurred, err := Convolve(ref.Pixels, kernel)
	if err != nil {
		out.Kind = ConvolutionFailure
		out.Err = err
		u.report(status.Error(u.Source, ref.Path, fmt.Sprintf("Failed to apply blur: %v", err)))
		return out
	}

	dest := req.Destination(index, ref.Path)
	if !req.InPlace() {
		if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
			out.Kind = WriteFailure
			out.Err = err
			u.report(status.Error(u.Source, ref.Path, fmt.Sprintf("Failed to write the image: %v", err)))
			return out
		}
	}
	if err := imageio.Save(dest, ref.Format, blurred); err != nil {
		out.Kind = WriteFailure
		out.Err = err
		u.report(status.Error(u.Source, ref.Path, fmt.Sprintf("Failed to write the image: %v", err)))
		return out
	}

	if req.InPlace() {
		ref.Pixels = blurred
	}

	out.Kind = Success
	out.OutputPath = dest
	u.logger().Debug("blurred image", "source", u.Source, "path", ref.Path, "output", dest, "kernel", kernel.Size)
	return out
}

func (u *Unit) report(ev status.Event) {
	u.logger().Debug(ev.Message, "source", ev.Source, "path", ev.Path)
	if u.Sink != nil {
		u.Sink.Publish(ev)
	}
}

func (u *Unit) logger() *slog.Logger {
	if u.Logger == nil {
		return slog.Default()
	}
	return u.Logger
}
