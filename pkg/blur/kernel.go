package blur

import (
	"errors"
	"math"
)

var (
	// ErrInvalidRadius is returned for a blur radius of zero or less.
	ErrInvalidRadius = errors.New("blur radius must be positive")
	// ErrInvalidKernel is returned by Convolve for kernels that are empty, not square or even-sized.
	ErrInvalidKernel = errors.New("invalid convolution kernel")
)

// Kernel is a square matrix of convolution weights
type Kernel struct {
	Size    int
	Sigma   float64
	Weights [][]float64
}

// KernelSize returns 2*radius + 1
func KernelSize(radius int) int {
	return 2*radius + 1
}

// AutoSigma derives a standard deviation from the kernel size
func AutoSigma(size int) float64 {
	return 0.3*(float64(size-1)*0.5-1) + 0.8
}

// NewKernel creates a normalized Gaussian kernel for the given radius.
// A sigma of zero or less is derived from the kernel size.
func NewKernel(radius int, sigma float64) (*Kernel, error) {
	if radius <= 0 {
		return nil, ErrInvalidRadius
	}

	size := KernelSize(radius)
	if sigma <= 0 {
		sigma = AutoSigma(size)
	}

	weights := make([][]float64, size)
	sum := 0.0
	center := size / 2

	for i := 0; i < size; i++ {
		weights[i] = make([]float64, size)
		for j := 0; j < size; j++ {
			x := float64(i - center)
			y := float64(j - center)
			weights[i][j] = math.Exp(-(x*x + y*y) / (2 * sigma * sigma))
			sum += weights[i][j]
		}
	}

	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			weights[i][j] /= sum
		}
	}

	return &Kernel{Size: size, Sigma: sigma, Weights: weights}, nil
}

func (k *Kernel) validate() error {
	if k == nil || k.Size <= 0 || len(k.Weights) != k.Size || k.Size%2 == 0 {
		return ErrInvalidKernel
	}
	for _, row := range k.Weights {
		if len(row) != k.Size {
			return ErrInvalidKernel
		}
	}
	return nil
}
