package blur

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrEmptyImage is returned when convolving an image with no pixels
var ErrEmptyImage = errors.New("image has no pixels")

// Convolve runs a 2D convolution of src against kernel.
// Pixels outside the image are replaced by the nearest edge pixel.
func Convolve(src *image.RGBA, kernel *Kernel) (out *image.RGBA, err error) {
	if err := kernel.validate(); err != nil {
		return nil, err
	}
	if src == nil || src.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("convolution panicked: %v", r)
		}
	}()

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	offset := kernel.Size / 2
	blurred := image.NewRGBA(bounds)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var rSum, gSum, bSum, aSum float64

			for ky := 0; ky < kernel.Size; ky++ {
				sy := clamp(y+ky-offset, height)
				row := src.PixOffset(bounds.Min.X, sy+bounds.Min.Y)

				for kx := 0; kx < kernel.Size; kx++ {
					sx := clamp(x+kx-offset, width)
					i := row + sx*4
					weight := kernel.Weights[ky][kx]

					rSum += float64(src.Pix[i]) * weight
					gSum += float64(src.Pix[i+1]) * weight
					bSum += float64(src.Pix[i+2]) * weight
					aSum += float64(src.Pix[i+3]) * weight
				}
			}

			o := blurred.PixOffset(x+bounds.Min.X, y+bounds.Min.Y)
			blurred.Pix[o] = toUint8(rSum)
			blurred.Pix[o+1] = toUint8(gSum)
			blurred.Pix[o+2] = toUint8(bSum)
			blurred.Pix[o+3] = toUint8(aSum)
		}
	}

	return blurred, nil
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func toUint8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
