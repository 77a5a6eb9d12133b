// Package imageio loads, resizes and saves the image files processed by the benchmark.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/bmp"
)

const jpegQuality = 95

// Load opens and decodes the image at path. The returned format is the
// name reported by the registered decoder (png, jpeg, gif, bmp).
func Load(path string) (*image.RGBA, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	return ToRGBA(img), format, nil
}

// Save encodes img in the given format and writes it to path, replacing any existing file.
// An existing file is left untouched when encoding fails.
func Save(path, format string, img image.Image) error {
	var buf bytes.Buffer
	if err := encode(&buf, format, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func encode(w io.Writer, format string, img image.Image) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case "bmp":
		return bmp.Encode(w, img)
	case "gif":
		return gif.Encode(w, img, nil)
	case "png", "":
		return png.Encode(w, img)
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
}

// Resize scales img to exactly width x height. Aspect ratio is not preserved.
func Resize(img image.Image, width, height int) *image.RGBA {
	return transform.Resize(img, width, height, transform.Linear)
}

// ToRGBA returns img as *image.RGBA, converting when needed
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}
