package imagestore

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"go-blur-bench/pkg/imageio"
	"go-blur-bench/pkg/status"
)

const (
	MaxBatch  = 10
	MaxWidth  = 612
	MaxHeight = 408
)

var (
	ErrCapacityExceeded = fmt.Errorf("you can select up to %d images", MaxBatch)
	ErrIndexOutOfRange  = errors.New("image index out of range")
)

// ImageRef is one queued image: its source path and the decoded pixels.
// LoadErr is set when the path could not be decoded; Pixels is nil in that case.
type ImageRef struct {
	Path    string
	Format  string
	Pixels  *image.RGBA
	LoadErr error
	Resized bool
}

// Loaded reports whether the image was decoded on admission
func (r *ImageRef) Loaded() bool {
	return r.LoadErr == nil && r.Pixels != nil
}

// Admission describes the outcome of one Admit call.
// WriteFailed lists resized images whose source file could not be rewritten;
// they stay admitted with the resized pixels in memory.
type Admission struct {
	Admitted    int
	Resized     []string
	Skipped     []string
	WriteFailed []string
}

// Store holds the ordered batch of images awaiting a benchmark run
type Store struct {
	mu     sync.RWMutex
	images []*ImageRef
	sink   status.Sink
	logger *slog.Logger
}

func NewStore(sink status.Sink, logger *slog.Logger) *Store {
	if sink == nil {
		sink = status.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{sink: sink, logger: logger}
}

// Admit loads paths and appends them to the batch in call order.
// The whole call is rejected with ErrCapacityExceeded if the batch would hold more
// than MaxBatch images. Paths that fail to load stay in the batch with LoadErr set.
// Images larger than MaxWidth x MaxHeight are resized to exactly that size and
// written back to their source path.
func (s *Store) Admit(paths []string) (Admission, error) {
	var adm Admission
	if len(paths) == 0 {
		s.sink.Publish(status.Info("store", "", "No images selected"))
		return adm, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.images)+len(paths) > MaxBatch {
		s.sink.Publish(status.Error("store", "", fmt.Sprintf("You can select up to %d images.", MaxBatch)))
		return adm, fmt.Errorf("admit %d images into batch of %d: %w", len(paths), len(s.images), ErrCapacityExceeded)
	}

	for _, path := range paths {
		ref, writeErr := s.load(path)
		if ref.LoadErr != nil {
			adm.Skipped = append(adm.Skipped, path)
		} else {
			adm.Admitted++
			if ref.Resized {
				adm.Resized = append(adm.Resized, path)
			}
			if writeErr != nil {
				adm.WriteFailed = append(adm.WriteFailed, path)
			}
		}
		s.images = append(s.images, ref)
	}

	s.logger.Debug("admitted images", "admitted", adm.Admitted, "skipped", len(adm.Skipped), "batch", len(s.images))
	s.sink.Publish(status.Info("store", "", fmt.Sprintf("Selected %d images", len(s.images))))
	return adm, nil
}

// load decodes path and resizes it when oversized. The returned error is set
// only when the resized image could not be written back to path.
func (s *Store) load(path string) (*ImageRef, error) {
	ref := &ImageRef{Path: path}

	img, format, err := imageio.Load(path)
	if err != nil {
		ref.LoadErr = err
		s.logger.Warn("failed to load image", "path", path, "error", err)
		s.sink.Publish(status.Error("store", path, fmt.Sprintf("Failed to load the image: %s", path)))
		return ref, nil
	}
	ref.Format = format

	var writeErr error
	bounds := img.Bounds()
	if bounds.Dx() > MaxWidth || bounds.Dy() > MaxHeight {
		img = imageio.Resize(img, MaxWidth, MaxHeight)
		ref.Resized = true
		s.logger.Debug("resized image", "path", path, "from", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()))
		if writeErr = imageio.Save(path, format, img); writeErr != nil {
			s.logger.Warn("failed to write resized image", "path", path, "error", writeErr)
			s.sink.Publish(status.Error("store", path, fmt.Sprintf("Failed to write the image: %v", writeErr)))
		}
	}

	ref.Pixels = img
	return ref, writeErr
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

func (s *Store) At(index int) (*ImageRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.images) {
		return nil, fmt.Errorf("index %d of %d: %w", index, len(s.images), ErrIndexOutOfRange)
	}
	return s.images[index], nil
}

// Batch returns a snapshot of the queued images in admission order
func (s *Store) Batch() []*ImageRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*ImageRef(nil), s.images...)
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.images = nil
	s.mu.Unlock()
}
