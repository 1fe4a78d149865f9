package service

import (
	"apartmenthub/models"
	"apartmenthub/storage"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize is the per-file upload limit.
const MaxImageSize = 5 << 20

// allowedImageTypes maps accepted content types to the extensions kept on
// stored files.
var allowedImageTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/webp": {".webp"},
}

// ImageFile is one uploaded file. Open may be called more than once.
type ImageFile struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

type ImageService struct {
	store  storage.ImageStore
	logger *slog.Logger
}

func NewImageService(store storage.ImageStore, logger *slog.Logger) *ImageService {
	return &ImageService{store: store, logger: logger}
}

// Upload checks every file before storing any of them and returns the
// public URLs in input order. If storing fails part way, files already
// written for this call are removed.
func (s *ImageService) Upload(ctx context.Context, files []ImageFile) ([]string, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if len(files) > models.MaxImages {
		return nil, ErrTooManyFiles
	}

	exts := make([]string, len(files))
	for i, f := range files {
		ext, err := s.check(f)
		if err != nil {
			return nil, err
		}
		exts[i] = ext
	}

	names := make([]string, 0, len(files))
	for i, f := range files {
		name, err := s.save(ctx, f, exts[i])
		if err != nil {
			s.rollback(names)
			return nil, fmt.Errorf("failed to store %s: %w", f.Filename, err)
		}
		names = append(names, name)
	}

	urls := make([]string, len(names))
	for i, name := range names {
		urls[i] = s.store.URL(name)
	}
	s.logger.Info("uploaded images", "count", len(urls))
	return urls, nil
}

// check enforces the size limit and sniffs the content type, returning the
// extension the stored file gets.
func (s *ImageService) check(f ImageFile) (string, error) {
	if f.Size > MaxImageSize {
		return "", fmt.Errorf("%w: %s", ErrImageTooLarge, f.Filename)
	}

	r, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", f.Filename, err)
	}
	defer r.Close()

	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", f.Filename, err)
	}

	var detected string
	for allowed := range allowedImageTypes {
		if mtype.Is(allowed) {
			detected = allowed
			break
		}
	}
	if detected == "" {
		return "", fmt.Errorf("%w: %s is %s", ErrUnsupportedImageType, f.Filename, mtype.String())
	}

	return imageExtension(f.Filename, detected, mtype.Extension()), nil
}

func (s *ImageService) save(ctx context.Context, f ImageFile, ext string) (string, error) {
	r, err := f.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()

	// The declared size was checked; the reader is bounded in case it lies.
	lr := &io.LimitedReader{R: r, N: MaxImageSize + 1}
	name, err := s.store.Save(ctx, ext, lr)
	if err != nil {
		return "", err
	}
	if lr.N == 0 {
		s.rollback([]string{name})
		return "", ErrImageTooLarge
	}
	return name, nil
}

func (s *ImageService) rollback(names []string) {
	for _, name := range names {
		// Cleanup must run even when the request context is gone.
		if err := s.store.Delete(context.Background(), name); err != nil {
			s.logger.Error("failed to remove partially uploaded image", "name", name, "error", err)
		}
	}
}

// imageExtension keeps the uploaded file's extension when it agrees with the
// sniffed type and falls back to the detected one otherwise.
func imageExtension(filename, contentType, detectedExt string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range allowedImageTypes[contentType] {
		if ext == allowed {
			return ext
		}
	}
	return detectedExt
}
