package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a stored image does not exist.
var ErrNotFound = errors.New("image not found")

// ImageStore persists uploaded apartment images and maps stored names to
// the public URLs they are served under.
type ImageStore interface {
	Save(ctx context.Context, ext string, r io.Reader) (name string, err error)
	URL(name string) string
	Delete(ctx context.Context, name string) error
}

// LocalImageStore writes images into a directory served statically.
type LocalImageStore struct {
	basePath  string
	urlPrefix string
	now       func() time.Time
	logger    *slog.Logger
}

func NewLocalImageStore(basePath, urlPrefix string, logger *slog.Logger) (*LocalImageStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &LocalImageStore{
		basePath:  basePath,
		urlPrefix: urlPrefix,
		now:       time.Now,
		logger:    logger,
	}, nil
}

// Dir is the directory images are written to.
func (s *LocalImageStore) Dir() string {
	return s.basePath
}

// Save writes r to a new file named apartment-<unix-ms>-<uuid><ext> and
// returns that name. A partially written file is removed on failure.
func (s *LocalImageStore) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("apartment-%d-%s%s", s.now().UnixMilli(), uuid.NewString(), strings.ToLower(ext))
	filePath := filepath.Join(s.basePath, name)

	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		if cerr := f.Close(); cerr != nil {
			s.logger.Error("failed to close file after write error", "error", cerr)
		}
		if rerr := os.Remove(filePath); rerr != nil {
			s.logger.Error("failed to remove file after write error", "error", rerr)
		}
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(filePath); rerr != nil {
			s.logger.Error("failed to remove file after close error", "error", rerr)
		}
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	s.logger.Debug("stored image", "name", name)
	return name, nil
}

func (s *LocalImageStore) URL(name string) string {
	return s.urlPrefix + name
}

func (s *LocalImageStore) Delete(ctx context.Context, name string) error {
	filePath, err := s.safeJoin(name)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// safeJoin resolves name relative to basePath and rejects directory traversal.
func (s *LocalImageStore) safeJoin(name string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, name))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt")
	}
	return absPath, nil
}
