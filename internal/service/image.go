package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pageza/recipe-api/backend/internal/models"
)

// ImageService validates uploaded images and hands them to a Storage.
type ImageService struct {
	storage  Storage
	maxBytes int64
	log      *slog.Logger
}

// NewImageService creates a new ImageService instance
func NewImageService(storage Storage, maxBytes int64, log *slog.Logger) *ImageService {
	return &ImageService{storage: storage, maxBytes: maxBytes, log: log}
}

// Store sniffs the content, rejects anything that is not a raster image and
// saves it under a fresh key derived from filename.
func (s *ImageService) Store(ctx context.Context, filename string, body io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrImageTooLarge
	}

	mt := mimetype.Detect(data)
	if !isRasterImage(mt) {
		s.log.Info("rejected upload", slog.String("filename", filename), slog.String("mime", mt.String()))
		return "", ErrInvalidImage
	}

	key := models.RecipeImagePath(filename)
	if err := s.storage.Save(ctx, key, mt.String(), bytes.NewReader(data)); err != nil {
		return "", err
	}

	s.log.Info("image stored", slog.String("key", key), slog.Int("bytes", len(data)))
	return key, nil
}

// Remove deletes a stored image, logging failures.
func (s *ImageService) Remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log.Warn("failed to delete image", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (s *ImageService) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.storage.URL(key)
}

func isRasterImage(mt *mimetype.MIME) bool {
	if mt.Is("image/svg+xml") {
		return false
	}
	return strings.HasPrefix(mt.String(), "image/")
}
