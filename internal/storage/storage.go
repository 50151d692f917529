package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"admissions_backend/internal/config"
)

const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

var (
	ErrNotFound   = errors.New("storage: object not found")
	ErrInvalidKey = errors.New("storage: invalid object key")
)

// Storage is the file backend for uploaded documents.
type Storage interface {
	// Save writes the stream under key, replacing any existing object.
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get opens the object. Callers close the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public location of the object.
	URL(key string) string

	Provider() string
}

// NewStorage builds the configured backend. An empty type falls back to local disk.
func NewStorage(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case ProviderLocal, "":
		return NewLocalStorage(cfg)
	case ProviderS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// CleanKey normalizes key to a relative slash path and rejects traversal.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") || cleaned != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
