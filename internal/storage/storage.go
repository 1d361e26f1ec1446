package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidFileType = errors.New("only image files are allowed")
)

// allowedImages maps accepted extensions to the MIME types they may carry.
var allowedImages = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".gif":  {"image/gif"},
	".webp": {"image/webp"},
}

// Config holds storage configuration.
type Config struct {
	BasePath string // directory files are written to
	BaseURL  string // public URL prefix, e.g. /uploads
	MaxBytes int64
}

// ImageStore keeps prescription images on the local filesystem.
type ImageStore struct {
	basePath string
	baseURL  string
	maxBytes int64
}

// NewImageStore creates the base directory if needed.
func NewImageStore(cfg Config) (*ImageStore, error) {
	if cfg.BasePath == "" {
		cfg.BasePath = "./uploads"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "/uploads"
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 5 << 20
	}
	if err := os.MkdirAll(cfg.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &ImageStore{
		basePath: cfg.BasePath,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		maxBytes: cfg.MaxBytes,
	}, nil
}

func (s *ImageStore) Dir() string     { return s.basePath }
func (s *ImageStore) MaxBytes() int64 { return s.maxBytes }

// SaveImage validates and stores an uploaded image and returns its public URL.
// The original filename and declared content type must both name an accepted image
// type, and the sniffed content must agree. A missing content type is rejected.
func (s *ImageStore) SaveImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mimes, ok := allowedImages[ext]
	if !ok {
		return "", ErrInvalidFileType
	}
	declared := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if !contains(mimes, declared) {
		return "", ErrInvalidFileType
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrFileTooLarge
	}
	if !contains(mimes, mimetype.Detect(data).String()) {
		return "", ErrInvalidFileType
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := "prescription-" + uuid.NewString() + ext
	if err := s.save(name, bytes.NewReader(data)); err != nil {
		return "", err
	}
	return s.URL(name), nil
}

// URL returns the public URL for a stored file name.
func (s *ImageStore) URL(name string) string {
	return path.Join(s.baseURL, name)
}

// Delete removes a stored file by its public URL. Missing files are ignored.
func (s *ImageStore) Delete(url string) error {
	name := path.Base(url)
	if err := os.Remove(filepath.Join(s.basePath, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// save writes r to name. A partially written file is removed.
func (s *ImageStore) save(name string, r io.Reader) error {
	full := filepath.Join(s.basePath, name)
	file, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(full)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(full)
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
