package localstorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage implements ports.Storage for the local filesystem.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

// Init creates the base directory.
func (s *LocalStorage) Init() error {
	if err := os.MkdirAll(s.BaseDir, 0755); err != nil {
		return fmt.Errorf("failed to create work directory %s: %w", s.BaseDir, err)
	}
	return nil
}

// SaveVideo saves the video file and returns its path.
func (s *LocalStorage) SaveVideo(ctx context.Context, reader io.Reader, filename string) (string, error) {
	if filename == "" {
		filename = "video.mp4"
	}
	path := s.Path(filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create video file %s: %w", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write video file: %w", err)
	}
	return path, nil
}

// WriteFile replaces filename with data. The content goes to a temporary
// file first, so readers never observe a partial write.
func (s *LocalStorage) WriteFile(ctx context.Context, filename string, data []byte) (string, error) {
	path := s.Path(filename)

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file for %s: %w", filename, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to chmod %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", filename, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", filename, err)
	}
	return path, nil
}

// Path returns the path for a file in the work directory.
func (s *LocalStorage) Path(filename string) string {
	return filepath.Join(s.BaseDir, filename)
}
