package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// stagingDir holds files that were written but not yet made public.
// It lives under the base path so that promotion is a same-filesystem rename.
const stagingDir = ".staging"

// localStorage implements the public file store using local filesystem
type localStorage struct {
	basePath string
}

// NewLocalStorage creates a new localStorage instance
func NewLocalStorage(basePath string) *localStorage {
	return &localStorage{
		basePath: basePath,
	}
}

// generatePath generates the full file path based on name and directory
// It converts underscores in directory to path separators
func (s *localStorage) generatePath(name, directory string) string {
	// Replace underscores with path separators based on operating system
	typePath := strings.ReplaceAll(directory, "_", string(filepath.Separator))

	// Combine base path, type path, and file name
	return filepath.Join(s.basePath, typePath, filepath.Base(name))
}

// generateStagingPath generates the path of a staged file
func (s *localStorage) generateStagingPath(name, directory string) string {
	typePath := strings.ReplaceAll(directory, "_", string(filepath.Separator))
	return filepath.Join(s.basePath, stagingDir, typePath, filepath.Base(name))
}

// Create creates a new staged file and returns a WriteCloser
// The file is not reachable under its public path until Promote is called.
func (s *localStorage) Create(name, directory string) (io.WriteCloser, error) {
	path := s.generateStagingPath(name, directory)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	// O_EXCL: a token collision must never overwrite a concurrent upload
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
}

// Promote moves a staged file to its public path
func (s *localStorage) Promote(name, directory string) error {
	target := s.generatePath(name, directory)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	return os.Rename(s.generateStagingPath(name, directory), target)
}

// Discard removes a staged file; a missing file is not an error
func (s *localStorage) Discard(name, directory string) error {
	err := os.Remove(s.generateStagingPath(name, directory))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Open opens a public file for reading
func (s *localStorage) Open(name, directory string) (*os.File, error) {
	return os.Open(s.generatePath(name, directory))
}

// Exists reports whether a public file exists
func (s *localStorage) Exists(name, directory string) (bool, error) {
	_, err := os.Stat(s.generatePath(name, directory))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Delete removes a public file
func (s *localStorage) Delete(name, directory string) error {
	return os.Remove(s.generatePath(name, directory))
}
