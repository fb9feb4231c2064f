package storage

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateToken generates a new opaque, filesystem-safe file base name
// It creates a UUID without dashes
func GenerateToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NormalizeExtension lowercases an extension and strips its leading dot
func NormalizeExtension(extension string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), "."))
}

// sizeWriter wraps a writer and tracks the total number of bytes written
type sizeWriter struct {
	size int64
}

// Write implements io.Writer interface
// It tracks the size of data written and returns the length and nil error
func (sw *sizeWriter) Write(p []byte) (int, error) {
	n := len(p)
	sw.size += int64(n)
	return n, nil
}

// Size returns the total number of bytes written
func (sw *sizeWriter) Size() int64 {
	return sw.size
}

// NewSizeWriter creates a new SizeWriter instance
func NewSizeWriter() *sizeWriter {
	return &sizeWriter{
		size: 0,
	}
}
