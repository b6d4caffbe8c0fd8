package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// CreateTempFile creates a uniquely named file in dir and returns its full
// path along with the open handle. The caller closes and removes it.
func CreateTempFile(dir, prefix, ext string) (string, *os.File, error) {
	name := fmt.Sprintf("%s_%s%s", prefix, uuid.NewString(), ext)
	fullPath := filepath.Join(dir, name)
	f, err := os.OpenFile(fullPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	return fullPath, f, nil
}

// RemoveTempFile deletes a temp file, ignoring one that is already gone.
func RemoveTempFile(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveAllTempFiles removes every file in dir matching prefix_*ext.
func RemoveAllTempFiles(dir, prefix, ext string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	pattern := filepath.Join(dir, fmt.Sprintf("%s_*%s", prefix, ext))
	files, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to glob temp files: %w", err)
	}

	var firstErr error
	for _, file := range files {
		if err := os.Remove(file); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to remove temp file %s: %w", file, err)
		}
	}
	return firstErr
}
