// Package pathutil provides shared path validation helpers.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateFilePath validates a file path for path traversal and invalid characters.
// Uses segment-based detection so that "scripts/../etc/passwd" is rejected before
// cleaning (cleaned path would be "etc/passwd" and could bypass a simple ".." check).
// Returns an error if the path is empty, contains null bytes, or has ".." in any segment.
func ValidateFilePath(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if strings.Contains(filePath, "\x00") {
		return fmt.Errorf("file path contains invalid characters")
	}

	normalized := filepath.ToSlash(filePath)
	segments := strings.Split(normalized, "/")
	for _, segment := range segments {
		if segment == ".." {
			return fmt.Errorf("file path contains path traversal: %q", filePath)
		}
	}
	if strings.HasPrefix(normalized, "../") || normalized == ".." {
		return fmt.Errorf("file path contains path traversal: %q", filePath)
	}
	return nil
}

// EnsureOutputDir creates dir if it does not exist and verifies the result
// is a writable directory. An existing regular file at dir is an error.
func EnsureOutputDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if strings.Contains(dir, "\x00") {
		return fmt.Errorf("output directory contains invalid characters")
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("output path %q is not a directory", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("checking output directory: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}
