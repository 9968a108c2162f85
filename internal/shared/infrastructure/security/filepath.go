// Package security validates user-supplied file paths before taskglitch
// reads or writes them.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	errEmptyPath   = errors.New("file path cannot be empty")
	errEmptyBase   = errors.New("base directory cannot be empty")
	ErrEscapesBase = errors.New("file path escapes base directory")
)

// shellMeta are rejected outright; export and source paths come from flags
// and environment variables.
const shellMeta = ";&|$`(){}<>!\n\r"

// ValidateFilePath returns path as a clean absolute path with symlinks
// resolved. A file that does not exist yet is allowed.
func ValidateFilePath(path string) (string, error) {
	if path == "" {
		return "", errEmptyPath
	}
	if i := strings.IndexAny(path, shellMeta); i >= 0 {
		return "", fmt.Errorf("file path contains forbidden character %q: %s", path[i], path)
	}

	abs, err := absolute(path)
	if err != nil {
		return "", err
	}
	return resolve(abs, "file path")
}

// ValidateFilePathInDir is ValidateFilePath plus a containment check
// against baseDir, used for the file storage driver's data directory.
func ValidateFilePathInDir(path, baseDir string) (string, error) {
	if baseDir == "" {
		return "", errEmptyBase
	}

	cleanPath, err := ValidateFilePath(path)
	if err != nil {
		return "", err
	}

	base, err := absolute(baseDir)
	if err != nil {
		return "", err
	}
	if base, err = resolve(base, "base directory"); err != nil {
		return "", err
	}

	rel, err := filepath.Rel(base, cleanPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is not within %s", ErrEscapesBase, path, baseDir)
	}
	return cleanPath, nil
}

// SafeReadFile reads a file after validating the path.
func SafeReadFile(path string) ([]byte, error) {
	cleanPath, err := ValidateFilePath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is validated above
	return os.ReadFile(cleanPath)
}

func absolute(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return abs, nil
}

// resolve follows symlinks, keeping the cleaned path when nothing exists
// there yet.
func resolve(path, what string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	switch {
	case err == nil:
		return resolved, nil
	case os.IsNotExist(err):
		return path, nil
	default:
		return "", fmt.Errorf("failed to resolve %s: %w", what, err)
	}
}
