package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/security"
)

// FileSource reads a static JSON file. A missing file means "no data".
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch implements bootstrap.Source.
func (s *FileSource) Fetch(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := security.SafeReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return decoded, nil
}

// Empty is a source with no data.
type Empty struct{}

// Fetch implements bootstrap.Source.
func (Empty) Fetch(context.Context) (any, error) { return nil, nil }
