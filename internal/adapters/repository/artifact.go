package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// JSONArtifactStore writes the model artifact as a JSON document.
type JSONArtifactStore struct {
	fs *fileStore
}

// NewJSONArtifactStore creates a store for the artifact at path.
func NewJSONArtifactStore(path string, opts ...Option) (*JSONArtifactStore, error) {
	fs, err := newFileStore(path, opts...)
	if err != nil {
		return nil, err
	}
	return &JSONArtifactStore{fs: fs}, nil
}

// Save implements ArtifactStore.
func (s *JSONArtifactStore) Save(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.Model == nil {
		return fmt.Errorf("save artifact %s: nil model", s.fs.path)
	}
	return s.fs.writeJSON(a)
}

// Load implements ArtifactStore.
func (s *JSONArtifactStore) Load(ctx context.Context) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	var a Artifact
	if err := s.fs.readJSON(&a); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Artifact{}, fmt.Errorf("%w: %s", ErrNoArtifact, s.fs.path)
		}
		return Artifact{}, err
	}
	return a, nil
}

// Exists implements ArtifactStore.
func (s *JSONArtifactStore) Exists(_ context.Context) bool {
	return s.fs.exists()
}

// Path implements ArtifactStore.
func (s *JSONArtifactStore) Path() string { return s.fs.path }
