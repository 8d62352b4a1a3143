package repository

import (
	"context"
	"errors"
	"os"

	"github.com/okian/modelgate/internal/domain/model"
)

// JSONHistoryStore keeps the score history as a JSON array on disk.
type JSONHistoryStore struct {
	fs *fileStore
}

// NewJSONHistoryStore creates a store for the document at path.
func NewJSONHistoryStore(path string, opts ...Option) (*JSONHistoryStore, error) {
	fs, err := newFileStore(path, opts...)
	if err != nil {
		return nil, err
	}
	return &JSONHistoryStore{fs: fs}, nil
}

// Load implements HistoryStore.
func (s *JSONHistoryStore) Load(ctx context.Context) (model.ScoreHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var h model.ScoreHistory
	if err := s.fs.readJSON(&h); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.ScoreHistory{}, nil
		}
		return nil, err
	}
	if h == nil {
		// A literal "null" document.
		h = model.ScoreHistory{}
	}
	return h, nil
}

// Save implements HistoryStore.
func (s *JSONHistoryStore) Save(ctx context.Context, h model.ScoreHistory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h == nil {
		h = model.ScoreHistory{}
	}
	return s.fs.writeJSON(h)
}

// Path implements HistoryStore.
func (s *JSONHistoryStore) Path() string { return s.fs.path }
