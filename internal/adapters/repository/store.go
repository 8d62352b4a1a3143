// Package repository persists the score history and the model artifact.
package repository

import (
	"context"
	"time"

	"github.com/okian/modelgate/internal/domain/model"
	"github.com/okian/modelgate/internal/domain/training"
)

// HistoryStore provides read/write access to the score history.
type HistoryStore interface {
	// Load returns the recorded history. A missing store yields an empty
	// history and no error.
	Load(ctx context.Context) (model.ScoreHistory, error)
	// Save replaces the stored history. The write is all-or-nothing.
	Save(ctx context.Context, h model.ScoreHistory) error
	// Path returns the location of the history document.
	Path() string
}

// Artifact is the persisted form of a trained model.
type Artifact struct {
	RunID     string          `json:"run_id"`
	Score     float64         `json:"score"`
	TrainedAt time.Time       `json:"trained_at"`
	Model     *training.Model `json:"model"`
}

// ArtifactStore persists the trained model at a fixed location.
type ArtifactStore interface {
	Save(ctx context.Context, a Artifact) error
	Load(ctx context.Context) (Artifact, error)
	Exists(ctx context.Context) bool
	// Path returns the location of the artifact.
	Path() string
}
