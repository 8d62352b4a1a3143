package service

import (
	"time"

	"github.com/okian/modelgate/internal/adapters/repository"
	"github.com/okian/modelgate/internal/domain/training"
	"github.com/okian/modelgate/pkg/logger"
	"github.com/okian/modelgate/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTrainer sets the component that produces the model and its score.
func WithTrainer(t training.Trainer) Option {
	return func(s *Service) {
		if t != nil {
			s.trainer = t
		}
	}
}

// WithHistoryStore sets where the score history lives.
func WithHistoryStore(h repository.HistoryStore) Option {
	return func(s *Service) {
		if h != nil {
			s.history = h
		}
	}
}

// WithArtifactStore sets where the trained model is written.
func WithArtifactStore(a repository.ArtifactStore) Option {
	return func(s *Service) {
		if a != nil {
			s.artifacts = a
		}
	}
}

// WithMetrics sets the metrics manager updated by each run.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.runID = id
		}
	}
}

// WithClock overrides the time source used to stamp artifacts.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
