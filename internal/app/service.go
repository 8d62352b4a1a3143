// Package service runs the model gate: train, score, compare with the
// recorded baseline and optionally record the new score.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/modelgate/internal/adapters/repository"
	"github.com/okian/modelgate/internal/domain/gate"
	"github.com/okian/modelgate/internal/domain/model"
	"github.com/okian/modelgate/internal/domain/training"
	"github.com/okian/modelgate/pkg/logger"
	"github.com/okian/modelgate/pkg/metrics"
)

// Report summarises one gate run.
type Report struct {
	RunID        string             `json:"run_id" yaml:"run_id"`
	Score        float64            `json:"score" yaml:"score"`
	Baseline     model.ScoreRecord  `json:"baseline" yaml:"baseline"`
	HasBaseline  bool               `json:"has_baseline" yaml:"has_baseline"`
	Passed       bool               `json:"passed" yaml:"passed"`
	ArtifactPath string             `json:"artifact_path,omitempty" yaml:"artifact_path,omitempty"`
	Committed    *model.ScoreRecord `json:"committed,omitempty" yaml:"committed,omitempty"`
}

// Service wires the trainer, stores and metrics together.
type Service struct {
	trainer   training.Trainer
	history   repository.HistoryStore
	artifacts repository.ArtifactStore
	metrics   *metrics.Manager
	logger    logger.Logger
	runID     string
	now       func() time.Time
}

// New constructs a Service. A trainer and a history store are required;
// see Validate.
func New(opts ...Option) *Service {
	s := &Service{
		runID: uuid.New().String(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewManager()
	}
	s.logger = s.logger.With(logger.String("run_id", s.runID))
	return s
}

// Validate reports missing collaborators.
func (s *Service) Validate() error {
	switch {
	case s.trainer == nil:
		return errors.New("service: trainer is required")
	case s.history == nil:
		return errors.New("service: history store is required")
	}
	return nil
}

// RunID returns the identifier attached to this service's runs.
func (s *Service) RunID() string { return s.runID }

// Metrics returns the metrics manager updated by runs.
func (s *Service) Metrics() *metrics.Manager { return s.metrics }

// Evaluate trains a model, validates its score, writes the artifact and
// compares the score with the history baseline. The history is never
// modified. Errors wrap one of the gate sentinels.
func (s *Service) Evaluate(ctx context.Context) (Report, error) {
	rep, _, err := s.evaluate(ctx)
	s.recordOutcome(ctx, err)
	return rep, err
}

// Commit runs Evaluate and, when the gate passes, appends {version, score}
// to the history in a single atomic write. Nothing is written on failure.
func (s *Service) Commit(ctx context.Context, version string) (Report, error) {
	rep, err := s.commit(ctx, version)
	s.recordOutcome(ctx, err)
	return rep, err
}

func (s *Service) commit(ctx context.Context, version string) (Report, error) {
	rep, h, err := s.evaluate(ctx)
	if err != nil {
		return rep, err
	}
	version = strings.TrimSpace(version)
	if err := gate.ValidateVersion(version, h); err != nil {
		s.logger.Error(ctx, "commit rejected", logger.String("version", version), logger.Error(err))
		return rep, err
	}

	rec := model.ScoreRecord{Version: version, Score: rep.Score}
	if err := s.history.Save(ctx, h.Append(rec)); err != nil {
		return rep, fmt.Errorf("save history %s: %w", s.history.Path(), err)
	}
	rep.Committed = &rec
	s.metrics.RecordCommit()
	s.metrics.SetHistoryRecords(h.Len() + 1)
	s.logger.Info(ctx, "score recorded",
		logger.String("version", version),
		logger.Float64("score", rep.Score),
		logger.String("history", s.history.Path()),
	)
	return rep, nil
}

func (s *Service) evaluate(ctx context.Context) (Report, model.ScoreHistory, error) {
	rep := Report{RunID: s.runID}
	if err := s.Validate(); err != nil {
		return rep, nil, err
	}

	start := time.Now()
	res, err := s.trainer.Train(ctx)
	if err != nil {
		s.logger.Error(ctx, "training failed", logger.Error(err))
		return rep, nil, fmt.Errorf("%w: %w", gate.ErrTraining, err)
	}
	s.metrics.ObserveTraining(time.Since(start), res.TrainRows, res.TestRows)
	rep.Score = res.Score
	s.metrics.SetScore(res.Score)
	s.logger.Info(ctx, "model trained",
		logger.Float64("score", res.Score),
		logger.Int("train_rows", res.TrainRows),
		logger.Int("test_rows", res.TestRows),
		logger.Duration("took", time.Since(start)),
	)

	if err := gate.ValidateScore(res.Score); err != nil {
		s.logger.Error(ctx, "invalid score", logger.Error(err))
		return rep, nil, err
	}

	if err := s.saveArtifact(ctx, res); err != nil {
		s.logger.Error(ctx, "model artifact not written", logger.Error(err))
		return rep, nil, fmt.Errorf("%w: %w", gate.ErrTraining, err)
	}
	if s.artifacts != nil {
		rep.ArtifactPath = s.artifacts.Path()
	}

	h, err := s.history.Load(ctx)
	if err != nil {
		s.logger.Error(ctx, "score history unreadable", logger.String("history", s.history.Path()), logger.Error(err))
		return rep, nil, fmt.Errorf("%w: %w", gate.ErrCorruptHistory, err)
	}
	if err := gate.ValidateHistory(h); err != nil {
		s.logger.Error(ctx, "score history unreadable", logger.String("history", s.history.Path()), logger.Error(err))
		return rep, nil, err
	}
	s.metrics.SetHistoryRecords(h.Len())

	d, err := gate.Check(res.Score, h)
	rep.Baseline, rep.HasBaseline, rep.Passed = d.Baseline, d.HasBaseline, d.Passed
	if d.HasBaseline {
		s.metrics.SetBaseline(d.Baseline.Score)
	}
	if err != nil {
		s.logger.Error(ctx, "model regression detected",
			logger.Float64("score", res.Score),
			logger.Float64("baseline", d.Baseline.Score),
			logger.String("baseline_version", d.Baseline.Version),
		)
		return rep, h, err
	}

	if d.HasBaseline {
		s.logger.Info(ctx, "gate passed",
			logger.Float64("score", res.Score),
			logger.Float64("baseline", d.Baseline.Score),
			logger.String("baseline_version", d.Baseline.Version),
		)
	} else {
		s.logger.Info(ctx, "gate passed with empty history", logger.Float64("score", res.Score))
	}
	return rep, h, nil
}

func (s *Service) saveArtifact(ctx context.Context, res training.Result) error {
	if s.artifacts == nil {
		return nil
	}
	a := repository.Artifact{
		RunID:     s.runID,
		Score:     res.Score,
		TrainedAt: s.now().UTC(),
		Model:     res.Model,
	}
	if err := s.artifacts.Save(ctx, a); err != nil {
		return err
	}
	s.logger.Debug(ctx, "model artifact written", logger.String("path", s.artifacts.Path()))
	return nil
}

func (s *Service) recordOutcome(ctx context.Context, err error) {
	switch {
	case err == nil:
		s.metrics.RecordRun(metrics.OutcomePass)
	case errors.Is(err, gate.ErrRegression):
		s.metrics.RecordRun(metrics.OutcomeRegression)
	default:
		s.metrics.RecordRun(metrics.OutcomeError)
	}
	s.logger.Debug(ctx, "run recorded", logger.Bool("passed", err == nil))
}
