package service_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/modelgate/internal/adapters/repository"
	service "github.com/okian/modelgate/internal/app"
	"github.com/okian/modelgate/internal/domain/gate"
	"github.com/okian/modelgate/internal/domain/model"
	"github.com/okian/modelgate/internal/domain/training"
	"github.com/okian/modelgate/pkg/logger"
	"github.com/okian/modelgate/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	var sink bytes.Buffer
	if err := logger.Init(logger.WithWriter(&sink)); err != nil {
		panic(err)
	}
}

// fixedTrainer returns a preset score, or err when set.
type fixedTrainer struct {
	score float64
	err   error
}

func (f fixedTrainer) Train(context.Context) (training.Result, error) {
	if f.err != nil {
		return training.Result{}, f.err
	}
	return training.Result{
		Model: &training.Model{
			Features: []string{"amount"},
			Mean:     []float64{0},
			Std:      []float64{1},
			Weights:  []float64{1},
		},
		Score:     f.score,
		TrainRows: 8,
		TestRows:  2,
	}, nil
}

type fixture struct {
	dir         string
	historyPath string
	modelPath   string
	history     *repository.JSONHistoryStore
	artifacts   *repository.JSONArtifactStore
}

func newFixture(t *testing.T) fixture {
	dir := t.TempDir()
	f := fixture{
		dir:         dir,
		historyPath: filepath.Join(dir, "model_scores.json"),
		modelPath:   filepath.Join(dir, "models", "model.json"),
	}
	var err error
	if f.history, err = repository.NewJSONHistoryStore(f.historyPath); err != nil {
		t.Fatal(err)
	}
	if f.artifacts, err = repository.NewJSONArtifactStore(f.modelPath); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f fixture) writeHistory(content string) {
	So(os.WriteFile(f.historyPath, []byte(content), 0o600), ShouldBeNil)
}

func (f fixture) readHistory() []byte {
	b, err := os.ReadFile(f.historyPath)
	So(err, ShouldBeNil)
	return b
}

func (f fixture) service(score float64) *service.Service {
	return service.New(
		service.WithTrainer(fixedTrainer{score: score}),
		service.WithHistoryStore(f.history),
		service.WithArtifactStore(f.artifacts),
		service.WithRunID("run-test"),
		service.WithClock(func() time.Time { return time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC) }),
	)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it has a run id and metrics but no collaborators", func() {
			So(svc.RunID(), ShouldNotBeEmpty)
			So(svc.Metrics(), ShouldNotBeNil)
			So(svc.Validate(), ShouldNotBeNil)
		})

		Convey("And evaluating fails without touching anything", func() {
			_, err := svc.Evaluate(context.Background())
			So(err, ShouldNotBeNil)
		})
	})
}

func TestService_Evaluate_EmptyHistory(t *testing.T) {
	ctx := context.Background()

	Convey("Given no score history on disk", t, func() {
		f := newFixture(t)

		Convey("Then every valid score passes", func() {
			for _, s := range []float64{0, 0.04, 0.5, 0.99, 1} {
				rep, err := f.service(s).Evaluate(ctx)
				So(err, ShouldBeNil)
				So(rep.Passed, ShouldBeTrue)
				So(rep.HasBaseline, ShouldBeFalse)
				So(rep.Score, ShouldEqual, s)
			}
		})

		Convey("And the model artifact is written", func() {
			rep, err := f.service(0.7).Evaluate(ctx)
			So(err, ShouldBeNil)
			So(rep.ArtifactPath, ShouldEqual, f.modelPath)
			a, err := f.artifacts.Load(ctx)
			So(err, ShouldBeNil)
			So(a.RunID, ShouldEqual, "run-test")
			So(a.Score, ShouldEqual, 0.7)
		})

		Convey("And evaluate does not create a history file", func() {
			_, err := f.service(0.7).Evaluate(ctx)
			So(err, ShouldBeNil)
			_, err = os.Stat(f.historyPath)
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})
	})
}

func TestService_Evaluate_Baseline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a history with baseline 0.8 (version 1.0)", t, func() {
		f := newFixture(t)
		f.writeHistory(`[{"version":"1.0","score":0.8}]`)
		before := f.readHistory()

		Convey("When the new score is 0.85", func() {
			rep, err := f.service(0.85).Evaluate(ctx)

			Convey("Then the gate passes against the baseline", func() {
				So(err, ShouldBeNil)
				So(rep.Passed, ShouldBeTrue)
				So(rep.HasBaseline, ShouldBeTrue)
				So(rep.Baseline, ShouldResemble, model.ScoreRecord{Version: "1.0", Score: 0.8})
			})

			Convey("And the history is untouched", func() {
				So(f.readHistory(), ShouldResemble, before)
			})
		})

		Convey("When the new score equals the baseline", func() {
			rep, err := f.service(0.8).Evaluate(ctx)

			Convey("Then the gate passes", func() {
				So(err, ShouldBeNil)
				So(rep.Passed, ShouldBeTrue)
			})
		})

		Convey("When the new score is below the baseline", func() {
			rep, err := f.service(0.04).Evaluate(ctx)

			Convey("Then the gate fails with ErrRegression", func() {
				So(errors.Is(err, gate.ErrRegression), ShouldBeTrue)
				So(errors.Is(err, gate.ErrTraining), ShouldBeFalse)
				So(rep.Passed, ShouldBeFalse)
				So(rep.Score, ShouldEqual, 0.04)
			})

			Convey("And the history is byte-for-byte identical", func() {
				So(f.readHistory(), ShouldResemble, before)
			})
		})
	})
}

func TestService_Evaluate_Failures(t *testing.T) {
	ctx := context.Background()

	Convey("Given a history on disk", t, func() {
		f := newFixture(t)
		f.writeHistory(`[{"version":"1.1","score":0.8}]`)
		before := f.readHistory()

		Convey("When the score is outside [0, 1] or not finite", func() {
			for _, s := range []float64{-0.1, 1.5, math.NaN(), math.Inf(1)} {
				_, err := f.service(s).Evaluate(ctx)
				So(errors.Is(err, gate.ErrInvalidScore), ShouldBeTrue)
				So(errors.Is(err, gate.ErrRegression), ShouldBeFalse)
			}

			Convey("Then no artifact is written and history is unchanged", func() {
				So(f.artifacts.Exists(ctx), ShouldBeFalse)
				So(f.readHistory(), ShouldResemble, before)
			})
		})

		Convey("When training fails", func() {
			svc := service.New(
				service.WithTrainer(fixedTrainer{err: errors.New("data/credit_card_records.csv: no such file")}),
				service.WithHistoryStore(f.history),
				service.WithArtifactStore(f.artifacts),
			)
			_, err := svc.Evaluate(ctx)

			Convey("Then the error is ErrTraining and keeps the cause", func() {
				So(errors.Is(err, gate.ErrTraining), ShouldBeTrue)
				So(errors.Is(err, gate.ErrRegression), ShouldBeFalse)
				So(err.Error(), ShouldContainSubstring, "no such file")
			})

			Convey("And history is unchanged", func() {
				So(f.readHistory(), ShouldResemble, before)
			})
		})
	})

	Convey("Given a corrupt history file", t, func() {
		f := newFixture(t)

		Convey("When the document is not JSON", func() {
			f.writeHistory(`not json`)
			before := f.readHistory()
			_, err := f.service(0.9).Evaluate(ctx)

			Convey("Then the gate fails with ErrCorruptHistory and leaves it alone", func() {
				So(errors.Is(err, gate.ErrCorruptHistory), ShouldBeTrue)
				So(errors.Is(err, repository.ErrDecode), ShouldBeTrue)
				So(f.readHistory(), ShouldResemble, before)
			})
		})

		Convey("When the history path is a directory", func() {
			So(os.Mkdir(f.historyPath, 0o755), ShouldBeNil)
			_, err := f.service(0.9).Evaluate(ctx)

			Convey("Then the gate fails with ErrCorruptHistory instead of passing", func() {
				So(errors.Is(err, gate.ErrCorruptHistory), ShouldBeTrue)
				So(errors.Is(err, repository.ErrInvalidPath), ShouldBeTrue)
			})
		})

		Convey("When a stored score is out of range", func() {
			f.writeHistory(`[{"version":"1.0","score":7}]`)
			_, err := f.service(0.9).Evaluate(ctx)

			Convey("Then the gate fails with ErrCorruptHistory", func() {
				So(errors.Is(err, gate.ErrCorruptHistory), ShouldBeTrue)
			})
		})
	})
}

func TestService_Commit(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty history", t, func() {
		f := newFixture(t)

		Convey("When committing a passing score", func() {
			rep, err := f.service(0.8).Commit(ctx, "1.0")

			Convey("Then exactly one record is appended", func() {
				So(err, ShouldBeNil)
				So(rep.Committed, ShouldResemble, &model.ScoreRecord{Version: "1.0", Score: 0.8})
				h, err := f.history.Load(ctx)
				So(err, ShouldBeNil)
				So(h, ShouldResemble, model.ScoreHistory{{Version: "1.0", Score: 0.8}})
			})

			Convey("And a later, better commit appends after it", func() {
				_, err := f.service(0.85).Commit(ctx, "1.1")
				So(err, ShouldBeNil)
				h, err := f.history.Load(ctx)
				So(err, ShouldBeNil)
				So(h.Len(), ShouldEqual, 2)
				base, _ := h.Baseline()
				So(base, ShouldResemble, model.ScoreRecord{Version: "1.1", Score: 0.85})
			})
		})
	})

	Convey("Given a history with baseline 0.8 (version 1.1)", t, func() {
		f := newFixture(t)
		f.writeHistory(`[{"version":"1.1","score":0.8}]`)
		before := f.readHistory()

		Convey("When committing a regressing score", func() {
			rep, err := f.service(0.04).Commit(ctx, "1.2")

			Convey("Then nothing is written", func() {
				So(errors.Is(err, gate.ErrRegression), ShouldBeTrue)
				So(rep.Committed, ShouldBeNil)
				So(f.readHistory(), ShouldResemble, before)
			})
		})

		Convey("When committing with a version that is not newer", func() {
			_, err := f.service(0.9).Commit(ctx, "1.1")

			Convey("Then the commit is rejected and nothing is written", func() {
				So(errors.Is(err, gate.ErrInvalidVersion), ShouldBeTrue)
				So(f.readHistory(), ShouldResemble, before)
			})
		})

		Convey("When the version carries surrounding whitespace", func() {
			rep, err := f.service(0.9).Commit(ctx, " 1.2 ")

			Convey("Then the trimmed version is recorded", func() {
				So(err, ShouldBeNil)
				So(rep.Committed.Version, ShouldEqual, "1.2")
				h, err := f.history.Load(ctx)
				So(err, ShouldBeNil)
				base, _ := h.Baseline()
				So(base, ShouldResemble, model.ScoreRecord{Version: "1.2", Score: 0.9})
			})
		})

		Convey("When committing with a malformed version", func() {
			_, err := f.service(0.9).Commit(ctx, "next")

			Convey("Then the commit is rejected", func() {
				So(errors.Is(err, gate.ErrInvalidVersion), ShouldBeTrue)
				So(f.readHistory(), ShouldResemble, before)
			})
		})
	})
}

// runsByOutcome reads modelgate_gate_runs_total from reg, keyed by outcome.
func runsByOutcome(reg *prometheus.Registry) map[string]float64 {
	out := map[string]float64{}
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	for _, f := range families {
		if f.GetName() != "modelgate_gate_runs_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" {
					out[l.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	return out
}

func TestService_Metrics(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with its own metrics manager", t, func() {
		f := newFixture(t)
		f.writeHistory(`[{"version":"1.0","score":0.8}]`)
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithRegistry(reg))
		build := func(tr training.Trainer) *service.Service {
			return service.New(
				service.WithTrainer(tr),
				service.WithHistoryStore(f.history),
				service.WithArtifactStore(f.artifacts),
				service.WithMetrics(m),
			)
		}

		Convey("When runs pass, regress and fail", func() {
			_, err := build(fixedTrainer{score: 0.9}).Evaluate(ctx)
			So(err, ShouldBeNil)
			_, err = build(fixedTrainer{score: 0.1}).Evaluate(ctx)
			So(errors.Is(err, gate.ErrRegression), ShouldBeTrue)
			_, err = build(fixedTrainer{err: errors.New("boom")}).Evaluate(ctx)
			So(errors.Is(err, gate.ErrTraining), ShouldBeTrue)

			Convey("Then each outcome is counted once", func() {
				runs := runsByOutcome(reg)
				So(runs[metrics.OutcomePass], ShouldEqual, 1.0)
				So(runs[metrics.OutcomeRegression], ShouldEqual, 1.0)
				So(runs[metrics.OutcomeError], ShouldEqual, 1.0)
			})

			Convey("And the service exposes the manager", func() {
				So(build(fixedTrainer{}).Metrics(), ShouldEqual, m)
			})
		})
	})
}
