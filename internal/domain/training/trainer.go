package training

import (
	"context"

	"github.com/okian/modelgate/internal/domain/dataset"
)

// Trainer produces a trained model and its score.
type Trainer interface {
	Train(ctx context.Context) (Result, error)
}

// CSVTrainer loads a CSV dataset, splits it and fits a model.
type CSVTrainer struct {
	path     string
	target   string
	testSize float64
	seed     int64
	params   Params
}

// NewCSVTrainer creates a trainer reading from path.
func NewCSVTrainer(path string, opts ...Option) *CSVTrainer {
	t := &CSVTrainer{
		path:     path,
		target:   "Fraudulent",
		testSize: DefaultTestSize,
		seed:     DefaultSeed,
		params:   DefaultParams(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Train implements Trainer.
func (t *CSVTrainer) Train(ctx context.Context) (Result, error) {
	ds, err := dataset.Load(ctx, t.path, t.target)
	if err != nil {
		return Result{}, err
	}
	split, err := dataset.TrainTestSplit(ds, t.testSize, t.seed)
	if err != nil {
		return Result{}, err
	}
	return Fit(ctx, split, t.params)
}

// Path returns the dataset location.
func (t *CSVTrainer) Path() string { return t.path }
