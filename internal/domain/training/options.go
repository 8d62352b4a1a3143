package training

// Default hyper-parameters.
const (
	DefaultLearningRate = 0.1
	DefaultEpochs       = 500
	DefaultL2           = 0.01
	DefaultTestSize     = 0.2
	DefaultSeed         = 42
)

// Params controls gradient descent.
type Params struct {
	LearningRate float64
	Epochs       int
	L2           float64
}

// DefaultParams returns the hyper-parameters used when none are configured.
func DefaultParams() Params {
	return Params{
		LearningRate: DefaultLearningRate,
		Epochs:       DefaultEpochs,
		L2:           DefaultL2,
	}
}

// Option applies a configuration option to the CSVTrainer.
type Option func(*CSVTrainer)

// WithParams sets the gradient descent hyper-parameters.
func WithParams(p Params) Option {
	return func(t *CSVTrainer) {
		t.params = p
	}
}

// WithTestSize sets the held-out fraction used for scoring.
func WithTestSize(size float64) Option {
	return func(t *CSVTrainer) {
		if size > 0 && size < 1 {
			t.testSize = size
		}
	}
}

// WithSeed sets the seed of the train/test shuffle.
func WithSeed(seed int64) Option {
	return func(t *CSVTrainer) {
		t.seed = seed
	}
}

// WithTarget sets the label column name.
func WithTarget(column string) Option {
	return func(t *CSVTrainer) {
		if column != "" {
			t.target = column
		}
	}
}
