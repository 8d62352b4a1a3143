// Package config defines gate configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Validation errors wrap ErrInvalidConfig.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// DataPath is the CSV training data location.
	DataPath string `koanf:"data_path"`

	// TargetColumn names the binary label column in the data.
	TargetColumn string `koanf:"target_column"`

	// ModelPath is where the trained model artifact is written.
	ModelPath string `koanf:"model_path"`

	// HistoryPath is the JSON score history document.
	HistoryPath string `koanf:"history_path"`

	// TestSize is the fraction of rows held out for scoring.
	TestSize float64 `koanf:"test_size"`

	// RandomSeed seeds the train/test shuffle.
	RandomSeed int64 `koanf:"random_seed"`

	// LearningRate, Epochs and L2 tune gradient descent.
	LearningRate float64 `koanf:"learning_rate"`
	Epochs       int     `koanf:"epochs"`
	L2           float64 `koanf:"l2"`

	// MetricsPath, when set, receives a Prometheus textfile after each run.
	MetricsPath string `koanf:"metrics_path"`

	// PushgatewayURL, when set, receives the run metrics.
	PushgatewayURL string `koanf:"pushgateway_url"`

	// GenerateRows is the default row count for dataset generation.
	GenerateRows int `koanf:"generate_rows"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		DataPath:     "data/credit_card_records.csv",
		TargetColumn: "Fraudulent",
		ModelPath:    "models/model.json",
		HistoryPath:  "model_scores.json",
		TestSize:     0.2,
		RandomSeed:   42,
		LearningRate: 0.1,
		Epochs:       500,
		L2:           0.01,
		GenerateRows: 50,
	}
}
