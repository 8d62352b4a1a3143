// Package training fits the fraud classifier and scores it on held-out data.
package training

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/modelgate/internal/domain/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// decisionThreshold separates positive from negative predictions.
const decisionThreshold = 0.5

// Model is a fitted logistic regression over standardised features.
type Model struct {
	Features []string  `json:"features"`
	Mean     []float64 `json:"mean"`
	Std      []float64 `json:"std"`
	Weights  []float64 `json:"weights"`
	Bias     float64   `json:"bias"`
}

// Result is the outcome of a training run.
type Result struct {
	Model *Model
	// Score is the accuracy on the test partition.
	Score float64
	// TrainRows and TestRows count the samples used on each side.
	TrainRows int
	TestRows  int
}

// Predict returns the probability that x belongs to the positive class.
func (m *Model) Predict(x []float64) (float64, error) {
	if len(x) != len(m.Weights) {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrFeatureMismatch, len(x), len(m.Weights))
	}
	z := m.Bias
	for j, v := range x {
		z += m.Weights[j] * (v - m.Mean[j]) / m.Std[j]
	}
	return sigmoid(z), nil
}

// Accuracy returns the fraction of rows whose predicted class matches y.
func (m *Model) Accuracy(x [][]float64, y []float64) (float64, error) {
	if len(x) == 0 {
		return 0, fmt.Errorf("%w: no rows to score", ErrEmptyTrainingSet)
	}
	if len(y) != len(x) {
		return 0, fmt.Errorf("%w: %d labels for %d rows", ErrFeatureMismatch, len(y), len(x))
	}
	correct := 0
	for i, row := range x {
		p, err := m.Predict(row)
		if err != nil {
			return 0, err
		}
		if classify(p) == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(x)), nil
}

// Fit trains a model on s.TrainX/TrainY by full-batch gradient descent and
// scores it on s.TestX/TestY. Fit has no side effects; the same input
// always yields the same Result.
func Fit(ctx context.Context, s dataset.Split, p Params) (Result, error) {
	if p.LearningRate <= 0 || p.Epochs <= 0 || p.L2 < 0 {
		return Result{}, fmt.Errorf("%w: %+v", ErrInvalidParams, p)
	}
	n := len(s.TrainX)
	if n == 0 {
		return Result{}, ErrEmptyTrainingSet
	}
	d := len(s.TrainX[0])
	if d == 0 {
		return Result{}, fmt.Errorf("%w: no features", ErrEmptyTrainingSet)
	}
	if err := checkShape(s, d); err != nil {
		return Result{}, err
	}

	mean, std := standardisation(s.TrainX, d)
	x := mat.NewDense(n, d, nil)
	for i, row := range s.TrainX {
		for j, v := range row {
			x.Set(i, j, (v-mean[j])/std[j])
		}
	}
	y := mat.NewVecDense(n, append([]float64(nil), s.TrainY...))

	w := mat.NewVecDense(d, nil)
	var bias float64
	z := mat.NewVecDense(n, nil)
	residual := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(d, nil)

	for epoch := 0; epoch < p.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("training interrupted at epoch %d: %w", epoch, err)
		}
		z.MulVec(x, w)
		for i := 0; i < n; i++ {
			residual.SetVec(i, sigmoid(z.AtVec(i)+bias)-y.AtVec(i))
		}
		grad.MulVec(x.T(), residual)
		grad.ScaleVec(1/float64(n), grad)
		grad.AddScaledVec(grad, p.L2, w)

		w.AddScaledVec(w, -p.LearningRate, grad)
		bias -= p.LearningRate * floats.Sum(residual.RawVector().Data) / float64(n)
	}

	weights := make([]float64, d)
	for j := range weights {
		weights[j] = w.AtVec(j)
	}
	m := &Model{
		Features: append([]string(nil), s.Features...),
		Mean:     mean,
		Std:      std,
		Weights:  weights,
		Bias:     bias,
	}

	score, err := m.Accuracy(s.TestX, s.TestY)
	if err != nil {
		return Result{}, err
	}
	return Result{Model: m, Score: score, TrainRows: n, TestRows: len(s.TestX)}, nil
}

// checkShape rejects ragged rows and label counts that do not match the rows.
func checkShape(s dataset.Split, d int) error {
	if len(s.TrainY) != len(s.TrainX) {
		return fmt.Errorf("%w: %d training labels for %d rows", ErrFeatureMismatch, len(s.TrainY), len(s.TrainX))
	}
	if len(s.TestY) != len(s.TestX) {
		return fmt.Errorf("%w: %d test labels for %d rows", ErrFeatureMismatch, len(s.TestY), len(s.TestX))
	}
	for i, row := range s.TrainX {
		if len(row) != d {
			return fmt.Errorf("%w: training row %d has %d features, want %d", ErrFeatureMismatch, i, len(row), d)
		}
	}
	for i, row := range s.TestX {
		if len(row) != d {
			return fmt.Errorf("%w: test row %d has %d features, want %d", ErrFeatureMismatch, i, len(row), d)
		}
	}
	return nil
}

// standardisation returns per-column mean and standard deviation.
// Constant columns get a deviation of 1 so they scale to zero.
func standardisation(rows [][]float64, d int) (mean, std []float64) {
	mean = make([]float64, d)
	std = make([]float64, d)
	col := make([]float64, len(rows))
	for j := 0; j < d; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		m, sd := stat.MeanStdDev(col, nil)
		if math.IsNaN(sd) || sd == 0 {
			sd = 1
		}
		mean[j], std[j] = m, sd
	}
	return mean, std
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func classify(p float64) float64 {
	if p >= decisionThreshold {
		return 1
	}
	return 0
}
