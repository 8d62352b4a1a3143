// Package gate decides whether a newly evaluated model may replace the
// recorded baseline.
package gate

import (
	"fmt"
	"math"

	"github.com/okian/modelgate/internal/domain/model"
)

// Score domain bounds.
const (
	MinScore = 0.0
	MaxScore = 1.0
)

// Decision is the outcome of comparing a score with the history.
type Decision struct {
	Score       float64
	Baseline    model.ScoreRecord
	HasBaseline bool
	Passed      bool
}

// ValidateScore reports ErrInvalidScore unless s is finite and in [0, 1].
func ValidateScore(s float64) error {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return fmt.Errorf("%w: %v is not a finite number", ErrInvalidScore, s)
	}
	if s < MinScore || s > MaxScore {
		return fmt.Errorf("%w: %v outside [%v, %v]", ErrInvalidScore, s, MinScore, MaxScore)
	}
	return nil
}

// ValidateHistory checks every stored record for a usable version and score.
func ValidateHistory(h model.ScoreHistory) error {
	for i, rec := range h {
		if rec.Version == "" {
			return fmt.Errorf("%w: record %d has an empty version", ErrCorruptHistory, i)
		}
		if err := ValidateScore(rec.Score); err != nil {
			return fmt.Errorf("%w: record %d (%s): %w", ErrCorruptHistory, i, rec.Version, err)
		}
	}
	return nil
}

// Check compares score against the last record of h.
//
// An empty history always passes. Otherwise the score passes when it is equal
// to or greater than the baseline; the comparison is exact.
// The returned Decision is populated even when err is ErrRegression.
func Check(score float64, h model.ScoreHistory) (Decision, error) {
	d := Decision{Score: score}
	if err := ValidateScore(score); err != nil {
		return d, err
	}

	base, ok := h.Baseline()
	if !ok {
		d.Passed = true
		return d, nil
	}
	d.Baseline = base
	d.HasBaseline = true

	if score < base.Score {
		return d, fmt.Errorf("%w: score %.4f is below baseline %.4f (version %s)",
			ErrRegression, score, base.Score, base.Version)
	}
	d.Passed = true
	return d, nil
}
