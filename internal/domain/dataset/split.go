package dataset

import (
	"fmt"
	"math"
	"math/rand"
)

// Split holds disjoint train and test partitions of a Dataset.
type Split struct {
	Features []string
	TrainX   [][]float64
	TrainY   []float64
	TestX    [][]float64
	TestY    []float64
}

// TrainTestSplit shuffles ds with a PRNG seeded by seed and holds out
// ceil(testSize*n) rows for testing. Both partitions must be non-empty.
func TrainTestSplit(ds Dataset, testSize float64, seed int64) (Split, error) {
	if testSize <= 0 || testSize >= 1 {
		return Split{}, fmt.Errorf("%w: test size %v must be in (0, 1)", ErrInvalidSplit, testSize)
	}
	n := ds.Rows()
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return Split{}, fmt.Errorf("%w: %d rows cannot be split with test size %v", ErrInvalidSplit, n, testSize)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // reproducible split, not security sensitive

	s := Split{
		Features: ds.Features,
		TestX:    make([][]float64, 0, nTest),
		TestY:    make([]float64, 0, nTest),
		TrainX:   make([][]float64, 0, nTrain),
		TrainY:   make([]float64, 0, nTrain),
	}
	for i, idx := range perm {
		if i < nTest {
			s.TestX = append(s.TestX, ds.X[idx])
			s.TestY = append(s.TestY, ds.Y[idx])
			continue
		}
		s.TrainX = append(s.TrainX, ds.X[idx])
		s.TrainY = append(s.TrainY, ds.Y[idx])
	}
	return s, nil
}
