package training_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/modelgate/internal/domain/dataset"
	"github.com/okian/modelgate/internal/domain/training"
	. "github.com/smartystreets/goconvey/convey"
)

// separable returns a split where label = x > 10.5.
func separable() dataset.Split {
	s := dataset.Split{Features: []string{"amount"}}
	for i := 1; i <= 20; i++ {
		s.TrainX = append(s.TrainX, []float64{float64(i)})
		s.TrainY = append(s.TrainY, boolLabel(i > 10))
	}
	for _, v := range []float64{2, 5, 15, 19} {
		s.TestX = append(s.TestX, []float64{v})
		s.TestY = append(s.TestY, boolLabel(v > 10))
	}
	return s
}

func boolLabel(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func TestFit(t *testing.T) {
	ctx := context.Background()

	Convey("Given a linearly separable split", t, func() {
		s := separable()

		Convey("When fitting with default parameters", func() {
			res, err := training.Fit(ctx, s, training.DefaultParams())

			Convey("Then the model classifies the test set perfectly", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 1.0)
				So(res.TrainRows, ShouldEqual, 20)
				So(res.TestRows, ShouldEqual, 4)
			})

			Convey("And the learned weight points towards the positive class", func() {
				So(res.Model.Weights[0], ShouldBeGreaterThan, 0)
				So(res.Model.Features, ShouldResemble, []string{"amount"})
			})

			Convey("And predictions are probabilities", func() {
				lo, err := res.Model.Predict([]float64{1})
				So(err, ShouldBeNil)
				hi, err := res.Model.Predict([]float64{20})
				So(err, ShouldBeNil)
				So(lo, ShouldBeBetween, 0, 0.5)
				So(hi, ShouldBeBetween, 0.5, 1)
			})

			Convey("And fitting again yields the same model", func() {
				again, err := training.Fit(ctx, s, training.DefaultParams())
				So(err, ShouldBeNil)
				So(again.Model, ShouldResemble, res.Model)
				So(again.Score, ShouldEqual, res.Score)
			})
		})
	})

	Convey("Given constant features with mixed labels", t, func() {
		s := dataset.Split{
			Features: []string{"amount"},
			TrainX:   [][]float64{{10}, {10}},
			TrainY:   []float64{1, 0},
			TestX:    [][]float64{{10}, {10}},
			TestY:    []float64{1, 0},
		}

		Convey("Then the score is in [0, 1] and the std guard avoids NaN", func() {
			res, err := training.Fit(ctx, s, training.DefaultParams())
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 0.5)
			So(res.Model.Std[0], ShouldEqual, 1.0)
		})
	})

	Convey("Given invalid inputs", t, func() {
		Convey("Then bad parameters are rejected", func() {
			_, err := training.Fit(ctx, separable(), training.Params{LearningRate: 0, Epochs: 10})
			So(errors.Is(err, training.ErrInvalidParams), ShouldBeTrue)
		})

		Convey("Then an empty training set is rejected", func() {
			_, err := training.Fit(ctx, dataset.Split{}, training.DefaultParams())
			So(errors.Is(err, training.ErrEmptyTrainingSet), ShouldBeTrue)
		})

		Convey("Then an empty test set is rejected", func() {
			s := separable()
			s.TestX, s.TestY = nil, nil
			_, err := training.Fit(ctx, s, training.DefaultParams())
			So(errors.Is(err, training.ErrEmptyTrainingSet), ShouldBeTrue)
		})

		Convey("Then a ragged training row is rejected", func() {
			s := separable()
			s.Features = []string{"amount", "hour"}
			s.TrainX = [][]float64{{1, 2}, {3}}
			s.TrainY = []float64{0, 1}
			s.TestX = [][]float64{{1, 2}}
			s.TestY = []float64{0}
			_, err := training.Fit(ctx, s, training.DefaultParams())
			So(errors.Is(err, training.ErrFeatureMismatch), ShouldBeTrue)
		})

		Convey("Then a ragged test row is rejected", func() {
			s := separable()
			s.TestX[1] = []float64{5, 6}
			_, err := training.Fit(ctx, s, training.DefaultParams())
			So(errors.Is(err, training.ErrFeatureMismatch), ShouldBeTrue)
		})

		Convey("Then training labels must match the rows", func() {
			s := separable()
			s.TrainY = s.TrainY[:len(s.TrainY)-1]
			_, err := training.Fit(ctx, s, training.DefaultParams())
			So(errors.Is(err, training.ErrFeatureMismatch), ShouldBeTrue)
		})

		Convey("Then test labels must match the rows", func() {
			s := separable()
			s.TestY = append(s.TestY, 1)
			_, err := training.Fit(ctx, s, training.DefaultParams())
			So(errors.Is(err, training.ErrFeatureMismatch), ShouldBeTrue)
		})

		Convey("Then a cancelled context stops training", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := training.Fit(cctx, separable(), training.DefaultParams())
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestModel_Predict(t *testing.T) {
	Convey("Given a hand-built model", t, func() {
		m := &training.Model{Mean: []float64{0}, Std: []float64{1}, Weights: []float64{0}, Bias: 0}

		Convey("Then a zero logit predicts 0.5", func() {
			p, err := m.Predict([]float64{3})
			So(err, ShouldBeNil)
			So(p, ShouldEqual, 0.5)
		})

		Convey("Then the wrong feature count is rejected", func() {
			_, err := m.Predict([]float64{1, 2})
			So(errors.Is(err, training.ErrFeatureMismatch), ShouldBeTrue)
		})

		Convey("Then accuracy needs one label per row", func() {
			_, err := m.Accuracy([][]float64{{1}, {2}}, []float64{1})
			So(errors.Is(err, training.ErrFeatureMismatch), ShouldBeTrue)
		})
	})
}

func TestCSVTrainer(t *testing.T) {
	Convey("Given a CSV file with separable records", t, func() {
		var b strings.Builder
		b.WriteString("Amount,Fraudulent\n")
		for i := 1; i <= 40; i++ {
			fmt.Fprintf(&b, "%d,%t\n", i, i > 20)
		}
		path := filepath.Join(t.TempDir(), "records.csv")
		So(os.WriteFile(path, []byte(b.String()), 0o600), ShouldBeNil)

		Convey("When training", func() {
			tr := training.NewCSVTrainer(path, training.WithSeed(7), training.WithTestSize(0.25))
			res, err := tr.Train(context.Background())

			Convey("Then a valid score is produced", func() {
				So(err, ShouldBeNil)
				So(res.TestRows, ShouldEqual, 10)
				So(res.TrainRows, ShouldEqual, 30)
				So(res.Score, ShouldBeBetweenOrEqual, 0, 1)
				So(tr.Path(), ShouldEqual, path)
			})
		})

		Convey("When the target column is wrong", func() {
			tr := training.NewCSVTrainer(path, training.WithTarget("Label"))
			_, err := tr.Train(context.Background())

			Convey("Then the dataset error is returned", func() {
				So(errors.Is(err, dataset.ErrMalformedData), ShouldBeTrue)
			})
		})
	})

	Convey("Given a missing data file", t, func() {
		tr := training.NewCSVTrainer(filepath.Join(t.TempDir(), "missing.csv"))

		Convey("Then training fails", func() {
			_, err := tr.Train(context.Background())
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})
	})
}
