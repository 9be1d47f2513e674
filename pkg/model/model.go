// Package model implements the classifiers LeapML can train and the metrics
// used to evaluate them.
//
// Classifiers work on a dense feature matrix and integer class indices in
// [0, k). Mapping between original labels and indices is done by Encoder.
package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Classifier is a supervised multi-class model.
type Classifier interface {
	// Fit trains on X (n x p) and class indices y in [0, nClasses).
	Fit(X mat.Matrix, y []int, nClasses int) error

	// Predict returns a class index per row of X.
	Predict(X mat.Matrix) ([]int, error)

	// FeatureImportance returns one non-negative score per feature.
	FeatureImportance() []float64
}

// ErrNotFitted is returned when predicting with an untrained model.
var ErrNotFitted = errors.New("model is not fitted")

func checkFitInput(X mat.Matrix, y []int, nClasses int) (n, p int, err error) {
	n, p = X.Dims()
	if n == 0 || p == 0 {
		return 0, 0, errors.New("empty training matrix")
	}
	if len(y) != n {
		return 0, 0, fmt.Errorf("X has %d rows but y has %d labels", n, len(y))
	}
	if nClasses < 1 {
		return 0, 0, errors.New("no classes to fit")
	}
	for i, c := range y {
		if c < 0 || c >= nClasses {
			return 0, 0, fmt.Errorf("label %d at row %d is outside [0, %d)", c, i, nClasses)
		}
	}
	return n, p, nil
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
