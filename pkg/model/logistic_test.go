package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func lineData() (*mat.Dense, []int) {
	n := 40
	X := mat.NewDense(n, 2, nil)
	y := make([]int, n)
	for i := range n {
		x := float64(i) / 4
		X.Set(i, 0, x)
		X.Set(i, 1, float64(i%3))
		if x >= 5 {
			y[i] = 1
		}
	}
	return X, y
}

func TestLogisticRegression_Binary(t *testing.T) {
	X, y := lineData()

	m := NewLogisticRegression()
	require.NoError(t, m.Fit(X, y, 2))

	pred, err := m.Predict(X)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, Accuracy(y, pred), 0.95)

	coef := m.Coef()
	require.Len(t, coef, 1)
	require.Len(t, coef[0], 2)
	assert.Greater(t, coef[0][0], 0.0, "larger x means class 1")

	// Coefficients are on the original scale.
	b := m.Intercept()[0]
	for i := range y {
		z := coef[0][0]*X.At(i, 0) + coef[0][1]*X.At(i, 1) + b
		want := 0
		if sigmoid(z) > 0.5 {
			want = 1
		}
		assert.Equal(t, want, pred[i], "row %d", i)
	}

	imp := m.FeatureImportance()
	assert.InDelta(t, math.Abs(coef[0][0]), imp[0], 1e-12)
	assert.Greater(t, imp[0], imp[1])
}

func TestLogisticRegression_ScaleInvariantFit(t *testing.T) {
	X, y := lineData()
	scaled := mat.DenseCopyOf(X)
	for i := range y {
		scaled.Set(i, 0, X.At(i, 0)*1000)
	}

	a := NewLogisticRegression()
	require.NoError(t, a.Fit(X, y, 2))
	b := NewLogisticRegression()
	require.NoError(t, b.Fit(scaled, y, 2))

	assert.InEpsilon(t, a.Coef()[0][0]/1000, b.Coef()[0][0], 1e-6)
	assert.InEpsilon(t, a.Intercept()[0], b.Intercept()[0], 1e-6)
}

func TestLogisticRegression_Multiclass(t *testing.T) {
	centers := [][2]float64{{0, 0}, {10, 0}, {0, 10}}
	offsets := [][2]float64{{0, 0}, {1, 0}, {0, 1}, {-1, 0}, {0, -1}}

	X := mat.NewDense(len(centers)*len(offsets), 2, nil)
	var y []int
	for c, center := range centers {
		for _, off := range offsets {
			row := len(y)
			X.Set(row, 0, center[0]+off[0])
			X.Set(row, 1, center[1]+off[1])
			y = append(y, c)
		}
	}

	m := NewLogisticRegression()
	require.NoError(t, m.Fit(X, y, 3))
	assert.Len(t, m.Coef(), 3)

	pred, err := m.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y, pred)

	proba, err := m.PredictProba(X)
	require.NoError(t, err)
	for i := range y {
		assert.InDelta(t, 1, mat.Sum(proba.RowView(i)), 1e-9)
	}
}

func TestLogisticRegression_Errors(t *testing.T) {
	m := NewLogisticRegression()

	_, err := m.Predict(mat.NewDense(1, 1, nil))
	assert.ErrorIs(t, err, ErrNotFitted)

	X := mat.NewDense(3, 1, []float64{1, math.NaN(), 3})
	assert.Error(t, m.Fit(X, []int{0, 1, 0}, 2))

	assert.Error(t, m.Fit(mat.NewDense(2, 1, []float64{1, 2}), []int{0}, 2))
	assert.Error(t, m.Fit(mat.NewDense(2, 1, []float64{1, 2}), []int{0, 5}, 2))
}

func TestLogisticRegression_StopsWithinMaxIter(t *testing.T) {
	X, y := lineData()
	m := NewLogisticRegression(WithMaxIter(5))
	require.NoError(t, m.Fit(X, y, 2))
	assert.LessOrEqual(t, m.Iterations(), 5)
}
