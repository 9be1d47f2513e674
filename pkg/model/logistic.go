package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// LogisticRegression is an L2-regularized logistic regression classifier.
// Two classes use a sigmoid, more use a multinomial softmax. It minimizes
//
//	C * sum(log loss) + 0.5 * ||w||^2
//
// with full-batch gradient descent on internally standardized features. The
// intercept is not penalized.
type LogisticRegression struct {
	C       float64 // inverse regularization strength
	MaxIter int
	Tol     float64 // stop when the largest gradient entry falls below Tol

	coef      *mat.Dense // k x p, original feature scale
	intercept []float64  // k
	nClasses  int
	iters     int
}

// LogisticOption configures a LogisticRegression.
type LogisticOption func(*LogisticRegression)

// WithC sets the inverse regularization strength.
func WithC(c float64) LogisticOption { return func(m *LogisticRegression) { m.C = c } }

// WithMaxIter caps the number of gradient steps.
func WithMaxIter(n int) LogisticOption { return func(m *LogisticRegression) { m.MaxIter = n } }

// WithTol sets the gradient convergence tolerance.
func WithTol(tol float64) LogisticOption { return func(m *LogisticRegression) { m.Tol = tol } }

// NewLogisticRegression returns a model with C=1, 1000 iterations and tol 1e-4.
func NewLogisticRegression(opts ...LogisticOption) *LogisticRegression {
	m := &LogisticRegression{C: 1, MaxIter: 1000, Tol: 1e-4}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Fit trains the model. X must not contain NaN.
func (m *LogisticRegression) Fit(X mat.Matrix, y []int, nClasses int) error {
	n, p, err := checkFitInput(X, y, nClasses)
	if err != nil {
		return err
	}
	if m.C <= 0 {
		return fmt.Errorf("C must be positive, got %v", m.C)
	}

	means := make([]float64, p)
	stds := make([]float64, p)
	col := make([]float64, n)
	for j := range p {
		mat.Col(col, j, X)
		for _, v := range col {
			if math.IsNaN(v) {
				return fmt.Errorf("feature %d has missing values", j)
			}
		}
		mean, variance := stat.PopMeanVariance(col, nil)
		means[j] = mean
		stds[j] = math.Sqrt(variance)
		if stds[j] == 0 {
			stds[j] = 1
		}
	}

	xs := mat.NewDense(n, p, nil)
	xs.Apply(func(i, j int, v float64) float64 {
		return (v - means[j]) / stds[j]
	}, X)

	// k output columns; a binary problem keeps one column for the positive class.
	k := nClasses
	if nClasses <= 2 {
		k = 1
	}
	target := mat.NewDense(n, k, nil)
	for i, c := range y {
		switch {
		case k == 1 && c == 1:
			target.Set(i, 0, 1)
		case k > 1:
			target.Set(i, c, 1)
		}
	}

	w := mat.NewDense(p, k, nil)
	b := make([]float64, k)

	// Step size from a bound on the loss curvature for standardized inputs.
	curvature := 0.25
	if k > 1 {
		curvature = 0.5
	}
	lr := 1 / (curvature*m.C*float64(p+1) + 1/float64(n))

	z := mat.NewDense(n, k, nil)
	grad := mat.NewDense(p, k, nil)
	gradB := make([]float64, k)
	scale := m.C / float64(n)

	m.iters = 0
	for m.iters < m.MaxIter {
		m.iters++

		z.Mul(xs, w)
		for i := range n {
			row := z.RawRowView(i)
			floats.Add(row, b)
			activate(row)
			floats.Sub(row, target.RawRowView(i))
		}

		// grad = C/n * Xs^T (P - Y) + W/n
		grad.Mul(xs.T(), z)
		grad.Scale(scale, grad)
		grad.Apply(func(i, j int, v float64) float64 {
			return v + w.At(i, j)/float64(n)
		}, grad)
		for c := range k {
			gradB[c] = scale * floats.Sum(mat.Col(nil, c, z))
		}

		maxGrad := math.Max(floats.Norm(grad.RawMatrix().Data, math.Inf(1)), floats.Norm(gradB, math.Inf(1)))
		if maxGrad < m.Tol {
			break
		}

		grad.Scale(lr, grad)
		w.Sub(w, grad)
		floats.AddScaled(b, -lr, gradB)
	}

	// Map back to the original feature scale.
	m.coef = mat.NewDense(k, p, nil)
	m.intercept = make([]float64, k)
	for c := range k {
		shift := 0.0
		for j := range p {
			wj := w.At(j, c) / stds[j]
			m.coef.Set(c, j, wj)
			shift += wj * means[j]
		}
		m.intercept[c] = b[c] - shift
	}
	m.nClasses = nClasses

	return nil
}

// activate turns a row of linear scores into probabilities in place.
func activate(row []float64) {
	if len(row) == 1 {
		row[0] = sigmoid(row[0])
		return
	}
	peak := floats.Max(row)
	sum := 0.0
	for i, v := range row {
		row[i] = math.Exp(v - peak)
		sum += row[i]
	}
	floats.Scale(1/sum, row)
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// PredictProba returns class probabilities per row (n x nClasses).
func (m *LogisticRegression) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if m.coef == nil {
		return nil, ErrNotFitted
	}
	n, p := X.Dims()
	if _, mp := m.coef.Dims(); p != mp {
		return nil, fmt.Errorf("X has %d features, model has %d", p, mp)
	}

	k, _ := m.coef.Dims()
	scores := mat.NewDense(n, k, nil)
	scores.Mul(X, m.coef.T())

	out := mat.NewDense(n, m.nClasses, nil)
	for i := range n {
		row := scores.RawRowView(i)
		for j := range row {
			if math.IsNaN(row[j]) {
				return nil, errors.New("input has missing values")
			}
		}
		floats.Add(row, m.intercept)
		activate(row)
		if k == 1 {
			if m.nClasses == 2 {
				out.Set(i, 0, 1-row[0])
				out.Set(i, 1, row[0])
			} else {
				out.Set(i, 0, 1)
			}
			continue
		}
		out.SetRow(i, row)
	}
	return out, nil
}

// Predict returns the most probable class per row.
func (m *LogisticRegression) Predict(X mat.Matrix) ([]int, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	n, _ := proba.Dims()
	out := make([]int, n)
	for i := range n {
		out[i] = argmax(proba.RawRowView(i))
	}
	return out, nil
}

// Coef returns the coefficients on the original feature scale, one row per
// output (a single row for binary problems).
func (m *LogisticRegression) Coef() [][]float64 {
	if m.coef == nil {
		return nil
	}
	k, p := m.coef.Dims()
	out := make([][]float64, k)
	for c := range k {
		out[c] = make([]float64, p)
		mat.Row(out[c], c, m.coef)
	}
	return out
}

// Intercept returns the intercept per output row.
func (m *LogisticRegression) Intercept() []float64 {
	return append([]float64(nil), m.intercept...)
}

// Iterations reports how many gradient steps the last Fit took.
func (m *LogisticRegression) Iterations() int { return m.iters }

// FeatureImportance returns the absolute first-row coefficients.
func (m *LogisticRegression) FeatureImportance() []float64 {
	coef := m.Coef()
	if len(coef) == 0 {
		return nil
	}
	out := make([]float64, len(coef[0]))
	for j, v := range coef[0] {
		out[j] = math.Abs(v)
	}
	return out
}

var _ Classifier = (*LogisticRegression)(nil)
