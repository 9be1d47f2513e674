// Package preprocess rescales numeric columns of a dataset table.
package preprocess

import (
	"math"

	"github.com/leapstack-labs/leapml/pkg/core"
	"github.com/leapstack-labs/leapml/pkg/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Method names a rescaling strategy.
type Method string

const (
	// Standardization maps x to (x - mean) / std, using the population std.
	Standardization Method = "standardization"
	// Normalization maps x to (x - min) / (max - min).
	Normalization Method = "normalization"
)

// Methods lists the supported methods.
func Methods() []Method {
	return []Method{Standardization, Normalization}
}

// ParseMethod validates a method name.
func ParseMethod(name string) (Method, error) {
	for _, m := range Methods() {
		if string(m) == name {
			return m, nil
		}
	}
	return "", core.Errorf(core.KindUnknownMethod, "preprocess.ParseMethod", "unknown preprocessing method %q", name)
}

// Apply returns a copy of table with the named columns rescaled by method.
// Missing values stay missing. A column with zero spread becomes all zeros.
func Apply(table *dataset.Table, method string, columns []string) (*dataset.Table, error) {
	const op = "preprocess.Apply"

	m, err := ParseMethod(method)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, core.Errorf(core.KindValidation, op, "no columns selected")
	}

	seen := make(map[string]bool, len(columns))
	scaled := make([]*dataset.Column, 0, len(columns))
	for _, name := range columns {
		if seen[name] {
			continue
		}
		seen[name] = true

		col, ok := table.Column(name)
		if !ok {
			return nil, core.Errorf(core.KindColumn, op, "column %q not found", name)
		}
		if !col.Type.IsNumeric() {
			return nil, core.Errorf(core.KindColumn, op, "column %q is %s, expected a numeric column", name, col.Type)
		}

		values, err := col.Float64s()
		if err != nil {
			return nil, core.E(core.KindColumn, op, err)
		}
		scaled = append(scaled, &dataset.Column{
			Name:   name,
			Type:   dataset.TypeFloat,
			Values: rescale(m, values),
		})
	}

	out, err := table.WithColumns(scaled...)
	if err != nil {
		return nil, core.E(core.KindInternal, op, err)
	}
	return out, nil
}

// rescale applies the method to values, NaN marking missing entries.
func rescale(m Method, values []float64) []any {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}

	out := make([]any, len(values))
	if len(present) == 0 {
		return out
	}

	var center, scale float64
	switch m {
	case Standardization:
		mean, variance := stat.PopMeanVariance(present, nil)
		center, scale = mean, math.Sqrt(variance)
	case Normalization:
		lo, hi := floats.Min(present), floats.Max(present)
		center, scale = lo, hi-lo
	}
	if scale == 0 || math.IsNaN(scale) {
		scale = 1
	}

	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		out[i] = (v - center) / scale
	}
	return out
}
