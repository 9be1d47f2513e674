package model

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Encoder maps label values onto class indices. Classes are sorted, numerically
// when every label is numeric, otherwise by their string form.
type Encoder struct {
	classes []any
	index   map[string]int
}

// NewEncoder builds an encoder from the distinct non-missing values.
func NewEncoder(values ...[]any) (*Encoder, error) {
	seen := make(map[string]any)
	numeric := true
	for _, vs := range values {
		for _, v := range vs {
			if v == nil {
				continue
			}
			if f, ok := v.(float64); ok && math.IsNaN(f) {
				continue
			}
			key := LabelKey(v)
			if _, ok := seen[key]; !ok {
				seen[key] = v
				if _, ok := asFloat(v); !ok {
					numeric = false
				}
			}
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("no labels")
	}

	classes := make([]any, 0, len(seen))
	for _, v := range seen {
		classes = append(classes, v)
	}
	sort.Slice(classes, func(i, j int) bool {
		if numeric {
			a, _ := asFloat(classes[i])
			b, _ := asFloat(classes[j])
			return a < b
		}
		return LabelKey(classes[i]) < LabelKey(classes[j])
	})

	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[LabelKey(c)] = i
	}
	return &Encoder{classes: classes, index: index}, nil
}

// Classes returns the label values in index order.
func (e *Encoder) Classes() []any { return e.classes }

// Len returns the number of classes.
func (e *Encoder) Len() int { return len(e.classes) }

// Names returns the string form of each class, in index order.
func (e *Encoder) Names() []string {
	out := make([]string, len(e.classes))
	for i, c := range e.classes {
		out[i] = LabelKey(c)
	}
	return out
}

// Encode maps values to class indices. Missing or unknown labels are an error.
func (e *Encoder) Encode(values []any) ([]int, error) {
	out := make([]int, len(values))
	for i, v := range values {
		if v == nil {
			return nil, fmt.Errorf("row %d has a missing label", i)
		}
		idx, ok := e.index[LabelKey(v)]
		if !ok {
			return nil, fmt.Errorf("row %d has unknown label %v", i, v)
		}
		out[i] = idx
	}
	return out, nil
}

// Decode maps class indices back to label values.
func (e *Encoder) Decode(idx []int) []any {
	out := make([]any, len(idx))
	for i, c := range idx {
		out[i] = e.classes[c]
	}
	return out
}

// LabelKey is the string form of a label, used as its report key.
func LabelKey(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return floatKey(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// floatKey renders a float label the way Python prints one: positional
// notation between 1e-4 and 1e16, a trailing ".0" on whole numbers.
func floatKey(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	var s string
	if abs := math.Abs(f); abs == 0 || (abs >= 1e-4 && abs < 1e16) {
		s = strconv.FormatFloat(f, 'f', -1, 64)
	} else {
		s = strconv.FormatFloat(f, 'e', -1, 64)
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
