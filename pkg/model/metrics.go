package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Accuracy is the fraction of matching predictions.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// ClassMetrics are the per-class figures of a classification report.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1-score"`
	Support   int     `json:"support"`
}

// Report is a classification report. It serializes to a flat object keyed by
// class label, plus "accuracy", "macro avg" and "weighted avg".
type Report struct {
	Labels      []string
	Classes     map[string]ClassMetrics
	Accuracy    float64
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
}

// Report key names for the summary rows.
const (
	KeyAccuracy    = "accuracy"
	KeyMacroAvg    = "macro avg"
	KeyWeightedAvg = "weighted avg"
)

// NewReport computes per-class precision, recall, F1 and support for the
// classes appearing in yTrue or yPred. names maps class indices to labels.
// Undefined ratios are reported as 0.
func NewReport(yTrue, yPred []int, names []string) (*Report, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("%d true labels but %d predictions", len(yTrue), len(yPred))
	}

	present := make(map[int]bool)
	for i := range yTrue {
		present[yTrue[i]] = true
		present[yPred[i]] = true
	}
	classes := make([]int, 0, len(present))
	for c := range present {
		if c < 0 || c >= len(names) {
			return nil, fmt.Errorf("class index %d has no name", c)
		}
		classes = append(classes, c)
	}
	sort.Ints(classes)

	tp := make(map[int]int)
	predicted := make(map[int]int)
	support := make(map[int]int)
	for i := range yTrue {
		support[yTrue[i]]++
		predicted[yPred[i]]++
		if yTrue[i] == yPred[i] {
			tp[yTrue[i]]++
		}
	}

	r := &Report{
		Labels:   make([]string, 0, len(classes)),
		Classes:  make(map[string]ClassMetrics, len(classes)),
		Accuracy: Accuracy(yTrue, yPred),
	}

	total := len(yTrue)
	for _, c := range classes {
		m := ClassMetrics{
			Precision: ratio(tp[c], predicted[c]),
			Recall:    ratio(tp[c], support[c]),
			Support:   support[c],
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}

		name := names[c]
		r.Labels = append(r.Labels, name)
		r.Classes[name] = m

		k := float64(len(classes))
		r.MacroAvg.Precision += m.Precision / k
		r.MacroAvg.Recall += m.Recall / k
		r.MacroAvg.F1 += m.F1 / k

		if total > 0 {
			w := float64(m.Support) / float64(total)
			r.WeightedAvg.Precision += m.Precision * w
			r.WeightedAvg.Recall += m.Recall * w
			r.WeightedAvg.F1 += m.F1 * w
		}
	}
	r.MacroAvg.Support = total
	r.WeightedAvg.Support = total

	return r, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// MarshalJSON writes class rows in label order followed by the summary rows.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
		return nil
	}

	for _, name := range r.Labels {
		if err := write(name, r.Classes[name]); err != nil {
			return nil, err
		}
	}
	if err := write(KeyAccuracy, r.Accuracy); err != nil {
		return nil, err
	}
	if err := write(KeyMacroAvg, r.MacroAvg); err != nil {
		return nil, err
	}
	if err := write(KeyWeightedAvg, r.WeightedAvg); err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
