package trainer

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/leapml/pkg/core"
	"github.com/leapstack-labs/leapml/pkg/model"
)

// Model tags accepted by the trainer.
const (
	LogisticRegression = "logistic_regression"
	DecisionTree       = "decision_tree"
)

// Spec describes a trainable model.
type Spec struct {
	// Name is the tag clients use to select the model.
	Name string

	// AllowsMissing reports whether the model accepts missing feature values.
	AllowsMissing bool

	// New builds an untrained classifier seeded with seed.
	New func(seed int64) model.Classifier
}

// Registry maps model tags to their specs.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

// NewRegistry returns a registry holding the built-in models.
func NewRegistry() *Registry {
	r := &Registry{specs: make(map[string]Spec)}
	r.Register(Spec{
		Name: LogisticRegression,
		New: func(int64) model.Classifier {
			return model.NewLogisticRegression(model.WithMaxIter(1000))
		},
	})
	r.Register(Spec{
		Name:          DecisionTree,
		AllowsMissing: true,
		New: func(seed int64) model.Classifier {
			return model.NewDecisionTree(model.WithSeed(seed))
		},
	})
	return r
}

// Register adds or replaces a model spec.
func (r *Registry) Register(spec Spec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[spec.Name] = spec
}

// Lookup returns the spec for name, or an UnknownModel error.
func (r *Registry) Lookup(name string) (Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[name]
	if !ok {
		return Spec{}, core.Errorf(core.KindUnknownModel, "trainer.Lookup", "unknown model %q", name)
	}
	return spec, nil
}

// Names returns the registered tags, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
