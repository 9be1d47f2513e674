package model

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DecisionTree is a CART classifier using gini impurity and midpoint
// thresholds. Features are visited in an order drawn from Seed at every node,
// and ties keep the first feature in that order, so fits are reproducible.
//
// Missing values (NaN) are sent to whichever child gives the better split
// during training. At prediction they follow the training side, or the larger
// child when the node saw no missing values.
type DecisionTree struct {
	MaxDepth        int // 0 means unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	Seed            int64

	root       *treeNode
	importance []float64
	nClasses   int
	nFeatures  int
}

type treeNode struct {
	leaf        bool
	feature     int
	threshold   float64 // x <= threshold goes left
	missingLeft bool
	left        *treeNode
	right       *treeNode

	n      int
	counts []int
	class  int
}

// TreeOption configures a DecisionTree.
type TreeOption func(*DecisionTree)

// WithMaxDepth limits the tree depth. Zero means unlimited.
func WithMaxDepth(d int) TreeOption { return func(t *DecisionTree) { t.MaxDepth = d } }

// WithMinSamplesSplit sets the minimum node size that may be split.
func WithMinSamplesSplit(n int) TreeOption { return func(t *DecisionTree) { t.MinSamplesSplit = n } }

// WithMinSamplesLeaf sets the minimum size of each child.
func WithMinSamplesLeaf(n int) TreeOption { return func(t *DecisionTree) { t.MinSamplesLeaf = n } }

// WithSeed sets the seed for the feature visiting order.
func WithSeed(seed int64) TreeOption { return func(t *DecisionTree) { t.Seed = seed } }

// NewDecisionTree returns an unlimited-depth tree seeded with 42.
func NewDecisionTree(opts ...TreeOption) *DecisionTree {
	t := &DecisionTree{MinSamplesSplit: 2, MinSamplesLeaf: 1, Seed: 42}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit grows the tree.
func (t *DecisionTree) Fit(X mat.Matrix, y []int, nClasses int) error {
	n, p, err := checkFitInput(X, y, nClasses)
	if err != nil {
		return err
	}

	cols := make([][]float64, p)
	for j := range p {
		cols[j] = mat.Col(nil, j, X)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	b := &treeBuilder{
		tree:       t,
		cols:       cols,
		y:          y,
		nClasses:   nClasses,
		total:      float64(n),
		rnd:        rand.New(rand.NewSource(t.Seed)), //nolint:gosec // reproducible, not secret
		importance: make([]float64, p),
	}
	t.root = b.build(idx, 0)

	if sum := floats.Sum(b.importance); sum > 0 {
		floats.Scale(1/sum, b.importance)
	}
	t.importance = b.importance
	t.nClasses = nClasses
	t.nFeatures = p
	return nil
}

// Predict returns the majority class of the leaf each row lands in.
func (t *DecisionTree) Predict(X mat.Matrix) ([]int, error) {
	if t.root == nil {
		return nil, ErrNotFitted
	}
	n, p := X.Dims()
	if p != t.nFeatures {
		return nil, fmt.Errorf("X has %d features, model has %d", p, t.nFeatures)
	}

	out := make([]int, n)
	for i := range n {
		node := t.root
		for !node.leaf {
			v := X.At(i, node.feature)
			switch {
			case math.IsNaN(v):
				node = pick(node, node.missingLeft)
			default:
				node = pick(node, v <= node.threshold)
			}
		}
		out[i] = node.class
	}
	return out, nil
}

func pick(n *treeNode, left bool) *treeNode {
	if left {
		return n.left
	}
	return n.right
}

// FeatureImportance returns the normalized total impurity decrease per feature.
func (t *DecisionTree) FeatureImportance() []float64 {
	return append([]float64(nil), t.importance...)
}

// Depth returns the depth of the fitted tree; a single leaf has depth 0.
func (t *DecisionTree) Depth() int {
	var walk func(*treeNode) int
	walk = func(n *treeNode) int {
		if n == nil || n.leaf {
			return 0
		}
		return 1 + max(walk(n.left), walk(n.right))
	}
	return walk(t.root)
}

type treeBuilder struct {
	tree       *DecisionTree
	cols       [][]float64
	y          []int
	nClasses   int
	total      float64
	rnd        *rand.Rand
	importance []float64
}

type candidate struct {
	ok          bool
	gain        float64
	threshold   float64
	missingLeft bool
	left, right []int
}

func (b *treeBuilder) build(idx []int, depth int) *treeNode {
	t := b.tree
	counts := b.counts(idx)
	node := &treeNode{n: len(idx), counts: counts, class: argmaxInt(counts)}

	// Drawn for leaves too: every node consumes the stream.
	order := b.rnd.Perm(len(b.cols))

	if isPure(counts) ||
		len(idx) < t.MinSamplesSplit ||
		len(idx) < 2*t.MinSamplesLeaf ||
		(t.MaxDepth > 0 && depth >= t.MaxDepth) {
		node.leaf = true
		return node
	}

	parent := gini(counts, len(idx))
	results := make([]candidate, len(b.cols))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for f := range b.cols {
		g.Go(func() error {
			results[f] = b.bestSplit(idx, f, parent)
			return nil
		})
	}
	_ = g.Wait()

	best, bestFeature := candidate{}, -1
	for _, f := range order {
		if c := results[f]; c.ok && c.gain > 1e-12 && (bestFeature < 0 || c.gain > best.gain) {
			best, bestFeature = c, f
		}
	}
	if bestFeature < 0 {
		node.leaf = true
		return node
	}

	b.importance[bestFeature] += float64(len(idx)) / b.total * best.gain

	node.feature = bestFeature
	node.threshold = best.threshold
	node.missingLeft = best.missingLeft
	node.left = b.build(best.left, depth+1)
	node.right = b.build(best.right, depth+1)
	return node
}

type valued struct {
	v float64
	i int
}

// bestSplit scans the sorted values of one feature, trying each missing-value
// routing at every boundary.
func (b *treeBuilder) bestSplit(idx []int, f int, parent float64) candidate {
	col := b.cols[f]
	minLeaf := max(b.tree.MinSamplesLeaf, 1)

	valid := make([]valued, 0, len(idx))
	var nans []int
	nanCounts := make([]int, b.nClasses)
	for _, i := range idx {
		if math.IsNaN(col[i]) {
			nans = append(nans, i)
			nanCounts[b.y[i]]++
			continue
		}
		valid = append(valid, valued{col[i], i})
	}
	if len(valid) < 2 {
		return candidate{}
	}
	sort.Slice(valid, func(a, c int) bool {
		if valid[a].v != valid[c].v {
			return valid[a].v < valid[c].v
		}
		return valid[a].i < valid[c].i
	})

	total := make([]int, b.nClasses)
	for _, p := range valid {
		total[b.y[p.i]]++
	}

	var (
		best     candidate
		bestS    int
		left     = make([]int, b.nClasses)
		right    = make([]int, b.nClasses)
		withNaN  = make([]int, b.nClasses)
		n        = float64(len(idx))
		routings = []bool{false}
	)
	if len(nans) > 0 {
		routings = []bool{true, false}
	}

	for s := 1; s < len(valid); s++ {
		left[b.y[valid[s-1].i]]++
		if valid[s].v == valid[s-1].v {
			continue
		}
		for c := range right {
			right[c] = total[c] - left[c]
		}

		for _, nanLeft := range routings {
			nl, nr := s, len(valid)-s
			var impL, impR float64
			if nanLeft {
				nl += len(nans)
				addInto(withNaN, left, nanCounts)
				impL, impR = gini(withNaN, nl), gini(right, nr)
			} else {
				nr += len(nans)
				addInto(withNaN, right, nanCounts)
				impL, impR = gini(left, nl), gini(withNaN, nr)
			}
			if nl < minLeaf || nr < minLeaf {
				continue
			}

			gain := parent - (float64(nl)/n)*impL - (float64(nr)/n)*impR
			if !best.ok || gain > best.gain {
				thr := (valid[s-1].v + valid[s].v) / 2
				if thr == valid[s].v {
					thr = valid[s-1].v
				}
				best = candidate{ok: true, gain: gain, threshold: thr, missingLeft: nanLeft}
				bestS = s
			}
		}
	}
	if !best.ok {
		return best
	}

	best.left = make([]int, 0, bestS+len(nans))
	best.right = make([]int, 0, len(valid)-bestS+len(nans))
	for _, p := range valid[:bestS] {
		best.left = append(best.left, p.i)
	}
	for _, p := range valid[bestS:] {
		best.right = append(best.right, p.i)
	}
	switch {
	case best.missingLeft:
		best.left = append(best.left, nans...)
	case len(nans) > 0:
		best.right = append(best.right, nans...)
	default:
		// No missing values here; send future ones to the larger child.
		best.missingLeft = len(best.left) >= len(best.right)
	}
	return best
}

func (b *treeBuilder) counts(idx []int) []int {
	out := make([]int, b.nClasses)
	for _, i := range idx {
		out[b.y[i]]++
	}
	return out
}

func addInto(dst, a, b []int) {
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1 - sum
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func argmaxInt(v []int) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

var _ Classifier = (*DecisionTree)(nil)
