// Package split partitions a table into train and test sets with a seeded
// permutation, so the same input and seed always give the same partition.
package split

import (
	"math"
	"math/rand"

	"github.com/leapstack-labs/leapml/pkg/core"
	"github.com/leapstack-labs/leapml/pkg/dataset"
)

// DefaultSeed is the seed used when none is configured.
const DefaultSeed int64 = 42

// DefaultTestSize is the test fraction used when none is given.
const DefaultTestSize = 0.2

// Result holds both partitions and the row indices they were taken from.
type Result struct {
	Train      *dataset.Table
	Test       *dataset.Table
	TrainIndex []int
	TestIndex  []int
}

// Sizes computes the partition sizes for n rows. The test partition is
// rounded up.
func Sizes(n int, testSize float64) (nTrain, nTest int, err error) {
	const op = "split.Sizes"

	if math.IsNaN(testSize) || testSize <= 0 || testSize >= 1 {
		return 0, 0, core.Errorf(core.KindValidation, op, "test_size must be between 0 and 1 exclusive, got %v", testSize)
	}

	nTest = int(math.Ceil(testSize * float64(n)))
	nTrain = n - nTest
	if nTest == 0 || nTrain <= 0 {
		return 0, 0, core.Errorf(core.KindValidation, op,
			"test_size %v with %d rows leaves an empty train or test set", testSize, n)
	}
	return nTrain, nTest, nil
}

// Split partitions table by a permutation of its rows seeded with seed.
// Both partitions keep every column, the target included, in source order.
func Split(table *dataset.Table, target string, testSize float64, seed int64) (*Result, error) {
	if !table.HasColumn(target) {
		return nil, core.Errorf(core.KindColumn, "split.Split", "target column %q not found", target)
	}

	n := table.NumRows()
	_, nTest, err := Sizes(n, testSize)
	if err != nil {
		return nil, err
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // reproducible, not secret
	testIdx, trainIdx := perm[:nTest], perm[nTest:]

	return &Result{
		Train:      table.Take(trainIdx),
		Test:       table.Take(testIdx),
		TrainIndex: trainIdx,
		TestIndex:  testIdx,
	}, nil
}
