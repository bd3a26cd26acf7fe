// Package modelselection provides seeded train/test splitting, k-fold
// splitters and cross-validation for the forest estimator.
package modelselection

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sigmotion/harlearn/dataset"
	"github.com/sigmotion/harlearn/pkg/errors"
)

// newRNG returns a seeded generator. Negative seeds give a fresh
// nondeterministic stream.
func newRNG(seed int) *rand.Rand {
	if seed < 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// testCount converts a fractional test size into an exact row count,
// keeping at least one row on each side.
func testCount(n int, testSize float64) int {
	nTest := int(math.Round(float64(n) * testSize))
	if nTest < 1 {
		nTest = 1
	}
	if nTest > n-1 {
		nTest = n - 1
	}
	return nTest
}

func checkSplitArgs(op string, n, yRows int, testSize float64) error {
	if yRows != n {
		return errors.NewDimensionError(op, n, yRows, 0)
	}
	if testSize <= 0 || testSize >= 1 {
		return errors.NewValueError(op, fmt.Sprintf("test size must be in (0, 1), got %v", testSize))
	}
	if n < 2 {
		return errors.NewValueError(op, "need at least 2 samples to split")
	}
	return nil
}

// TrainTestSplit shuffles the rows of X and y with a seeded generator and
// splits them into train and test sets. The test set holds exactly
// round(n * testSize) rows, so repeated runs with the same seed produce the
// same split. Row order within each side follows the original matrix.
func TrainTestSplit(X, y mat.Matrix, testSize float64, seed int) (XTrain, XTest, yTrain, yTest mat.Matrix, err error) {
	if X == nil || y == nil {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "nil input")
	}
	n, _ := X.Dims()
	yr, _ := y.Dims()
	if err := checkSplitArgs("TrainTestSplit", n, yr, testSize); err != nil {
		return nil, nil, nil, nil, err
	}

	nTest := testCount(n, testSize)
	perm := newRNG(seed).Perm(n)

	XTest, yTest = extractSubset(X, y, perm[:nTest])
	XTrain, yTrain = extractSubset(X, y, perm[nTest:])
	return XTrain, XTest, yTrain, yTest, nil
}

// StratifiedTrainTestSplit splits like TrainTestSplit but keeps the class
// proportions of the n x 1 label column y on both sides. Every class must
// appear at least twice so that both sides receive at least one sample.
func StratifiedTrainTestSplit(X, y mat.Matrix, testSize float64, seed int) (XTrain, XTest, yTrain, yTest mat.Matrix, err error) {
	if X == nil || y == nil {
		return nil, nil, nil, nil, errors.NewValueError("StratifiedTrainTestSplit", "nil input")
	}
	n, _ := X.Dims()
	yr, yc := y.Dims()
	if err := checkSplitArgs("StratifiedTrainTestSplit", n, yr, testSize); err != nil {
		return nil, nil, nil, nil, err
	}
	if yc != 1 {
		return nil, nil, nil, nil, errors.NewDimensionError("StratifiedTrainTestSplit", 1, yc, 1)
	}

	classIndices := groupByClass(y, n)
	classes := sortedClassKeys(classIndices)

	rng := newRNG(seed)
	var trainIdx, testIdx []int
	for _, class := range classes {
		indices := classIndices[class]
		if len(indices) < 2 {
			return nil, nil, nil, nil, errors.NewValidationError("stratify",
				"every class needs at least 2 samples", class)
		}
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		nTest := testCount(len(indices), testSize)
		testIdx = append(testIdx, indices[:nTest]...)
		trainIdx = append(trainIdx, indices[nTest:]...)
	}

	XTrain, yTrain = extractSubset(X, y, trainIdx)
	XTest, yTest = extractSubset(X, y, testIdx)
	return XTrain, XTest, yTrain, yTest, nil
}

// SplitDataset splits a loaded dataset into train and test subsets with the
// same seeded, exact-count shuffle as TrainTestSplit.
func SplitDataset(ds *dataset.Dataset, testSize float64, seed int) (train, test *dataset.Dataset, err error) {
	if ds == nil {
		return nil, nil, errors.NewValueError("SplitDataset", "nil dataset")
	}
	n := ds.NumRows()
	if err := checkSplitArgs("SplitDataset", n, n, testSize); err != nil {
		return nil, nil, err
	}

	nTest := testCount(n, testSize)
	perm := newRNG(seed).Perm(n)

	testIdx := append([]int(nil), perm[:nTest]...)
	trainIdx := append([]int(nil), perm[nTest:]...)
	sort.Ints(testIdx)
	sort.Ints(trainIdx)

	train, err = ds.Subset(trainIdx)
	if err != nil {
		return nil, nil, err
	}
	test, err = ds.Subset(testIdx)
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

// groupByClass maps class values of an n x 1 column to their row indices.
func groupByClass(y mat.Matrix, n int) map[float64][]int {
	classIndices := make(map[float64][]int)
	for i := 0; i < n; i++ {
		label := y.At(i, 0)
		classIndices[label] = append(classIndices[label], i)
	}
	return classIndices
}

// sortedClassKeys returns the class values in ascending order so that
// seeded splits do not depend on map iteration order.
func sortedClassKeys(classIndices map[float64][]int) []float64 {
	classes := make([]float64, 0, len(classIndices))
	for class := range classIndices {
		classes = append(classes, class)
	}
	sort.Float64s(classes)
	return classes
}
