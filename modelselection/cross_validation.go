package modelselection

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/sigmotion/harlearn/ensemble"
	"github.com/sigmotion/harlearn/metrics"
	"github.com/sigmotion/harlearn/pkg/errors"
	"github.com/sigmotion/harlearn/pkg/log"
)

// CVResult stores per-fold cross-validation scores and models.
type CVResult struct {
	TrainScores []float64
	TestScores  []float64
	Models      []*ensemble.RandomForestClassifier
	BestFold    int
	BestScore   float64
}

// GetMeanScore returns the mean test score.
func (cv *CVResult) GetMeanScore() float64 {
	if len(cv.TestScores) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, score := range cv.TestScores {
		sum += score
	}
	return sum / float64(len(cv.TestScores))
}

// GetStdScore returns the sample standard deviation of the test scores.
func (cv *CVResult) GetStdScore() float64 {
	if len(cv.TestScores) <= 1 {
		return 0.0
	}
	mean := cv.GetMeanScore()
	sumSq := 0.0
	for _, score := range cv.TestScores {
		diff := score - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(cv.TestScores)-1))
}

// CrossValidateForest evaluates a forest configuration across the folds of
// the given splitter. Each fold trains a fresh clone of rf, so the passed
// classifier is never fitted. The metric is a MulticlassEvaluator name;
// empty means accuracy. Folds run concurrently.
func CrossValidateForest(rf *ensemble.RandomForestClassifier, X, y mat.Matrix,
	splitter KFoldSplitter, metric string) (*CVResult, error) {

	if rf == nil {
		return nil, errors.NewValueError("CrossValidateForest", "nil classifier")
	}
	if X == nil || y == nil {
		return nil, errors.NewValueError("CrossValidateForest", "nil input")
	}
	if splitter == nil {
		return nil, errors.NewValueError("CrossValidateForest", "nil splitter")
	}

	folds := splitter.Split(X, y)
	nFolds := len(folds)
	if nFolds == 0 {
		return nil, errors.NewValueError("CrossValidateForest", "splitter produced no folds")
	}

	result := &CVResult{
		TrainScores: make([]float64, nFolds),
		TestScores:  make([]float64, nFolds),
		Models:      make([]*ensemble.RandomForestClassifier, nFolds),
	}
	evaluator := metrics.NewMulticlassEvaluator(metric)

	var wg sync.WaitGroup
	errs := make([]error, nFolds)

	for foldIdx := 0; foldIdx < nFolds; foldIdx++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			fold := folds[idx]
			if len(fold.TrainIndices) == 0 || len(fold.TestIndices) == 0 {
				errs[idx] = errors.NewValueError("CrossValidateForest",
					fmt.Sprintf("fold %d is empty, too few samples for %d folds", idx, nFolds))
				return
			}
			trainX, trainY := extractSubset(X, y, fold.TrainIndices)
			testX, testY := extractSubset(X, y, fold.TestIndices)

			model := rf.Clone()
			if err := model.Fit(trainX, trainY); err != nil {
				errs[idx] = errors.NewModelError("CrossValidateForest",
					fmt.Sprintf("fold %d training failed", idx), err)
				return
			}
			result.Models[idx] = model

			trainPred, err := model.Predict(trainX)
			if err != nil {
				errs[idx] = errors.NewModelError("CrossValidateForest",
					fmt.Sprintf("fold %d train prediction failed", idx), err)
				return
			}
			trainScore, err := evaluator.Evaluate(trainY, trainPred)
			if err != nil {
				errs[idx] = err
				return
			}
			result.TrainScores[idx] = trainScore

			testPred, err := model.Predict(testX)
			if err != nil {
				errs[idx] = errors.NewModelError("CrossValidateForest",
					fmt.Sprintf("fold %d test prediction failed", idx), err)
				return
			}
			testScore, err := evaluator.Evaluate(testY, testPred)
			if err != nil {
				errs[idx] = err
				return
			}
			result.TestScores[idx] = testScore
		}(foldIdx)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// All evaluator metrics score higher-is-better.
	result.BestFold = 0
	result.BestScore = result.TestScores[0]
	for i := 1; i < nFolds; i++ {
		if result.TestScores[i] > result.BestScore {
			result.BestScore = result.TestScores[i]
			result.BestFold = i
		}
	}

	log.GetLoggerWithName("modelselection").Info("Cross-validation finished",
		log.FoldsKey, nFolds,
		log.MeanScoreKey, result.GetMeanScore(),
	)
	return result, nil
}

// extractSubset copies the selected rows of X and y into fresh matrices,
// visiting rows in ascending order.
func extractSubset(X, y mat.Matrix, indices []int) (mat.Matrix, mat.Matrix) {
	rows := len(indices)
	_, xCols := X.Dims()
	_, yCols := y.Dims()

	sortedIndices := make([]int, len(indices))
	copy(sortedIndices, indices)
	sort.Ints(sortedIndices)

	xSubset := mat.NewDense(rows, xCols, nil)
	ySubset := mat.NewDense(rows, yCols, nil)
	for i, idx := range sortedIndices {
		for j := 0; j < xCols; j++ {
			xSubset.Set(i, j, X.At(idx, j))
		}
		for j := 0; j < yCols; j++ {
			ySubset.Set(i, j, y.At(idx, j))
		}
	}
	return xSubset, ySubset
}
