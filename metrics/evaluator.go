package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/sigmotion/harlearn/pkg/errors"
)

// Metric names understood by MulticlassEvaluator.
const (
	MetricAccuracy          = "accuracy"
	MetricF1                = "f1"
	MetricWeightedPrecision = "weightedPrecision"
	MetricWeightedRecall    = "weightedRecall"
)

// MulticlassEvaluator scores multiclass predictions against true labels by a
// named metric. The zero value evaluates accuracy.
type MulticlassEvaluator struct {
	// Metric selects the score: "accuracy", "f1", "weightedPrecision"
	// or "weightedRecall". Empty means "accuracy". The f1, precision and
	// recall variants are weighted by class support.
	Metric string
}

// NewMulticlassEvaluator returns an evaluator for the given metric name.
func NewMulticlassEvaluator(metricName string) *MulticlassEvaluator {
	return &MulticlassEvaluator{Metric: metricName}
}

// Evaluate computes the configured metric from true and predicted label
// columns. Unknown metric names return a ValueError.
func (e *MulticlassEvaluator) Evaluate(yTrue, yPred mat.Matrix) (float64, error) {
	name := e.Metric
	if name == "" {
		name = MetricAccuracy
	}

	switch name {
	case MetricAccuracy:
		return AccuracyMatrix(yTrue, yPred)
	case MetricF1, MetricWeightedPrecision, MetricWeightedRecall:
		cm, err := NewConfusionMatrix(yTrue, yPred)
		if err != nil {
			return 0, err
		}
		precision, recall, f1, err := PrecisionRecallF1(cm, AverageWeighted)
		if err != nil {
			return 0, err
		}
		switch name {
		case MetricF1:
			return f1, nil
		case MetricWeightedPrecision:
			return precision, nil
		default:
			return recall, nil
		}
	default:
		return 0, errors.NewValueError("MulticlassEvaluator.Evaluate",
			fmt.Sprintf("unknown metric %q", name))
	}
}

// TestError computes 1 - accuracy for the given predictions.
func (e *MulticlassEvaluator) TestError(yTrue, yPred mat.Matrix) (float64, error) {
	acc, err := AccuracyMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}
