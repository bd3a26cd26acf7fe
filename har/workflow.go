package har

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/sigmotion/harlearn/core/model"
	"github.com/sigmotion/harlearn/dataset"
	"github.com/sigmotion/harlearn/metrics"
	"github.com/sigmotion/harlearn/modelselection"
	"github.com/sigmotion/harlearn/pipeline"
	"github.com/sigmotion/harlearn/pkg/errors"
	"github.com/sigmotion/harlearn/pkg/log"
	"github.com/sigmotion/harlearn/preprocessing"
)

// Model is a trained HAR classifier: the fitted feature pipeline plus the
// label indexer that maps activity names to class values and back. Fields
// are public for gob encoding.
type Model struct {
	Pipeline *pipeline.PipelineModel
	Indexer  *preprocessing.StringIndexer
	Config   Config
}

// Predict returns the predicted class values (indexer space) for the rows
// of X.
func (m *Model) Predict(X mat.Matrix) (mat.Matrix, error) {
	if m.Pipeline == nil {
		return nil, errors.NewValueError("har.Model.Predict", "model has no pipeline")
	}
	return m.Pipeline.Predict(X)
}

// PredictProba returns the class probability matrix for the rows of X.
func (m *Model) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if m.Pipeline == nil {
		return nil, errors.NewValueError("har.Model.PredictProba", "model has no pipeline")
	}
	return m.Pipeline.PredictProba(X)
}

// PredictActivities predicts and maps the class values back to activity
// names through the label indexer.
func (m *Model) PredictActivities(X mat.Matrix) ([]string, error) {
	predictions, err := m.Predict(X)
	if err != nil {
		return nil, err
	}
	if m.Indexer == nil {
		return nil, errors.NewValueError("har.Model.PredictActivities", "model has no label indexer")
	}
	return m.Indexer.InverseTransform(predictions)
}

// ClassLabels returns the activity names in class value order.
func (m *Model) ClassLabels() []string {
	if m.Indexer == nil {
		return nil
	}
	return m.Indexer.ClassLabels()
}

// FeatureImportances returns the estimator's impurity-based feature
// importances, or nil when the estimator does not expose them.
func (m *Model) FeatureImportances() []float64 {
	if m.Pipeline == nil || m.Pipeline.Estimator == nil {
		return nil
	}
	type importanceReporter interface {
		FeatureImportances() []float64
	}
	if r, ok := m.Pipeline.Estimator.(importanceReporter); ok {
		return r.FeatureImportances()
	}
	return nil
}

// Save writes the model to a file with gob.
func (m *Model) Save(path string) error {
	return model.SaveModel(m, path)
}

// LoadModel reads a model written by Save.
func LoadModel(path string) (*Model, error) {
	m := &Model{}
	if err := model.LoadModel(m, path); err != nil {
		return nil, err
	}
	return m, nil
}

// TrainResult bundles the fitted model with its held-out evaluation.
type TrainResult struct {
	Model     *Model
	Report    *metrics.Report
	Confusion *metrics.ConfusionMatrix
	Accuracy  float64
	TestError float64
	TrainRows int
	TestRows  int
}

// Train runs the HAR workflow on a loaded dataset: index the activity
// labels, split train/test, fit the pipeline on the training side and
// evaluate on the held-out side. The dataset is not modified.
func Train(ds *dataset.Dataset, cfg Config) (*TrainResult, error) {
	if ds == nil {
		return nil, errors.NewValueError("har.Train", "nil dataset")
	}

	X := ds.Matrix()
	labels := ds.Labels()

	indexer := preprocessing.NewStringIndexer()
	y, err := indexer.FitTransformLabels(labels)
	if err != nil {
		return nil, errors.NewModelError("har.Train", "label indexing failed", err)
	}

	XTrain, XTest, yTrain, yTest, err := modelselection.TrainTestSplit(X, y, cfg.TestSize, cfg.Seed)
	if err != nil {
		return nil, err
	}

	pm, err := NewPipeline(cfg).Fit(XTrain, yTrain)
	if err != nil {
		return nil, err
	}

	predictions, err := pm.Predict(XTest)
	if err != nil {
		return nil, err
	}

	confusion, err := metrics.NewConfusionMatrix(yTest, predictions)
	if err != nil {
		return nil, err
	}
	report, err := metrics.NewClassificationReport(confusion, classNames(confusion, indexer))
	if err != nil {
		return nil, err
	}

	trainRows, _ := XTrain.Dims()
	testRows, _ := XTest.Dims()

	log.GetLoggerWithName("har").Info("Workflow trained",
		log.SamplesKey, trainRows+testRows,
		log.SplitRatioKey, cfg.TestSize,
		log.RandomSeedKey, cfg.Seed,
		log.TreesKey, cfg.NumTrees,
		log.AccuracyKey, report.Accuracy,
		log.TestErrorKey, report.TestError,
	)

	return &TrainResult{
		Model:     &Model{Pipeline: pm, Indexer: indexer, Config: cfg},
		Report:    report,
		Confusion: confusion,
		Accuracy:  report.Accuracy,
		TestError: report.TestError,
		TrainRows: trainRows,
		TestRows:  testRows,
	}, nil
}

// classNames maps the confusion matrix class values (indexer space) back to
// activity names. Values outside the indexer fall back to their numeric
// form.
func classNames(cm *metrics.ConfusionMatrix, indexer *preprocessing.StringIndexer) []string {
	all := indexer.ClassLabels()
	classes := cm.Classes()
	names := make([]string, len(classes))
	for i, v := range classes {
		idx := int(v)
		if idx >= 0 && idx < len(all) && float64(idx) == v {
			names[i] = all[idx]
		} else {
			names[i] = fmt.Sprintf("%g", v)
		}
	}
	return names
}
