// Package pipeline composes preprocessing stages and a final estimator into
// a single trainable unit.
//
// A Pipeline owns an ordered list of transformer stages and one estimator.
// Fit runs each stage's FitTransform in declaration order, feeds the result
// to the estimator, and returns a fitted PipelineModel that replays the same
// stage order for prediction. Models persist with encoding/gob.
package pipeline

import (
	"encoding/gob"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/sigmotion/harlearn/core/model"
	"github.com/sigmotion/harlearn/ensemble"
	"github.com/sigmotion/harlearn/pkg/errors"
	"github.com/sigmotion/harlearn/pkg/log"
	"github.com/sigmotion/harlearn/preprocessing"
	"github.com/sigmotion/harlearn/tree"
)

func init() {
	// Concrete stage and estimator types cross the gob boundary behind
	// interfaces, so they have to be registered up front.
	gob.Register(&preprocessing.VectorAssembler{})
	gob.Register(&preprocessing.StandardScaler{})
	gob.Register(&preprocessing.MinMaxScaler{})
	gob.Register(&preprocessing.VectorIndexer{})
	gob.Register(&tree.DecisionTreeClassifier{})
	gob.Register(&ensemble.RandomForestClassifier{})
}

// Stage is a named transformer in a pipeline.
type Stage interface {
	model.Transformer
	Name() string
}

// Estimator is the final stage of a pipeline.
type Estimator interface {
	model.Fitter
	model.Predictor
}

// probaPredictor is satisfied by estimators that expose class probabilities.
type probaPredictor interface {
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// fitChecker is satisfied by estimators that report their fitted state.
type fitChecker interface {
	IsFitted() bool
}

// Pipeline is an ordered list of transformer stages and a final estimator.
type Pipeline struct {
	stages    []Stage
	estimator Estimator
}

// NewPipeline creates a pipeline. An empty stage list is valid; the
// estimator then trains on the raw input.
func NewPipeline(estimator Estimator, stages ...Stage) *Pipeline {
	return &Pipeline{
		stages:    stages,
		estimator: estimator,
	}
}

// StageNames returns the stage names in execution order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Fit runs every stage's FitTransform in declaration order, fits the
// estimator on the final output, and returns the fitted model. Input
// matrices are never modified; every stage writes a fresh matrix.
func (p *Pipeline) Fit(X, y mat.Matrix) (*PipelineModel, error) {
	if p.estimator == nil {
		return nil, errors.NewValueError("Pipeline.Fit", "pipeline has no estimator")
	}
	if X == nil || y == nil {
		return nil, errors.NewValueError("Pipeline.Fit", "nil input")
	}

	logger := log.GetLoggerWithName("pipeline")

	current := X
	for _, stage := range p.stages {
		out, err := stage.FitTransform(current)
		if err != nil {
			return nil, errors.NewModelError("Pipeline.Fit",
				fmt.Sprintf("stage %s failed", stage.Name()), err)
		}
		r, c := out.Dims()
		logger.Debug("Stage fitted", log.StageKey, stage.Name(),
			log.SamplesKey, r, log.FeaturesKey, c)
		current = out
	}

	if err := p.estimator.Fit(current, y); err != nil {
		return nil, errors.NewModelError("Pipeline.Fit", "estimator failed", err)
	}

	rows, cols := current.Dims()
	logger.Info("Pipeline fitted",
		log.StageKey, len(p.stages),
		log.SamplesKey, rows,
		log.FeaturesKey, cols)

	return &PipelineModel{
		Stages:    p.stages,
		Estimator: p.estimator,
	}, nil
}

// PipelineModel is a fitted pipeline. It only reads its stages, so a model
// is safe for concurrent prediction. Fields are public for gob encoding and
// must not be mutated.
type PipelineModel struct {
	Stages    []Stage
	Estimator Estimator
}

// checkFitted reports a NotFittedError when the estimator says it has not
// been trained.
func (pm *PipelineModel) checkFitted(method string) error {
	if pm.Estimator == nil {
		return errors.NewValueError("PipelineModel."+method, "model has no estimator")
	}
	if fc, ok := pm.Estimator.(fitChecker); ok && !fc.IsFitted() {
		return errors.NewNotFittedError("PipelineModel", method)
	}
	return nil
}

// Transform replays the fitted stages over X in declaration order.
func (pm *PipelineModel) Transform(X mat.Matrix) (mat.Matrix, error) {
	current := X
	for _, stage := range pm.Stages {
		out, err := stage.Transform(current)
		if err != nil {
			return nil, errors.NewModelError("PipelineModel.Transform",
				fmt.Sprintf("stage %s failed", stage.Name()), err)
		}
		current = out
	}
	return current, nil
}

// Predict transforms X through the fitted stages and predicts with the
// estimator.
func (pm *PipelineModel) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := pm.checkFitted("Predict"); err != nil {
		return nil, err
	}
	transformed, err := pm.Transform(X)
	if err != nil {
		return nil, err
	}
	return pm.Estimator.Predict(transformed)
}

// PredictProba transforms X and returns the estimator's class probability
// matrix. Estimators without probability support are rejected.
func (pm *PipelineModel) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := pm.checkFitted("PredictProba"); err != nil {
		return nil, err
	}
	pp, ok := pm.Estimator.(probaPredictor)
	if !ok {
		return nil, errors.NewValueError("PipelineModel.PredictProba",
			"estimator does not support probability prediction")
	}
	transformed, err := pm.Transform(X)
	if err != nil {
		return nil, err
	}
	return pp.PredictProba(transformed)
}

// StageNames returns the stage names in execution order.
func (pm *PipelineModel) StageNames() []string {
	names := make([]string, len(pm.Stages))
	for i, s := range pm.Stages {
		names[i] = s.Name()
	}
	return names
}

// Save writes the fitted model to a file with gob.
func (pm *PipelineModel) Save(path string) error {
	return model.SaveModel(pm, path)
}

// LoadPipelineModel reads a fitted model written by Save.
func LoadPipelineModel(path string) (*PipelineModel, error) {
	pm := &PipelineModel{}
	if err := model.LoadModel(pm, path); err != nil {
		return nil, err
	}
	return pm, nil
}
