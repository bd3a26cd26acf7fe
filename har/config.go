package har

import (
	"github.com/sigmotion/harlearn/ensemble"
	"github.com/sigmotion/harlearn/pipeline"
	"github.com/sigmotion/harlearn/preprocessing"
	"github.com/sigmotion/harlearn/tree"
)

// Config holds the tunable knobs of the HAR training workflow. The zero
// value is not usable; start from DefaultConfig.
type Config struct {
	// NumTrees is the forest size.
	NumTrees int
	// MaxDepth limits tree depth. Zero means unlimited.
	MaxDepth int
	// Criterion is the split criterion, "gini" or "entropy".
	Criterion string
	// FeatureSubsetStrategy picks the per-split feature count
	// ("auto", "sqrt", "log2", "onethird", "all").
	FeatureSubsetStrategy string
	// MinSamplesSplit is the minimum node size considered for splitting.
	MinSamplesSplit int
	// MinSamplesLeaf is the minimum number of samples per leaf.
	MinSamplesLeaf int
	// MaxCategories bounds the cardinality below which the vector indexer
	// treats a feature as categorical.
	MaxCategories int
	// TestSize is the held-out fraction of the train/test split.
	TestSize float64
	// Seed drives the split and the forest sampling.
	Seed int
	// NumWorkers bounds the tree-training goroutines. Zero means one per
	// CPU core.
	NumWorkers int
}

// DefaultConfig returns the canonical HAR training configuration: 100 trees,
// unlimited depth, sqrt feature subsets and a 70/30 split at seed 42.
func DefaultConfig() Config {
	return Config{
		NumTrees:              100,
		MaxDepth:              0,
		Criterion:             tree.CriterionGini,
		FeatureSubsetStrategy: ensemble.FeatureSubsetAuto,
		MinSamplesSplit:       2,
		MinSamplesLeaf:        1,
		MaxCategories:         4,
		TestSize:              0.3,
		Seed:                  42,
		NumWorkers:            0,
	}
}

// NewForest builds the forest estimator for a configuration.
func NewForest(cfg Config) *ensemble.RandomForestClassifier {
	opts := []ensemble.Option{
		ensemble.WithNumTrees(cfg.NumTrees),
		ensemble.WithMaxDepth(cfg.MaxDepth),
		ensemble.WithMinSamplesSplit(cfg.MinSamplesSplit),
		ensemble.WithMinSamplesLeaf(cfg.MinSamplesLeaf),
		ensemble.WithSeed(cfg.Seed),
		ensemble.WithNumWorkers(cfg.NumWorkers),
	}
	if cfg.Criterion != "" {
		opts = append(opts, ensemble.WithCriterion(cfg.Criterion))
	}
	if cfg.FeatureSubsetStrategy != "" {
		opts = append(opts, ensemble.WithFeatureSubsetStrategy(cfg.FeatureSubsetStrategy))
	}
	return ensemble.NewRandomForestClassifier(opts...)
}

// NewPipeline assembles the canonical HAR pipeline: assembler (invalid-cell
// gate), vector indexer (categorical detection) and the forest. Activity
// labels are strings, so the workflow indexes them with a StringIndexer
// before the matrix pipeline sees them.
func NewPipeline(cfg Config) *pipeline.Pipeline {
	return pipeline.NewPipeline(
		NewForest(cfg),
		preprocessing.NewVectorAssembler(),
		preprocessing.NewVectorIndexer(preprocessing.WithMaxCategories(cfg.MaxCategories)),
	)
}
