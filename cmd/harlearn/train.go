package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sigmotion/harlearn/har"
	"github.com/sigmotion/harlearn/pkg/errors"
	"github.com/sigmotion/harlearn/viz"
)

// hyperKeys are the configuration keys shared by flags, the YAML config file
// and HARLEARN_ environment variables.
var hyperKeys = []string{
	"trees", "max-depth", "criterion", "subset-strategy",
	"min-samples-split", "min-samples-leaf", "max-categories",
	"test-size", "seed", "workers",
}

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a random forest on a HAR feature CSV",
		Long: `train loads a UCI HAR feature CSV, audits it for missing values,
validates the HAR shape (561 features, six activity classes), splits it into
train and test sides, fits a random forest pipeline and reports the held-out
accuracy with a per-class breakdown.

Hyperparameters resolve in order: built-in defaults, then the --config YAML
file, then HARLEARN_ environment variables (e.g. HARLEARN_TREES=50), then
explicit flags. The YAML keys match the flag names (trees, max-depth,
criterion, subset-strategy, min-samples-split, min-samples-leaf,
max-categories, test-size, seed, workers).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrain(cmd)
		},
	}

	defaults := har.DefaultConfig()

	cmd.Flags().String("data", "", "path to the HAR feature CSV (required)")
	cmd.Flags().String("config", "", "YAML config file with hyperparameters")
	cmd.Flags().String("model", "", "write the fitted model to this file")
	cmd.Flags().String("plot-dir", "", "write feature importance and confusion matrix PNGs into this directory")
	cmd.Flags().Bool("allow-missing", false, "drop rows with missing cells instead of failing the audit")

	cmd.Flags().Int("trees", defaults.NumTrees, "number of trees in the forest")
	cmd.Flags().Int("max-depth", defaults.MaxDepth, "maximum tree depth, 0 for unlimited")
	cmd.Flags().String("criterion", defaults.Criterion, "split criterion: gini or entropy")
	cmd.Flags().String("subset-strategy", defaults.FeatureSubsetStrategy, "features per split: auto, sqrt, log2, onethird or all")
	cmd.Flags().Int("min-samples-split", defaults.MinSamplesSplit, "minimum samples required to split a node")
	cmd.Flags().Int("min-samples-leaf", defaults.MinSamplesLeaf, "minimum samples required at a leaf")
	cmd.Flags().Int("max-categories", defaults.MaxCategories, "maximum cardinality treated as categorical by the vector indexer")
	cmd.Flags().Float64("test-size", defaults.TestSize, "held-out fraction of the data")
	cmd.Flags().Int("seed", defaults.Seed, "random seed, negative for nondeterministic")
	cmd.Flags().Int("workers", defaults.NumWorkers, "parallel tree builders, 0 for GOMAXPROCS")

	return cmd
}

func runTrain(cmd *cobra.Command) error {
	flags := cmd.Flags()
	dataPath, _ := flags.GetString("data")
	configPath, _ := flags.GetString("config")
	modelPath, _ := flags.GetString("model")
	plotDir, _ := flags.GetString("plot-dir")
	allowMissing, _ := flags.GetBool("allow-missing")

	if dataPath == "" {
		return errors.NewValueError("harlearn train", "--data is required")
	}

	cfg, err := loadTrainConfig(cmd, configPath)
	if err != nil {
		return err
	}

	ds, err := loadDataset(dataPath, har.LabelColumn, []string{har.SubjectColumn}, allowMissing)
	if err != nil {
		return err
	}
	if err := har.Validate(ds); err != nil {
		return err
	}

	result, err := har.Train(ds, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Accuracy:   %.4f\n", result.Accuracy)
	fmt.Fprintf(out, "Test error: %.4f\n", result.TestError)
	fmt.Fprintf(out, "Split:      %d train / %d test rows\n\n", result.TrainRows, result.TestRows)

	renderReport(out, result.Report)
	renderConfusion(out, result.Confusion, reportLabels(result.Report))

	if modelPath != "" {
		if err := result.Model.Save(modelPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nModel written to %s\n", modelPath)
	}
	if plotDir != "" {
		if err := writePlots(result, ds.FeatureNames(), plotDir); err != nil {
			return err
		}
		fmt.Fprintf(out, "Plots written to %s\n", plotDir)
	}
	return nil
}

// loadTrainConfig resolves the forest configuration from defaults, the YAML
// config file, HARLEARN_ environment variables and explicit flags, in that
// order.
func loadTrainConfig(cmd *cobra.Command, configPath string) (har.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range hyperKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
			return har.Config{}, errors.Wrapf(err, "binding flag %s", key)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return har.Config{}, errors.Wrapf(err, "reading config %s", configPath)
		}
	}

	cfg := har.DefaultConfig()
	cfg.NumTrees = v.GetInt("trees")
	cfg.MaxDepth = v.GetInt("max-depth")
	cfg.Criterion = v.GetString("criterion")
	cfg.FeatureSubsetStrategy = v.GetString("subset-strategy")
	cfg.MinSamplesSplit = v.GetInt("min-samples-split")
	cfg.MinSamplesLeaf = v.GetInt("min-samples-leaf")
	cfg.MaxCategories = v.GetInt("max-categories")
	cfg.TestSize = v.GetFloat64("test-size")
	cfg.Seed = v.GetInt("seed")
	cfg.NumWorkers = v.GetInt("workers")
	return cfg, nil
}

// writePlots renders the feature importance bar chart and the confusion
// matrix heat map into dir.
func writePlots(result *har.TrainResult, featureNames []string, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating plot directory %s", dir)
	}

	if importances := result.Model.FeatureImportances(); importances != nil {
		path := filepath.Join(dir, "feature_importances.png")
		if err := viz.PlotFeatureImportances(importances, featureNames, viz.DefaultTopFeatures, path); err != nil {
			return err
		}
	}

	path := filepath.Join(dir, "confusion_matrix.png")
	return viz.PlotConfusionMatrix(result.Confusion, reportLabels(result.Report), path)
}
