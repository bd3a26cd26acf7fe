// Package harlearn implements an end-to-end activity recognition pipeline
// for the UCI HAR smartphone dataset: CSV ingestion and auditing, feature
// assembly, train/test splitting, random forest training and multiclass
// evaluation, plus a CLI that drives the whole workflow.
//
// # Quick Start
//
// Train on the HAR feature CSV and evaluate on a held-out split:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/sigmotion/harlearn/dataset"
//	    "github.com/sigmotion/harlearn/har"
//	)
//
//	func main() {
//	    ds, err := dataset.ReadCSV("train.csv",
//	        dataset.WithLabelColumn(har.LabelColumn),
//	        dataset.WithIgnoreColumns(har.SubjectColumn),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := har.Validate(ds); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    result, err := har.Train(ds, har.DefaultConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("accuracy %.4f, test error %.4f\n", result.Accuracy, result.TestError)
//	}
//
// The same workflow is available as a command:
//
//	harlearn train --data train.csv --model har.gob --plot-dir plots
//	harlearn predict --model har.gob --data test.csv --output preds.csv
//
// # Packages
//
//   - dataset: CSV ingestion and cleanliness auditing on gota dataframes
//   - preprocessing: pipeline stages (VectorAssembler, scalers, VectorIndexer)
//     and the StringIndexer for label encoding
//   - pipeline: stage composition, fitting and gob persistence
//   - tree: CART decision tree classifier
//   - ensemble: random forest with bagging, OOB scoring and feature importances
//   - metrics: confusion matrix, per-class report, multiclass evaluator
//   - modelselection: train/test splits, k-fold splitters, cross-validation
//   - har: the UCI HAR profile and canonical train/predict workflow
//   - viz: feature importance and confusion matrix PNGs
//   - core/model, core/parallel, pkg/errors, pkg/log: shared foundations
//
// # Reproducibility
//
// Every randomized component takes an explicit seed: splits, fold shuffling,
// bootstrap sampling and per-tree feature subsetting all derive from it, and
// forest training is deterministic for a fixed seed regardless of the worker
// count.
package harlearn
