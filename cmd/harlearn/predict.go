package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/spf13/cobra"

	"github.com/sigmotion/harlearn/dataset"
	"github.com/sigmotion/harlearn/har"
	"github.com/sigmotion/harlearn/pkg/errors"
	"github.com/sigmotion/harlearn/pkg/log"
)

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Apply a saved model to a feature CSV",
		Long: `predict loads a model written by train --model and scores a feature CSV.
Predicted class values are mapped back to activity names and written as CSV,
with the subject column passed through when present. When the input carries
the label column, the agreement with those labels is logged as a sanity
check.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPredict(cmd)
		},
	}

	cmd.Flags().String("model", "", "path to the saved model (required)")
	cmd.Flags().String("data", "", "path to the feature CSV (required)")
	cmd.Flags().String("output", "", "write predictions to this file instead of stdout")

	return cmd
}

func runPredict(cmd *cobra.Command) error {
	flags := cmd.Flags()
	modelPath, _ := flags.GetString("model")
	dataPath, _ := flags.GetString("data")
	outputPath, _ := flags.GetString("output")

	if modelPath == "" {
		return errors.NewValueError("harlearn predict", "--model is required")
	}
	if dataPath == "" {
		return errors.NewValueError("harlearn predict", "--data is required")
	}

	m, err := har.LoadModel(modelPath)
	if err != nil {
		return err
	}

	df, err := readFrame(dataPath)
	if err != nil {
		return err
	}

	X, _, err := dataset.Features(df, har.SubjectColumn, har.LabelColumn)
	if err != nil {
		return err
	}

	activities, err := m.PredictActivities(X)
	if err != nil {
		return err
	}

	cols := make([]series.Series, 0, 2)
	if hasColumn(df.Names(), har.SubjectColumn) {
		cols = append(cols, series.New(df.Col(har.SubjectColumn).Records(), series.String, har.SubjectColumn))
	}
	cols = append(cols, series.New(activities, series.String, har.LabelColumn))

	predictions := dataframe.New(cols...)
	if predictions.Error() != nil {
		return errors.Wrap(predictions.Error(), "assembling prediction frame")
	}

	var w io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return errors.Wrapf(err, "creating %s", outputPath)
		}
		defer file.Close()
		w = file
	}
	if err := predictions.WriteCSV(w); err != nil {
		return errors.Wrap(err, "writing predictions")
	}

	if hasColumn(df.Names(), har.LabelColumn) {
		truth := df.Col(har.LabelColumn).Records()
		log.GetLoggerWithName("predict").Info("Predictions scored against labels",
			log.SamplesKey, len(activities),
			log.AccuracyKey, labelAgreement(truth, activities),
		)
	}
	if outputPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d predictions to %s\n", len(activities), outputPath)
	}
	return nil
}

// labelAgreement returns the fraction of predictions matching the given
// labels.
func labelAgreement(truth, predicted []string) float64 {
	if len(truth) == 0 || len(truth) != len(predicted) {
		return 0
	}
	matches := 0
	for i := range truth {
		if truth[i] == predicted[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(truth))
}
