package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sigmotion/harlearn/har"
	"github.com/sigmotion/harlearn/pkg/errors"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Audit a feature CSV without training",
		Long: `inspect loads a feature CSV and prints its audit: shape, per-column
missing cell counts and the label distribution. Nothing is trained, so the
file does not have to match the HAR shape.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd)
		},
	}

	cmd.Flags().String("data", "", "path to the feature CSV (required)")
	cmd.Flags().String("label-column", har.LabelColumn, "name of the label column")
	cmd.Flags().StringSlice("ignore-columns", []string{har.SubjectColumn}, "columns excluded from the feature matrix")

	return cmd
}

func runInspect(cmd *cobra.Command) error {
	flags := cmd.Flags()
	dataPath, _ := flags.GetString("data")
	labelColumn, _ := flags.GetString("label-column")
	ignoreColumns, _ := flags.GetStringSlice("ignore-columns")

	if dataPath == "" {
		return errors.NewValueError("harlearn inspect", "--data is required")
	}

	ds, err := loadDataset(dataPath, labelColumn, ignoreColumns, false)
	if err != nil {
		return err
	}

	audit := ds.Audit()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n\n", dataPath)
	renderAuditSummary(out, ds, audit)
	renderMissing(out, audit)
	renderLabelDistribution(out, audit)
	return nil
}
