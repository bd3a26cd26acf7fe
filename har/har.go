// Package har binds the generic learning stack to the UCI Human Activity
// Recognition dataset: 561 smartphone sensor features per window, one of six
// activity labels, and an optional subject identifier column.
//
// The package carries the dataset profile (expected shape, column names,
// canonical activity labels), a validator that checks a loaded dataset
// against that profile, and the canonical training workflow used by the CLI:
// label indexing, train/test split, pipeline fit and held-out evaluation.
package har

import (
	"fmt"

	"github.com/sigmotion/harlearn/dataset"
	"github.com/sigmotion/harlearn/pkg/errors"
)

// Dataset profile for the UCI HAR CSV export.
const (
	// FeatureCount is the number of sensor feature columns.
	FeatureCount = 561
	// LabelColumn holds the activity name.
	LabelColumn = "Activity"
	// SubjectColumn holds the participant identifier. It is ignored as a
	// feature but kept for inspection.
	SubjectColumn = "subject"
	// ClassCount is the number of activity classes.
	ClassCount = 6
)

// ActivityNames lists the canonical activity labels.
var ActivityNames = []string{
	"WALKING",
	"WALKING_UPSTAIRS",
	"WALKING_DOWNSTAIRS",
	"SITTING",
	"STANDING",
	"LAYING",
}

// knownActivity reports whether a label is one of the canonical six.
func knownActivity(label string) bool {
	for _, name := range ActivityNames {
		if name == label {
			return true
		}
	}
	return false
}

// Validate checks a loaded dataset against the HAR profile: 561 feature
// columns, no missing cells, and exactly the six canonical activity labels.
func Validate(ds *dataset.Dataset) error {
	if ds == nil {
		return errors.NewValueError("har.Validate", "nil dataset")
	}
	if err := ds.CheckShape(FeatureCount); err != nil {
		return err
	}

	audit := ds.Audit()
	if !audit.Clean() {
		return ds.RequireClean()
	}

	if got := len(audit.LabelCounts); got != ClassCount {
		return errors.NewValidationError("labels",
			fmt.Sprintf("expected %d activity classes", ClassCount), got)
	}
	for label := range audit.LabelCounts {
		if !knownActivity(label) {
			return errors.NewValidationError("labels", "unknown activity label", label)
		}
	}
	return nil
}
