package dataset

import (
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"

	harlearnErrors "github.com/sigmotion/harlearn/pkg/errors"
)

const sampleCSV = `f1,f2,subject,Activity
0.1,0.5,1,WALKING
0.2,0.6,1,STANDING
0.3,0.7,2,WALKING
0.4,0.8,2,WALKING
`

func TestReadBasic(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV),
		WithLabelColumn("Activity"),
		WithIgnoreColumns("subject"),
	)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if ds.NumRows() != 4 {
		t.Errorf("NumRows() = %d, want 4", ds.NumRows())
	}
	if ds.NumFeatures() != 2 {
		t.Errorf("NumFeatures() = %d, want 2", ds.NumFeatures())
	}

	names := ds.FeatureNames()
	if names[0] != "f1" || names[1] != "f2" {
		t.Errorf("FeatureNames() = %v, want [f1 f2]", names)
	}

	X := ds.Matrix()
	rows, cols := X.Dims()
	if rows != 4 || cols != 2 {
		t.Fatalf("Matrix dims = %dx%d, want 4x2", rows, cols)
	}
	if X.At(0, 0) != 0.1 || X.At(3, 1) != 0.8 {
		t.Errorf("Matrix values wrong: At(0,0)=%v At(3,1)=%v", X.At(0, 0), X.At(3, 1))
	}

	labels := ds.Labels()
	if len(labels) != 4 || labels[0] != "WALKING" || labels[1] != "STANDING" {
		t.Errorf("Labels() = %v", labels)
	}
}

func TestReadPassthroughColumn(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV),
		WithLabelColumn("Activity"),
		WithIgnoreColumns("subject"),
	)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	subjects, err := ds.Column("subject")
	if err != nil {
		t.Fatalf("Column(subject) failed: %v", err)
	}
	if len(subjects) != 4 || subjects[0] != "1" || subjects[2] != "2" {
		t.Errorf("Column(subject) = %v", subjects)
	}

	if _, err := ds.Column("no_such"); err == nil {
		t.Error("Column on unknown name should fail")
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		opts []Option
	}{
		{
			name: "missing label column",
			csv:  "a,b\n1,2\n",
			opts: []Option{WithLabelColumn("Activity")},
		},
		{
			name: "unknown ignored column",
			csv:  "a,label\n1,x\n",
			opts: []Option{WithIgnoreColumns("nope")},
		},
		{
			name: "non-numeric feature column",
			csv:  "a,label\nfoo,x\nbar,y\n",
			opts: nil,
		},
		{
			name: "no feature columns",
			csv:  "subject,label\n1,x\n",
			opts: []Option{WithIgnoreColumns("subject")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.csv), tt.opts...); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestReadEmpty(t *testing.T) {
	// Header-only input fails inside gota; a fully empty reader fails too.
	for _, csv := range []string{"a,label\n", ""} {
		if _, err := Read(strings.NewReader(csv)); err == nil {
			t.Errorf("expected error for input %q", csv)
		}
	}
}

func TestAudit(t *testing.T) {
	csv := `f1,f2,Activity
0.1,NaN,WALKING
0.2,0.6,WALKING
NaN,0.7,SITTING
`
	ds, err := Read(strings.NewReader(csv), WithLabelColumn("Activity"))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	report := ds.Audit()
	if report.Rows != 3 || report.Columns != 3 || report.Features != 2 {
		t.Errorf("shape = %d rows, %d cols, %d features", report.Rows, report.Columns, report.Features)
	}
	if report.Clean() {
		t.Error("Clean() = true, want false")
	}
	if report.MissingCells["f1"] != 1 || report.MissingCells["f2"] != 1 {
		t.Errorf("MissingCells = %v", report.MissingCells)
	}
	if report.TotalMissing() != 2 {
		t.Errorf("TotalMissing() = %d, want 2", report.TotalMissing())
	}
	if report.LabelCounts["WALKING"] != 2 || report.LabelCounts["SITTING"] != 1 {
		t.Errorf("LabelCounts = %v", report.LabelCounts)
	}

	err = ds.RequireClean()
	if err == nil {
		t.Fatal("RequireClean should fail on dirty data")
	}
	var dqErr *harlearnErrors.DataQualityError
	if !harlearnErrors.As(err, &dqErr) {
		t.Fatalf("error = %T, want *DataQualityError", err)
	}
	if dqErr.Column != "f1" {
		t.Errorf("Column = %q, want f1 (lexicographically first dirty column)", dqErr.Column)
	}
}

func TestAuditClean(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV),
		WithLabelColumn("Activity"),
		WithIgnoreColumns("subject"),
	)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	report := ds.Audit()
	if !report.Clean() {
		t.Errorf("Clean() = false, MissingCells = %v", report.MissingCells)
	}
	if err := ds.RequireClean(); err != nil {
		t.Errorf("RequireClean() = %v, want nil", err)
	}
}

func TestSortedLabels(t *testing.T) {
	// WALKING appears 3 times; SITTING and STANDING once each, so the tie
	// breaks lexicographically.
	csv := `f1,Activity
1,WALKING
2,WALKING
3,WALKING
4,STANDING
5,SITTING
`
	ds, err := Read(strings.NewReader(csv), WithLabelColumn("Activity"))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	got := ds.Audit().SortedLabels()
	want := []string{"WALKING", "SITTING", "STANDING"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedLabels() = %v, want %v", got, want)
		}
	}
}

func TestWithDropNA(t *testing.T) {
	csv := `f1,f2,Activity
0.1,NaN,WALKING
0.2,0.6,STANDING
NaN,0.7,SITTING
0.4,0.8,WALKING
`
	ds, err := Read(strings.NewReader(csv),
		WithLabelColumn("Activity"),
		WithDropNA(),
	)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if ds.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2 after dropping dirty rows", ds.NumRows())
	}
	if !ds.Audit().Clean() {
		t.Error("dataset should be clean after WithDropNA")
	}

	labels := ds.Labels()
	if labels[0] != "STANDING" || labels[1] != "WALKING" {
		t.Errorf("Labels() = %v, want [STANDING WALKING]", labels)
	}
}

func TestCheckShape(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV),
		WithLabelColumn("Activity"),
		WithIgnoreColumns("subject"),
	)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if err := ds.CheckShape(2); err != nil {
		t.Errorf("CheckShape(2) = %v, want nil", err)
	}

	err = ds.CheckShape(561)
	if err == nil {
		t.Fatal("CheckShape(561) should fail")
	}
	var dimErr *harlearnErrors.DimensionError
	if !harlearnErrors.As(err, &dimErr) {
		t.Fatalf("error = %T, want *DimensionError", err)
	}
	if dimErr.Expected != 561 || dimErr.Got != 2 || dimErr.Axis != 1 {
		t.Errorf("DimensionError = %+v", dimErr)
	}
}

func TestSubset(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV),
		WithLabelColumn("Activity"),
		WithIgnoreColumns("subject"),
	)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	sub, err := ds.Subset([]int{0, 2})
	if err != nil {
		t.Fatalf("Subset failed: %v", err)
	}

	if sub.NumRows() != 2 {
		t.Errorf("NumRows() = %d, want 2", sub.NumRows())
	}
	if sub.NumFeatures() != ds.NumFeatures() {
		t.Errorf("NumFeatures changed: %d vs %d", sub.NumFeatures(), ds.NumFeatures())
	}

	X := sub.Matrix()
	if X.At(1, 0) != 0.3 {
		t.Errorf("subset Matrix At(1,0) = %v, want 0.3", X.At(1, 0))
	}

	// The parent dataset is unchanged.
	if ds.NumRows() != 4 {
		t.Errorf("parent NumRows() = %d, want 4", ds.NumRows())
	}
}

func TestFeatures(t *testing.T) {
	df := dataframe.ReadCSV(strings.NewReader(sampleCSV), dataframe.HasHeader(true))

	X, names, err := Features(df, "subject", "Activity")
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}
	rows, cols := X.Dims()
	if rows != 4 || cols != 2 {
		t.Fatalf("matrix dims = %dx%d, want 4x2", rows, cols)
	}
	if names[0] != "f1" || names[1] != "f2" {
		t.Errorf("feature names = %v, want [f1 f2]", names)
	}
	if X.At(2, 0) != 0.3 || X.At(1, 1) != 0.6 {
		t.Errorf("matrix values wrong: At(2,0)=%v At(1,1)=%v", X.At(2, 0), X.At(1, 1))
	}
}

func TestFeaturesUnlabeled(t *testing.T) {
	// Scoring data without a label column; skip names that are absent.
	csv := "f1,f2\n0.1,0.5\n0.2,0.6\n"
	df := dataframe.ReadCSV(strings.NewReader(csv), dataframe.HasHeader(true))

	X, names, err := Features(df, "subject", "Activity")
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}
	rows, cols := X.Dims()
	if rows != 2 || cols != 2 {
		t.Errorf("matrix dims = %dx%d, want 2x2", rows, cols)
	}
	if len(names) != 2 {
		t.Errorf("feature names = %v", names)
	}
}

func TestFeaturesErrors(t *testing.T) {
	nonNumeric := dataframe.ReadCSV(strings.NewReader("f1,tag\n1,a\n2,b\n"), dataframe.HasHeader(true))
	if _, _, err := Features(nonNumeric); err == nil {
		t.Error("non-numeric column should fail")
	}

	labeled := dataframe.ReadCSV(strings.NewReader("subject,Activity\n1,WALKING\n"), dataframe.HasHeader(true))
	if _, _, err := Features(labeled, "subject", "Activity"); err == nil {
		t.Error("skipping every column should fail")
	}
}
