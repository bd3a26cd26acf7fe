package metrics

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/sigmotion/harlearn/pkg/errors"
)

// Averaging strategies accepted by PrecisionRecallF1.
const (
	// AverageMacro weights every class equally.
	AverageMacro = "macro"
	// AverageWeighted weights every class by its support.
	AverageWeighted = "weighted"
)

// ConfusionMatrix holds multiclass prediction counts. Rows are true classes,
// columns are predicted classes, both indexed by the position of the class
// value in Classes (ascending order).
type ConfusionMatrix struct {
	counts  [][]int
	classes []float64
	index   map[float64]int
}

// NewConfusionMatrix tallies predictions against true labels. Both inputs are
// column vectors of class values; the class set is the ascending union of the
// values seen in either vector.
func NewConfusionMatrix(yTrue, yPred mat.Matrix) (*ConfusionMatrix, error) {
	yTrueVec, yPredVec, err := columnVectors("NewConfusionMatrix", yTrue, yPred)
	if err != nil {
		return nil, err
	}

	n := yTrueVec.Len()
	distinct := make(map[float64]struct{}, 8)
	for i := 0; i < n; i++ {
		distinct[yTrueVec.AtVec(i)] = struct{}{}
		distinct[yPredVec.AtVec(i)] = struct{}{}
	}

	classes := make([]float64, 0, len(distinct))
	for v := range distinct {
		classes = append(classes, v)
	}
	sort.Float64s(classes)

	index := make(map[float64]int, len(classes))
	for i, v := range classes {
		index[v] = i
	}

	counts := make([][]int, len(classes))
	for i := range counts {
		counts[i] = make([]int, len(classes))
	}
	for i := 0; i < n; i++ {
		counts[index[yTrueVec.AtVec(i)]][index[yPredVec.AtVec(i)]]++
	}

	return &ConfusionMatrix{counts: counts, classes: classes, index: index}, nil
}

// NumClasses returns the number of distinct classes.
func (cm *ConfusionMatrix) NumClasses() int {
	return len(cm.classes)
}

// Classes returns a copy of the class values in ascending order.
func (cm *ConfusionMatrix) Classes() []float64 {
	out := make([]float64, len(cm.classes))
	copy(out, cm.classes)
	return out
}

// At returns the number of samples of true class trueIdx predicted as class
// predIdx. Indices follow the Classes ordering.
func (cm *ConfusionMatrix) At(trueIdx, predIdx int) int {
	return cm.counts[trueIdx][predIdx]
}

// Support returns the number of true samples of the given class index.
func (cm *ConfusionMatrix) Support(classIdx int) int {
	total := 0
	for _, c := range cm.counts[classIdx] {
		total += c
	}
	return total
}

// Total returns the number of samples the matrix was built from.
func (cm *ConfusionMatrix) Total() int {
	total := 0
	for i := range cm.counts {
		total += cm.Support(i)
	}
	return total
}

// Accuracy returns the fraction of samples on the matrix diagonal.
func (cm *ConfusionMatrix) Accuracy() float64 {
	correct := 0
	for i := range cm.counts {
		correct += cm.counts[i][i]
	}
	return errors.SafeDivide(float64(correct), float64(cm.Total()))
}

// ClassPrecisionRecallF1 returns the per-class precision, recall and F1 for
// the given class index. A class with no predicted samples raises an
// UndefinedMetricWarning and scores zero precision, matching scikit-learn.
func (cm *ConfusionMatrix) ClassPrecisionRecallF1(classIdx int) (precision, recall, f1 float64) {
	tp := cm.counts[classIdx][classIdx]

	predicted := 0
	for i := range cm.counts {
		predicted += cm.counts[i][classIdx]
	}
	support := cm.Support(classIdx)

	if predicted == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision",
			fmt.Sprintf("no predicted samples for class %g", cm.classes[classIdx]), 0))
	}
	precision = errors.SafeDivide(float64(tp), float64(predicted))
	recall = errors.SafeDivide(float64(tp), float64(support))
	f1 = errors.SafeDivide(2*precision*recall, precision+recall)
	return precision, recall, f1
}

// String renders the count grid with class values as row and column headers.
func (cm *ConfusionMatrix) String() string {
	var b strings.Builder
	b.WriteString("true\\pred")
	for _, v := range cm.classes {
		fmt.Fprintf(&b, "\t%g", v)
	}
	b.WriteByte('\n')
	for i, v := range cm.classes {
		fmt.Fprintf(&b, "%g", v)
		for j := range cm.classes {
			fmt.Fprintf(&b, "\t%d", cm.counts[i][j])
		}
		if i < len(cm.classes)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// PrecisionRecallF1 aggregates per-class precision, recall and F1 using the
// given averaging strategy ("macro" or "weighted").
func PrecisionRecallF1(cm *ConfusionMatrix, average string) (precision, recall, f1 float64, err error) {
	if cm == nil || cm.NumClasses() == 0 {
		return 0, 0, 0, errors.NewValueError("PrecisionRecallF1", "empty confusion matrix")
	}

	switch average {
	case AverageMacro, AverageWeighted:
	default:
		return 0, 0, 0, errors.NewValueError("PrecisionRecallF1",
			fmt.Sprintf("unknown average %q, expected \"macro\" or \"weighted\"", average))
	}

	total := cm.Total()
	k := cm.NumClasses()
	for i := 0; i < k; i++ {
		p, r, f := cm.ClassPrecisionRecallF1(i)

		weight := 1.0 / float64(k)
		if average == AverageWeighted {
			weight = errors.SafeDivide(float64(cm.Support(i)), float64(total))
		}
		precision += weight * p
		recall += weight * r
		f1 += weight * f
	}
	return precision, recall, f1, nil
}

// ClassScore holds the evaluation row of a single class in a report.
type ClassScore struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is a per-class breakdown of a classifier's performance plus the
// macro and weighted aggregates, mirroring scikit-learn's
// classification_report.
type Report struct {
	Classes []ClassScore

	Accuracy  float64
	TestError float64

	MacroPrecision float64
	MacroRecall    float64
	MacroF1        float64

	WeightedPrecision float64
	WeightedRecall    float64
	WeightedF1        float64

	Total int
}

// NewClassificationReport derives a Report from a confusion matrix. When
// labels is non-nil it must hold one display name per class index; otherwise
// the class values are formatted as names.
func NewClassificationReport(cm *ConfusionMatrix, labels []string) (*Report, error) {
	if cm == nil || cm.NumClasses() == 0 {
		return nil, errors.NewValueError("NewClassificationReport", "empty confusion matrix")
	}
	if labels != nil && len(labels) != cm.NumClasses() {
		return nil, errors.NewDimensionError("NewClassificationReport", cm.NumClasses(), len(labels), 0)
	}

	report := &Report{
		Classes: make([]ClassScore, cm.NumClasses()),
		Total:   cm.Total(),
	}

	for i := 0; i < cm.NumClasses(); i++ {
		name := fmt.Sprintf("%g", cm.classes[i])
		if labels != nil {
			name = labels[i]
		}
		p, r, f := cm.ClassPrecisionRecallF1(i)
		report.Classes[i] = ClassScore{
			Label:     name,
			Precision: p,
			Recall:    r,
			F1:        f,
			Support:   cm.Support(i),
		}
	}

	report.Accuracy = cm.Accuracy()
	report.TestError = 1 - report.Accuracy

	var err error
	report.MacroPrecision, report.MacroRecall, report.MacroF1, err = PrecisionRecallF1(cm, AverageMacro)
	if err != nil {
		return nil, err
	}
	report.WeightedPrecision, report.WeightedRecall, report.WeightedF1, err = PrecisionRecallF1(cm, AverageWeighted)
	if err != nil {
		return nil, err
	}

	return report, nil
}

// String renders the report as aligned plain text.
func (r *Report) String() string {
	var b strings.Builder

	width := len("weighted avg")
	for _, c := range r.Classes {
		if len(c.Label) > width {
			width = len(c.Label)
		}
	}

	fmt.Fprintf(&b, "%-*s  precision  recall  f1-score  support\n\n", width, "")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, "%-*s  %9.4f  %6.4f  %8.4f  %7d\n",
			width, c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintf(&b, "\n%-*s  %9s  %6s  %8.4f  %7d\n",
		width, "accuracy", "", "", r.Accuracy, r.Total)
	fmt.Fprintf(&b, "%-*s  %9.4f  %6.4f  %8.4f  %7d\n",
		width, "macro avg", r.MacroPrecision, r.MacroRecall, r.MacroF1, r.Total)
	fmt.Fprintf(&b, "%-*s  %9.4f  %6.4f  %8.4f  %7d",
		width, "weighted avg", r.WeightedPrecision, r.WeightedRecall, r.WeightedF1, r.Total)
	return b.String()
}
