package dataset

import (
	"sort"

	harlearnErrors "github.com/sigmotion/harlearn/pkg/errors"
)

// Audit summarizes the shape and cleanliness of a Dataset: row/column counts,
// per-column missing cells, column types, and the label distribution.
type Audit struct {
	Rows         int
	Columns      int
	Features     int
	ColumnTypes  map[string]string
	MissingCells map[string]int // column name -> missing cell count, only dirty columns
	LabelCounts  map[string]int // label value -> occurrences
}

// Clean reports whether no column contains missing cells.
func (a Audit) Clean() bool {
	return len(a.MissingCells) == 0
}

// TotalMissing returns the number of missing cells across all columns.
func (a Audit) TotalMissing() int {
	total := 0
	for _, n := range a.MissingCells {
		total += n
	}
	return total
}

// SortedLabels returns the distinct labels ordered by descending count, ties
// broken lexicographically. This matches the indexing order used by the
// StringIndexer, so audit output and model classes line up.
func (a Audit) SortedLabels() []string {
	labels := make([]string, 0, len(a.LabelCounts))
	for label := range a.LabelCounts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if a.LabelCounts[labels[i]] != a.LabelCounts[labels[j]] {
			return a.LabelCounts[labels[i]] > a.LabelCounts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}

// Audit scans every column for missing cells and tallies the label
// distribution. It never mutates the dataset.
func (d *Dataset) Audit() Audit {
	report := Audit{
		Rows:         d.df.Nrow(),
		Columns:      d.df.Ncol(),
		Features:     len(d.featureCols),
		ColumnTypes:  make(map[string]string, d.df.Ncol()),
		MissingCells: make(map[string]int),
		LabelCounts:  make(map[string]int),
	}

	for _, name := range d.df.Names() {
		col := d.df.Col(name)
		report.ColumnTypes[name] = string(col.Type())

		missing := 0
		for _, isNaN := range col.IsNaN() {
			if isNaN {
				missing++
			}
		}
		if missing > 0 {
			report.MissingCells[name] = missing
		}
	}

	for _, label := range d.Labels() {
		report.LabelCounts[label]++
	}

	return report
}

// RequireClean runs an audit and returns a DataQualityError naming the first
// dirty column when missing cells are present.
func (d *Dataset) RequireClean() error {
	report := d.Audit()
	if report.Clean() {
		return nil
	}

	// Deterministic error: report the lexicographically first dirty column.
	dirty := make([]string, 0, len(report.MissingCells))
	for name := range report.MissingCells {
		dirty = append(dirty, name)
	}
	sort.Strings(dirty)
	first := dirty[0]
	return harlearnErrors.NewDataQualityError("dataset.RequireClean", first,
		"missing values", report.MissingCells[first])
}
