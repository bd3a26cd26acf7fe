package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sigmotion/harlearn/dataset"
	"github.com/sigmotion/harlearn/metrics"
)

// newTable returns a writer with the shared harlearn table look.
func newTable(out io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func renderReport(out io.Writer, report *metrics.Report) {
	t := newTable(out, "Classification report")
	t.AppendHeader(table.Row{"Class", "Precision", "Recall", "F1", "Support"})
	for _, c := range report.Classes {
		t.AppendRow(table.Row{c.Label, f4(c.Precision), f4(c.Recall), f4(c.F1), c.Support})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"macro avg",
		f4(report.MacroPrecision), f4(report.MacroRecall), f4(report.MacroF1), report.Total})
	t.AppendRow(table.Row{"weighted avg",
		f4(report.WeightedPrecision), f4(report.WeightedRecall), f4(report.WeightedF1), report.Total})
	t.Render()
}

func renderConfusion(out io.Writer, cm *metrics.ConfusionMatrix, labels []string) {
	t := newTable(out, "Confusion matrix (rows true, columns predicted)")
	header := table.Row{""}
	for _, label := range labels {
		header = append(header, label)
	}
	t.AppendHeader(header)
	for i, label := range labels {
		row := table.Row{label}
		for j := range labels {
			row = append(row, cm.At(i, j))
		}
		t.AppendRow(row)
	}
	t.Render()
}

func renderAuditSummary(out io.Writer, ds *dataset.Dataset, a dataset.Audit) {
	t := newTable(out, "Dataset audit")
	t.AppendRow(table.Row{"Rows", a.Rows})
	t.AppendRow(table.Row{"Columns", a.Columns})
	t.AppendRow(table.Row{"Feature columns", a.Features})
	t.AppendRow(table.Row{"Label column", ds.LabelColumn()})
	t.AppendRow(table.Row{"Missing cells", a.TotalMissing()})
	t.Render()
}

func renderMissing(out io.Writer, a dataset.Audit) {
	if a.Clean() {
		return
	}

	dirty := make([]string, 0, len(a.MissingCells))
	for name := range a.MissingCells {
		dirty = append(dirty, name)
	}
	sort.Strings(dirty)

	t := newTable(out, "Missing cells by column")
	t.AppendHeader(table.Row{"Column", "Missing"})
	for _, name := range dirty {
		t.AppendRow(table.Row{name, a.MissingCells[name]})
	}
	t.Render()
}

func renderLabelDistribution(out io.Writer, a dataset.Audit) {
	if len(a.LabelCounts) == 0 {
		return
	}

	t := newTable(out, "Label distribution")
	t.AppendHeader(table.Row{"Label", "Count", "Share"})
	for _, label := range a.SortedLabels() {
		count := a.LabelCounts[label]
		share := float64(count) / float64(a.Rows)
		t.AppendRow(table.Row{label, count, fmt.Sprintf("%.1f%%", 100*share)})
	}
	t.Render()
}

// reportLabels returns the class display names in report order.
func reportLabels(report *metrics.Report) []string {
	labels := make([]string, len(report.Classes))
	for i, c := range report.Classes {
		labels[i] = c.Label
	}
	return labels
}

func f4(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
