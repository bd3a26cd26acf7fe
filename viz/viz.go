// Package viz renders training artifacts as PNG files: feature importance
// bar charts and confusion matrix heatmaps.
package viz

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/sigmotion/harlearn/metrics"
	"github.com/sigmotion/harlearn/pkg/errors"
)

// DefaultTopFeatures bounds how many features an importance chart shows
// when no explicit count is given.
const DefaultTopFeatures = 20

// PlotFeatureImportances writes a bar chart of the topK most important
// features to path. Nil names fall back to f1..fn. topK <= 0 plots up to
// DefaultTopFeatures.
func PlotFeatureImportances(importances []float64, names []string, topK int, path string) error {
	if len(importances) == 0 {
		return errors.NewValueError("viz.PlotFeatureImportances", "no importances to plot")
	}
	if names != nil && len(names) != len(importances) {
		return errors.NewDimensionError("viz.PlotFeatureImportances", len(importances), len(names), 0)
	}

	order := make([]int, len(importances))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return importances[order[a]] > importances[order[b]]
	})

	if topK <= 0 || topK > len(order) {
		topK = DefaultTopFeatures
		if topK > len(order) {
			topK = len(order)
		}
	}
	order = order[:topK]

	values := make(plotter.Values, topK)
	labels := make([]string, topK)
	for i, idx := range order {
		values[i] = importances[idx]
		if names != nil {
			labels[i] = names[idx]
		} else {
			labels[i] = fmt.Sprintf("f%d", idx+1)
		}
	}

	p := plot.New()
	p.Title.Text = "Feature importances"
	p.Y.Label.Text = "Mean decrease in impurity"

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return errors.Wrap(err, "viz.PlotFeatureImportances")
	}
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "viz.PlotFeatureImportances: saving %s", path)
	}
	return nil
}

// confusionGrid adapts a confusion matrix to the heatmap grid interface.
// Columns are predicted classes, rows are true classes; row 0 renders at
// the bottom.
type confusionGrid struct {
	cm *metrics.ConfusionMatrix
}

func (g confusionGrid) Dims() (c, r int) {
	n := g.cm.NumClasses()
	return n, n
}

func (g confusionGrid) Z(c, r int) float64 {
	return float64(g.cm.At(r, c))
}

func (g confusionGrid) X(c int) float64 { return float64(c) }

func (g confusionGrid) Y(r int) float64 { return float64(r) }

// classTicks places one labeled tick per class index.
type classTicks []string

func (ct classTicks) Ticks(min, max float64) []plot.Tick {
	ticks := make([]plot.Tick, 0, len(ct))
	for i, name := range ct {
		v := float64(i)
		if v < min || v > max {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: name})
	}
	return ticks
}

// PlotConfusionMatrix writes a heatmap of the confusion matrix to path.
// Nil labels fall back to the numeric class values.
func PlotConfusionMatrix(cm *metrics.ConfusionMatrix, labels []string, path string) error {
	if cm == nil || cm.NumClasses() == 0 {
		return errors.NewValueError("viz.PlotConfusionMatrix", "nil or empty confusion matrix")
	}
	if labels == nil {
		labels = make([]string, cm.NumClasses())
		for i, v := range cm.Classes() {
			labels[i] = fmt.Sprintf("%g", v)
		}
	}
	if len(labels) != cm.NumClasses() {
		return errors.NewDimensionError("viz.PlotConfusionMatrix", cm.NumClasses(), len(labels), 0)
	}

	p := plot.New()
	p.Title.Text = "Confusion matrix"
	p.X.Label.Text = "Predicted"
	p.Y.Label.Text = "True"

	heatmap := plotter.NewHeatMap(confusionGrid{cm: cm}, palette.Heat(12, 1))
	p.Add(heatmap)

	p.X.Tick.Marker = classTicks(labels)
	p.Y.Tick.Marker = classTicks(labels)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	if err := p.Save(6*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "viz.PlotConfusionMatrix: saving %s", path)
	}
	return nil
}
