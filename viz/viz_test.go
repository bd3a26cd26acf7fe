package viz

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/sigmotion/harlearn/metrics"
)

// checkPNG asserts that a non-empty file was written.
func checkPNG(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected plot file at %s: %v", path, err)
	}
	if info.Size() == 0 {
		t.Errorf("Plot file %s is empty", path)
	}
}

func TestPlotFeatureImportances(t *testing.T) {
	importances := []float64{0.5, 0.1, 0.3, 0.1}
	names := []string{"alpha", "beta", "gamma", "delta"}
	dir := t.TempDir()

	path := filepath.Join(dir, "importance.png")
	if err := PlotFeatureImportances(importances, names, 3, path); err != nil {
		t.Fatalf("PlotFeatureImportances failed: %v", err)
	}
	checkPNG(t, path)

	// Default names and default top count.
	fallback := filepath.Join(dir, "fallback.png")
	if err := PlotFeatureImportances(importances, nil, 0, fallback); err != nil {
		t.Fatalf("PlotFeatureImportances with defaults failed: %v", err)
	}
	checkPNG(t, fallback)
}

func TestPlotFeatureImportancesInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")

	if err := PlotFeatureImportances(nil, nil, 0, path); err == nil {
		t.Error("Expected error for empty importances")
	}
	if err := PlotFeatureImportances([]float64{0.5, 0.5}, []string{"only one"}, 0, path); err == nil {
		t.Error("Expected error for mismatched names")
	}
}

func TestPlotConfusionMatrix(t *testing.T) {
	yTrue := mat.NewDense(6, 1, []float64{0, 0, 1, 1, 2, 2})
	yPred := mat.NewDense(6, 1, []float64{0, 1, 1, 1, 2, 0})
	cm, err := metrics.NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("NewConfusionMatrix failed: %v", err)
	}
	dir := t.TempDir()

	path := filepath.Join(dir, "confusion.png")
	if err := PlotConfusionMatrix(cm, []string{"WALKING", "SITTING", "LAYING"}, path); err != nil {
		t.Fatalf("PlotConfusionMatrix failed: %v", err)
	}
	checkPNG(t, path)

	// Numeric fallback labels.
	fallback := filepath.Join(dir, "fallback.png")
	if err := PlotConfusionMatrix(cm, nil, fallback); err != nil {
		t.Fatalf("PlotConfusionMatrix with default labels failed: %v", err)
	}
	checkPNG(t, fallback)
}

func TestPlotConfusionMatrixInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")

	if err := PlotConfusionMatrix(nil, nil, path); err == nil {
		t.Error("Expected error for nil confusion matrix")
	}

	yTrue := mat.NewDense(4, 1, []float64{0, 0, 1, 1})
	yPred := mat.NewDense(4, 1, []float64{0, 0, 1, 1})
	cm, err := metrics.NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("NewConfusionMatrix failed: %v", err)
	}
	if err := PlotConfusionMatrix(cm, []string{"only one"}, path); err == nil {
		t.Error("Expected error for mismatched labels")
	}
}
