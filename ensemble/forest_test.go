package ensemble

import (
	"bytes"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/sigmotion/harlearn/core/model"
	"github.com/sigmotion/harlearn/tree"
)

// clusterData builds three well separated clusters on the diagonal so both
// features carry the class signal. 8 points per class, 24 rows total.
func clusterData() (*mat.Dense, *mat.Dense) {
	offsets := [][2]float64{
		{-0.2, -0.1}, {-0.1, 0.2}, {0.0, -0.2}, {0.1, 0.1},
		{0.2, -0.1}, {-0.2, 0.2}, {0.1, -0.2}, {0.2, 0.2},
	}
	centers := []float64{0, 5, 10}

	X := mat.NewDense(24, 2, nil)
	y := mat.NewDense(24, 1, nil)
	row := 0
	for class, center := range centers {
		for _, off := range offsets {
			X.Set(row, 0, center+off[0])
			X.Set(row, 1, center+off[1])
			y.Set(row, 0, float64(class))
			row++
		}
	}
	return X, y
}

func TestRandomForestClassifier_Basic(t *testing.T) {
	X, y := clusterData()

	rf := NewRandomForestClassifier(
		WithNumTrees(15),
		WithSeed(42),
	)
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if !rf.IsFitted() {
		t.Error("Forest should be fitted after Fit")
	}

	classes := rf.Classes()
	want := []float64{0, 1, 2}
	if len(classes) != len(want) {
		t.Fatalf("Expected %d classes, got %d", len(want), len(classes))
	}
	for i, c := range want {
		if classes[i] != c {
			t.Errorf("Class %d: expected %v, got %v", i, c, classes[i])
		}
	}
	if rf.NumFeatures() != 2 {
		t.Errorf("Expected 2 features, got %d", rf.NumFeatures())
	}
	if rf.NumTrees() != 15 {
		t.Errorf("Expected 15 trees, got %d", rf.NumTrees())
	}
	if len(rf.Trees()) != 15 {
		t.Errorf("Expected 15 fitted trees, got %d", len(rf.Trees()))
	}

	score, err := rf.Score(X, y)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if score != 1.0 {
		t.Errorf("Expected perfect training score on separable clusters, got %v", score)
	}

	importances := rf.FeatureImportances()
	if len(importances) != 2 {
		t.Fatalf("Expected 2 importances, got %d", len(importances))
	}
	sum := 0.0
	for _, v := range importances {
		if v < 0 {
			t.Errorf("Importance should be non-negative, got %v", v)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("Importances should sum to 1, got %v", sum)
	}
}

func TestRandomForestClassifier_Determinism(t *testing.T) {
	X, y := clusterData()

	// Same seed with different worker counts must build the same forest.
	rf1 := NewRandomForestClassifier(WithNumTrees(10), WithSeed(7), WithNumWorkers(1))
	rf2 := NewRandomForestClassifier(WithNumTrees(10), WithSeed(7), WithNumWorkers(4))

	if err := rf1.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if err := rf2.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	proba1, err := rf1.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	proba2, err := rf2.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	if !mat.Equal(proba1, proba2) {
		t.Error("Same seed should produce identical probabilities regardless of worker count")
	}

	pred1, _ := rf1.Predict(X)
	pred2, _ := rf2.Predict(X)
	if !mat.Equal(pred1, pred2) {
		t.Error("Same seed should produce identical predictions regardless of worker count")
	}
}

func TestRandomForestClassifier_PredictProba(t *testing.T) {
	X, y := clusterData()

	rf := NewRandomForestClassifier(WithNumTrees(10), WithSeed(1))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	proba, err := rf.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	r, c := proba.Dims()
	if r != 24 || c != 3 {
		t.Fatalf("Expected 24x3 probabilities, got %dx%d", r, c)
	}
	for i := 0; i < r; i++ {
		sum := 0.0
		for j := 0; j < c; j++ {
			p := proba.At(i, j)
			if p < 0 || p > 1 {
				t.Errorf("Probability out of range at (%d,%d): %v", i, j, p)
			}
			sum += p
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("Row %d probabilities should sum to 1, got %v", i, sum)
		}
	}
}

func TestRandomForestClassifier_SmallBags(t *testing.T) {
	// Tiny dataset so some bootstrap samples hold a single class. Class
	// columns from those trees still have to land in the right forest
	// column.
	X := mat.NewDense(4, 1, []float64{0.0, 0.1, 1.0, 1.1})
	y := mat.NewDense(4, 1, []float64{3, 3, 8, 8})

	rf := NewRandomForestClassifier(WithNumTrees(25), WithSeed(5))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	proba, err := rf.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		sum := proba.At(i, 0) + proba.At(i, 1)
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("Row %d probabilities should sum to 1, got %v", i, sum)
		}
	}

	predictions, err := rf.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		p := predictions.At(i, 0)
		if p != 3 && p != 8 {
			t.Errorf("Prediction %d should be a training class value, got %v", i, p)
		}
	}
}

func TestRandomForestClassifier_OOBScore(t *testing.T) {
	X, y := clusterData()

	rf := NewRandomForestClassifier(
		WithNumTrees(20),
		WithSeed(42),
		WithOOBScore(true),
	)
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	oob, err := rf.OOBScore()
	if err != nil {
		t.Fatalf("OOBScore failed: %v", err)
	}
	if oob < 0.9 || oob > 1.0 {
		t.Errorf("Expected high out-of-bag accuracy on separable clusters, got %v", oob)
	}

	// OOB without bootstrap has no held-out rows to score.
	bad := NewRandomForestClassifier(
		WithNumTrees(5),
		WithOOBScore(true),
		WithBootstrap(false),
	)
	if err := bad.Fit(X, y); err == nil {
		t.Error("Expected error when oob_score is enabled without bootstrap")
	}

	// Forest without OOB enabled must refuse to report one.
	plain := NewRandomForestClassifier(WithNumTrees(5), WithSeed(1))
	if err := plain.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if _, err := plain.OOBScore(); err == nil {
		t.Error("Expected error when OOB score was not computed")
	}
}

func TestRandomForestClassifier_InvalidInput(t *testing.T) {
	X, y := clusterData()

	t.Run("predict before fit", func(t *testing.T) {
		rf := NewRandomForestClassifier()
		if _, err := rf.Predict(X); err == nil {
			t.Error("Expected error when predicting before fit")
		}
		if _, err := rf.OOBScore(); err == nil {
			t.Error("Expected error for OOB score before fit")
		}
		if rf.FeatureImportances() != nil {
			t.Error("Expected nil importances before fit")
		}
	})

	t.Run("nil input", func(t *testing.T) {
		rf := NewRandomForestClassifier()
		if err := rf.Fit(nil, y); err == nil {
			t.Error("Expected error for nil X")
		}
	})

	t.Run("too few trees", func(t *testing.T) {
		rf := NewRandomForestClassifier(WithNumTrees(0))
		if err := rf.Fit(X, y); err == nil {
			t.Error("Expected error for zero trees")
		}
	})

	t.Run("row mismatch", func(t *testing.T) {
		rf := NewRandomForestClassifier()
		yShort := mat.NewDense(3, 1, []float64{0, 1, 2})
		if err := rf.Fit(X, yShort); err == nil {
			t.Error("Expected error for mismatched rows")
		}
	})

	t.Run("wide y", func(t *testing.T) {
		rf := NewRandomForestClassifier()
		yWide := mat.NewDense(24, 2, nil)
		if err := rf.Fit(X, yWide); err == nil {
			t.Error("Expected error for multi-column y")
		}
	})

	t.Run("unknown strategy", func(t *testing.T) {
		rf := NewRandomForestClassifier(WithFeatureSubsetStrategy("cubert"))
		if err := rf.Fit(X, y); err == nil {
			t.Error("Expected error for unknown feature subset strategy")
		}
	})

	t.Run("feature mismatch at predict", func(t *testing.T) {
		rf := NewRandomForestClassifier(WithNumTrees(3), WithSeed(1))
		if err := rf.Fit(X, y); err != nil {
			t.Fatalf("Fit failed: %v", err)
		}
		wide := mat.NewDense(2, 5, nil)
		if _, err := rf.Predict(wide); err == nil {
			t.Error("Expected error for wrong feature count")
		}
	})
}

func TestResolveMaxFeatures(t *testing.T) {
	tests := []struct {
		name        string
		strategy    string
		maxFeatures int
		nFeatures   int
		want        int
		wantErr     bool
	}{
		{name: "auto sqrt", strategy: FeatureSubsetAuto, nFeatures: 100, want: 10},
		{name: "sqrt", strategy: FeatureSubsetSqrt, nFeatures: 561, want: 23},
		{name: "log2", strategy: FeatureSubsetLog2, nFeatures: 64, want: 6},
		{name: "one third", strategy: FeatureSubsetOneThird, nFeatures: 9, want: 3},
		{name: "all", strategy: FeatureSubsetAll, nFeatures: 17, want: 17},
		{name: "empty means auto", strategy: "", nFeatures: 16, want: 4},
		{name: "floor at one", strategy: FeatureSubsetOneThird, nFeatures: 2, want: 1},
		{name: "explicit override", strategy: FeatureSubsetAll, maxFeatures: 3, nFeatures: 10, want: 3},
		{name: "explicit clamped", strategy: FeatureSubsetAuto, maxFeatures: 50, nFeatures: 10, want: 10},
		{name: "unknown", strategy: "best", nFeatures: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveMaxFeatures(tt.strategy, tt.maxFeatures, tt.nFeatures)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %d features, got %d", tt.want, got)
			}
		})
	}
}

func TestRandomForestClassifier_GobRoundTrip(t *testing.T) {
	X, y := clusterData()

	rf := NewRandomForestClassifier(
		WithNumTrees(8),
		WithSeed(42),
		WithCriterion(tree.CriterionEntropy),
	)
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	var buf bytes.Buffer
	if err := model.SaveModelToWriter(rf, &buf); err != nil {
		t.Fatalf("SaveModelToWriter failed: %v", err)
	}

	restored := NewRandomForestClassifier()
	if err := model.LoadModelFromReader(restored, &buf); err != nil {
		t.Fatalf("LoadModelFromReader failed: %v", err)
	}

	if !restored.IsFitted() {
		t.Error("Restored forest should be fitted")
	}
	if restored.NumClasses() != rf.NumClasses() {
		t.Errorf("Expected %d classes after restore, got %d", rf.NumClasses(), restored.NumClasses())
	}
	if restored.criterion != tree.CriterionEntropy {
		t.Errorf("Expected entropy criterion after restore, got %s", restored.criterion)
	}

	want, err := rf.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	got, err := restored.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba on restored forest failed: %v", err)
	}
	if !mat.Equal(want, got) {
		t.Error("Restored forest should produce identical probabilities")
	}

	wantImp := rf.FeatureImportances()
	gotImp := restored.FeatureImportances()
	for i := range wantImp {
		if math.Abs(wantImp[i]-gotImp[i]) > 1e-12 {
			t.Errorf("Importance %d mismatch after restore: %v vs %v", i, wantImp[i], gotImp[i])
		}
	}
}

func TestRandomForestClassifier_Clone(t *testing.T) {
	X, y := clusterData()

	rf := NewRandomForestClassifier(
		WithNumTrees(6),
		WithMaxDepth(4),
		WithSeed(9),
		WithFeatureSubsetStrategy(FeatureSubsetAll),
	)
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	clone := rf.Clone()
	if clone.IsFitted() {
		t.Error("Clone should not be fitted")
	}
	if clone.numTrees != 6 || clone.maxDepth != 4 || clone.seed != 9 {
		t.Error("Clone should keep the hyperparameters")
	}
	if clone.featureSubsetStrategy != FeatureSubsetAll {
		t.Errorf("Clone should keep the subset strategy, got %s", clone.featureSubsetStrategy)
	}

	// A fitted clone must match the original since the seed is shared.
	if err := clone.Fit(X, y); err != nil {
		t.Fatalf("Clone fit failed: %v", err)
	}
	p1, _ := rf.Predict(X)
	p2, _ := clone.Predict(X)
	if !mat.Equal(p1, p2) {
		t.Error("Clone with same seed should reproduce predictions")
	}
}

func TestRandomForestClassifier_Params(t *testing.T) {
	rf := NewRandomForestClassifier(WithNumTrees(30), WithSeed(3))

	params := rf.GetParams()
	if params["n_estimators"] != 30 {
		t.Errorf("Expected n_estimators 30, got %v", params["n_estimators"])
	}
	if params["seed"] != 3 {
		t.Errorf("Expected seed 3, got %v", params["seed"])
	}
	if params["bootstrap"] != true {
		t.Errorf("Expected bootstrap true, got %v", params["bootstrap"])
	}

	err := rf.SetParams(map[string]interface{}{
		"n_estimators":            12,
		"feature_subset_strategy": FeatureSubsetLog2,
		"bootstrap":               false,
	})
	if err != nil {
		t.Fatalf("SetParams failed: %v", err)
	}
	if rf.numTrees != 12 {
		t.Errorf("Expected 12 trees after SetParams, got %d", rf.numTrees)
	}
	if rf.featureSubsetStrategy != FeatureSubsetLog2 {
		t.Errorf("Expected log2 strategy, got %s", rf.featureSubsetStrategy)
	}
	if rf.bootstrap {
		t.Error("Expected bootstrap disabled after SetParams")
	}

	if err := rf.SetParams(map[string]interface{}{"n_estimators": "ten"}); err == nil {
		t.Error("Expected error for wrongly typed value")
	}
	if err := rf.SetParams(map[string]interface{}{"warm_start": true}); err == nil {
		t.Error("Expected error for unknown parameter")
	}
}
