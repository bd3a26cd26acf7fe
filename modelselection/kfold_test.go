package modelselection

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// checkFoldPartition verifies that a fold's train and test sets are
// disjoint and together cover all n rows.
func checkFoldPartition(t *testing.T, fold CVFold, n int) {
	t.Helper()
	seen := make(map[int]bool, n)
	for _, idx := range fold.TestIndices {
		if seen[idx] {
			t.Errorf("Index %d duplicated in test set", idx)
		}
		seen[idx] = true
	}
	for _, idx := range fold.TrainIndices {
		if seen[idx] {
			t.Errorf("Index %d appears in both train and test", idx)
		}
		seen[idx] = true
	}
	if len(seen) != n {
		t.Errorf("Expected %d indices covered, got %d", n, len(seen))
	}
}

func TestKFold(t *testing.T) {
	X, y := indexedData(10)

	kf := NewKFold(3, false, 0)
	if kf.GetNSplits() != 3 {
		t.Errorf("Expected 3 splits, got %d", kf.GetNSplits())
	}

	folds := kf.Split(X, y)
	if len(folds) != 3 {
		t.Fatalf("Expected 3 folds, got %d", len(folds))
	}

	// 10 rows over 3 folds: the first fold takes the remainder.
	wantTest := []int{4, 3, 3}
	for i, fold := range folds {
		if len(fold.TestIndices) != wantTest[i] {
			t.Errorf("Fold %d: expected %d test rows, got %d", i, wantTest[i], len(fold.TestIndices))
		}
		if len(fold.TrainIndices) != 10-wantTest[i] {
			t.Errorf("Fold %d: expected %d train rows, got %d", i, 10-wantTest[i], len(fold.TrainIndices))
		}
		checkFoldPartition(t, fold, 10)
	}

	// Without shuffling the test blocks are contiguous.
	if folds[0].TestIndices[0] != 0 || folds[0].TestIndices[3] != 3 {
		t.Errorf("Expected first fold to test rows 0-3, got %v", folds[0].TestIndices)
	}
	if folds[2].TestIndices[0] != 7 {
		t.Errorf("Expected last fold to start at row 7, got %v", folds[2].TestIndices)
	}
}

func TestKFoldDefaults(t *testing.T) {
	kf := NewKFold(1, false, 0)
	if kf.GetNSplits() != 5 {
		t.Errorf("Expected fallback to 5 splits, got %d", kf.GetNSplits())
	}
}

func TestKFoldShuffleDeterminism(t *testing.T) {
	X, y := indexedData(12)

	folds1 := NewKFold(4, true, 42).Split(X, y)
	folds2 := NewKFold(4, true, 42).Split(X, y)

	for i := range folds1 {
		checkFoldPartition(t, folds1[i], 12)
		if len(folds1[i].TestIndices) != len(folds2[i].TestIndices) {
			t.Fatalf("Fold %d sizes differ between runs", i)
		}
		for j := range folds1[i].TestIndices {
			if folds1[i].TestIndices[j] != folds2[i].TestIndices[j] {
				t.Errorf("Fold %d: same seed should reproduce the same test indices", i)
				break
			}
		}
	}
}

func TestStratifiedKFold(t *testing.T) {
	// Three classes with three samples each.
	X := mat.NewDense(9, 1, nil)
	y := mat.NewDense(9, 1, []float64{0, 0, 0, 1, 1, 1, 2, 2, 2})
	for i := 0; i < 9; i++ {
		X.Set(i, 0, float64(i))
	}

	skf := NewStratifiedKFold(3, false, 0)
	if skf.GetNSplits() != 3 {
		t.Errorf("Expected 3 splits, got %d", skf.GetNSplits())
	}

	folds := skf.Split(X, y)
	if len(folds) != 3 {
		t.Fatalf("Expected 3 folds, got %d", len(folds))
	}

	for i, fold := range folds {
		checkFoldPartition(t, fold, 9)
		if len(fold.TestIndices) != 3 {
			t.Errorf("Fold %d: expected 3 test rows, got %d", i, len(fold.TestIndices))
		}

		// Each fold holds exactly one sample of every class.
		counts := map[float64]int{}
		for _, idx := range fold.TestIndices {
			counts[y.At(idx, 0)]++
		}
		for class := 0.0; class < 3; class++ {
			if counts[class] != 1 {
				t.Errorf("Fold %d: expected 1 test sample of class %v, got %d", i, class, counts[class])
			}
		}
	}
}

func TestStratifiedKFoldImbalanced(t *testing.T) {
	// 5 samples of class 0 and 3 of class 1 over 2 folds.
	X := mat.NewDense(8, 1, nil)
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 0, 1, 1, 1})
	for i := 0; i < 8; i++ {
		X.Set(i, 0, float64(i))
	}

	folds := NewStratifiedKFold(2, true, 9).Split(X, y)
	if len(folds) != 2 {
		t.Fatalf("Expected 2 folds, got %d", len(folds))
	}

	for i, fold := range folds {
		checkFoldPartition(t, fold, 8)
		counts := map[float64]int{}
		for _, idx := range fold.TestIndices {
			counts[y.At(idx, 0)]++
		}
		// First fold takes the per-class remainders: 3+2, second 2+1.
		wantZero, wantOne := 3, 2
		if i == 1 {
			wantZero, wantOne = 2, 1
		}
		if counts[0] != wantZero || counts[1] != wantOne {
			t.Errorf("Fold %d: expected class counts %d/%d, got %v", i, wantZero, wantOne, counts)
		}
	}
}
