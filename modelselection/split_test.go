package modelselection

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/sigmotion/harlearn/dataset"
)

// indexedData builds a matrix whose first column holds the row index so
// split membership can be read back from the values.
func indexedData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i)*10)
		y.Set(i, 0, float64(i%2))
	}
	return X, y
}

// rowIDs collects the first-column values of a matrix.
func rowIDs(m mat.Matrix) map[float64]bool {
	ids := make(map[float64]bool)
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		ids[m.At(i, 0)] = true
	}
	return ids
}

func TestTrainTestSplit(t *testing.T) {
	X, y := indexedData(10)

	XTrain, XTest, yTrain, yTest, err := TrainTestSplit(X, y, 0.3, 42)
	if err != nil {
		t.Fatalf("TrainTestSplit failed: %v", err)
	}

	trainRows, trainCols := XTrain.Dims()
	testRows, testCols := XTest.Dims()
	if trainRows != 7 || testRows != 3 {
		t.Errorf("Expected 7/3 split, got %d/%d", trainRows, testRows)
	}
	if trainCols != 2 || testCols != 2 {
		t.Errorf("Expected 2 feature columns on both sides, got %d and %d", trainCols, testCols)
	}
	if yr, _ := yTrain.Dims(); yr != 7 {
		t.Errorf("Expected 7 train labels, got %d", yr)
	}
	if yr, _ := yTest.Dims(); yr != 3 {
		t.Errorf("Expected 3 test labels, got %d", yr)
	}

	// Every row lands on exactly one side.
	trainIDs := rowIDs(XTrain)
	testIDs := rowIDs(XTest)
	if len(trainIDs)+len(testIDs) != 10 {
		t.Errorf("Expected 10 distinct rows across both sides, got %d", len(trainIDs)+len(testIDs))
	}
	for id := range testIDs {
		if trainIDs[id] {
			t.Errorf("Row %v appears on both sides", id)
		}
	}

	// Labels travel with their rows.
	for i := 0; i < testRows; i++ {
		id := XTest.At(i, 0)
		want := float64(int(id) % 2)
		if yTest.At(i, 0) != want {
			t.Errorf("Row %v: expected label %v, got %v", id, want, yTest.At(i, 0))
		}
	}
}

func TestTrainTestSplitDeterminism(t *testing.T) {
	X, y := indexedData(20)

	XTrain1, XTest1, _, _, err := TrainTestSplit(X, y, 0.25, 7)
	if err != nil {
		t.Fatalf("TrainTestSplit failed: %v", err)
	}
	XTrain2, XTest2, _, _, err := TrainTestSplit(X, y, 0.25, 7)
	if err != nil {
		t.Fatalf("TrainTestSplit failed: %v", err)
	}

	if !mat.Equal(XTrain1, XTrain2) || !mat.Equal(XTest1, XTest2) {
		t.Error("Same seed should reproduce the same split")
	}
}

func TestTrainTestSplitCounts(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		testSize float64
		wantTest int
	}{
		{name: "thirty percent of ten", n: 10, testSize: 0.3, wantTest: 3},
		{name: "half of seven rounds up", n: 7, testSize: 0.5, wantTest: 4},
		{name: "clamped below n", n: 3, testSize: 0.9, wantTest: 2},
		{name: "clamped above zero", n: 2, testSize: 0.01, wantTest: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X, y := indexedData(tt.n)
			_, XTest, _, _, err := TrainTestSplit(X, y, tt.testSize, 1)
			if err != nil {
				t.Fatalf("TrainTestSplit failed: %v", err)
			}
			got, _ := XTest.Dims()
			if got != tt.wantTest {
				t.Errorf("Expected %d test rows, got %d", tt.wantTest, got)
			}
		})
	}
}

func TestTrainTestSplitInvalid(t *testing.T) {
	X, y := indexedData(10)

	if _, _, _, _, err := TrainTestSplit(nil, y, 0.3, 1); err == nil {
		t.Error("Expected error for nil X")
	}
	if _, _, _, _, err := TrainTestSplit(X, y, 0.0, 1); err == nil {
		t.Error("Expected error for zero test size")
	}
	if _, _, _, _, err := TrainTestSplit(X, y, 1.0, 1); err == nil {
		t.Error("Expected error for full test size")
	}

	yShort := mat.NewDense(4, 1, nil)
	if _, _, _, _, err := TrainTestSplit(X, yShort, 0.3, 1); err == nil {
		t.Error("Expected error for mismatched label rows")
	}

	X1, y1 := indexedData(1)
	if _, _, _, _, err := TrainTestSplit(X1, y1, 0.5, 1); err == nil {
		t.Error("Expected error for a single sample")
	}
}

func TestStratifiedTrainTestSplit(t *testing.T) {
	// 8 samples of class 0, 4 of class 1.
	X := mat.NewDense(12, 1, nil)
	y := mat.NewDense(12, 1, nil)
	for i := 0; i < 12; i++ {
		X.Set(i, 0, float64(i))
		if i >= 8 {
			y.Set(i, 0, 1)
		}
	}

	_, XTest, _, yTest, err := StratifiedTrainTestSplit(X, y, 0.25, 42)
	if err != nil {
		t.Fatalf("StratifiedTrainTestSplit failed: %v", err)
	}

	testRows, _ := XTest.Dims()
	if testRows != 3 {
		t.Fatalf("Expected 3 test rows, got %d", testRows)
	}

	counts := map[float64]int{}
	for i := 0; i < testRows; i++ {
		counts[yTest.At(i, 0)]++
	}
	if counts[0] != 2 || counts[1] != 1 {
		t.Errorf("Expected test class counts 2/1, got %v", counts)
	}

	// Determinism under a fixed seed.
	_, XTest2, _, _, err := StratifiedTrainTestSplit(X, y, 0.25, 42)
	if err != nil {
		t.Fatalf("StratifiedTrainTestSplit failed: %v", err)
	}
	if !mat.Equal(XTest, XTest2) {
		t.Error("Same seed should reproduce the same stratified split")
	}
}

func TestStratifiedTrainTestSplitSingletonClass(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{0, 1, 2, 3, 4})
	y := mat.NewDense(5, 1, []float64{0, 0, 0, 0, 9})

	if _, _, _, _, err := StratifiedTrainTestSplit(X, y, 0.4, 1); err == nil {
		t.Error("Expected error for a class with a single sample")
	}
}

func TestSplitDataset(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("f1,f2,label\n")
	rows := []string{
		"0.1,1.0,WALKING", "0.2,1.1,WALKING", "0.3,1.2,SITTING", "0.4,1.3,SITTING",
		"0.5,1.4,WALKING", "0.6,1.5,SITTING", "0.7,1.6,WALKING", "0.8,1.7,SITTING",
		"0.9,1.8,WALKING", "1.0,1.9,SITTING",
	}
	sb.WriteString(strings.Join(rows, "\n"))

	ds, err := dataset.Read(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	train, test, err := SplitDataset(ds, 0.3, 42)
	if err != nil {
		t.Fatalf("SplitDataset failed: %v", err)
	}
	if train.NumRows() != 7 || test.NumRows() != 3 {
		t.Errorf("Expected 7/3 dataset split, got %d/%d", train.NumRows(), test.NumRows())
	}
	if train.NumFeatures() != 2 || test.NumFeatures() != 2 {
		t.Error("Split should keep the feature columns")
	}
	if train.LabelColumn() != "label" || test.LabelColumn() != "label" {
		t.Error("Split should keep the label column")
	}

	if _, _, err := SplitDataset(nil, 0.3, 1); err == nil {
		t.Error("Expected error for nil dataset")
	}
	if _, _, err := SplitDataset(ds, 0, 1); err == nil {
		t.Error("Expected error for zero test size")
	}
}
