package errors

import (
	"strings"
	"testing"
)

// TestSafeExecutePipelinePhases drives a load/fit/predict sequence where the
// fit phase hits a genuine runtime fault. The fault must surface as a
// PanicError naming the phase, and the surrounding phases stay unaffected.
func TestSafeExecutePipelinePhases(t *testing.T) {
	load := func() error {
		return SafeExecute("dataset.ReadCSV", func() error { return nil })
	}
	fit := func() error {
		return SafeExecute("Pipeline.Fit", func() error {
			rows := []float64{0.27, -0.12, 0.95}
			_ = rows[len(rows)]
			return nil
		})
	}
	predict := func() error {
		return SafeExecute("PipelineModel.Predict", func() error { return nil })
	}

	if err := load(); err != nil {
		t.Fatalf("load phase failed: %v", err)
	}

	err := fit()
	if err == nil {
		t.Fatal("Expected fit phase to fail on the out-of-range access")
	}
	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T: %v", err, err)
	}
	if panicErr.Operation != "Pipeline.Fit" {
		t.Errorf("Operation = %q, want Pipeline.Fit", panicErr.Operation)
	}
	if !strings.Contains(err.Error(), "index out of range") {
		t.Errorf("Error() = %v, want mention of the range fault", err)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}

	if err := predict(); err != nil {
		t.Fatalf("predict phase failed: %v", err)
	}
}

// TestSafeExecutePreservesTypedErrors checks that errors returned by the
// wrapped function reach the caller unwrapped.
func TestSafeExecutePreservesTypedErrors(t *testing.T) {
	err := SafeExecute("RandomForestClassifier.Predict", func() error {
		return NewNotFittedError("RandomForestClassifier", "Predict")
	})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	var nfErr *NotFittedError
	if !As(err, &nfErr) {
		t.Fatalf("Expected NotFittedError, got %T: %v", err, err)
	}
}

// TestRecoverWrapsTypedError checks that a panic arriving after a typed
// error keeps that error reachable through the chain.
func TestRecoverWrapsTypedError(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err, "VectorAssembler.Assemble")
		err = NewDimensionError("VectorAssembler.Assemble", 561, 560, 1)
		panic("block copy failed")
	}

	err := run()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatalf("Expected DimensionError in chain, got %T: %v", err, err)
	}
	if dimErr.Expected != 561 || dimErr.Got != 560 {
		t.Errorf("DimensionError = %+v, want Expected=561, Got=560", dimErr)
	}
	if !strings.Contains(err.Error(), "panic in VectorAssembler.Assemble") {
		t.Errorf("Error() = %v, want the panic context", err)
	}
	if !strings.Contains(err.Error(), "block copy failed") {
		t.Errorf("Error() = %v, want the panic value", err)
	}
}
