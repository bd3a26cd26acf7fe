package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/sigmotion/harlearn/pkg/errors"
)

func TestAssembleBlocks(t *testing.T) {
	left := mat.NewDense(2, 2, []float64{
		1.0, 2.0,
		3.0, 4.0,
	})
	right := mat.NewDense(2, 1, []float64{
		5.0,
		6.0,
	})

	assembler := NewVectorAssembler()
	out, err := assembler.Assemble(left, right)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	want := mat.NewDense(2, 3, []float64{
		1.0, 2.0, 5.0,
		3.0, 4.0, 6.0,
	})
	if !mat.EqualApprox(out, want, 1e-12) {
		t.Errorf("unexpected assembly:\ngot:\n%v\nwant:\n%v",
			mat.Formatted(out), mat.Formatted(want))
	}
}

func TestAssembleRowMismatch(t *testing.T) {
	left := mat.NewDense(2, 1, []float64{1, 2})
	right := mat.NewDense(3, 1, []float64{1, 2, 3})

	assembler := NewVectorAssembler()
	_, err := assembler.Assemble(left, right)
	if err == nil {
		t.Fatal("expected DimensionError, got nil")
	}
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError, got %T: %v", err, err)
	}
}

func TestAssembleHandleInvalid(t *testing.T) {
	dirty := mat.NewDense(3, 2, []float64{
		1.0, 2.0,
		math.NaN(), 4.0,
		5.0, math.Inf(1),
	})

	tests := []struct {
		name     string
		policy   string
		wantErr  bool
		wantRows int
	}{
		{name: "error rejects", policy: HandleInvalidError, wantErr: true},
		{name: "skip drops rows", policy: HandleInvalidSkip, wantRows: 1},
		{name: "keep passes through", policy: HandleInvalidKeep, wantRows: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assembler := NewVectorAssembler(WithHandleInvalid(tt.policy))
			out, err := assembler.Assemble(dirty)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var dq *errors.DataQualityError
				if !errors.As(err, &dq) {
					t.Fatalf("expected DataQualityError, got %T: %v", err, err)
				}
				if dq.Count != 2 {
					t.Errorf("expected 2 invalid cells, got %d", dq.Count)
				}
				return
			}
			if err != nil {
				t.Fatalf("Assemble failed: %v", err)
			}
			r, _ := out.Dims()
			if r != tt.wantRows {
				t.Errorf("expected %d rows, got %d", tt.wantRows, r)
			}
		})
	}
}

func TestAssembleSkipKeepsCleanRows(t *testing.T) {
	dirty := mat.NewDense(3, 2, []float64{
		1.0, 2.0,
		math.NaN(), 4.0,
		5.0, 6.0,
	})

	assembler := NewVectorAssembler(WithHandleInvalid(HandleInvalidSkip))
	out, err := assembler.Assemble(dirty)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	want := mat.NewDense(2, 2, []float64{
		1.0, 2.0,
		5.0, 6.0,
	})
	if !mat.EqualApprox(out, want, 1e-12) {
		t.Errorf("unexpected rows kept:\ngot:\n%v\nwant:\n%v",
			mat.Formatted(out), mat.Formatted(want))
	}
}

func TestAssemblerStage(t *testing.T) {
	X := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})

	assembler := NewVectorAssembler()
	if _, err := assembler.Transform(X); err == nil {
		t.Fatal("expected NotFittedError before Fit")
	}

	if err := assembler.Fit(X); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if assembler.NFeatures != 3 {
		t.Errorf("expected recorded width 3, got %d", assembler.NFeatures)
	}

	out, err := assembler.Transform(X)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if !mat.EqualApprox(out, X, 1e-12) {
		t.Error("Transform should pass clean data through unchanged")
	}

	_, err = assembler.Transform(mat.NewDense(2, 2, nil))
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError on width change, got %T: %v", err, err)
	}
}

func TestAssemblerInvalidPolicy(t *testing.T) {
	assembler := NewVectorAssembler(WithHandleInvalid("drop"))
	err := assembler.Fit(mat.NewDense(1, 1, []float64{1}))
	if err == nil {
		t.Fatal("expected ValidationError, got nil")
	}
	var valErr *errors.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestAssembleNoBlocks(t *testing.T) {
	assembler := NewVectorAssembler()
	_, err := assembler.Assemble()
	if err == nil {
		t.Fatal("expected error for empty input, got nil")
	}
	if !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("expected ErrEmptyData in chain, got %v", err)
	}
}
