// Package preprocessing provides the transformer stages that prepare raw
// feature matrices for model training: vector assembly, label indexing,
// categorical feature indexing and scaling. Every stage follows the same
// fitted-state discipline as the estimators: Fit learns statistics from
// training data, Transform applies them, and calling Transform before Fit
// returns a NotFittedError.
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sigmotion/harlearn/core/model"
	"github.com/sigmotion/harlearn/pkg/errors"
)

// Invalid-value policies accepted by WithHandleInvalid.
const (
	// HandleInvalidError rejects any NaN or Inf cell with a DataQualityError.
	HandleInvalidError = "error"
	// HandleInvalidSkip drops every row that contains a NaN or Inf cell.
	HandleInvalidSkip = "skip"
	// HandleInvalidKeep passes NaN and Inf cells through unchanged.
	HandleInvalidKeep = "keep"
)

// VectorAssembler concatenates feature blocks into a single dense matrix
// and polices invalid cells on the way through. Used as a pipeline stage
// it acts as the validation gate in front of the estimator: Fit records
// the training width, Transform enforces it and applies the configured
// invalid-value policy.
type VectorAssembler struct {
	model.BaseEstimator

	// HandleInvalid selects what happens to NaN/Inf cells: "error"
	// (default), "skip" or "keep".
	HandleInvalid string

	// NFeatures is the assembled width recorded during Fit.
	NFeatures int
}

// AssemblerOption configures a VectorAssembler.
type AssemblerOption func(*VectorAssembler)

// WithHandleInvalid sets the policy for NaN/Inf cells. Accepted values
// are "error", "skip" and "keep".
func WithHandleInvalid(policy string) AssemblerOption {
	return func(a *VectorAssembler) {
		a.HandleInvalid = policy
	}
}

// NewVectorAssembler creates a VectorAssembler. The default policy
// rejects invalid cells.
func NewVectorAssembler(opts ...AssemblerOption) *VectorAssembler {
	a := &VectorAssembler{
		HandleInvalid: HandleInvalidError,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the stage name used in pipeline logs.
func (a *VectorAssembler) Name() string { return "VectorAssembler" }

func (a *VectorAssembler) validPolicy() error {
	switch a.HandleInvalid {
	case HandleInvalidError, HandleInvalidSkip, HandleInvalidKeep:
		return nil
	}
	return errors.NewValidationError("handle_invalid",
		`must be one of "error", "skip", "keep"`, a.HandleInvalid)
}

// Assemble concatenates the given blocks column-wise into one dense
// matrix. All blocks must share the same row count. The configured
// invalid-value policy is applied to the assembled result.
func (a *VectorAssembler) Assemble(blocks ...mat.Matrix) (*mat.Dense, error) {
	if err := a.validPolicy(); err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, errors.NewModelError("VectorAssembler.Assemble", "no input blocks", errors.ErrEmptyData)
	}

	rows, _ := blocks[0].Dims()
	total := 0
	for i, b := range blocks {
		r, c := b.Dims()
		if r != rows {
			return nil, errors.NewDimensionError(fmt.Sprintf("VectorAssembler.Assemble(block %d)", i), rows, r, 0)
		}
		total += c
	}
	if rows == 0 || total == 0 {
		return nil, errors.NewModelError("VectorAssembler.Assemble", "empty data", errors.ErrEmptyData)
	}

	out := mat.NewDense(rows, total, nil)
	offset := 0
	for _, b := range blocks {
		_, c := b.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < c; j++ {
				out.Set(i, offset+j, b.At(i, j))
			}
		}
		offset += c
	}

	return a.applyPolicy("VectorAssembler.Assemble", out)
}

// Fit records the assembled feature width.
func (a *VectorAssembler) Fit(X mat.Matrix) error {
	if err := a.validPolicy(); err != nil {
		return err
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("VectorAssembler.Fit", "empty data", errors.ErrEmptyData)
	}
	a.NFeatures = c
	a.SetFitted()
	return nil
}

// Transform validates the feature width recorded during Fit and applies
// the invalid-value policy. With the "skip" policy the returned matrix
// may have fewer rows than the input.
func (a *VectorAssembler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !a.IsFitted() {
		return nil, errors.NewNotFittedError("VectorAssembler", "Transform")
	}
	r, c := X.Dims()
	if c != a.NFeatures {
		return nil, errors.NewDimensionError("VectorAssembler.Transform", a.NFeatures, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(i, j))
		}
	}
	return a.applyPolicy("VectorAssembler.Transform", out)
}

// FitTransform fits the assembler on X and returns the validated data.
func (a *VectorAssembler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := a.Fit(X); err != nil {
		return nil, err
	}
	return a.Transform(X)
}

// applyPolicy enforces the invalid-value policy on an assembled matrix.
func (a *VectorAssembler) applyPolicy(op string, m *mat.Dense) (*mat.Dense, error) {
	switch a.HandleInvalid {
	case HandleInvalidKeep:
		return m, nil
	case HandleInvalidError:
		r, c := m.Dims()
		if err := errors.CheckMatrix(op, m, r, c); err != nil {
			return nil, err
		}
		return m, nil
	case HandleInvalidSkip:
		return dropInvalidRows(op, m)
	}
	return nil, errors.NewValidationError("handle_invalid",
		`must be one of "error", "skip", "keep"`, a.HandleInvalid)
}

// dropInvalidRows returns a copy of m without rows containing NaN or Inf.
func dropInvalidRows(op string, m *mat.Dense) (*mat.Dense, error) {
	r, c := m.Dims()
	keep := make([]int, 0, r)
	for i := 0; i < r; i++ {
		valid := true
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				valid = false
				break
			}
		}
		if valid {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, errors.NewDataQualityError(op, "", "all rows contain invalid values", r)
	}
	out := mat.NewDense(len(keep), c, nil)
	for to, from := range keep {
		for j := 0; j < c; j++ {
			out.Set(to, j, m.At(from, j))
		}
	}
	return out, nil
}

// GetParams returns the assembler configuration.
func (a *VectorAssembler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"handle_invalid": a.HandleInvalid,
	}
}

// String returns a printable representation of the assembler.
func (a *VectorAssembler) String() string {
	if !a.IsFitted() {
		return fmt.Sprintf("VectorAssembler(handle_invalid=%s)", a.HandleInvalid)
	}
	return fmt.Sprintf("VectorAssembler(handle_invalid=%s, n_features=%d)", a.HandleInvalid, a.NFeatures)
}
