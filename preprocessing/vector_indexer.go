package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sigmotion/harlearn/core/model"
	"github.com/sigmotion/harlearn/pkg/errors"
)

// DefaultMaxCategories is the category threshold used when no
// WithMaxCategories option is given.
const DefaultMaxCategories = 20

// VectorIndexer detects categorical feature columns and re-encodes their
// values as dense category indices. A column is declared categorical when
// it holds at most MaxCategories distinct finite values during Fit; its
// values are then mapped to 0..k-1 in ascending original-value order.
// All other columns pass through untouched, so on fully continuous data
// Transform is an identity. The detected category counts are consumed by
// tree training for categorical splits.
type VectorIndexer struct {
	model.BaseEstimator

	// MaxCategories is the maximum number of distinct values a column may
	// hold and still be treated as categorical.
	MaxCategories int

	// NFeatures is the number of features seen during Fit.
	NFeatures int

	// Categories maps a categorical column to its distinct fitted values
	// in ascending order. Continuous columns are absent.
	Categories map[int][]float64
}

// VectorIndexerOption configures a VectorIndexer.
type VectorIndexerOption func(*VectorIndexer)

// WithMaxCategories sets the categorical detection threshold.
func WithMaxCategories(n int) VectorIndexerOption {
	return func(vi *VectorIndexer) {
		vi.MaxCategories = n
	}
}

// NewVectorIndexer creates a VectorIndexer with the given options.
func NewVectorIndexer(opts ...VectorIndexerOption) *VectorIndexer {
	vi := &VectorIndexer{
		MaxCategories: DefaultMaxCategories,
	}
	for _, opt := range opts {
		opt(vi)
	}
	return vi
}

// Name returns the stage name used in pipeline logs.
func (vi *VectorIndexer) Name() string { return "VectorIndexer" }

// Fit scans every column of X and records the distinct values of columns
// that qualify as categorical. Columns containing NaN or Inf are always
// treated as continuous.
func (vi *VectorIndexer) Fit(X mat.Matrix) error {
	if vi.MaxCategories < 1 {
		return errors.NewValidationError("max_categories", "must be at least 1", vi.MaxCategories)
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("VectorIndexer.Fit", "empty data", errors.ErrEmptyData)
	}

	vi.NFeatures = c
	vi.Categories = make(map[int][]float64)

	for j := 0; j < c; j++ {
		distinct := make(map[float64]struct{}, vi.MaxCategories+1)
		categorical := true
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				categorical = false
				break
			}
			distinct[v] = struct{}{}
			if len(distinct) > vi.MaxCategories {
				categorical = false
				break
			}
		}
		if !categorical {
			continue
		}

		values := make([]float64, 0, len(distinct))
		for v := range distinct {
			values = append(values, v)
		}
		sort.Float64s(values)
		vi.Categories[j] = values
	}

	vi.SetFitted()
	return nil
}

// Transform re-encodes the categorical columns detected during Fit as
// dense category indices and passes continuous columns through. A value
// not seen during Fit on a categorical column aborts with a ValueError.
func (vi *VectorIndexer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !vi.IsFitted() {
		return nil, errors.NewNotFittedError("VectorIndexer", "Transform")
	}

	r, c := X.Dims()
	if c != vi.NFeatures {
		return nil, errors.NewDimensionError("VectorIndexer.Transform", vi.NFeatures, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			values, ok := vi.Categories[j]
			if !ok {
				out.Set(i, j, v)
				continue
			}
			idx := sort.SearchFloat64s(values, v)
			if idx >= len(values) || values[idx] != v {
				return nil, errors.NewValueError("VectorIndexer.Transform",
					fmt.Sprintf("unseen category value %g in column %d at row %d", v, j, i))
			}
			out.Set(i, j, float64(idx))
		}
	}
	return out, nil
}

// FitTransform fits the indexer on X and returns the re-encoded data.
func (vi *VectorIndexer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := vi.Fit(X); err != nil {
		return nil, err
	}
	return vi.Transform(X)
}

// CategoricalFeatures returns a copy of the detected categorical columns
// mapped to their category counts.
func (vi *VectorIndexer) CategoricalFeatures() map[int]int {
	out := make(map[int]int, len(vi.Categories))
	for j, values := range vi.Categories {
		out[j] = len(values)
	}
	return out
}

// GetParams returns the indexer configuration.
func (vi *VectorIndexer) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_categories": vi.MaxCategories,
	}
}

// String returns a printable representation of the indexer.
func (vi *VectorIndexer) String() string {
	if !vi.IsFitted() {
		return fmt.Sprintf("VectorIndexer(max_categories=%d)", vi.MaxCategories)
	}
	return fmt.Sprintf("VectorIndexer(max_categories=%d, n_features=%d, n_categorical=%d)",
		vi.MaxCategories, vi.NFeatures, len(vi.Categories))
}
