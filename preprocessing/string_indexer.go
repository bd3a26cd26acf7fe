package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sigmotion/harlearn/core/model"
	"github.com/sigmotion/harlearn/pkg/errors"
)

// Unseen-label policies accepted by WithHandleUnseen.
const (
	// HandleUnseenError rejects labels not seen during Fit with a ValueError.
	HandleUnseenError = "error"
	// HandleUnseenKeep maps labels not seen during Fit to index -1.
	HandleUnseenKeep = "keep"
)

// StringIndexer maps string labels to dense zero-based float64 indices.
// Indices are assigned by descending label frequency in the training
// data, ties broken lexicographically, so the most frequent label always
// becomes index 0. The same ordering is reported by dataset audits.
type StringIndexer struct {
	model.BaseEstimator

	// Labels holds the label for each index, in index order.
	Labels []string

	// Index holds the fitted label to index mapping.
	Index map[string]int

	// HandleUnseen selects what happens to labels not seen during Fit:
	// "error" (default) or "keep".
	HandleUnseen string
}

// StringIndexerOption configures a StringIndexer.
type StringIndexerOption func(*StringIndexer)

// WithHandleUnseen sets the policy for labels not seen during Fit.
// Accepted values are "error" and "keep".
func WithHandleUnseen(policy string) StringIndexerOption {
	return func(si *StringIndexer) {
		si.HandleUnseen = policy
	}
}

// NewStringIndexer creates a StringIndexer. The default policy rejects
// unseen labels.
func NewStringIndexer(opts ...StringIndexerOption) *StringIndexer {
	si := &StringIndexer{
		HandleUnseen: HandleUnseenError,
	}
	for _, opt := range opts {
		opt(si)
	}
	return si
}

// Name returns the stage name used in pipeline logs.
func (si *StringIndexer) Name() string { return "StringIndexer" }

func (si *StringIndexer) validPolicy() error {
	switch si.HandleUnseen {
	case HandleUnseenError, HandleUnseenKeep:
		return nil
	}
	return errors.NewValidationError("handle_unseen",
		`must be one of "error", "keep"`, si.HandleUnseen)
}

// FitLabels learns the label to index mapping from the training labels.
func (si *StringIndexer) FitLabels(labels []string) error {
	if err := si.validPolicy(); err != nil {
		return err
	}
	if len(labels) == 0 {
		return errors.NewModelError("StringIndexer.FitLabels", "empty data", errors.ErrEmptyData)
	}

	counts := make(map[string]int, 8)
	for _, l := range labels {
		counts[l]++
	}

	uniq := make([]string, 0, len(counts))
	for l := range counts {
		uniq = append(uniq, l)
	}
	sort.Slice(uniq, func(i, j int) bool {
		if counts[uniq[i]] != counts[uniq[j]] {
			return counts[uniq[i]] > counts[uniq[j]]
		}
		return uniq[i] < uniq[j]
	})

	si.Labels = uniq
	si.Index = make(map[string]int, len(uniq))
	for i, l := range uniq {
		si.Index[l] = i
	}

	si.SetFitted()
	return nil
}

// TransformLabels maps labels to a samples x 1 matrix of class indices.
// Under the "keep" policy unseen labels are mapped to -1; under the
// default policy the first unseen label aborts with a ValueError.
func (si *StringIndexer) TransformLabels(labels []string) (*mat.Dense, error) {
	if !si.IsFitted() {
		return nil, errors.NewNotFittedError("StringIndexer", "TransformLabels")
	}
	if len(labels) == 0 {
		return nil, errors.NewModelError("StringIndexer.TransformLabels", "empty data", errors.ErrEmptyData)
	}

	out := mat.NewDense(len(labels), 1, nil)
	for i, l := range labels {
		idx, ok := si.Index[l]
		if !ok {
			if si.HandleUnseen == HandleUnseenKeep {
				idx = -1
			} else {
				return nil, errors.NewValueError("StringIndexer.TransformLabels",
					fmt.Sprintf("unseen label %q at row %d", l, i))
			}
		}
		out.Set(i, 0, float64(idx))
	}
	return out, nil
}

// FitTransformLabels fits the indexer on labels and returns their indices.
func (si *StringIndexer) FitTransformLabels(labels []string) (*mat.Dense, error) {
	if err := si.FitLabels(labels); err != nil {
		return nil, err
	}
	return si.TransformLabels(labels)
}

// InverseTransform maps a samples x 1 matrix of class indices back to the
// original labels.
func (si *StringIndexer) InverseTransform(X mat.Matrix) ([]string, error) {
	if !si.IsFitted() {
		return nil, errors.NewNotFittedError("StringIndexer", "InverseTransform")
	}
	r, c := X.Dims()
	if c != 1 {
		return nil, errors.NewDimensionError("StringIndexer.InverseTransform", 1, c, 1)
	}

	out := make([]string, r)
	for i := 0; i < r; i++ {
		idx := int(math.Round(X.At(i, 0)))
		if idx < 0 || idx >= len(si.Labels) {
			return nil, errors.NewValueError("StringIndexer.InverseTransform",
				fmt.Sprintf("class index %d at row %d is out of range [0, %d)", idx, i, len(si.Labels)))
		}
		out[i] = si.Labels[idx]
	}
	return out, nil
}

// IndexToLabels converts a slice of class indices to their labels. It is
// the slice-based counterpart of InverseTransform.
func (si *StringIndexer) IndexToLabels(indices []int) ([]string, error) {
	if !si.IsFitted() {
		return nil, errors.NewNotFittedError("StringIndexer", "IndexToLabels")
	}
	out := make([]string, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(si.Labels) {
			return nil, errors.NewValueError("StringIndexer.IndexToLabels",
				fmt.Sprintf("class index %d at row %d is out of range [0, %d)", idx, i, len(si.Labels)))
		}
		out[i] = si.Labels[idx]
	}
	return out, nil
}

// NumClasses returns the number of distinct labels seen during Fit.
func (si *StringIndexer) NumClasses() int {
	return len(si.Labels)
}

// ClassLabels returns a copy of the fitted labels in index order.
func (si *StringIndexer) ClassLabels() []string {
	out := make([]string, len(si.Labels))
	copy(out, si.Labels)
	return out
}

// GetParams returns the indexer configuration.
func (si *StringIndexer) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"handle_unseen": si.HandleUnseen,
	}
}

// String returns a printable representation of the indexer.
func (si *StringIndexer) String() string {
	if !si.IsFitted() {
		return fmt.Sprintf("StringIndexer(handle_unseen=%s)", si.HandleUnseen)
	}
	return fmt.Sprintf("StringIndexer(handle_unseen=%s, n_classes=%d)", si.HandleUnseen, len(si.Labels))
}
