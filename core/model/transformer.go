package model

import "gonum.org/v1/gonum/mat"

// Transformer is the interface for feature transformations.
type Transformer interface {
	// Fit learns the parameters required for the transformation.
	Fit(X mat.Matrix) error

	// Transform applies the transformation to X.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform runs Fit and Transform in one step.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// InverseTransformer is a Transformer whose mapping can be reversed,
// such as a label indexer mapping indices back to string labels.
type InverseTransformer interface {
	Transformer

	// InverseTransform applies the inverse transformation to X.
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}
