package errors

import (
	"math"
)

// CheckValues scans a slice for NaN or Inf entries and returns a
// DataQualityError naming the operation when any are found.
func CheckValues(op string, values []float64) error {
	bad := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad++
		}
	}
	if bad > 0 {
		return NewDataQualityError(op, "", "NaN or Inf values detected", bad)
	}
	return nil
}

// CheckScalar checks a single value for NaN or Inf.
func CheckScalar(op string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewDataQualityError(op, "", "NaN or Inf value detected", 1)
	}
	return nil
}

// CheckMatrix scans every cell of a matrix for NaN or Inf and returns a
// DataQualityError carrying the offending cell count.
func CheckMatrix(op string, matrix interface{ At(int, int) float64 }, rows, cols int) error {
	bad := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := matrix.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				bad++
			}
		}
	}
	if bad > 0 {
		return NewDataQualityError(op, "", "NaN or Inf values detected", bad)
	}
	return nil
}

// SafeDivide performs division, returning 0 when the denominator is zero.
// Metric code uses it so that precision and recall never produce NaN.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// ClipValue clips a value to the range [min, max].
func ClipValue(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
