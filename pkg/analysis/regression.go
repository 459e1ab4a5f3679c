// Package analysis fits ordinary least squares lines to process series.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrLengthMismatch = errors.New("x and y have different lengths")
	ErrTooFewPoints   = errors.New("at least two points are required")
	// ErrDegenerate means the fit is undefined, e.g. every x is identical.
	ErrDegenerate = errors.New("regression is degenerate")
)

// Fit is an ordinary least squares line y = Intercept + Slope*x
type Fit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"rSquared"`
	N         int     `json:"n"`
}

// Predict evaluates the fitted line at x
func (f Fit) Predict(x float64) float64 {
	return f.Intercept + f.Slope*x
}

func (f Fit) String() string {
	return fmt.Sprintf("y = %.6f + %.6f·x (r² = %.6f, n = %d)", f.Intercept, f.Slope, f.RSquared, f.N)
}

// LinearRegression fits y against x and reports the coefficient of determination
func LinearRegression(x, y []float64) (Fit, error) {
	if len(x) != len(y) {
		return Fit{}, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < 2 {
		return Fit{}, ErrTooFewPoints
	}
	if constant(x) {
		return Fit{}, fmt.Errorf("%w: x has no variance", ErrDegenerate)
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	r2 := stat.RSquared(x, y, nil, alpha, beta)
	for _, v := range []float64{alpha, beta, r2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Fit{}, fmt.Errorf("%w: non-finite result", ErrDegenerate)
		}
	}

	return Fit{Slope: beta, Intercept: alpha, RSquared: r2, N: len(x)}, nil
}

// SinTransform returns sin(x)+100 for every x
func SinTransform(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = math.Sin(x) + 100
	}
	return out
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}
