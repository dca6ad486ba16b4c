// Package regression implements the modeling core of the tip analysis:
// predictor-matrix encoding, ordinary least squares, backward stepwise
// reduction by AIC, ridge regression with cross-validated penalty
// selection, and exhaustive best-subset search scored by adjusted R².
package regression

import "fmt"

// Frame provides column access to a feature table. The regression
// package never sees domain types directly; any table that can hand
// out numeric and categorical columns can be modeled.
type Frame interface {
	Len() int
	Numeric(name string) ([]float64, error)
	Levels(name string) ([]string, error)
}

// Predictor names one candidate model term. A categorical predictor
// expands to one indicator column per non-reference level at encoding
// time and counts as that many terms.
type Predictor struct {
	Name        string `json:"name"`
	Categorical bool   `json:"categorical"`
}

// String returns the predictor name.
func (p Predictor) String() string {
	return p.Name
}

// FitError reports a degenerate fitting problem, such as a rank
// deficient predictor matrix. It is fatal for the stage that hits it.
type FitError struct {
	Reason string
}

// Error implements the error interface.
func (fe *FitError) Error() string {
	return fmt.Sprintf("fit error: %s", fe.Reason)
}
