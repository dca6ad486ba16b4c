package regression

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Term is one predictor's slice of the design matrix: a single column
// for a numeric predictor, or the indicator block of a categorical.
type Term struct {
	Predictor Predictor
	Levels    []string // all levels, Levels[0] is the reference; nil for numeric
	Cols      []int    // design-matrix column indices owned by this term
}

// Encoder maps frame rows onto a fixed design-matrix layout. The
// layout is frozen when the encoder is built from the training window:
// categorical levels are collected there, sorted, and the first level
// becomes the reference. Encoding another window reuses the identical
// column order, so every training coefficient lines up with the same
// evaluation column. A level never seen in training encodes as an
// all-zero indicator block instead of crashing.
type Encoder struct {
	terms []Term
	names []string
}

// NewEncoder builds the design-matrix layout for the given predictors
// from the training frame.
func NewEncoder(train Frame, predictors []Predictor) (*Encoder, error) {
	enc := &Encoder{}
	col := 0
	for _, p := range predictors {
		if !p.Categorical {
			if _, err := train.Numeric(p.Name); err != nil {
				return nil, err
			}
			enc.terms = append(enc.terms, Term{Predictor: p, Cols: []int{col}})
			enc.names = append(enc.names, p.Name)
			col++
			continue
		}

		vals, err := train.Levels(p.Name)
		if err != nil {
			return nil, err
		}
		levels := distinctSorted(vals)
		if len(levels) == 0 {
			return nil, fmt.Errorf("categorical predictor %q has no levels", p.Name)
		}

		term := Term{Predictor: p, Levels: levels}
		for _, lvl := range levels[1:] { // first level is the reference
			term.Cols = append(term.Cols, col)
			enc.names = append(enc.names, fmt.Sprintf("%s=%s", p.Name, lvl))
			col++
		}
		enc.terms = append(enc.terms, term)
	}
	return enc, nil
}

// Terms returns the encoder's terms in layout order.
func (e *Encoder) Terms() []Term {
	return e.terms
}

// Width returns the number of design-matrix columns (intercept
// excluded). This is also the term count a predictor set costs in the
// subset search.
func (e *Encoder) Width() int {
	return len(e.names)
}

// ColumnNames returns the design-matrix column names in order.
func (e *Encoder) ColumnNames() []string {
	return e.names
}

// Encode builds the design matrix for a frame on the frozen layout.
// The returned mask marks rows whose numeric predictors are finite;
// rows with NaN or infinite values are flagged for exclusion rather
// than silently averaged into downstream metrics. Unseen categorical
// levels are encoded as all zeros and stay valid.
func (e *Encoder) Encode(f Frame) (*mat.Dense, []bool, error) {
	n := f.Len()
	if n == 0 {
		return nil, nil, fmt.Errorf("cannot encode empty frame")
	}

	x := mat.NewDense(n, e.Width(), nil)
	valid := make([]bool, n)
	for i := range valid {
		valid[i] = true
	}

	for _, term := range e.terms {
		if term.Levels == nil {
			vals, err := f.Numeric(term.Predictor.Name)
			if err != nil {
				return nil, nil, err
			}
			for i, v := range vals {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					valid[i] = false
					v = 0
				}
				x.Set(i, term.Cols[0], v)
			}
			continue
		}

		colOf := make(map[string]int, len(term.Levels)-1)
		for j, lvl := range term.Levels[1:] {
			colOf[lvl] = term.Cols[j]
		}
		vals, err := f.Levels(term.Predictor.Name)
		if err != nil {
			return nil, nil, err
		}
		for i, lvl := range vals {
			if c, ok := colOf[lvl]; ok {
				x.Set(i, c, 1)
			}
			// Reference level and unseen levels both encode as zeros.
		}
	}
	return x, valid, nil
}

// SelectColumns returns a copy of x restricted to the given columns,
// preserving their order.
func SelectColumns(x *mat.Dense, cols []int) *mat.Dense {
	n, _ := x.Dims()
	out := mat.NewDense(n, len(cols), nil)
	for j, c := range cols {
		for i := 0; i < n; i++ {
			out.Set(i, j, x.At(i, c))
		}
	}
	return out
}

// SelectRows returns copies of x and y restricted to the rows where
// keep is true.
func SelectRows(x *mat.Dense, y []float64, keep []bool) (*mat.Dense, []float64) {
	n, p := x.Dims()
	var idx []int
	for i := 0; i < n; i++ {
		if keep[i] {
			idx = append(idx, i)
		}
	}
	out := mat.NewDense(len(idx), p, nil)
	yOut := make([]float64, len(idx))
	for r, i := range idx {
		for j := 0; j < p; j++ {
			out.Set(r, j, x.At(i, j))
		}
		yOut[r] = y[i]
	}
	return out, yOut
}

func distinctSorted(vals []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
