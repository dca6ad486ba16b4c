package regression

import (
	"context"
	"log/slog"

	"gonum.org/v1/gonum/mat"
)

// BackwardResult is the outcome of backward stepwise elimination.
type BackwardResult struct {
	Model *Model
	Cols  []int    // surviving design-matrix columns, in layout order
	Terms []string // surviving term names (predictor level, not column)
}

// Backward reduces a full OLS model by repeatedly removing the single
// term whose removal lowers AIC the most, stopping when no removal
// improves AIC. Categorical terms leave as whole indicator blocks.
// The result is a local optimum under single-term removal, not a
// global search.
func Backward(ctx context.Context, enc *Encoder, x *mat.Dense, y []float64, logger *slog.Logger) (*BackwardResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	terms := enc.Terms()
	active := make([]int, len(terms))
	for i := range terms {
		active[i] = i
	}

	current, err := fitTermSubset(enc, x, y, active)
	if err != nil {
		return nil, err
	}

	for len(active) > 0 {
		bestAIC := current.AIC
		bestDrop := -1
		var bestModel *Model

		for i := range active {
			candidate := append(append([]int{}, active[:i]...), active[i+1:]...)
			m, err := fitTermSubset(enc, x, y, candidate)
			if err != nil {
				continue // a reduced design can only get better conditioned, but be safe
			}
			if m.AIC < bestAIC {
				bestAIC = m.AIC
				bestDrop = i
				bestModel = m
			}
		}

		if bestDrop < 0 {
			break
		}

		logger.DebugContext(ctx, "dropped term",
			"term", terms[active[bestDrop]].Predictor.Name,
			"aic_before", current.AIC,
			"aic_after", bestAIC,
		)
		active = append(active[:bestDrop], active[bestDrop+1:]...)
		current = bestModel
	}

	res := &BackwardResult{Model: current}
	for _, ti := range active {
		res.Cols = append(res.Cols, terms[ti].Cols...)
		res.Terms = append(res.Terms, terms[ti].Predictor.Name)
	}

	logger.InfoContext(ctx, "backward elimination finished",
		"terms_kept", len(active),
		"terms_dropped", len(terms)-len(active),
		"aic", current.AIC,
	)
	return res, nil
}

// fitTermSubset fits OLS on the design columns owned by the given
// term indices.
func fitTermSubset(enc *Encoder, x *mat.Dense, y []float64, termIdx []int) (*Model, error) {
	terms := enc.Terms()
	names := enc.ColumnNames()

	var cols []int
	for _, ti := range termIdx {
		cols = append(cols, terms[ti].Cols...)
	}

	if len(cols) == 0 {
		return fitInterceptOnly(y)
	}

	sub := SelectColumns(x, cols)
	subNames := make([]string, len(cols))
	for j, c := range cols {
		subNames[j] = names[c]
	}
	return FitOLS(sub, y, subNames)
}
