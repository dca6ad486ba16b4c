package regression

import (
	"context"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// SizeBest records the best-scoring predictor combination found at one
// expanded-term count.
type SizeBest struct {
	Terms      int      `json:"terms"`
	Predictors []string `json:"predictors"`
	AdjR2      float64  `json:"adj_r2"`
}

// SubsetResult is the outcome of the exhaustive subset search.
type SubsetResult struct {
	Predictors []Predictor `json:"predictors"`
	Terms      int         `json:"terms"`
	AdjR2      float64     `json:"adj_r2"`
	BySize     []SizeBest  `json:"by_size"`
	Searched   int         `json:"searched"`
}

// BestSubset searches every combination of the candidate predictors
// whose expanded design costs at most maxTerms columns, scoring each
// combination's OLS fit by adjusted R². Categorical candidates count
// one term per non-reference level. The best combination per size is
// kept, then compared across sizes; ties go to the smaller model.
func BestSubset(ctx context.Context, train Frame, candidates []Predictor, target string, maxTerms int, logger *slog.Logger) (*SubsetResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	y, err := train.Numeric(target)
	if err != nil {
		return nil, err
	}

	const tie = 1e-12
	result := &SubsetResult{AdjR2: math.Inf(-1)}
	bestBySize := make(map[int]SizeBest)

	for k := 1; k <= len(candidates); k++ {
		for _, combo := range combin.Combinations(len(candidates), k) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			subset := make([]Predictor, k)
			for i, ci := range combo {
				subset[i] = candidates[ci]
			}

			enc, err := NewEncoder(train, subset)
			if err != nil {
				return nil, err
			}
			terms := enc.Width()
			if terms == 0 || terms > maxTerms {
				continue
			}

			x, valid, err := enc.Encode(train)
			if err != nil {
				return nil, err
			}
			xv, yv := SelectRows(x, y, valid)

			model, err := FitOLS(xv, yv, enc.ColumnNames())
			if err != nil {
				// Collinear combinations (a numeric and its own binning,
				// say) are skipped, not fatal.
				logger.DebugContext(ctx, "skipping degenerate subset",
					"predictors", names(subset), "error", err)
				continue
			}
			result.Searched++

			if sb, ok := bestBySize[terms]; !ok || model.AdjR2 > sb.AdjR2 {
				bestBySize[terms] = SizeBest{Terms: terms, Predictors: names(subset), AdjR2: model.AdjR2}
			}

			better := model.AdjR2 > result.AdjR2+tie
			tied := !better && model.AdjR2 > result.AdjR2-tie
			if better || (tied && terms < result.Terms) {
				result.Predictors = subset
				result.Terms = terms
				result.AdjR2 = model.AdjR2
			}
		}
	}

	if result.Searched == 0 {
		return nil, &FitError{Reason: "no predictor subset produced a fittable model"}
	}

	for terms := 1; terms <= maxTerms; terms++ {
		if sb, ok := bestBySize[terms]; ok {
			result.BySize = append(result.BySize, sb)
		}
	}

	logger.InfoContext(ctx, "subset search finished",
		"searched", result.Searched,
		"chosen", names(result.Predictors),
		"terms", result.Terms,
		"adj_r2", result.AdjR2,
	)
	return result, nil
}

func names(ps []Predictor) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}
