// Package report scores the fitted models on the training and
// evaluation windows and renders the model comparison that is the
// final output of the analysis.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"taxicli/internal/regression"
	"taxicli/internal/trips"
)

// Fitted is any model that predicts on an encoded design matrix.
type Fitted interface {
	Predict(x *mat.Dense) []float64
}

// Entry is one candidate model submitted for evaluation, along with
// its in-sample statistics. Cols restricts the design matrix to the
// columns the model was trained on; nil means the full layout.
type Entry struct {
	Name   string
	Model  Fitted
	Cols   []int
	Terms  int
	AIC    float64 // NaN when no fixed-likelihood criterion applies (ridge)
	BIC    float64
	R2     float64
	AdjR2  float64
	Robust int // tie-break rank on equal MSPE; lower wins
}

// ModelReport is one row of the comparison table.
type ModelReport struct {
	Name     string  `json:"name"`
	Terms    int     `json:"terms"`
	AIC      float64 `json:"aic"`
	BIC      float64 `json:"bic"`
	R2       float64 `json:"r2"`
	AdjR2    float64 `json:"adj_r2"`
	MSPE     float64 `json:"mspe"`
	Excluded int     `json:"excluded"` // evaluation rows left out of MSPE
}

// Comparison is the full evaluation outcome: one row per model plus
// the final choice by out-of-window error.
type Comparison struct {
	RunID       string                  `json:"run_id"`
	GeneratedAt time.Time               `json:"generated_at"`
	Models      []ModelReport           `json:"models"`
	FinalModel  string                  `json:"final_model"`
	FinalMSPE   float64                 `json:"final_mspe"`
	Thresholds  trips.OutlierThresholds `json:"thresholds"`
	Quality     trips.QualityReport     `json:"quality"`
}

// Evaluate scores every entry on the evaluation window and selects the
// final model by lowest MSPE. Evaluation rows whose predictors cannot
// be encoded to finite values are excluded from MSPE and counted
// explicitly rather than averaged in.
func Evaluate(ctx context.Context, enc *regression.Encoder, entries []Entry, eval regression.Frame, target string, logger *slog.Logger) (*Comparison, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no models to evaluate")
	}

	y, err := eval.Numeric(target)
	if err != nil {
		return nil, err
	}
	x, valid, err := enc.Encode(eval)
	if err != nil {
		return nil, err
	}

	usable := 0
	for _, ok := range valid {
		if ok {
			usable++
		}
	}
	if usable == 0 {
		return nil, fmt.Errorf("no encodable rows in the evaluation window")
	}
	excluded := len(valid) - usable

	cmp := &Comparison{GeneratedAt: time.Now()}
	bestIdx := -1
	for i, entry := range entries {
		design := x
		if entry.Cols != nil {
			design = regression.SelectColumns(x, entry.Cols)
		}

		preds := entry.Model.Predict(design)
		var sse float64
		for r, ok := range valid {
			if !ok {
				continue
			}
			d := y[r] - preds[r]
			sse += d * d
		}
		mspe := sse / float64(usable)

		cmp.Models = append(cmp.Models, ModelReport{
			Name:     entry.Name,
			Terms:    entry.Terms,
			AIC:      entry.AIC,
			BIC:      entry.BIC,
			R2:       entry.R2,
			AdjR2:    entry.AdjR2,
			MSPE:     mspe,
			Excluded: excluded,
		})

		logger.InfoContext(ctx, "evaluated model",
			"model", entry.Name,
			"mspe", mspe,
			"excluded_rows", excluded,
		)

		if bestIdx < 0 {
			bestIdx = i
			continue
		}
		best := cmp.Models[bestIdx]
		switch {
		case mspe < best.MSPE:
			bestIdx = i
		case mspe == best.MSPE && entry.Robust < entries[bestIdx].Robust:
			// Equal out-of-window error: prefer the more robust model.
			bestIdx = i
		}
	}

	cmp.FinalModel = cmp.Models[bestIdx].Name
	cmp.FinalMSPE = cmp.Models[bestIdx].MSPE

	logger.InfoContext(ctx, "selected final model",
		"model", cmp.FinalModel,
		"mspe", cmp.FinalMSPE,
	)
	return cmp, nil
}

// number formats a metric value, rendering NaN as NA.
func number(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return fmt.Sprintf("%.4f", v)
}
