package report

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxicli/internal/dataset"
	"taxicli/internal/regression"
	"taxicli/internal/trips"
)

const noiseSigma = 0.5

// syntheticTrips builds a raw trip table where tip = 0.2*fare + noise,
// the relationship the fitted models should recover.
func syntheticTrips(n int, rng *rand.Rand) *dataset.Table {
	cols := []string{
		trips.ColPickupTime, trips.ColDropoffTime, trips.ColPassengerCount,
		trips.ColTripDistance, trips.ColPaymentType, trips.ColFareAmount, trips.ColTipAmount,
	}
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		fare := 5 + 45*rng.Float64()
		tip := 0.2*fare + noiseSigma*rng.NormFloat64()
		pickup := time.Date(2024, 3, 1+i%28, i%24, 15, 0, 0, time.UTC)
		dropoff := pickup.Add(time.Duration(10+i%20) * time.Minute)
		rows = append(rows, []string{
			pickup.Format(trips.TimestampLayout),
			dropoff.Format(trips.TimestampLayout),
			fmt.Sprintf("%d", 1+i%3),
			fmt.Sprintf("%.2f", fare/10),
			fmt.Sprintf("%d", 1+i%4),
			fmt.Sprintf("%.2f", fare),
			fmt.Sprintf("%.2f", tip),
		})
	}
	return dataset.NewTable(cols, rows)
}

func TestPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	trainTbl := syntheticTrips(100, rng)
	evalTbl := syntheticTrips(50, rng)

	trainClean, err := trips.Clean(ctx, trainTbl, nil)
	require.NoError(t, err)
	evalClean, err := trips.CleanWith(ctx, evalTbl, trainClean.Thresholds, nil)
	require.NoError(t, err)

	trainFt, _, err := trips.Engineer(ctx, trainClean, nil)
	require.NoError(t, err)
	evalFt, _, err := trips.Engineer(ctx, evalClean, nil)
	require.NoError(t, err)
	require.Greater(t, trainFt.Len(), 90)
	require.Greater(t, evalFt.Len(), 40)

	enc, err := regression.NewEncoder(trainFt, []regression.Predictor{{Name: trips.ColFareAmount}})
	require.NoError(t, err)
	y, err := trainFt.Numeric(trips.ColTipAmount)
	require.NoError(t, err)
	x, valid, err := enc.Encode(trainFt)
	require.NoError(t, err)
	xv, yv := regression.SelectRows(x, y, valid)

	ols, err := regression.FitOLS(xv, yv, enc.ColumnNames())
	require.NoError(t, err)
	ridge, err := regression.FitRidgeCV(ctx, xv, yv, nil, 10, enc.ColumnNames(), nil)
	require.NoError(t, err)

	// Both fits should land near the generating slope of 0.2.
	assert.InDelta(t, 0.2, ols.Coef[1], 0.05)
	assert.InDelta(t, 0.2, ridge.Coef[0], 0.05)

	entries := []Entry{
		{Name: "full_ols", Model: ols, Terms: 1, AIC: ols.AIC, BIC: ols.BIC, R2: ols.R2, AdjR2: ols.AdjR2, Robust: 2},
		{Name: "ridge", Model: ridge, Terms: 1, AIC: math.NaN(), BIC: math.NaN(), R2: ridge.R2, Robust: 0},
	}
	cmp, err := Evaluate(ctx, enc, entries, evalFt, trips.ColTipAmount, nil)
	require.NoError(t, err)

	// Out-of-window MSPE should approximate the noise variance. The
	// bounds are deliberately loose for a 50-row window.
	sigma2 := noiseSigma * noiseSigma
	for _, m := range cmp.Models {
		assert.Greater(t, m.MSPE, sigma2/5, "model %s", m.Name)
		assert.Less(t, m.MSPE, sigma2*3, "model %s", m.Name)
		assert.Equal(t, 0, m.Excluded)
	}
	assert.NotEmpty(t, cmp.FinalModel)
	assert.Equal(t, cmp.FinalMSPE, minMSPE(cmp.Models))
}

func minMSPE(models []ModelReport) float64 {
	min := models[0].MSPE
	for _, m := range models[1:] {
		if m.MSPE < min {
			min = m.MSPE
		}
	}
	return min
}
