package regression

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitRidge(t *testing.T) {
	x1 := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	x2 := []float64{1, 4, 2, 1, 4, 2, 1, 4, 2, 1, 4, 2}
	y := []float64{3.1, 1.9, 7.2, 9.8, 8.1, 13.9, 15.2, 13.8, 20.1, 21.0, 19.2, 25.8}

	t.Run("zero penalty reproduces OLS", func(t *testing.T) {
		ols, err := FitOLS(designOf(x1, x2), y, []string{"x1", "x2"})
		require.NoError(t, err)

		ridge, err := FitRidge(designOf(x1, x2), y, 0, []string{"x1", "x2"})
		require.NoError(t, err)

		assert.InDelta(t, ols.Coef[0], ridge.Intercept, 1e-8)
		assert.InDelta(t, ols.Coef[1], ridge.Coef[0], 1e-8)
		assert.InDelta(t, ols.Coef[2], ridge.Coef[1], 1e-8)
		assert.InDelta(t, ols.R2, ridge.R2, 1e-8)
	})

	t.Run("penalty shrinks slopes toward zero", func(t *testing.T) {
		small, err := FitRidge(designOf(x1, x2), y, 0.001, []string{"x1", "x2"})
		require.NoError(t, err)
		large, err := FitRidge(designOf(x1, x2), y, 1e6, []string{"x1", "x2"})
		require.NoError(t, err)

		for j := range small.Coef {
			assert.Less(t, math.Abs(large.Coef[j]), math.Abs(small.Coef[j]))
		}
		// With slopes gone the fit collapses onto the response mean.
		yMean := meanOf(y)
		assert.InDelta(t, yMean, large.Intercept, math.Abs(yMean)*0.01)
	})

	t.Run("fits a collinear design OLS cannot", func(t *testing.T) {
		x2dup := make([]float64, len(x1))
		for i, v := range x1 {
			x2dup[i] = 2 * v
		}

		_, err := FitOLS(designOf(x1, x2dup), y, []string{"x1", "x2"})
		require.Error(t, err)

		m, err := FitRidge(designOf(x1, x2dup), y, 1.0, []string{"x1", "x2"})
		require.NoError(t, err)
		assert.Len(t, m.Coef, 2)
	})
}

func TestDefaultLambdas(t *testing.T) {
	lambdas := DefaultLambdas()
	require.Len(t, lambdas, DefaultLambdaCount)
	assert.InDelta(t, 1e-3, lambdas[0], 1e-12)
	assert.InDelta(t, 1e2, lambdas[len(lambdas)-1], 1e-9)
	for i := 1; i < len(lambdas); i++ {
		assert.Greater(t, lambdas[i], lambdas[i-1])
	}
}

func TestFitRidgeCV(t *testing.T) {
	// Strong linear signal with small deterministic wobble: the lightest
	// penalty on the grid must win cross-validation.
	n := 40
	x1 := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x1[i] = float64(i + 1)
		y[i] = 2 + 3*x1[i] + 0.1*math.Sin(float64(i))
	}
	x := designOf(x1)
	lambdas := []float64{0.01, 1, 1000}

	model, err := FitRidgeCV(context.Background(), x, y, lambdas, 5, []string{"x1"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.01, model.Lambda)
	require.Len(t, model.CVCurve, len(lambdas))
	assert.Equal(t, 0.01, model.CVCurve[0].Lambda)
	assert.Less(t, model.CVCurve[0].MSE, model.CVCurve[2].MSE)
	assert.InDelta(t, 3.0, model.Coef[0], 0.01)

	t.Run("result is deterministic across runs", func(t *testing.T) {
		again, err := FitRidgeCV(context.Background(), x, y, lambdas, 5, []string{"x1"}, nil)
		require.NoError(t, err)
		assert.Equal(t, model.Lambda, again.Lambda)
		assert.Equal(t, model.Coef, again.Coef)
		assert.Equal(t, model.CVCurve, again.CVCurve)
	})

	t.Run("rejects fewer than two folds", func(t *testing.T) {
		_, err := FitRidgeCV(context.Background(), x, y, lambdas, 1, []string{"x1"}, nil)
		assert.Error(t, err)
	})
}
