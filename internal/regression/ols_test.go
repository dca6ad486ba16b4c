package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// designOf builds an n x p dense matrix column by column.
func designOf(cols ...[]float64) *mat.Dense {
	n := len(cols[0])
	x := mat.NewDense(n, len(cols), nil)
	for j, col := range cols {
		for i, v := range col {
			x.Set(i, j, v)
		}
	}
	return x
}

func TestFitOLS(t *testing.T) {
	x1 := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	x2 := []float64{1, 4, 2, 1, 4, 2, 1, 4, 2, 1, 4, 2}

	t.Run("recovers exact coefficients", func(t *testing.T) {
		y := make([]float64, len(x1))
		for i := range y {
			y[i] = 1 + 2*x1[i] - 3*x2[i]
		}

		m, err := FitOLS(designOf(x1, x2), y, []string{"x1", "x2"})
		require.NoError(t, err)

		assert.Equal(t, []string{"(Intercept)", "x1", "x2"}, m.Names)
		assert.InDelta(t, 1.0, m.Coef[0], 1e-8)
		assert.InDelta(t, 2.0, m.Coef[1], 1e-8)
		assert.InDelta(t, -3.0, m.Coef[2], 1e-8)
		assert.InDelta(t, 1.0, m.R2, 1e-10)
		assert.Equal(t, 12, m.N)
		assert.Equal(t, 2, m.P)
	})

	t.Run("perfect collinearity fails with a fit error", func(t *testing.T) {
		x2dup := make([]float64, len(x1))
		for i, v := range x1 {
			x2dup[i] = 2 * v
		}
		y := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

		_, err := FitOLS(designOf(x1, x2dup), y, []string{"x1", "x2"})
		require.Error(t, err)
		var fe *FitError
		assert.ErrorAs(t, err, &fe)
	})

	t.Run("too few observations fail", func(t *testing.T) {
		_, err := FitOLS(designOf([]float64{1, 2, 3}, []float64{2, 1, 2}), []float64{1, 2, 3}, []string{"x1", "x2"})
		assert.Error(t, err)
	})

	t.Run("adjusted r2 penalizes model size", func(t *testing.T) {
		y := []float64{2.1, 3.9, 6.2, 7.8, 10.1, 12.2, 13.8, 16.1, 18.0, 20.2, 21.9, 24.1}

		small, err := FitOLS(designOf(x1), y, []string{"x1"})
		require.NoError(t, err)
		big, err := FitOLS(designOf(x1, x2), y, []string{"x1", "x2"})
		require.NoError(t, err)

		// More columns never lower raw R2.
		assert.GreaterOrEqual(t, big.R2, small.R2)
		// The adjustment must hold the fitted identity exactly.
		n, p := float64(big.N), float64(big.P)
		assert.InDelta(t, 1-(1-big.R2)*(n-1)/(n-p-1), big.AdjR2, 1e-12)
	})
}

func TestModelPredict(t *testing.T) {
	m := &Model{Coef: []float64{1, 2, -1}, P: 2}
	got := m.Predict(designOf([]float64{3, 0}, []float64{1, 5}))
	assert.Equal(t, []float64{6, -4}, got)
}

func TestInformationCriteria(t *testing.T) {
	x1 := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	y := []float64{1.2, 2.1, 2.8, 4.3, 5.1, 5.8, 7.2, 8.1, 8.7, 10.2}

	m, err := FitOLS(designOf(x1), y, []string{"x1"})
	require.NoError(t, err)

	// AIC and BIC share the log-likelihood and differ only in the
	// penalty weight; for n=10 the BIC weight ln(10) > 2.
	assert.Greater(t, m.BIC, m.AIC)
	assert.InDelta(t, m.BIC-m.AIC, 3*(2.302585092994046-2), 1e-9)
}
