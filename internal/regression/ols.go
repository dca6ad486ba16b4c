package regression

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Model is a fitted least-squares model over a fixed design-matrix
// layout. Coef[0] is the intercept; Coef[j+1] pairs with design
// column j.
type Model struct {
	Names  []string  `json:"names"` // Names[0] is "(Intercept)"
	Coef   []float64 `json:"coef"`
	StdErr []float64 `json:"std_err"`

	N int `json:"n"` // observations
	P int `json:"p"` // predictor columns, intercept excluded

	RSS    float64 `json:"rss"`
	TSS    float64 `json:"tss"`
	Sigma2 float64 `json:"sigma2"`
	R2     float64 `json:"r2"`
	AdjR2  float64 `json:"adj_r2"`
	LogLik float64 `json:"log_lik"`
	AIC    float64 `json:"aic"`
	BIC    float64 `json:"bic"`
}

// FitOLS fits y on x with an intercept by solving the normal equations
// through a Cholesky factorization. A factorization failure means the
// design is rank deficient (perfect collinearity) and surfaces as a
// FitError; the ridge path remains fittable in that situation.
func FitOLS(x *mat.Dense, y []float64, names []string) (*Model, error) {
	n, p := x.Dims()
	if n != len(y) {
		return nil, &FitError{Reason: "design matrix and response length differ"}
	}
	if n-p-1 <= 0 {
		return nil, &FitError{Reason: "not enough observations for the requested predictors"}
	}

	// Augment with the intercept column.
	x1 := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		x1.Set(i, 0, 1)
		for j := 0; j < p; j++ {
			x1.Set(i, j+1, x.At(i, j))
		}
	}

	var xtx mat.Dense
	xtx.Mul(x1.T(), x1)
	sym := denseToSym(&xtx)

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, &FitError{Reason: "design matrix is rank deficient (perfect collinearity)"}
	}

	yVec := mat.NewVecDense(n, y)
	xty := mat.NewVecDense(p+1, nil)
	xty.MulVec(x1.T(), yVec)

	beta := mat.NewVecDense(p+1, nil)
	if err := chol.SolveVecTo(beta, xty); err != nil {
		return nil, &FitError{Reason: "solving normal equations: " + err.Error()}
	}

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, &FitError{Reason: "inverting normal equations: " + err.Error()}
	}

	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(x1, beta)

	var rss, tss float64
	mean := meanOf(y)
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		rss += r * r
		d := y[i] - mean
		tss += d * d
	}

	df := float64(n - p - 1)
	sigma2 := rss / df

	m := &Model{
		Names:  append([]string{"(Intercept)"}, names...),
		Coef:   make([]float64, p+1),
		StdErr: make([]float64, p+1),
		N:      n,
		P:      p,
		RSS:    rss,
		TSS:    tss,
		Sigma2: sigma2,
	}
	for j := 0; j <= p; j++ {
		m.Coef[j] = beta.AtVec(j)
		m.StdErr[j] = math.Sqrt(sigma2 * inv.At(j, j))
	}

	if tss > 0 {
		m.R2 = 1 - rss/tss
	}
	m.AdjR2 = 1 - (1-m.R2)*float64(n-1)/df

	// Gaussian log-likelihood at the MLE variance RSS/n; the parameter
	// count for AIC/BIC includes the intercept and the error variance.
	nf := float64(n)
	m.LogLik = -0.5 * nf * (math.Log(2*math.Pi) + math.Log(rss/nf) + 1)
	k := float64(p + 2)
	m.AIC = -2*m.LogLik + 2*k
	m.BIC = -2*m.LogLik + k*math.Log(nf)

	return m, nil
}

// Predict returns fitted values for rows of x, which must use the same
// column layout the model was trained on.
func (m *Model) Predict(x *mat.Dense) []float64 {
	n, p := x.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v := m.Coef[0]
		for j := 0; j < p && j < m.P; j++ {
			v += m.Coef[j+1] * x.At(i, j)
		}
		out[i] = v
	}
	return out
}

// fitInterceptOnly fits the null model: a single mean with no
// predictor columns. Backward elimination can land here when every
// term hurts AIC.
func fitInterceptOnly(y []float64) (*Model, error) {
	n := len(y)
	if n < 2 {
		return nil, &FitError{Reason: "not enough observations for the intercept-only model"}
	}

	mean := meanOf(y)
	var rss float64
	for _, v := range y {
		d := v - mean
		rss += d * d
	}

	nf := float64(n)
	m := &Model{
		Names:  []string{"(Intercept)"},
		Coef:   []float64{mean},
		StdErr: []float64{math.Sqrt(rss / (nf - 1) / nf)},
		N:      n,
		RSS:    rss,
		TSS:    rss,
		Sigma2: rss / (nf - 1),
		LogLik: -0.5 * nf * (math.Log(2*math.Pi) + math.Log(rss/nf) + 1),
	}
	m.AIC = -2*m.LogLik + 2*2
	m.BIC = -2*m.LogLik + 2*math.Log(nf)
	return m, nil
}

func denseToSym(d *mat.Dense) *mat.SymDense {
	n, _ := d.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, d.At(i, j))
		}
	}
	return sym
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
