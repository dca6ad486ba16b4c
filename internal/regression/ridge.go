package regression

import (
	"context"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Default cross-validation settings for the penalty search.
const (
	DefaultCVFolds      = 10
	DefaultLambdaCount  = 31
	defaultLambdaMinExp = -3 // grid spans 10^-3 .. 10^2
	defaultLambdaMaxExp = 2
)

// CVPoint is one evaluated penalty on the cross-validation curve.
type CVPoint struct {
	Lambda float64 `json:"lambda"`
	MSE    float64 `json:"mse"` // mean cross-validated squared error
}

// RidgeModel is an L2-penalized least-squares fit. The intercept is
// not penalized: predictors are centered, the slope system is solved
// with the penalty, and the intercept is recovered from the means.
type RidgeModel struct {
	Names     []string  `json:"names"`
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"` // aligned with design columns
	Lambda    float64   `json:"lambda"`
	R2        float64   `json:"r2"` // in-sample, after the final refit
	CVCurve   []CVPoint `json:"cv_curve,omitempty"`
}

// DefaultLambdas returns the logarithmic penalty grid searched by
// FitRidgeCV when the caller does not supply one.
func DefaultLambdas() []float64 {
	lambdas := make([]float64, DefaultLambdaCount)
	span := float64(defaultLambdaMaxExp - defaultLambdaMinExp)
	for i := range lambdas {
		exp := float64(defaultLambdaMinExp) + span*float64(i)/float64(DefaultLambdaCount-1)
		lambdas[i] = math.Pow(10, exp)
	}
	return lambdas
}

// FitRidge fits y on x with penalty lambda. Lambda zero is allowed and
// reproduces OLS coefficients on a well-conditioned design.
func FitRidge(x *mat.Dense, y []float64, lambda float64, names []string) (*RidgeModel, error) {
	n, p := x.Dims()
	if n != len(y) {
		return nil, &FitError{Reason: "design matrix and response length differ"}
	}
	if n < 2 {
		return nil, &FitError{Reason: "not enough observations for ridge"}
	}

	// Center columns and response so the intercept escapes the penalty.
	colMeans := make([]float64, p)
	for j := 0; j < p; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += x.At(i, j)
		}
		colMeans[j] = sum / float64(n)
	}
	yMean := meanOf(y)

	xc := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			xc.Set(i, j, x.At(i, j)-colMeans[j])
		}
	}
	yc := make([]float64, n)
	for i := range y {
		yc[i] = y[i] - yMean
	}

	var xtx mat.Dense
	xtx.Mul(xc.T(), xc)
	sym := denseToSym(&xtx)
	for j := 0; j < p; j++ {
		sym.SetSym(j, j, sym.At(j, j)+lambda)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, &FitError{Reason: "penalized normal equations not positive definite"}
	}

	xty := mat.NewVecDense(p, nil)
	xty.MulVec(xc.T(), mat.NewVecDense(n, yc))
	beta := mat.NewVecDense(p, nil)
	if err := chol.SolveVecTo(beta, xty); err != nil {
		return nil, &FitError{Reason: "solving penalized system: " + err.Error()}
	}

	m := &RidgeModel{
		Names:  names,
		Coef:   make([]float64, p),
		Lambda: lambda,
	}
	intercept := yMean
	for j := 0; j < p; j++ {
		m.Coef[j] = beta.AtVec(j)
		intercept -= colMeans[j] * m.Coef[j]
	}
	m.Intercept = intercept

	var rss, tss float64
	for i, v := range m.Predict(x) {
		r := y[i] - v
		rss += r * r
		d := y[i] - yMean
		tss += d * d
	}
	if tss > 0 {
		m.R2 = 1 - rss/tss
	}
	return m, nil
}

// Predict returns fitted values for rows of x on the training layout.
func (m *RidgeModel) Predict(x *mat.Dense) []float64 {
	n, p := x.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v := m.Intercept
		for j := 0; j < p && j < len(m.Coef); j++ {
			v += m.Coef[j] * x.At(i, j)
		}
		out[i] = v
	}
	return out
}

// FitRidgeCV selects lambda by k-fold cross-validation on the training
// window, minimizing mean cross-validated squared error, then refits
// once on the full window at the chosen lambda. Folds are contiguous
// and deterministic; penalties are evaluated concurrently but combined
// by a deterministic minimum, so the result matches a sequential run.
func FitRidgeCV(ctx context.Context, x *mat.Dense, y []float64, lambdas []float64, folds int, names []string, logger *slog.Logger) (*RidgeModel, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(lambdas) == 0 {
		lambdas = DefaultLambdas()
	}
	n, _ := x.Dims()
	if folds < 2 {
		return nil, &FitError{Reason: "cross-validation needs at least 2 folds"}
	}
	if folds > n {
		folds = n
	}

	cvErr := make([]float64, len(lambdas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for li, lambda := range lambdas {
		li, lambda := li, lambda
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			mse, err := crossValidate(x, y, lambda, folds, names)
			if err != nil {
				return err
			}
			cvErr[li] = mse
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := 0
	for i := 1; i < len(lambdas); i++ {
		if cvErr[i] < cvErr[best] {
			best = i
		}
	}

	logger.InfoContext(ctx, "selected ridge penalty",
		"lambda", lambdas[best],
		"cv_mse", cvErr[best],
		"folds", folds,
		"grid_size", len(lambdas),
	)

	model, err := FitRidge(x, y, lambdas[best], names)
	if err != nil {
		return nil, err
	}
	model.CVCurve = make([]CVPoint, len(lambdas))
	for i := range lambdas {
		model.CVCurve[i] = CVPoint{Lambda: lambdas[i], MSE: cvErr[i]}
	}
	return model, nil
}

// crossValidate computes the mean squared prediction error of lambda
// over contiguous k folds.
func crossValidate(x *mat.Dense, y []float64, lambda float64, folds int, names []string) (float64, error) {
	n, _ := x.Dims()
	var total float64
	for f := 0; f < folds; f++ {
		lo := f * n / folds
		hi := (f + 1) * n / folds
		if lo == hi {
			continue
		}

		train := make([]bool, n)
		for i := 0; i < n; i++ {
			train[i] = i < lo || i >= hi
		}
		xTrain, yTrain := SelectRows(x, y, train)

		m, err := FitRidge(xTrain, yTrain, lambda, names)
		if err != nil {
			return 0, err
		}

		test := make([]bool, n)
		for i := lo; i < hi; i++ {
			test[i] = true
		}
		xTest, yTest := SelectRows(x, y, test)
		for i, pred := range m.Predict(xTest) {
			r := yTest[i] - pred
			total += r * r
		}
	}
	return total / float64(n), nil
}
