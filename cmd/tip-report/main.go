// Command tip-report runs the taxi tip analysis end to end: it loads
// the training and evaluation trip tables, cleans and feature-engineers
// them, selects a predictor subset, fits three regression variants, and
// prints a model comparison with the final out-of-window MSPE.
package main

import (
	"context"
	"flag"
	"log/slog"
	"math"
	"os"

	"github.com/google/uuid"

	"taxicli/internal/config"
	"taxicli/internal/dataset"
	"taxicli/internal/infrastructure"
	"taxicli/internal/regression"
	"taxicli/internal/report"
	"taxicli/internal/trips"
	"taxicli/internal/viz"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	trainPath := flag.String("train", "", "training-window trip table (.csv or .xlsx)")
	evalPath := flag.String("eval", "", "evaluation-window trip table (.csv or .xlsx)")
	zonesPath := flag.String("zones", "", "optional taxi zone lookup table")
	maxTerms := flag.Int("max-terms", 0, "override subset-search term cap")
	charts := flag.Bool("charts", false, "emit exploratory chart URLs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *trainPath != "" {
		cfg.Inputs.TrainingFile = *trainPath
	}
	if *evalPath != "" {
		cfg.Inputs.EvaluationFile = *evalPath
	}
	if *zonesPath != "" {
		cfg.Inputs.ZoneLookupFile = *zonesPath
	}
	if *maxTerms > 0 {
		cfg.Selection.MaxTerms = *maxTerms
	}
	if *charts {
		cfg.Charts = true
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)
	ctx := context.Background()

	// Load the tabular inputs.
	trainTbl, err := dataset.Load(cfg.Inputs.TrainingFile, logger)
	if err != nil {
		logger.Error("failed to load training window", "error", err)
		os.Exit(1)
	}
	evalTbl, err := dataset.Load(cfg.Inputs.EvaluationFile, logger)
	if err != nil {
		logger.Error("failed to load evaluation window", "error", err)
		os.Exit(1)
	}
	if cfg.Inputs.ZoneLookupFile != "" {
		zones, err := dataset.LoadZones(cfg.Inputs.ZoneLookupFile, logger)
		if err != nil {
			logger.Error("failed to load zone lookup", "error", err)
			os.Exit(1)
		}
		logger.Info("loaded zone lookup", "zones", len(zones))
	}

	// Clean both windows. Outlier thresholds come from the training
	// window only and are reused for the evaluation window.
	trainClean, err := trips.Clean(ctx, trainTbl, logger)
	if err != nil {
		logger.Error("cleaning training window failed", "error", err)
		os.Exit(1)
	}
	evalClean, err := trips.CleanWith(ctx, evalTbl, trainClean.Thresholds, logger)
	if err != nil {
		logger.Error("cleaning evaluation window failed", "error", err)
		os.Exit(1)
	}

	// Feature engineering, applied identically to both windows.
	trainFt, trainQuality, err := trips.Engineer(ctx, trainClean, logger)
	if err != nil {
		logger.Error("feature engineering failed for training window", "error", err)
		os.Exit(1)
	}
	evalFt, evalQuality, err := trips.Engineer(ctx, evalClean, logger)
	if err != nil {
		logger.Error("feature engineering failed for evaluation window", "error", err)
		os.Exit(1)
	}

	if cfg.Charts {
		if url, err := viz.TipByPaymentURL(trainFt); err == nil {
			logger.Info("exploratory chart", "chart", "tip_by_payment", "url", url)
		}
		if url, err := viz.TripsByHourURL(trainFt); err == nil {
			logger.Info("exploratory chart", "chart", "trips_by_hour", "url", url)
		}
	}

	// Predictor subset search on the training window.
	candidates := []regression.Predictor{
		{Name: trips.ColFareAmount},
		{Name: trips.ColTripDistance},
		{Name: "trip_duration"},
		{Name: trips.ColPassengerCount},
		{Name: "pickup_hour"},
		{Name: "is_night"},
		{Name: trips.ColPaymentType, Categorical: true},
		{Name: "day_of_week", Categorical: true},
	}
	subset, err := regression.BestSubset(ctx, trainFt, candidates, cfg.Selection.Target, cfg.Selection.MaxTerms, logger)
	if err != nil {
		logger.Error("subset selection failed", "error", err)
		os.Exit(1)
	}

	// Freeze the design-matrix layout on the selected predictors.
	enc, err := regression.NewEncoder(trainFt, subset.Predictors)
	if err != nil {
		logger.Error("building predictor encoder failed", "error", err)
		os.Exit(1)
	}
	y, err := trainFt.Numeric(cfg.Selection.Target)
	if err != nil {
		logger.Error("reading target column failed", "error", err)
		os.Exit(1)
	}
	x, valid, err := enc.Encode(trainFt)
	if err != nil {
		logger.Error("encoding training window failed", "error", err)
		os.Exit(1)
	}
	xv, yv := regression.SelectRows(x, y, valid)

	// Fit the three model variants on the training window.
	full, err := regression.FitOLS(xv, yv, enc.ColumnNames())
	if err != nil {
		logger.Error("OLS fit failed", "error", err)
		os.Exit(1)
	}
	reduced, err := regression.Backward(ctx, enc, xv, yv, logger)
	if err != nil {
		logger.Error("backward elimination failed", "error", err)
		os.Exit(1)
	}
	ridge, err := regression.FitRidgeCV(ctx, xv, yv, nil, cfg.Ridge.Folds, enc.ColumnNames(), logger)
	if err != nil {
		logger.Error("ridge fit failed", "error", err)
		os.Exit(1)
	}

	entries := []report.Entry{
		{
			Name: "full_ols", Model: full, Terms: enc.Width(),
			AIC: full.AIC, BIC: full.BIC, R2: full.R2, AdjR2: full.AdjR2,
			Robust: 2,
		},
		{
			Name: "reduced_ols", Model: reduced.Model, Cols: reduced.Cols, Terms: len(reduced.Cols),
			AIC: reduced.Model.AIC, BIC: reduced.Model.BIC, R2: reduced.Model.R2, AdjR2: reduced.Model.AdjR2,
			Robust: 1,
		},
		{
			Name: "ridge", Model: ridge, Terms: enc.Width(),
			AIC: math.NaN(), BIC: math.NaN(), R2: ridge.R2,
			AdjR2:  adjustedR2(ridge.R2, len(yv), enc.Width()),
			Robust: 0, // ridge wins MSPE ties: most robust to collinearity
		},
	}

	cmp, err := report.Evaluate(ctx, enc, entries, evalFt, cfg.Selection.Target, logger)
	if err != nil {
		logger.Error("model evaluation failed", "error", err)
		os.Exit(1)
	}
	cmp.RunID = runID
	cmp.Thresholds = trainClean.Thresholds
	cmp.Quality = *trainQuality
	cmp.Quality.Merge(*evalQuality)

	if err := report.WriteComparison(os.Stdout, cmp); err != nil {
		logger.Error("writing report failed", "error", err)
		os.Exit(1)
	}
}

// adjustedR2 penalizes R² for model size: 1-(1-R²)(n-1)/(n-p-1).
func adjustedR2(r2 float64, n, p int) float64 {
	df := float64(n - p - 1)
	if df <= 0 {
		return math.NaN()
	}
	return 1 - (1-r2)*float64(n-1)/df
}
