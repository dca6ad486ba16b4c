package trips

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"taxicli/internal/dataset"
)

// Percentile bounds for the outlier trim. Thresholds are computed on
// the filtered training window; only the upper bound is enforced.
const (
	LowerPercentile = 0.01
	UpperPercentile = 0.99
)

// CleanResult is the output of the cleaning stage for one window.
type CleanResult struct {
	Trips      []Trip
	Thresholds OutlierThresholds
	Quality    QualityReport
}

// Clean runs the full cleaning pass on the training window: drop the
// surcharge columns when present, filter invalid rows, compute the
// p1/p99 thresholds on the filtered rows, and remove rows above any
// p99. The returned thresholds are the training-window constants used
// to trim every other window.
func Clean(ctx context.Context, tbl *dataset.Table, logger *slog.Logger) (*CleanResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	filtered, quality, err := filterRows(tbl, logger)
	if err != nil {
		return nil, err
	}

	thresholds := computeThresholds(filtered)
	kept := trimOutliers(filtered, thresholds, &quality)

	logger.InfoContext(ctx, "cleaned training window",
		"rows_read", quality.RowsRead,
		"rows_kept", len(kept),
		"trimmed", quality.OutlierTrimmed,
		"tip_p99", thresholds.TipP99,
		"fare_p99", thresholds.FareP99,
		"distance_p99", thresholds.DistanceP99,
	)

	return &CleanResult{Trips: kept, Thresholds: thresholds, Quality: quality}, nil
}

// CleanWith cleans a window using thresholds already derived from the
// training window. Percentiles are not recomputed here.
func CleanWith(ctx context.Context, tbl *dataset.Table, thresholds OutlierThresholds, logger *slog.Logger) (*CleanResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	filtered, quality, err := filterRows(tbl, logger)
	if err != nil {
		return nil, err
	}

	kept := trimOutliers(filtered, thresholds, &quality)

	logger.InfoContext(ctx, "cleaned window with fixed thresholds",
		"rows_read", quality.RowsRead,
		"rows_kept", len(kept),
		"trimmed", quality.OutlierTrimmed,
	)

	return &CleanResult{Trips: kept, Thresholds: thresholds, Quality: quality}, nil
}

// filterRows drops the surcharge columns, validates the schema, parses
// rows into Trips, and applies the row-level validity filter.
func filterRows(tbl *dataset.Table, logger *slog.Logger) ([]Trip, QualityReport, error) {
	var quality QualityReport

	tbl = tbl.Drop(DroppedColumns...)

	required := []string{
		ColPickupTime, ColDropoffTime, ColPassengerCount,
		ColTripDistance, ColPaymentType, ColFareAmount, ColTipAmount,
	}
	cols := make(map[string]int, len(required))
	for _, name := range required {
		i, ok := tbl.Col(name)
		if !ok {
			return nil, quality, &SchemaError{Column: name, Reason: "required column is missing"}
		}
		cols[name] = i
	}

	kept := make([]Trip, 0, tbl.Len())
	for r := 0; r < tbl.Len(); r++ {
		quality.RowsRead++

		tipCell := strings.TrimSpace(tbl.Cell(r, cols[ColTipAmount]))
		if tipCell == "" {
			quality.MissingTip++
			continue
		}

		trip, err := parseTrip(tbl, r, cols)
		if err != nil {
			return nil, quality, err
		}

		if trip.FareAmount <= 0 {
			quality.NonPositiveFare++
			continue
		}
		if trip.TripDistance <= 0 {
			quality.NonPositiveDistance++
			continue
		}
		kept = append(kept, trip)
	}

	logger.Debug("filtered rows",
		"rows_read", quality.RowsRead,
		"missing_tip", quality.MissingTip,
		"non_positive_fare", quality.NonPositiveFare,
		"non_positive_distance", quality.NonPositiveDistance,
	)
	return kept, quality, nil
}

// parseTrip converts one table row to a Trip. A non-empty cell that
// fails conversion is a SchemaError naming the column and row.
func parseTrip(tbl *dataset.Table, row int, cols map[string]int) (Trip, error) {
	var trip Trip

	pickup, err := parseTime(tbl.Cell(row, cols[ColPickupTime]))
	if err != nil {
		return trip, &SchemaError{Column: ColPickupTime, Row: row + 1, Reason: err.Error()}
	}
	dropoff, err := parseTime(tbl.Cell(row, cols[ColDropoffTime]))
	if err != nil {
		return trip, &SchemaError{Column: ColDropoffTime, Row: row + 1, Reason: err.Error()}
	}

	fare, err := parseFloat(tbl.Cell(row, cols[ColFareAmount]))
	if err != nil {
		return trip, &SchemaError{Column: ColFareAmount, Row: row + 1, Reason: err.Error()}
	}
	distance, err := parseFloat(tbl.Cell(row, cols[ColTripDistance]))
	if err != nil {
		return trip, &SchemaError{Column: ColTripDistance, Row: row + 1, Reason: err.Error()}
	}
	tip, err := parseFloat(tbl.Cell(row, cols[ColTipAmount]))
	if err != nil {
		return trip, &SchemaError{Column: ColTipAmount, Row: row + 1, Reason: err.Error()}
	}

	passengers, err := parseInt(tbl.Cell(row, cols[ColPassengerCount]))
	if err != nil {
		return trip, &SchemaError{Column: ColPassengerCount, Row: row + 1, Reason: err.Error()}
	}
	payment, err := parseInt(tbl.Cell(row, cols[ColPaymentType]))
	if err != nil {
		return trip, &SchemaError{Column: ColPaymentType, Row: row + 1, Reason: err.Error()}
	}

	trip = Trip{
		PickupTime:     pickup,
		DropoffTime:    dropoff,
		PassengerCount: passengers,
		TripDistance:   distance,
		PaymentType:    payment,
		FareAmount:     fare,
		TipAmount:      tip,
	}
	return trip, nil
}

// computeThresholds derives the percentile cut points from the rows
// that survived the validity filter. Threshold order matters: this runs
// after the row filter and before the outlier trim.
func computeThresholds(filtered []Trip) OutlierThresholds {
	tips := make([]float64, len(filtered))
	fares := make([]float64, len(filtered))
	distances := make([]float64, len(filtered))
	for i, t := range filtered {
		tips[i] = t.TipAmount
		fares[i] = t.FareAmount
		distances[i] = t.TripDistance
	}

	tipLo, tipHi := percentiles(tips, LowerPercentile, UpperPercentile)
	fareLo, fareHi := percentiles(fares, LowerPercentile, UpperPercentile)
	distLo, distHi := percentiles(distances, LowerPercentile, UpperPercentile)

	return OutlierThresholds{
		TipP1: tipLo, TipP99: tipHi,
		FareP1: fareLo, FareP99: fareHi,
		DistanceP1: distLo, DistanceP99: distHi,
	}
}

// trimOutliers enforces the upper thresholds only. Rows below the lower
// percentile are kept on purpose.
func trimOutliers(filtered []Trip, thresholds OutlierThresholds, quality *QualityReport) []Trip {
	kept := make([]Trip, 0, len(filtered))
	for _, t := range filtered {
		if thresholds.Within(t) {
			kept = append(kept, t)
		} else {
			quality.OutlierTrimmed++
		}
	}
	return kept
}

// percentiles returns the values at the lower and upper quantiles using
// linear interpolation of the empirical distribution.
func percentiles(values []float64, lower, upper float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	lo := stat.Quantile(lower, stat.LinInterp, sorted, nil)
	hi := stat.Quantile(upper, stat.LinInterp, sorted, nil)
	return lo, hi
}

func parseTime(cell string) (time.Time, error) {
	return time.Parse(TimestampLayout, strings.TrimSpace(cell))
}

// parseFloat treats an empty cell as missing (zero), which the >0
// validity filter then rejects. Non-empty garbage is a schema problem.
func parseFloat(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, nil
	}
	return strconv.ParseFloat(cell, 64)
}

func parseInt(cell string) (int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, nil
	}
	return strconv.Atoi(cell)
}
