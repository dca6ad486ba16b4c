package trips

import (
	"context"
	"fmt"
	"log/slog"
)

// Bin labels for trip distance (miles). Intervals are right-closed:
// the boundary value falls in the lower bin.
const (
	DistanceShort    = "Short"    // (0, 2]
	DistanceMedium   = "Medium"   // (2, 5]
	DistanceLong     = "Long"     // (5, 10]
	DistanceVeryLong = "VeryLong" // (10, inf)
)

// Bin labels for fare amount. Same right-closed convention.
const (
	FareLow      = "Low"      // (0, 10]
	FareMedium   = "Medium"   // (10, 20]
	FareHigh     = "High"     // (20, 30]
	FareVeryHigh = "VeryHigh" // (30, inf)
)

// FeatureTable is the feature-augmented view of one window. It is
// built once per window from that window's own values only; no
// cross-window statistic enters here.
type FeatureTable struct {
	Rows []FeatureRow
}

// Len returns the number of rows.
func (ft *FeatureTable) Len() int {
	return len(ft.Rows)
}

// Engineer derives the modeling features for every cleaned trip.
// Negative durations pass through unfiltered; they and unmapped
// payment codes are counted in the quality report.
func Engineer(ctx context.Context, cleaned *CleanResult, logger *slog.Logger) (*FeatureTable, *QualityReport, error) {
	if logger == nil {
		logger = slog.Default()
	}

	quality := cleaned.Quality
	rows := make([]FeatureRow, 0, len(cleaned.Trips))
	for _, trip := range cleaned.Trips {
		row := FeatureRow{
			Trip:            trip,
			PickupHour:      trip.PickupTime.Hour(),
			DropoffHour:     trip.DropoffTime.Hour(),
			DayOfWeek:       trip.PickupTime.Weekday().String(),
			TripDurationMin: trip.DropoffTime.Sub(trip.PickupTime).Minutes(),
			DistanceBin:     DistanceBinOf(trip.TripDistance),
			FareBin:         FareBinOf(trip.FareAmount),
			Payment:         PaymentLabel(trip.PaymentType),
			IsNight:         IsNightHour(trip.PickupTime.Hour()),
		}

		if row.TripDurationMin < 0 {
			quality.NegativeDurations++
		}
		if row.Payment == PaymentUnknown {
			quality.UnknownPaymentCodes++
		}
		rows = append(rows, row)
	}

	logger.InfoContext(ctx, "engineered features",
		"rows", len(rows),
		"negative_durations", quality.NegativeDurations,
		"unknown_payment_codes", quality.UnknownPaymentCodes,
	)

	return &FeatureTable{Rows: rows}, &quality, nil
}

// DistanceBinOf maps a non-negative distance onto exactly one bin.
func DistanceBinOf(miles float64) string {
	switch {
	case miles <= 2:
		return DistanceShort
	case miles <= 5:
		return DistanceMedium
	case miles <= 10:
		return DistanceLong
	default:
		return DistanceVeryLong
	}
}

// FareBinOf maps a non-negative fare onto exactly one bin.
func FareBinOf(fare float64) string {
	switch {
	case fare <= 10:
		return FareLow
	case fare <= 20:
		return FareMedium
	case fare <= 30:
		return FareHigh
	default:
		return FareVeryHigh
	}
}

// PaymentLabel recodes the integer payment code to its categorical
// label. Codes outside 1-4 become the explicit Unknown category.
func PaymentLabel(code int) string {
	switch code {
	case PaymentCreditCard:
		return LabelCreditCard
	case PaymentCash:
		return LabelCash
	case PaymentNoCharge:
		return LabelNoCharge
	case PaymentDispute:
		return LabelDispute
	default:
		return PaymentUnknown
	}
}

// IsNightHour reports whether the pickup hour counts as night:
// 22:00 through 05:59.
func IsNightHour(hour int) bool {
	return hour >= 22 || hour <= 5
}

// Numeric returns the named numeric column. It satisfies the frame
// interface consumed by the regression package.
func (ft *FeatureTable) Numeric(name string) ([]float64, error) {
	out := make([]float64, len(ft.Rows))
	for i, r := range ft.Rows {
		switch name {
		case ColTipAmount:
			out[i] = r.TipAmount
		case ColFareAmount:
			out[i] = r.FareAmount
		case ColTripDistance:
			out[i] = r.TripDistance
		case ColPassengerCount:
			out[i] = float64(r.PassengerCount)
		case "trip_duration":
			out[i] = r.TripDurationMin
		case "pickup_hour":
			out[i] = float64(r.PickupHour)
		case "dropoff_hour":
			out[i] = float64(r.DropoffHour)
		case "is_night":
			if r.IsNight {
				out[i] = 1
			}
		default:
			return nil, fmt.Errorf("unknown numeric column %q", name)
		}
	}
	return out, nil
}

// Levels returns the per-row values of the named categorical column.
func (ft *FeatureTable) Levels(name string) ([]string, error) {
	out := make([]string, len(ft.Rows))
	for i, r := range ft.Rows {
		switch name {
		case ColPaymentType:
			out[i] = r.Payment
		case "day_of_week":
			out[i] = r.DayOfWeek
		case "trip_distance_bin":
			out[i] = r.DistanceBin
		case "fare_bin":
			out[i] = r.FareBin
		default:
			return nil, fmt.Errorf("unknown categorical column %q", name)
		}
	}
	return out, nil
}
