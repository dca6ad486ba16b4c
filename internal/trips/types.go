package trips

import (
	"fmt"
	"time"
)

// Column names expected in the raw trip table. The loader preserves
// whatever extra columns the source carries; only these are required.
const (
	ColPickupTime     = "tpep_pickup_datetime"
	ColDropoffTime    = "tpep_dropoff_datetime"
	ColPassengerCount = "passenger_count"
	ColTripDistance   = "trip_distance"
	ColPaymentType    = "payment_type"
	ColFareAmount     = "fare_amount"
	ColTipAmount      = "tip_amount"
)

// Surcharge columns dropped by the cleaner when present. Their absence
// is not an error.
var DroppedColumns = []string{"mta_tax", "improvement_surcharge"}

// TimestampLayout is the layout of pickup/dropoff timestamps in the
// source data. The timezone of the source is preserved as-is.
const TimestampLayout = "2006-01-02 15:04:05"

// Payment type codes as they appear in the raw data.
const (
	PaymentCreditCard = 1
	PaymentCash       = 2
	PaymentNoCharge   = 3
	PaymentDispute    = 4
)

// Categorical labels for recoded payment types. Codes outside 1-4 map
// to PaymentUnknown rather than failing or dropping the row.
const (
	LabelCreditCard = "Credit Card"
	LabelCash       = "Cash"
	LabelNoCharge   = "No Charge"
	LabelDispute    = "Dispute"
	PaymentUnknown  = "Unknown"
)

// Trip represents a single cleaned taxi trip.
type Trip struct {
	PickupTime     time.Time `json:"pickup_time"`
	DropoffTime    time.Time `json:"dropoff_time"`
	PassengerCount int       `json:"passenger_count"`
	TripDistance   float64   `json:"trip_distance"` // miles
	PaymentType    int       `json:"payment_type"`  // raw code
	FareAmount     float64   `json:"fare_amount"`
	TipAmount      float64   `json:"tip_amount"`
}

// IsValid reports whether the trip passes the row-level cleaning rules:
// tip present (non-negative by construction), positive fare, positive
// distance.
func (t Trip) IsValid() bool {
	return t.FareAmount > 0 && t.TripDistance > 0 && t.TipAmount >= 0
}

// OutlierThresholds holds the percentile cut points computed once from
// the training window. The evaluation window is trimmed with these same
// constants; they are never recomputed per window.
type OutlierThresholds struct {
	TipP1       float64 `json:"tip_p1"`
	TipP99      float64 `json:"tip_p99"`
	FareP1      float64 `json:"fare_p1"`
	FareP99     float64 `json:"fare_p99"`
	DistanceP1  float64 `json:"distance_p1"`
	DistanceP99 float64 `json:"distance_p99"`
}

// IsValid reports whether the thresholds are internally consistent.
func (ot OutlierThresholds) IsValid() bool {
	return ot.TipP1 <= ot.TipP99 && ot.FareP1 <= ot.FareP99 &&
		ot.DistanceP1 <= ot.DistanceP99 && ot.FareP99 > 0 && ot.DistanceP99 > 0
}

// Within reports whether the trip falls at or below every upper
// threshold. Only the upper bound is enforced; the lower percentile is
// computed and reported but deliberately not applied (one-sided trim).
func (ot OutlierThresholds) Within(t Trip) bool {
	return t.TipAmount <= ot.TipP99 &&
		t.FareAmount <= ot.FareP99 &&
		t.TripDistance <= ot.DistanceP99
}

// FeatureRow is a trip augmented with the derived modeling features.
type FeatureRow struct {
	Trip

	PickupHour      int     `json:"pickup_hour"`  // 0-23
	DropoffHour     int     `json:"dropoff_hour"` // 0-23
	DayOfWeek       string  `json:"day_of_week"`  // Sunday..Saturday, week starts Sunday
	TripDurationMin float64 `json:"trip_duration"`
	DistanceBin     string  `json:"trip_distance_bin"`
	FareBin         string  `json:"fare_bin"`
	Payment         string  `json:"payment_label"`
	IsNight         bool    `json:"is_night"`
}

// QualityReport counts non-fatal data-quality findings. Warnings are
// recorded and processing continues; nothing here aborts the pipeline.
type QualityReport struct {
	RowsRead            int `json:"rows_read"`
	MissingTip          int `json:"missing_tip"`
	NonPositiveFare     int `json:"non_positive_fare"`
	NonPositiveDistance int `json:"non_positive_distance"`
	OutlierTrimmed      int `json:"outlier_trimmed"`
	NegativeDurations   int `json:"negative_durations"`
	UnknownPaymentCodes int `json:"unknown_payment_codes"`
}

// Merge adds the counts from other into the report.
func (qr *QualityReport) Merge(other QualityReport) {
	qr.RowsRead += other.RowsRead
	qr.MissingTip += other.MissingTip
	qr.NonPositiveFare += other.NonPositiveFare
	qr.NonPositiveDistance += other.NonPositiveDistance
	qr.OutlierTrimmed += other.OutlierTrimmed
	qr.NegativeDurations += other.NegativeDurations
	qr.UnknownPaymentCodes += other.UnknownPaymentCodes
}

// SchemaError reports a missing or mistyped required column. It is
// fatal: the pipeline stage that encounters it aborts.
type SchemaError struct {
	Column string `json:"column"`
	Row    int    `json:"row,omitempty"` // 1-based data row, 0 when column-level
	Reason string `json:"reason"`
}

// Error implements the error interface.
func (se *SchemaError) Error() string {
	if se.Row > 0 {
		return fmt.Sprintf("schema error in column %q, row %d: %s", se.Column, se.Row, se.Reason)
	}
	return fmt.Sprintf("schema error in column %q: %s", se.Column, se.Reason)
}
