package report

import (
	"fmt"
	"io"
	"strings"
)

// WriteComparison renders the comparison table and summary to w in a
// fixed-width console format.
func WriteComparison(w io.Writer, cmp *Comparison) error {
	var b strings.Builder

	b.WriteString("\n=== MODEL COMPARISON ===\n")
	b.WriteString(fmt.Sprintf("%-14s | %5s | %12s | %12s | %8s | %8s | %10s | %8s\n",
		"Model", "Terms", "AIC", "BIC", "R2", "Adj R2", "MSPE", "Excluded"))
	b.WriteString(strings.Repeat("-", 98) + "\n")

	for _, m := range cmp.Models {
		b.WriteString(fmt.Sprintf("%-14s | %5d | %12s | %12s | %8s | %8s | %10s | %8d\n",
			m.Name, m.Terms,
			number(m.AIC), number(m.BIC),
			number(m.R2), number(m.AdjR2),
			number(m.MSPE), m.Excluded))
	}

	b.WriteString("\n=== FINAL MODEL ===\n")
	b.WriteString(fmt.Sprintf("Chosen by lowest evaluation-window MSPE: %s (MSPE %.4f)\n",
		cmp.FinalModel, cmp.FinalMSPE))

	b.WriteString("\n=== DATA QUALITY ===\n")
	q := cmp.Quality
	b.WriteString(fmt.Sprintf("Rows read: %d | missing tip: %d | non-positive fare: %d | non-positive distance: %d\n",
		q.RowsRead, q.MissingTip, q.NonPositiveFare, q.NonPositiveDistance))
	b.WriteString(fmt.Sprintf("Outlier-trimmed: %d | negative durations: %d | unknown payment codes: %d\n",
		q.OutlierTrimmed, q.NegativeDurations, q.UnknownPaymentCodes))

	t := cmp.Thresholds
	b.WriteString(fmt.Sprintf("Training p99 thresholds: tip %.2f, fare %.2f, distance %.2f (p1 computed, not enforced: %.2f / %.2f / %.2f)\n",
		t.TipP99, t.FareP99, t.DistanceP99, t.TipP1, t.FareP1, t.DistanceP1))

	if cmp.RunID != "" {
		b.WriteString(fmt.Sprintf("\nRun ID: %s | generated %s\n",
			cmp.RunID, cmp.GeneratedAt.Format("2006-01-02 15:04:05")))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
