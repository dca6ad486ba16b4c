// Package viz builds exploratory chart URLs for the analysis report.
// Rendering is delegated to the QuickChart service; this package only
// constructs configuration and URLs, it performs no network calls and
// writes no files.
package viz

import (
	"encoding/json"
	"fmt"

	quickchartgo "github.com/henomis/quickchart-go"

	"taxicli/internal/trips"
)

type chartConfig struct {
	Type string    `json:"type"`
	Data chartData `json:"data"`
}

type chartData struct {
	Labels   []string  `json:"labels"`
	Datasets []dataset `json:"datasets"`
}

type dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// TipByPaymentURL returns a bar chart of mean tip amount per payment
// category.
func TipByPaymentURL(ft *trips.FeatureTable) (string, error) {
	order := []string{
		trips.LabelCreditCard, trips.LabelCash,
		trips.LabelNoCharge, trips.LabelDispute, trips.PaymentUnknown,
	}
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range ft.Rows {
		sums[r.Payment] += r.TipAmount
		counts[r.Payment]++
	}

	var labels []string
	var means []float64
	for _, label := range order {
		if counts[label] == 0 {
			continue
		}
		labels = append(labels, label)
		means = append(means, sums[label]/float64(counts[label]))
	}

	return chartURL(chartConfig{
		Type: "bar",
		Data: chartData{
			Labels:   labels,
			Datasets: []dataset{{Label: "Mean tip amount", Data: means}},
		},
	})
}

// TripsByHourURL returns a bar chart of trip counts per pickup hour.
func TripsByHourURL(ft *trips.FeatureTable) (string, error) {
	counts := make([]float64, 24)
	for _, r := range ft.Rows {
		counts[r.PickupHour]++
	}

	labels := make([]string, 24)
	for h := range labels {
		labels[h] = fmt.Sprintf("%02d", h)
	}

	return chartURL(chartConfig{
		Type: "bar",
		Data: chartData{
			Labels:   labels,
			Datasets: []dataset{{Label: "Trips by pickup hour", Data: counts}},
		},
	})
}

func chartURL(cfg chartConfig) (string, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal chart config: %w", err)
	}

	qc := quickchartgo.New()
	qc.Config = string(payload)
	url, err := qc.GetUrl()
	if err != nil {
		return "", fmt.Errorf("build chart url: %w", err)
	}
	return url, nil
}
