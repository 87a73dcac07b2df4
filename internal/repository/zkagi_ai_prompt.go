package repository

import (
	"fmt"
	"strings"

	"trading-agent/internal/dto"
)

var forecastLabels = map[string]string{
	dto.ForecastDate: "Date",
}

// BuildAnalysisPrompt renders the analysis into the fixed prompt sent to the
// model. Missing values are written as N/A.
func BuildAnalysisPrompt(analysis *dto.AnalysisResult) string {
	var sb strings.Builder

	sb.WriteString("Analyze the following Bitcoin market data and provide a recommendation:\n\n")

	sb.WriteString(fmt.Sprintf("Latest Date: %s\n", analysis.LatestDate.OrDefault(dto.NotAvailable)))
	sb.WriteString(fmt.Sprintf("Latest Price: %s\n", analysis.LatestPrice.OrDefault(dto.NotAvailable)))

	sb.WriteString("\nNext Day Prediction:\n")
	for _, key := range dto.ForecastKeys() {
		label, ok := forecastLabels[key]
		if !ok {
			label = key
		}
		sb.WriteString(fmt.Sprintf("- %s: %s\n", label, analysis.Forecast(key).OrDefault(dto.NotAvailable)))
	}

	sb.WriteString(fmt.Sprintf("\nSignal: %s\n\n", analysis.Signal.OrDefault(dto.NotAvailable)))

	sb.WriteString("Provide a detailed analysis of the pricing differentiation and recommend whether to buy, sell, or hold based on the given data.\n")

	return sb.String()
}
