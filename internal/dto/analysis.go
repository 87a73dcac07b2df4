package dto

import "encoding/json"

const (
	NotAvailable = "N/A"
	NoSignal     = "No signal"
)

// Forecast fields of next_day_prediction, in the order they are rendered.
const (
	ForecastTimeGPT     = "TimeGPT"
	ForecastTimeGPTHi50 = "TimeGPT-hi-50"
	ForecastTimeGPTHi80 = "TimeGPT-hi-80"
	ForecastTimeGPTHi90 = "TimeGPT-hi-90"
	ForecastTimeGPTLo50 = "TimeGPT-lo-50"
	ForecastTimeGPTLo80 = "TimeGPT-lo-80"
	ForecastTimeGPTLo90 = "TimeGPT-lo-90"
	ForecastDate        = "ds"
)

func ForecastKeys() []string {
	return []string{
		ForecastTimeGPT,
		ForecastTimeGPTHi50,
		ForecastTimeGPTHi80,
		ForecastTimeGPTHi90,
		ForecastTimeGPTLo50,
		ForecastTimeGPTLo80,
		ForecastTimeGPTLo90,
		ForecastDate,
	}
}

// Field is a payload value as it appeared on the wire. Numbers keep their
// JSON text; null and absent values are not Present.
type Field struct {
	Value   string
	Present bool
}

func NewField(value string) Field {
	return Field{Value: value, Present: true}
}

func (f Field) OrDefault(def string) string {
	if !f.Present {
		return def
	}
	return f.Value
}

// AnalysisResult is the market analysis returned by the analysis provider.
type AnalysisResult struct {
	LatestDate        Field
	LatestPrice       Field
	NextDayPrediction map[string]Field
	Signal            Field
	Raw               json.RawMessage
}

func (a *AnalysisResult) Forecast(key string) Field {
	return a.NextDayPrediction[key]
}

// ParsedSignal is SignalUnknown when the payload carried no signal.
func (a *AnalysisResult) ParsedSignal() Signal {
	if !a.Signal.Present {
		return SignalUnknown
	}
	return ParseSignal(a.Signal.Value)
}

// SignalText is the signal as shown to the operator.
func (a *AnalysisResult) SignalText() string {
	return a.Signal.OrDefault(NoSignal)
}
