package repository

import (
	"context"
	"net/http"
	"testing"

	"trading-agent/internal/dto"
	"trading-agent/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisRepository_Fetch(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    error
		wantStatus int
		wantNil    bool
		check      func(t *testing.T, got *dto.AnalysisResult)
	}{
		{
			name:   "full payload",
			status: http.StatusOK,
			body: `{
				"latest_date": "2024-11-20",
				"latest_price": 94250.5,
				"next_day_prediction": {
					"TimeGPT": 95010.25,
					"TimeGPT-hi-50": 95500,
					"TimeGPT-lo-90": null,
					"ds": "2024-11-21"
				},
				"signal": "Buy"
			}`,
			check: func(t *testing.T, got *dto.AnalysisResult) {
				assert.Equal(t, dto.NewField("2024-11-20"), got.LatestDate)
				assert.Equal(t, dto.NewField("94250.5"), got.LatestPrice)
				assert.Equal(t, dto.NewField("95010.25"), got.Forecast(dto.ForecastTimeGPT))
				assert.Equal(t, dto.NewField("95500"), got.Forecast(dto.ForecastTimeGPTHi50))
				assert.Equal(t, dto.NewField("2024-11-21"), got.Forecast(dto.ForecastDate))
				assert.False(t, got.Forecast(dto.ForecastTimeGPTLo90).Present)
				assert.False(t, got.Forecast(dto.ForecastTimeGPTHi80).Present)
				assert.Equal(t, dto.SignalBuy, got.ParsedSignal())
			},
		},
		{
			name:   "price sent as string",
			status: http.StatusOK,
			body:   `{"signal":"hold","latest_price":"50000"}`,
			check: func(t *testing.T, got *dto.AnalysisResult) {
				assert.Equal(t, dto.NewField("50000"), got.LatestPrice)
				assert.False(t, got.LatestDate.Present)
				assert.Empty(t, got.NextDayPrediction)
				assert.Equal(t, dto.SignalHold, got.ParsedSignal())
			},
		},
		{
			name:   "null signal is missing",
			status: http.StatusOK,
			body:   `{"signal":null,"latest_price":1}`,
			check: func(t *testing.T, got *dto.AnalysisResult) {
				assert.False(t, got.Signal.Present)
				assert.Equal(t, dto.SignalUnknown, got.ParsedSignal())
			},
		},
		{
			name:    "empty object",
			status:  http.StatusOK,
			body:    `{}`,
			wantNil: true,
		},
		{
			name:    "null body",
			status:  http.StatusOK,
			body:    `null`,
			wantNil: true,
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			body:    `<html>oops</html>`,
			wantErr: ErrInvalidAnalysisPayload,
		},
		{
			name:    "json array",
			status:  http.StatusOK,
			body:    `[1,2,3]`,
			wantErr: ErrInvalidAnalysisPayload,
		},
		{
			name:       "non ok status",
			status:     http.StatusServiceUnavailable,
			body:       `{"error":"down"}`,
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			repo := NewAnalysisRepository(newTestConfig(server.URL, "", ""), logger.NewNop())
			got, err := repo.Fetch(context.Background())

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			case tt.wantStatus != 0:
				statusErr, ok := AsStatusError(err)
				require.True(t, ok, "expected a status error, got %v", err)
				assert.Equal(t, tt.wantStatus, statusErr.StatusCode)
				assert.Nil(t, got)
			case tt.wantNil:
				assert.NoError(t, err)
				assert.Nil(t, got)
			default:
				require.NoError(t, err)
				require.NotNil(t, got)
				tt.check(t, got)
			}
		})
	}
}

func TestAnalysisRepository_Fetch_TransportError(t *testing.T) {
	repo := NewAnalysisRepository(newTestConfig(closedServerURL(), "", ""), logger.NewNop())

	got, err := repo.Fetch(context.Background())

	require.Error(t, err)
	assert.Nil(t, got)
	_, isStatus := AsStatusError(err)
	assert.False(t, isStatus)
}
