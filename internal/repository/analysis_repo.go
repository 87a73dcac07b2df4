package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"trading-agent/config"
	"trading-agent/internal/dto"
	"trading-agent/pkg/httpclient"
	"trading-agent/pkg/logger"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const providerAnalysis = "analysis"

type AnalysisRepository interface {
	// Fetch returns nil without error when the provider sent back an empty
	// payload.
	Fetch(ctx context.Context) (*dto.AnalysisResult, error)
}

type analysisRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewAnalysisRepository(cfg *config.Config, log *logger.Logger) AnalysisRepository {
	return &analysisRepository{
		httpClient:     httpclient.New(log, "", cfg.HTTP.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.Analysis.MaxRequestPerMinute),
	}
}

func (r *analysisRepository) Fetch(ctx context.Context) (*dto.AnalysisResult, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Get(ctx, r.cfg.Analysis.URL, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch analysis data: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Analysis API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, &StatusError{Provider: providerAnalysis, StatusCode: resp.StatusCode, Body: resp.Body}
	}

	result, err := parseAnalysis(resp.Body)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to parse analysis data",
			logger.ErrorField(err),
			logger.StringField("body", string(resp.Body)))
		return nil, err
	}

	if result == nil {
		r.logger.WarnContext(ctx, "Analysis API returned an empty payload")
		return nil, nil
	}

	r.logger.DebugContext(ctx, "analysis data received", logger.StringField("body", string(resp.Body)))
	return result, nil
}

// parseAnalysis reads the analysis payload without forcing field types, so a
// price sent as 50000 and one sent as "50000" both render as 50000. null and
// {} are treated as no analysis at all.
func parseAnalysis(body []byte) (*dto.AnalysisResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrInvalidAnalysisPayload)
	}

	root := gjson.ParseBytes(body)
	if root.Type == gjson.Null {
		return nil, nil
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidAnalysisPayload)
	}

	fields := root.Map()
	if len(fields) == 0 {
		return nil, nil
	}

	prediction := make(map[string]dto.Field)
	if p := fields["next_day_prediction"]; p.IsObject() {
		p.ForEach(func(key, value gjson.Result) bool {
			prediction[key.String()] = toField(value)
			return true
		})
	}

	return &dto.AnalysisResult{
		LatestDate:        toField(fields["latest_date"]),
		LatestPrice:       toField(fields["latest_price"]),
		NextDayPrediction: prediction,
		Signal:            toField(fields["signal"]),
		Raw:               json.RawMessage(body),
	}, nil
}

func toField(value gjson.Result) dto.Field {
	if !value.Exists() || value.Type == gjson.Null {
		return dto.Field{}
	}
	if value.Type == gjson.Number {
		return dto.NewField(value.Raw)
	}
	return dto.NewField(value.String())
}
