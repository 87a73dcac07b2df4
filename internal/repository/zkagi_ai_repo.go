package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"trading-agent/config"
	"trading-agent/internal/dto"
	"trading-agent/pkg/httpclient"
	"trading-agent/pkg/logger"

	"golang.org/x/time/rate"
)

const providerZkAGI = "zkagi"

type AIRepository interface {
	Analyze(ctx context.Context, prompt string) (*dto.AIAnalysisResult, error)
}

// zkagiAIRepository talks to the ZkAGI OpenAI-compatible chat completion API.
type zkagiAIRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewZkAGIAIRepository(cfg *config.Config, log *logger.Logger) AIRepository {
	return &zkagiAIRepository{
		httpClient:     httpclient.New(log, "", cfg.HTTP.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.ZkAGI.MaxRequestPerMinute),
	}
}

func (r *zkagiAIRepository) Analyze(ctx context.Context, prompt string) (*dto.AIAnalysisResult, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request zkagi limit: %w", err)
	}

	payload := dto.ChatCompletionRequest{
		Model:    r.cfg.ZkAGI.Model,
		Messages: []dto.ChatMessage{{Role: dto.RoleUser, Content: prompt}},
		ZKProof:  r.cfg.ZkAGI.ZKProof,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + r.cfg.ZkAGI.APIKey,
		"Content-Type":  "application/json",
	}

	var completion dto.ChatCompletionResponse

	start := time.Now()
	resp, err := r.httpClient.Post(ctx, r.cfg.ZkAGI.URL, payload, headers, &completion)
	elapsed := time.Since(start)
	if resp == nil {
		return nil, fmt.Errorf("failed to send request to zkagi: %w", err)
	}

	// Any 2xx body is decoded, so a non-200 may come back with a decode error.
	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "failed to get analysis from zkagi",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, &StatusError{Provider: providerZkAGI, StatusCode: resp.StatusCode, Body: resp.Body}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse response from zkagi: %w", err)
	}

	if len(completion.Choices) == 0 {
		r.logger.ErrorContext(ctx, "invalid response from zkagi: no choices", logger.StringField("body", string(resp.Body)))
		return nil, ErrNoChoices
	}

	r.logger.InfoContext(ctx, "zkagi analysis received",
		logger.StringField("model", r.cfg.ZkAGI.Model),
		logger.DurationField("elapsed", elapsed))

	return &dto.AIAnalysisResult{
		Message: completion.Choices[0].Message,
		Elapsed: elapsed,
	}, nil
}
