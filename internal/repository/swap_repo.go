package repository

import (
	"context"
	"fmt"
	"net/http"

	"trading-agent/config"
	"trading-agent/internal/dto"
	"trading-agent/pkg/httpclient"
	"trading-agent/pkg/logger"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

type SwapRepository interface {
	// Execute returns the provider's body on any status. A body that is not
	// JSON is reported as ErrInvalidSwapResponse alongside the status.
	Execute(ctx context.Context) (*dto.SwapResult, error)
}

type swapRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewSwapRepository(cfg *config.Config, log *logger.Logger) SwapRepository {
	return &swapRepository{
		httpClient:     httpclient.New(log, "", cfg.HTTP.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.Swap.MaxRequestPerMinute),
	}
}

func (r *swapRepository) Execute(ctx context.Context) (*dto.SwapResult, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload := dto.SwapRequest{
		TelegramID: r.cfg.Swap.TelegramID,
		OutputMint: r.cfg.Swap.OutputMint,
	}
	headers := map[string]string{
		"Content-Type": "application/json",
	}

	resp, err := r.httpClient.Post(ctx, r.cfg.Swap.URL, payload, headers, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send swap request: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		r.logger.InfoContext(ctx, "swap executed",
			logger.StringField("output_mint", payload.OutputMint))
	} else {
		r.logger.ErrorContext(ctx, "Swap API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
	}

	result := &dto.SwapResult{StatusCode: resp.StatusCode}
	if !gjson.ValidBytes(resp.Body) {
		return result, fmt.Errorf("%w: status %d: %q", ErrInvalidSwapResponse, resp.StatusCode, string(resp.Body))
	}
	result.Body = append(result.Body, resp.Body...)

	return result, nil
}
