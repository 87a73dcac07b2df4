package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"trading-agent/config"
	"trading-agent/internal/dto"
	"trading-agent/pkg/httpclient"
	"trading-agent/pkg/logger"

	"github.com/tidwall/gjson"
)

const providerJupiter = "jupiter"

type JupiterRepository interface {
	// Quote prices the configured input amount into outputMint. The quote is
	// returned as is because the swap call wants it back verbatim.
	Quote(ctx context.Context, outputMint string) (json.RawMessage, error)
	// SwapTransaction returns the base64 transaction Jupiter built for quote.
	SwapTransaction(ctx context.Context, quote json.RawMessage, userPublicKey string) (string, error)
}

type jupiterRepository struct {
	httpClient httpclient.HTTPClient
	cfg        *config.Config
	logger     *logger.Logger
}

func NewJupiterRepository(cfg *config.Config, log *logger.Logger) JupiterRepository {
	return &jupiterRepository{
		httpClient: httpclient.New(log, "", cfg.HTTP.Timeout, ""),
		cfg:        cfg,
		logger:     log,
	}
}

func (r *jupiterRepository) Quote(ctx context.Context, outputMint string) (json.RawMessage, error) {
	params := map[string]string{
		"inputMint":   r.cfg.Jupiter.InputMint,
		"outputMint":  outputMint,
		"amount":      strconv.FormatUint(r.cfg.Jupiter.Amount, 10),
		"slippageBps": strconv.Itoa(r.cfg.Jupiter.SlippageBps),
	}

	r.logger.InfoContext(ctx, "fetching jupiter quote",
		logger.StringField("input_mint", r.cfg.Jupiter.InputMint),
		logger.StringField("output_mint", outputMint))

	resp, err := r.httpClient.Get(ctx, r.cfg.Jupiter.QuoteURL, params, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jupiter quote: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Jupiter quote returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, &StatusError{Provider: providerJupiter, StatusCode: resp.StatusCode, Body: resp.Body}
	}

	if !gjson.ValidBytes(resp.Body) {
		return nil, fmt.Errorf("%w: quote is not valid JSON", ErrInvalidJupiterResponse)
	}
	if gjson.GetBytes(resp.Body, "routePlan.#").Int() == 0 {
		return nil, ErrNoSwapRoute
	}

	return json.RawMessage(resp.Body), nil
}

func (r *jupiterRepository) SwapTransaction(ctx context.Context, quote json.RawMessage, userPublicKey string) (string, error) {
	payload := dto.JupiterSwapRequest{
		QuoteResponse:    quote,
		UserPublicKey:    userPublicKey,
		WrapAndUnwrapSol: true,
	}
	headers := map[string]string{
		"Content-Type": "application/json",
	}

	resp, err := r.httpClient.Post(ctx, r.cfg.Jupiter.SwapURL, payload, headers, nil)
	if err != nil {
		return "", fmt.Errorf("failed to request jupiter swap transaction: %w", err)
	}

	body := gjson.ParseBytes(resp.Body)
	if msg := body.Get("error"); msg.Exists() {
		return "", fmt.Errorf("%w: %s", ErrSwapTransaction, msg.String())
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Jupiter swap returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return "", &StatusError{Provider: providerJupiter, StatusCode: resp.StatusCode, Body: resp.Body}
	}

	tx := body.Get("swapTransaction").String()
	if tx == "" {
		return "", fmt.Errorf("%w: no swapTransaction in response", ErrSwapTransaction)
	}

	r.logger.InfoContext(ctx, "jupiter swap transaction received")
	return tx, nil
}
