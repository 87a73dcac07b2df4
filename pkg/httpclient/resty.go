package httpclient

import (
	"context"
	"time"

	"trading-agent/pkg/logger"

	"github.com/go-resty/resty/v2"
)

type RestyClient struct {
	client *resty.Client
	log    *logger.Logger
}

// New builds a client for a single provider. baseURL may be empty when the
// provider is addressed by a full URL per request. A zero timeout means the
// request waits for as long as the context allows.
func New(log *logger.Logger, baseURL string, timeout time.Duration, bearerToken string) HTTPClient {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	if baseURL != "" {
		client.SetBaseURL(baseURL)
	}
	if bearerToken != "" {
		client.SetAuthToken(bearerToken)
	}

	return &RestyClient{client: client, log: log}
}

// GET request with optional query params
func (rc *RestyClient) Get(ctx context.Context, endpoint string, queryParams map[string]string, headers map[string]string, result interface{}) (*BaseResponse, error) {
	req := rc.client.R().SetContext(ctx)

	if result != nil {
		// providers do not always label their JSON
		req.SetResult(result).ForceContentType("application/json")
	}

	if queryParams != nil {
		req.SetQueryParams(queryParams)
	}

	if headers != nil {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(endpoint)
	return rc.toBaseResponse(ctx, "GET", endpoint, resp, err)
}

// POST request with body
func (rc *RestyClient) Post(ctx context.Context, endpoint string, body interface{}, headers map[string]string, result interface{}) (*BaseResponse, error) {
	req := rc.client.R().
		SetContext(ctx).
		SetBody(body)

	if result != nil {
		req.SetResult(result).ForceContentType("application/json")
	}

	if headers != nil {
		req.SetHeaders(headers)
	}

	resp, err := req.Post(endpoint)
	return rc.toBaseResponse(ctx, "POST", endpoint, resp, err)
}

func (rc *RestyClient) toBaseResponse(ctx context.Context, method, endpoint string, resp *resty.Response, err error) (*BaseResponse, error) {
	// resty hands back an empty response on transport failures
	if resp == nil || resp.RawResponse == nil {
		return nil, err
	}

	rc.log.DebugContext(ctx, "http request done",
		logger.StringField("method", method),
		logger.StringField("endpoint", endpoint),
		logger.IntField("status_code", resp.StatusCode()),
		logger.DurationField("duration", resp.Time()),
	)

	return &BaseResponse{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		Headers:    resp.Header(),
		Duration:   resp.Time(),
	}, err
}
