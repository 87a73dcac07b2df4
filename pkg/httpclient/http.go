package httpclient

import (
	"context"
	"net/http"
	"time"
)

type BaseResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	Duration   time.Duration
}

type HTTPClient interface {
	Get(ctx context.Context, endpoint string, queryParams map[string]string, headers map[string]string, result interface{}) (*BaseResponse, error)
	Post(ctx context.Context, endpoint string, body interface{}, headers map[string]string, result interface{}) (*BaseResponse, error)
}
