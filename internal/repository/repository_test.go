package repository

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"trading-agent/config"
)

func newTestConfig(analysisURL, zkagiURL, swapURL string) *config.Config {
	return &config.Config{
		Log:      config.Logger{Level: "debug", Encoding: "console"},
		Analysis: config.Analysis{URL: analysisURL},
		ZkAGI: config.ZkAGI{
			URL:     zkagiURL,
			APIKey:  "test-key",
			Model:   "mistral-large-latest",
			ZKProof: true,
		},
		Swap: config.Swap{
			URL:        swapURL,
			TelegramID: "123456",
			OutputMint: "So11111111111111111111111111111111111111112",
		},
	}
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// closedServerURL points at a port nothing listens on any more.
func closedServerURL() string {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	return url
}
