// Package portal is the HTTP client for the backend that scrapes and persists case records.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
)

const (
	PreviewPath = "/processos/scrape-preview"
	SavePath    = "/processos/salvar-completo"

	// Scraping a large case can take a while on the backend side.
	defaultTimeout = 2 * time.Minute
	maxErrorBody   = 4096
)

// Client talks to the two backend operations. It never retries: every retry is user initiated.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// BaseURL returns the backend root this client was built for.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Preview asks the backend to scrape ref and return the structured bundle without saving it.
func (c *Client) Preview(ctx context.Context, ref string) (*entities.Bundle, error) {
	var bundle entities.Bundle
	if err := c.post(ctx, PreviewPath, entities.PreviewRequest{URL: ref}, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// SaveComplete sends the whole staged bundle for persistence in one request.
// A 2xx answer is decoded even when it reports sucesso=false; the caller decides what that means.
func (c *Client) SaveComplete(ctx context.Context, req entities.SaveRequest) (*entities.CommitResult, error) {
	var result entities.CommitResult
	if err := c.post(ctx, SavePath, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return ErrEmptyResponse
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage extracts the backend's error text from the usual JSON envelopes,
// falling back to the raw body.
func errorMessage(raw []byte) string {
	var envelope struct {
		Detail   any    `json:"detail"`
		Error    string `json:"error"`
		Mensagem string `json:"mensagem"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		switch d := envelope.Detail.(type) {
		case string:
			if d != "" {
				return d
			}
		case nil:
		default:
			if b, err := json.Marshal(d); err == nil {
				return string(b)
			}
		}
		if envelope.Mensagem != "" {
			return envelope.Mensagem
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
