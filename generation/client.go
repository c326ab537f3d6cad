// Package generation calls chat-completion providers on behalf of the editor.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"zhiyi-cms/metrics"
	"zhiyi-cms/models"

	"github.com/rs/zerolog"
)

const maxResponseBytes = 4 << 20

// Request is one system+user prompt. A nil Temperature is left to the provider.
type Request struct {
	Task        string
	System      string
	Prompt      string
	Temperature *float64
	MaxTokens   int
}

// Target is where a request goes, resolved once from the stored settings.
type Target struct {
	Provider models.ProviderKind
	BaseURL  string
	APIKey   string
	Model    string
}

// TargetFor routes through the relay when the proxy flag is on.
func TargetFor(settings models.APISettings, relayURL string) Target {
	settings = settings.Resolve()

	base := strings.TrimRight(settings.APIEndpoint, "/")
	if settings.UseProxy {
		base = strings.TrimRight(relayURL, "/") + "/api/" + string(settings.Provider)
	}

	return Target{
		Provider: settings.Provider,
		BaseURL:  base,
		APIKey:   strings.TrimSpace(settings.APIKey),
		Model:    settings.Model,
	}
}

type Client struct {
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient uses http.DefaultClient when httpClient is nil. Deadlines come from the caller's context.
func NewClient(httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		log:        log.With().Str("component", "generation").Logger(),
	}
}

// Complete sends req to the target's provider and returns the trimmed completion text.
// Every failure is a *Error.
func (c *Client) Complete(ctx context.Context, target Target, req Request) (string, error) {
	start := time.Now()
	text, err := c.complete(ctx, target, req)

	result := "success"
	var genErr *Error
	if errors.As(err, &genErr) {
		result = string(genErr.Kind)
	}
	metrics.GenerationRequestsTotal.WithLabelValues(string(target.Provider), req.Task, result).Inc()
	metrics.GenerationDuration.WithLabelValues(string(target.Provider), req.Task).Observe(time.Since(start).Seconds())

	if err != nil {
		c.log.Warn().
			Err(err).
			Str("provider", string(target.Provider)).
			Str("task", req.Task).
			Str("kind", result).
			Msg("Generation failed")
	}
	return text, err
}

func (c *Client) complete(ctx context.Context, target Target, req Request) (string, error) {
	if target.APIKey == "" {
		return "", notConfigured()
	}

	p := providerFor(target.Provider)

	payload, err := json.Marshal(p.body(target, req))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url(target), bytes.NewReader(payload))
	if err != nil {
		return "", networkError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	p.setHeaders(httpReq.Header, target)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", classifyTransportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", serverError(resp.StatusCode, errorDetail(resp.StatusCode, data))
	}

	text, err := p.parse(data)
	if err != nil {
		return "", malformedError(resp.StatusCode, err)
	}
	return text, nil
}

func classifyTransportError(ctx context.Context, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return timeoutError(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return timeoutError(err)
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return noResponseError(err)
	}

	return networkError(err)
}
