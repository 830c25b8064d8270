// Package backend is the typed client for the remote storefront REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alkarmah/storefront/pkg/config"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
	"github.com/alkarmah/storefront/pkg/metrics"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxErrorBody = 4 << 10

// Options configures a Client. HTTPClient is optional; when nil a client
// with an otelhttp transport and the configured timeout is built.
type Options struct {
	Config     config.BackendConfig
	HTTPClient *http.Client
	Logger     *logger.Logger
	Metrics    *metrics.StorefrontMetrics
}

// Client performs requests against the storefront backend.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	logg      *logger.Logger
	metrics   *metrics.StorefrontMetrics
}

// New builds a backend client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.Config.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("backend base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Config.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Client{
		baseURL:   base,
		userAgent: opts.Config.UserAgent,
		http:      httpClient,
		logg:      logg,
		metrics:   opts.Metrics,
	}, nil
}

type request struct {
	endpoint string
	method   string
	path     string
	token    string
	body     any
}

// do sends the request and decodes the payload into out. Responses may be
// wrapped as {"success": .., "data": ..} or returned bare.
func (c *Client) do(ctx context.Context, req request, out any) error {
	start := time.Now()
	err := c.send(ctx, req, out)
	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(string(pkgerrors.As(err).Code()))
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"endpoint": req.endpoint,
			"method":   req.method,
			"path":     req.path,
		})
		c.logg.Warn(logCtx, fmt.Sprintf("backend.request_failed: %v", err))
	}
	c.metrics.ObserveBackendCall(req.endpoint, outcome, time.Since(start))
	return err
}

func (c *Client) send(ctx context.Context, req request, out any) error {
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building backend request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return pkgerrors.Wrap(pkgerrors.CodeRemoteUnavailable, ctx.Err(), "request cancelled")
		}
		return pkgerrors.Wrap(pkgerrors.CodeRemoteUnavailable, err, "store is unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeRemoteUnavailable, err, "reading backend response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, raw)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var env envelope
	envErr := json.Unmarshal(raw, &env)
	if envErr == nil && env.refused() {
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return pkgerrors.New(pkgerrors.CodeRemoteUnavailable, msg)
	}
	if out == nil {
		return nil
	}
	payload := raw
	if envErr == nil && len(env.Data) > 0 {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeRemoteUnavailable, err, "decoding backend response")
	}
	return nil
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// refused reports an explicit {"success": false} answer, with or without data.
func (e envelope) refused() bool {
	return e.Success != nil && !*e.Success
}

// statusError maps a non-2xx response to the client error taxonomy.
func statusError(status int, raw []byte) error {
	message := backendMessage(raw)
	switch status {
	case http.StatusUnauthorized:
		if message == "" {
			message = "session expired, please sign in again"
		}
		return pkgerrors.New(pkgerrors.CodeUnauthenticated, message)
	case http.StatusNotFound:
		if message == "" {
			message = "resource not found"
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	default:
		if message == "" {
			message = http.StatusText(status)
		}
		return pkgerrors.New(pkgerrors.CodeRemoteUnavailable, message).
			WithDetails(map[string]any{"status": status})
	}
}

func backendMessage(raw []byte) string {
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	var body struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if body.Message != "" {
		return body.Message
	}
	switch v := body.Error.(type) {
	case string:
		return v
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			return msg
		}
	}
	return ""
}
