package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/supportbox/internal/config"
	"github.com/spec-kit/supportbox/internal/observability"
)

const maxErrorBody = 4 << 10

var tracer = otel.Tracer("supportbox/gateway")

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// GeminiDependencies bundles optional collaborators for the client.
type GeminiDependencies struct {
	HTTPClient *http.Client
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewGeminiClient constructs client.
func NewGeminiClient(cfg config.GatewayConfig, deps GeminiDependencies) *GeminiClient {
	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
		burst = max(1, cfg.RequestsPerMinute/10)
	}
	return &GeminiClient{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Complete sends one prompt and returns the generated text.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "gateway.Complete")
	defer span.End()
	span.SetAttributes(attribute.String("gateway.model", c.model))

	start := time.Now()
	text, err := c.complete(ctx, req)
	outcome := "success"
	if err != nil {
		outcome = string(ReasonOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		c.logger.Warn("completion failed",
			zap.String("reason", outcome),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
	}
	c.metrics.RecordGatewayCall(outcome, time.Since(start))
	return text, err
}

func (c *GeminiClient) complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c.apiKey == "" {
		return "", newError(ReasonAuth, errors.New("api key not configured"))
	}
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return "", newError(ReasonNetwork, ctx.Err())
		}
		return "", newError(ReasonRateLimited, err)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: BuildPrompt(req)}}}},
	})
	if err != nil {
		return "", newError(ReasonUnknown, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", newError(ReasonUnknown, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", newError(ReasonNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(resp)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		if ctx.Err() != nil {
			return "", newError(ReasonNetwork, ctx.Err())
		}
		return "", newError(ReasonUnknown, fmt.Errorf("decode response: %w", err))
	}
	if decoded.PromptFeedback != nil && decoded.PromptFeedback.BlockReason != "" {
		return "", newError(ReasonUnknown, fmt.Errorf("prompt blocked: %s", decoded.PromptFeedback.BlockReason))
	}
	if len(decoded.Candidates) == 0 {
		return "", newError(ReasonUnknown, errors.New("no candidates returned"))
	}

	var b strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", newError(ReasonUnknown, errors.New("empty completion"))
	}
	return text, nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(raw))
	var apiErr apiErrorResponse
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
		msg = apiErr.Error.Message
	}
	err := fmt.Errorf("provider returned %d: %s", resp.StatusCode, msg)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return newError(ReasonAuth, err)
	case http.StatusTooManyRequests:
		return newError(ReasonRateLimited, err)
	case http.StatusBadRequest:
		// Gemini reports a malformed key as INVALID_ARGUMENT.
		if strings.Contains(apiErr.Error.Message, "API key not valid") {
			return newError(ReasonAuth, err)
		}
		return newError(ReasonUnknown, err)
	default:
		return newError(ReasonUnknown, err)
	}
}
