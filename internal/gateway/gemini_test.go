package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/supportbox/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeminiClient(config.GatewayConfig{
		APIKey:  "test-key",
		Model:   "gemini-2.5-flash",
		BaseURL: srv.URL,
	}, GeminiDependencies{HTTPClient: srv.Client()})
}

func writeCandidate(w http.ResponseWriter, parts ...string) {
	var ps []map[string]string
	for _, p := range parts {
		ps = append(ps, map[string]string{"text": p})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"role": "model", "parts": ps}},
		},
	})
}

func TestCompleteSendsCombinedPrompt(t *testing.T) {
	var gotPath, gotKey, gotPrompt string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		var req generateRequest
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &req))
		gotPrompt = req.Contents[0].Parts[0].Text
		writeCandidate(w, "Reinicie a ", "impressora.")
	})

	text, err := client.Complete(context.Background(), CompletionRequest{
		Instruction: "Seja breve.",
		UserText:    "impressora travada",
	})
	require.NoError(t, err)
	assert.Equal(t, "Reinicie a impressora.", text)
	assert.Equal(t, "/models/gemini-2.5-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.True(t, strings.HasPrefix(gotPrompt, "Seja breve."))
	assert.Contains(t, gotPrompt, "impressora travada")
}

func TestCompleteMapsStatusToReason(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   FailureReason
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":401,"message":"nope"}}`, ReasonAuth},
		{"forbidden", http.StatusForbidden, `{}`, ReasonAuth},
		{"bad key", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key."}}`, ReasonAuth},
		{"quota", http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota"}}`, ReasonRateLimited},
		{"server", http.StatusInternalServerError, `oops`, ReasonUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			text, err := client.Complete(context.Background(), CompletionRequest{UserText: "x"})
			require.Error(t, err)
			assert.Empty(t, text)
			assert.Equal(t, tc.want, ReasonOf(err))
		})
	}
}

func TestCompleteRejectsEmptyOrBlockedOutput(t *testing.T) {
	t.Run("blank text", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeCandidate(w, "   ")
		})
		_, err := client.Complete(context.Background(), CompletionRequest{UserText: "x"})
		assert.Equal(t, ReasonUnknown, ReasonOf(err))
	})
	t.Run("no candidates", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		})
		_, err := client.Complete(context.Background(), CompletionRequest{UserText: "x"})
		assert.Equal(t, ReasonUnknown, ReasonOf(err))
	})
	t.Run("blocked", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
		})
		_, err := client.Complete(context.Background(), CompletionRequest{UserText: "x"})
		assert.Equal(t, ReasonUnknown, ReasonOf(err))
	})
}

func TestCompleteWithoutKeyIsAuthFailure(t *testing.T) {
	client := NewGeminiClient(config.GatewayConfig{Model: "m", BaseURL: "http://127.0.0.1:1"}, GeminiDependencies{})
	_, err := client.Complete(context.Background(), CompletionRequest{UserText: "x"})
	assert.Equal(t, ReasonAuth, ReasonOf(err))
}

func TestCompleteDeadlineIsNetworkFailure(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.Complete(ctx, CompletionRequest{UserText: "x"})
	assert.Equal(t, ReasonNetwork, ReasonOf(err))
}

func TestBuildPromptKeepsUserTextVerbatim(t *testing.T) {
	prompt := BuildPrompt(CompletionRequest{Instruction: "  regra  ", UserText: "  texto com espaços  "})
	assert.True(t, strings.HasPrefix(prompt, "regra\n\n"))
	assert.Contains(t, prompt, "  texto com espaços  ")
}
