package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/supportbox/internal/events"
	"github.com/spec-kit/supportbox/internal/gateway"
	"github.com/spec-kit/supportbox/internal/triage"
	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

type completerFunc func(ctx context.Context, req gateway.CompletionRequest) (string, error)

func (f completerFunc) Complete(ctx context.Context, req gateway.CompletionRequest) (string, error) {
	return f(ctx, req)
}

func TestAssistantReply(t *testing.T) {
	var got gateway.CompletionRequest
	svc := NewAssistantService(completerFunc(func(_ context.Context, req gateway.CompletionRequest) (string, error) {
		got = req
		return "Tente redefinir a senha pelo portal.", nil
	}), 0, nil)

	reply, err := svc.Reply(context.Background(), "esqueci minha senha")
	require.NoError(t, err)
	assert.False(t, reply.Degraded)
	assert.Equal(t, "Tente redefinir a senha pelo portal.", reply.Text)
	assert.Equal(t, triage.AssistantInstruction, got.Instruction)
	assert.Equal(t, "esqueci minha senha", got.UserText)
}

func TestAssistantReplyDegradesOnFailure(t *testing.T) {
	svc := NewAssistantService(completerFunc(func(context.Context, gateway.CompletionRequest) (string, error) {
		return "", &gateway.Error{Reason: gateway.ReasonAuth}
	}), 0, nil)

	reply, err := svc.Reply(context.Background(), "oi")
	require.NoError(t, err)
	assert.True(t, reply.Degraded)
	assert.Equal(t, assistantFallback, reply.Text)
}

func TestAssistantReplyValidation(t *testing.T) {
	calls := 0
	svc := NewAssistantService(completerFunc(func(context.Context, gateway.CompletionRequest) (string, error) {
		calls++
		return "x", nil
	}), 0, nil)

	_, err := svc.Reply(context.Background(), "  ")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
	_, err = svc.Reply(context.Background(), strings.Repeat("a", maxAssistantInput+1))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
	assert.Zero(t, calls)
}

func TestNotificationServiceLogsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher(nil)
	NewNotificationService(dispatcher, zap.New(core)).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{ID: "e1", Type: events.EventTriageEscalated, SessionID: "s1"}))
	entries := logs.FilterMessage(string(events.EventTriageEscalated)).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "s1", entries[0].ContextMap()["session_id"])
}
