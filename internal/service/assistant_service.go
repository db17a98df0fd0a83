package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/supportbox/internal/gateway"
	"github.com/spec-kit/supportbox/internal/triage"
	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

const (
	assistantFallback = "Ops, ocorreu um erro na comunicação com a IA. Tente novamente em instantes ou abra um chamado."
	maxAssistantInput = 2000
)

// AssistantReply is what the chat widget displays.
type AssistantReply struct {
	Text     string
	Degraded bool
}

// AssistantService answers quick questions from the help chat.
type AssistantService struct {
	gateway gateway.Completer
	timeout time.Duration
	logger  *zap.Logger
}

// NewAssistantService constructs the service.
func NewAssistantService(completer gateway.Completer, timeout time.Duration, logger *zap.Logger) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &AssistantService{gateway: completer, timeout: timeout, logger: logger}
}

// Reply asks the model once. Provider failures yield a fixed apology
// marked as degraded rather than an error.
func (s *AssistantService) Reply(ctx context.Context, message string) (AssistantReply, error) {
	if strings.TrimSpace(message) == "" {
		return AssistantReply{}, apperrors.NewValidationError("message is required", map[string]any{"field": "message"})
	}
	if len(message) > maxAssistantInput {
		return AssistantReply{}, apperrors.NewValidationError("message is too long", map[string]any{"field": "message", "max": maxAssistantInput})
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	text, err := s.gateway.Complete(callCtx, gateway.CompletionRequest{
		Instruction: triage.AssistantInstruction,
		UserText:    message,
	})
	if err != nil {
		s.logger.Warn("assistant reply degraded", zap.String("reason", string(gateway.ReasonOf(err))))
		return AssistantReply{Text: assistantFallback, Degraded: true}, nil
	}
	return AssistantReply{Text: text}, nil
}
