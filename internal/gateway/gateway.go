package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// FailureReason classifies why a completion call did not produce text.
type FailureReason string

const (
	ReasonNetwork     FailureReason = "network"
	ReasonAuth        FailureReason = "auth"
	ReasonRateLimited FailureReason = "rate_limited"
	ReasonUnknown     FailureReason = "unknown"
)

// CompletionRequest is one instruction plus the verbatim user text.
type CompletionRequest struct {
	Instruction string
	UserText    string
}

// Completer sends a single prompt to a text-completion provider.
// Implementations never retry and never return empty text as success.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Error is the failure half of a completion result.
type Error struct {
	Reason FailureReason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("completion failed (%s)", e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the failure reason, defaulting to unknown.
func ReasonOf(err error) FailureReason {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ReasonNetwork
	}
	return ReasonUnknown
}

func newError(reason FailureReason, err error) *Error {
	return &Error{Reason: reason, Err: err}
}

// BuildPrompt combines the instruction with the user's text. The user text is
// fenced so it is never read as part of the instruction.
func BuildPrompt(req CompletionRequest) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(req.Instruction))
	b.WriteString("\n\nMensagem do usuário:\n\"\"\"\n")
	b.WriteString(req.UserText)
	b.WriteString("\n\"\"\"")
	return b.String()
}
