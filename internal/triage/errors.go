package triage

import (
	"net/http"

	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

var (
	// ErrEmptyProblem rejects a blank problem description.
	ErrEmptyProblem = apperrors.NewDomainError(apperrors.CodeValidationFailed,
		"problem description is required", http.StatusBadRequest,
		map[string]any{"field": "problem_description"})

	// ErrSessionBusy rejects actions while a gateway or sink call is outstanding.
	ErrSessionBusy = apperrors.NewDomainError(apperrors.CodeSessionBusy,
		"session is processing a previous request", http.StatusConflict, nil)

	// ErrStaleSession reports a result discarded because the session was reset meanwhile.
	ErrStaleSession = apperrors.NewDomainError(apperrors.CodeStaleSession,
		"session was reset while the request was in flight", http.StatusConflict, nil)
)
