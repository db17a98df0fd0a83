package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/supportbox/internal/api/dto"
	"github.com/spec-kit/supportbox/internal/auth"
	"github.com/spec-kit/supportbox/internal/triage"
	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

// TriageHandler exposes the triage wizard.
type TriageHandler struct {
	engine *triage.Engine
	store  *triage.Store
	tokens *auth.TokenManager
}

// NewTriageHandler constructs handler.
func NewTriageHandler(engine *triage.Engine, store *triage.Store, tokens *auth.TokenManager) *TriageHandler {
	return &TriageHandler{engine: engine, store: store, tokens: tokens}
}

// CreateSession POST /triage/sessions.
func (h *TriageHandler) CreateSession(c *fiber.Ctx) error {
	session := h.store.Create()
	token, expiresAt, err := h.tokens.GenerateToken(session.ID())
	if err != nil {
		h.store.Delete(session.ID())
		return apperrors.NewInternalError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SessionCreatedResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Session:   sessionResponse(session.Snapshot()),
	}})
}

// GetSession GET /triage/session.
func (h *TriageHandler) GetSession(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session.Snapshot())})
}

// SubmitProblem POST /triage/session/problem.
func (h *TriageHandler) SubmitProblem(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.SubmitProblemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	snap, err := h.engine.SubmitProblem(c.UserContext(), session, req.ProblemDescription)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(snap)})
}

// AcceptSuggestion POST /triage/session/accept.
func (h *TriageHandler) AcceptSuggestion(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	snap, err := h.engine.AcceptSuggestion(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(snap)})
}

// RejectSuggestion POST /triage/session/reject.
func (h *TriageHandler) RejectSuggestion(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	snap, err := h.engine.RejectSuggestion(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(snap)})
}

// Back POST /triage/session/back.
func (h *TriageHandler) Back(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	snap, err := h.engine.Back(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(snap)})
}

// SubmitTicket POST /triage/session/ticket.
func (h *TriageHandler) SubmitTicket(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	snap, err := h.engine.SubmitTicket(c.UserContext(), session, triage.TicketInput{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sessionResponse(snap)})
}

// Reset POST /triage/session/reset.
func (h *TriageHandler) Reset(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	snap := h.engine.Reset(c.UserContext(), session)
	return c.JSON(fiber.Map{"data": sessionResponse(snap)})
}

// Abandon DELETE /triage/session.
func (h *TriageHandler) Abandon(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	h.engine.Reset(c.UserContext(), session)
	h.store.Delete(session.ID())
	return c.SendStatus(http.StatusNoContent)
}

func currentSession(c *fiber.Ctx) (*triage.Session, error) {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("session required")
	}
	return session, nil
}
