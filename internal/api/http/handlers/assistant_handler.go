package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/supportbox/internal/api/dto"
	"github.com/spec-kit/supportbox/internal/service"
	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

// AssistantHandler backs the floating help chat.
type AssistantHandler struct {
	service *service.AssistantService
}

// NewAssistantHandler constructs handler.
func NewAssistantHandler(assistant *service.AssistantService) *AssistantHandler {
	return &AssistantHandler{service: assistant}
}

// Reply POST /assistant/messages.
func (h *AssistantHandler) Reply(c *fiber.Ctx) error {
	var req dto.AssistantMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	reply, err := h.service.Reply(c.UserContext(), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AssistantMessageResponse{
		Reply:    reply.Text,
		Degraded: reply.Degraded,
	}})
}
