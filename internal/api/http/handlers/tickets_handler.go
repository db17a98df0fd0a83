package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/supportbox/internal/api/dto"
	"github.com/spec-kit/supportbox/internal/domain"
	"github.com/spec-kit/supportbox/internal/service"
	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

// TicketsHandler serves the requester's view of a registered ticket.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// GetTicket GET /tickets/:protocol.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	detail, err := h.service.GetTicket(c.UserContext(), c.Params("protocol"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(detail)})
}

// AddComment POST /tickets/:protocol/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	return addComment(c, h.service, domain.AuthorTypeRequester)
}

func addComment(c *fiber.Ctx, svc *service.TicketService, author domain.CommentAuthorType) error {
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := svc.AddComment(c.UserContext(), c.Params("protocol"), author, req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketComment(comment)})
}
