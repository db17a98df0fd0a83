package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/supportbox/internal/api/dto"
	"github.com/spec-kit/supportbox/internal/domain"
	"github.com/spec-kit/supportbox/internal/service"
	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

const maxPageSize = 100

// AgentTicketsHandler manages the agent queue endpoints.
type AgentTicketsHandler struct {
	service *service.TicketService
}

// NewAgentTicketsHandler constructs handler.
func NewAgentTicketsHandler(ticketService *service.TicketService) *AgentTicketsHandler {
	return &AgentTicketsHandler{service: ticketService}
}

// ListTickets GET /agent/tickets.
func (h *AgentTicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter, err := parseAgentTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /agent/tickets/:protocol.
func (h *AgentTicketsHandler) GetTicket(c *fiber.Ctx) error {
	detail, err := h.service.GetTicket(c.UserContext(), c.Params("protocol"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(detail)})
}

// StartTicket POST /agent/tickets/:protocol/start.
func (h *AgentTicketsHandler) StartTicket(c *fiber.Ctx) error {
	ticket, err := h.service.StartTicket(c.UserContext(), c.Params("protocol"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ResolveTicket POST /agent/tickets/:protocol/resolve.
func (h *AgentTicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	ticket, err := h.service.ResolveTicket(c.UserContext(), c.Params("protocol"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ReopenTicket POST /agent/tickets/:protocol/reopen.
func (h *AgentTicketsHandler) ReopenTicket(c *fiber.Ctx) error {
	ticket, err := h.service.ReopenTicket(c.UserContext(), c.Params("protocol"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AddComment POST /agent/tickets/:protocol/comments.
func (h *AgentTicketsHandler) AddComment(c *fiber.Ctx) error {
	return addComment(c, h.service, domain.AuthorTypeAgent)
}

// Stats GET /agent/stats.
func (h *AgentTicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketStatsResponse{
		Open:       stats.Open,
		InProgress: stats.InProgress,
		Resolved:   stats.Resolved,
		Urgent:     stats.Urgent,
	}})
}

func parseAgentTicketQuery(c *fiber.Ctx) (service.TicketListFilter, error) {
	filter := service.TicketListFilter{Search: c.Query("q")}
	for _, raw := range splitList(c.Query("status")) {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			return filter, apperrors.NewValidationError("invalid status filter", map[string]any{"status": raw})
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, raw := range splitList(c.Query("type")) {
		ticketType, ok := domain.ParseTicketType(raw)
		if !ok {
			return filter, apperrors.NewValidationError("invalid type filter", map[string]any{"type": raw})
		}
		filter.Types = append(filter.Types, ticketType)
	}
	for _, raw := range splitList(c.Query("priority")) {
		priority, ok := domain.ParsePriority(raw)
		if !ok {
			return filter, apperrors.NewValidationError("invalid priority filter", map[string]any{"priority": raw})
		}
		filter.Priorities = append(filter.Priorities, priority)
	}
	for _, raw := range splitList(c.Query("category")) {
		category, ok := domain.ParseCategory(raw)
		if !ok {
			return filter, apperrors.NewValidationError("invalid category filter", map[string]any{"category": raw})
		}
		filter.Categories = append(filter.Categories, category)
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filter, apperrors.NewValidationError("invalid limit", nil)
		}
		filter.Limit = min(n, maxPageSize)
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, apperrors.NewValidationError("invalid offset", nil)
		}
		filter.Offset = n
	}
	return filter, nil
}
