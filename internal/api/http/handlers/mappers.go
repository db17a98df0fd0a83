package handlers

import (
	"strings"

	"github.com/spec-kit/supportbox/internal/api/dto"
	"github.com/spec-kit/supportbox/internal/domain"
	"github.com/spec-kit/supportbox/internal/service"
	"github.com/spec-kit/supportbox/internal/triage"
)

var statusLabels = map[domain.TicketStatus]string{
	domain.TicketStatusOpen:       "Aguardando",
	domain.TicketStatusInProgress: "Em Andamento",
	domain.TicketStatusResolved:   "Concluído",
}

var categoryLabels = map[domain.TicketCategory]string{
	domain.CategoryHardware: "Hardware",
	domain.CategorySoftware: "Software",
	domain.CategoryAccess:   "Acesso",
	domain.CategoryNetwork:  "Rede",
}

func categoryOptions() []dto.CategoryOption {
	options := make([]dto.CategoryOption, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		options = append(options, dto.CategoryOption{Value: c, Label: categoryLabels[c]})
	}
	return options
}

func sessionResponse(s triage.Snapshot) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:                 s.ID,
		Version:            s.Version,
		Step:               string(s.Step),
		Busy:               s.Busy,
		ProblemDescription: s.ProblemDescription,
		AISuggestion:       s.AISuggestion,
		TicketType:         s.TicketType,
		Title:              s.Title,
		Category:           s.Category,
		Priority:           s.Priority,
		Escalated:          s.Escalated,
		IntakeReason:       s.IntakeReason,
		RejectedSuggestion: s.RejectedSuggestion,
		Notice:             s.Notice,
		ProtocolID:         s.ProtocolID,
		Resolution:         string(s.Resolution),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	if s.Step == triage.StepFormalIntake {
		resp.Categories = categoryOptions()
	}
	return resp
}

func ticketSummary(t *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:         t.ID,
		ProtocolID: t.ProtocolID,
		Type:       t.Type,
		Title:      t.Title,
		Category:   t.Category,
		Priority:   t.Priority,
		Status:     t.Status,
		StatusText: statusLabels[t.Status],
		Origin:     t.Origin,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func ticketDetail(detail *service.TicketDetail) dto.TicketDetailResponse {
	comments := make([]dto.TicketCommentResponse, 0, len(detail.Comments))
	for i := range detail.Comments {
		comments = append(comments, ticketComment(&detail.Comments[i]))
	}
	return dto.TicketDetailResponse{
		TicketSummary: ticketSummary(&detail.Ticket),
		Description:   detail.Ticket.Description,
		ResolvedAt:    detail.Ticket.ResolvedAt,
		Comments:      comments,
	}
}

func ticketComment(c *domain.TicketComment) dto.TicketCommentResponse {
	return dto.TicketCommentResponse{
		ID:         c.ID,
		AuthorType: c.AuthorType,
		Body:       c.Body,
		CreatedAt:  c.CreatedAt,
	}
}

// splitList parses comma separated query values.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
