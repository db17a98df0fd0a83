package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/supportbox/internal/api/http/handlers"
	"github.com/spec-kit/supportbox/internal/auth"
	"github.com/spec-kit/supportbox/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Triage            *handlers.TriageHandler
	Tickets           *handlers.TicketsHandler
	AgentTickets      *handlers.AgentTicketsHandler
	Assistant         *handlers.AssistantHandler
	SessionMiddleware *auth.SessionMiddleware
	Metrics           *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	triageGroup := app.Group("/triage")
	triageGroup.Post("/sessions", cfg.Triage.CreateSession)

	withSession := cfg.SessionMiddleware.Handle
	triageGroup.Get("/session", withSession, cfg.Triage.GetSession)
	triageGroup.Delete("/session", withSession, cfg.Triage.Abandon)
	triageGroup.Post("/session/problem", withSession, cfg.Triage.SubmitProblem)
	triageGroup.Post("/session/accept", withSession, cfg.Triage.AcceptSuggestion)
	triageGroup.Post("/session/reject", withSession, cfg.Triage.RejectSuggestion)
	triageGroup.Post("/session/back", withSession, cfg.Triage.Back)
	triageGroup.Post("/session/ticket", withSession, cfg.Triage.SubmitTicket)
	triageGroup.Post("/session/reset", withSession, cfg.Triage.Reset)

	app.Post("/assistant/messages", cfg.Assistant.Reply)

	tickets := app.Group("/tickets")
	tickets.Get("/:protocol", cfg.Tickets.GetTicket)
	tickets.Post("/:protocol/comments", cfg.Tickets.AddComment)

	agent := app.Group("/agent")
	agent.Get("/stats", cfg.AgentTickets.Stats)
	agent.Get("/tickets", cfg.AgentTickets.ListTickets)
	agent.Get("/tickets/:protocol", cfg.AgentTickets.GetTicket)
	agent.Post("/tickets/:protocol/start", cfg.AgentTickets.StartTicket)
	agent.Post("/tickets/:protocol/resolve", cfg.AgentTickets.ResolveTicket)
	agent.Post("/tickets/:protocol/reopen", cfg.AgentTickets.ReopenTicket)
	agent.Post("/tickets/:protocol/comments", cfg.AgentTickets.AddComment)
}
