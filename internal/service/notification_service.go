package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/supportbox/internal/events"
)

// NotificationService turns domain events into the audit log the
// dashboard tails. Delivery to people (email, chat) is out of scope.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketCommentAdded,
		events.EventTriageDeflected,
		events.EventTriageEscalated,
		events.EventTriageGatewayFailed,
	} {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationService) handle(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("ticket_id", event.TicketID),
		zap.String("session_id", event.SessionID),
		zap.String("actor", string(event.Actor)),
		zap.Any("payload", event.Payload),
	)
	return nil
}
