package worker

import (
	"github.com/spec-kit/supportbox/internal/service"
)

// StartNotificationWorker registers the event log handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
