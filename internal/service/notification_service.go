package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Raj-Randive/soar-school-management-system/internal/events"
)

// NotificationService fans domain events out to the log and, when configured,
// to the message broker.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	forward    events.EventHandler
}

// NewNotificationService creates the service. forward may be nil.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, forward events.EventHandler) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		forward:    forward,
	}
}

// RegisterHandlers subscribes to every event type.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	events.SubscribeAll(n.dispatcher, n.logEvent)
	if n.forward != nil {
		events.SubscribeAll(n.dispatcher, n.forwardEvent)
	}
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("school_id", event.SchoolID),
		zap.String("resource_id", event.ResourceID),
		zap.String("actor_id", event.Actor.UserID))
	return nil
}

func (n *NotificationService) forwardEvent(ctx context.Context, event events.Event) error {
	// Broker delivery must not fail the request that produced the event.
	if err := n.forward(ctx, event); err != nil {
		n.logger.Debug("event not forwarded", zap.String("event_id", event.ID), zap.Error(err))
	}
	return nil
}
