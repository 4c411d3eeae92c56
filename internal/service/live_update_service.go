package service

import (
	"context"

	"deepseek-chat-be/internal/pkg/logger"
	"deepseek-chat-be/pkg/events"
	pktNats "deepseek-chat-be/pkg/nats"
)

const liveUpdateDurable = "live-update-worker"

// EventSubscriber is implemented by the NATS subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error
}

// LiveUpdateService forwards bus events to the owner's websocket clients.
type LiveUpdateService struct {
	subscriber EventSubscriber
	delivery   LiveDelivery
	logger     logger.ILogger
}

func NewLiveUpdateService(sub EventSubscriber, delivery LiveDelivery, log logger.ILogger) *LiveUpdateService {
	return &LiveUpdateService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *LiveUpdateService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, pktNats.SubjectPrefix+">", liveUpdateDurable, s.handleEvent); err != nil {
		s.logger.Error("LiveUpdateService", "Failed to start subscriber", map[string]interface{}{"error": err})
		return err
	}
	s.logger.Info("LiveUpdateService", "Listening to events.>", nil)
	return nil
}

func (s *LiveUpdateService) handleEvent(_ context.Context, event events.Event) error {
	evt := events.FromEvent(event)
	userID := evt.UserID()
	if userID == "" {
		s.logger.Warn("LiveUpdateService", "Event without user_id dropped", map[string]interface{}{"type": evt.Type})
		return nil
	}
	s.delivery.Send(userID, evt)
	return nil
}
