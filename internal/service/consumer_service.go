package service

import (
	"context"
	"encoding/json"

	"deepseek-chat-be/internal/pkg/logger"
	"deepseek-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventRelay forwards events to the durable bus. Implemented by the NATS publisher.
type EventRelay interface {
	Publish(ctx context.Context, event events.Event) error
}

// LiveDelivery pushes events to a user's open sockets. Implemented by the websocket Hub.
type LiveDelivery interface {
	Send(userID string, event events.Event)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	relay      EventRelay
	delivery   LiveDelivery
	logger     logger.ILogger
}

// NewConsumerService drains the in-process topic. With a relay, events go to
// NATS and reach sockets through LiveUpdateService; without one (or when the
// relay fails) they are handed to delivery directly.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	relay EventRelay,
	delivery LiveDelivery,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		relay:      relay,
		delivery:   delivery,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event events.BaseEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal event", map[string]interface{}{"error": err})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if cs.relay != nil {
		err := cs.relay.Publish(ctx, event)
		if err == nil {
			msg.Ack()
			return
		}
		cs.logger.Warn("ConsumerService", "Relay failed, delivering locally", map[string]interface{}{
			"type":  event.Type,
			"error": err.Error(),
		})
	}

	if cs.delivery != nil {
		if userID := event.UserID(); userID != "" {
			cs.delivery.Send(userID, event)
		}
	}
	msg.Ack()
}
