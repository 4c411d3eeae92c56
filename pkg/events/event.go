package events

import "time"

const (
	ConversationCreated = "conversation.created"
	ConversationRenamed = "conversation.renamed"
	ConversationDeleted = "conversation.deleted"
	MessageAppended     = "message.appended"
	MessageGenerated    = "message.generated"
	MessageEdited       = "message.edited"
	MessageDeleted      = "message.deleted"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "message.generated").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// UserID returns the owner carried in the payload, or "".
func (e BaseEvent) UserID() string {
	id, _ := e.Data["user_id"].(string)
	return id
}

// NewConversationEvent stamps user_id and chat_id into data.
func NewConversationEvent(eventType, userID, chatID string, data map[string]interface{}) BaseEvent {
	payload := make(map[string]interface{}, len(data)+2)
	for k, v := range data {
		payload[k] = v
	}
	payload["user_id"] = userID
	payload["chat_id"] = chatID
	return BaseEvent{Type: eventType, Data: payload, OccurredAt: time.Now()}
}

// FromEvent copies any Event into a BaseEvent.
func FromEvent(e Event) BaseEvent {
	if b, ok := e.(BaseEvent); ok {
		return b
	}
	return BaseEvent{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()}
}
