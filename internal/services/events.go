package services

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Routing keys of the events published after a successful write.
const (
	EventUserCreated         = "user.created"
	EventUserUpdated         = "user.updated"
	EventUserPasswordChanged = "user.password_changed"
	EventUserDeleted         = "user.deleted"
)

// EventPublisher delivers domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// UserEvent is the payload of every user event. It never carries credentials.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publish is best-effort: the write already happened, so a broker failure is only logged.
func (s *UserService) publish(ctx context.Context, eventType, userID, name, email string) {
	if s.events == nil {
		return
	}

	body, err := json.Marshal(UserEvent{
		Type:       eventType,
		UserID:     userID,
		Name:       name,
		Email:      email,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}

	cctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.events.Publish(cctx, eventType, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for user %s: %v", eventType, userID, err)
		return
	}
	log.Printf("Published %s event for user %s", eventType, userID)
}
