package app

import (
	"encoding/json"
	"fmt"
	"log"

	"usermgmt/internal/services"

	"github.com/streadway/amqp"
)

func logUserEvent(msg amqp.Delivery) error {
	var event services.UserEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("malformed user event: %w", err)
	}
	log.Printf("Received %s (tag %d) for user %s at %s", event.Type, msg.DeliveryTag, event.UserID, event.OccurredAt)
	return nil
}
