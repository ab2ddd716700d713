package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/restaurant-service/internal/domain"
)

// DefaultTopic — топик событий изменения ресторанов.
const DefaultTopic = "restaurants.events"

// RestaurantEventMessage — формат сообщения в топике.
type RestaurantEventMessage struct {
	EventType    string         `json:"event_type"`
	RestaurantID string         `json:"restaurant_id"`
	Timestamp    time.Time      `json:"timestamp"`
	Fields       map[string]any `json:"fields,omitempty"`
}

// NewRestaurantEventMessage переводит доменное событие в сообщение.
func NewRestaurantEventMessage(event domain.RestaurantEvent) *RestaurantEventMessage {
	ts := event.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &RestaurantEventMessage{
		EventType:    string(event.Type),
		RestaurantID: event.RestaurantID,
		Timestamp:    ts,
		Fields:       event.Fields,
	}
}
