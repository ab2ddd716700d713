package kafka

import (
	"context"

	"github.com/vladislavdragonenkov/restaurant-service/internal/domain"
)

// PublishRecorder учитывает результат публикации (реализуется metrics.ServiceMetrics).
type PublishRecorder interface {
	RecordEventPublished(eventType string)
	RecordEventFailed(eventType string)
}

// RestaurantPublisher публикует события ресторанов через Producer.
type RestaurantPublisher struct {
	producer *Producer
	topic    string
	recorder PublishRecorder
}

// NewRestaurantPublisher создаёт публикатор; пустой topic заменяется на DefaultTopic.
func NewRestaurantPublisher(producer *Producer, topic string, recorder PublishRecorder) *RestaurantPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &RestaurantPublisher{
		producer: producer,
		topic:    topic,
		recorder: recorder,
	}
}

// PublishRestaurantEvent отправляет событие с ключом restaurant_id,
// чтобы события одного ресторана попадали в одну партицию.
func (p *RestaurantPublisher) PublishRestaurantEvent(ctx context.Context, event domain.RestaurantEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.producer.PublishEvent(p.topic, event.RestaurantID, NewRestaurantEventMessage(event))
	if p.recorder != nil {
		if err != nil {
			p.recorder.RecordEventFailed(string(event.Type))
		} else {
			p.recorder.RecordEventPublished(string(event.Type))
		}
	}
	return err
}

var _ domain.EventPublisher = (*RestaurantPublisher)(nil)
