package domain

import (
	"context"
	"time"
)

// RestaurantEventType определяет тип события изменения ресторана.
type RestaurantEventType string

const (
	RestaurantCreated RestaurantEventType = "restaurant.created"
	RestaurantUpdated RestaurantEventType = "restaurant.updated"
	RestaurantDeleted RestaurantEventType = "restaurant.deleted"
)

// RestaurantEvent фиксирует успешное изменение коллекции.
type RestaurantEvent struct {
	Type         RestaurantEventType
	RestaurantID string
	// Fields содержит записанные поля (для delete пусто).
	Fields     map[string]any
	OccurredAt time.Time
}

// EventPublisher публикует события наружу. Публикация best effort:
// ошибка не должна влиять на ответ клиенту.
type EventPublisher interface {
	PublishRestaurantEvent(ctx context.Context, event RestaurantEvent) error
}

// NoopPublisher — публикатор по умолчанию, когда брокер не настроен.
type NoopPublisher struct{}

// PublishRestaurantEvent ничего не делает.
func (NoopPublisher) PublishRestaurantEvent(context.Context, RestaurantEvent) error { return nil }
