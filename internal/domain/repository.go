package domain

import "context"

// RestaurantRepository описывает требования к хранилищу ресторанов.
// Каждый вызов — ровно одна операция над коллекцией.
type RestaurantRepository interface {
	// List возвращает все документы в порядке, который отдаёт хранилище.
	List(ctx context.Context) ([]Restaurant, error)
	// Get возвращает ресторан по id или ErrRestaurantNotFound.
	Get(ctx context.Context, id string) (Restaurant, error)
	// Create сохраняет новый ресторан и возвращает назначенный хранилищем id.
	Create(ctx context.Context, restaurant Restaurant) (string, error)
	// Update применяет только переданные поля. modified=false, если документ найден,
	// но значения не изменились. ErrRestaurantNotFound, если документа нет.
	Update(ctx context.Context, id string, patch RestaurantPatch) (modified bool, err error)
	// Delete удаляет документ или возвращает ErrRestaurantNotFound.
	Delete(ctx context.Context, id string) error
}
