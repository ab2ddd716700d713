package domain

import "errors"

var (
	// ErrRestaurantNotFound возвращается, если документ с таким id отсутствует.
	ErrRestaurantNotFound = errors.New("restaurant not found")
	// ErrInvalidRestaurantID — id не является корректным ObjectID.
	ErrInvalidRestaurantID = errors.New("invalid restaurant id")
	// Ошибка пустого названия.
	ErrNameRequired = errors.New("name is required")
	// Ошибка пустой ссылки на изображение.
	ErrImageRequired = errors.New("image is required")
	// Ошибка отсутствующего меню.
	ErrMenuRequired = errors.New("menu must be an array")
	// Ошибка рейтинга вне диапазона [0,5].
	ErrRatingOutOfRange = errors.New("rating must be between 0 and 5")
	// ErrEmptyPatch — в обновлении нет ни одного поля.
	ErrEmptyPatch = errors.New("update must contain at least one field")
	// ErrStoreUnavailable — хранилище недоступно (не удалось подключиться).
	ErrStoreUnavailable = errors.New("document store unavailable")
)

// IsNotFound проверяет, является ли ошибка отсутствием ресторана.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRestaurantNotFound)
}
