package memory

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"github.com/vladislavdragonenkov/restaurant-service/internal/domain"
)

// restaurantRepositoryInMemory — in-memory реализация RestaurantRepository.
// Порядок List совпадает с порядком вставки, как у коллекции без сортировки.
type restaurantRepositoryInMemory struct {
	mu    sync.RWMutex
	order []string
	items map[string]domain.Restaurant
}

// NewRestaurantRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewRestaurantRepository() domain.RestaurantRepository {
	return &restaurantRepositoryInMemory{
		items: make(map[string]domain.Restaurant),
	}
}

func (r *restaurantRepositoryInMemory) List(ctx context.Context) ([]domain.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Restaurant, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, cloneRestaurant(r.items[id]))
	}
	return result, nil
}

func (r *restaurantRepositoryInMemory) Get(ctx context.Context, id string) (domain.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return domain.Restaurant{}, err
	}
	if err := domain.ValidateRestaurantID(id); err != nil {
		return domain.Restaurant{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	restaurant, ok := r.items[id]
	if !ok {
		return domain.Restaurant{}, domain.ErrRestaurantNotFound
	}
	return cloneRestaurant(restaurant), nil
}

// Create присваивает новый ObjectID; переданный ID игнорируется.
func (r *restaurantRepositoryInMemory) Create(ctx context.Context, restaurant domain.Restaurant) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if errs := restaurant.ValidateInvariants(); len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	restaurant.ID = domain.NewRestaurantID()
	r.items[restaurant.ID] = cloneRestaurant(restaurant)
	r.order = append(r.order, restaurant.ID)
	return restaurant.ID, nil
}

func (r *restaurantRepositoryInMemory) Update(ctx context.Context, id string, patch domain.RestaurantPatch) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := domain.ValidateRestaurantID(id); err != nil {
		return false, err
	}
	if patch.IsEmpty() {
		return false, domain.ErrEmptyPatch
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return false, domain.ErrRestaurantNotFound
	}

	updated := cloneRestaurant(current)
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Image != nil {
		updated.Image = *patch.Image
	}
	if patch.Menu != nil {
		updated.Menu = cloneMenu(patch.Menu)
	}
	if patch.Rating != nil {
		updated.Rating = *patch.Rating
	}

	if reflect.DeepEqual(current, updated) {
		return false, nil
	}
	r.items[id] = updated
	return true, nil
}

func (r *restaurantRepositoryInMemory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := domain.ValidateRestaurantID(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrRestaurantNotFound
	}
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// cloneRestaurant копирует срез меню, чтобы вызывающий код не мутировал хранилище.
func cloneRestaurant(restaurant domain.Restaurant) domain.Restaurant {
	restaurant.Menu = cloneMenu(restaurant.Menu)
	return restaurant
}

func cloneMenu(menu []any) []any {
	if menu == nil {
		return []any{}
	}
	out := make([]any, len(menu))
	copy(out, menu)
	return out
}

var _ domain.RestaurantRepository = (*restaurantRepositoryInMemory)(nil)
