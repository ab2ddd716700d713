package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/restaurant-service/internal/domain"
	"github.com/vladislavdragonenkov/restaurant-service/internal/storage/memory"
)

func newRestaurant() domain.Restaurant {
	return domain.Restaurant{
		Name:   "Pizza Place",
		Image:  "http://x/img.png",
		Menu:   []any{"margherita"},
		Rating: 4.5,
	}
}

func TestRestaurantRepository_CreateGetList(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRestaurantRepository()

	id, err := repo.Create(ctx, newRestaurant())
	require.NoError(t, err)
	require.NoError(t, domain.ValidateRestaurantID(id))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Pizza Place", got.Name)
	assert.Equal(t, []any{"margherita"}, got.Menu)

	second := newRestaurant()
	second.Name = "Sushi Bar"
	secondID, err := repo.Create(ctx, second)
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, secondID, list[1].ID)
}

func TestRestaurantRepository_ListEmpty(t *testing.T) {
	list, err := memory.NewRestaurantRepository().List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRestaurantRepository_GetNotFound(t *testing.T) {
	repo := memory.NewRestaurantRepository()

	_, err := repo.Get(context.Background(), domain.NewRestaurantID())
	assert.ErrorIs(t, err, domain.ErrRestaurantNotFound)

	_, err = repo.Get(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidRestaurantID)
}

func TestRestaurantRepository_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRestaurantRepository()
	id, err := repo.Create(ctx, newRestaurant())
	require.NoError(t, err)

	rating := 2.0
	modified, err := repo.Update(ctx, id, domain.RestaurantPatch{Rating: &rating})
	require.NoError(t, err)
	assert.True(t, modified)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Rating)
	assert.Equal(t, "Pizza Place", got.Name)
	assert.Equal(t, "http://x/img.png", got.Image)
	assert.Equal(t, []any{"margherita"}, got.Menu)
}

func TestRestaurantRepository_UpdateSameValues(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRestaurantRepository()
	id, err := repo.Create(ctx, newRestaurant())
	require.NoError(t, err)

	name := "Pizza Place"
	modified, err := repo.Update(ctx, id, domain.RestaurantPatch{Name: &name})
	require.NoError(t, err)
	assert.False(t, modified)
}

func TestRestaurantRepository_UpdateNotFound(t *testing.T) {
	name := "x"
	_, err := memory.NewRestaurantRepository().Update(context.Background(), domain.NewRestaurantID(), domain.RestaurantPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrRestaurantNotFound)
}

func TestRestaurantRepository_UpdateEmptyPatch(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRestaurantRepository()
	id, err := repo.Create(ctx, newRestaurant())
	require.NoError(t, err)

	_, err = repo.Update(ctx, id, domain.RestaurantPatch{})
	assert.ErrorIs(t, err, domain.ErrEmptyPatch)
}

func TestRestaurantRepository_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRestaurantRepository()
	id, err := repo.Create(ctx, newRestaurant())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), domain.ErrRestaurantNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRestaurantRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRestaurantRepository()
	id, err := repo.Create(ctx, newRestaurant())
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	got.Menu[0] = "mutated"

	again, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "margherita", again.Menu[0])
}

func TestRestaurantRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := memory.NewRestaurantRepository().List(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRestaurantRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRestaurantRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, newRestaurant())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

func TestRestaurantRepository_CreateRejectsBrokenInvariants(t *testing.T) {
	repo := memory.NewRestaurantRepository()

	_, err := repo.Create(context.Background(), domain.Restaurant{Name: "x", Image: "i", Rating: 7})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMenuRequired)
	assert.ErrorIs(t, err, domain.ErrRatingOutOfRange)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
