package mongodb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vladislavdragonenkov/restaurant-service/internal/domain"
)

// restaurantDocument — представление ресторана в коллекции.
// Rating хранится как any: старые клиенты могли записать int или строку.
type restaurantDocument struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Name   string             `bson:"name"`
	Image  string             `bson:"image"`
	Menu   []any              `bson:"menu"`
	Rating any                `bson:"rating"`
}

type restaurantRepository struct {
	gw *Gateway
}

// NewRestaurantRepository создаёт MongoDB-реализацию RestaurantRepository.
func NewRestaurantRepository(gw *Gateway) domain.RestaurantRepository {
	return &restaurantRepository{gw: gw}
}

func (r *restaurantRepository) List(ctx context.Context) ([]domain.Restaurant, error) {
	var docs []restaurantDocument
	err := r.gw.withCollection(ctx, "find", func(ctx context.Context, coll *mongo.Collection) error {
		cursor, err := coll.Find(ctx, bson.D{})
		if err != nil {
			return fmt.Errorf("find restaurants: %w", err)
		}
		// cursor.All закрывает курсор сам, в том числе при ошибке.
		if err := cursor.All(ctx, &docs); err != nil {
			return fmt.Errorf("decode restaurants: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.Restaurant, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.toDomain())
	}
	return result, nil
}

func (r *restaurantRepository) Get(ctx context.Context, id string) (domain.Restaurant, error) {
	oid, err := parseID(id)
	if err != nil {
		return domain.Restaurant{}, err
	}

	var doc restaurantDocument
	err = r.gw.withCollection(ctx, "find_one", func(ctx context.Context, coll *mongo.Collection) error {
		err := coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrRestaurantNotFound
		}
		if err != nil {
			return fmt.Errorf("find restaurant %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return domain.Restaurant{}, err
	}
	return doc.toDomain(), nil
}

func (r *restaurantRepository) Create(ctx context.Context, restaurant domain.Restaurant) (string, error) {
	if errs := restaurant.ValidateInvariants(); len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	doc := restaurantDocument{
		Name:   restaurant.Name,
		Image:  restaurant.Image,
		Menu:   restaurant.Menu,
		Rating: restaurant.Rating,
	}
	if doc.Menu == nil {
		doc.Menu = []any{}
	}

	var id string
	err := r.gw.withCollection(ctx, "insert_one", func(ctx context.Context, coll *mongo.Collection) error {
		res, err := coll.InsertOne(ctx, doc)
		if err != nil {
			return fmt.Errorf("insert restaurant: %w", err)
		}
		oid, ok := res.InsertedID.(primitive.ObjectID)
		if !ok {
			return fmt.Errorf("insert restaurant: unexpected id type %T", res.InsertedID)
		}
		id = oid.Hex()
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *restaurantRepository) Update(ctx context.Context, id string, patch domain.RestaurantPatch) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	set := setDocument(patch)
	if len(set) == 0 {
		return false, domain.ErrEmptyPatch
	}

	var modified bool
	err = r.gw.withCollection(ctx, "update_one", func(ctx context.Context, coll *mongo.Collection) error {
		res, err := coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}})
		if err != nil {
			return fmt.Errorf("update restaurant %s: %w", id, err)
		}
		// MatchedCount, а не ModifiedCount: совпадение значений не означает отсутствие документа.
		if res.MatchedCount == 0 {
			return domain.ErrRestaurantNotFound
		}
		modified = res.ModifiedCount > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return modified, nil
}

func (r *restaurantRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	return r.gw.withCollection(ctx, "delete_one", func(ctx context.Context, coll *mongo.Collection) error {
		res, err := coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
		if err != nil {
			return fmt.Errorf("delete restaurant %s: %w", id, err)
		}
		if res.DeletedCount == 0 {
			return domain.ErrRestaurantNotFound
		}
		return nil
	})
}

// parseID проверяет id до открытия подключения.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidRestaurantID
	}
	return oid, nil
}

// setDocument собирает $set только из переданных полей, в фиксированном порядке.
func setDocument(patch domain.RestaurantPatch) bson.D {
	set := bson.D{}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Image != nil {
		set = append(set, bson.E{Key: "image", Value: *patch.Image})
	}
	if patch.Menu != nil {
		set = append(set, bson.E{Key: "menu", Value: patch.Menu})
	}
	if patch.Rating != nil {
		set = append(set, bson.E{Key: "rating", Value: *patch.Rating})
	}
	return set
}

func (d restaurantDocument) toDomain() domain.Restaurant {
	menu := d.Menu
	if menu == nil {
		menu = []any{}
	}
	return domain.Restaurant{
		ID:     d.ID.Hex(),
		Name:   d.Name,
		Image:  d.Image,
		Menu:   menu,
		Rating: ratingFromBSON(d.Rating),
	}
}

// ratingFromBSON приводит сохранённый рейтинг к float64 в диапазоне [0,5].
// Нечисловые, NaN и бесконечные значения дают 0, значения вне диапазона
// прижимаются к ближайшей границе.
func ratingFromBSON(v any) float64 {
	var rating float64
	switch value := v.(type) {
	case float64:
		rating = value
	case float32:
		rating = float64(value)
	case int32:
		rating = float64(value)
	case int64:
		rating = float64(value)
	case int:
		rating = float64(value)
	case primitive.Decimal128:
		parsed, err := strconv.ParseFloat(value.String(), 64)
		if err != nil {
			return 0
		}
		rating = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		rating = parsed
	default:
		return 0
	}

	switch {
	case math.IsNaN(rating), math.IsInf(rating, 0):
		return 0
	case rating < domain.MinRating:
		return domain.MinRating
	case rating > domain.MaxRating:
		return domain.MaxRating
	}
	return rating
}

var _ domain.RestaurantRepository = (*restaurantRepository)(nil)
