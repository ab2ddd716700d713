package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Restaurant — единственная сущность сервиса.
type Restaurant struct {
	// ID назначается хранилищем при создании (ObjectID в hex-представлении).
	ID     string  `json:"_id"`
	Name   string  `json:"name"`
	Image  string  `json:"image"`
	Menu   []any   `json:"menu"`
	Rating float64 `json:"rating"`
}

// RestaurantPatch описывает частичное обновление: nil означает «поле не передано».
type RestaurantPatch struct {
	Name  *string
	Image *string
	// Menu == nil — поле не передано; пустой массив передаётся как непустой срез нулевой длины.
	Menu   []any
	Rating *float64
}

// IsEmpty сообщает, что в патче нет ни одного поля.
func (p RestaurantPatch) IsEmpty() bool {
	return p.Name == nil && p.Image == nil && p.Menu == nil && p.Rating == nil
}

// Fields возвращает только переданные поля в виде имя -> значение.
func (p RestaurantPatch) Fields() map[string]any {
	fields := make(map[string]any, 4)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Image != nil {
		fields["image"] = *p.Image
	}
	if p.Menu != nil {
		fields["menu"] = p.Menu
	}
	if p.Rating != nil {
		fields["rating"] = *p.Rating
	}
	return fields
}

const (
	// MinRating и MaxRating задают допустимый диапазон рейтинга (включительно).
	MinRating = 0.0
	MaxRating = 5.0
)

// RatingInRange проверяет, что рейтинг лежит в [MinRating, MaxRating].
func RatingInRange(rating float64) bool {
	return rating >= MinRating && rating <= MaxRating
}

// ValidateInvariants проверяет инварианты ресторана перед сохранением.
func (r *Restaurant) ValidateInvariants() []error {
	var errs []error
	if r.Name == "" {
		errs = append(errs, ErrNameRequired)
	}
	if r.Image == "" {
		errs = append(errs, ErrImageRequired)
	}
	if r.Menu == nil {
		errs = append(errs, ErrMenuRequired)
	}
	if !RatingInRange(r.Rating) {
		errs = append(errs, ErrRatingOutOfRange)
	}
	return errs
}

// NewRestaurantID генерирует идентификатор в формате хранилища.
func NewRestaurantID() string {
	return primitive.NewObjectID().Hex()
}

// ValidateRestaurantID проверяет синтаксис идентификатора (24 hex-символа ObjectID).
func ValidateRestaurantID(id string) error {
	if !primitive.IsValidObjectID(id) {
		return ErrInvalidRestaurantID
	}
	return nil
}
