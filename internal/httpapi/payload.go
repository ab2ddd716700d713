package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/vladislavdragonenkov/restaurant-service/internal/domain"
)

// FieldError — одно нарушение правила валидации. Формат совместим
// с клиентами, ожидающими ответ express-validator.
type FieldError struct {
	Type     string          `json:"type"`
	Value    json.RawMessage `json:"value,omitempty"`
	Msg      string          `json:"msg"`
	Path     string          `json:"path,omitempty"`
	Location string          `json:"location"`
}

const (
	msgNameRequired  = "Name is required"
	msgNameEmpty     = "Name cannot be empty"
	msgImageRequired = "Image URL is required"
	msgImageEmpty    = "Image URL cannot be empty"
	msgMenuArray     = "Menu must be an array"
	msgRatingRange   = "Rating must be between 0 and 5"
	msgInvalidID     = "Invalid restaurant id"
	msgBodyObject    = "Request body must be a JSON object"
	msgBodyTooLarge  = "Request body is too large"
	msgEmptyUpdate   = "At least one of name, image, menu, rating must be provided"
)

var jsonNull = []byte("null")

func bodyError(msg string) FieldError {
	return FieldError{Type: "body", Msg: msg, Location: "body"}
}

func fieldError(path, msg string, raw json.RawMessage) FieldError {
	return FieldError{Type: "field", Value: raw, Msg: msg, Path: path, Location: "body"}
}

func idError(id string) FieldError {
	raw, _ := json.Marshal(id)
	return FieldError{Type: "field", Value: raw, Msg: msgInvalidID, Path: "id", Location: "params"}
}

// decodeBody читает тело как один JSON-объект. Пустое тело равносильно {},
// данные после объекта считаются ошибкой.
// Второй результат — HTTP-статус ошибки (400 или 413).
func decodeBody(r *http.Request) (map[string]json.RawMessage, int, *FieldError) {
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&fields)
	if errors.Is(err, io.EOF) {
		return map[string]json.RawMessage{}, 0, nil
	}
	if err == nil {
		// Ожидаем конец тела после объекта.
		if trailing := dec.Decode(&json.RawMessage{}); !errors.Is(trailing, io.EOF) {
			err = errTrailingData
			if trailing != nil {
				err = trailing
			}
		}
	}
	switch {
	case err != nil:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fe := bodyError(msgBodyTooLarge)
			return nil, http.StatusRequestEntityTooLarge, &fe
		}
		fe := bodyError(msgBodyObject)
		return nil, http.StatusBadRequest, &fe
	case fields == nil:
		// Тело "null".
		fe := bodyError(msgBodyObject)
		return nil, http.StatusBadRequest, &fe
	}
	return fields, 0, nil
}

var errTrailingData = errors.New("unexpected data after JSON object")

// parseCreate проверяет все четыре правила и возвращает все нарушения сразу.
func parseCreate(fields map[string]json.RawMessage) (domain.Restaurant, []FieldError) {
	var (
		restaurant domain.Restaurant
		errs       []FieldError
	)

	if name, ok := nonEmptyString(fields["name"]); ok {
		restaurant.Name = name
	} else {
		errs = append(errs, fieldError("name", msgNameRequired, fields["name"]))
	}
	if image, ok := nonEmptyString(fields["image"]); ok {
		restaurant.Image = image
	} else {
		errs = append(errs, fieldError("image", msgImageRequired, fields["image"]))
	}
	if menu, ok := array(fields["menu"]); ok {
		restaurant.Menu = menu
	} else {
		errs = append(errs, fieldError("menu", msgMenuArray, fields["menu"]))
	}
	if rating, ok := rating(fields["rating"]); ok {
		restaurant.Rating = rating
	} else {
		errs = append(errs, fieldError("rating", msgRatingRange, fields["rating"]))
	}

	return restaurant, errs
}

// parsePatch применяет те же правила, но только к переданным полям.
func parsePatch(fields map[string]json.RawMessage) (domain.RestaurantPatch, []FieldError) {
	var (
		patch domain.RestaurantPatch
		errs  []FieldError
	)

	if raw, present := fields["name"]; present {
		if name, ok := nonEmptyString(raw); ok {
			patch.Name = &name
		} else {
			errs = append(errs, fieldError("name", msgNameEmpty, raw))
		}
	}
	if raw, present := fields["image"]; present {
		if image, ok := nonEmptyString(raw); ok {
			patch.Image = &image
		} else {
			errs = append(errs, fieldError("image", msgImageEmpty, raw))
		}
	}
	if raw, present := fields["menu"]; present {
		if menu, ok := array(raw); ok {
			patch.Menu = menu
		} else {
			errs = append(errs, fieldError("menu", msgMenuArray, raw))
		}
	}
	if raw, present := fields["rating"]; present {
		if value, ok := rating(raw); ok {
			patch.Rating = &value
		} else {
			errs = append(errs, fieldError("rating", msgRatingRange, raw))
		}
	}

	if len(errs) == 0 && patch.IsEmpty() {
		errs = append(errs, bodyError(msgEmptyUpdate))
	}
	return patch, errs
}

func nonEmptyString(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, s != ""
}

// array принимает только JSON-массив; пустой массив допустим.
func array(raw json.RawMessage) ([]any, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var items []any
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}
	if items == nil {
		items = []any{}
	}
	return items, true
}

// rating принимает только JSON-число в [0,5].
func rating(raw json.RawMessage) (float64, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return 0, false
	}
	var value float64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return 0, false
	}
	return value, domain.RatingInRange(value)
}
