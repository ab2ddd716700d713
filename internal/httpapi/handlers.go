package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/restaurant-service/internal/domain"
)

const homePage = "<h1>Hello World!</h1>"

// RestaurantHandler обслуживает CRUD-маршруты ресторанов.
type RestaurantHandler struct {
	repo      domain.RestaurantRepository
	publisher domain.EventPublisher
	logger    *log.Entry
	now       func() time.Time
}

// NewRestaurantHandler создаёт обработчик. publisher может быть nil.
func NewRestaurantHandler(repo domain.RestaurantRepository, publisher domain.EventPublisher, logger *log.Entry) *RestaurantHandler {
	if publisher == nil {
		publisher = domain.NoopPublisher{}
	}
	if logger == nil {
		logger = log.WithField("layer", "http")
	}
	return &RestaurantHandler{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Home отвечает статической приветственной страницей.
func (h *RestaurantHandler) Home(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(homePage))
}

// List возвращает все рестораны.
func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.repo.List(r.Context())
	if err != nil {
		h.internalError(w, r, "list restaurants", err)
		return
	}
	if restaurants == nil {
		restaurants = []domain.Restaurant{}
	}
	writeJSON(w, http.StatusOK, restaurants)
}

// Get возвращает ресторан по id.
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := domain.ValidateRestaurantID(id); err != nil {
		writeValidation(w, http.StatusBadRequest, []FieldError{idError(id)})
		return
	}

	restaurant, err := h.repo.Get(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, restaurant)
	case domain.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgNotFound})
	case errors.Is(err, domain.ErrInvalidRestaurantID):
		writeValidation(w, http.StatusBadRequest, []FieldError{idError(id)})
	default:
		h.internalError(w, r, "get restaurant", err)
	}
}

// Create валидирует тело и сохраняет новый ресторан.
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, status, bodyErr := decodeBody(r)
	if bodyErr != nil {
		writeValidation(w, status, []FieldError{*bodyErr})
		return
	}

	restaurant, errs := parseCreate(fields)
	if len(errs) > 0 {
		writeValidation(w, http.StatusBadRequest, errs)
		return
	}

	id, err := h.repo.Create(r.Context(), restaurant)
	if err != nil {
		h.internalError(w, r, "create restaurant", err)
		return
	}

	h.publish(r, domain.RestaurantCreated, id, map[string]any{
		"name":   restaurant.Name,
		"image":  restaurant.Image,
		"menu":   restaurant.Menu,
		"rating": restaurant.Rating,
	})
	writeJSON(w, http.StatusCreated, messageResponse{Message: msgRestaurantAdded, ID: id})
}

// Update применяет переданные поля к существующему ресторану.
func (h *RestaurantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var errs []FieldError
	if err := domain.ValidateRestaurantID(id); err != nil {
		errs = append(errs, idError(id))
	}

	fields, status, bodyErr := decodeBody(r)
	if bodyErr != nil {
		writeValidation(w, status, append(errs, *bodyErr))
		return
	}

	patch, patchErrs := parsePatch(fields)
	errs = append(errs, patchErrs...)
	if len(errs) > 0 {
		writeValidation(w, http.StatusBadRequest, errs)
		return
	}

	modified, err := h.repo.Update(r.Context(), id, patch)
	switch {
	case err == nil:
	case domain.IsNotFound(err):
		writeMessage(w, http.StatusNotFound, msgNotFound)
		return
	case errors.Is(err, domain.ErrInvalidRestaurantID):
		writeValidation(w, http.StatusBadRequest, []FieldError{idError(id)})
		return
	case errors.Is(err, domain.ErrEmptyPatch):
		writeValidation(w, http.StatusBadRequest, []FieldError{bodyError(msgEmptyUpdate)})
		return
	default:
		h.internalError(w, r, "update restaurant", err)
		return
	}

	if modified {
		h.publish(r, domain.RestaurantUpdated, id, patch.Fields())
	}
	writeMessage(w, http.StatusOK, msgRestaurantUpdated)
}

// Delete удаляет ресторан по id.
func (h *RestaurantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := domain.ValidateRestaurantID(id); err != nil {
		writeValidation(w, http.StatusBadRequest, []FieldError{idError(id)})
		return
	}

	err := h.repo.Delete(r.Context(), id)
	switch {
	case err == nil:
		h.publish(r, domain.RestaurantDeleted, id, nil)
		writeMessage(w, http.StatusOK, msgRestaurantDeleted)
	case domain.IsNotFound(err):
		writeMessage(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, domain.ErrInvalidRestaurantID):
		writeValidation(w, http.StatusBadRequest, []FieldError{idError(id)})
	default:
		h.internalError(w, r, "delete restaurant", err)
	}
}

// NotFound отвечает на неизвестные маршруты.
func (h *RestaurantHandler) NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
}

// MethodNotAllowed отвечает на известный путь с неподдерживаемым методом.
func (h *RestaurantHandler) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
}

// internalError логирует причину и отдаёт клиенту обезличенный ответ.
func (h *RestaurantHandler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.WithError(err).WithFields(log.Fields{
		"operation":  op,
		"request_id": RequestIDFromContext(r.Context()),
	}).Error("store operation failed")
	writeMessage(w, http.StatusInternalServerError, msgInternal)
}

// publish отправляет событие; ошибка только логируется.
func (h *RestaurantHandler) publish(r *http.Request, eventType domain.RestaurantEventType, id string, fields map[string]any) {
	event := domain.RestaurantEvent{
		Type:         eventType,
		RestaurantID: id,
		Fields:       fields,
		OccurredAt:   h.now(),
	}
	// Отмена клиентом не должна прерывать публикацию уже записанного изменения.
	ctx := context.WithoutCancel(r.Context())
	if err := h.publisher.PublishRestaurantEvent(ctx, event); err != nil {
		h.logger.WithError(err).WithFields(log.Fields{
			"event_type":    eventType,
			"restaurant_id": id,
		}).Warn("failed to publish restaurant event")
	}
}
