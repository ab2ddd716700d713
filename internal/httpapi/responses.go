package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

const (
	msgRestaurantAdded   = "Restaurant added successfully"
	msgRestaurantUpdated = "Restaurant updated successfully"
	msgRestaurantDeleted = "Restaurant deleted successfully"
	msgNotFound          = "Restaurant not found"
	msgInternal          = "Internal server error"
)

type messageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Errors []FieldError `json:"errors"`
}

// writeJSON кодирует тело до отправки статуса: ошибка кодирования
// превращается в 500, а не в 200 с пустым телом.
func writeJSON(w http.ResponseWriter, status int, body any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		log.WithError(err).WithField("layer", "http").Error("failed to encode response")
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(messageResponse{Message: msgInternal})
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

func writeValidation(w http.ResponseWriter, status int, errs []FieldError) {
	writeJSON(w, status, validationResponse{Errors: errs})
}
