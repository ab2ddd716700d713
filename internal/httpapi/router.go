package httpapi

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/restaurant-service/internal/domain"
	"github.com/vladislavdragonenkov/restaurant-service/internal/metrics"
)

// DefaultMaxBodyBytes ограничивает размер тела запроса.
const DefaultMaxBodyBytes int64 = 1 << 20

// Options описывает зависимости HTTP-слоя.
type Options struct {
	Repo      domain.RestaurantRepository
	Publisher domain.EventPublisher
	Metrics   *metrics.ServiceMetrics
	Logger    *log.Entry
	// MaxBodyBytes <= 0 означает DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// NewRouter собирает маршруты и middleware сервиса.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("layer", "http")
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	h := NewRestaurantHandler(opts.Repo, opts.Publisher, logger)
	access := accessLog{logger: logger, metrics: opts.Metrics}

	r := mux.NewRouter()
	r.HandleFunc("/", h.Home).Methods(http.MethodGet)
	r.HandleFunc("/restaurants", h.List).Methods(http.MethodGet)
	r.HandleFunc("/restaurant", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/restaurant/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/restaurant/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/restaurant/{id}", h.Delete).Methods(http.MethodDelete)
	r.NotFoundHandler = access.middleware(http.HandlerFunc(h.NotFound))
	r.MethodNotAllowedHandler = access.middleware(http.HandlerFunc(h.MethodNotAllowed))
	r.Use(access.middleware, limitBody(maxBody))

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger),
		handlers.PrintRecoveryStack(true),
	)(withRequestID(cors(r)))
}

func limitBody(limit int64) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
