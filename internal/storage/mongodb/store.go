package mongodb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/vladislavdragonenkov/restaurant-service/internal/domain"
	"github.com/vladislavdragonenkov/restaurant-service/internal/metrics"
)

const (
	defaultURI              = "mongodb://localhost:27017/food-delivery-app"
	defaultDatabase         = "food-delivery-app"
	defaultCollection       = "restaurants"
	defaultConnectTimeout   = 5 * time.Second
	defaultOperationTimeout = 10 * time.Second
	disconnectTimeout       = 5 * time.Second
)

// Config описывает цель подключения к хранилищу документов.
type Config struct {
	URI string
	// Database — имя базы; пустое значение берётся из пути URI.
	Database   string
	Collection string
	// ConnectTimeout ограничивает установку соединения и выбор сервера.
	ConnectTimeout time.Duration
	// OperationTimeout ограничивает весь цикл запроса: connect, операция, disconnect.
	OperationTimeout time.Duration
}

// DefaultConfig возвращает адрес локального MongoDB и коллекцию restaurants.
func DefaultConfig() Config {
	return Config{
		URI:              defaultURI,
		Collection:       defaultCollection,
		ConnectTimeout:   defaultConnectTimeout,
		OperationTimeout: defaultOperationTimeout,
	}
}

// OperationObserver получает исход каждого обращения к хранилищу.
type OperationObserver interface {
	ObserveStoreOperation(operation, outcome string, duration time.Duration)
}

// Gateway открывает отдельное подключение на каждый запрос и гарантированно
// закрывает его на любом пути выхода.
type Gateway struct {
	cfg        Config
	clientOpts *options.ClientOptions
	observer   OperationObserver
	logger     *log.Entry
}

// NewGateway проверяет конфигурацию и подготавливает опции клиента.
// Подключение к серверу здесь не выполняется.
func NewGateway(cfg Config, observer OperationObserver, logger *log.Entry) (*Gateway, error) {
	if logger == nil {
		logger = log.WithField("component", "mongo-gateway")
	}
	cfg.URI = strings.TrimSpace(cfg.URI)
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = databaseFromURI(cfg.URI)
	}
	if cfg.Collection == "" {
		cfg.Collection = defaultCollection
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = defaultOperationTimeout
	}

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	if err := clientOpts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mongo uri: %w", err)
	}

	return &Gateway{
		cfg:        cfg,
		clientOpts: clientOpts,
		observer:   observer,
		logger:     logger,
	}, nil
}

// Config возвращает итоговую конфигурацию с подставленными значениями по умолчанию.
func (g *Gateway) Config() Config {
	return g.cfg
}

// Ping проверяет доступность сервера (используется health checks).
func (g *Gateway) Ping(ctx context.Context) error {
	return g.withClient(ctx, "ping", func(ctx context.Context, client *mongo.Client) error {
		return client.Ping(ctx, readpref.Primary())
	})
}

// withCollection выполняет fn над коллекцией в рамках одного подключения.
func (g *Gateway) withCollection(ctx context.Context, operation string, fn func(context.Context, *mongo.Collection) error) error {
	return g.withClient(ctx, operation, func(ctx context.Context, client *mongo.Client) error {
		return fn(ctx, client.Database(g.cfg.Database).Collection(g.cfg.Collection))
	})
}

// withClient: connecting -> executing -> closed. Disconnect выполняется всегда,
// с собственным контекстом, чтобы отменённый запрос не оставлял соединение открытым.
func (g *Gateway) withClient(ctx context.Context, operation string, fn func(context.Context, *mongo.Client) error) (err error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, g.cfg.OperationTimeout)
	defer cancel()

	defer func() {
		g.observe(operation, err, time.Since(start))
	}()

	client, err := mongo.Connect(ctx, g.clientOpts)
	if err != nil {
		return fmt.Errorf("%w: connect: %v", domain.ErrStoreUnavailable, err)
	}
	defer g.release(client, operation)

	err = fn(ctx, client)
	if err != nil && isUnavailable(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, operation, err)
	}
	return err
}

func (g *Gateway) release(client *mongo.Client, operation string) {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		g.logger.WithError(err).WithField("operation", operation).Warn("failed to disconnect from mongo")
	}
}

func (g *Gateway) observe(operation string, err error, duration time.Duration) {
	if g.observer == nil {
		return
	}
	g.observer.ObserveStoreOperation(operation, outcomeOf(err), duration)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrRestaurantNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrInvalidRestaurantID), errors.Is(err, domain.ErrEmptyPatch):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

func isUnavailable(err error) bool {
	return mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err) ||
		errors.Is(err, context.DeadlineExceeded)
}

// databaseFromURI извлекает имя базы из пути URI (mongodb://host/db).
func databaseFromURI(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return defaultDatabase
	}
	if db := strings.Trim(parsed.Path, "/"); db != "" {
		return db
	}
	return defaultDatabase
}
