package app

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/restaurant-service/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/restaurant-service/internal/health"
	"github.com/vladislavdragonenkov/restaurant-service/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/restaurant-service/internal/metrics"
	"github.com/vladislavdragonenkov/restaurant-service/internal/storage/memory"
	"github.com/vladislavdragonenkov/restaurant-service/internal/storage/mongodb"
)

// runtimeDependencies содержит всё, что нужно HTTP-слою и health checks.
type runtimeDependencies struct {
	repo         domain.RestaurantRepository
	storeChecker healthcheck.Checker
	publisher    domain.EventPublisher
	producer     *kafka.Producer
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry, serviceMetrics *metrics.ServiceMetrics) (*runtimeDependencies, error) {
	deps := &runtimeDependencies{}

	switch driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver)); driver {
	case StorageDriverMemory:
		deps.repo = memory.NewRestaurantRepository()
		deps.storeChecker = healthcheck.NewFuncChecker("store", func(context.Context) error { return nil })
		logger.Info("using in-memory restaurant storage")
	case StorageDriverMongo, "":
		gw, err := mongodb.NewGateway(cfg.Mongo, serviceMetrics, logger.WithField("component", "mongo-gateway"))
		if err != nil {
			return nil, fmt.Errorf("init mongo gateway: %w", err)
		}
		deps.repo = mongodb.NewRestaurantRepository(gw)
		deps.storeChecker = healthcheck.NewFuncChecker("mongo", gw.Ping)

		gwCfg := gw.Config()
		entry := logger.WithFields(log.Fields{
			"database":   gwCfg.Database,
			"collection": gwCfg.Collection,
		})
		// Недоступность на старте не фатальна: подключение всё равно открывается на каждый запрос.
		if err := gw.Ping(ctx); err != nil {
			entry.WithError(err).Warn("mongo is not reachable at startup")
		} else {
			entry.Info("mongo is reachable")
		}
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	producer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err == nil {
		deps.producer = producer
	}
	deps.publisher = newEventPublisher(deps.producer, cfg.KafkaTopic, serviceMetrics)

	return deps, nil
}

func (d *runtimeDependencies) close(logger *log.Entry) {
	closeKafka(d.producer, logger)
}
