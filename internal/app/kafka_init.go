package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/restaurant-service/internal/domain"
	"github.com/vladislavdragonenkov/restaurant-service/internal/messaging/kafka"
)

// initKafkaProducer создаёт producer, если brokers не пустой.
// Пустой список — не ошибка: возвращается nil, nil.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	brokerList := splitBrokers(brokers)
	if len(brokerList) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without restaurant events")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer, nil
}

// newEventPublisher возвращает Kafka-публикатор или NoopPublisher без producer.
func newEventPublisher(producer *kafka.Producer, topic string, recorder kafka.PublishRecorder) domain.EventPublisher {
	if producer == nil {
		return domain.NoopPublisher{}
	}
	return kafka.NewRestaurantPublisher(producer, topic, recorder)
}

// closeKafka закрывает producer, если он был создан.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}

func splitBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
