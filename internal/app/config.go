package app

import (
	"time"

	"github.com/vladislavdragonenkov/restaurant-service/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/restaurant-service/internal/storage/mongodb"
)

const (
	// StorageDriverMongo — рабочее хранилище (MongoDB).
	StorageDriverMongo = "mongo"
	// StorageDriverMemory — хранилище в памяти для локальной разработки.
	StorageDriverMemory = "memory"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string
	// GRPCHealthAddr пустой — gRPC health сервер не запускается.
	GRPCHealthAddr string

	StorageDriver string
	Mongo         mongodb.Config

	HealthPollInterval time.Duration

	// KafkaBrokers — список через запятую; пусто — события не публикуются.
	KafkaBrokers string
	KafkaTopic   string

	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает настройки для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:           ":5080",
		MetricsAddr:        ":9090",
		StorageDriver:      StorageDriverMongo,
		Mongo:              mongodb.DefaultConfig(),
		HealthPollInterval: 15 * time.Second,
		KafkaTopic:         kafka.DefaultTopic,
		ShutdownTimeout:    5 * time.Second,
	}
}
